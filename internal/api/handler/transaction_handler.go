package handler

import (
	"github.com/gin-gonic/gin"

	"tdlma/backend/internal/dto"
	"tdlma/backend/internal/service"
	"tdlma/backend/pkg/response"
)

// TransactionHandler 交易流水 HTTP 处理器
type TransactionHandler struct {
	txSvc service.TransactionService
}

// NewTransactionHandler 创建 TransactionHandler
func NewTransactionHandler(txSvc service.TransactionService) *TransactionHandler {
	return &TransactionHandler{txSvc: txSvc}
}

// Record 记录一笔付款/减免（管理员）
// POST /api/v1/transactions
func (h *TransactionHandler) Record(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.txSvc.Record(c.Request.Context(), &req, callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, result)
}

// List 交易流水（管理员或本人）
// GET /api/v1/transactions?user_id=&page=&page_size=
func (h *TransactionHandler) List(c *gin.Context) {
	var req dto.TransactionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	target, ok := ResolveTargetUser(c, req.UserID)
	if !ok {
		return
	}
	req.UserID = target

	list, total, err := h.txSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}
