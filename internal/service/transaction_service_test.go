package service

import (
	"context"
	"errors"
	"testing"

	"tdlma/backend/internal/dto"
	"tdlma/backend/internal/model"
)

func setupTestTransactionService() (TransactionService, *testEnv) {
	env := newTestEnv(at("2024-02-20", 9, 0))
	env.addUser("u1", "Ali", "2023-12-01")
	return NewTransactionService(env.repo, env.clock, env.logger), env
}

func TestTransactionService_Record_Success(t *testing.T) {
	svc, env := setupTestTransactionService()

	resp, err := svc.Record(context.Background(), &dto.CreateTransactionRequest{
		UserID: "u1",
		Amount: "1500.5",
		Type:   string(model.TransactionPaid),
	}, "admin-1")
	if err != nil {
		t.Fatalf("Record 应成功: %v", err)
	}
	assertMoney(t, "Amount", resp.Amount, "1500.50")
	if resp.CreatedBy == nil || *resp.CreatedBy != "admin-1" {
		t.Error("应记录操作人")
	}
	if len(env.txs.txs) != 1 {
		t.Errorf("期望写入 1 条流水，实际=%d", len(env.txs.txs))
	}
}

func TestTransactionService_Record_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     dto.CreateTransactionRequest
		wantErr error
	}{
		{"金额为零", dto.CreateTransactionRequest{UserID: "u1", Amount: "0", Type: "paid"}, ErrTransactionAmount},
		{"负数金额", dto.CreateTransactionRequest{UserID: "u1", Amount: "-10", Type: "paid"}, ErrTransactionAmount},
		{"三位小数", dto.CreateTransactionRequest{UserID: "u1", Amount: "1.005", Type: "paid"}, ErrTransactionAmount},
		{"非数字", dto.CreateTransactionRequest{UserID: "u1", Amount: "ten", Type: "paid"}, ErrTransactionAmount},
		{"未知类型", dto.CreateTransactionRequest{UserID: "u1", Amount: "10", Type: "refund"}, ErrTransactionType},
		{"用户不存在", dto.CreateTransactionRequest{UserID: "ghost", Amount: "10", Type: "waived"}, ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, env := setupTestTransactionService()
			_, err := svc.Record(context.Background(), &tt.req, "admin-1")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("期望 %v，实际: %v", tt.wantErr, err)
			}
			if len(env.txs.txs) != 0 {
				t.Error("校验失败时不应写入流水")
			}
		})
	}
}

func TestTransactionService_List_Paged(t *testing.T) {
	svc, env := setupTestTransactionService()
	for i := 0; i < 3; i++ {
		env.addTransaction("u1", "10", model.TransactionPaid, "2024-02-01")
	}
	env.addTransaction("u2", "10", model.TransactionPaid, "2024-02-01")

	req := &dto.TransactionListRequest{UserID: "u1"}
	req.Page = 1
	req.PageSize = 2

	rows, total, err := svc.List(context.Background(), req)
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 3 || len(rows) != 2 {
		t.Errorf("期望 total=3 本页 2 条，实际 total=%d 本页=%d", total, len(rows))
	}
}
