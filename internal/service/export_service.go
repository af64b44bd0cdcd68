package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"tdlma/backend/internal/model"
	apperrors "tdlma/backend/pkg/errors"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = apperrors.Internal("生成 Excel 文件失败", nil)
)

// ExportService 导出业务接口
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportReport 导出全员账务报表为 Excel
	ExportReport(ctx context.Context, start, end time.Time) (*bytes.Buffer, string, error)
}

type exportService struct {
	dues     DuesService
	settings SettingService
	logger   *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(dues DuesService, settings SettingService, logger *zap.Logger) ExportService {
	return &exportService{dues: dues, settings: settings, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportReport 导出账务报表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 第 1 行：组织名称 + 区间
//   - 第 2 行：表头
//   - 每个用户一行，末行为合计
//   - current 罚款策略时在合计下方附说明

var reportHeaders = []string{
	"姓名", "有效期起", "有效期止", "天数", "计费天数", "考勤天数",
	"All Clear", "Unclosed", "Unopened", "访客餐数",
	"罚款", "访客餐费用", "基础费用", "已付款", "欠款",
}

func (s *exportService) ExportReport(ctx context.Context, start, end time.Time) (*bytes.Buffer, string, error) {
	report, err := s.dues.Aggregate(ctx, start, end)
	if err != nil {
		return nil, "", err
	}

	orgName, err := s.settings.GetCurrentValue(ctx, model.SettingOrganizationName)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "账务报表"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 18)
	f.SetColWidth(sheetName, "B", "C", 12)
	f.SetColWidth(sheetName, colName(3), colName(len(reportHeaders)-1), 12)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s 账务报表 %s ~ %s", orgName, report.StartDate, report.EndDate))
	f.MergeCell(sheetName, "A1", cell(colName(len(reportHeaders)-1), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	row := 2
	for i, h := range reportHeaders {
		f.SetCellValue(sheetName, cell(colName(i), row), h)
	}
	f.SetCellStyle(sheetName, cell("A", row), cell(colName(len(reportHeaders)-1), row), headerStyle)

	// 数据行
	row = 3
	for _, u := range report.Users {
		values := []interface{}{
			u.UserName, u.ActiveFrom, u.ActiveTo, u.TotalDays, u.BillableDays, u.WorkDays,
			u.Remarks.AllClear, u.Remarks.Unclosed, u.Remarks.Unopened, u.GuestCount,
			money(u.TotalFine), money(u.GuestExpense), money(u.BaseExpense), money(u.TotalPayments), money(u.TotalDues),
		}
		for i, v := range values {
			f.SetCellValue(sheetName, cell(colName(i), row), v)
		}
		row++
	}

	// 合计
	t := report.Totals
	totals := []interface{}{
		fmt.Sprintf("合计（%d 人）", t.Users), "", "", "", "", "",
		t.Remarks.AllClear, t.Remarks.Unclosed, t.Remarks.Unopened, t.GuestCount,
		money(t.TotalFine), money(t.GuestExpense), money(t.BaseExpense), money(t.TotalPayments), money(t.TotalDues),
	}
	for i, v := range totals {
		f.SetCellValue(sheetName, cell(colName(i), row), v)
	}
	f.SetCellStyle(sheetName, cell("A", row), cell(colName(len(reportHeaders)-1), row), headerStyle)

	if report.Approximation != "" {
		f.SetCellValue(sheetName, cell("A", row+2), "说明："+report.Approximation)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", apperrors.Wrap(ErrExportGenerateFail, err)
	}

	filename := fmt.Sprintf("账务报表_%s_%s.xlsx", report.StartDate, report.EndDate)
	return buf, filename, nil
}

// ── 辅助函数 ──

// money 金额以数值写入单元格，便于在表格中继续求和
func money(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
