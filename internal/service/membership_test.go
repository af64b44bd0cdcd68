package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"tdlma/backend/internal/model"
)

// 2024-01：1 号周一，周日为 7/14/21/28
func janInput() SpanInput {
	return SpanInput{
		CreatedOn: mustDate("2023-12-01"),
		Status:    model.UserStatusActive,
		Start:     mustDate("2024-01-01"),
		End:       mustDate("2024-01-31"),
		Today:     mustDate("2024-02-15"),
		SundayOff: true,
	}
}

func TestBuildActiveSpan_FullRangeWithOffDays(t *testing.T) {
	in := janInput()
	in.OffDays = []time.Time{mustDate("2024-01-10"), mustDate("2024-01-14"), mustDate("2024-02-05")}

	span := BuildActiveSpan(in)
	if span == nil {
		t.Fatal("期望有有效期")
	}
	if formatDate(span.Start) != "2024-01-01" || formatDate(span.End) != "2024-01-31" {
		t.Errorf("有效期错误: %s ~ %s", formatDate(span.Start), formatDate(span.End))
	}
	if span.TotalDays != 31 {
		t.Errorf("期望 TotalDays=31，实际=%d", span.TotalDays)
	}
	if span.OffDays != 2 {
		t.Errorf("期望 OffDays=2（区间外的休息日不计），实际=%d", span.OffDays)
	}
	if span.Sundays != 3 {
		t.Errorf("期望 Sundays=3（休息日周日不重复计），实际=%d", span.Sundays)
	}
	if span.BillableDays != 29 {
		t.Errorf("期望 BillableDays=29，实际=%d", span.BillableDays)
	}
	if span.WorkDays != 26 {
		t.Errorf("期望 WorkDays=26，实际=%d", span.WorkDays)
	}
	if got := span.BillableDaysWithin(mustDate("2024-01-01"), mustDate("2024-01-15")); got != 13 {
		t.Errorf("期望前半月计费 13 天，实际=%d", got)
	}
	if span.Contains(mustDate("2024-01-10")) {
		t.Error("休息日不应计费")
	}
	if span.IsWorkDay(mustDate("2024-01-21")) {
		t.Error("周日不应为考勤日")
	}
	if !span.IsWorkDay(mustDate("2024-01-22")) {
		t.Error("普通工作日应为考勤日")
	}
}

func TestBuildActiveSpan_SundaysCountedWhenNotOff(t *testing.T) {
	in := janInput()
	in.SundayOff = false

	span := BuildActiveSpan(in)
	if span.WorkDays != 31 || span.Sundays != 4 {
		t.Errorf("周日不休息时 WorkDays 应为 31、Sundays 仍统计 4，实际=%d/%d", span.WorkDays, span.Sundays)
	}
}

func TestBuildActiveSpan_CreatedMidRange(t *testing.T) {
	in := janInput()
	in.CreatedOn = mustDate("2024-01-10")

	span := BuildActiveSpan(in)
	if span == nil {
		t.Fatal("期望有有效期")
	}
	if formatDate(span.Start) != "2024-01-10" {
		t.Errorf("有效期应从入伙日开始，实际=%s", formatDate(span.Start))
	}
	if span.TotalDays != 22 || span.WorkDays != 19 {
		t.Errorf("期望 TotalDays=22 WorkDays=19，实际=%d/%d", span.TotalDays, span.WorkDays)
	}
}

func TestBuildActiveSpan_ClampedToToday(t *testing.T) {
	in := janInput()
	in.Today = mustDate("2024-01-20")

	span := BuildActiveSpan(in)
	if formatDate(span.End) != "2024-01-20" || span.TotalDays != 20 {
		t.Errorf("有效期应截止到今天，实际=%s（%d 天）", formatDate(span.End), span.TotalDays)
	}
}

func TestBuildActiveSpan_InactivePeriod(t *testing.T) {
	in := janInput()
	in.History = []model.UserStatusHistory{
		{UserID: "u1", Status: model.UserStatusInactive, EffectiveDate: mustDate("2024-01-08")},
		{UserID: "u1", Status: model.UserStatusActive, EffectiveDate: mustDate("2024-01-22")},
	}

	span := BuildActiveSpan(in)
	if span == nil {
		t.Fatal("期望有有效期")
	}
	if span.TotalDays != 17 {
		t.Errorf("期望扣除停用期后 17 天，实际=%d", span.TotalDays)
	}
	if span.Sundays != 2 {
		t.Errorf("期望 Sundays=2，实际=%d", span.Sundays)
	}
	if span.Contains(mustDate("2024-01-15")) {
		t.Error("停用期内不应计费")
	}
	if !span.Contains(mustDate("2024-01-22")) {
		t.Error("重新启用当天应计费")
	}
	if got := span.BillableDaysWithin(mustDate("2024-01-05"), mustDate("2024-01-25")); got != 7 {
		t.Errorf("期望 3+4=7 天，实际=%d", got)
	}
}

func TestBuildActiveSpan_Excluded(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *SpanInput)
	}{
		{"入伙晚于区间末日", func(in *SpanInput) { in.CreatedOn = mustDate("2024-02-01") }},
		{"区间在未来", func(in *SpanInput) { in.Today = mustDate("2023-12-31") }},
		{"无历史且已停用", func(in *SpanInput) { in.Status = model.UserStatusInactive }},
		{"区间前已停用且未恢复", func(in *SpanInput) {
			in.Status = model.UserStatusInactive
			in.History = []model.UserStatusHistory{{Status: model.UserStatusInactive, EffectiveDate: mustDate("2023-12-15")}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := janInput()
			tt.mutate(&in)
			if span := BuildActiveSpan(in); span != nil {
				t.Errorf("期望返回 nil，实际=%+v", span)
			}
		})
	}
}

func TestComputeDayStats(t *testing.T) {
	offDays := []time.Time{mustDate("2024-01-10"), mustDate("2024-01-14"), mustDate("2024-01-14")}

	stats := computeDayStats(mustDate("2024-01-01"), mustDate("2024-01-31"), offDays, true)
	if stats.TotalDays != 31 || stats.OffDays != 2 || stats.Sundays != 3 || stats.WorkDays != 26 {
		t.Errorf("日历统计错误: %+v", stats)
	}
}

func TestCountWeekday(t *testing.T) {
	tests := []struct {
		from, to string
		want     int
	}{
		{"2024-01-01", "2024-01-31", 4},
		{"2024-01-07", "2024-01-07", 1},
		{"2024-01-08", "2024-01-13", 0},
		{"2024-01-31", "2024-01-01", 0},
	}
	for _, tt := range tests {
		if got := countWeekday(mustDate(tt.from), mustDate(tt.to), time.Sunday); got != tt.want {
			t.Errorf("countWeekday(%s, %s) 期望=%d，实际=%d", tt.from, tt.to, tt.want, got)
		}
	}
}

// ── MembershipService 测试 ──

func TestMembershipService_ActiveDayCount(t *testing.T) {
	env := newTestEnv(at("2024-02-15", 10, 0))
	env.addUser("u1", "Ali", "2024-01-10")
	env.addOffDay("2024-01-10", "holiday")
	ctx := context.Background()

	n, err := env.membership.ActiveDayCount(ctx, "u1", mustDate("2024-01-01"), mustDate("2024-01-31"))
	if err != nil {
		t.Fatalf("ActiveDayCount 应成功: %v", err)
	}
	if n != 21 {
		t.Errorf("期望 21 个计费日，实际=%d", n)
	}

	span, err := env.membership.ActiveDateRange(ctx, "u1", mustDate("2023-11-01"), mustDate("2023-12-31"))
	if err != nil {
		t.Fatalf("ActiveDateRange 应成功: %v", err)
	}
	if span != nil {
		t.Error("入伙前的区间应返回 nil")
	}
}

func TestMembershipService_UserNotFound(t *testing.T) {
	env := newTestEnv(at("2024-02-15", 10, 0))

	_, err := env.membership.ActiveDateRange(context.Background(), "ghost", mustDate("2024-01-01"), mustDate("2024-01-31"))
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}
