package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tdlma/backend/config"
	"tdlma/backend/internal/dto"
	"tdlma/backend/internal/model"
	"tdlma/backend/internal/repository"
	apperrors "tdlma/backend/pkg/errors"
)

// ── 报表模块业务错误 ──

var (
	ErrReportDateFormat    = apperrors.Validation(19001, "startDate", "日期格式应为 YYYY-MM-DD")
	ErrReportRangeInverted = apperrors.Validation(19003, "endDate", "结束日期不能早于开始日期")
	ErrReportRangeTooLong  = apperrors.Validation(19004, "endDate", "查询区间不能超过 370 天")
)

const maxReportDays = 370

// daysPerMonth 基础费用按固定日费率折算：月费 / 30 × 计费天数
var daysPerMonth = decimal.NewFromInt(30)

// approximationNote current 策略下随报表返回的说明
const approximationNote = "罚款与基础费用（人均月费）均按当前生效的配置统一计算，历史日期若配置不同将与当日实际配置存在差异；单用户核算按当日配置计算，二者可能不一致"

// ParseDateRange 解析并校验 [start, end] 日期区间
func ParseDateRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := parseDate(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, ErrReportDateFormat
	}
	end, err := parseDate(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.Validation(ErrReportDateFormat.Code, "endDate", ErrReportDateFormat.Message)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, ErrReportRangeInverted
	}
	if daysBetween(start, end) > maxReportDays {
		return time.Time{}, time.Time{}, ErrReportRangeTooLong
	}
	return start, end, nil
}

// DuesService 欠款核算接口
type DuesService interface {
	// Reconcile 单个用户的核算，罚款总是按考勤当日的配置计算
	Reconcile(ctx context.Context, userID string, start, end time.Time) (*dto.UserDuesResponse, error)
	// Aggregate 全员核算；合计只由逐个用户累加得到
	Aggregate(ctx context.Context, start, end time.Time) (*dto.ReportResponse, error)
}

type duesService struct {
	repo       *repository.Repository
	settings   SettingService
	membership MembershipService
	clock      *Clock
	finePolicy string
	logger     *zap.Logger
}

// NewDuesService 创建 DuesService 实例
func NewDuesService(
	repo *repository.Repository,
	settings SettingService,
	membership MembershipService,
	clock *Clock,
	finePolicy string,
	logger *zap.Logger,
) DuesService {
	return &duesService{
		repo:       repo,
		settings:   settings,
		membership: membership,
		clock:      clock,
		finePolicy: finePolicy,
		logger:     logger,
	}
}

// ────────────────────── Reconcile ──────────────────────

func (s *duesService) Reconcile(ctx context.Context, userID string, start, end time.Time) (*dto.UserDuesResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", userID), zap.Error(err))
		return nil, apperrors.Internal("查询用户失败", err)
	}

	// 1. 有效成员期
	snap, err := s.membership.Snapshot(ctx, []string{userID}, start, end)
	if err != nil {
		return nil, err
	}
	span := snap.Span(user)
	if span == nil {
		return nil, ErrUserExcluded
	}

	// 2. 只取有效期内的数据；任一查询失败整体失败，不返回残缺结果
	attendance, err := s.repo.Attendance.ListByUser(ctx, userID, span.Start, span.End)
	if err != nil {
		return nil, s.fetchFailed("考勤", userID, err)
	}
	guests, err := s.repo.Guest.ListByInviter(ctx, userID, span.Start, span.End)
	if err != nil {
		return nil, s.fetchFailed("访客餐", userID, err)
	}
	txs, err := s.repo.Transaction.ListByUser(ctx, userID, s.clock.DayStart(span.Start), s.clock.DayStart(span.End))
	if err != nil {
		return nil, s.fetchFailed("交易流水", userID, err)
	}
	tl, err := s.settings.Timeline(ctx)
	if err != nil {
		return nil, err
	}
	s.warnPendingReprice(guests, tl, userID)

	return reconcileUser(duesInput{
		user:       user,
		span:       span,
		attendance: attendance,
		guests:     guests,
		txs:        txs,
		timeline:   tl,
		policy:     config.FinePolicyPointInTime,
		today:      s.clock.Today(),
		clock:      s.clock,
	}), nil
}

// ────────────────────── Aggregate ──────────────────────

func (s *duesService) Aggregate(ctx context.Context, start, end time.Time) (*dto.ReportResponse, error) {
	// 入伙晚于区间末日的用户不进入候选集
	users, err := s.repo.User.CreatedBefore(ctx, s.clock.DayStart(end.AddDate(0, 0, 1)))
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, apperrors.Internal("查询用户列表失败", err)
	}

	userIDs := make([]string, 0, len(users))
	for _, u := range users {
		userIDs = append(userIDs, u.UserID)
	}

	snap, err := s.membership.Snapshot(ctx, userIDs, start, end)
	if err != nil {
		return nil, err
	}

	attendance, err := s.repo.Attendance.ListRange(ctx, start, end)
	if err != nil {
		return nil, s.fetchFailed("考勤", "", err)
	}
	guests, err := s.repo.Guest.ListRange(ctx, start, end)
	if err != nil {
		return nil, s.fetchFailed("访客餐", "", err)
	}
	txs, err := s.repo.Transaction.ListRange(ctx, s.clock.DayStart(start), s.clock.DayStart(end))
	if err != nil {
		return nil, s.fetchFailed("交易流水", "", err)
	}
	tl, err := s.settings.Timeline(ctx)
	if err != nil {
		return nil, err
	}
	s.warnPendingReprice(guests, tl, "")

	attendanceByUser := make(map[string][]model.Attendance)
	for _, a := range attendance {
		attendanceByUser[a.UserID] = append(attendanceByUser[a.UserID], a)
	}
	guestsByUser := make(map[string][]model.GuestEntry)
	for _, g := range guests {
		guestsByUser[g.InviterID] = append(guestsByUser[g.InviterID], g)
	}
	txsByUser := make(map[string][]model.Transaction)
	for _, t := range txs {
		txsByUser[t.UserID] = append(txsByUser[t.UserID], t)
	}

	today := s.clock.Today()
	resp := &dto.ReportResponse{
		StartDate:  formatDate(start),
		EndDate:    formatDate(end),
		Users:      make([]dto.UserDuesResponse, 0, len(users)),
		DayStats:   snap.DayStats(),
		FinePolicy: s.finePolicy,
	}
	if s.finePolicy == config.FinePolicyCurrent {
		resp.Approximation = approximationNote
	}

	for i := range users {
		u := &users[i]
		span := snap.Span(u)
		if span == nil {
			continue
		}
		dues := reconcileUser(duesInput{
			user:       u,
			span:       span,
			attendance: attendanceByUser[u.UserID],
			guests:     guestsByUser[u.UserID],
			txs:        txsByUser[u.UserID],
			timeline:   tl,
			policy:     s.finePolicy,
			today:      today,
			clock:      s.clock,
		})
		resp.Users = append(resp.Users, *dues)
		resp.Totals.Add(dues)
	}

	s.logger.Info("生成账务报表",
		zap.String("start", resp.StartDate),
		zap.String("end", resp.EndDate),
		zap.Int("users", resp.Totals.Users),
		zap.String("fine_policy", s.finePolicy),
	)

	return resp, nil
}

// warnPendingReprice 访客餐金额与当日单价版本不一致时告警
// 未来生效的单价变更需在生效后调用 guest-price/apply，之前的报表仍按旧单价计费
func (s *duesService) warnPendingReprice(guests []model.GuestEntry, tl *Timeline, userID string) {
	n, earliest := pendingGuestReprice(guests, tl, s.clock.Today())
	if n == 0 {
		return
	}
	s.logger.Warn("存在未按生效单价重算的访客餐，请执行 guest-price/apply",
		zap.Int("count", n),
		zap.String("earliest_date", formatDate(earliest)),
		zap.String("user_id", userID),
	)
}

// pendingGuestReprice 统计今天及以前、金额与当日生效单价版本不符的访客餐
// 未配置单价版本的日期不参与比较
func pendingGuestReprice(guests []model.GuestEntry, tl *Timeline, today time.Time) (int, time.Time) {
	var (
		n        int
		earliest time.Time
	)
	for i := range guests {
		d := dateOf(guests[i].Date)
		if d.After(today) {
			continue
		}
		v, ok := tl.Version(model.SettingGuestMealPrice, d)
		if !ok {
			continue
		}
		price, err := decimal.NewFromString(v.Value)
		if err != nil || guests[i].Amount.Equal(price) {
			continue
		}
		if n == 0 || d.Before(earliest) {
			earliest = d
		}
		n++
	}
	return n, earliest
}

func (s *duesService) fetchFailed(what, userID string, err error) error {
	s.logger.Error("核算数据查询失败", zap.String("data", what), zap.String("user_id", userID), zap.Error(err))
	return apperrors.Internal("查询"+what+"失败", err)
}

// ── 核算（纯计算） ──

type duesInput struct {
	user       *model.User
	span       *ActiveSpan
	attendance []model.Attendance
	guests     []model.GuestEntry
	txs        []model.Transaction
	timeline   *Timeline
	policy     string
	today      time.Time
	clock      *Clock
}

// reconcileUser 欠款 = 基础费用 + 访客餐费用 + 罚款 - 已付款，不做下限截断
func reconcileUser(in duesInput) *dto.UserDuesResponse {
	span := in.span
	out := &dto.UserDuesResponse{
		UserID:        in.user.UserID,
		UserName:      in.user.Name,
		ActiveFrom:    formatDate(span.Start),
		ActiveTo:      formatDate(span.End),
		TotalDays:     span.TotalDays,
		BillableDays:  span.BillableDays,
		WorkDays:      span.WorkDays,
		TotalFine:     decimal.Zero,
		GuestExpense:  decimal.Zero,
		TotalPayments: decimal.Zero,
		FinePolicy:    in.policy,
	}

	// 罚款
	currentFines := FineSettingsAt(in.timeline, in.today)
	for _, a := range in.attendance {
		if !span.IsWorkDay(a.Date) {
			continue
		}
		remark := Classify(a.Status, a.IsOpen)
		switch remark {
		case model.RemarkAllClear:
			out.Remarks.AllClear++
		case model.RemarkUnclosed:
			out.Remarks.Unclosed++
		case model.RemarkUnopened:
			out.Remarks.Unopened++
		}
		fines := currentFines
		if in.policy == config.FinePolicyPointInTime {
			fines = FineSettingsAt(in.timeline, a.Date)
		}
		out.TotalFine = out.TotalFine.Add(ComputeFine(remark, fines))
	}

	// 访客餐：金额已在登记时冻结
	for _, g := range in.guests {
		if !span.Contains(g.Date) {
			continue
		}
		out.GuestCount++
		out.GuestExpense = out.GuestExpense.Add(g.Amount)
	}

	out.BaseExpense = baseExpense(in)

	// 付款：三种交易类型同样冲减
	for _, t := range in.txs {
		d := in.clock.LocalDate(t.CreatedAt)
		if d.Before(span.Start) || d.After(span.End) {
			continue
		}
		out.TotalPayments = out.TotalPayments.Add(t.Amount)
	}

	out.TotalDues = out.BaseExpense.
		Add(out.GuestExpense).
		Add(out.TotalFine).
		Sub(out.TotalPayments)
	return out
}

// baseExpense 月费 / 30 × 计费天数，保留两位小数
// point_in_time 策略下按月费配置版本分段折算
func baseExpense(in duesInput) decimal.Decimal {
	if in.policy != config.FinePolicyPointInTime {
		monthly := in.timeline.DecimalAsOf(model.SettingMonthlyExpensePerHead, in.today)
		return monthly.Mul(decimal.NewFromInt(int64(in.span.BillableDays))).Div(daysPerMonth).Round(2)
	}

	total := decimal.Zero
	for _, seg := range in.timeline.Segments(model.SettingMonthlyExpensePerHead, in.span.Start, in.span.End) {
		days := in.span.BillableDaysWithin(seg.From, seg.To)
		if days == 0 {
			continue
		}
		monthly, err := decimal.NewFromString(seg.Value)
		if err != nil {
			continue
		}
		total = total.Add(monthly.Mul(decimal.NewFromInt(int64(days))))
	}
	return total.Div(daysPerMonth).Round(2)
}
