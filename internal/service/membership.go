package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tdlma/backend/internal/dto"
	"tdlma/backend/internal/model"
	"tdlma/backend/internal/repository"
	apperrors "tdlma/backend/pkg/errors"
)

// dateRange 闭区间日期段
type dateRange struct {
	From time.Time
	To   time.Time
}

func (r dateRange) days() int { return daysBetween(r.From, r.To) }

func (r dateRange) contains(d time.Time) bool {
	return !d.Before(r.From) && !d.After(r.To)
}

// ActiveSpan 用户在某个区间内的有效成员期
// 只表示「有交集」的情况；无交集时计算器返回 nil，调用方据此把用户排除出报表
type ActiveSpan struct {
	// Start/End 第一个与最后一个有效日
	Start time.Time
	End   time.Time

	// TotalDays 有效日历天数（已扣除停用期，含休息日与周日）
	TotalDays int
	// OffDays 有效期内的休息日天数
	OffDays int
	// Sundays 有效期内、非休息日的周日天数
	Sundays int
	// BillableDays = TotalDays - OffDays，用于基础费用折算
	BillableDays int
	// WorkDays = BillableDays - Sundays（周日休息时），用于考勤与罚款
	WorkDays int

	active    []dateRange
	offDays   map[time.Time]struct{}
	sundayOff bool
}

// Contains d 是否为计费日：处于有效期且不是休息日
func (s *ActiveSpan) Contains(d time.Time) bool {
	d = dateOf(d)
	if _, off := s.offDays[d]; off {
		return false
	}
	for _, r := range s.active {
		if r.contains(d) {
			return true
		}
	}
	return false
}

// IsWorkDay d 是否为考勤日：计费日且不是（休息的）周日
func (s *ActiveSpan) IsWorkDay(d time.Time) bool {
	if s.sundayOff && d.Weekday() == time.Sunday {
		return false
	}
	return s.Contains(d)
}

// BillableDaysWithin [a, b] 与有效期交集内的计费天数，用于分段折算
func (s *ActiveSpan) BillableDaysWithin(a, b time.Time) int {
	a, b = dateOf(a), dateOf(b)
	n := 0
	for _, r := range s.active {
		from, to := maxDate(r.From, a), minDate(r.To, b)
		if to.Before(from) {
			continue
		}
		n += daysBetween(from, to)
		for d := range s.offDays {
			if !d.Before(from) && !d.After(to) {
				n--
			}
		}
	}
	return n
}

// SpanInput 计算有效成员期所需的全部输入
type SpanInput struct {
	CreatedOn time.Time // 入伙日期（账务时区）
	Status    string    // 用户当前状态，仅在没有状态历史时使用
	History   []model.UserStatusHistory
	OffDays   []time.Time
	Start     time.Time
	End       time.Time
	Today     time.Time
	SundayOff bool
}

// BuildActiveSpan 计算有效成员期：
// [Start, End] ∩ [入伙日, 今天]，扣除停用期；无交集返回 nil
func BuildActiveSpan(in SpanInput) *ActiveSpan {
	lo := maxDate(dateOf(in.Start), dateOf(in.CreatedOn))
	hi := minDate(dateOf(in.End), dateOf(in.Today))
	if hi.Before(lo) {
		return nil
	}

	active := activePeriods(in, lo, hi)
	if len(active) == 0 {
		return nil
	}

	span := &ActiveSpan{
		Start:     active[0].From,
		End:       active[len(active)-1].To,
		active:    active,
		offDays:   make(map[time.Time]struct{}),
		sundayOff: in.SundayOff,
	}

	for _, r := range active {
		span.TotalDays += r.days()
		span.Sundays += countWeekday(r.From, r.To, time.Sunday)
	}
	for _, d := range in.OffDays {
		d = dateOf(d)
		if _, dup := span.offDays[d]; dup {
			continue
		}
		for _, r := range active {
			if r.contains(d) {
				span.offDays[d] = struct{}{}
				span.OffDays++
				if d.Weekday() == time.Sunday {
					span.Sundays--
				}
				break
			}
		}
	}

	span.BillableDays = span.TotalDays - span.OffDays
	span.WorkDays = span.BillableDays
	if in.SundayOff {
		span.WorkDays -= span.Sundays
	}
	return span
}

// activePeriods 由状态历史还原 [lo, hi] 内的有效区间
// 入伙当天视为 active；每条历史记录是一次状态切换
func activePeriods(in SpanInput, lo, hi time.Time) []dateRange {
	created := dateOf(in.CreatedOn)

	if len(in.History) == 0 {
		if in.Status == model.UserStatusInactive {
			return nil
		}
		return []dateRange{{From: lo, To: hi}}
	}

	type transition struct {
		date   time.Time
		status string
	}
	transitions := []transition{{date: created, status: model.UserStatusActive}}
	history := make([]model.UserStatusHistory, len(in.History))
	copy(history, in.History)
	sort.SliceStable(history, func(i, j int) bool {
		return dateOf(history[i].EffectiveDate).Before(dateOf(history[j].EffectiveDate))
	})
	for _, h := range history {
		transitions = append(transitions, transition{date: maxDate(dateOf(h.EffectiveDate), created), status: h.Status})
	}

	var out []dateRange
	for i, t := range transitions {
		if t.status != model.UserStatusActive {
			continue
		}
		from := t.date
		to := hi
		if i+1 < len(transitions) {
			to = transitions[i+1].date.AddDate(0, 0, -1)
		}
		from, to = maxDate(from, lo), minDate(to, hi)
		if to.Before(from) {
			continue
		}
		// 与上一段相邻（连续两条 active 记录）时合并
		if n := len(out); n > 0 && !out[n-1].To.AddDate(0, 0, 1).Before(from) {
			out[n-1].To = maxDate(out[n-1].To, to)
			continue
		}
		out = append(out, dateRange{From: from, To: to})
	}
	return out
}

// computeDayStats 区间日历统计，与用户无关
func computeDayStats(start, end time.Time, offDays []time.Time, sundayOff bool) dto.DayStats {
	stats := dto.DayStats{
		TotalDays: daysBetween(start, end),
		Sundays:   countWeekday(start, end, time.Sunday),
	}
	seen := make(map[time.Time]struct{}, len(offDays))
	for _, d := range offDays {
		d = dateOf(d)
		if _, dup := seen[d]; dup || d.Before(start) || d.After(end) {
			continue
		}
		seen[d] = struct{}{}
		stats.OffDays++
		if d.Weekday() == time.Sunday {
			stats.Sundays--
		}
	}
	stats.WorkDays = stats.TotalDays - stats.OffDays
	if sundayOff {
		stats.WorkDays -= stats.Sundays
	}
	return stats
}

// ── 成员期计算服务 ──

var (
	ErrUserExcluded = apperrors.NotFound(19002, "该用户在所选区间内没有有效成员期")
)

// MembershipService 有效成员期计算接口
type MembershipService interface {
	// ActiveDateRange 无交集时返回 (nil, nil)
	ActiveDateRange(ctx context.Context, userID string, start, end time.Time) (*ActiveSpan, error)
	ActiveDayCount(ctx context.Context, userID string, start, end time.Time) (int, error)
	// Snapshot 报表批量计算：状态历史与休息日各只查询一次
	Snapshot(ctx context.Context, userIDs []string, start, end time.Time) (*MembershipSnapshot, error)
}

type membershipService struct {
	repo      *repository.Repository
	clock     *Clock
	sundayOff bool
	logger    *zap.Logger
}

// NewMembershipService 创建 MembershipService 实例
func NewMembershipService(repo *repository.Repository, clock *Clock, sundayOff bool, logger *zap.Logger) MembershipService {
	return &membershipService{repo: repo, clock: clock, sundayOff: sundayOff, logger: logger}
}

func (s *membershipService) ActiveDateRange(ctx context.Context, userID string, start, end time.Time) (*ActiveSpan, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", userID), zap.Error(err))
		return nil, apperrors.Internal("查询用户失败", err)
	}

	snap, err := s.Snapshot(ctx, []string{userID}, start, end)
	if err != nil {
		return nil, err
	}
	return snap.Span(user), nil
}

func (s *membershipService) ActiveDayCount(ctx context.Context, userID string, start, end time.Time) (int, error) {
	span, err := s.ActiveDateRange(ctx, userID, start, end)
	if err != nil || span == nil {
		return 0, err
	}
	return span.BillableDays, nil
}

func (s *membershipService) Snapshot(ctx context.Context, userIDs []string, start, end time.Time) (*MembershipSnapshot, error) {
	history, err := s.repo.User.ListStatusHistory(ctx, userIDs)
	if err != nil {
		s.logger.Error("查询用户状态历史失败", zap.Error(err))
		return nil, apperrors.Internal("查询用户状态历史失败", err)
	}
	offDays, err := s.repo.OffDay.ListRange(ctx, start, end)
	if err != nil {
		s.logger.Error("查询休息日失败", zap.Error(err))
		return nil, apperrors.Internal("查询休息日失败", err)
	}

	snap := &MembershipSnapshot{
		history:   make(map[string][]model.UserStatusHistory),
		start:     dateOf(start),
		end:       dateOf(end),
		today:     s.clock.Today(),
		clock:     s.clock,
		sundayOff: s.sundayOff,
	}
	for _, h := range history {
		snap.history[h.UserID] = append(snap.history[h.UserID], h)
	}
	for _, d := range offDays {
		snap.offDays = append(snap.offDays, dateOf(d.Date))
	}
	return snap, nil
}

// MembershipSnapshot 一次报表使用的成员期输入快照
type MembershipSnapshot struct {
	history   map[string][]model.UserStatusHistory
	offDays   []time.Time
	start     time.Time
	end       time.Time
	today     time.Time
	clock     *Clock
	sundayOff bool
}

// Span 计算单个用户的有效成员期
func (m *MembershipSnapshot) Span(u *model.User) *ActiveSpan {
	return BuildActiveSpan(SpanInput{
		CreatedOn: m.clock.LocalDate(u.CreatedAt),
		Status:    u.Status,
		History:   m.history[u.UserID],
		OffDays:   m.offDays,
		Start:     m.start,
		End:       m.end,
		Today:     m.today,
		SundayOff: m.sundayOff,
	})
}

// DayStats 区间日历统计
func (m *MembershipSnapshot) DayStats() dto.DayStats {
	return computeDayStats(m.start, m.end, m.offDays, m.sundayOff)
}
