package service

import "time"

// dateLayout 请求与响应中的日期格式
const dateLayout = "2006-01-02"

// Clock 账务时钟：「今天」按账务时区计算
// 测试中使用 FixedClock 固定当前时间
type Clock struct {
	loc   *time.Location
	nowFn func() time.Time
}

// NewClock 创建基于系统时间的时钟
func NewClock(loc *time.Location) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	return &Clock{loc: loc, nowFn: time.Now}
}

// FixedClock 创建固定在 now 的时钟，时区取 now 的时区
func FixedClock(now time.Time) *Clock {
	return &Clock{loc: now.Location(), nowFn: func() time.Time { return now }}
}

// Now 账务时区下的当前时间
func (c *Clock) Now() time.Time { return c.nowFn().In(c.loc) }

// Today 账务时区下的当前日期（UTC 零点表示）
func (c *Clock) Today() time.Time { return dateOf(c.Now()) }

// Location 账务时区
func (c *Clock) Location() *time.Location { return c.loc }

// DayStart 返回日期 d 在账务时区的零点，用于按本地日界查询时间戳列
func (c *Clock) DayStart(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, c.loc)
}

// LocalDate 将时间戳换算为账务时区下的日期
func (c *Clock) LocalDate(t time.Time) time.Time { return dateOf(t.In(c.loc)) }

// ── 日期工具 ──
// 所有「日期」统一表示为 UTC 零点的 time.Time，与 PostgreSQL DATE 列读出的值一致

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

func formatDate(t time.Time) string { return t.Format(dateLayout) }

// daysBetween 闭区间 [a, b] 的天数；b 早于 a 时返回 0
func daysBetween(a, b time.Time) int {
	if b.Before(a) {
		return 0
	}
	return int(dateOf(b).Sub(dateOf(a)).Hours()/24) + 1
}

func minDate(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxDate(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

// countWeekday 闭区间 [a, b] 内星期为 wd 的天数
func countWeekday(a, b time.Time, wd time.Weekday) int {
	n := daysBetween(a, b)
	if n == 0 {
		return 0
	}
	offset := (int(wd) - int(a.Weekday()) + 7) % 7
	if offset >= n {
		return 0
	}
	return (n-offset-1)/7 + 1
}
