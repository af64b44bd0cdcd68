package service

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"tdlma/backend/internal/model"
)

// ── ICS 休息日解析器 ──────────────────────────────────────────
//
// 职责：将节假日日历 (RFC 5545) 中的事件解析为 OffDay 列表。
//
//   - DTSTART 取日期部分（按账务时区换算）
//   - 全天事件的 DTEND 为「次日」，不含；跨多天的假期逐日展开
//   - SUMMARY 作为休息日原因
//   - 同一天出现多个事件时只保留第一个
// ─────────────────────────────────────────────────────────────

const (
	// ICSMaxFileSize 上传文件大小上限
	ICSMaxFileSize = 2 * 1024 * 1024
	// icsMaxEventDays 单个事件最多展开的天数
	icsMaxEventDays = 31
)

// ParseOffDayICS 解析 ICS 内容并转为按日期升序的 OffDay 列表
func ParseOffDayICS(reader io.Reader, loc *time.Location) ([]model.OffDay, error) {
	cal, err := ics.ParseCalendar(reader)
	if err != nil {
		return nil, fmt.Errorf("ICS 格式解析失败: %w", err)
	}

	byDate := make(map[time.Time]string)
	for _, evt := range cal.Events() {
		from, to, reason, ok := parseOffDayEvent(evt, loc)
		if !ok {
			continue
		}
		for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
			if _, seen := byDate[d]; !seen {
				byDate[d] = reason
			}
		}
	}

	result := make([]model.OffDay, 0, len(byDate))
	for d, reason := range byDate {
		result = append(result, model.OffDay{Date: d, Reason: reason})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

// parseOffDayEvent 解析单个 VEVENT，返回闭区间 [from, to]
func parseOffDayEvent(evt *ics.VEvent, loc *time.Location) (time.Time, time.Time, string, bool) {
	reason := ""
	if summary := evt.GetProperty(ics.ComponentPropertySummary); summary != nil {
		reason = strings.TrimSpace(summary.Value)
	}
	if len([]rune(reason)) > 200 {
		reason = string([]rune(reason)[:200])
	}

	start, allDay, err := parseICSDateTime(evt, ics.ComponentPropertyDtStart, loc)
	if err != nil {
		return time.Time{}, time.Time{}, "", false
	}
	from := dateOf(start)
	to := from

	if end, _, err := parseICSDateTime(evt, ics.ComponentPropertyDtEnd, loc); err == nil {
		last := dateOf(end)
		// DTEND 不含端点：全天事件或恰好结束于当地零点时，结束当天不计入
		if allDay || atLocalMidnight(end) {
			last = last.AddDate(0, 0, -1)
		}
		if last.After(from) {
			to = last
		}
	}

	if daysBetween(from, to) > icsMaxEventDays {
		to = from.AddDate(0, 0, icsMaxEventDays-1)
	}
	return from, to, reason, true
}

func atLocalMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}

// parseICSDateTime 从 VEVENT 中解析日期时间属性，第二个返回值表示是否为纯日期
func parseICSDateTime(evt *ics.VEvent, propName ics.ComponentProperty, loc *time.Location) (time.Time, bool, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, false, fmt.Errorf("missing property %s", propName)
	}
	val := strings.TrimSpace(prop.Value)

	if t, err := time.Parse("20060102", val); err == nil {
		return t, true, nil
	}
	if t, err := time.Parse("20060102T150405Z", val); err == nil {
		return t.In(loc), false, nil
	}
	if t, err := time.Parse("20060102T150405", val); err == nil {
		tzLoc := loc
		for k, v := range prop.ICalParameters {
			if strings.ToUpper(k) == "TZID" && len(v) > 0 {
				if l, err := time.LoadLocation(v[0]); err == nil {
					tzLoc = l
				}
			}
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, tzLoc).In(loc), false, nil
	}

	return time.Time{}, false, fmt.Errorf("无法解析日期: %s", val)
}
