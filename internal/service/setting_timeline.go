package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"tdlma/backend/internal/model"
)

// Timeline 配置版本的内存快照，按 (key, effective_from) 建索引
// 报表一次加载、多次按日期查询；构建后只读
type Timeline struct {
	byKey map[string][]model.SettingVersion
}

// NewTimeline 由版本列表构建快照；同一 key 内按 effective_from 升序
func NewTimeline(versions []model.SettingVersion) *Timeline {
	byKey := make(map[string][]model.SettingVersion)
	for _, v := range versions {
		v.EffectiveFrom = dateOf(v.EffectiveFrom)
		if v.EffectiveTo != nil {
			to := dateOf(*v.EffectiveTo)
			v.EffectiveTo = &to
		}
		byKey[v.SettingKey] = append(byKey[v.SettingKey], v)
	}
	for k := range byKey {
		vs := byKey[k]
		sort.Slice(vs, func(i, j int) bool { return vs[i].EffectiveFrom.Before(vs[j].EffectiveFrom) })
	}
	return &Timeline{byKey: byKey}
}

// Version 返回 date 当天生效的版本；不存在时 ok=false
func (t *Timeline) Version(key string, date time.Time) (*model.SettingVersion, bool) {
	vs := t.byKey[key]
	d := dateOf(date)
	// 最后一个 effective_from <= d 的版本
	i := sort.Search(len(vs), func(i int) bool { return vs[i].EffectiveFrom.After(d) }) - 1
	if i < 0 {
		return nil, false
	}
	if !vs[i].Covers(d) {
		return nil, false
	}
	return &vs[i], true
}

// ValueAsOf 返回 date 当天的配置值；从未配置过则返回定义中的默认值
func (t *Timeline) ValueAsOf(key string, date time.Time) string {
	if v, ok := t.Version(key, date); ok {
		return v.Value
	}
	def, _ := model.LookupSettingDefinition(key)
	return def.Default
}

// DecimalAsOf 数值型配置的便捷读取；值已在写入时校验，解析失败按 0 处理
func (t *Timeline) DecimalAsOf(key string, date time.Time) decimal.Decimal {
	d, err := decimal.NewFromString(t.ValueAsOf(key, date))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// BoolAsOf 布尔型配置的便捷读取
func (t *Timeline) BoolAsOf(key string, date time.Time) bool {
	return t.ValueAsOf(key, date) == "true"
}

// Versions 返回某 key 的全部版本（升序，副本）
func (t *Timeline) Versions(key string) []model.SettingVersion {
	vs := t.byKey[key]
	out := make([]model.SettingVersion, len(vs))
	copy(out, vs)
	return out
}

// TimelineSegment 一段取值恒定的日期区间
type TimelineSegment struct {
	From  time.Time
	To    time.Time
	Value string
}

// Segments 将 [from, to] 按配置版本切分为取值恒定的区间，未配置区间取默认值
func (t *Timeline) Segments(key string, from, to time.Time) []TimelineSegment {
	from, to = dateOf(from), dateOf(to)
	if to.Before(from) {
		return nil
	}
	var segs []TimelineSegment
	cursor := from
	for !cursor.After(to) {
		value := t.ValueAsOf(key, cursor)
		end := to
		if next, ok := t.nextBoundary(key, cursor); ok && next.Before(end.AddDate(0, 0, 1)) {
			end = next.AddDate(0, 0, -1)
		}
		segs = append(segs, TimelineSegment{From: cursor, To: end, Value: value})
		cursor = end.AddDate(0, 0, 1)
	}
	return segs
}

// nextBoundary 返回 cursor 之后第一个取值可能变化的日期
func (t *Timeline) nextBoundary(key string, cursor time.Time) (time.Time, bool) {
	var best time.Time
	found := false
	consider := func(d time.Time) {
		if d.After(cursor) && (!found || d.Before(best)) {
			best, found = d, true
		}
	}
	for _, v := range t.byKey[key] {
		consider(v.EffectiveFrom)
		if v.EffectiveTo != nil {
			consider(v.EffectiveTo.AddDate(0, 0, 1))
		}
	}
	return best, found
}

// CheckInvariants 校验某 key 的版本互不重叠且至多一个当前版本
func (t *Timeline) CheckInvariants(key string) error {
	vs := t.byKey[key]
	open := 0
	for i, v := range vs {
		if v.EffectiveTo == nil {
			open++
		} else if v.EffectiveTo.Before(v.EffectiveFrom) {
			return fmt.Errorf("%s: 版本 %s 的区间倒置", key, formatDate(v.EffectiveFrom))
		}
		if i == 0 {
			continue
		}
		prev := vs[i-1]
		if prev.EffectiveTo == nil || !prev.EffectiveTo.Before(v.EffectiveFrom) {
			return fmt.Errorf("%s: 版本 %s 与 %s 区间重叠", key, formatDate(prev.EffectiveFrom), formatDate(v.EffectiveFrom))
		}
	}
	if open > 1 {
		return fmt.Errorf("%s: 存在 %d 个当前版本", key, open)
	}
	return nil
}
