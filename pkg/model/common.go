// Package model 定义夜班排班的核心数据模型
package model

import (
	"fmt"
	"sort"
	"time"
)

// DateLayout 日期格式
const DateLayout = "2006-01-02"

// Day 将时间归一化为 UTC 零点，作为日期键使用
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate 解析 YYYY-MM-DD 格式的日期
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("日期格式错误 %q: %w", s, err)
	}
	return t, nil
}

// FormatDate 格式化日期
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateRange 日期范围（闭区间）
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateRange 创建日期范围
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: Day(start), End: Day(end)}
}

// Valid 检查范围是否有效
func (r DateRange) Valid() bool {
	return !r.Start.IsZero() && !r.End.Before(r.Start)
}

// Days 返回范围内的天数
func (r DateRange) Days() int {
	if !r.Valid() {
		return 0
	}
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// Contains 检查日期是否在范围内
func (r DateRange) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// String 返回范围描述
func (r DateRange) String() string {
	return FormatDate(r.Start) + ".." + FormatDate(r.End)
}

// DateSet 日期集合
type DateSet map[time.Time]struct{}

// NewDateSet 创建日期集合
func NewDateSet(dates ...time.Time) DateSet {
	s := make(DateSet, len(dates))
	for _, d := range dates {
		s.Add(d)
	}
	return s
}

// Add 添加日期
func (s DateSet) Add(t time.Time) {
	s[Day(t)] = struct{}{}
}

// Has 检查是否包含日期
func (s DateSet) Has(t time.Time) bool {
	_, ok := s[Day(t)]
	return ok
}

// Sorted 按时间顺序返回日期
func (s DateSet) Sorted() []time.Time {
	out := make([]time.Time, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
