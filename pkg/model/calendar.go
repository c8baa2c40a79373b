package model

import (
	"time"

	apperrors "github.com/paiban/nightshift/pkg/errors"
)

// CalendarDay 排班周期中的一天
type CalendarDay struct {
	Date     time.Time `json:"date"`
	Weight   DayWeight `json:"weight"`
	Holiday  bool      `json:"holiday,omitempty"`
	Eligible []int     `json:"eligible"` // 可排班员工下标，按名单顺序
}

// Kind 日类型
func (d *CalendarDay) Kind() DayKind {
	return d.Weight.Kind()
}

// IsEligible 员工是否可在该日排班
func (d *CalendarDay) IsEligible(worker int) bool {
	for _, w := range d.Eligible {
		if w == worker {
			return true
		}
	}
	return false
}

// Calendar 排班日历，搜索开始后只读
type Calendar struct {
	Span  DateRange
	Days  []CalendarDay
	index map[time.Time]int
}

// NewCalendar 按日期范围生成日历，holidays 覆盖对应日期的权重
func NewCalendar(span DateRange, holidays map[time.Time]DayWeight) (*Calendar, error) {
	if !span.Valid() {
		return nil, apperrors.New(apperrors.CodeInvalidTimeRange, "结束日期早于开始日期").
			WithDetails(span.String())
	}

	n := span.Days()
	c := &Calendar{
		Span:  span,
		Days:  make([]CalendarDay, 0, n),
		index: make(map[time.Time]int, n),
	}
	for d := span.Start; !d.After(span.End); d = d.AddDate(0, 0, 1) {
		day := CalendarDay{Date: d, Weight: DefaultWeight(d.Weekday())}
		if w, ok := holidays[d]; ok {
			day.Weight = w
			day.Holiday = true
		}
		c.index[d] = len(c.Days)
		c.Days = append(c.Days, day)
	}
	return c, nil
}

// Len 天数
func (c *Calendar) Len() int {
	return len(c.Days)
}

// Position 返回日期在日历中的位置
func (c *Calendar) Position(t time.Time) (int, bool) {
	i, ok := c.index[Day(t)]
	return i, ok
}

// Gap 两个位置之间相差的天数
func (c *Calendar) Gap(a, b int) int {
	return int(c.Days[b].Date.Sub(c.Days[a].Date).Hours() / 24)
}

// BuildEligibility 计算每日可排班员工
// 默认为全部未标记"不能"的员工；只要有人希望该日值班，则仅限这些员工
func (c *Calendar) BuildEligibility(r *Roster) error {
	for i := range c.Days {
		day := &c.Days[i]

		var desired, available []int
		for w, worker := range r.Workers {
			if worker.Wants(day.Date) {
				desired = append(desired, w)
			}
			if !worker.Avoids(day.Date) {
				available = append(available, w)
			}
		}

		if len(desired) > 0 {
			day.Eligible = desired
		} else {
			day.Eligible = available
		}

		if len(day.Eligible) == 0 {
			return apperrors.EmptyEligibility(FormatDate(day.Date))
		}
	}
	return nil
}

// CountKinds 统计各类日期数量
func (c *Calendar) CountKinds() (workdays, fridays, weekends int) {
	for i := range c.Days {
		switch c.Days[i].Kind() {
		case KindWeekend:
			weekends++
		case KindFriday:
			fridays++
		default:
			workdays++
		}
	}
	return workdays, fridays, weekends
}
