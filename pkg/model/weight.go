package model

import "time"

// DayWeight 日权重，数值越大班次越"重"
type DayWeight float64

// 默认日权重
const (
	WeightWeekday  DayWeight = 1.125 // 周一至周三
	WeightThursday DayWeight = 1.01
	WeightFriday   DayWeight = 1.25
	WeightSaturday DayWeight = 1.37
	WeightSunday   DayWeight = 1.3

	// WeekendThreshold 权重大于该值的日期按周末计
	WeekendThreshold DayWeight = 1.29
)

// DayKind 日类型
type DayKind int

const (
	KindWorkday DayKind = iota // 普通工作日（含周四）
	KindFriday                 // 周五
	KindWeekend                // 周六、周日及节假日
)

// String 返回日类型名称
func (k DayKind) String() string {
	switch k {
	case KindFriday:
		return "friday"
	case KindWeekend:
		return "weekend"
	default:
		return "workday"
	}
}

// DefaultWeight 返回星期几的默认权重
func DefaultWeight(wd time.Weekday) DayWeight {
	switch wd {
	case time.Thursday:
		return WeightThursday
	case time.Friday:
		return WeightFriday
	case time.Saturday:
		return WeightSaturday
	case time.Sunday:
		return WeightSunday
	default:
		return WeightWeekday
	}
}

// Kind 根据权重判断日类型
func (w DayWeight) Kind() DayKind {
	switch {
	case w > WeekendThreshold:
		return KindWeekend
	case w == WeightFriday:
		return KindFriday
	default:
		return KindWorkday
	}
}

// IsWeekend 是否按周末计
func (w DayWeight) IsWeekend() bool {
	return w > WeekendThreshold
}
