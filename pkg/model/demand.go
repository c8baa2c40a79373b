package model

import (
	"fmt"

	apperrors "github.com/paiban/nightshift/pkg/errors"
)

// Demand 班次需求计算结果
type Demand struct {
	Workdays     int     `json:"workdays"`      // 权重 <= 1.29 的天数（含周五）
	Weekends     int     `json:"weekends"`      // 权重 > 1.29 的天数
	Fridays      int     `json:"fridays"`       // 周五类天数
	ShareWorkday float64 `json:"share_workday"` // 每个全职自动员工应承担的工作日班次
	ShareWeekend float64 `json:"share_weekend"` // 每个全职自动员工应承担的周末班次
	IdealFriday  float64 `json:"ideal_friday"`  // 人均周五班次
}

// ResolveDemand 计算自动目标并写回员工记录，只能执行一次
func ResolveDemand(c *Calendar, r *Roster) (*Demand, error) {
	if r == nil || r.Len() == 0 {
		return nil, apperrors.InvalidDemand("roster", "员工名单为空")
	}

	workdays, fridays, weekends := c.CountKinds()
	d := &Demand{
		Workdays:    workdays + fridays,
		Weekends:    weekends,
		Fridays:     fridays,
		IdealFriday: float64(fridays) / float64(r.Len()),
	}

	leftWorkday, leftWeekend := float64(d.Workdays), float64(d.Weekends)
	var autoWorkday, autoWeekend []*Worker
	for _, w := range r.Workers {
		if w.Workday.IsAuto() {
			autoWorkday = append(autoWorkday, w)
		} else {
			leftWorkday -= w.Workday.Value
		}
		if w.Weekend.IsAuto() {
			autoWeekend = append(autoWeekend, w)
		} else {
			leftWeekend -= w.Weekend.Value
		}
	}

	share, err := divide("workday", leftWorkday, len(autoWorkday))
	if err != nil {
		return nil, err
	}
	d.ShareWorkday = share
	for _, w := range autoWorkday {
		if err := w.Workday.resolve(share * w.Employment); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInvalidDemand, "写回工作日目标失败").
				WithField("worker", w.ID)
		}
	}

	share, err = divide("weekend", leftWeekend, len(autoWeekend))
	if err != nil {
		return nil, err
	}
	d.ShareWeekend = share
	for _, w := range autoWeekend {
		if err := w.Weekend.resolve(share * w.Employment); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInvalidDemand, "写回周末目标失败").
				WithField("worker", w.ID)
		}
	}

	return d, nil
}

// divide 将剩余天数平均分给自动员工
func divide(kind string, leftover float64, autoCount int) (float64, error) {
	if autoCount == 0 {
		return 0, nil
	}
	if leftover < 0 {
		return 0, apperrors.InvalidDemand(kind,
			fmt.Sprintf("固定目标之和超过总天数 %.0f 天", -leftover))
	}
	return leftover / float64(autoCount), nil
}
