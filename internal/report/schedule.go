// Package report 排班结果的展示与导出
package report

import (
	"fmt"
	"time"

	apperrors "github.com/paiban/nightshift/pkg/errors"
	"github.com/paiban/nightshift/pkg/model"
)

// Assignment 单日排班
type Assignment struct {
	Date     time.Time     `json:"date"`
	Kind     model.DayKind `json:"kind"`
	Worker   int           `json:"worker"`
	WorkerID string        `json:"worker_id"`
	Eligible bool          `json:"eligible"` // false 表示违反当日可排班名单
}

// Schedule 排班结果
type Schedule struct {
	Calendar    *model.Calendar
	Roster      *model.Roster
	Assignments []Assignment
}

// NewSchedule 将序列展开为逐日排班
func NewSchedule(c *model.Calendar, r *model.Roster, genes []int) (*Schedule, error) {
	if len(genes) != c.Len() {
		return nil, apperrors.New(apperrors.CodeInternal,
			fmt.Sprintf("序列长度 %d 与日历天数 %d 不一致", len(genes), c.Len()))
	}

	s := &Schedule{
		Calendar:    c,
		Roster:      r,
		Assignments: make([]Assignment, len(genes)),
	}
	for i, w := range genes {
		if w < 0 || w >= r.Len() {
			return nil, apperrors.New(apperrors.CodeInternal,
				fmt.Sprintf("第 %d 天的员工编号 %d 越界", i, w))
		}
		day := &c.Days[i]
		s.Assignments[i] = Assignment{
			Date:     day.Date,
			Kind:     day.Kind(),
			Worker:   w,
			WorkerID: r.Worker(w).ID,
			Eligible: day.IsEligible(w),
		}
	}
	return s, nil
}

// HardLimitErrors 返回违反可排班名单的日期
func (s *Schedule) HardLimitErrors() []Assignment {
	var out []Assignment
	for _, a := range s.Assignments {
		if !a.Eligible {
			out = append(out, a)
		}
	}
	return out
}

// ByWorker 按员工分组的排班日期
func (s *Schedule) ByWorker() map[string][]time.Time {
	out := make(map[string][]time.Time, s.Roster.Len())
	for _, a := range s.Assignments {
		out[a.WorkerID] = append(out[a.WorkerID], a.Date)
	}
	return out
}
