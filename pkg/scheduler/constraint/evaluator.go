package constraint

import (
	"fmt"

	apperrors "github.com/paiban/nightshift/pkg/errors"
	"github.com/paiban/nightshift/pkg/model"
)

// Evaluator 序列适应度评估器，可被多个岛屿并发使用
type Evaluator struct {
	calendar    *model.Calendar
	roster      *model.Roster
	idealFriday float64
	weights     Weights
	kinds       []model.DayKind
}

// NewEvaluator 创建评估器，名单中的目标必须已全部确定
func NewEvaluator(c *model.Calendar, r *model.Roster, idealFriday float64, w Weights) (*Evaluator, error) {
	if !r.Ready() {
		return nil, apperrors.InvalidDemand("target", "存在尚未计算的自动目标")
	}
	if err := w.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidConfig, "惩罚权重无效")
	}

	kinds := make([]model.DayKind, c.Len())
	for i := range c.Days {
		kinds[i] = c.Days[i].Kind()
	}
	return &Evaluator{
		calendar:    c,
		roster:      r,
		idealFriday: idealFriday,
		weights:     w,
		kinds:       kinds,
	}, nil
}

// Weights 返回评估器使用的权重
func (e *Evaluator) Weights() Weights {
	return e.weights
}

// Perfect 完美排班的得分
func (e *Evaluator) Perfect() float64 {
	return e.weights.Max() * float64(e.roster.Len())
}

// Evaluate 计算序列得分，genes[i] 为第 i 天的员工下标
func (e *Evaluator) Evaluate(genes []int) float64 {
	return e.evaluate(genes, nil)
}

// EvaluateDetailed 计算得分并返回每条违规
func (e *Evaluator) EvaluateDetailed(genes []int) *Result {
	r := &Result{Perfect: e.Perfect(), Violations: make([]ViolationDetail, 0)}
	r.Score = e.evaluate(genes, func(v ViolationDetail) {
		r.Violations = append(r.Violations, v)
	})
	return r
}

func (e *Evaluator) evaluate(genes []int, sink func(ViolationDetail)) float64 {
	shifts := make([][]int, e.roster.Len())
	for day, w := range genes {
		shifts[w] = append(shifts[w], day)
	}

	var total float64
	for w, days := range shifts {
		total += e.scoreWorker(e.roster.Worker(w), days, sink)
	}
	return total
}

// scoreWorker 单个员工得分 = 满分 - 各类惩罚；days 按日期升序
func (e *Evaluator) scoreWorker(w *model.Worker, days []int, sink func(ViolationDetail)) float64 {
	var workdays, fridays, weekends int
	weekendDays := make([]int, 0, len(days))
	for _, d := range days {
		switch e.kinds[d] {
		case model.KindWeekend:
			weekends++
			weekendDays = append(weekendDays, d)
		case model.KindFriday:
			fridays++
			workdays++
			weekendDays = append(weekendDays, d)
		default:
			workdays++
		}
	}

	score := e.weights.Max()
	charge := func(t Type, day int, severity string, penalty float64, format string, args ...interface{}) {
		score -= penalty
		if sink == nil {
			return
		}
		v := ViolationDetail{
			ConstraintType: t,
			WorkerID:       w.ID,
			Message:        fmt.Sprintf(format, args...),
			Severity:       severity,
			Penalty:        penalty,
		}
		if day >= 0 {
			v.Date = model.FormatDate(e.calendar.Days[day].Date)
		}
		sink(v)
	}

	// 数量：周末、工作日、总数三项独立计罚
	weekendTarget := w.Weekend.Floor()
	if !within(weekends, weekendTarget) {
		charge(TypeCount, -1, SeverityWarning, e.weights.Count,
			"周末班次 %d 不在 [%d,%d]", weekends, weekendTarget, weekendTarget+1)
	}
	workdayTarget := w.Workday.Floor()
	if !within(workdays, workdayTarget) {
		charge(TypeCount, -1, SeverityWarning, e.weights.Count,
			"工作日班次 %d 不在 [%d,%d]", workdays, workdayTarget, workdayTarget+1)
	}
	totalTarget := int(w.Workday.Value + w.Weekend.Value)
	if !within(len(days), totalTarget) {
		charge(TypeCount, -1, SeverityWarning, e.weights.Count,
			"总班次 %d 不在 [%d,%d]", len(days), totalTarget, totalTarget+1)
	}

	fridayTarget := int(e.idealFriday)
	if !within(fridays, fridayTarget) {
		charge(TypeFriday, -1, SeverityWarning, e.weights.Friday,
			"周五班次 %d 不在 [%d,%d]", fridays, fridayTarget, fridayTarget+1)
	}

	for i := 1; i < len(weekendDays); i++ {
		if gap := weekendDays[i] - weekendDays[i-1]; gap < WeekendSpacingDays {
			charge(TypeWeekendSpacing, weekendDays[i], SeverityWarning, e.weights.Weekend,
				"周五/周末班次间隔 %d 天，少于 %d 天", gap, WeekendSpacingDays)
			break
		}
	}

	intervalAt, criticalAt := -1, -1
	for i := 1; i < len(days); i++ {
		gap := days[i] - days[i-1]
		switch {
		case gap == 1:
			if criticalAt < 0 {
				criticalAt = days[i]
			}
		case gap < w.MinInterval+1:
			if intervalAt < 0 {
				intervalAt = days[i]
			}
		}
	}

	switch {
	case e.weights.FoldCritical && criticalAt >= 0:
		charge(TypeInterval, criticalAt, SeverityCritical, e.weights.Interval,
			"连续两天值班")
	case intervalAt >= 0:
		charge(TypeInterval, intervalAt, SeverityWarning, e.weights.Interval,
			"班次间隔小于最小间隔 %d 天", w.MinInterval)
	}
	if !e.weights.FoldCritical && criticalAt >= 0 {
		charge(TypeCritical, criticalAt, SeverityCritical, e.weights.Critical,
			"连续两天值班")
	}

	return score
}

// within 数量是否落在 [target, target+1]
func within(n, target int) bool {
	return n >= target && n <= target+1
}
