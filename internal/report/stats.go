package report

import (
	"math"
	"sort"

	"github.com/paiban/nightshift/pkg/model"
)

// WorkerStat 员工班次统计
type WorkerStat struct {
	WorkerID      string  `json:"worker_id"`
	Name          string  `json:"name"`
	Workdays      int     `json:"workdays"` // 含周五
	Fridays       int     `json:"fridays"`
	Weekends      int     `json:"weekends"`
	Total         int     `json:"total"`
	WorkdayTarget float64 `json:"workday_target"`
	WeekendTarget float64 `json:"weekend_target"`
	Deviation     float64 `json:"deviation"` // 班次总数与目标的偏差百分比
}

// Summary 排班汇总
type Summary struct {
	Workers     []WorkerStat `json:"workers"`
	AvgShifts   float64      `json:"avg_shifts"`
	StdDev      float64      `json:"std_dev"`
	TotalGini   float64      `json:"total_gini"`   // 班次总数基尼系数 (0=完全平均)
	WeekendGini float64      `json:"weekend_gini"` // 周末班次基尼系数
	HardLimits  int          `json:"hard_limits"`
}

// Summarize 统计每位员工的班次分布，顺序与名单一致
func Summarize(s *Schedule) *Summary {
	stats := make([]WorkerStat, s.Roster.Len())
	for i, w := range s.Roster.Workers {
		stats[i] = WorkerStat{
			WorkerID:      w.ID,
			Name:          w.DisplayName(),
			WorkdayTarget: w.Workday.Value,
			WeekendTarget: w.Weekend.Value,
		}
	}

	summary := &Summary{}
	for _, a := range s.Assignments {
		st := &stats[a.Worker]
		switch a.Kind {
		case model.KindWeekend:
			st.Weekends++
		case model.KindFriday:
			st.Fridays++
			st.Workdays++
		default:
			st.Workdays++
		}
		st.Total++
		if !a.Eligible {
			summary.HardLimits++
		}
	}

	totals := make([]float64, len(stats))
	weekends := make([]float64, len(stats))
	for i := range stats {
		target := stats[i].WorkdayTarget + stats[i].WeekendTarget
		if target > 0 {
			stats[i].Deviation = (float64(stats[i].Total) - target) / target * 100
		}
		totals[i] = float64(stats[i].Total)
		weekends[i] = float64(stats[i].Weekends)
	}

	summary.Workers = stats
	summary.AvgShifts = mean(totals)
	summary.StdDev = math.Sqrt(variance(totals, summary.AvgShifts))
	summary.TotalGini = gini(totals)
	summary.WeekendGini = gini(weekends)
	return summary
}

// mean 计算平均值
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// variance 计算方差
func variance(values []float64, m float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range values {
		diff := v - m
		sumSquares += diff * diff
	}
	return sumSquares / float64(len(values))
}

// gini 计算基尼系数
func gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	g := 0.0
	for i, v := range sorted {
		g += (2*float64(i+1) - float64(n) - 1) * v
	}
	g = g / (float64(n) * sum)
	return math.Max(0, math.Min(1, g))
}
