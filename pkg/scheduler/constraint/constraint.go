// Package constraint 定义夜班排班的软约束与惩罚模型
package constraint

import "fmt"

// Type 约束类型标识
type Type string

const (
	TypeCount          Type = "count"           // 班次数量偏离目标
	TypeFriday         Type = "friday"          // 周五班次偏离人均值
	TypeWeekendSpacing Type = "weekend_spacing" // 两个周五/周末班次间隔不足
	TypeInterval       Type = "interval"        // 两个班次间隔小于最小间隔
	TypeCritical       Type = "critical"        // 连续两天值班
)

// 严重程度
const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// WeekendSpacingDays 周五/周末班次之间的最小间隔
const WeekendSpacingDays = 10

// Weights 惩罚权重，同一套评估逻辑通过不同权重区分搜索与诊断
type Weights struct {
	Count    float64 `json:"count"`
	Friday   float64 `json:"friday"`
	Weekend  float64 `json:"weekend"`
	Interval float64 `json:"interval"`
	Critical float64 `json:"critical"`

	// FoldCritical 为 true 时连续值班计入间隔类别并标记为 critical
	FoldCritical bool `json:"fold_critical"`
}

// SearchWeights 遗传搜索使用的权重
func SearchWeights() Weights {
	return Weights{
		Count:    2,
		Friday:   1,
		Weekend:  1,
		Interval: 2,
		Critical: 3,
	}
}

// DiagnosticWeights 最终评审使用的放大权重
func DiagnosticWeights() Weights {
	return Weights{
		Count:        1000,
		Friday:       50,
		Weekend:      150,
		Interval:     300,
		Critical:     1500,
		FoldCritical: true,
	}
}

// Max 单个员工的理论满分
func (w Weights) Max() float64 {
	return w.Count + w.Friday + w.Weekend + w.Interval + w.Critical + 1
}

// Validate 检查权重是否合法
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"count": w.Count, "friday": w.Friday, "weekend": w.Weekend,
		"interval": w.Interval, "critical": w.Critical,
	} {
		if v < 0 {
			return fmt.Errorf("惩罚权重 %s 不能为负数: %v", name, v)
		}
	}
	return nil
}

// ViolationDetail 约束违反详情
type ViolationDetail struct {
	ConstraintType Type    `json:"constraint_type"`
	WorkerID       string  `json:"worker_id"`
	Date           string  `json:"date,omitempty"`
	Message        string  `json:"message"`
	Severity       string  `json:"severity"`
	Penalty        float64 `json:"penalty"`
}

// Result 诊断评估结果
type Result struct {
	Score      float64           `json:"score"`
	Perfect    float64           `json:"perfect"`
	Violations []ViolationDetail `json:"violations"`
}

// IsPerfect 是否满分
func (r *Result) IsPerfect() bool {
	return r.Score >= r.Perfect
}

// TotalPenalty 违规惩罚之和
func (r *Result) TotalPenalty() float64 {
	var total float64
	for _, v := range r.Violations {
		total += v.Penalty
	}
	return total
}

// ByWorker 按员工分组的违规
func (r *Result) ByWorker() map[string][]ViolationDetail {
	out := make(map[string][]ViolationDetail)
	for _, v := range r.Violations {
		out[v.WorkerID] = append(out[v.WorkerID], v)
	}
	return out
}
