package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/paiban/nightshift/pkg/errors"
)

// TargetMode 目标班次数来源
type TargetMode int

const (
	TargetFixed    TargetMode = iota // 固定整数
	TargetAuto                       // 待自动计算
	TargetResolved                   // 已由需求计算写回
)

// Target 目标班次数
type Target struct {
	Mode  TargetMode `json:"mode"`
	Value float64    `json:"value"`
}

// FixedTarget 创建固定目标
func FixedTarget(n int) Target {
	return Target{Mode: TargetFixed, Value: float64(n)}
}

// AutoTarget 创建自动目标
func AutoTarget() Target {
	return Target{Mode: TargetAuto}
}

// ParseTarget 解析目标，整数或 X/auto
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "x", "auto":
		return AutoTarget(), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return Target{}, fmt.Errorf("目标必须为整数或 X: %q", s)
	}
	if n < 0 {
		return Target{}, fmt.Errorf("目标不能为负数: %d", n)
	}
	return FixedTarget(n), nil
}

// IsAuto 是否仍待计算
func (t Target) IsAuto() bool {
	return t.Mode == TargetAuto
}

// Floor 目标向下取整，用于区间判断
func (t Target) Floor() int {
	return int(t.Value)
}

// resolve 自动目标只允许写回一次
func (t *Target) resolve(v float64) error {
	if t.Mode != TargetAuto {
		return fmt.Errorf("目标已确定，不能重复写回")
	}
	t.Mode = TargetResolved
	t.Value = v
	return nil
}

// String 返回目标描述
func (t Target) String() string {
	switch t.Mode {
	case TargetAuto:
		return "X"
	case TargetResolved:
		return strconv.FormatFloat(t.Value, 'f', 2, 64)
	default:
		return strconv.Itoa(int(t.Value))
	}
}

// Worker 夜班员工
type Worker struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Employment  float64 `json:"employment"`   // 工作量比例 (0,1]
	MinInterval int     `json:"min_interval"` // 两个班次之间的最小间隔天数
	Workday     Target  `json:"workday"`
	Weekend     Target  `json:"weekend"`
	Desired     DateSet `json:"-"`
	Undesired   DateSet `json:"-"`
}

// Wants 是否希望在该日值班
func (w *Worker) Wants(t time.Time) bool {
	return w.Desired != nil && w.Desired.Has(t)
}

// Avoids 是否不能在该日值班
func (w *Worker) Avoids(t time.Time) bool {
	return w.Undesired != nil && w.Undesired.Has(t)
}

// DisplayName 优先返回姓名
func (w *Worker) DisplayName() string {
	if w.Name != "" {
		return w.Name
	}
	return w.ID
}

// Roster 有序员工名单，下标即序列中的员工编号
type Roster struct {
	Workers []*Worker
	index   map[string]int
}

// NewRoster 创建员工名单并校验
func NewRoster(workers []*Worker) (*Roster, error) {
	var ve apperrors.ValidationErrors
	if len(workers) == 0 {
		ve.Add("workers", "员工名单不能为空")
	}

	r := &Roster{Workers: workers, index: make(map[string]int, len(workers))}
	for i, w := range workers {
		field := fmt.Sprintf("workers[%d]", i)
		if w.ID == "" {
			ve.Add(field+".id", "不能为空")
		} else if _, dup := r.index[w.ID]; dup {
			ve.Add(field+".id", fmt.Sprintf("重复的员工标识 %s", w.ID))
		}
		if w.Employment <= 0 || w.Employment > 1 {
			ve.Add(field+".employment", "必须在 (0,1] 范围内")
		}
		if w.MinInterval < 0 {
			ve.Add(field+".min_interval", "不能为负数")
		}
		if w.Desired == nil {
			w.Desired = NewDateSet()
		}
		if w.Undesired == nil {
			w.Undesired = NewDateSet()
		}
		r.index[w.ID] = i
	}

	if ve.HasErrors() {
		return nil, ve.ToAppError()
	}
	return r, nil
}

// Len 员工数
func (r *Roster) Len() int {
	return len(r.Workers)
}

// Index 根据标识查找下标
func (r *Roster) Index(id string) (int, bool) {
	i, ok := r.index[id]
	return i, ok
}

// Worker 根据下标返回员工
func (r *Roster) Worker(i int) *Worker {
	return r.Workers[i]
}

// IDs 返回全部员工标识
func (r *Roster) IDs() []string {
	ids := make([]string, len(r.Workers))
	for i, w := range r.Workers {
		ids[i] = w.ID
	}
	return ids
}

// Ready 所有目标是否已确定
func (r *Roster) Ready() bool {
	for _, w := range r.Workers {
		if w.Workday.IsAuto() || w.Weekend.IsAuto() {
			return false
		}
	}
	return true
}
