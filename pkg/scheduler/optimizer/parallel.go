package optimizer

import (
	"context"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	apperrors "github.com/paiban/nightshift/pkg/errors"
	"github.com/paiban/nightshift/pkg/logger"
	"github.com/paiban/nightshift/pkg/model"
	"github.com/paiban/nightshift/pkg/scheduler/constraint"
)

// Status 搜索状态
type Status string

const (
	StatusInitializing Status = "initializing"
	StatusEvolving     Status = "evolving"
	StatusConverged    Status = "converged" // 找到满分排班
	StatusExhausted    Status = "exhausted" // 代数用尽
	StatusCancelled    Status = "cancelled" // 上下文取消或超时
)

// Diagnoser 最终评审使用的诊断评估
type Diagnoser interface {
	EvaluateDetailed(genes []int) *constraint.Result
}

// Observer 搜索过程观察者，回调在汇总阶段按岛屿顺序串行调用
type Observer interface {
	OnGeneration(island string, generation int, elite, best float64)
	OnComplete(result *Result)
}

// IslandSummary 单个岛屿的最终结果
type IslandSummary struct {
	ID                int     `json:"id"`
	Name              string  `json:"name"`
	SearchFitness     float64 `json:"search_fitness"`
	DiagnosticFitness float64 `json:"diagnostic_fitness"`
	Violations        int     `json:"violations"`
}

// Result 搜索结果
type Result struct {
	Winner            *Sequence                    `json:"-"`
	Island            string                       `json:"island"`
	SearchFitness     float64                      `json:"search_fitness"`
	SearchPerfect     float64                      `json:"search_perfect"`
	DiagnosticFitness float64                      `json:"diagnostic_fitness"`
	DiagnosticPerfect float64                      `json:"diagnostic_perfect"`
	Violations        []constraint.ViolationDetail `json:"violations"`
	Generations       int                          `json:"generations"`
	Status            Status                       `json:"status"`
	Seed              int64                        `json:"seed"`
	Islands           []IslandSummary              `json:"islands"`
	Duration          time.Duration                `json:"duration"`
}

// IslandOptimizer 岛屿模型遗传算法
// 多个独立种群并行进化，每代结束后按岛屿顺序汇总全局最优
type IslandOptimizer struct {
	config     *Config
	calendar   *model.Calendar
	search     Scorer
	diagnostic Diagnoser
	observers  []Observer
	log        *logger.SearchLogger

	mu     sync.RWMutex
	status Status
}

// NewIslandOptimizer 创建岛屿模型优化器
func NewIslandOptimizer(cfg *Config, c *model.Calendar, search Scorer, diagnostic Diagnoser) (*IslandOptimizer, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if c == nil || c.Len() == 0 {
		return nil, apperrors.New(apperrors.CodeInvalidTimeRange, "排班日历为空")
	}
	for i := range c.Days {
		if len(c.Days[i].Eligible) == 0 {
			return nil, apperrors.EmptyEligibility(model.FormatDate(c.Days[i].Date))
		}
	}
	return &IslandOptimizer{
		config:     cfg,
		calendar:   c,
		search:     search,
		diagnostic: diagnostic,
		log:        logger.NewSearchLogger(context.Background()),
		status:     StatusInitializing,
	}, nil
}

// WithObserver 注册观察者
func (o *IslandOptimizer) WithObserver(obs Observer) *IslandOptimizer {
	o.observers = append(o.observers, obs)
	return o
}

// WithLogger 替换日志器
func (o *IslandOptimizer) WithLogger(l *logger.SearchLogger) *IslandOptimizer {
	o.log = l
	return o
}

// Status 当前状态
func (o *IslandOptimizer) Status() Status {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.status
}

func (o *IslandOptimizer) setStatus(s Status) {
	o.mu.Lock()
	o.status = s
	o.mu.Unlock()
}

// Run 执行搜索
// 取消或超时时返回当前最优结果以及对应错误
func (o *IslandOptimizer) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	o.setStatus(StatusInitializing)

	seed := o.config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	islands := make([]*Island, o.config.Islands)
	for i := range islands {
		islands[i] = NewIsland(i, o.calendar, o.config, seed+int64(i))
	}

	parallelism := o.config.Parallelism
	if parallelism == 0 {
		parallelism = len(islands)
	}
	perfect := o.search.Perfect()

	o.log.StartSearch(o.calendar.Len(), len(islands), o.config.Generations, seed, perfect)
	o.setStatus(StatusEvolving)

	var (
		global      *Sequence
		generations int
		runErr      error
	)
	for gen := 0; gen < o.config.Generations; gen++ {
		if err := apperrors.FromContext(ctx); err != nil {
			o.setStatus(StatusCancelled)
			runErr = err
			break
		}

		elites := make([]*Sequence, len(islands))
		p := pool.New().WithMaxGoroutines(parallelism)
		for i, is := range islands {
			p.Go(func() {
				elites[i] = is.Step(o.search, o.calendar, o.config)
			})
		}
		p.Wait()
		generations = gen + 1

		for i, is := range islands {
			o.log.Generation(is.Name, gen, elites[i].Fitness, is.Best.Fitness)
			for _, obs := range o.observers {
				obs.OnGeneration(is.Name, gen, elites[i].Fitness, is.Best.Fitness)
			}
			if global == nil || is.Best.Fitness > global.Fitness {
				global = is.Best
				o.log.Improved(is.Name, gen, global.Fitness, perfect)
			}
		}

		if global.Fitness >= perfect {
			o.setStatus(StatusConverged)
			break
		}
	}
	if o.Status() == StatusEvolving {
		o.setStatus(StatusExhausted)
	}
	o.log.Finished(string(o.Status()), generations)

	result := o.finalize(islands, perfect)
	result.Generations = generations
	result.Status = o.Status()
	result.Seed = seed
	result.Duration = time.Since(start)

	for _, obs := range o.observers {
		obs.OnComplete(result)
	}
	if result.Winner != nil {
		o.log.SearchComplete(result.Island, result.Duration, result.SearchFitness, result.DiagnosticFitness)
	}
	return result, runErr
}

// finalize 用诊断权重重新评估每个岛屿的最优解，得分最高者胜出，同分取编号小的岛屿
func (o *IslandOptimizer) finalize(islands []*Island, perfect float64) *Result {
	result := &Result{
		SearchPerfect: perfect,
		Islands:       make([]IslandSummary, 0, len(islands)),
	}

	var winner *constraint.Result
	for _, is := range islands {
		if is.Best == nil {
			continue
		}
		diag := o.diagnostic.EvaluateDetailed(is.Best.Genes)
		result.Islands = append(result.Islands, IslandSummary{
			ID:                is.ID,
			Name:              is.Name,
			SearchFitness:     is.Best.Fitness,
			DiagnosticFitness: diag.Score,
			Violations:        len(diag.Violations),
		})

		if winner == nil || diag.Score > winner.Score {
			winner = diag
			result.Winner = is.Best.Clone()
			result.Island = is.Name
			result.SearchFitness = is.Best.Fitness
		}
	}

	if winner != nil {
		result.DiagnosticFitness = winner.Score
		result.DiagnosticPerfect = winner.Perfect
		result.Violations = winner.Violations
		for _, v := range winner.Violations {
			o.log.Violation(v.WorkerID, string(v.ConstraintType), v.Message, v.Penalty)
		}
	}
	return result
}
