// Package service 串联输入、搜索、输出与持久化的排班流程
package service

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/paiban/nightshift/internal/config"
	"github.com/paiban/nightshift/internal/loader"
	"github.com/paiban/nightshift/internal/metrics"
	"github.com/paiban/nightshift/internal/report"
	"github.com/paiban/nightshift/internal/repository"
	apperrors "github.com/paiban/nightshift/pkg/errors"
	"github.com/paiban/nightshift/pkg/logger"
	"github.com/paiban/nightshift/pkg/model"
	"github.com/paiban/nightshift/pkg/scheduler/constraint"
	"github.com/paiban/nightshift/pkg/scheduler/optimizer"
)

// RunSaver 运行记录保存接口
type RunSaver interface {
	Save(ctx context.Context, run *repository.Run) error
}

// Outcome 一次排班的全部产出
type Outcome struct {
	RunID    uuid.UUID
	Input    *loader.Input
	Calendar *model.Calendar
	Demand   *model.Demand
	Result   *optimizer.Result
	Schedule *report.Schedule
	Summary  *report.Summary
}

// Service 排班服务
type Service struct {
	cfg      *config.Config
	out      io.Writer
	recorder *metrics.Recorder
	saver    RunSaver
}

// Option 服务选项
type Option func(*Service)

// WithOutput 指定排班表输出位置，默认标准输出
func WithOutput(w io.Writer) Option {
	return func(s *Service) { s.out = w }
}

// WithRecorder 启用指标记录
func WithRecorder(r *metrics.Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithSaver 启用运行记录持久化
func WithSaver(saver RunSaver) Option {
	return func(s *Service) { s.saver = saver }
}

// New 创建排班服务
func New(cfg *config.Config, opts ...Option) *Service {
	s := &Service{cfg: cfg, out: os.Stdout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load 按配置读取输入
func (s *Service) Load() (*loader.Input, error) {
	in := s.cfg.Input
	if in.Roster != "" {
		return loader.LoadYAML(in.Roster)
	}
	return loader.LoadLegacy(loader.LegacyOptions{
		Dir:          in.LegacyDir,
		WorkersFile:  in.WorkersFile,
		HolidaysFile: in.HolidaysFile,
		NotesFile:    in.NotesFile,
		Start:        in.Start,
		End:          in.End,
	})
}

// Run 执行完整排班流程
// 搜索被取消或超时时仍输出当前最优排班，并返回对应错误
func (s *Service) Run(ctx context.Context) (*Outcome, error) {
	out, err := s.run(ctx)
	if err != nil && s.recorder != nil {
		s.recorder.RecordError(string(apperrors.GetCode(err)))
	}
	return out, err
}

func (s *Service) run(ctx context.Context) (*Outcome, error) {
	outcome := &Outcome{RunID: uuid.New()}
	ctx = logger.WithRunID(ctx, outcome.RunID.String())
	log := logger.WithContext(ctx)

	in, err := s.Load()
	if err != nil {
		return nil, err
	}
	outcome.Input = in
	log.Info().
		Str("source", in.Source).
		Str("span", in.Span.String()).
		Int("workers", in.Roster.Len()).
		Int("holidays", len(in.Holidays)).
		Msg("输入加载完成")

	cal, err := s.prepare(in)
	if err != nil {
		return nil, err
	}
	outcome.Calendar = cal

	demand, err := model.ResolveDemand(cal, in.Roster)
	if err != nil {
		return nil, err
	}
	outcome.Demand = demand
	log.Info().
		Int("workdays", demand.Workdays).
		Int("weekends", demand.Weekends).
		Int("fridays", demand.Fridays).
		Float64("share_workday", demand.ShareWorkday).
		Float64("share_weekend", demand.ShareWeekend).
		Float64("ideal_friday", demand.IdealFriday).
		Msg("班次需求计算完成")

	res, runErr := s.search(ctx, cal, in.Roster, demand)
	if res == nil || res.Winner == nil {
		if runErr == nil {
			runErr = apperrors.New(apperrors.CodeInternal, "搜索未产生任何排班")
		}
		return outcome, runErr
	}
	outcome.Result = res
	if runErr != nil {
		log.Warn().Err(runErr).Msg("搜索提前结束，输出当前最优排班")
	}

	schedule, err := report.NewSchedule(cal, in.Roster, res.Winner.Genes)
	if err != nil {
		return outcome, err
	}
	outcome.Schedule = schedule
	outcome.Summary = report.Summarize(schedule)
	if n := outcome.Summary.HardLimits; n > 0 {
		log.Error().Int("days", n).Msg("排班违反可排班名单")
	}

	if err := s.write(in, res, outcome); err != nil {
		return outcome, err
	}

	if s.saver != nil {
		run := repository.NewRun(res, schedule)
		run.ID = outcome.RunID
		// 取消后仍保存已输出的排班
		if err := s.saver.Save(context.WithoutCancel(ctx), run); err != nil {
			return outcome, err
		}
		log.Info().Str("run_id", run.ID.String()).Msg("排班结果已保存")
	}
	return outcome, runErr
}

// prepare 生成日历并计算每日可排班员工
func (s *Service) prepare(in *loader.Input) (*model.Calendar, error) {
	cal, err := in.Calendar()
	if err != nil {
		return nil, err
	}
	if err := cal.BuildEligibility(in.Roster); err != nil {
		return nil, err
	}
	return cal, nil
}

// search 构建评估器并运行岛屿遗传算法
func (s *Service) search(ctx context.Context, cal *model.Calendar, r *model.Roster, d *model.Demand) (*optimizer.Result, error) {
	searchEval, err := constraint.NewEvaluator(cal, r, d.IdealFriday, constraint.SearchWeights())
	if err != nil {
		return nil, err
	}
	diagEval, err := constraint.NewEvaluator(cal, r, d.IdealFriday, constraint.DiagnosticWeights())
	if err != nil {
		return nil, err
	}

	opt, err := optimizer.NewIslandOptimizer(s.cfg.Search.Optimizer(), cal, searchEval, diagEval)
	if err != nil {
		return nil, err
	}
	opt.WithLogger(logger.NewSearchLogger(ctx))
	if s.recorder != nil {
		opt.WithObserver(s.recorder)
	}

	if t := s.cfg.Search.Timeout; t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}
	return opt.Run(ctx)
}

// write 输出排班表、统计、违规、备注以及结果文件
func (s *Service) write(in *loader.Input, res *optimizer.Result, outcome *Outcome) error {
	start := time.Now()
	out := s.cfg.Output

	if out.Table {
		if err := report.WriteTable(s.out, outcome.Schedule); err != nil {
			return apperrors.Wrap(err, apperrors.CodeInternal, "输出排班表失败")
		}
		if err := report.WriteViolations(s.out, res.Violations); err != nil {
			return apperrors.Wrap(err, apperrors.CodeInternal, "输出违规信息失败")
		}
	}
	if out.Summary {
		if err := report.WriteSummary(s.out, outcome.Summary); err != nil {
			return apperrors.Wrap(err, apperrors.CodeInternal, "输出统计失败")
		}
	}
	if err := report.WriteNotes(s.out, in.Notes); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "输出备注失败")
	}

	if out.ResultsFile != "" {
		if err := report.WriteResults(out.ResultsFile, outcome.Schedule); err != nil {
			return err
		}
	}
	logger.Debug().Dur("duration", time.Since(start)).Str("results", out.ResultsFile).Msg("结果输出完成")
	return nil
}
