// NightShift 夜班排班工具
// 主程序入口

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paiban/nightshift/internal/config"
	"github.com/paiban/nightshift/internal/database"
	"github.com/paiban/nightshift/internal/metrics"
	"github.com/paiban/nightshift/internal/repository"
	"github.com/paiban/nightshift/internal/service"
	apperrors "github.com/paiban/nightshift/pkg/errors"
	"github.com/paiban/nightshift/pkg/logger"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	os.Exit(apperrors.GetExitCode(run()))
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	showVersion := flag.Bool("version", false, "打印版本信息")
	bindFlags(cfg)
	flag.Parse()

	if *showVersion {
		fmt.Printf("NightShift v%s\nBuild: %s (%s)\n", Version, BuildTime, GitCommit)
		return nil
	}

	logger.Init(cfg.Log)
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("配置无效")
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []service.Option{service.WithOutput(os.Stdout)}

	if cfg.Metrics.Enabled {
		rec := metrics.NewRecorder()
		opts = append(opts, service.WithRecorder(rec))
		srv := startMetrics(cfg.Metrics, rec)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	if cfg.Database.Enabled {
		db, err := database.New(ctx, &cfg.Database)
		if err != nil {
			logger.Error().Err(err).Msg("数据库不可用")
			return err
		}
		defer db.Close()
		if err := repository.EnsureSchema(ctx, db); err != nil {
			logger.Error().Err(err).Msg("初始化数据表失败")
			return err
		}
		opts = append(opts, service.WithSaver(repository.NewRunRepository(db)))
	}

	outcome, err := service.New(cfg, opts...).Run(ctx)
	if err != nil {
		logger.Error().
			Str("code", string(apperrors.GetCode(err))).
			Err(err).
			Msg("排班失败")
		return err
	}

	logger.Info().
		Str("run_id", outcome.RunID.String()).
		Str("status", string(outcome.Result.Status)).
		Float64("score", outcome.Result.DiagnosticFitness).
		Float64("perfect", outcome.Result.DiagnosticPerfect).
		Str("results", cfg.Output.ResultsFile).
		Msg("排班完成")
	return nil
}

// bindFlags 命令行参数覆盖环境变量配置
func bindFlags(cfg *config.Config) {
	flag.StringVar(&cfg.Input.Roster, "roster", cfg.Input.Roster, "YAML 名单文件")
	flag.StringVar(&cfg.Input.LegacyDir, "legacy-dir", cfg.Input.LegacyDir, "旧版文本数据目录")
	flag.StringVar(&cfg.Input.WorkersFile, "workers", cfg.Input.WorkersFile, "旧版员工名单文件")
	flag.StringVar(&cfg.Input.HolidaysFile, "holidays", cfg.Input.HolidaysFile, "旧版节假日文件")
	flag.StringVar(&cfg.Input.NotesFile, "notes", cfg.Input.NotesFile, "旧版备注文件")
	flag.StringVar(&cfg.Input.Start, "start", cfg.Input.Start, "排班开始日期 YYYY-MM-DD")
	flag.StringVar(&cfg.Input.End, "end", cfg.Input.End, "排班结束日期 YYYY-MM-DD")

	flag.StringVar(&cfg.Output.ResultsFile, "results", cfg.Output.ResultsFile, "结果文件，为空则不写入")
	flag.BoolVar(&cfg.Output.Table, "table", cfg.Output.Table, "输出排班表")
	flag.BoolVar(&cfg.Output.Summary, "summary", cfg.Output.Summary, "输出员工统计")

	flag.IntVar(&cfg.Search.PopulationSize, "population", cfg.Search.PopulationSize, "每个岛屿的种群大小")
	flag.IntVar(&cfg.Search.Generations, "generations", cfg.Search.Generations, "最大代数")
	flag.IntVar(&cfg.Search.Islands, "islands", cfg.Search.Islands, "岛屿数量")
	flag.IntVar(&cfg.Search.Parallelism, "parallelism", cfg.Search.Parallelism, "并行岛屿数，0 表示全部并行")
	flag.Int64Var(&cfg.Search.Seed, "seed", cfg.Search.Seed, "随机种子，0 表示按时间生成")
	flag.DurationVar(&cfg.Search.Timeout, "timeout", cfg.Search.Timeout, "搜索超时，0 表示不限时")

	flag.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "日志级别 debug/info/warn/error/off")
	flag.BoolVar(&cfg.Metrics.Enabled, "metrics", cfg.Metrics.Enabled, "启用 Prometheus 指标端点")
	flag.StringVar(&cfg.Metrics.Addr, "metrics-addr", cfg.Metrics.Addr, "指标端点监听地址")
	flag.BoolVar(&cfg.Database.Enabled, "db", cfg.Database.Enabled, "保存结果到 PostgreSQL")
}

// startMetrics 在后台启动指标端点
func startMetrics(cfg config.MetricsConfig, rec *metrics.Recorder) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, rec.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"nightshift"}`))
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", cfg.Addr).Str("path", cfg.Path).Msg("指标端点已启动")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("指标端点异常退出")
		}
	}()
	return srv
}
