// Package logger 提供统一的日志框架
package logger

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

type ctxKey struct{}

// Level 日志级别
type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
)

// Config 日志配置
type Config struct {
	Level      string `yaml:"level" env:"LEVEL" envDefault:"info"`
	Format     string `yaml:"format" env:"FORMAT" envDefault:"console"` // json/console
	Output     string `yaml:"output" env:"OUTPUT" envDefault:"stderr"`  // stdout/stderr/file
	FilePath   string `yaml:"file_path,omitempty" env:"FILE_PATH"`
	TimeFormat string `yaml:"time_format,omitempty" env:"TIME_FORMAT" envDefault:"15:04:05"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stderr",
		TimeFormat: time.TimeOnly,
	}
}

// Init 初始化日志器，仅首次调用生效
func Init(cfg Config) {
	once.Do(func() {
		logger = build(cfg)
	})
}

func build(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	var output io.Writer
	switch cfg.Output {
	case "stdout":
		output = os.Stdout
	case "file":
		output = os.Stderr
		if cfg.FilePath != "" {
			if f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); err == nil {
				output = f
			}
		}
	default:
		// 标准输出留给排班表
		output = os.Stderr
	}

	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: cfg.TimeFormat,
		}
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// parseLevel 解析日志级别
func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Get 获取日志器
func Get() *zerolog.Logger {
	Init(DefaultConfig())
	return &logger
}

// WithRunID 将运行ID写入上下文
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, runID)
}

// WithContext 从上下文创建日志器
func WithContext(ctx context.Context) *zerolog.Logger {
	l := Get().With().Logger()
	if runID, ok := ctx.Value(ctxKey{}).(string); ok {
		l = l.With().Str("run_id", runID).Logger()
	}
	return &l
}

// Debug 记录调试日志
func Debug() *zerolog.Event {
	return Get().Debug()
}

// Info 记录信息日志
func Info() *zerolog.Event {
	return Get().Info()
}

// Warn 记录警告日志
func Warn() *zerolog.Event {
	return Get().Warn()
}

// Error 记录错误日志
func Error() *zerolog.Event {
	return Get().Error()
}

// WithField 添加字段
func WithField(key string, value interface{}) *zerolog.Logger {
	l := Get().With().Interface(key, value).Logger()
	return &l
}

// WithFields 添加多个字段
func WithFields(fields map[string]interface{}) *zerolog.Logger {
	ctx := Get().With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	l := ctx.Logger()
	return &l
}

// SearchLogger 遗传搜索专用日志器
type SearchLogger struct {
	base zerolog.Logger
}

// NewSearchLogger 创建遗传搜索日志器
func NewSearchLogger(ctx context.Context) *SearchLogger {
	return &SearchLogger{base: WithContext(ctx).With().Str("component", "genetic").Logger()}
}

// NewSearchLoggerFrom 基于指定日志器创建，测试时可传入 zerolog.Nop()
func NewSearchLoggerFrom(l zerolog.Logger) *SearchLogger {
	return &SearchLogger{base: l.With().Str("component", "genetic").Logger()}
}

// StartSearch 记录搜索开始
func (l *SearchLogger) StartSearch(days, islands, generations int, seed int64, perfect float64) {
	l.base.Info().
		Int("days", days).
		Int("islands", islands).
		Int("generations", generations).
		Int64("seed", seed).
		Float64("perfect", perfect).
		Msg("开始遗传搜索")
}

// Generation 记录单个岛屿的代际进展
func (l *SearchLogger) Generation(island string, generation int, elite, best float64) {
	l.base.Debug().
		Str("island", island).
		Int("generation", generation).
		Float64("elite", elite).
		Float64("best", best).
		Msg("代际完成")
}

// Improved 记录全局最优提升
func (l *SearchLogger) Improved(island string, generation int, score, perfect float64) {
	l.base.Info().
		Str("island", island).
		Int("generation", generation).
		Float64("score", score).
		Float64("perfect", perfect).
		Msg("全局最优更新")
}

// Finished 记录搜索终止状态
func (l *SearchLogger) Finished(status string, generations int) {
	l.base.Info().
		Str("status", status).
		Int("generations", generations).
		Msg("遗传搜索终止")
}

// Violation 记录诊断评分发现的违规
func (l *SearchLogger) Violation(worker, category, detail string, penalty float64) {
	l.base.Warn().
		Str("worker", worker).
		Str("category", category).
		Str("detail", detail).
		Float64("penalty", penalty).
		Msg("约束违反")
}

// SearchComplete 记录搜索完成
func (l *SearchLogger) SearchComplete(island string, duration time.Duration, search, diagnostic float64) {
	l.base.Info().
		Str("island", island).
		Dur("duration", duration).
		Float64("search_score", search).
		Float64("diagnostic_score", diagnostic).
		Msg("排班生成完成")
}
