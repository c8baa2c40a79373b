// Package config 提供配置管理
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	apperrors "github.com/paiban/nightshift/pkg/errors"
	"github.com/paiban/nightshift/pkg/logger"
	"github.com/paiban/nightshift/pkg/scheduler/optimizer"
)

// Config 应用配置
type Config struct {
	App      AppConfig      `envPrefix:"APP_"`
	Log      logger.Config  `envPrefix:"LOG_"`
	Search   SearchConfig   `envPrefix:"SEARCH_"`
	Input    InputConfig    `envPrefix:"INPUT_"`
	Output   OutputConfig   `envPrefix:"OUTPUT_"`
	Database DatabaseConfig `envPrefix:"DB_"`
	Metrics  MetricsConfig  `envPrefix:"METRICS_"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name string `env:"NAME" envDefault:"nightshift"`
	Env  string `env:"ENV" envDefault:"development"`
}

// SearchConfig 遗传搜索配置
type SearchConfig struct {
	PopulationSize  int           `env:"POPULATION_SIZE" envDefault:"350"`
	Generations     int           `env:"GENERATIONS" envDefault:"200"`
	MutationRate    int           `env:"MUTATION_RATE" envDefault:"20"`
	ElitePercentage int           `env:"ELITE_PERCENTAGE" envDefault:"10"`
	Islands         int           `env:"ISLANDS" envDefault:"5"`
	Parallelism     int           `env:"PARALLELISM" envDefault:"0"`
	Seed            int64         `env:"SEED" envDefault:"0"`
	Timeout         time.Duration `env:"TIMEOUT" envDefault:"0s"` // 0 表示不限时
}

// Optimizer 转换为遗传算法配置
func (c SearchConfig) Optimizer() *optimizer.Config {
	return &optimizer.Config{
		PopulationSize:  c.PopulationSize,
		Generations:     c.Generations,
		MutationRate:    c.MutationRate,
		ElitePercentage: c.ElitePercentage,
		Islands:         c.Islands,
		Parallelism:     c.Parallelism,
		Seed:            c.Seed,
	}
}

// InputConfig 输入配置，YAML 名单与旧版文本目录二选一
type InputConfig struct {
	Roster       string `env:"ROSTER"`
	LegacyDir    string `env:"LEGACY_DIR"`
	WorkersFile  string `env:"WORKERS_FILE" envDefault:"docold.txt"`
	HolidaysFile string `env:"HOLIDAYS_FILE" envDefault:"svatky.txt"`
	NotesFile    string `env:"NOTES_FILE"`
	Start        string `env:"START"` // 旧版格式的排班开始日期
	End          string `env:"END"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	ResultsFile string `env:"RESULTS_FILE" envDefault:"results.txt"`
	Table       bool   `env:"TABLE" envDefault:"true"`
	Summary     bool   `env:"SUMMARY" envDefault:"true"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Enabled         bool          `env:"ENABLED" envDefault:"false"`
	Host            string        `env:"HOST" envDefault:"localhost"`
	Port            int           `env:"PORT" envDefault:"5432"`
	Name            string        `env:"NAME" envDefault:"nightshift"`
	User            string        `env:"USER" envDefault:"nightshift"`
	Password        string        `env:"PASSWORD"`
	SSLMode         string        `env:"SSL_MODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"5"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"2"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
}

// DSN 返回数据库连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// MetricsConfig 监控配置
type MetricsConfig struct {
	Enabled bool   `env:"ENABLED" envDefault:"false"`
	Addr    string `env:"ADDR" envDefault:":9090"`
	Path    string `env:"PATH" envDefault:"/metrics"`
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			// 只返回第一个错误使得日志更清晰
			err = aggErr.Errors[0]
		}
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidConfig, "解析环境变量失败")
	}
	return cfg, nil
}

// Validate 检查配置组合是否合法
func (c *Config) Validate() error {
	switch {
	case c.Input.Roster == "" && c.Input.LegacyDir == "":
		return apperrors.InvalidConfig("input", "需要指定 YAML 名单或旧版数据目录")
	case c.Input.Roster != "" && c.Input.LegacyDir != "":
		return apperrors.InvalidConfig("input", "YAML 名单与旧版数据目录不能同时指定")
	case c.Input.LegacyDir != "" && (c.Input.Start == "" || c.Input.End == ""):
		return apperrors.InvalidConfig("input", "旧版数据需要指定开始和结束日期")
	case c.Search.Timeout < 0:
		return apperrors.InvalidConfig("search.timeout", "不能为负数")
	}
	return c.Search.Optimizer().Validate()
}

// IsDevelopment 检查是否为开发环境
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}
