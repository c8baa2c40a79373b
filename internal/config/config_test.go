package config

import (
	"testing"
	"time"

	apperrors "github.com/paiban/nightshift/pkg/errors"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Search.PopulationSize != 350 || cfg.Search.Generations != 200 {
		t.Errorf("unexpected search defaults: %+v", cfg.Search)
	}
	if cfg.Search.Islands != 5 || cfg.Search.MutationRate != 20 || cfg.Search.ElitePercentage != 10 {
		t.Errorf("unexpected search defaults: %+v", cfg.Search)
	}
	if cfg.Input.WorkersFile != "docold.txt" {
		t.Errorf("WorkersFile = %q", cfg.Input.WorkersFile)
	}
	if cfg.Log.Output != "stderr" {
		t.Errorf("logs should default to stderr, got %q", cfg.Log.Output)
	}
	if cfg.Database.Enabled || cfg.Metrics.Enabled {
		t.Error("database and metrics should be opt-in")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SEARCH_GENERATIONS", "50")
	t.Setenv("SEARCH_SEED", "1234")
	t.Setenv("SEARCH_TIMEOUT", "30s")
	t.Setenv("DB_ENABLED", "true")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Search.Generations != 50 || cfg.Search.Seed != 1234 {
		t.Errorf("search overrides not applied: %+v", cfg.Search)
	}
	if cfg.Search.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v", cfg.Search.Timeout)
	}
	if !cfg.Database.Enabled || cfg.Database.Port != 6543 {
		t.Errorf("database overrides not applied: %+v", cfg.Database)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}

	opt := cfg.Search.Optimizer()
	if opt.Generations != 50 || opt.Seed != 1234 {
		t.Errorf("Optimizer() = %+v", opt)
	}
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("SEARCH_POPULATION_SIZE", "many")

	if _, err := Load(); !apperrors.Is(err, apperrors.CodeInvalidConfig) {
		t.Errorf("expected INVALID_CONFIG, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"YAML 名单", func(c *Config) { c.Input.Roster = "roster.yaml" }, false},
		{"旧版目录", func(c *Config) {
			c.Input.LegacyDir = "data"
			c.Input.Start = "2024-03-01"
			c.Input.End = "2024-03-31"
		}, false},
		{"缺少输入", func(c *Config) {}, true},
		{"输入冲突", func(c *Config) {
			c.Input.Roster = "roster.yaml"
			c.Input.LegacyDir = "data"
		}, true},
		{"旧版缺少日期", func(c *Config) { c.Input.LegacyDir = "data" }, true},
		{"变异率非法", func(c *Config) {
			c.Input.Roster = "roster.yaml"
			c.Search.MutationRate = 150
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
