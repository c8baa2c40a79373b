// Package optimizer 提供基于岛屿模型的遗传排班算法
package optimizer

import (
	"fmt"
	"math"

	apperrors "github.com/paiban/nightshift/pkg/errors"
)

// DefaultIslandNames 默认岛屿名称
var DefaultIslandNames = []string{"africa", "eurasia", "australia", "america", "antarctica"}

// Config 遗传算法配置
type Config struct {
	PopulationSize  int   `json:"population_size"`  // 每个岛屿的种群大小
	Generations     int   `json:"generations"`      // 最大代数
	MutationRate    int   `json:"mutation_rate"`    // 每个位置的变异概率（百分比）
	ElitePercentage int   `json:"elite_percentage"` // 精英克隆占种群的百分比
	Islands         int   `json:"islands"`          // 岛屿数量
	Parallelism     int   `json:"parallelism"`      // 并发岛屿数，0 表示与岛屿数相同
	Seed            int64 `json:"seed"`             // 随机种子，0 表示按时间生成
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		PopulationSize:  350,
		Generations:     200,
		MutationRate:    20,
		ElitePercentage: 10,
		Islands:         len(DefaultIslandNames),
	}
}

// Validate 检查配置
func (c *Config) Validate() error {
	switch {
	case c.PopulationSize < 2:
		return apperrors.InvalidConfig("population_size", fmt.Sprintf("至少为 2，当前 %d", c.PopulationSize))
	case c.Generations < 1:
		return apperrors.InvalidConfig("generations", fmt.Sprintf("至少为 1，当前 %d", c.Generations))
	case c.MutationRate < 0 || c.MutationRate > 100:
		return apperrors.InvalidConfig("mutation_rate", fmt.Sprintf("必须在 0-100 之间，当前 %d", c.MutationRate))
	case c.ElitePercentage < 0 || c.ElitePercentage > 100:
		return apperrors.InvalidConfig("elite_percentage", fmt.Sprintf("必须在 0-100 之间，当前 %d", c.ElitePercentage))
	case c.Islands < 1:
		return apperrors.InvalidConfig("islands", fmt.Sprintf("至少为 1，当前 %d", c.Islands))
	case c.Parallelism < 0:
		return apperrors.InvalidConfig("parallelism", "不能为负数")
	}
	return nil
}

// EliteSlots 每代精英克隆数量，至少 1 个且不超过种群大小
func (c *Config) EliteSlots() int {
	n := int(math.Ceil(float64(c.PopulationSize*c.ElitePercentage) / 100))
	if n < 1 {
		n = 1
	}
	if n > c.PopulationSize {
		n = c.PopulationSize
	}
	return n
}

// IslandName 返回第 i 个岛屿的名称
func IslandName(i int) string {
	if i < len(DefaultIslandNames) {
		return DefaultIslandNames[i]
	}
	return fmt.Sprintf("island-%d", i)
}
