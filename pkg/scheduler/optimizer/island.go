package optimizer

import (
	"math/rand"

	"github.com/paiban/nightshift/pkg/model"
)

// Scorer 搜索阶段的适应度评估
type Scorer interface {
	Evaluate(genes []int) float64
	Perfect() float64
}

// Island 岛屿（独立进化的种群），岛屿之间不交换个体
type Island struct {
	ID         int
	Name       string
	Best       *Sequence
	History    []float64 // 每代结束时的岛屿最优适应度
	population *Population
	rng        *rand.Rand
}

// NewIsland 创建岛屿并生成随机初始种群
func NewIsland(id int, c *model.Calendar, cfg *Config, seed int64) *Island {
	rng := rand.New(rand.NewSource(seed))
	return &Island{
		ID:         id,
		Name:       IslandName(id),
		population: NewRandomPopulation(c, cfg.PopulationSize, rng),
		rng:        rng,
	}
}

// Population 当前种群
func (is *Island) Population() *Population {
	return is.population
}

// Step 进化一代：评估、选择、更新岛屿最优、繁殖下一代，返回本代精英
func (is *Island) Step(s Scorer, c *model.Calendar, cfg *Config) *Sequence {
	is.population.Evaluate(s)
	pool, elite := BuildPool(is.population)

	// 适应度相同时取较新的个体
	if is.Best == nil || elite.Fitness >= is.Best.Fitness {
		is.Best = elite.Clone()
	}
	is.History = append(is.History, is.Best.Fitness)

	is.population = NextGeneration(pool, is.Best, cfg, c, is.rng)
	return elite
}
