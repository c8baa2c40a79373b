package optimizer

import (
	"math/rand"

	"github.com/paiban/nightshift/pkg/model"
)

// Crossover 均匀交叉：第 0 天保持不变，其余每天以 1/2 概率交换两个子代的值
func Crossover(a, b *Sequence, rng *rand.Rand) (*Sequence, *Sequence) {
	ca, cb := a.Clone(), b.Clone()
	ca.Fitness, cb.Fitness = 0, 0
	for i := 1; i < len(ca.Genes); i++ {
		if rng.Intn(2) == 1 {
			ca.Genes[i], cb.Genes[i] = cb.Genes[i], ca.Genes[i]
		}
	}
	return ca, cb
}

// Mutate 每个位置以 rate% 的概率从当天可排班员工中重新抽取
func Mutate(s *Sequence, c *model.Calendar, rate int, rng *rand.Rand) {
	if rate <= 0 {
		return
	}
	for i := range s.Genes {
		if rng.Intn(100) < rate {
			eligible := c.Days[i].Eligible
			s.Genes[i] = eligible[rng.Intn(len(eligible))]
		}
	}
}

// NextGeneration 构建下一代：先克隆精英，再用交叉变异的子代填满种群
func NextGeneration(pool []*Sequence, elite *Sequence, cfg *Config, c *model.Calendar, rng *rand.Rand) *Population {
	size := cfg.PopulationSize
	next := make([]*Sequence, 0, size)

	for i := 0; i < cfg.EliteSlots(); i++ {
		next = append(next, elite.Clone())
	}

	for len(next) < size {
		a := pool[rng.Intn(len(pool))]
		b := pool[rng.Intn(len(pool))]
		ca, cb := Crossover(a, b, rng)

		Mutate(ca, c, cfg.MutationRate, rng)
		next = append(next, ca)
		if len(next) < size {
			Mutate(cb, c, cfg.MutationRate, rng)
			next = append(next, cb)
		}
	}

	return &Population{Sequences: next}
}
