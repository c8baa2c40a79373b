package optimizer

import (
	"math/rand"

	"github.com/paiban/nightshift/pkg/model"
)

// Sequence 候选排班，Genes[i] 为第 i 天值班员工在名单中的下标
type Sequence struct {
	Genes   []int
	Fitness float64
}

// RandomSequence 每天从可排班员工中均匀抽取一人
func RandomSequence(c *model.Calendar, rng *rand.Rand) *Sequence {
	genes := make([]int, c.Len())
	for i := range c.Days {
		eligible := c.Days[i].Eligible
		genes[i] = eligible[rng.Intn(len(eligible))]
	}
	return &Sequence{Genes: genes}
}

// Clone 深拷贝
func (s *Sequence) Clone() *Sequence {
	genes := make([]int, len(s.Genes))
	copy(genes, s.Genes)
	return &Sequence{Genes: genes, Fitness: s.Fitness}
}

// Valid 检查每天的员工都在可排班集合中，返回第一个不合法的位置
func (s *Sequence) Valid(c *model.Calendar) (int, bool) {
	if len(s.Genes) != c.Len() {
		return len(s.Genes), false
	}
	for i, w := range s.Genes {
		if !c.Days[i].IsEligible(w) {
			return i, false
		}
	}
	return -1, true
}

// Population 一代种群
type Population struct {
	Sequences  []*Sequence
	MaxFitness float64
	MinFitness float64
}

// NewRandomPopulation 生成随机初始种群
func NewRandomPopulation(c *model.Calendar, size int, rng *rand.Rand) *Population {
	p := &Population{Sequences: make([]*Sequence, size)}
	for i := range p.Sequences {
		p.Sequences[i] = RandomSequence(c, rng)
	}
	return p
}

// Evaluate 为所有序列打分并记录最大、最小值
func (p *Population) Evaluate(s Scorer) {
	for i, seq := range p.Sequences {
		seq.Fitness = s.Evaluate(seq.Genes)
		if i == 0 || seq.Fitness > p.MaxFitness {
			p.MaxFitness = seq.Fitness
		}
		if i == 0 || seq.Fitness < p.MinFitness {
			p.MinFitness = seq.Fitness
		}
	}
}

// Mean 平均适应度
func (p *Population) Mean() float64 {
	if len(p.Sequences) == 0 {
		return 0
	}
	var sum float64
	for _, seq := range p.Sequences {
		sum += seq.Fitness
	}
	return sum / float64(len(p.Sequences))
}
