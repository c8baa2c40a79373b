package optimizer

import "math"

// BuildPool 构建繁殖池
// 低于平均适应度的序列被淘汰，其余序列按 (f+1-min)/((max+1-min)/100) 向上取整次数复制。
// 返回繁殖池和本代精英（第一个达到最大适应度的序列）。
func BuildPool(p *Population) (pool []*Sequence, elite *Sequence) {
	if len(p.Sequences) == 0 {
		return nil, nil
	}

	mean := p.Mean()
	survivors := make([]*Sequence, 0, len(p.Sequences))
	for _, seq := range p.Sequences {
		// 最优序列总是保留
		if seq.Fitness >= mean || seq.Fitness == p.MaxFitness {
			survivors = append(survivors, seq)
		}
	}

	span := p.MaxFitness + 1 - p.MinFitness
	for _, seq := range survivors {
		if elite == nil && seq.Fitness == p.MaxFitness {
			elite = seq
		}
		copies := int(math.Ceil(100 * (seq.Fitness + 1 - p.MinFitness) / span))
		if copies < 1 {
			copies = 1
		}
		for i := 0; i < copies; i++ {
			pool = append(pool, seq)
		}
	}
	return pool, elite
}
