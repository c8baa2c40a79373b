// Package metrics 提供Prometheus监控指标
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/paiban/nightshift/pkg/scheduler/optimizer"
)

const namespace = "nightshift"

// Recorder 搜索指标记录器，实现 optimizer.Observer
type Recorder struct {
	registry *prometheus.Registry

	generations  *prometheus.CounterVec
	islandBest   *prometheus.GaugeVec
	globalBest   prometheus.Gauge
	perfect      prometheus.Gauge
	violations   *prometheus.GaugeVec
	runs         *prometheus.CounterVec
	runDuration  prometheus.Histogram
	searchErrors *prometheus.CounterVec
}

var _ optimizer.Observer = (*Recorder)(nil)

// NewRecorder 创建独立注册表上的指标记录器
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "各岛屿完成的代数",
		}, []string{"island"}),
		islandBest: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "island_best_fitness",
			Help:      "各岛屿当前最优搜索得分",
		}, []string{"island"}),
		globalBest: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "best_fitness",
			Help:      "全局最优搜索得分",
		}),
		perfect: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "diagnostic_perfect",
			Help:      "最终评审的理论满分",
		}),
		violations: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "violations",
			Help:      "最终排班的违规数量",
		}, []string{"type"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "排班运行次数",
		}, []string{"status"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "排班搜索耗时",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		searchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "按错误码统计的运行失败次数",
		}, []string{"code"}),
	}

	r.registry.MustRegister(
		r.generations, r.islandBest, r.globalBest, r.perfect,
		r.violations, r.runs, r.runDuration, r.searchErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// OnGeneration 记录单个岛屿的一代
func (r *Recorder) OnGeneration(island string, _ int, _, best float64) {
	r.generations.WithLabelValues(island).Inc()
	r.islandBest.WithLabelValues(island).Set(best)
}

// OnComplete 记录搜索结果
func (r *Recorder) OnComplete(res *optimizer.Result) {
	r.runs.WithLabelValues(string(res.Status)).Inc()
	r.runDuration.Observe(res.Duration.Seconds())
	r.globalBest.Set(res.SearchFitness)
	r.perfect.Set(res.DiagnosticPerfect)

	r.violations.Reset()
	for _, v := range res.Violations {
		r.violations.WithLabelValues(string(v.ConstraintType)).Inc()
	}
}

// RecordError 记录运行失败
func (r *Recorder) RecordError(code string) {
	r.searchErrors.WithLabelValues(code).Inc()
}

// Registry 返回底层注册表
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler 返回 /metrics 处理器
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
