package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "pivot"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	planDuration   *prom.HistogramVec
	planOutcomes   *prom.CounterVec
	pendingFiles   *prom.GaugeVec
	cursorAdvances *prom.CounterVec
	syncDuration   *prom.HistogramVec
}

// NewPrometheusRecorder constructs the metrics and registers them on reg (a fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		planDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_duration_seconds",
			Help:      "Duration of building a repository plan",
			Buckets:   prom.DefBuckets,
		}, []string{"repository"}),
		planOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "plan_outcomes_total",
			Help:      "Plan outcomes by repository",
		}, []string{"repository", "outcome"}),
		pendingFiles: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_files",
			Help:      "Pending documentation files found by the last plan",
		}, []string{"repository"}),
		cursorAdvances: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "cursor_advances_total",
			Help:      "Times a repository cursor was advanced",
		}, []string{"repository"}),
		syncDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Duration of repository clone or fetch",
			Buckets:   prom.DefBuckets,
		}, []string{"repository", "result"}),
	}
	reg.MustRegister(pr.planDuration, pr.planOutcomes, pr.pendingFiles, pr.cursorAdvances, pr.syncDuration)
	return pr
}

func (p *PrometheusRecorder) ObservePlanDuration(repo string, d time.Duration) {
	if p == nil {
		return
	}
	p.planDuration.WithLabelValues(repo).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPlanOutcome(repo string, outcome OutcomeLabel) {
	if p == nil {
		return
	}
	p.planOutcomes.WithLabelValues(repo, string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetPendingFiles(repo string, n int) {
	if p == nil {
		return
	}
	p.pendingFiles.WithLabelValues(repo).Set(float64(n))
}

func (p *PrometheusRecorder) IncCursorAdvance(repo string) {
	if p == nil {
		return
	}
	p.cursorAdvances.WithLabelValues(repo).Inc()
}

func (p *PrometheusRecorder) ObserveSyncDuration(repo string, d time.Duration, success bool) {
	if p == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.syncDuration.WithLabelValues(repo, res).Observe(d.Seconds())
}
