package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	discovered   prom.Gauge
	fileResults  *prom.CounterVec
	replacements prom.Counter
	runDuration  prom.Histogram
	runOutcomes  *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the docpathfix metrics on reg.
// A nil reg gets a fresh private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		discovered: prom.NewGauge(prom.GaugeOpts{
			Namespace: "docpathfix",
			Name:      "discovered_files",
			Help:      "HTML files matched by the last pass",
		}),
		fileResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docpathfix",
			Name:      "file_results_total",
			Help:      "Processed files by outcome",
		}, []string{"result"}),
		replacements: prom.NewCounter(prom.CounterOpts{
			Namespace: "docpathfix",
			Name:      "replacements_total",
			Help:      "Bad path prefixes replaced",
		}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "docpathfix",
			Name:      "run_duration_seconds",
			Help:      "Duration of a full corrector pass",
			Buckets:   prom.DefBuckets,
		}),
		runOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docpathfix",
			Name:      "run_outcomes_total",
			Help:      "Corrector passes by final status",
		}, []string{"outcome"}),
	}
	reg.MustRegister(pr.discovered, pr.fileResults, pr.replacements, pr.runDuration, pr.runOutcomes)
	return pr
}

func (p *PrometheusRecorder) SetDiscoveredFiles(n int) {
	if p == nil {
		return
	}
	p.discovered.Set(float64(n))
}

func (p *PrometheusRecorder) IncFileResult(result FileResultLabel) {
	if p == nil {
		return
	}
	p.fileResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) AddReplacements(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.replacements.Add(float64(n))
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRunOutcome(outcome RunOutcomeLabel) {
	if p == nil {
		return
	}
	p.runOutcomes.WithLabelValues(string(outcome)).Inc()
}
