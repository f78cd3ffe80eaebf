// Package metrics records turn and capability metrics with Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder is what the conversation router and capabilities report into.
type Recorder interface {
	ObserveTurn(intent, terminal string, classified bool, duration time.Duration)
	IncCapabilityFailure(capability, kind string)
	ObserveCapability(capability, kind string, duration time.Duration)
	ObservePlanPersist(success bool)
	ObserveLLMUsage(model string, promptTokens, completionTokens int, costUSD float64)
}

// PrometheusRecorder implements Recorder with collectors registered on one registry.
type PrometheusRecorder struct {
	turnsTotal         *prometheus.CounterVec
	turnDuration       *prometheus.HistogramVec
	capabilityFailures *prometheus.CounterVec
	capabilityDuration *prometheus.HistogramVec
	planPersistTotal   *prometheus.CounterVec
	tokensTotal        *prometheus.CounterVec
	costsTotal         *prometheus.CounterVec
}

// NewPrometheusRecorder registers the collectors on reg. Pass a fresh
// prometheus.NewRegistry() in tests to avoid duplicate registration.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	factory := promauto.With(reg)
	return &PrometheusRecorder{
		turnsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studybuddy_turns_total",
				Help: "Total number of handled messages by intent, terminal state and whether the classifier ran",
			},
			[]string{"intent", "terminal", "classified"},
		),
		turnDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "studybuddy_turn_duration_seconds",
				Help:    "Duration of a full message turn in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"terminal"},
		),
		capabilityFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studybuddy_capability_failures_total",
				Help: "Classifier/generator calls that failed or timed out and fell back",
			},
			[]string{"capability", "kind"},
		),
		capabilityDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "studybuddy_capability_duration_seconds",
				Help:    "Duration of classifier/generator calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"capability", "kind"},
		),
		planPersistTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studybuddy_plan_persist_total",
				Help: "Background plan writes by status",
			},
			[]string{"status"},
		),
		tokensTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studybuddy_llm_tokens_total",
				Help: "Tokens used by LLM calls",
			},
			[]string{"model", "type"},
		),
		costsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studybuddy_llm_costs_usd_total",
				Help: "Estimated LLM cost in USD",
			},
			[]string{"model"},
		),
	}
}

func (p *PrometheusRecorder) ObserveTurn(intent, terminal string, classified bool, duration time.Duration) {
	c := "false"
	if classified {
		c = "true"
	}
	p.turnsTotal.WithLabelValues(intent, terminal, c).Inc()
	p.turnDuration.WithLabelValues(terminal).Observe(duration.Seconds())
}

func (p *PrometheusRecorder) IncCapabilityFailure(capability, kind string) {
	p.capabilityFailures.WithLabelValues(capability, kind).Inc()
}

func (p *PrometheusRecorder) ObserveCapability(capability, kind string, duration time.Duration) {
	p.capabilityDuration.WithLabelValues(capability, kind).Observe(duration.Seconds())
}

func (p *PrometheusRecorder) ObservePlanPersist(success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	p.planPersistTotal.WithLabelValues(status).Inc()
}

func (p *PrometheusRecorder) ObserveLLMUsage(model string, promptTokens, completionTokens int, costUSD float64) {
	p.tokensTotal.WithLabelValues(model, "prompt").Add(float64(promptTokens))
	p.tokensTotal.WithLabelValues(model, "completion").Add(float64(completionTokens))
	p.costsTotal.WithLabelValues(model).Add(costUSD)
}

// Nop discards everything.
type Nop struct{}

func (Nop) ObserveTurn(string, string, bool, time.Duration) {}
func (Nop) IncCapabilityFailure(string, string) {}
func (Nop) ObserveCapability(string, string, time.Duration) {}
func (Nop) ObservePlanPersist(bool) {}
func (Nop) ObserveLLMUsage(string, int, int, float64) {}

var (
	_ Recorder = (*PrometheusRecorder)(nil)
	_ Recorder = Nop{}
)
