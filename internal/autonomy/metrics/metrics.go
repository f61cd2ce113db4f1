package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the autonomy module.
type Metrics struct {
	// Verdict outcomes by status and issue type
	VerdictOutcome *prometheus.CounterVec

	// Distribution of computed risk scores
	RiskScore prometheus.Histogram

	// Remediation handler latency by fix type
	RemediationDuration *prometheus.HistogramVec

	// Current autonomy latitude
	Latitude prometheus.Gauge
}

// New creates a Metrics instance with all autonomy module metrics registered.
func New() *Metrics {
	return &Metrics{
		VerdictOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "odyssey_autonomy_verdicts_total",
			Help: "Total gate verdicts by status and issue type",
		}, []string{"status", "issue_type"}),

		RiskScore: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "odyssey_autonomy_risk_score",
			Help:    "Distribution of computed risk scores",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),

		RemediationDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "odyssey_autonomy_remediation_duration_seconds",
			Help:    "Duration of remediation handler executions by fix type",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"fix"}),

		Latitude: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "odyssey_autonomy_latitude",
			Help: "Current autonomy latitude threshold",
		}),
	}
}

// IncrementVerdict records a gate verdict.
func (m *Metrics) IncrementVerdict(status, issueType string) {
	if m != nil {
		m.VerdictOutcome.WithLabelValues(status, issueType).Inc()
	}
}

// ObserveRiskScore records a computed risk score.
func (m *Metrics) ObserveRiskScore(score int) {
	if m != nil {
		m.RiskScore.Observe(float64(score))
	}
}

// ObserveRemediationDuration records a remediation handler execution.
func (m *Metrics) ObserveRemediationDuration(fix string, d time.Duration) {
	if m != nil {
		m.RemediationDuration.WithLabelValues(fix).Observe(d.Seconds())
	}
}

// SetLatitude records the current latitude threshold.
func (m *Metrics) SetLatitude(v int) {
	if m != nil {
		m.Latitude.Set(float64(v))
	}
}
