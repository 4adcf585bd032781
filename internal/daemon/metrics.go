package daemon

import (
	"net/http"

	"github.com/receiptia/receiptia/internal/analysis"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics holds the daemon's Prometheus collectors on a private registry,
// so several services can coexist in one process.
type metrics struct {
	registry *prometheus.Registry

	windowTotal      prometheus.Gauge
	windowExpenses   prometheus.Gauge
	dayDelta         prometheus.Gauge
	weeklyTotal      prometheus.Gauge
	percentile       prometheus.Gauge
	potentialSavings prometheus.Gauge
	insights         *prometheus.GaugeVec
	polls            prometheus.Counter
	pollErrors       prometheus.Counter
	pollDuration     prometheus.Histogram
	subscribers      prometheus.GaugeFunc
}

func newMetrics(subscribers func() float64) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		windowTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "receiptia", Name: "window_spend",
			Help: "Total spend in the analysis window.",
		}),
		windowExpenses: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "receiptia", Name: "window_expenses",
			Help: "Number of expenses in the analysis window.",
		}),
		dayDelta: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "receiptia", Name: "day_over_day_delta",
			Help: "Today's spend minus yesterday's spend.",
		}),
		weeklyTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "receiptia", Name: "weekly_spend",
			Help: "Total spend in the current Monday-start week.",
		}),
		percentile: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "receiptia", Name: "discipline_percentile",
			Help: "Share of reference users the current week beats.",
		}),
		potentialSavings: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "receiptia", Name: "potential_savings",
			Help: "Largest potential savings carried by a current insight.",
		}),
		insights: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "receiptia", Name: "insights",
			Help: "Insights produced by the last analysis, by type.",
		}, []string{"type"}),
		polls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "receiptia", Name: "polls_total",
			Help: "Analysis runs attempted.",
		}),
		pollErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "receiptia", Name: "poll_errors_total",
			Help: "Analysis runs that failed to load ledgers.",
		}),
		pollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "receiptia", Name: "poll_duration_seconds",
			Help:    "Time spent loading and analyzing ledgers.",
			Buckets: prometheus.DefBuckets,
		}),
		subscribers: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "receiptia", Name: "stream_subscribers",
			Help: "Connected SSE clients.",
		}, subscribers),
	}

	m.registry.MustRegister(
		m.windowTotal, m.windowExpenses, m.dayDelta, m.weeklyTotal,
		m.percentile, m.potentialSavings, m.insights,
		m.polls, m.pollErrors, m.pollDuration, m.subscribers,
	)
	return m
}

func (m *metrics) observe(report analysis.Report, expenses int) {
	m.windowTotal.Set(report.Status.AmountLast24h.InexactFloat64())
	m.windowExpenses.Set(float64(expenses))
	m.dayDelta.Set(report.Status.ComparisonYesterday.InexactFloat64())
	m.weeklyTotal.Set(report.Weekly.Total().InexactFloat64())
	m.percentile.Set(float64(report.Comparison.Percentile))
	m.potentialSavings.Set(report.Insights.PotentialSavings().InexactFloat64())

	m.insights.Reset()
	for _, in := range report.Insights {
		m.insights.WithLabelValues(string(in.Type)).Inc()
	}
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
