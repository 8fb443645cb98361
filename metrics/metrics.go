package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "interclasses"

// Metrics owns a private registry. A nil *Metrics is valid and records
// nothing, which keeps services usable in tests without wiring.
type Metrics struct {
	registry *prometheus.Registry

	ledgerAdjustments *prometheus.CounterVec
	matchOperations   *prometheus.CounterVec
	penaltiesApplied  *prometheus.CounterVec
	bracketResults    prometheus.Counter
	rankingRuns       prometheus.Counter
	httpDuration      *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		ledgerAdjustments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_adjustments_total",
			Help:      "Bucket adjustments applied to aggregate scores.",
		}, []string{"bucket", "direction"}),
		matchOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_operations_total",
			Help:      "Match create, edit and delete operations that committed.",
		}, []string{"operation"}),
		penaltiesApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "penalties_applied_total",
			Help:      "Penalties applied by type.",
		}, []string{"type"}),
		bracketResults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bracket_results_total",
			Help:      "Bracket matchup results recorded.",
		}),
		rankingRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "food_ranking_runs_total",
			Help:      "Food-drive ranking recomputations.",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ledgerAdjustments,
		m.matchOperations,
		m.penaltiesApplied,
		m.bracketResults,
		m.rankingRuns,
		m.httpDuration,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) LedgerAdjusted(bucket string, delta float64) {
	if m == nil || delta == 0 {
		return
	}
	direction := "apply"
	if delta < 0 {
		direction = "reverse"
	}
	m.ledgerAdjustments.WithLabelValues(bucket, direction).Inc()
}

func (m *Metrics) MatchOperation(op string) {
	if m == nil {
		return
	}
	m.matchOperations.WithLabelValues(op).Inc()
}

func (m *Metrics) PenaltyApplied(penaltyType string) {
	if m == nil {
		return
	}
	m.penaltiesApplied.WithLabelValues(penaltyType).Inc()
}

func (m *Metrics) BracketResultRecorded() {
	if m == nil {
		return
	}
	m.bracketResults.Inc()
}

func (m *Metrics) RankingComputed() {
	if m == nil {
		return
	}
	m.rankingRuns.Inc()
}

// Middleware observes request latency labelled with the chi route pattern,
// so path parameters do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
