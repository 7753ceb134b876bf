package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	BalanceRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teams_balance_runs_total",
			Help: "Total team generation attempts",
		},
		[]string{"result"}, // success|failure
	)

	BalanceDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "teams_balance_duration_seconds",
			Help:    "Duration of team generation including roster load and persistence",
			Buckets: prometheus.DefBuckets,
		},
	)

	BalanceWarningsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teams_balance_warnings_total",
			Help: "Goalkeeper warnings raised while generating teams",
		},
		[]string{"kind"}, // no_goalkeepers|single_goalkeeper|extra_goalkeepers
	)

	RosterSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "teams_roster_size",
			Help:    "Number of confirmed players per generated lineup",
			Buckets: []float64{2, 4, 6, 8, 10, 12, 14, 16, 18, 22, 26, 30},
		},
	)

	EventsAwaitingTeams = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "teams_events_awaiting_lineup",
			Help: "Scheduled events with balancing enabled, confirmed players and no stored lineup",
		},
	)

	SchedulerJobRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teams_scheduler_job_runs_total",
			Help: "Background job executions",
		},
		[]string{"job", "result"},
	)
)

func init() {
	prometheus.MustRegister(BalanceRunsTotal)
	prometheus.MustRegister(BalanceDuration)
	prometheus.MustRegister(BalanceWarningsTotal)
	prometheus.MustRegister(RosterSize)
	prometheus.MustRegister(EventsAwaitingTeams)
	prometheus.MustRegister(SchedulerJobRunsTotal)
}

func Register(mux *http.ServeMux) {
	mux.Handle("GET /metrics", promhttp.Handler())
}
