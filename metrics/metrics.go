package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeNative     = "native"
	OutcomeDecomposed = "decomposed"
	OutcomeLocal      = "local"
)

var (
	// FunctionDuration is the time spent evaluating a compiled function call.
	FunctionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cubist_function_duration_seconds",
			Help:    "Time spent evaluating compiled function calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"function"},
	)
	// Evaluations counts set evaluations by how they were carried out: pushed down to a
	// native evaluator, decomposed by level, or evaluated locally.
	Evaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cubist_set_evaluations_total",
			Help: "Total number of set evaluations by outcome",
		},
		[]string{"function", "outcome"},
	)
	Cancellations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cubist_cancellations_total",
			Help: "Total number of executions cancelled or timed out during evaluation",
		},
		[]string{"reason"},
	)
	// NativeRequests counts requests for native evaluation by whether they were accepted.
	NativeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cubist_native_requests_total",
			Help: "Total number of native evaluation requests by result",
		},
		[]string{"result"},
	)
	Executions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cubist_executions_total",
			Help: "Total number of executions by status",
		},
		[]string{"status"},
	)
)

func Handler() http.Handler {
	return promhttp.Handler()
}
