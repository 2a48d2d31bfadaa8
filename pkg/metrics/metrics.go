package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// Peticiones a /api/generate por código de respuesta
	GenerateRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_generate_requests_total",
			Help: "Total number of question generation requests",
		},
		[]string{"status"},
	)

	// Duración de las llamadas al proveedor de IA
	GenerateDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quiz_generate_duration_seconds",
			Help:    "Time spent waiting for the completion provider",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	// Lotes cargados por el adaptador de preguntas
	BatchLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_batch_loads_total",
			Help: "Total number of question batches resolved for sessions",
		},
		[]string{"mode", "result"}, // mode: preset/generated, result: ok/error
	)

	// Conexiones de quiz abiertas
	ActiveQuizSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "quiz_active_sessions_current",
			Help: "Current number of connected quiz sessions",
		},
	)
)

// Handler expone /metrics sobre fasthttp
func Handler() fasthttp.RequestHandler {
	return fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
}
