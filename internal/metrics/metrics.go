// Package metrics exposes Prometheus collectors for evaluations and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vudayani/spring-ai-llm-demo/internal/evaluator"
)

// Metrics holds the collectors. Each instance owns its registry so tests can
// build as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	// EvaluationCounter counts evaluations by rubric source and status.
	EvaluationCounter *prometheus.CounterVec

	// EvaluationScore is the distribution of successful scores.
	EvaluationScore *prometheus.HistogramVec

	// EvaluationDuration is the time spent grading, failures included.
	EvaluationDuration *prometheus.HistogramVec

	// HTTPRequestCounter counts requests by route, method and status code.
	HTTPRequestCounter *prometheus.CounterVec

	HTTPRequestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		EvaluationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_evaluator_evaluations_total",
				Help: "Total number of evaluations by rubric source and status",
			},
			[]string{"rubric_source", "status"},
		),

		EvaluationScore: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "llm_evaluator_score",
				Help:    "Scores returned by the grader",
				Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
			},
			[]string{"rubric_source"},
		),

		EvaluationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "llm_evaluator_evaluation_duration_seconds",
				Help:    "Duration of evaluations in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"rubric_source"},
		),

		HTTPRequestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_evaluator_http_requests_total",
				Help: "Total number of HTTP requests by route, method and status code",
			},
			[]string{"route", "method", "code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "llm_evaluator_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
	}
}

// ObserveEvaluation implements evaluator.Recorder.
func (m *Metrics) ObserveEvaluation(source evaluator.RubricSource, err error, score float64, elapsed time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}

	m.EvaluationCounter.WithLabelValues(string(source), status).Inc()
	m.EvaluationDuration.WithLabelValues(string(source)).Observe(elapsed.Seconds())
	if err == nil {
		m.EvaluationScore.WithLabelValues(string(source)).Observe(score)
	}
}

func (m *Metrics) ObserveHTTPRequest(route, method string, code int, elapsed time.Duration) {
	m.HTTPRequestCounter.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
