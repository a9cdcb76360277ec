package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vudayani/spring-ai-llm-demo/internal/evaluator"
)

func TestObserveEvaluation(t *testing.T) {
	m := New()

	m.ObserveEvaluation(evaluator.RubricSourceDefault, nil, 0.9, time.Second)
	m.ObserveEvaluation(evaluator.RubricSourceDefault, nil, 0.4, time.Second)
	m.ObserveEvaluation(evaluator.RubricSourceCustom, errors.New("boom"), 0, time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EvaluationCounter.WithLabelValues("default", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EvaluationCounter.WithLabelValues("custom", "error")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.EvaluationDuration))
	assert.Equal(t, 1, testutil.CollectAndCount(m.EvaluationScore))
}

func TestNewInstancesDoNotConflict(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveHTTPRequest("/evaluate/", http.MethodPost, http.StatusOK, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `llm_evaluator_http_requests_total{code="200",method="POST",route="/evaluate/"} 1`)
}

func TestRegistryGathersCollectors(t *testing.T) {
	m := New()
	m.ObserveEvaluation(evaluator.RubricSourceCustom, nil, 0.5, time.Second)

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["llm_evaluator_evaluations_total"])
	assert.True(t, names["llm_evaluator_score"])
	assert.True(t, names["go_goroutines"])
}
