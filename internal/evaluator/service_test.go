package evaluator

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vudayani/spring-ai-llm-demo/internal/domain"
)

type recordedEvaluation struct {
	source RubricSource
	err    error
	score  float64
}

type fakeRecorder struct {
	mu   sync.Mutex
	seen []recordedEvaluation
}

func (r *fakeRecorder) ObserveEvaluation(source RubricSource, err error, score float64, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, recordedEvaluation{source: source, err: err, score: score})
}

func TestService_ScenarioA_RequiredFieldsOnly(t *testing.T) {
	grader := &StubGrader{Score: 0.9, Reason: "complete"}
	svc := NewService(grader, NewDefaults())

	result, err := svc.Evaluate(context.Background(), &domain.EvaluationRequest{Input: domain.StringPtr("Q"), ActualOutput: domain.StringPtr("A")})
	require.NoError(t, err)

	assert.Equal(t, &domain.EvaluationResult{Score: 0.9, Reason: "complete"}, result)

	tc, rubric, roles := grader.Last()
	assert.Equal(t, []Role{RoleInput, RoleActualOutput}, roles)
	assert.Equal(t, DefaultSteps, rubric.Steps)
	assert.Equal(t, 0.8, rubric.Threshold)
	assert.Equal(t, "Q", tc.Input)
	assert.Equal(t, "A", tc.ActualOutput)
}

func TestService_ScenarioB_ExpectedOutput(t *testing.T) {
	grader := &StubGrader{Score: 0.5, Reason: "partial"}
	svc := NewService(grader, NewDefaults())

	_, err := svc.Evaluate(context.Background(), &domain.EvaluationRequest{
		Input:          domain.StringPtr("Q"),
		ActualOutput:   domain.StringPtr("A"),
		ExpectedOutput: domain.StringPtr("E"),
	})
	require.NoError(t, err)

	tc, _, roles := grader.Last()
	assert.Equal(t, []Role{RoleInput, RoleActualOutput, RoleExpectedOutput}, roles)
	require.NotNil(t, tc.ExpectedOutput)
	assert.Equal(t, "E", *tc.ExpectedOutput)
}

func TestService_ScenarioC_CustomCriteriaKeepThreshold(t *testing.T) {
	grader := &StubGrader{Score: 0.75, Reason: "close"}
	svc := NewService(grader, NewDefaults())

	_, err := svc.Evaluate(context.Background(), &domain.EvaluationRequest{
		Input:              domain.StringPtr("Q"),
		ActualOutput:       domain.StringPtr("A"),
		EvaluationCriteria: []string{"Step 1", "Step 2"},
	})
	require.NoError(t, err)

	_, rubric, roles := grader.Last()
	assert.Equal(t, []string{"Step 1", "Step 2"}, rubric.Steps)
	assert.Equal(t, 0.8, rubric.Threshold)
	assert.Equal(t, RubricSourceCustom, rubric.Source)
	assert.Equal(t, []Role{RoleInput, RoleActualOutput}, roles)
}

func TestService_ScenarioD_GraderFailure(t *testing.T) {
	cause := errors.New("llm completion: dial tcp: connection refused")
	recorder := &fakeRecorder{}
	svc := NewService(&StubGrader{Err: cause}, NewDefaults(), WithRecorder(recorder))

	result, err := svc.Evaluate(context.Background(), &domain.EvaluationRequest{Input: domain.StringPtr("Q"), ActualOutput: domain.StringPtr("A")})

	assert.Nil(t, result)
	require.Error(t, err)
	assert.Equal(t, cause.Error(), err.Error())
	assert.ErrorIs(t, err, cause)

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, StageGrade, failure.Stage)

	require.Len(t, recorder.seen, 1)
	assert.Equal(t, RubricSourceDefault, recorder.seen[0].source)
	assert.ErrorIs(t, recorder.seen[0].err, cause)
}

func TestService_ThresholdIsAlwaysFromDefaults(t *testing.T) {
	requests := []*domain.EvaluationRequest{
		{Input: domain.StringPtr("Q"), ActualOutput: domain.StringPtr("A")},
		{Input: domain.StringPtr("Q"), ActualOutput: domain.StringPtr("A"), EvaluationCriteria: []string{}},
		{Input: domain.StringPtr("Q"), ActualOutput: domain.StringPtr("A"), EvaluationCriteria: []string{"only step"}},
		{Input: domain.StringPtr("Q"), ActualOutput: domain.StringPtr("A"), Context: domain.StringPtr("C"), RetrievalContext: []string{"R"}},
	}

	for _, req := range requests {
		grader := &StubGrader{Score: 1, Reason: "r"}
		_, err := NewService(grader, NewDefaults()).Evaluate(context.Background(), req)
		require.NoError(t, err)

		_, rubric, _ := grader.Last()
		assert.Equal(t, 0.8, rubric.Threshold)
	}
}

func TestService_EmptyCriteriaFallBackToDefaults(t *testing.T) {
	grader := &StubGrader{Score: 1, Reason: "r"}
	svc := NewService(grader, NewDefaults())

	_, err := svc.Evaluate(context.Background(), &domain.EvaluationRequest{
		Input:              domain.StringPtr("Q"),
		ActualOutput:       domain.StringPtr("A"),
		EvaluationCriteria: []string{},
	})
	require.NoError(t, err)

	_, rubric, _ := grader.Last()
	assert.Equal(t, DefaultSteps, rubric.Steps)
	assert.Equal(t, RubricSourceDefault, rubric.Source)
}

func TestService_RecordsSuccess(t *testing.T) {
	recorder := &fakeRecorder{}
	svc := NewService(&StubGrader{Score: 0.95, Reason: "r"}, NewDefaults(), WithRecorder(recorder))

	_, err := svc.Evaluate(context.Background(), &domain.EvaluationRequest{
		Input:              domain.StringPtr("Q"),
		ActualOutput:       domain.StringPtr("A"),
		EvaluationCriteria: []string{"s"},
	})
	require.NoError(t, err)

	require.Len(t, recorder.seen, 1)
	assert.Equal(t, RubricSourceCustom, recorder.seen[0].source)
	assert.NoError(t, recorder.seen[0].err)
	assert.Equal(t, 0.95, recorder.seen[0].score)
}

func TestService_Failures(t *testing.T) {
	t.Run("nil request", func(t *testing.T) {
		_, err := NewService(&StubGrader{}, NewDefaults()).Evaluate(context.Background(), nil)

		var failure *Failure
		require.ErrorAs(t, err, &failure)
		assert.Equal(t, StageNormalize, failure.Stage)
		assert.NotEmpty(t, err.Error())
	})

	t.Run("missing actual output", func(t *testing.T) {
		grader := &StubGrader{}
		_, err := NewService(grader, NewDefaults()).Evaluate(context.Background(),
			&domain.EvaluationRequest{Input: domain.StringPtr("Q")})

		var failure *Failure
		require.ErrorAs(t, err, &failure)
		assert.Equal(t, StageNormalize, failure.Stage)
		assert.EqualError(t, err, "actual_output is required")
		assert.Equal(t, 0, grader.Calls())
	})

	t.Run("no default steps", func(t *testing.T) {
		grader := &StubGrader{}
		_, err := NewService(grader, Defaults{Threshold: 0.8}).Evaluate(context.Background(),
			&domain.EvaluationRequest{Input: domain.StringPtr("Q"), ActualOutput: domain.StringPtr("A")})

		var failure *Failure
		require.ErrorAs(t, err, &failure)
		assert.Equal(t, StageRubric, failure.Stage)
		assert.Equal(t, 0, grader.Calls())
	})

	t.Run("nil grade", func(t *testing.T) {
		_, err := NewService(nilGrader{}, NewDefaults()).Evaluate(context.Background(),
			&domain.EvaluationRequest{Input: domain.StringPtr("Q"), ActualOutput: domain.StringPtr("A")})
		assert.EqualError(t, err, "grader returned no result")
	})
}

type nilGrader struct{}

func (nilGrader) Grade(context.Context, TestCase, Rubric, []Role) (*Grade, error) {
	return nil, nil
}

func TestService_NonFiniteScoreIsGradeFailure(t *testing.T) {
	for _, score := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		recorder := &fakeRecorder{}
		svc := NewService(&StubGrader{Score: score, Reason: "r"}, NewDefaults(), WithRecorder(recorder))

		result, err := svc.Evaluate(context.Background(),
			&domain.EvaluationRequest{Input: domain.StringPtr("Q"), ActualOutput: domain.StringPtr("A")})

		assert.Nil(t, result)
		var failure *Failure
		require.ErrorAs(t, err, &failure)
		assert.Equal(t, StageGrade, failure.Stage)
		assert.Contains(t, err.Error(), "non-finite score")

		require.Len(t, recorder.seen, 1)
		assert.Error(t, recorder.seen[0].err)
	}
}

func TestService_EmptyStringsAreGraded(t *testing.T) {
	grader := &StubGrader{Score: 0.1, Reason: "empty answer"}
	svc := NewService(grader, NewDefaults())

	_, err := svc.Evaluate(context.Background(),
		&domain.EvaluationRequest{Input: domain.StringPtr(""), ActualOutput: domain.StringPtr("")})
	require.NoError(t, err)

	tc, _, roles := grader.Last()
	assert.Equal(t, []Role{RoleInput, RoleActualOutput}, roles)
	assert.Equal(t, "", tc.Input)
	assert.Equal(t, "", tc.ActualOutput)
}

func TestService_RecordsEveryFailureStage(t *testing.T) {
	recorder := &fakeRecorder{}

	svc := NewService(&StubGrader{}, NewDefaults(), WithRecorder(recorder))
	_, err := svc.Evaluate(context.Background(), nil)
	require.Error(t, err)

	svc = NewService(&StubGrader{}, Defaults{Threshold: 0.8}, WithRecorder(recorder))
	_, err = svc.Evaluate(context.Background(),
		&domain.EvaluationRequest{Input: domain.StringPtr("Q"), ActualOutput: domain.StringPtr("A")})
	require.Error(t, err)

	require.Len(t, recorder.seen, 2)
	for _, seen := range recorder.seen {
		assert.Equal(t, RubricSourceDefault, seen.source)
		assert.Error(t, seen.err)
	}
}
