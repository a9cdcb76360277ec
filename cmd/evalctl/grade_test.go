package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vudayani/spring-ai-llm-demo/internal/domain"
)

type fakeService struct {
	result *domain.EvaluationResult
	err    error
	last   *domain.EvaluationRequest
}

func (f *fakeService) Evaluate(ctx context.Context, req *domain.EvaluationRequest) (*domain.EvaluationResult, error) {
	f.last = req
	return f.result, f.err
}

func useService(t *testing.T, svc *fakeService) {
	t.Helper()
	orig := newGradeService
	newGradeService = func() (gradeService, float64, error) { return svc, 0.8, nil }
	t.Cleanup(func() { newGradeService = orig })
}

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := buildRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGrade_FromFlags(t *testing.T) {
	svc := &fakeService{result: &domain.EvaluationResult{Score: 0.9, Reason: "good"}}
	useService(t, svc)

	out, err := execute("grade",
		"--input", "Q",
		"--actual-output", "A",
		"--expected-output", "",
		"--retrieval-context", "r1",
		"--retrieval-context", "r2",
		"--criteria", "Step 1",
	)
	require.NoError(t, err)
	assert.JSONEq(t, `{"score":0.9,"reason":"good"}`, out)

	require.NotNil(t, svc.last)
	assert.Equal(t, domain.StringPtr("Q"), svc.last.Input)
	require.NotNil(t, svc.last.ExpectedOutput)
	assert.Equal(t, "", *svc.last.ExpectedOutput)
	assert.Nil(t, svc.last.Context)
	assert.Equal(t, []string{"r1", "r2"}, svc.last.RetrievalContext)
	assert.Equal(t, []string{"Step 1"}, svc.last.EvaluationCriteria)
}

func TestGrade_FromFile(t *testing.T) {
	svc := &fakeService{result: &domain.EvaluationResult{Score: 0.5, Reason: "partial"}}
	useService(t, svc)

	path := filepath.Join(t.TempDir(), "case.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"input":"Q","actual_output":"A","context":"C"}`), 0o600))

	_, err := execute("grade", "--file", path)
	require.NoError(t, err)

	require.NotNil(t, svc.last.Context)
	assert.Equal(t, "C", *svc.last.Context)
	assert.Nil(t, svc.last.ExpectedOutput)
}

func TestGrade_FromStdin(t *testing.T) {
	svc := &fakeService{result: &domain.EvaluationResult{Score: 1, Reason: "r"}}
	useService(t, svc)

	cmd := buildRootCmd()
	cmd.SetIn(strings.NewReader(`{"input":"Q","actual_output":"A"}`))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"grade", "--file", "-"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, domain.StringPtr("A"), svc.last.ActualOutput)
}

func TestGrade_MissingRequiredField(t *testing.T) {
	svc := &fakeService{}
	useService(t, svc)

	_, err := execute("grade", "--input", "Q")

	assert.ErrorContains(t, err, "invalid test case")
	assert.Nil(t, svc.last)
}

func TestGrade_StrictBelowThreshold(t *testing.T) {
	useService(t, &fakeService{result: &domain.EvaluationResult{Score: 0.75, Reason: "close"}})

	out, err := execute("grade", "--input", "Q", "--actual-output", "A", "--strict")

	assert.ErrorIs(t, err, errBelowThreshold)
	assert.Contains(t, out, `"score": 0.75`)
}

func TestGrade_NotStrictBelowThreshold(t *testing.T) {
	useService(t, &fakeService{result: &domain.EvaluationResult{Score: 0.75, Reason: "close"}})

	_, err := execute("grade", "--input", "Q", "--actual-output", "A")

	assert.NoError(t, err)
}

func TestGrade_EvaluationFailure(t *testing.T) {
	useService(t, &fakeService{err: errors.New("llm completion: timeout")})

	_, err := execute("grade", "--input", "Q", "--actual-output", "A")

	assert.EqualError(t, err, "evaluation failed: llm completion: timeout")
}

func TestGrade_EmptyInputIsAccepted(t *testing.T) {
	svc := &fakeService{result: &domain.EvaluationResult{Score: 0.1, Reason: "empty"}}
	useService(t, svc)

	_, err := execute("grade", "--input", "", "--actual-output", "A")
	require.NoError(t, err)

	assert.Equal(t, domain.StringPtr(""), svc.last.Input)
}
