package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/vudayani/spring-ai-llm-demo/internal/domain"
)

type Stage string

const (
	StageNormalize Stage = "normalize"
	StageSelect    Stage = "select"
	StageRubric    Stage = "rubric"
	StageGrade     Stage = "grade"
)

// Failure is the only error kind Evaluate returns. Its message is the cause's
// message so callers can surface it verbatim.
type Failure struct {
	Stage Stage
	Err   error
}

func (f *Failure) Error() string {
	return f.Err.Error()
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Recorder observes finished evaluations.
type Recorder interface {
	ObserveEvaluation(source RubricSource, err error, score float64, elapsed time.Duration)
}

// Service turns an evaluation request into a single grader call.
type Service struct {
	grader   Grader
	defaults Defaults
	recorder Recorder
	logger   *slog.Logger
}

type ServiceOption func(*Service)

func WithRecorder(r Recorder) ServiceOption {
	return func(s *Service) { s.recorder = r }
}

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

func NewService(grader Grader, defaults Defaults, opts ...ServiceOption) *Service {
	s := &Service{
		grader:   grader,
		defaults: defaults,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Defaults returns the rubric defaults the service was built with.
func (s *Service) Defaults() Defaults {
	return s.defaults
}

// Evaluate runs normalize, select, build rubric and grade, in that order.
// Every failure is recorded and returned as a *Failure.
func (s *Service) Evaluate(ctx context.Context, req *domain.EvaluationRequest) (*domain.EvaluationResult, error) {
	start := time.Now()

	if err := normalize(req); err != nil {
		return nil, s.fail(RubricSourceDefault, StageNormalize, err, start)
	}

	source := RubricSourceDefault
	if len(req.EvaluationCriteria) > 0 {
		source = RubricSourceCustom
	}

	fields := PresentFields(req)

	roles := SelectRoles(fields)
	if len(roles) == 0 {
		return nil, s.fail(source, StageSelect, fmt.Errorf("no evaluation parameters selected"), start)
	}

	rubric := BuildRubric(req.EvaluationCriteria, s.defaults)
	if len(rubric.Steps) == 0 {
		return nil, s.fail(source, StageRubric, fmt.Errorf("rubric has no evaluation steps"), start)
	}

	s.logger.DebugContext(ctx, "grading test case",
		"fields", fields.Names(),
		"roles", roles,
		"rubric_source", rubric.Source,
		"steps", len(rubric.Steps),
		"threshold", rubric.Threshold,
	)

	grade, err := s.grader.Grade(ctx, NewTestCase(req), rubric, roles)
	switch {
	case err != nil:
	case grade == nil:
		err = fmt.Errorf("grader returned no result")
	case math.IsNaN(grade.Score) || math.IsInf(grade.Score, 0):
		err = fmt.Errorf("grader returned non-finite score %v", grade.Score)
	}
	if err != nil {
		return nil, s.fail(rubric.Source, StageGrade, err, start)
	}

	s.observe(rubric.Source, nil, grade.Score, start)
	s.logger.InfoContext(ctx, "evaluation completed",
		"score", grade.Score,
		"passed", grade.Passed,
		"rubric_source", rubric.Source,
		"elapsed", time.Since(start),
	)

	return &domain.EvaluationResult{
		Score:  grade.Score,
		Reason: grade.Reason,
	}, nil
}

func normalize(req *domain.EvaluationRequest) error {
	switch {
	case req == nil:
		return fmt.Errorf("empty evaluation request")
	case req.Input == nil:
		return fmt.Errorf("%s is required", FieldInput)
	case req.ActualOutput == nil:
		return fmt.Errorf("%s is required", FieldActualOutput)
	}
	return nil
}

func (s *Service) fail(source RubricSource, stage Stage, err error, start time.Time) *Failure {
	s.observe(source, err, 0, start)
	return &Failure{Stage: stage, Err: err}
}

func (s *Service) observe(source RubricSource, err error, score float64, start time.Time) {
	if s.recorder != nil {
		s.recorder.ObserveEvaluation(source, err, score, time.Since(start))
	}
}
