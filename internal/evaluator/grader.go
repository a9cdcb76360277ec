package evaluator

import (
	"context"
	"sync"
)

// Grader scores a test case against a rubric, weighing only the given roles.
type Grader interface {
	Grade(ctx context.Context, tc TestCase, rubric Rubric, roles []Role) (*Grade, error)
}

type Grade struct {
	Score  float64
	Reason string
	Passed bool
}

// StubGrader returns a fixed grade or a fixed error and records its last call.
// It stands in for a model-backed grader in tests and offline runs.
type StubGrader struct {
	Score  float64
	Reason string
	Err    error

	mu         sync.Mutex
	lastCase   TestCase
	lastRubric Rubric
	lastRoles  []Role
	calls      int
}

func (g *StubGrader) Grade(ctx context.Context, tc TestCase, rubric Rubric, roles []Role) (*Grade, error) {
	g.mu.Lock()
	g.calls++
	g.lastCase = tc
	g.lastRubric = rubric
	g.lastRoles = roles
	g.mu.Unlock()

	if g.Err != nil {
		return nil, g.Err
	}
	return &Grade{
		Score:  g.Score,
		Reason: g.Reason,
		Passed: g.Score >= rubric.Threshold,
	}, nil
}

// Last returns the arguments of the most recent Grade call.
func (g *StubGrader) Last() (TestCase, Rubric, []Role) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastCase, g.lastRubric, g.lastRoles
}

func (g *StubGrader) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}
