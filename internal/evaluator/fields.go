package evaluator

import (
	"sort"

	"github.com/vudayani/spring-ai-llm-demo/internal/domain"
)

// Request field names.
const (
	FieldInput              = "input"
	FieldActualOutput       = "actual_output"
	FieldExpectedOutput     = "expected_output"
	FieldContext            = "context"
	FieldRetrievalContext   = "retrieval_context"
	FieldEvaluationCriteria = "evaluation_criteria"
)

// FieldSet is the set of request fields the caller supplied.
type FieldSet map[string]struct{}

func (s FieldSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the present field names in sorted order.
func (s FieldSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PresentFields reports which fields of req carry a non-null value. An empty
// string or list is present.
func PresentFields(req *domain.EvaluationRequest) FieldSet {
	fields := FieldSet{}
	if req.Input != nil {
		fields[FieldInput] = struct{}{}
	}
	if req.ActualOutput != nil {
		fields[FieldActualOutput] = struct{}{}
	}
	if req.ExpectedOutput != nil {
		fields[FieldExpectedOutput] = struct{}{}
	}
	if req.Context != nil {
		fields[FieldContext] = struct{}{}
	}
	if req.RetrievalContext != nil {
		fields[FieldRetrievalContext] = struct{}{}
	}
	if req.EvaluationCriteria != nil {
		fields[FieldEvaluationCriteria] = struct{}{}
	}
	return fields
}
