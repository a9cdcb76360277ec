package evaluator

import "github.com/vudayani/spring-ai-llm-demo/internal/domain"

// Role is a part of a test case the grader may condition its score on.
type Role int

const (
	RoleInput Role = iota
	RoleActualOutput
	RoleExpectedOutput
	RoleContext
	RoleRetrievalContext
)

// Roles lists every role in declared order. Selection output follows this order.
var Roles = []Role{
	RoleInput,
	RoleActualOutput,
	RoleExpectedOutput,
	RoleContext,
	RoleRetrievalContext,
}

var roleTags = map[Role]string{
	RoleInput:            FieldInput,
	RoleActualOutput:     FieldActualOutput,
	RoleExpectedOutput:   FieldExpectedOutput,
	RoleContext:          FieldContext,
	RoleRetrievalContext: FieldRetrievalContext,
}

var roleNames = map[Role]string{
	RoleInput:            "Input",
	RoleActualOutput:     "Actual Output",
	RoleExpectedOutput:   "Expected Output",
	RoleContext:          "Context",
	RoleRetrievalContext: "Retrieval Context",
}

// Tag is the canonical request field name for the role.
func (r Role) Tag() string {
	return roleTags[r]
}

// String returns the human-readable name used in judge prompts.
func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "Unknown"
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.Tag()), nil
}

// SelectRoles returns the roles whose tag is present in fields, in declared order.
func SelectRoles(fields FieldSet) []Role {
	selected := make([]Role, 0, len(Roles))
	for _, role := range Roles {
		if fields.Has(role.Tag()) {
			selected = append(selected, role)
		}
	}
	return selected
}

// TestCase is the grader's view of an evaluation request.
type TestCase struct {
	Input            string
	ActualOutput     string
	ExpectedOutput   *string
	Context          *string
	RetrievalContext []string
}

// NewTestCase copies the gradable fields out of a request. A nil input or
// actual output becomes the empty string.
func NewTestCase(req *domain.EvaluationRequest) TestCase {
	return TestCase{
		Input:            deref(req.Input),
		ActualOutput:     deref(req.ActualOutput),
		ExpectedOutput:   req.ExpectedOutput,
		Context:          req.Context,
		RetrievalContext: req.RetrievalContext,
	}
}

// Value returns the test case content for a role, and false if it is absent.
func (tc TestCase) Value(role Role) ([]string, bool) {
	switch role {
	case RoleInput:
		return []string{tc.Input}, true
	case RoleActualOutput:
		return []string{tc.ActualOutput}, true
	case RoleExpectedOutput:
		if tc.ExpectedOutput == nil {
			return nil, false
		}
		return []string{*tc.ExpectedOutput}, true
	case RoleContext:
		if tc.Context == nil {
			return nil, false
		}
		return []string{*tc.Context}, true
	case RoleRetrievalContext:
		if tc.RetrievalContext == nil {
			return nil, false
		}
		return tc.RetrievalContext, true
	}
	return nil, false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
