package domain

// EvaluationRequest is the test case submitted to POST /evaluate/.
// A field is nil when the caller omitted it or sent null. Input and actual
// output must be non-nil but may be empty strings.
type EvaluationRequest struct {
	Input              *string  `json:"input" binding:"required"`
	ActualOutput       *string  `json:"actual_output" binding:"required"`
	ExpectedOutput     *string  `json:"expected_output,omitempty"`
	Context            *string  `json:"context,omitempty"`
	RetrievalContext   []string `json:"retrieval_context,omitempty"`
	EvaluationCriteria []string `json:"evaluation_criteria,omitempty"`
}

// EvaluationResult is the success body of POST /evaluate/.
type EvaluationResult struct {
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// ErrorResponse is the body returned for every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
