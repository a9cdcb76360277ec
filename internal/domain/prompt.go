package domain

type PromptRequest struct {
	UserPrompt   string `json:"userPrompt"`
	SystemPrompt string `json:"systemPrompt"`
}

type PromptTuningRequest struct {
	UserPrompt         string   `json:"userPrompt"`
	SystemPrompt       string   `json:"systemPrompt"`
	EvaluationCriteria []string `json:"evaluationCriteria"`
}

// PromptTuningResult carries the generated response, its evaluation and, when
// the score fell below the tuning threshold, the model's suggested prompts.
type PromptTuningResult struct {
	LLMResponse           string            `json:"llmResponse"`
	EvalResponse          *EvaluationResult `json:"evalResponse"`
	ImprovementSuggestion *string           `json:"improvementSuggestion"`
}
