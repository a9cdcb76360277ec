package evaluator

import "fmt"

const defaultMaxPromptTokens = 32000

type BudgetEnforcer struct {
	maxPromptTokens int
}

// NewBudgetEnforcer caps judge prompts at maxPromptTokens; zero or less uses the default.
func NewBudgetEnforcer(maxPromptTokens int) *BudgetEnforcer {
	if maxPromptTokens <= 0 {
		maxPromptTokens = defaultMaxPromptTokens
	}
	return &BudgetEnforcer{maxPromptTokens: maxPromptTokens}
}

// CheckPromptBudget rejects a prompt whose estimated size exceeds the budget.
func (b *BudgetEnforcer) CheckPromptBudget(prompt string) error {
	estimated := EstimateTokens(prompt)
	if estimated > b.maxPromptTokens {
		return fmt.Errorf("prompt exceeds token budget: %d > %d", estimated, b.maxPromptTokens)
	}
	return nil
}

// EstimateTokens approximates ~4 characters per token.
func EstimateTokens(text string) int {
	return len(text) / 4
}
