package evaluator

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/vudayani/spring-ai-llm-demo/internal/llm"
)

// Completer is the part of llm.Client the judge needs.
type Completer interface {
	Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error)
	CompleteWithProvider(ctx context.Context, providerName string, req *llm.CompletionRequest) (*llm.CompletionResponse, error)
}

// maxJudgeScore is the top of the scale the judge answers on.
const maxJudgeScore = 10.0

const judgeSystemPrompt = "You are a strict evaluator of LLM outputs. You follow the evaluation steps exactly and always respond with valid JSON."

// GEvalGrader asks a judge model to score a test case on a 0-10 scale by
// following the rubric steps, then normalizes the score to [0,1].
type GEvalGrader struct {
	client    Completer
	provider  string
	model     string
	sanitizer *MessageSanitizer
	budget    *BudgetEnforcer
}

type GEvalOption func(*GEvalGrader)

// WithJudgeProvider routes judge calls to a named provider instead of the
// client's default.
func WithJudgeProvider(name string) GEvalOption {
	return func(g *GEvalGrader) { g.provider = name }
}

func WithJudgeModel(model string) GEvalOption {
	return func(g *GEvalGrader) { g.model = model }
}

func WithSanitizer(s *MessageSanitizer) GEvalOption {
	return func(g *GEvalGrader) { g.sanitizer = s }
}

func WithBudget(b *BudgetEnforcer) GEvalOption {
	return func(g *GEvalGrader) { g.budget = b }
}

func NewGEvalGrader(client Completer, opts ...GEvalOption) *GEvalGrader {
	g := &GEvalGrader{
		client:    client,
		sanitizer: NewMessageSanitizer(0),
		budget:    NewBudgetEnforcer(0),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *GEvalGrader) Grade(ctx context.Context, tc TestCase, rubric Rubric, roles []Role) (*Grade, error) {
	if len(rubric.Steps) == 0 {
		return nil, fmt.Errorf("rubric has no evaluation steps")
	}
	if len(roles) == 0 {
		return nil, fmt.Errorf("no evaluation parameters selected")
	}

	prompt := g.buildPrompt(tc, rubric, roles)
	if err := g.budget.CheckPromptBudget(prompt); err != nil {
		return nil, err
	}

	req := &llm.CompletionRequest{
		Model: g.model,
		Messages: []llm.Message{
			{Role: "system", Content: judgeSystemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   1024,
		Temperature: 0,
		JSONMode:    true,
	}

	var (
		resp *llm.CompletionResponse
		err  error
	)
	if g.provider != "" {
		resp, err = g.client.CompleteWithProvider(ctx, g.provider, req)
	} else {
		resp, err = g.client.Complete(ctx, req)
	}
	if err != nil {
		return nil, fmt.Errorf("llm completion: %w", err)
	}

	score, reason, err := parseVerdict(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return &Grade{
		Score:  score,
		Reason: reason,
		Passed: score >= rubric.Threshold,
	}, nil
}

func (g *GEvalGrader) buildPrompt(tc TestCase, rubric Rubric, roles []Role) string {
	params := roleList(roles)

	var sb strings.Builder

	sb.WriteString("You will be given an LLM test case and a list of evaluation steps.\n")
	sb.WriteString("Score how well the test case satisfies the evaluation steps.\n\n")

	sb.WriteString("Evaluation Steps:\n")
	for i, step := range rubric.Steps {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, step))
	}

	sb.WriteString("\nTest Case:\n")
	for _, role := range roles {
		values, ok := tc.Value(role)
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("%s:\n", role))
		if role == RoleRetrievalContext {
			for i, v := range values {
				sb.WriteString(fmt.Sprintf("[%d] %s\n", i+1, g.sanitizer.TruncateMessage(v)))
			}
		} else {
			sb.WriteString(g.sanitizer.TruncateMessage(values[0]))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Parameters: %s\n", params))
	sb.WriteString(fmt.Sprintf(`
Only %s may influence the score. Do not penalize the test case for information
that is not part of these parameters.

Respond with JSON:
{
  "score": <integer from 0 to %d; %d means every evaluation step is fully satisfied, 0 means none is>,
  "reason": "<concise justification that cites specifics from %s; do not restate the score>"
}`, params, int(maxJudgeScore), int(maxJudgeScore), params))

	return sb.String()
}

// roleList joins role names as "A, B and C".
func roleList(roles []Role) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.String()
	}
	if len(names) == 1 {
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}

// parseVerdict extracts score and reason from the judge output. The JSON may be
// wrapped in prose or a code fence.
func parseVerdict(content string) (float64, string, error) {
	raw := extractJSONObject(content)
	if raw == "" || !gjson.Valid(raw) {
		return 0, "", fmt.Errorf("no JSON object in judge response: %q", truncate(content, 200))
	}

	result := gjson.Parse(raw)

	score := result.Get("score")
	if !score.Exists() || (score.Type != gjson.Number && score.Type != gjson.String) {
		return 0, "", fmt.Errorf("judge response missing numeric score")
	}
	value := score.Float()
	if score.Type == gjson.String {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(score.Str), 64)
		if err != nil {
			return 0, "", fmt.Errorf("judge score %q is not a number", score.Str)
		}
		value = parsed
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, "", fmt.Errorf("judge score %v is not finite", value)
	}
	if value < 0 || value > maxJudgeScore {
		return 0, "", fmt.Errorf("judge score %.2f outside [0,%d]", value, int(maxJudgeScore))
	}

	reason := strings.TrimSpace(result.Get("reason").String())
	if reason == "" {
		return 0, "", fmt.Errorf("judge response missing reason")
	}

	return value / maxJudgeScore, reason, nil
}

func extractJSONObject(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return ""
	}
	return content[start : end+1]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
