// Package app wires configuration into the judge, the evaluation service and
// the prompt tuner. Both the server and evalctl build on it.
package app

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/vudayani/spring-ai-llm-demo/internal/config"
	"github.com/vudayani/spring-ai-llm-demo/internal/evaluator"
	"github.com/vudayani/spring-ai-llm-demo/internal/improvement"
	"github.com/vudayani/spring-ai-llm-demo/internal/llm"
	"github.com/vudayani/spring-ai-llm-demo/internal/metrics"
)

type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	LLM     *llm.Client
	Metrics *metrics.Metrics
	Service *evaluator.Service
	Tuner   *improvement.Tuner
}

func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	client, err := llm.NewClient(&cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("create llm client: %w", err)
	}
	return NewWithClient(cfg, client, logger)
}

// NewWithClient is New with an already built LLM client.
func NewWithClient(cfg *config.Config, client *llm.Client, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	base := evaluator.NewDefaults()
	base.Threshold = cfg.Evaluation.Threshold

	defaults, err := evaluator.LoadDefaults(cfg.Evaluation.RubricFile, base)
	if err != nil {
		return nil, err
	}

	judge := cfg.Evaluation.JudgeProvider
	if judge != "" && !client.Has(judge) {
		return nil, fmt.Errorf("judge provider %s is not configured", judge)
	}

	grader := evaluator.NewGEvalGrader(client,
		evaluator.WithJudgeProvider(judge),
		evaluator.WithJudgeModel(cfg.Evaluation.JudgeModel),
		evaluator.WithSanitizer(evaluator.NewMessageSanitizer(cfg.Evaluation.MaxFieldChars)),
		evaluator.WithBudget(evaluator.NewBudgetEnforcer(cfg.Evaluation.MaxPromptTokens)),
	)

	m := metrics.New()
	service := evaluator.NewService(grader, defaults,
		evaluator.WithRecorder(m),
		evaluator.WithLogger(logger),
	)

	logger.Info("evaluator configured",
		"providers", client.Providers(),
		"judge", judgeName(judge, client),
		"threshold", defaults.Threshold,
		"default_steps", len(defaults.Steps),
	)

	return &App{
		Config:  cfg,
		Logger:  logger,
		LLM:     client,
		Metrics: m,
		Service: service,
		Tuner:   improvement.NewTuner(client, service, cfg.Evaluation.TuningThreshold, logger),
	}, nil
}

func judgeName(judge string, client *llm.Client) string {
	if judge != "" {
		return judge
	}
	return client.DefaultProvider()
}
