package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gin-gonic/gin/binding"
	"github.com/spf13/cobra"
	"github.com/vudayani/spring-ai-llm-demo/internal/app"
	"github.com/vudayani/spring-ai-llm-demo/internal/config"
	"github.com/vudayani/spring-ai-llm-demo/internal/domain"
)

var errBelowThreshold = errors.New("score below threshold")

type gradeService interface {
	Evaluate(ctx context.Context, req *domain.EvaluationRequest) (*domain.EvaluationResult, error)
}

// newGradeService builds the evaluation service and returns it with the
// pass threshold. Tests replace it.
var newGradeService = func() (gradeService, float64, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, 0, fmt.Errorf("load config: %w", err)
	}

	a, err := app.New(cfg, app.NewLogger(os.Stderr, cfg.LogLevel))
	if err != nil {
		return nil, 0, err
	}
	return a.Service, a.Service.Defaults().Threshold, nil
}

type gradeOptions struct {
	file             string
	input            string
	actualOutput     string
	expectedOutput   string
	context          string
	retrievalContext []string
	criteria         []string
	strict           bool
}

func buildGradeCmd() *cobra.Command {
	var opts gradeOptions

	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Grade one test case and print its score and reason as JSON",
		Example: `  # Grade a case stored as JSON
  evalctl grade --file case.json

  # Grade from flags and fail when below the threshold
  evalctl grade --input "What is Go?" --actual-output "A language." --strict`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.request(cmd)
			if err != nil {
				return err
			}
			return runGrade(cmd.Context(), cmd.OutOrStdout(), req, opts.strict)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "JSON file holding the test case (use - for stdin)")
	cmd.Flags().StringVar(&opts.input, "input", "", "Prompt given to the model")
	cmd.Flags().StringVar(&opts.actualOutput, "actual-output", "", "Response produced by the model")
	cmd.Flags().StringVar(&opts.expectedOutput, "expected-output", "", "Reference answer")
	cmd.Flags().StringVar(&opts.context, "context", "", "Background context")
	cmd.Flags().StringArrayVar(&opts.retrievalContext, "retrieval-context", nil, "Retrieved passage (repeatable)")
	cmd.Flags().StringArrayVar(&opts.criteria, "criteria", nil, "Evaluation step replacing the default rubric (repeatable)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Exit with status 1 when the score is below the threshold")

	cmd.MarkFlagsMutuallyExclusive("file", "input")
	cmd.MarkFlagsMutuallyExclusive("file", "actual-output")

	return cmd
}

// request builds the evaluation request from --file or from the field flags.
// A field flag counts as present only when it was set.
func (o *gradeOptions) request(cmd *cobra.Command) (*domain.EvaluationRequest, error) {
	var req domain.EvaluationRequest

	if o.file != "" {
		data, err := readCaseFile(cmd, o.file)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, fmt.Errorf("parse case file: %w", err)
		}
	} else {
		flags := cmd.Flags()
		if flags.Changed("input") {
			req.Input = domain.StringPtr(o.input)
		}
		if flags.Changed("actual-output") {
			req.ActualOutput = domain.StringPtr(o.actualOutput)
		}
		if flags.Changed("expected-output") {
			req.ExpectedOutput = domain.StringPtr(o.expectedOutput)
		}
		if flags.Changed("context") {
			req.Context = domain.StringPtr(o.context)
		}
		if flags.Changed("retrieval-context") {
			req.RetrievalContext = o.retrievalContext
		}
		if flags.Changed("criteria") {
			req.EvaluationCriteria = o.criteria
		}
	}

	if err := binding.Validator.ValidateStruct(&req); err != nil {
		return nil, fmt.Errorf("invalid test case: %w", err)
	}
	return &req, nil
}

func readCaseFile(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read case file: %w", err)
	}
	return data, nil
}

func runGrade(ctx context.Context, out io.Writer, req *domain.EvaluationRequest, strict bool) error {
	svc, threshold, err := newGradeService()
	if err != nil {
		return err
	}

	result, err := svc.Evaluate(ctx, req)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return err
	}

	if strict && result.Score < threshold {
		return fmt.Errorf("%w: %.2f < %.2f", errBelowThreshold, result.Score, threshold)
	}
	return nil
}
