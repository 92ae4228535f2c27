// Package analysis turns a spreadsheet preview into a schema-constrained
// model request and decodes the validated response into typed options.
package analysis

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ukaji3/datavision-go/pkg/datavision"
	"github.com/ukaji3/datavision-go/pkg/datavision/llm"
	"github.com/ukaji3/datavision-go/pkg/datavision/models"
)

// Requester issues one analysis request per preview.
type Requester struct {
	gen    llm.Generator
	opts   datavision.Options
	logger *slog.Logger
}

// NewRequester creates a Requester. A nil logger uses slog.Default().
func NewRequester(gen llm.Generator, opts datavision.Options, logger *slog.Logger) (*Requester, error) {
	if gen == nil {
		return nil, errors.New("analysis: generator is required")
	}
	if _, err := defaultValidator(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Requester{gen: gen, opts: opts, logger: logger}, nil
}

// Request builds the prompt for preview, calls the generator once and
// returns the validated result. Generator errors are returned unchanged.
func (r *Requester) Request(ctx context.Context, preview *models.SpreadsheetPreview) (*models.AnalysisResult, error) {
	prompt, err := BuildPrompt(preview, r.opts.ResponseLanguage())
	if err != nil {
		return nil, err
	}

	raw, err := r.gen.GenerateStructured(ctx, llm.StructuredRequest{
		Prompt:      prompt,
		Schema:      ResponseSchema(),
		Temperature: r.opts.ResponseTemperature(),
	})
	if err != nil {
		return nil, err
	}

	result, err := DecodeResult(raw)
	if err != nil {
		r.logger.WarnContext(ctx, "analysis response rejected", "error", err, "bytes", len(raw))
		return nil, err
	}
	r.logger.InfoContext(ctx, "analysis complete", "options", len(result.Options), "levels", levelsOf(result))
	return result, nil
}

func levelsOf(result *models.AnalysisResult) []int {
	levels := make([]int, len(result.Options))
	for i, opt := range result.Options {
		levels[i] = opt.Level
	}
	return levels
}
