package questiongen

import (
	"context"
	"log/slog"
)

// Generator produces a single validated question.
type Generator interface {
	Generate(ctx context.Context, in Input) (*Question, error)
}

// FallbackGenerator tries the primary generator and, on any failure,
// builds a template question instead.
type FallbackGenerator struct {
	primary   Generator
	templates *TemplateGenerator
	logger    *slog.Logger
}

// WithFallback wraps primary. A nil primary always uses templates.
func WithFallback(primary Generator, templates *TemplateGenerator, logger *slog.Logger) *FallbackGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackGenerator{primary: primary, templates: templates, logger: logger}
}

func (f *FallbackGenerator) Generate(ctx context.Context, in Input) (*Question, error) {
	if f.primary != nil {
		q, err := f.primary.Generate(ctx, in)
		if err == nil {
			return q, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		f.logger.Warn("question generation failed, using template",
			"type", in.Type, "difficulty", in.Difficulty, "error", err)
	}
	return f.templates.Generate(ctx, in)
}
