package casepipe

import (
	"context"
	"fmt"
	"log/slog"
)

// InsightExtractor wraps an InsightEngine behind the analyze(text, mode)
// contract. Stateless; safe to share across invocations.
type InsightExtractor struct {
	engine InsightEngine
	log    *slog.Logger
}

func NewInsightExtractor(engine InsightEngine, log *slog.Logger) *InsightExtractor {
	if log == nil {
		log = slog.Default()
	}
	return &InsightExtractor{engine: engine, log: log}
}

// Analyze runs one analysis call.
func (x *InsightExtractor) Analyze(ctx context.Context, text string, mode Mode) (Insight, error) {
	x.log.Debug("analyzing text", "length", len(text), "mode", mode)
	ins, err := x.engine.Analyze(ctx, text, mode)
	if err != nil {
		return Insight{}, fmt.Errorf("insight analysis: %w", err)
	}
	return ins, nil
}

// ExtractMetadata analyzes text in default mode: metadata only.
func (x *InsightExtractor) ExtractMetadata(ctx context.Context, text string) (Insight, error) {
	return x.Analyze(ctx, text, ModeDefault)
}

// ExtractWithSuggestion analyzes text in all mode: metadata plus the
// accepted/suggested use-case split.
func (x *InsightExtractor) ExtractWithSuggestion(ctx context.Context, text string) (Insight, error) {
	return x.Analyze(ctx, text, ModeAll)
}

// splitUseCases reduces an engine's insight to the accepted/suggested pair.
// Engines that only emit the plain use_cases list have it treated as
// accepted.
func splitUseCases(ins Insight, mode Mode) (accepted, suggested []UseCase) {
	accepted = ins.Accepted
	if len(accepted) == 0 {
		accepted = ins.UseCases
	}
	if mode == ModeAll {
		suggested = ins.Suggested
	}
	return accepted, suggested
}
