package casepipe

import "context"

// Function adapters so tests (and callers with trivial engines) can satisfy
// the engine contracts without defining a type.

// VisionEngineFunc adapts a function to VisionEngine.
type VisionEngineFunc func(ctx context.Context, paths []string, creds *Credentials) ([]OCRRecord, error)

func (f VisionEngineFunc) RecognizeImages(ctx context.Context, paths []string, creds *Credentials) ([]OCRRecord, error) {
	return f(ctx, paths, creds)
}

// SpeechEngineFunc adapts a function to SpeechEngine.
type SpeechEngineFunc func(ctx context.Context, paths []string, hint string) ([]TranscriptRecord, error)

func (f SpeechEngineFunc) Transcribe(ctx context.Context, paths []string, hint string) ([]TranscriptRecord, error) {
	return f(ctx, paths, hint)
}

// DocumentEngineFunc adapts a function to DocumentEngine.
type DocumentEngineFunc func(ctx context.Context, path string) (DocRecord, error)

func (f DocumentEngineFunc) ExtractText(ctx context.Context, path string) (DocRecord, error) {
	return f(ctx, path)
}

// InsightEngineFunc adapts a function to InsightEngine.
type InsightEngineFunc func(ctx context.Context, text string, mode Mode) (Insight, error)

func (f InsightEngineFunc) Analyze(ctx context.Context, text string, mode Mode) (Insight, error) {
	return f(ctx, text, mode)
}
