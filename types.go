package casepipe

import (
	"context"
)

// Mode selects how much the insight engine returns: metadata only, or
// metadata plus suggested use-cases.
type Mode string

const (
	ModeDefault Mode = "default"
	ModeAll     Mode = "all"
)

// Credentials are optional caller-supplied parameters for an external
// vision model.
type Credentials struct {
	Key      string
	Endpoint string
}

// Runner lets the pipeline schedule work with any concurrency model.
type Runner interface {
	Go(fn func() error) // schedule
	Wait() error        // join / propagate first err
}

// VisionEngine recognizes text in a set of staged image files and returns
// one record per input path, in input order.
type VisionEngine interface {
	RecognizeImages(ctx context.Context, paths []string, creds *Credentials) ([]OCRRecord, error)
}

// SpeechEngine transcribes a batch of staged audio files and returns one
// record per input path, in input order. The hint is free-form domain
// context forwarded to the engine.
type SpeechEngine interface {
	Transcribe(ctx context.Context, paths []string, hint string) ([]TranscriptRecord, error)
}

// DocumentEngine extracts plain text from one staged document file.
type DocumentEngine interface {
	ExtractText(ctx context.Context, path string) (DocRecord, error)
}

// InsightEngine derives structured use-case insights from text.
type InsightEngine interface {
	Analyze(ctx context.Context, text string, mode Mode) (Insight, error)
}

// OCRRecord is the vision engine's per-image output.
type OCRRecord struct {
	File       string  `json:"file"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Warning    string  `json:"warning,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// TranscriptRecord is the speech engine's per-clip output.
type TranscriptRecord struct {
	File       string    `json:"file"`
	Language   string    `json:"language,omitempty"`
	Raw        string    `json:"raw,omitempty"`
	Text       string    `json:"text,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
	Segments   []Segment `json:"segments,omitempty"`
	Warning    string    `json:"warning,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// DocRecord is the document engine's per-file output.
type DocRecord struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Error      string  `json:"error,omitempty"`
}

// Insight is the analysis engine's output for one text. Engines emit
// use_cases in default mode and the accepted/suggested split in all mode.
type Insight struct {
	Metadata  map[string]any `json:"metadata,omitempty"`
	UseCases  []UseCase      `json:"use_cases,omitempty"`
	Accepted  []UseCase      `json:"accepted_use_cases,omitempty"`
	Suggested []UseCase      `json:"suggested_use_cases,omitempty"`
}
