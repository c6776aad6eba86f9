package casepipe

import (
	"log/slog"
	"time"
)

// Fixed defaults observed to work well with the stock engines; both knobs
// depend on the engine actually deployed, so they stay configurable.
const (
	DefaultAudioBatchSize   = 2
	DefaultAnalyzeThreshold = 10
	DefaultCleanupGrace     = 10 * time.Second
)

// Options represents functional options for one pipeline invocation.
type Options struct {
	Mode             Mode
	Runner           Runner // nil → DefaultRunner
	AudioBatchSize   int    // 0 → DefaultAudioBatchSize
	AnalyzeThreshold int    // -1 → analyze everything, 0 → default
	CleanupGrace     time.Duration
	Credentials      *Credentials
	SpeechHint       string
	TempDir          string // "" → os.TempDir()
	Logger           *slog.Logger
}

func newOptions(optFns ...func(*Options)) Options {
	opts := Options{
		Mode:             ModeAll,
		AudioBatchSize:   DefaultAudioBatchSize,
		AnalyzeThreshold: DefaultAnalyzeThreshold,
		CleanupGrace:     DefaultCleanupGrace,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.AudioBatchSize <= 0 {
		opts.AudioBatchSize = DefaultAudioBatchSize
	}
	if opts.AnalyzeThreshold == 0 {
		opts.AnalyzeThreshold = DefaultAnalyzeThreshold
	}
	return opts
}

// Functional option constructors
func WithMode(m Mode) func(*Options) {
	return func(o *Options) { o.Mode = m }
}

func WithRunner(r Runner) func(*Options) {
	return func(o *Options) { o.Runner = r }
}

// WithAudioBatchSize bounds the external speech engine's working set per
// invocation.
func WithAudioBatchSize(n int) func(*Options) {
	return func(o *Options) { o.AudioBatchSize = n }
}

// WithAnalyzeThreshold sets the minimum text length (exclusive) for insight
// analysis. Pass -1 to analyze every non-empty text.
func WithAnalyzeThreshold(n int) func(*Options) {
	return func(o *Options) { o.AnalyzeThreshold = n }
}

// WithCleanupGrace defers audio workspace deletion by d to avoid racing a
// still-reading engine process. Deletion remains guaranteed.
func WithCleanupGrace(d time.Duration) func(*Options) {
	return func(o *Options) { o.CleanupGrace = d }
}

// WithCredentials forwards external-model credentials to the vision engine.
func WithCredentials(key, endpoint string) func(*Options) {
	return func(o *Options) { o.Credentials = &Credentials{Key: key, Endpoint: endpoint} }
}

// WithSpeechHint passes free-form domain context to the speech engine.
func WithSpeechHint(hint string) func(*Options) {
	return func(o *Options) { o.SpeechHint = hint }
}

// WithTempDir overrides the base directory for request-scoped workspaces.
func WithTempDir(dir string) func(*Options) {
	return func(o *Options) { o.TempDir = dir }
}

func WithLogger(log *slog.Logger) func(*Options) {
	return func(o *Options) { o.Logger = log }
}
