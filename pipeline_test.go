package casepipe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reverseRunner executes scheduled tasks in reverse order on Wait, so tests
// can prove ordering guarantees do not depend on completion order.
type reverseRunner struct {
	fns []func() error
}

func (r *reverseRunner) Go(fn func() error) { r.fns = append(r.fns, fn) }

func (r *reverseRunner) Wait() error {
	fns := r.fns
	r.fns = nil
	for i := len(fns) - 1; i >= 0; i-- {
		if err := fns[i](); err != nil {
			return err
		}
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// echoVision returns one record per path whose text embeds the staged file
// name, long enough to pass the analysis threshold.
func echoVision() VisionEngine {
	return VisionEngineFunc(func(ctx context.Context, paths []string, creds *Credentials) ([]OCRRecord, error) {
		recs := make([]OCRRecord, len(paths))
		for i, p := range paths {
			recs[i] = OCRRecord{File: filepath.Base(p), Text: "image text extracted from " + filepath.Base(p), Confidence: 0.9}
		}
		return recs, nil
	})
}

func echoSpeech() SpeechEngine {
	return SpeechEngineFunc(func(ctx context.Context, paths []string, hint string) ([]TranscriptRecord, error) {
		recs := make([]TranscriptRecord, len(paths))
		for i, p := range paths {
			recs[i] = TranscriptRecord{File: filepath.Base(p), Text: "audio transcript taken from " + filepath.Base(p)}
		}
		return recs, nil
	})
}

func echoDocs() DocumentEngine {
	return DocumentEngineFunc(func(ctx context.Context, path string) (DocRecord, error) {
		return DocRecord{Text: "document text read from " + filepath.Base(path), Confidence: 1}, nil
	})
}

// goalInsight wraps each text into one accepted and one suggested use case.
func goalInsight() InsightEngine {
	return InsightEngineFunc(func(ctx context.Context, text string, mode Mode) (Insight, error) {
		return Insight{
			Accepted:  []UseCase{{Goal: NewGoal("accepted: " + text)}},
			Suggested: []UseCase{{Goal: NewGoal("suggested: " + text)}},
		}, nil
	})
}

func newTestPipeline(vision VisionEngine, speech SpeechEngine, docs DocumentEngine, insight InsightEngine) *Pipeline {
	log := discardLogger()
	return NewPipeline(
		NewInsightExtractor(insight, log),
		log,
		NewOCRAdapter(vision, log),
		NewSpeechAdapter(speech, log),
		NewDocxAdapter(docs, log),
	)
}

func testOpts(t *testing.T, extra ...func(*Options)) []func(*Options) {
	t.Helper()
	opts := []func(*Options){
		WithTempDir(t.TempDir()),
		WithCleanupGrace(0),
	}
	return append(opts, extra...)
}

func TestProcess_EndToEndSingleImage(t *testing.T) {
	vision := VisionEngineFunc(func(ctx context.Context, paths []string, creds *Credentials) ([]OCRRecord, error) {
		assert.Len(t, paths, 1)
		return []OCRRecord{{File: "login.png", Text: "Please log in and check balance.", Confidence: 0.95}}, nil
	})
	insight := InsightEngineFunc(func(ctx context.Context, text string, mode Mode) (Insight, error) {
		assert.Equal(t, "Please log in and check balance.", text)
		assert.Equal(t, ModeAll, mode)
		return Insight{
			Accepted:  []UseCase{{Goal: NewGoal("View balance")}},
			Suggested: []UseCase{{Goal: NewGoal("Enable 2FA")}},
		}, nil
	})

	pipe := newTestPipeline(vision, echoSpeech(), echoDocs(), insight)
	agg, err := pipe.Process(context.Background(),
		[]UploadedItem{{Name: "login.png", Data: []byte("fake png")}},
		testOpts(t)...)

	require.NoError(t, err)
	require.Len(t, agg.Accepted, 1)
	require.Len(t, agg.Suggested, 1)
	assert.Equal(t, "View balance", agg.Accepted[0].Goal.Text)
	assert.Equal(t, "Enable 2FA", agg.Suggested[0].Goal.Text)

	imageResults := agg.PerLane[LaneImage]
	require.Len(t, imageResults, 1)
	assert.Equal(t, "login.png", imageResults[0].File)
	assert.Equal(t, "Please log in and check balance.", imageResults[0].Text)
	assert.Equal(t, "View balance", imageResults[0].Accepted[0].Goal.Text)
	assert.Empty(t, imageResults[0].Err)
}

func TestProcess_OrderPreservedUnderReversedCompletion(t *testing.T) {
	items := []UploadedItem{
		{Name: "a.png", Data: []byte("x")},
		{Name: "b.wav", Data: []byte("x")},
		{Name: "c.png", Data: []byte("x")},
		{Name: "d.docx", Data: []byte("x")},
		{Name: "e.wav", Data: []byte("x")},
	}

	pipe := newTestPipeline(echoVision(), echoSpeech(), echoDocs(), goalInsight())
	agg, err := pipe.Process(context.Background(), items,
		testOpts(t, WithRunner(&reverseRunner{}))...)

	require.NoError(t, err)
	require.Len(t, agg.Accepted, 5)
	require.Len(t, agg.Suggested, 5)

	// Lane order (image, audio, document), submission order inside a lane,
	// regardless of completion order.
	wantOrder := []string{"a.png", "c.png", "b.wav", "e.wav", "d.docx"}
	for i, name := range wantOrder {
		assert.Contains(t, agg.Accepted[i].Goal.Text, name, "accepted[%d]", i)
		assert.Contains(t, agg.Suggested[i].Goal.Text, name, "suggested[%d]", i)
	}

	assert.Len(t, agg.PerLane[LaneImage], 2)
	assert.Len(t, agg.PerLane[LaneAudio], 2)
	assert.Len(t, agg.PerLane[LaneDocument], 1)
}

func TestProcess_ItemFailureIsolated(t *testing.T) {
	vision := VisionEngineFunc(func(ctx context.Context, paths []string, creds *Credentials) ([]OCRRecord, error) {
		recs := make([]OCRRecord, len(paths))
		for i, p := range paths {
			base := filepath.Base(p)
			if strings.Contains(base, "bad") {
				recs[i] = OCRRecord{File: base, Error: "engine crashed on this image"}
				continue
			}
			recs[i] = OCRRecord{File: base, Text: "image text extracted from " + base, Confidence: 0.8}
		}
		return recs, nil
	})

	items := []UploadedItem{
		{Name: "one.png", Data: []byte("x")},
		{Name: "bad.png", Data: []byte("x")},
		{Name: "three.png", Data: []byte("x")},
	}
	pipe := newTestPipeline(vision, echoSpeech(), echoDocs(), goalInsight())
	agg, err := pipe.Process(context.Background(), items, testOpts(t)...)

	require.NoError(t, err)
	results := agg.PerLane[LaneImage]
	require.Len(t, results, 3)

	assert.Empty(t, results[0].Err)
	assert.NotEmpty(t, results[0].Accepted)
	assert.Equal(t, "engine crashed on this image", results[1].Err)
	assert.Empty(t, results[1].Accepted)
	assert.Empty(t, results[2].Err)
	assert.NotEmpty(t, results[2].Accepted)

	// Only the two healthy items contribute to the aggregate.
	assert.Len(t, agg.Accepted, 2)
}

func TestProcess_WholeLaneEngineFailure(t *testing.T) {
	vision := VisionEngineFunc(func(ctx context.Context, paths []string, creds *Credentials) ([]OCRRecord, error) {
		return nil, errors.New("vision engine unreachable")
	})

	items := []UploadedItem{
		{Name: "a.png", Data: []byte("x")},
		{Name: "b.wav", Data: []byte("x")},
	}
	pipe := newTestPipeline(vision, echoSpeech(), echoDocs(), goalInsight())
	agg, err := pipe.Process(context.Background(), items, testOpts(t)...)

	// A failing lane never aborts the batch.
	require.NoError(t, err)
	require.Len(t, agg.PerLane[LaneImage], 1)
	assert.Contains(t, agg.PerLane[LaneImage][0].Err, "vision engine unreachable")
	assert.Empty(t, agg.PerLane[LaneImage][0].Accepted)

	require.Len(t, agg.PerLane[LaneAudio], 1)
	assert.Empty(t, agg.PerLane[LaneAudio][0].Err)
	assert.Len(t, agg.Accepted, 1)
}

func TestProcess_AnalyzeThresholdBoundary(t *testing.T) {
	docs := DocumentEngineFunc(func(ctx context.Context, path string) (DocRecord, error) {
		switch {
		case strings.HasSuffix(path, "_ten.docx"):
			return DocRecord{Text: "0123456789", Confidence: 1}, nil // exactly 10: skipped
		case strings.HasSuffix(path, "_eleven.docx"):
			return DocRecord{Text: "0123456789A", Confidence: 1}, nil // 11: analyzed
		default:
			return DocRecord{}, fmt.Errorf("unexpected path %s", path)
		}
	})

	var analyzed []string
	insight := InsightEngineFunc(func(ctx context.Context, text string, mode Mode) (Insight, error) {
		analyzed = append(analyzed, text)
		return Insight{Accepted: []UseCase{{Goal: NewGoal("uc")}}}, nil
	})

	items := []UploadedItem{
		{Name: "ten.docx", Data: []byte("x")},
		{Name: "eleven.docx", Data: []byte("x")},
	}
	pipe := newTestPipeline(echoVision(), echoSpeech(), docs, insight)
	agg, err := pipe.Process(context.Background(), items,
		testOpts(t, WithRunner(&reverseRunner{}))...)

	require.NoError(t, err)
	require.Equal(t, []string{"0123456789A"}, analyzed)

	results := agg.PerLane[LaneDocument]
	require.Len(t, results, 2)
	assert.Empty(t, results[0].Accepted)
	assert.Len(t, results[1].Accepted, 1)
	assert.Len(t, agg.Accepted, 1)
}

func TestProcess_InsightFailureDegrades(t *testing.T) {
	insight := InsightEngineFunc(func(ctx context.Context, text string, mode Mode) (Insight, error) {
		return Insight{}, errors.New("analysis engine exploded")
	})

	items := []UploadedItem{{Name: "a.png", Data: []byte("x")}}
	pipe := newTestPipeline(echoVision(), echoSpeech(), echoDocs(), insight)
	agg, err := pipe.Process(context.Background(), items, testOpts(t)...)

	require.NoError(t, err)
	results := agg.PerLane[LaneImage]
	require.Len(t, results, 1)
	assert.Empty(t, results[0].Err, "analysis failure is not an extraction error")
	assert.Empty(t, results[0].Accepted)
	assert.Empty(t, results[0].Suggested)
	assert.Empty(t, agg.Accepted)
}

func TestProcess_InputErrors(t *testing.T) {
	var engineCalled bool
	vision := VisionEngineFunc(func(ctx context.Context, paths []string, creds *Credentials) ([]OCRRecord, error) {
		engineCalled = true
		return nil, nil
	})
	pipe := newTestPipeline(vision, echoSpeech(), echoDocs(), goalInsight())

	_, err := pipe.Process(context.Background(), nil, testOpts(t)...)
	assert.ErrorIs(t, err, ErrNoItems)

	_, err = pipe.Process(context.Background(),
		[]UploadedItem{{Name: "notes.txt"}, {Name: "report.pdf"}},
		testOpts(t)...)
	assert.ErrorIs(t, err, ErrNoSupportedItems)
	assert.False(t, engineCalled, "no engines run on input errors")
}

func TestProcess_UnsupportedItemsWarned(t *testing.T) {
	items := []UploadedItem{
		{Name: "a.png", Data: []byte("x")},
		{Name: "skipped.txt", Data: []byte("x")},
	}
	pipe := newTestPipeline(echoVision(), echoSpeech(), echoDocs(), goalInsight())
	agg, err := pipe.Process(context.Background(), items, testOpts(t)...)

	require.NoError(t, err)
	require.Len(t, agg.Warnings, 1)
	assert.Contains(t, agg.Warnings[0], "skipped.txt")
	assert.Len(t, agg.PerLane[LaneImage], 1)
}

func TestProcess_ModeDefaultUsesPlainUseCases(t *testing.T) {
	insight := InsightEngineFunc(func(ctx context.Context, text string, mode Mode) (Insight, error) {
		assert.Equal(t, ModeDefault, mode)
		return Insight{
			Metadata: map[string]any{"domain": "banking"},
			UseCases: []UseCase{{Goal: NewGoal("plain uc")}},
		}, nil
	})

	items := []UploadedItem{{Name: "a.png", Data: []byte("x")}}
	pipe := newTestPipeline(echoVision(), echoSpeech(), echoDocs(), insight)
	agg, err := pipe.Process(context.Background(), items,
		testOpts(t, WithMode(ModeDefault))...)

	require.NoError(t, err)
	require.Len(t, agg.Accepted, 1)
	assert.Equal(t, "plain uc", agg.Accepted[0].Goal.Text)
	assert.Empty(t, agg.Suggested)
}

func TestProcess_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pipe := newTestPipeline(echoVision(), echoSpeech(), echoDocs(), goalInsight())
	_, err := pipe.Process(ctx,
		[]UploadedItem{{Name: "a.png", Data: []byte("x")}},
		testOpts(t, WithRunner(&reverseRunner{}))...)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcess_WorkspaceCleanedUp(t *testing.T) {
	base := t.TempDir()
	items := []UploadedItem{
		{Name: "a.png", Data: []byte("x")},
		{Name: "b.wav", Data: []byte("x")},
		{Name: "d.docx", Data: []byte("x")},
	}

	pipe := newTestPipeline(echoVision(), echoSpeech(), echoDocs(), goalInsight())
	_, err := pipe.Process(context.Background(), items,
		WithTempDir(base), WithCleanupGrace(0))
	require.NoError(t, err)

	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	assert.Empty(t, entries, "no request-scoped files remain after success")
}

func TestProcess_WorkspaceCleanedUpOnEngineFailure(t *testing.T) {
	base := t.TempDir()
	vision := VisionEngineFunc(func(ctx context.Context, paths []string, creds *Credentials) ([]OCRRecord, error) {
		return nil, errors.New("boom")
	})

	pipe := newTestPipeline(vision, echoSpeech(), echoDocs(), goalInsight())
	_, err := pipe.Process(context.Background(),
		[]UploadedItem{{Name: "a.png", Data: []byte("x")}},
		WithTempDir(base), WithCleanupGrace(0))
	require.NoError(t, err)

	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	assert.Empty(t, entries, "no request-scoped files remain after failure")
}
