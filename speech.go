package casepipe

import (
	"context"
	"log/slog"
)

// errUnsupportedFile is the per-item error text for an unrecognized audio
// container.
const errUnsupportedFile = "Unsupported file"

// SpeechAdapter routes audio items through a SpeechEngine in fixed-size
// batches to bound the engine's working set. Batches run sequentially; item
// order across batches is preserved.
type SpeechAdapter struct {
	engine SpeechEngine
	log    *slog.Logger
}

func NewSpeechAdapter(engine SpeechEngine, log *slog.Logger) *SpeechAdapter {
	if log == nil {
		log = slog.Default()
	}
	return &SpeechAdapter{engine: engine, log: log}
}

func (a *SpeechAdapter) Lane() Lane { return LaneAudio }

// Extract stages recognized audio containers into a request-scoped
// workspace and transcribes them batch by batch. An unrecognized container
// fails that single item without aborting the rest. Workspace deletion is
// deferred by the configured grace window so the engine process is not
// raced, but it always happens.
func (a *SpeechAdapter) Extract(ctx context.Context, items []UploadedItem, opts *Options) []ExtractionResult {
	results := newResults(items, LaneAudio)

	for i, item := range items {
		if !audioExts[itemExt(item)] {
			results[i].Err = errUnsupportedFile
		}
	}

	ws, err := newWorkspace(opts.TempDir, LaneAudio, a.log)
	if err != nil {
		return failAll(results, err)
	}
	defer ws.releaseAfter(opts.CleanupGrace)

	paths, staged := stageItems(ws, items, results)
	if len(paths) == 0 {
		return results
	}

	for b, batchPaths := range chunk(paths, opts.AudioBatchSize) {
		batch := staged[b*opts.AudioBatchSize : b*opts.AudioBatchSize+len(batchPaths)]

		recs, err := a.engine.Transcribe(ctx, batchPaths, opts.SpeechHint)
		if err != nil {
			a.log.Warn("speech engine batch failed", "batch_size", len(batch), "error", err)
			for _, idx := range batch {
				results[idx].Err = err.Error()
			}
			continue
		}

		for i, idx := range batch {
			if i >= len(recs) {
				results[idx].Err = "engine returned no record for input"
				continue
			}
			rec := recs[i]
			results[idx].Text = rec.Text
			results[idx].Language = rec.Language
			results[idx].Raw = rec.Raw
			results[idx].Confidence = rec.Confidence
			results[idx].Segments = rec.Segments
			results[idx].Warning = rec.Warning
			results[idx].Err = rec.Error
		}
	}
	return results
}
