package casepipe

import (
	"context"
	"log/slog"
)

// DocxAdapter routes word-processor documents through a DocumentEngine,
// one engine call per item.
type DocxAdapter struct {
	engine DocumentEngine
	log    *slog.Logger
}

func NewDocxAdapter(engine DocumentEngine, log *slog.Logger) *DocxAdapter {
	if log == nil {
		log = slog.Default()
	}
	return &DocxAdapter{engine: engine, log: log}
}

func (a *DocxAdapter) Lane() Lane { return LaneDocument }

// Extract stages and converts each document in turn. A failing item
// contributes an empty text with confidence 0 and its error; siblings
// proceed.
func (a *DocxAdapter) Extract(ctx context.Context, items []UploadedItem, opts *Options) []ExtractionResult {
	results := newResults(items, LaneDocument)

	ws, err := newWorkspace(opts.TempDir, LaneDocument, a.log)
	if err != nil {
		return failAll(results, err)
	}
	defer ws.release()

	paths, staged := stageItems(ws, items, results)
	for i, idx := range staged {
		rec, err := a.engine.ExtractText(ctx, paths[i])
		if err != nil {
			a.log.Warn("document conversion failed", "file", items[idx].Name, "error", err)
			results[idx].Confidence = 0
			results[idx].Err = err.Error()
			continue
		}
		results[idx].Text = rec.Text
		results[idx].Confidence = rec.Confidence
		results[idx].Err = rec.Error
	}
	return results
}
