package casepipe

import (
	"context"
	"log/slog"
)

// OCRAdapter routes image items through a VisionEngine, one engine call for
// the whole set.
type OCRAdapter struct {
	engine VisionEngine
	log    *slog.Logger
}

func NewOCRAdapter(engine VisionEngine, log *slog.Logger) *OCRAdapter {
	if log == nil {
		log = slog.Default()
	}
	return &OCRAdapter{engine: engine, log: log}
}

func (a *OCRAdapter) Lane() Lane { return LaneImage }

// Extract stages every image into a request-scoped workspace, invokes the
// engine once with the full set, and returns one result per item in input
// order. An engine failure marks every staged item; it never escapes as an
// error of its own.
func (a *OCRAdapter) Extract(ctx context.Context, items []UploadedItem, opts *Options) []ExtractionResult {
	results := newResults(items, LaneImage)

	ws, err := newWorkspace(opts.TempDir, LaneImage, a.log)
	if err != nil {
		return failAll(results, err)
	}
	defer ws.release()

	paths, staged := stageItems(ws, items, results)
	if len(paths) == 0 {
		return results
	}

	recs, err := a.engine.RecognizeImages(ctx, paths, opts.Credentials)
	if err != nil {
		a.log.Warn("ocr engine call failed", "items", len(paths), "error", err)
		for _, idx := range staged {
			results[idx].Err = err.Error()
		}
		return results
	}

	for i, idx := range staged {
		if i >= len(recs) {
			results[idx].Err = "engine returned no record for input"
			continue
		}
		rec := recs[i]
		results[idx].Text = rec.Text
		results[idx].Confidence = rec.Confidence
		results[idx].Warning = rec.Warning
		results[idx].Err = rec.Error
	}
	return results
}

// newResults pre-sizes one result slot per item so downstream writes are
// index-addressed, never appended.
func newResults(items []UploadedItem, lane Lane) []ExtractionResult {
	results := make([]ExtractionResult, len(items))
	for i, item := range items {
		results[i] = ExtractionResult{File: item.Name, Lane: lane}
	}
	return results
}

func failAll(results []ExtractionResult, err error) []ExtractionResult {
	for i := range results {
		results[i].Err = err.Error()
	}
	return results
}

// stageItems persists items into the workspace. A staging failure fails
// only that item; the returned slices map staged paths back to result slots.
func stageItems(ws *workspace, items []UploadedItem, results []ExtractionResult) (paths []string, staged []int) {
	for i, item := range items {
		if results[i].Err != "" {
			continue
		}
		path, err := ws.stage(i, item)
		if err != nil {
			results[i].Err = err.Error()
			continue
		}
		paths = append(paths, path)
		staged = append(staged, i)
	}
	return paths, staged
}
