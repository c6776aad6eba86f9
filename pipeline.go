package casepipe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrNoItems is returned when the caller supplies an empty batch.
var ErrNoItems = errors.New("no items supplied")

// ErrNoSupportedItems is returned when every supplied item classifies as
// unsupported. No engines are invoked in that case.
var ErrNoSupportedItems = errors.New("no supported items to process")

// Adapter is one lane's extraction component: it owns staging, the engine
// call, and per-item failure isolation for its lane.
type Adapter interface {
	Lane() Lane
	Extract(ctx context.Context, items []UploadedItem, opts *Options) []ExtractionResult
}

// Pipeline coordinates classification, concurrent extraction, insight
// analysis, and aggregation for one batch of uploads. Collaborators are
// injected and stateless, so one Pipeline serves concurrent requests.
type Pipeline struct {
	adapters map[Lane]Adapter
	insight  *InsightExtractor
	log      *slog.Logger
}

// NewPipeline wires the extraction adapters and the insight extractor
// together. Lanes without an adapter fail their items individually rather
// than the batch.
func NewPipeline(insight *InsightExtractor, log *slog.Logger, adapters ...Adapter) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	m := make(map[Lane]Adapter, len(adapters))
	for _, a := range adapters {
		m[a.Lane()] = a
	}
	return &Pipeline{adapters: m, insight: insight, log: log}
}

// Process runs the full pipeline over one batch:
//
//  1. classify every item into a lane; unsupported items are skipped with a
//     caller-visible warning;
//  2. extract non-empty lanes concurrently;
//  3. analyze every extracted text above the length threshold, concurrently
//     and failure-isolated per item;
//  4. merge everything into an AggregateResult whose flattened use-case
//     lists follow lane-then-submission order, never completion order.
//
// Only an input error (nothing usable to process) fails the invocation;
// every other failure is absorbed into per-item error fields.
func (p *Pipeline) Process(ctx context.Context, items []UploadedItem, optFns ...func(*Options)) (*AggregateResult, error) {
	opts := newOptions(optFns...)
	log := p.log
	if opts.Logger != nil {
		log = opts.Logger
	}

	if len(items) == 0 {
		return nil, ErrNoItems
	}

	// Stage 1: classification.
	perLane := make(map[Lane][]UploadedItem)
	var warnings []string
	for _, item := range items {
		lane := Classify(item)
		if lane == LaneUnsupported {
			log.Warn("unsupported file skipped", "file", item.Name)
			warnings = append(warnings, fmt.Sprintf("unsupported file skipped: %s", item.Name))
			continue
		}
		perLane[lane] = append(perLane[lane], item)
	}
	if len(perLane) == 0 {
		return nil, ErrNoSupportedItems
	}

	// Each stage gets its own fan-out/fan-in barrier. A caller-supplied
	// runner is reused across stages and must tolerate Go after Wait.
	newRunner := func() Runner {
		if opts.Runner != nil {
			return opts.Runner
		}
		return DefaultRunner(ctx)
	}

	// Stage 2: extraction, lanes concurrent with respect to each other.
	// One pre-sized slot per lane keeps recombination in classification
	// order regardless of completion order.
	extracted := make([][]ExtractionResult, len(laneOrder))
	runner := newRunner()
	for li, lane := range laneOrder {
		laneItems := perLane[lane]
		if len(laneItems) == 0 {
			continue
		}
		adapter := p.adapters[lane]
		if adapter == nil {
			log.Warn("no adapter configured for lane", "lane", lane)
			extracted[li] = failAll(newResults(laneItems, lane), fmt.Errorf("no adapter configured for %s lane", lane))
			continue
		}
		runner.Go(func() error {
			log.Debug("extracting lane", "lane", lane, "items", len(laneItems))
			extracted[li] = adapter.Extract(ctx, laneItems, &opts)
			return nil
		})
	}
	if err := runner.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 3: insight analysis, concurrent per item, write-once into each
	// item's own slot.
	runner = newRunner()
	for li := range extracted {
		for i := range extracted[li] {
			res := &extracted[li][i]
			res.Accepted = []UseCase{}
			res.Suggested = []UseCase{}
			if res.Err != "" || res.Text == "" || len(res.Text) <= opts.AnalyzeThreshold {
				continue
			}
			runner.Go(func() error {
				ins, err := p.insight.Analyze(ctx, res.Text, opts.Mode)
				if err != nil {
					// Degrades to empty lists; the batch proceeds.
					log.Warn("insight analysis failed", "file", res.File, "error", err)
					return nil
				}
				accepted, suggested := splitUseCases(ins, opts.Mode)
				if accepted != nil {
					res.Accepted = accepted
				}
				if suggested != nil {
					res.Suggested = suggested
				}
				return nil
			})
		}
	}
	if err := runner.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 4: aggregation in lane-then-submission order.
	agg := &AggregateResult{
		PerLane:   make(map[Lane][]ExtractionResult),
		Accepted:  []UseCase{},
		Suggested: []UseCase{},
		Warnings:  warnings,
	}
	for li, lane := range laneOrder {
		if extracted[li] == nil {
			continue
		}
		agg.PerLane[lane] = extracted[li]
		for _, res := range extracted[li] {
			agg.Accepted = append(agg.Accepted, res.Accepted...)
			agg.Suggested = append(agg.Suggested, res.Suggested...)
		}
	}
	log.Debug("pipeline complete",
		"lanes", len(agg.PerLane),
		"accepted", len(agg.Accepted),
		"suggested", len(agg.Suggested),
		"warnings", len(warnings))
	return agg, nil
}
