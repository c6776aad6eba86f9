// Package casepipe turns heterogeneous uploads (images, audio clips,
// word-processor documents) into structured use-case insights and rendered
// documentation. It classifies each upload into a processing lane, fans out
// to lane-specific extraction engines concurrently, derives use-case
// suggestions from every extracted text, and merges everything into a single
// aggregate result with deterministic ordering.
//
// # Pipeline
//
// The pipeline runs four strictly ordered stages: classification, extraction,
// insight analysis, and aggregation. Within a stage, work is unordered with
// respect to completion time; results are always recombined in lane-then-
// submission order, never completion order.
//
//	pipe := casepipe.NewPipeline(
//	    casepipe.NewInsightExtractor(insight, log),
//	    log,
//	    casepipe.NewOCRAdapter(vision, log),
//	    casepipe.NewSpeechAdapter(speech, log),
//	    casepipe.NewDocxAdapter(docs, log),
//	)
//	res, err := pipe.Process(ctx, items, casepipe.WithMode(casepipe.ModeAll))
//
// Each item fails in isolation: an engine crash, an unsupported container, or
// malformed engine output marks that item's result with an error and the rest
// of the batch proceeds. Only an input error (no usable items at all) fails
// the invocation.
//
// # Engines
//
// Extraction and analysis engines are opaque collaborators behind small
// interfaces. Two families ship with the package: script engines that invoke
// an external process per call and parse its JSON output, and GenAI engines
// backed by Gemini models via google.golang.org/genai. Both are injectable,
// so tests substitute stubs.
//
// # Documentation rendering
//
// Render is a pure function from an ordered use-case list to numbered
// document sections (UC-### use-case specs, US-### user stories). Rendering
// the same list with the same options twice produces byte-identical output.
// Persistence is delegated to a SectionSink.
package casepipe
