package casepipe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"google.golang.org/genai"
)

const defaultGenAIModel = "gemini-2.0-flash"

// GenAIVisionEngine implements VisionEngine on a Gemini model: images are
// uploaded through the Files API and transcribed in one generate call.
// Caller-supplied Credentials are ignored; the genai client carries its own.
type GenAIVisionEngine struct {
	client  *genai.Client
	prompts PromptProvider
	model   string
	log     *slog.Logger
}

func NewGenAIVisionEngine(client *genai.Client, prompts PromptProvider, model string, log *slog.Logger) *GenAIVisionEngine {
	if model == "" {
		model = defaultGenAIModel
	}
	if log == nil {
		log = slog.Default()
	}
	return &GenAIVisionEngine{client: client, prompts: prompts, model: model, log: log}
}

// RecognizeImages implements VisionEngine.
func (e *GenAIVisionEngine) RecognizeImages(ctx context.Context, paths []string, _ *Credentials) ([]OCRRecord, error) {
	prompt, err := e.prompts.GetPrompt("ocr", map[string]any{"count": len(paths)})
	if err != nil {
		return nil, fmt.Errorf("ocr prompt: %w", err)
	}

	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	for _, path := range paths {
		mimeType := mimeFromPath(path)
		e.log.Debug("uploading image", "path", path, "mime_type", mimeType)
		file, err := e.client.Files.UploadFromPath(ctx, path, &genai.UploadFileConfig{
			MIMEType:    mimeType,
			DisplayName: filepath.Base(path),
		})
		if err != nil {
			return nil, fmt.Errorf("upload %s: %w", path, err)
		}
		parts = append(parts, genai.NewPartFromFile(genai.File{
			URI:      file.URI,
			MIMEType: file.MIMEType,
		}))
	}

	raw, err := e.generate(ctx, parts)
	if err != nil {
		return nil, err
	}
	recs, err := decodeRecords[OCRRecord](raw)
	if err != nil {
		return nil, err
	}
	// Model output may omit file names; backfill from the inputs.
	for i := range recs {
		if recs[i].File == "" && i < len(paths) {
			recs[i].File = filepath.Base(paths[i])
		}
	}
	return recs, nil
}

func (e *GenAIVisionEngine) generate(ctx context.Context, parts []*genai.Part) ([]byte, error) {
	return genaiGenerate(ctx, e.client, e.model, parts, e.log)
}

// GenAIInsightEngine implements InsightEngine on a Gemini model.
type GenAIInsightEngine struct {
	client  *genai.Client
	prompts PromptProvider
	model   string
	log     *slog.Logger
}

func NewGenAIInsightEngine(client *genai.Client, prompts PromptProvider, model string, log *slog.Logger) *GenAIInsightEngine {
	if model == "" {
		model = defaultGenAIModel
	}
	if log == nil {
		log = slog.Default()
	}
	return &GenAIInsightEngine{client: client, prompts: prompts, model: model, log: log}
}

// Analyze implements InsightEngine.
func (e *GenAIInsightEngine) Analyze(ctx context.Context, text string, mode Mode) (Insight, error) {
	prompt, err := e.prompts.GetPrompt("insight", map[string]any{
		"mode": string(mode),
		"text": text,
	})
	if err != nil {
		return Insight{}, fmt.Errorf("insight prompt: %w", err)
	}

	raw, err := genaiGenerate(ctx, e.client, e.model, []*genai.Part{genai.NewPartFromText(prompt)}, e.log)
	if err != nil {
		return Insight{}, err
	}
	var ins Insight
	if err := json.Unmarshal(SanitizeEngineOutput(raw), &ins); err != nil {
		return Insight{}, fmt.Errorf("%w: %v", ErrEngineOutput, err)
	}
	return ins, nil
}

// genaiGenerate issues one JSON-mode generate call and returns the first
// candidate's text.
func genaiGenerate(ctx context.Context, client *genai.Client, model string, parts []*genai.Part, log *slog.Logger) ([]byte, error) {
	if client == nil {
		return nil, fmt.Errorf("genai client not initialized")
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	log.Debug("generating content", "model", model, "parts", len(parts))
	resp, err := client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates in response", ErrEngineOutput)
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: no parts in candidate content", ErrEngineOutput)
	}
	text := candidate.Content.Parts[0].Text
	if text == "" {
		return nil, fmt.Errorf("%w: no text in first part of response", ErrEngineOutput)
	}
	log.Debug("generated content", "response_length", len(text))
	return []byte(text), nil
}

// mimeFromPath detects a file's MIME type from content, falling back to the
// extension when the file cannot be read.
func mimeFromPath(path string) string {
	mtype, err := mimetype.DetectFile(path)
	if err == nil {
		return mtype.String()
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".bmp":
		return "image/bmp"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
