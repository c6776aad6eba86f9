package casepipe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// ErrEngineOutput is returned when an engine exits cleanly but its stdout
// does not parse as the expected structure.
var ErrEngineOutput = errors.New("engine produced unparseable output")

// ErrEngineUnavailable is returned when the engine process cannot be
// started at all.
var ErrEngineUnavailable = errors.New("engine unavailable")

// ScriptEngine invokes an external extraction program as an isolated
// subprocess per call and parses its JSON stdout. It implements every
// engine contract; a deployment builds one instance per lane, pointing at
// that lane's script.
type ScriptEngine struct {
	Command string // interpreter or binary, e.g. "python"
	Script  string // optional script path passed as the first argument
	log     *slog.Logger
}

// NewScriptEngine builds a subprocess-backed engine.
func NewScriptEngine(command, script string, log *slog.Logger) *ScriptEngine {
	if log == nil {
		log = slog.Default()
	}
	return &ScriptEngine{Command: command, Script: script, log: log}
}

// run executes one engine invocation. A non-zero exit is surfaced with the
// diagnostic text the engine wrote to stderr (or stdout when stderr is
// empty, some engines report there).
func (e *ScriptEngine) run(ctx context.Context, args ...string) ([]byte, error) {
	argv := args
	if e.Script != "" {
		argv = append([]string{e.Script}, args...)
	}
	cmd := exec.CommandContext(ctx, e.Command, argv...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.log.Debug("invoking engine", "command", e.Command, "script", e.Script, "args", len(args))
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			diag := strings.TrimSpace(stderr.String())
			if diag == "" {
				diag = strings.TrimSpace(stdout.String())
			}
			return nil, fmt.Errorf("engine exited with code %d: %s", exitErr.ExitCode(), diag)
		}
		return nil, fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}
	return stdout.Bytes(), nil
}

// decodeRecords parses engine stdout as a record array, accepting the
// single aggregate record some engines emit for single-item calls.
func decodeRecords[T any](out []byte) ([]T, error) {
	raw := SanitizeEngineOutput(out)
	var recs []T
	if err := json.Unmarshal(raw, &recs); err == nil {
		return recs, nil
	}
	var one T
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineOutput, err)
	}
	return []T{one}, nil
}

// RecognizeImages implements VisionEngine.
func (e *ScriptEngine) RecognizeImages(ctx context.Context, paths []string, creds *Credentials) ([]OCRRecord, error) {
	args := append([]string{}, paths...)
	if creds != nil && creds.Key != "" && creds.Endpoint != "" {
		args = append(args, "--llm_key", creds.Key, "--llm_endpoint", creds.Endpoint)
	}
	out, err := e.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	return decodeRecords[OCRRecord](out)
}

// Transcribe implements SpeechEngine.
func (e *ScriptEngine) Transcribe(ctx context.Context, paths []string, hint string) ([]TranscriptRecord, error) {
	args := append([]string{}, paths...)
	args = append(args, "--context="+hint)
	out, err := e.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	return decodeRecords[TranscriptRecord](out)
}

// ExtractText implements DocumentEngine.
func (e *ScriptEngine) ExtractText(ctx context.Context, path string) (DocRecord, error) {
	out, err := e.run(ctx, path)
	if err != nil {
		return DocRecord{}, err
	}
	var rec DocRecord
	if err := json.Unmarshal(SanitizeEngineOutput(out), &rec); err != nil {
		return DocRecord{}, fmt.Errorf("%w: %v", ErrEngineOutput, err)
	}
	return rec, nil
}

// Analyze implements InsightEngine.
func (e *ScriptEngine) Analyze(ctx context.Context, text string, mode Mode) (Insight, error) {
	out, err := e.run(ctx, "--mode="+string(mode), text)
	if err != nil {
		return Insight{}, err
	}
	var ins Insight
	if err := json.Unmarshal(SanitizeEngineOutput(out), &ins); err != nil {
		return Insight{}, fmt.Errorf("%w: %v", ErrEngineOutput, err)
	}
	return ins, nil
}
