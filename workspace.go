package casepipe

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// workspace is request-scoped temporary storage for one adapter call. The
// directory name carries a fresh UUID so concurrent invocations can never
// collide. The owner must call release (or releaseAfter) on every exit path.
type workspace struct {
	dir string
	log *slog.Logger
}

func newWorkspace(base string, lane Lane, log *slog.Logger) (*workspace, error) {
	if base == "" {
		base = os.TempDir()
	}
	dir := filepath.Join(base, fmt.Sprintf("casepipe-%s-%s", lane, uuid.NewString()))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &workspace{dir: dir, log: log}, nil
}

// stage writes one item into the workspace and returns its path. Names are
// sanitized and prefixed with their submission index to stay unique within
// the call.
func (w *workspace) stage(idx int, item UploadedItem) (string, error) {
	path := filepath.Join(w.dir, fmt.Sprintf("%d_%s", idx, safeFileName(item.Name)))
	if err := os.WriteFile(path, item.Data, 0o644); err != nil {
		return "", fmt.Errorf("stage %s: %w", item.Name, err)
	}
	return path, nil
}

// release removes the workspace immediately.
func (w *workspace) release() {
	if err := os.RemoveAll(w.dir); err != nil {
		w.log.Warn("workspace cleanup failed", "dir", w.dir, "error", err)
	}
}

// releaseAfter removes the workspace once the grace window elapses, so a
// still-reading engine process is not raced. With a zero grace it removes
// immediately.
func (w *workspace) releaseAfter(grace time.Duration) {
	if grace <= 0 {
		w.release()
		return
	}
	time.AfterFunc(grace, w.release)
}
