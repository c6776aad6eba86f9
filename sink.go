package casepipe

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SectionSink persists rendered documentation. The renderer itself never
// performs I/O; callers hand its output to a sink.
type SectionSink interface {
	WriteSections(sections []DocumentSection) error
	WriteDocument(doc string) error
}

// Default file names under a FileSink directory.
const (
	sectionsFileName = "usecase_doc.json"
	documentFileName = "usecase_doc.md"
)

// FileSink writes rendered output beneath a fixed directory.
type FileSink struct {
	Dir string
}

func NewFileSink(dir string) *FileSink { return &FileSink{Dir: dir} }

// WriteSections persists the ordered section records as pretty-printed JSON.
func (s *FileSink) WriteSections(sections []DocumentSection) error {
	b, err := json.MarshalIndent(sections, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sections: %w", err)
	}
	return s.write(sectionsFileName, b)
}

// WriteDocument persists the composed markdown document.
func (s *FileSink) WriteDocument(doc string) error {
	return s.write(documentFileName, []byte(doc))
}

func (s *FileSink) write(name string, b []byte) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
