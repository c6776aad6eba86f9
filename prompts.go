package casepipe

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/tyler-sommer/stick"
)

//go:embed templates/*.twig
var builtinTemplates embed.FS

// PromptProvider returns the rendered prompt text for a tag. The GenAI
// engines look up "ocr" and "insight".
type PromptProvider interface {
	GetPrompt(tag string, vars map[string]any) (string, error)
}

// StickPromptProvider renders prompts from twig templates.
type StickPromptProvider struct {
	env       *stick.Env
	templates map[string]string
}

// PromptOption configures a StickPromptProvider.
type PromptOption func(*StickPromptProvider) error

// WithPromptFS loads every *.twig file found under dir in the supplied FS.
// The file base name without extension becomes the tag.
func WithPromptFS(fsys fs.FS, dir string) PromptOption {
	return func(p *StickPromptProvider) error {
		return fs.WalkDir(fsys, dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, ".twig") {
				return nil
			}
			content, readErr := fs.ReadFile(fsys, path)
			if readErr != nil {
				return fmt.Errorf("read %s: %w", path, readErr)
			}
			tag := strings.TrimSuffix(filepath.Base(path), ".twig")
			p.templates[tag] = string(content)
			return nil
		})
	}
}

// WithPromptTemplates lets you inject an in-memory map.
func WithPromptTemplates(m map[string]string) PromptOption {
	return func(p *StickPromptProvider) error {
		for k, v := range m {
			p.templates[k] = v
		}
		return nil
	}
}

// NewStickPromptProvider builds a provider from any combination of options.
func NewStickPromptProvider(opts ...PromptOption) (*StickPromptProvider, error) {
	p := &StickPromptProvider{
		env:       stick.New(nil),
		templates: make(map[string]string),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// DefaultPromptProvider loads the prompts shipped with the package.
func DefaultPromptProvider() (*StickPromptProvider, error) {
	return NewStickPromptProvider(WithPromptFS(builtinTemplates, "templates"))
}

// GetPrompt renders the template for the given tag with vars in scope.
func (p *StickPromptProvider) GetPrompt(tag string, vars map[string]any) (string, error) {
	tpl, ok := p.templates[tag]
	if !ok {
		return "", fmt.Errorf("template %q not found", tag)
	}

	templateCtx := make(map[string]stick.Value, len(vars)+1)
	templateCtx["tag"] = tag
	for k, v := range vars {
		templateCtx[k] = v
	}

	var out strings.Builder
	if err := p.env.Execute(tpl, &out, templateCtx); err != nil {
		return "", fmt.Errorf("execute %q: %w", tag, err)
	}
	return out.String(), nil
}
