// Package ingest loads local files into the document model without going
// through the processing service. Each format splits its input into pages,
// then the shared processing pipeline tokenizes and cleans them.
package ingest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/voxreader/vox/internal/document"
	"github.com/voxreader/vox/internal/process"
)

// Format loads one file type into the document model.
type Format interface {
	Name() string
	Extensions() []string
	Load(filename string) (*document.Document, error)
}

var registry []Format

// Register adds a format to the registry.
func Register(f Format) {
	registry = append(registry, f)
}

// Load reads a file using a registered format, falling back to plain text.
func Load(filename string) (*document.Document, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, f := range registry {
		for _, e := range f.Extensions() {
			if ext == e {
				return f.Load(filename)
			}
		}
	}
	return loadPlainText(filename)
}

// SupportedFormats returns registered format names with their extensions.
func SupportedFormats() []string {
	var out []string
	for _, f := range registry {
		out = append(out, f.Name()+" ("+strings.Join(f.Extensions(), ", ")+")")
	}
	return out
}

// fromPageTexts runs page texts through boilerplate detection and
// tokenization, the same pipeline the processing service uses.
func fromPageTexts(pageTexts []string) *document.Document {
	doc := process.BuildResult(pageTexts, nil).Document
	return &doc
}

// loadPlainText treats the whole file as text, splitting pages on form
// feeds when present.
func loadPlainText(filename string) (*document.Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	pages := strings.Split(string(data), "\f")
	return fromPageTexts(pages), nil
}
