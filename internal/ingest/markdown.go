package ingest

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"github.com/voxreader/vox/internal/document"
)

// MarkdownFormat loads Markdown files. Top-level headers start new pages,
// so seeking by page tracks the document's own structure.
type MarkdownFormat struct{}

func init() {
	Register(&MarkdownFormat{})
}

func (f *MarkdownFormat) Name() string         { return "Markdown" }
func (f *MarkdownFormat) Extensions() []string { return []string{".md", ".markdown"} }

// headerRegex matches markdown headers (# to ######)
var headerRegex = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

func (f *MarkdownFormat) Load(filename string) (*document.Document, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var pages []string
	var current []string

	flush := func() {
		if len(current) > 0 {
			pages = append(pages, strings.Join(current, "\n"))
			current = nil
		}
	}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if headerRegex.MatchString(line) {
			flush()
		}
		current = append(current, line)
	}
	flush()
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		pages = []string{""}
	}

	return fromPageTexts(pages), nil
}
