// Package process turns an uploaded PDF into the document model: per-page
// text, word offsets, page images, and detected header/footer patterns.
package process

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	pdfcpu "github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/voxreader/vox/internal/document"
)

// Result is the wire shape of a processing run: the document plus a success
// flag, mirrored by the upload client.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	document.Document
}

// Processor extracts documents from PDFs.
type Processor struct {
	logger *slog.Logger
	// extractImages toggles best-effort page image extraction.
	extractImages bool
}

// NewProcessor creates a processor. A nil logger disables logging.
func NewProcessor(logger *slog.Logger, extractImages bool) *Processor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Processor{logger: logger, extractImages: extractImages}
}

// ProcessPDF extracts text, words, images, and boilerplate patterns from the
// PDF at path.
func (p *Processor) ProcessPDF(path string) (*Result, error) {
	pageTexts, err := extractPageTexts(path)
	if err != nil {
		return nil, fmt.Errorf("extracting text: %w", err)
	}

	var images map[int][]byte
	if p.extractImages {
		images, err = extractPageImages(path, len(pageTexts))
		if err != nil {
			// Degraded, not fatal: pages without an image fall back to
			// the text prompt in image view.
			p.logger.Warn("page image extraction failed", "path", path, "err", err)
			images = nil
		}
	}

	result := BuildResult(pageTexts, images)
	p.logger.Info("processed pdf",
		"path", path,
		"pages", result.PageCount,
		"header_patterns", len(result.HeaderPatterns),
		"footer_patterns", len(result.FooterPatterns))
	return result, nil
}

// BuildResult assembles the document from raw per-page text and optional
// per-page images (keyed by zero-based page index). Pure; the PDF plumbing
// lives in ProcessPDF.
func BuildResult(pageTexts []string, images map[int][]byte) *Result {
	headers, footers := DetectBoilerplate(pageTexts)

	doc := document.Document{
		PageCount:      len(pageTexts),
		HeaderPatterns: headers,
		FooterPatterns: footers,
	}
	for i, text := range pageTexts {
		processed, removed := StripBoilerplate(text, headers, footers)
		doc.Pages = append(doc.Pages, document.Page{
			Number:             i + 1,
			OriginalText:       text,
			ProcessedText:      processed,
			Words:              document.Tokenize(processed),
			Image:              images[i],
			BoilerplateRemoved: removed,
		})
	}
	return &Result{Success: true, Document: doc}
}

// extractPageTexts reads the PDF's per-page plain text.
func extractPageTexts(path string) ([]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	n := r.NumPage()
	texts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			texts = append(texts, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page degrades to empty text; the page
			// is skipped transparently during playback.
			texts = append(texts, "")
			continue
		}
		texts = append(texts, strings.TrimRight(text, "\n"))
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}
	return texts, nil
}

// extractPageImages pulls embedded page images via pdfcpu into a temp
// directory and maps them back to zero-based page indices. Best effort:
// pages without an extractable image are simply absent from the map.
func extractPageImages(path string, pageCount int) (map[int][]byte, error) {
	dir, err := os.MkdirTemp("", "vox-images-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	if err := pdfcpu.ExtractImagesFile(path, dir, nil, nil); err != nil {
		return nil, fmt.Errorf("pdfcpu extract: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	images := make(map[int][]byte)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		pageNum, ok := pageNumberFromImageFile(entry.Name())
		if !ok || pageNum < 1 || pageNum > pageCount {
			continue
		}
		idx := pageNum - 1
		if _, exists := images[idx]; exists {
			continue // keep the first image per page
		}
		f, err := os.Open(dir + "/" + entry.Name())
		if err != nil {
			continue
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			continue
		}
		images[idx] = data
	}
	return images, nil
}

// pdfcpu names extracted images <basename>_<page>_<resource>.<ext>.
var imagePageRe = regexp.MustCompile(`_(\d+)_`)

func pageNumberFromImageFile(name string) (int, bool) {
	m := imagePageRe.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
