package ingest

import (
	"github.com/voxreader/vox/internal/document"
	"github.com/voxreader/vox/internal/process"
)

// PDFFormat loads PDFs directly, reusing the processing service's pipeline
// including page image extraction.
type PDFFormat struct{}

func init() {
	Register(&PDFFormat{})
}

func (f *PDFFormat) Name() string         { return "PDF" }
func (f *PDFFormat) Extensions() []string { return []string{".pdf"} }

func (f *PDFFormat) Load(filename string) (*document.Document, error) {
	result, err := process.NewProcessor(nil, true).ProcessPDF(filename)
	if err != nil {
		return nil, err
	}
	return &result.Document, nil
}
