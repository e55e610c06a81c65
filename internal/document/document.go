// Package document holds the in-memory model of a processed document:
// pages, per-page text variants, word lists, and detected boilerplate patterns.
package document

// Word is a single word with half-open byte offsets into its text variant.
type Word struct {
	Text  string `json:"word"`
	Start int    `json:"start_pos"`
	End   int    `json:"end_pos"`
}

// Page is one page of a processed document. Words index into ProcessedText
// when BoilerplateRemoved is set; callers wanting the unprocessed variant
// re-derive words from OriginalText via Tokenize. Pages are immutable once
// installed.
type Page struct {
	Number             int    `json:"page_number"` // 1-based
	OriginalText       string `json:"original_text"`
	ProcessedText      string `json:"processed_text"`
	Words              []Word `json:"words"`
	Image              []byte `json:"image,omitempty"`
	BoilerplateRemoved bool   `json:"boilerplate_removed"`
}

// Document is a fully processed document. It is owned by a single session and
// replaced wholesale on a new upload.
type Document struct {
	PageCount      int      `json:"total_pages"`
	Pages          []Page   `json:"pages"`
	HeaderPatterns []string `json:"header_patterns"`
	FooterPatterns []string `json:"footer_patterns"`
}

// EffectiveWords returns the word list in effect for the page at pageIndex.
// With useProcessed set it returns the backend-supplied words; otherwise the
// original text is tokenized fresh, since the backend supplies no offsets for
// the unprocessed variant.
func (d *Document) EffectiveWords(pageIndex int, useProcessed bool) []Word {
	if pageIndex < 0 || pageIndex >= len(d.Pages) {
		return nil
	}
	p := &d.Pages[pageIndex]
	if useProcessed {
		return p.Words
	}
	return Tokenize(p.OriginalText)
}

// EffectiveText returns the text variant the effective word offsets refer to.
func (d *Document) EffectiveText(pageIndex int, useProcessed bool) string {
	if pageIndex < 0 || pageIndex >= len(d.Pages) {
		return ""
	}
	if useProcessed {
		return d.Pages[pageIndex].ProcessedText
	}
	return d.Pages[pageIndex].OriginalText
}
