// Package render projects a document into view-neutral render blocks and
// builds the word index that maps (page, word) coordinates to span handles.
// The index is rebuilt from scratch on every render pass; handles from an
// earlier layout are invalid after a rebuild and must be re-resolved.
package render

import (
	"github.com/voxreader/vox/internal/document"
	"github.com/voxreader/vox/internal/playback"
)

// ViewMode selects the page presentation.
type ViewMode int

const (
	ViewText  ViewMode = iota // interactive tokenized text
	ViewImage                 // page image where available
)

// Options controls a render pass.
type Options struct {
	Mode         ViewMode
	UseProcessed bool // processed (boilerplate-stripped) word source
}

// BlockKind discriminates render blocks.
type BlockKind int

const (
	BlockText   BlockKind = iota // interactive word spans
	BlockImage                   // page image bytes
	BlockPrompt                  // image view requested but no image present
)

// Span is one run of a text block: either a literal inter-word run
// (Word == -1, whitespace and punctuation preserved unchanged) or an
// individually addressable word.
type Span struct {
	Text string
	Word int // word index within the page, -1 for literal runs
}

// Block is one visual block per page.
type Block struct {
	Kind   BlockKind
	Page   int // zero-based page index
	Spans  []Span
	Image  []byte
	Prompt string
}

// Handle locates a word span inside a Layout. Valid only for the layout that
// produced it.
type Handle struct {
	Block int
	Span  int
}

// Layout is the result of one render pass: the block list plus the word
// index populated as a side effect.
type Layout struct {
	Blocks []Block
	index  map[playback.Cursor]Handle
	counts []int
}

// Lookup resolves a playback cursor through this layout's word index.
func (l *Layout) Lookup(c playback.Cursor) (Handle, bool) {
	h, ok := l.index[c]
	return h, ok
}

// WordCount returns the number of indexed words on a page.
func (l *Layout) WordCount(page int) int {
	if page < 0 || page >= len(l.counts) {
		return 0
	}
	return l.counts[page]
}

// IndexSize returns the total number of indexed words.
func (l *Layout) IndexSize() int {
	return len(l.index)
}

const noImagePrompt = "No image available for this page. Switch to text view to follow along."

// Render produces one block per page and a fresh word index. Only text
// blocks contribute to the index; image and prompt blocks have no
// addressable words.
func Render(doc *document.Document, opts Options) *Layout {
	l := &Layout{
		index:  make(map[playback.Cursor]Handle),
		counts: make([]int, len(doc.Pages)),
	}
	for pageIdx := range doc.Pages {
		page := &doc.Pages[pageIdx]
		if opts.Mode == ViewImage {
			if len(page.Image) > 0 {
				l.Blocks = append(l.Blocks, Block{Kind: BlockImage, Page: pageIdx, Image: page.Image})
				continue
			}
			l.Blocks = append(l.Blocks, Block{Kind: BlockPrompt, Page: pageIdx, Prompt: noImagePrompt})
			continue
		}
		l.Blocks = append(l.Blocks, l.textBlock(doc, pageIdx, opts.UseProcessed))
	}
	return l
}

// textBlock interleaves literal inter-word text with addressable word spans
// and registers each word in the index.
func (l *Layout) textBlock(doc *document.Document, pageIdx int, useProcessed bool) Block {
	text := doc.EffectiveText(pageIdx, useProcessed)
	words := doc.EffectiveWords(pageIdx, useProcessed)
	block := Block{Kind: BlockText, Page: pageIdx}
	blockIdx := len(l.Blocks)

	prev := 0
	for wordIdx, w := range words {
		if w.Start > prev {
			block.Spans = append(block.Spans, Span{Text: text[prev:w.Start], Word: -1})
		}
		l.index[playback.Cursor{Page: pageIdx, Word: wordIdx}] = Handle{
			Block: blockIdx,
			Span:  len(block.Spans),
		}
		block.Spans = append(block.Spans, Span{Text: w.Text, Word: wordIdx})
		prev = w.End
	}
	if prev < len(text) {
		block.Spans = append(block.Spans, Span{Text: text[prev:], Word: -1})
	}
	l.counts[pageIdx] = len(words)
	return block
}
