package tui

import (
	"fmt"
	"strings"

	"github.com/voxreader/vox/internal/playback"
	"github.com/voxreader/vox/internal/render"
)

// segment is one styled run on a screen line. Word segments carry the
// playback cursor they map to; literal segments have cursor == nil.
type segment struct {
	text   string
	cursor *playback.Cursor
}

// position locates a word on the built screen, in content coordinates.
type position struct {
	Line     int
	StartCol int
	EndCol   int // exclusive
}

// screen is the wrapped, position-indexed projection of a render layout.
// Rebuilt whenever the layout or the terminal width changes.
type screen struct {
	lines []([]segment)
	words map[playback.Cursor]position
}

// buildScreen wraps the layout's blocks to width columns, recording the
// line/column of every word so clicks and scroll targets resolve back to
// playback cursors.
func buildScreen(layout *render.Layout, width int) *screen {
	if width < 16 {
		width = 16
	}
	s := &screen{words: make(map[playback.Cursor]position)}

	var cur []segment
	col := 0
	newline := func() {
		s.lines = append(s.lines, cur)
		cur = nil
		col = 0
	}
	emit := func(text string, c *playback.Cursor) {
		w := len([]rune(text))
		if col+w > width && col > 0 {
			newline()
			if c == nil {
				// A wrapped literal run sheds its leading spaces so the
				// next line does not start indented.
				text = strings.TrimLeft(text, " ")
				if text == "" {
					return
				}
				w = len([]rune(text))
			}
		}
		if c != nil {
			s.words[*c] = position{Line: len(s.lines), StartCol: col, EndCol: col + w}
		}
		cur = append(cur, segment{text: text, cursor: c})
		col += w
	}

	for _, block := range layout.Blocks {
		if len(s.lines) > 0 || cur != nil {
			newline()
		}
		emit(fmt.Sprintf("· page %d ·", block.Page+1), nil)
		newline()

		switch block.Kind {
		case render.BlockImage:
			emit(fmt.Sprintf("[page image, %d KB]", (len(block.Image)+1023)/1024), nil)
			newline()
		case render.BlockPrompt:
			emit(block.Prompt, nil)
			newline()
		case render.BlockText:
			for _, span := range block.Spans {
				if span.Word >= 0 {
					c := playback.Cursor{Page: block.Page, Word: span.Word}
					emit(span.Text, &c)
					continue
				}
				// Literal runs flow as-is; their own newlines win over
				// soft wrapping.
				parts := strings.Split(span.Text, "\n")
				for i, part := range parts {
					if i > 0 {
						newline()
					}
					if part != "" {
						emit(part, nil)
					}
				}
			}
			newline()
		}
	}
	if cur != nil {
		newline()
	}
	return s
}

// wordAt resolves a content coordinate to the word rendered there.
func (s *screen) wordAt(line, col int) (playback.Cursor, bool) {
	for c, pos := range s.words {
		if pos.Line == line && col >= pos.StartCol && col < pos.EndCol {
			return c, true
		}
	}
	return playback.Cursor{}, false
}

// lineOf returns the content line a word sits on.
func (s *screen) lineOf(c playback.Cursor) (int, bool) {
	pos, ok := s.words[c]
	return pos.Line, ok
}
