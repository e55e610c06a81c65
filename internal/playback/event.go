package playback

import "fmt"

// Highlight is the visual class applied to a word during playback. The three
// classes are mutually exclusive per render.
type Highlight int

const (
	HighlightSeekStart Highlight = iota // seek target, before speech starts
	HighlightSpeaking                   // word currently being spoken
	HighlightSpoken                     // word whose utterance completed
)

func (h Highlight) String() string {
	switch h {
	case HighlightSeekStart:
		return "seek-start"
	case HighlightSpeaking:
		return "speaking"
	case HighlightSpoken:
		return "spoken"
	}
	return fmt.Sprintf("highlight(%d)", int(h))
}

// EventKind discriminates engine events.
type EventKind int

const (
	// EventHighlight marks the word at Cursor with Class. Consumers resolve
	// the cursor through their current word index; handles must never be
	// cached across a re-render.
	EventHighlight EventKind = iota
	// EventClearHighlights removes every highlight mark.
	EventClearHighlights
	// EventStatus carries a human-readable status line.
	EventStatus
	// EventScroll asks the view to bring the word at Cursor into view.
	EventScroll
	// EventRerender signals that the effective word source changed and the
	// word index must be rebuilt.
	EventRerender
	// EventFinished signals end of document.
	EventFinished
)

// Event is a single engine notification. The sink runs on the engine's
// locked path and must not call back into the engine; hand the event off
// (e.g. onto a channel) instead.
type Event struct {
	Kind   EventKind
	Cursor Cursor
	Class  Highlight
	Status string
}
