// Package playback owns the play/pause/stop/seek state machine that keeps
// the speech synthesizer, the word highlight, and the page/word cursor
// mutually consistent.
package playback

import (
	"fmt"
	"sync"
	"time"

	"github.com/voxreader/vox/internal/document"
)

// State is the playback lifecycle state.
type State int

const (
	Idle State = iota
	Playing
	Paused
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Finished:
		return "finished"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Cursor is the zero-based (page, word) playback position. word is valid
// only relative to the currently effective word list for that page.
type Cursor struct {
	Page int
	Word int
}

const (
	defaultRate = 1.0
	minRate     = 0.25

	// Gap between words at rate 1.0; scaled down as rate goes up so fast
	// reading stays perceptibly continuous.
	baseWordGap = 200 * time.Millisecond
)

// Engine drives speech playback over a document. All mutation happens under
// one lock, which stands in for the single event loop of the design: at most
// one utterance is ever outstanding, and completion callbacks for superseded
// utterances are detected by generation number and ignored.
type Engine struct {
	mu     sync.Mutex
	synth  Synthesizer
	notify func(Event)

	doc          *document.Document
	cursor       Cursor
	state        State
	rate         float64
	useProcessed bool

	// gen identifies the current utterance. Stop, Seek, SetRate, and every
	// dispatch bump it; a callback carrying an older value is stale.
	gen         uint64
	outstanding bool
	gapTimer    *time.Timer
	wordGap     time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithWordGap overrides the base inter-word gap (tests use zero).
func WithWordGap(d time.Duration) Option {
	return func(e *Engine) { e.wordGap = d }
}

// NewEngine creates an engine speaking through synth and reporting events to
// notify. notify must not call back into the engine synchronously.
func NewEngine(synth Synthesizer, notify func(Event), opts ...Option) *Engine {
	if notify == nil {
		notify = func(Event) {}
	}
	e := &Engine{
		synth:        synth,
		notify:       notify,
		rate:         defaultRate,
		useProcessed: true,
		wordGap:      baseWordGap,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetDocument installs a new document, stopping any playback in flight and
// resetting the cursor. The previous document is replaced wholesale.
func (e *Engine) SetDocument(doc *document.Document) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelLocked()
	e.doc = doc
	e.cursor = Cursor{}
	e.state = Idle
	e.notify(Event{Kind: EventClearHighlights})
	e.notify(Event{Kind: EventRerender})
}

// Document returns the current document, or nil.
func (e *Engine) Document() *document.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc
}

// State returns the current playback state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Cursor returns the current playback cursor.
func (e *Engine) Cursor() Cursor {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

// Rate returns the current speech rate.
func (e *Engine) Rate() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rate
}

// WordSource reports whether the processed (boilerplate-stripped) word list
// is in effect.
func (e *Engine) WordSource() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.useProcessed
}

// Play starts or resumes playback. When paused it resumes the outstanding
// utterance in place; no new utterance is created. No-op without a document
// or while already playing.
func (e *Engine) Play() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.doc == nil {
		e.notify(Event{Kind: EventStatus, Status: "No document loaded."})
		return
	}
	switch e.state {
	case Playing:
		return
	case Paused:
		e.state = Playing
		e.synth.Resume()
		e.notify(Event{Kind: EventStatus, Status: "Resumed."})
	default: // Idle or Finished: restart from the cursor
		e.state = Playing
		e.advanceLocked()
	}
}

// Pause suspends playback. Valid only while an utterance is actively being
// spoken; no-op otherwise.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Playing || !e.outstanding {
		return
	}
	e.state = Paused
	e.synth.Pause()
	e.notify(Event{Kind: EventStatus, Status: "Paused."})
}

// Toggle flips between Play and Pause (the space-bar binding).
func (e *Engine) Toggle() {
	if e.State() == Playing {
		e.Pause()
	} else {
		e.Play()
	}
}

// Stop cancels any outstanding utterance, clears highlight state, and
// returns to Idle. The cursor is kept: a later Play resumes where playback
// left off.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelLocked()
	e.state = Idle
	e.notify(Event{Kind: EventClearHighlights})
	e.notify(Event{Kind: EventStatus, Status: "Stopped."})
}

// Seek stops playback, moves the cursor to (page, word), marks the target as
// the seek start, and immediately plays from there. This is the path invoked
// by activating a rendered word. Negative coordinates clamp to the start;
// coordinates past the end roll forward through the normal advance path.
func (e *Engine) Seek(page, word int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.doc == nil {
		return
	}
	if page < 0 {
		page = 0
	}
	if word < 0 {
		word = 0
	}
	e.cancelLocked()
	e.cursor = Cursor{Page: page, Word: word}
	e.notify(Event{Kind: EventClearHighlights})
	e.notify(Event{Kind: EventHighlight, Cursor: e.cursor, Class: HighlightSeekStart})
	e.state = Playing
	e.advanceLocked()
}

// SetRate changes the speech rate, clamped to the synthesizer's supported
// range. While playing, the in-flight utterance is cancelled and the same
// word is re-spoken at the new rate; re-speaking the interrupted word is the
// defined behavior, not a defect.
func (e *Engine) SetRate(rate float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if max := e.synth.MaxRate(); rate > max {
		rate = max
	}
	if rate < minRate {
		rate = minRate
	}
	e.rate = rate
	if e.state == Playing {
		e.cancelLocked()
		e.advanceLocked()
		return
	}
	e.notify(Event{Kind: EventStatus, Status: fmt.Sprintf("Speed set to %.2fx.", rate)})
}

// SetWordSource toggles between the processed (boilerplate-stripped) word
// list and freshly tokenized original text as the effective source for every
// page. The word index must be rebuilt; the cursor keeps its numeric value
// even though the word at that coordinate may now differ.
func (e *Engine) SetWordSource(useProcessed bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.useProcessed == useProcessed {
		return
	}
	e.useProcessed = useProcessed
	if e.doc != nil {
		e.notify(Event{Kind: EventRerender})
	}
	mode := "original text"
	if useProcessed {
		mode = "processed text (headers/footers skipped)"
	}
	e.notify(Event{Kind: EventStatus, Status: "Word source: " + mode + "."})
}

// cancelLocked supersedes the current utterance: any callback it still fires
// carries a stale generation and is dropped.
func (e *Engine) cancelLocked() {
	e.gen++
	e.outstanding = false
	if e.gapTimer != nil {
		e.gapTimer.Stop()
		e.gapTimer = nil
	}
	if e.synth != nil {
		e.synth.Cancel()
	}
}

// advanceLocked is the core loop: roll the cursor past exhausted pages,
// highlight the word at the cursor, and dispatch its utterance. Pages with
// zero effective words are skipped transparently.
func (e *Engine) advanceLocked() {
	for {
		if e.cursor.Page >= e.doc.PageCount {
			e.finishLocked()
			return
		}
		words := e.doc.EffectiveWords(e.cursor.Page, e.useProcessed)
		if e.cursor.Word >= len(words) {
			e.cursor.Page++
			e.cursor.Word = 0
			continue
		}
		word := words[e.cursor.Word]
		e.notify(Event{Kind: EventHighlight, Cursor: e.cursor, Class: HighlightSpeaking})
		e.notify(Event{Kind: EventScroll, Cursor: e.cursor})

		e.gen++
		gen := e.gen
		cur := e.cursor
		e.outstanding = true
		e.synth.Speak(word.Text, e.rate, UtteranceEvents{
			OnStart: func() { e.utteranceStarted(gen, cur, word.Text) },
			OnEnd:   func() { e.utteranceEnded(gen) },
			OnError: func(err error) { e.utteranceFailed(gen, err) },
		})
		return
	}
}

func (e *Engine) finishLocked() {
	e.state = Finished
	e.outstanding = false
	e.cursor = Cursor{}
	e.notify(Event{Kind: EventClearHighlights})
	e.notify(Event{Kind: EventFinished})
	e.notify(Event{Kind: EventStatus, Status: "Finished reading the document."})
}

func (e *Engine) utteranceStarted(gen uint64, cur Cursor, text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen || e.state != Playing {
		return
	}
	mode := "original"
	if e.useProcessed {
		mode = "processed"
	}
	e.notify(Event{Kind: EventStatus, Cursor: cur, Status: fmt.Sprintf(
		"Reading %q (page %d, word %d) at %.2fx [%s]",
		text, cur.Page+1, cur.Word+1, e.rate, mode)})
}

// utteranceEnded advances past the spoken word. A callback from a cancelled
// or superseded utterance, or one arriving while not playing, must not move
// the cursor.
func (e *Engine) utteranceEnded(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen || e.state != Playing {
		return
	}
	e.outstanding = false
	e.notify(Event{Kind: EventHighlight, Cursor: e.cursor, Class: HighlightSpoken})
	e.cursor.Word++

	if e.wordGap <= 0 {
		// No gap configured: continue on a fresh goroutine so callers of
		// the end callback are never re-entered.
		go e.resumeAfterGap(gen)
		return
	}
	e.gapTimer = time.AfterFunc(e.gapFor(e.rate), func() { e.resumeAfterGap(gen) })
}

func (e *Engine) resumeAfterGap(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen || e.state != Playing {
		return
	}
	e.advanceLocked()
}

func (e *Engine) utteranceFailed(gen uint64, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen {
		return
	}
	e.outstanding = false
	// Playback stalls here on purpose; the user recovers with Stop/Play.
	e.notify(Event{Kind: EventStatus, Status: fmt.Sprintf("Speech error: %v", err)})
}

// gapFor scales the inter-word gap inversely with rate.
func (e *Engine) gapFor(rate float64) time.Duration {
	if rate <= 0 {
		rate = defaultRate
	}
	return time.Duration(float64(e.wordGap) / rate)
}
