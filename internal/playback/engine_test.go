package playback

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/voxreader/vox/internal/document"
)

// fakeSynth records dispatched utterances and lets tests drive the lifecycle
// callbacks by hand, mirroring the asynchronous speech capability.
type fakeSynth struct {
	mu      sync.Mutex
	speakCh chan string
	ev      UtteranceEvents
	spoken  []string
	rates   []float64
	pauses  int
	resumes int
	cancels int
}

func newFakeSynth() *fakeSynth {
	return &fakeSynth{speakCh: make(chan string, 64)}
}

func (f *fakeSynth) Speak(text string, rate float64, ev UtteranceEvents) {
	f.mu.Lock()
	f.spoken = append(f.spoken, text)
	f.rates = append(f.rates, rate)
	f.ev = ev
	f.mu.Unlock()
	f.speakCh <- text
}

func (f *fakeSynth) Pause()  { f.mu.Lock(); f.pauses++; f.mu.Unlock() }
func (f *fakeSynth) Resume() { f.mu.Lock(); f.resumes++; f.mu.Unlock() }
func (f *fakeSynth) Cancel() { f.mu.Lock(); f.cancels++; f.mu.Unlock() }

func (f *fakeSynth) MaxRate() float64 { return 4.0 }

func (f *fakeSynth) events() UtteranceEvents {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ev
}

func (f *fakeSynth) spokenWords() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.spoken...)
}

func waitSpeak(t *testing.T, f *fakeSynth) string {
	t.Helper()
	select {
	case text := <-f.speakCh:
		return text
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for utterance dispatch")
		return ""
	}
}

func expectNoSpeak(t *testing.T, f *fakeSynth) {
	t.Helper()
	select {
	case text := <-f.speakCh:
		t.Fatalf("unexpected utterance dispatched: %q", text)
	case <-time.After(50 * time.Millisecond):
	}
}

// recorder collects engine events for assertions.
type recorder struct {
	mu       sync.Mutex
	events   []Event
	finished chan struct{}
}

func newRecorder() *recorder {
	return &recorder{finished: make(chan struct{}, 1)}
}

func (r *recorder) sink(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	if ev.Kind == EventFinished {
		select {
		case r.finished <- struct{}{}:
		default:
		}
	}
}

func (r *recorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *recorder) lastStatus() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Kind == EventStatus {
			return r.events[i].Status
		}
	}
	return ""
}

func (r *recorder) waitFinished(t *testing.T) {
	t.Helper()
	select {
	case <-r.finished:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for finish")
	}
}

func pageFromText(number int, text string) document.Page {
	return document.Page{
		Number:        number,
		OriginalText:  text,
		ProcessedText: text,
		Words:         document.Tokenize(text),
	}
}

func twoPageDoc() *document.Document {
	return &document.Document{
		PageCount: 2,
		Pages: []document.Page{
			pageFromText(1, "The cat sat"),
			pageFromText(2, "on mat"),
		},
	}
}

func newTestEngine(t *testing.T) (*Engine, *fakeSynth, *recorder) {
	t.Helper()
	synth := newFakeSynth()
	rec := newRecorder()
	return NewEngine(synth, rec.sink, WithWordGap(0)), synth, rec
}

// speakThrough completes utterances as they arrive until the document ends.
func speakThrough(t *testing.T, synth *fakeSynth, n int) []string {
	t.Helper()
	var order []string
	for i := 0; i < n; i++ {
		order = append(order, waitSpeak(t, synth))
		ev := synth.events()
		ev.OnStart()
		ev.OnEnd()
	}
	return order
}

func TestPlayVisitsEveryWordInOrder(t *testing.T) {
	engine, synth, rec := newTestEngine(t)
	engine.SetDocument(twoPageDoc())

	engine.Play()
	order := speakThrough(t, synth, 5)
	rec.waitFinished(t)

	want := []string{"The", "cat", "sat", "on", "mat"}
	if strings.Join(order, " ") != strings.Join(want, " ") {
		t.Errorf("speak order = %v, want %v", order, want)
	}
	if engine.State() != Finished {
		t.Errorf("state = %v, want Finished", engine.State())
	}
	if got := rec.lastStatus(); got != "Finished reading the document." {
		t.Errorf("final status = %q", got)
	}
}

func TestEmptyPageSkippedTransparently(t *testing.T) {
	engine, synth, rec := newTestEngine(t)
	engine.SetDocument(&document.Document{
		PageCount: 3,
		Pages: []document.Page{
			pageFromText(1, "one"),
			pageFromText(2, "   "),
			pageFromText(3, "two"),
		},
	})

	engine.Play()
	order := speakThrough(t, synth, 2)
	rec.waitFinished(t)

	if strings.Join(order, " ") != "one two" {
		t.Errorf("speak order = %v, want [one two]", order)
	}
}

func TestSeekSetsCursorAndPlays(t *testing.T) {
	engine, synth, rec := newTestEngine(t)
	engine.SetDocument(twoPageDoc())

	engine.Seek(0, 1) // "cat" while idle
	text := waitSpeak(t, synth)
	if text != "cat" {
		t.Errorf("seek spoke %q, want %q", text, "cat")
	}
	if got := engine.Cursor(); got != (Cursor{Page: 0, Word: 1}) {
		t.Errorf("cursor = %+v, want (0,1)", got)
	}
	if engine.State() != Playing {
		t.Errorf("state = %v, want Playing", engine.State())
	}

	// Highlight order on the target word: seek-start, then speaking.
	var classes []Highlight
	for _, ev := range rec.all() {
		if ev.Kind == EventHighlight && ev.Cursor == (Cursor{Page: 0, Word: 1}) {
			classes = append(classes, ev.Class)
		}
	}
	if len(classes) < 2 || classes[0] != HighlightSeekStart || classes[1] != HighlightSpeaking {
		t.Errorf("highlight classes on seek target = %v, want [seek-start speaking ...]", classes)
	}
}

func TestSeekPastEndOfPageRollsToNextPage(t *testing.T) {
	engine, synth, _ := newTestEngine(t)
	engine.SetDocument(twoPageDoc())

	engine.Seek(0, 99)
	if text := waitSpeak(t, synth); text != "on" {
		t.Errorf("spoke %q, want %q (first word of next page)", text, "on")
	}
	if got := engine.Cursor(); got != (Cursor{Page: 1, Word: 0}) {
		t.Errorf("cursor = %+v, want (1,0)", got)
	}
}

func TestSeekClampsNegativeCoordinates(t *testing.T) {
	engine, synth, _ := newTestEngine(t)
	engine.SetDocument(twoPageDoc())

	engine.Seek(-3, -1)
	if text := waitSpeak(t, synth); text != "The" {
		t.Errorf("spoke %q, want %q (first word of the document)", text, "The")
	}
	if got := engine.Cursor(); got != (Cursor{Page: 0, Word: 0}) {
		t.Errorf("cursor = %+v, want (0,0)", got)
	}
}

func TestPauseResumeContinuesSameWord(t *testing.T) {
	engine, synth, _ := newTestEngine(t)
	engine.SetDocument(twoPageDoc())

	engine.Play()
	if text := waitSpeak(t, synth); text != "The" {
		t.Fatalf("spoke %q, want The", text)
	}
	ev := synth.events()
	ev.OnStart()

	engine.Pause()
	if engine.State() != Paused {
		t.Fatalf("state = %v, want Paused", engine.State())
	}
	if synth.pauses != 1 {
		t.Errorf("synth pauses = %d, want 1", synth.pauses)
	}

	engine.Play()
	if engine.State() != Playing {
		t.Fatalf("state = %v, want Playing", engine.State())
	}
	if synth.resumes != 1 {
		t.Errorf("synth resumes = %d, want 1", synth.resumes)
	}
	// Resuming must not dispatch a new utterance; the paused one continues.
	expectNoSpeak(t, synth)

	ev.OnEnd()
	if text := waitSpeak(t, synth); text != "cat" {
		t.Errorf("after resume+end spoke %q, want cat (no word skipped or repeated)", text)
	}
}

func TestPauseIsNoopWithoutActiveUtterance(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	engine.SetDocument(twoPageDoc())

	engine.Pause()
	if engine.State() != Idle {
		t.Errorf("state = %v, want Idle", engine.State())
	}
}

func TestStopKeepsCursorAndPlayResumes(t *testing.T) {
	engine, synth, _ := newTestEngine(t)
	engine.SetDocument(twoPageDoc())

	engine.Play()
	waitSpeak(t, synth) // "The"
	ev := synth.events()
	ev.OnStart()
	ev.OnEnd()
	waitSpeak(t, synth) // "cat"

	engine.Stop()
	if engine.State() != Idle {
		t.Fatalf("state = %v, want Idle", engine.State())
	}
	if got := engine.Cursor(); got != (Cursor{Page: 0, Word: 1}) {
		t.Errorf("cursor after stop = %+v, want (0,1)", got)
	}

	engine.Play()
	if text := waitSpeak(t, synth); text != "cat" {
		t.Errorf("resumed with %q, want cat", text)
	}
}

func TestSetRateWhilePlayingRespeaksCurrentWord(t *testing.T) {
	engine, synth, _ := newTestEngine(t)
	engine.SetDocument(twoPageDoc())

	engine.Play()
	waitSpeak(t, synth) // "The"

	engine.SetRate(2.0)
	if text := waitSpeak(t, synth); text != "The" {
		t.Errorf("after rate change spoke %q, want The (same word, not advanced)", text)
	}
	if got := engine.Cursor(); got != (Cursor{Page: 0, Word: 0}) {
		t.Errorf("cursor = %+v, want (0,0)", got)
	}
	synth.mu.Lock()
	lastRate := synth.rates[len(synth.rates)-1]
	synth.mu.Unlock()
	if lastRate != 2.0 {
		t.Errorf("re-spoken rate = %v, want 2.0", lastRate)
	}
}

func TestSetRateClampsToSynthesizerMax(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	engine.SetRate(99)
	if got := engine.Rate(); got != 4.0 {
		t.Errorf("rate = %v, want clamp to 4.0", got)
	}
	engine.SetRate(0)
	if got := engine.Rate(); got != minRate {
		t.Errorf("rate = %v, want clamp to %v", got, minRate)
	}
}

func TestStaleEndCallbackAfterStopIsIgnored(t *testing.T) {
	engine, synth, rec := newTestEngine(t)
	engine.SetDocument(twoPageDoc())

	engine.Play()
	waitSpeak(t, synth)
	ev := synth.events()

	engine.Stop()
	before := engine.Cursor()
	highlightsBefore := len(rec.all())

	// The cancelled utterance's completion arrives late.
	ev.OnEnd()
	expectNoSpeak(t, synth)

	if got := engine.Cursor(); got != before {
		t.Errorf("stale end moved cursor: %+v -> %+v", before, got)
	}
	for _, e := range rec.all()[highlightsBefore:] {
		if e.Kind == EventHighlight {
			t.Errorf("stale end produced highlight event %+v", e)
		}
	}
}

func TestSpeechErrorStallsUntilStopPlay(t *testing.T) {
	engine, synth, rec := newTestEngine(t)
	engine.SetDocument(twoPageDoc())

	engine.Play()
	waitSpeak(t, synth)
	ev := synth.events()
	ev.OnError(errors.New("device busy"))

	// No advance: the engine stalls awaiting user intervention.
	expectNoSpeak(t, synth)
	if got := rec.lastStatus(); !strings.Contains(got, "Speech error") {
		t.Errorf("status = %q, want speech error notice", got)
	}
	if got := engine.Cursor(); got != (Cursor{Page: 0, Word: 0}) {
		t.Errorf("cursor = %+v, want unchanged (0,0)", got)
	}

	engine.Stop()
	engine.Play()
	if text := waitSpeak(t, synth); text != "The" {
		t.Errorf("recovered with %q, want The", text)
	}
}

func TestSetWordSourcePreservesNumericCursor(t *testing.T) {
	engine, synth, rec := newTestEngine(t)
	// Processed page has 3 words; original has 5 (header+footer retained).
	doc := &document.Document{
		PageCount: 1,
		Pages: []document.Page{
			{
				Number:             1,
				OriginalText:       "Header The cat sat Footer",
				ProcessedText:      "The cat sat",
				Words:              document.Tokenize("The cat sat"),
				BoilerplateRemoved: true,
			},
		},
	}
	engine.SetDocument(doc)
	engine.Seek(0, 1)
	waitSpeak(t, synth) // "cat" from processed list

	rerendersBefore := 0
	for _, ev := range rec.all() {
		if ev.Kind == EventRerender {
			rerendersBefore++
		}
	}

	engine.SetWordSource(false)

	rerenders := 0
	for _, ev := range rec.all() {
		if ev.Kind == EventRerender {
			rerenders++
		}
	}
	if rerenders != rerendersBefore+1 {
		t.Errorf("rerender events = %d, want %d", rerenders, rerendersBefore+1)
	}
	if got := engine.Cursor(); got != (Cursor{Page: 0, Word: 1}) {
		t.Errorf("cursor = %+v, want numeric value preserved (0,1)", got)
	}
	if len(doc.EffectiveWords(0, false)) != 5 {
		t.Fatalf("original word list length = %d, want 5", len(doc.EffectiveWords(0, false)))
	}
}

func TestPlayWithoutDocumentIsNoop(t *testing.T) {
	engine, synth, rec := newTestEngine(t)
	engine.Play()
	expectNoSpeak(t, synth)
	if engine.State() != Idle {
		t.Errorf("state = %v, want Idle", engine.State())
	}
	if got := rec.lastStatus(); got != "No document loaded." {
		t.Errorf("status = %q", got)
	}
}

func TestFinishedPlayRestartsFromTop(t *testing.T) {
	engine, synth, rec := newTestEngine(t)
	engine.SetDocument(&document.Document{
		PageCount: 1,
		Pages:     []document.Page{pageFromText(1, "solo")},
	})

	engine.Play()
	speakThrough(t, synth, 1)
	rec.waitFinished(t)

	engine.Play()
	if text := waitSpeak(t, synth); text != "solo" {
		t.Errorf("replay spoke %q, want solo", text)
	}
}

func TestGapScalesInverselyWithRate(t *testing.T) {
	e := NewEngine(newFakeSynth(), nil)
	tests := []struct {
		rate float64
		want time.Duration
	}{
		{1.0, baseWordGap},
		{2.0, baseWordGap / 2},
		{0.5, baseWordGap * 2},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.1fx", tt.rate), func(t *testing.T) {
			if got := e.gapFor(tt.rate); got != tt.want {
				t.Errorf("gapFor(%v) = %v, want %v", tt.rate, got, tt.want)
			}
		})
	}
}
