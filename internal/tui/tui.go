// Package tui is the interactive terminal client: a viewport over the
// rendered document with word-level highlighting driven by playback events.
package tui

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/voxreader/vox/internal/document"
	"github.com/voxreader/vox/internal/playback"
	"github.com/voxreader/vox/internal/render"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 1)

	pageMarkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Italic(true)

	seekStartStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#AF5FFF")).
			Foreground(lipgloss.Color("#000000"))

	speakingStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#FFD700")).
			Foreground(lipgloss.Color("#000000")).
			Bold(true)

	spokenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#585858"))

	selectedStyle = lipgloss.NewStyle().
			Underline(true)
)

// EngineEventMsg wraps a playback event for the bubbletea loop.
type EngineEventMsg struct {
	Event playback.Event
}

type docLoadedMsg struct {
	doc *document.Document
}

type loadFailedMsg struct {
	err error
}

// Relay forwards playback events into a running program. The engine is
// constructed before the program exists, so the target is set late.
//
// Program.Send blocks until the program's event loop picks the message up,
// and engine methods are themselves called from Update on that same loop,
// so Notify must never call Send directly. It queues the event instead; a
// dedicated goroutine does the blocking delivery.
type Relay struct {
	p  atomic.Pointer[tea.Program]
	ch chan playback.Event
}

// NewRelay creates a relay and starts its delivery goroutine.
func NewRelay() *Relay {
	r := &Relay{ch: make(chan playback.Event, 64)}
	go r.deliver()
	return r
}

// Notify is the engine's notify callback. It returns without waiting for
// the program to process the event.
func (r *Relay) Notify(ev playback.Event) {
	r.ch <- ev
}

// Attach points the relay at a program. Events that arrive with no program
// attached are dropped.
func (r *Relay) Attach(p *tea.Program) {
	r.p.Store(p)
}

func (r *Relay) deliver() {
	for ev := range r.ch {
		if p := r.p.Load(); p != nil {
			p.Send(EngineEventMsg{Event: ev})
		}
	}
}

// Loader produces the document to read, typically a closure over either the
// upload client or local ingestion.
type Loader func() (*document.Document, error)

// Model is the bubbletea model for the reading view.
type Model struct {
	engine *playback.Engine
	loader Loader
	title  string

	opts     render.Options
	layout   *render.Layout
	screen   *screen
	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model
	keys     keyMap

	highlights map[playback.Cursor]playback.Highlight
	selected   playback.Cursor
	status     string
	loading    bool
	ready      bool
	width      int
	height     int
	quitting   bool
}

// New creates the reading model. The engine's events must be forwarded to
// the program as EngineEventMsg values (see Relay).
func New(engine *playback.Engine, loader Loader, title string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		engine:     engine,
		loader:     loader,
		title:      title,
		opts:       render.Options{Mode: render.ViewText, UseProcessed: true},
		spinner:    sp,
		help:       help.New(),
		keys:       defaultKeyMap(),
		highlights: make(map[playback.Cursor]playback.Highlight),
		status:     "Loading document...",
		loading:    true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd())
}

func (m Model) loadCmd() tea.Cmd {
	return func() tea.Msg {
		doc, err := m.loader()
		if err != nil {
			return loadFailedMsg{err: err}
		}
		return docLoadedMsg{doc: doc}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := msg.Height - m.chromeHeight()
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}
		m.rebuild()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			line := msg.Y - 1 + m.viewport.YOffset
			if m.screen != nil {
				if c, ok := m.screen.wordAt(line, msg.X); ok {
					m.selected = c
					m.engine.Seek(c.Page, c.Word)
				}
			}
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case docLoadedMsg:
		m.loading = false
		m.engine.SetDocument(msg.doc)
		m.status = fmt.Sprintf("Loaded %d pages (%d header, %d footer patterns detected).",
			msg.doc.PageCount, len(msg.doc.HeaderPatterns), len(msg.doc.FooterPatterns))
		return m, nil

	case loadFailedMsg:
		m.loading = false
		m.status = fmt.Sprintf("Load failed: %v", msg.err)
		return m, nil

	case EngineEventMsg:
		m.applyEvent(msg.Event)
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.engine.Stop()
		return *m, tea.Quit

	case key.Matches(msg, m.keys.PlayPause):
		m.engine.Toggle()
		return *m, nil

	case key.Matches(msg, m.keys.Stop):
		m.engine.Stop()
		return *m, nil

	case key.Matches(msg, m.keys.Activate):
		if m.layout != nil && m.layout.IndexSize() > 0 {
			m.engine.Seek(m.selected.Page, m.selected.Word)
		}
		return *m, nil

	case key.Matches(msg, m.keys.PrevWord):
		m.moveSelection(-1)
		return *m, nil

	case key.Matches(msg, m.keys.NextWord):
		m.moveSelection(1)
		return *m, nil

	case key.Matches(msg, m.keys.SpeedUp):
		m.engine.SetRate(m.engine.Rate() + 0.25)
		return *m, nil

	case key.Matches(msg, m.keys.SpeedDown):
		m.engine.SetRate(m.engine.Rate() - 0.25)
		return *m, nil

	case key.Matches(msg, m.keys.ViewToggle):
		if m.opts.Mode == render.ViewText {
			m.opts.Mode = render.ViewImage
			m.status = "Image view."
		} else {
			m.opts.Mode = render.ViewText
			m.status = "Text view."
		}
		m.rebuild()
		return *m, nil

	case key.Matches(msg, m.keys.SkipToggle):
		m.engine.SetWordSource(!m.engine.WordSource())
		return *m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return *m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return *m, cmd
}

// applyEvent folds one playback event into view state.
func (m *Model) applyEvent(ev playback.Event) {
	switch ev.Kind {
	case playback.EventStatus:
		m.status = ev.Status

	case playback.EventClearHighlights:
		m.highlights = make(map[playback.Cursor]playback.Highlight)
		m.refresh()

	case playback.EventHighlight:
		// Seek-start and speaking are single-word classes; spoken
		// accumulates.
		if ev.Class != playback.HighlightSpoken {
			for c, class := range m.highlights {
				if class == ev.Class {
					delete(m.highlights, c)
				}
			}
		}
		m.highlights[ev.Cursor] = ev.Class
		m.selected = ev.Cursor
		m.refresh()

	case playback.EventScroll:
		m.scrollTo(ev.Cursor)

	case playback.EventRerender:
		m.opts.UseProcessed = m.engine.WordSource()
		m.rebuild()

	case playback.EventFinished:
		m.refresh()
	}
}

// rebuild re-renders the layout and word index from the current document.
func (m *Model) rebuild() {
	doc := m.engine.Document()
	if doc == nil || !m.ready {
		return
	}
	m.layout = render.Render(doc, m.opts)
	m.screen = buildScreen(m.layout, m.viewport.Width)
	m.clampSelection()
	m.refresh()
}

// refresh restyles the current screen into the viewport.
func (m *Model) refresh() {
	if m.screen == nil || !m.ready {
		return
	}
	var sb strings.Builder
	for i, line := range m.screen.lines {
		if i > 0 {
			sb.WriteString("\n")
		}
		for _, seg := range line {
			sb.WriteString(m.styleSegment(seg))
		}
	}
	m.viewport.SetContent(sb.String())
}

func (m *Model) styleSegment(seg segment) string {
	if seg.cursor == nil {
		if strings.HasPrefix(seg.text, "· page ") {
			return pageMarkStyle.Render(seg.text)
		}
		return seg.text
	}
	style := lipgloss.NewStyle()
	switch m.highlights[*seg.cursor] {
	case playback.HighlightSeekStart:
		style = seekStartStyle
	case playback.HighlightSpeaking:
		style = speakingStyle
	case playback.HighlightSpoken:
		style = spokenStyle
	}
	if *seg.cursor == m.selected {
		style = style.Underline(true)
	}
	return style.Render(seg.text)
}

// scrollTo keeps the word at the cursor visible, roughly centered.
func (m *Model) scrollTo(c playback.Cursor) {
	if m.screen == nil {
		return
	}
	line, ok := m.screen.lineOf(c)
	if !ok {
		return
	}
	offset := line - m.viewport.Height/2
	if offset < 0 {
		offset = 0
	}
	m.viewport.SetYOffset(offset)
}

// moveSelection steps the keyboard selection across the word index in
// page-major order.
func (m *Model) moveSelection(delta int) {
	if m.layout == nil || m.layout.IndexSize() == 0 {
		return
	}
	doc := m.engine.Document()
	if doc == nil {
		return
	}
	sel := m.selected
	sel.Word += delta
	for {
		count := m.layout.WordCount(sel.Page)
		if sel.Word >= 0 && sel.Word < count {
			break
		}
		if sel.Word < 0 {
			if sel.Page == 0 {
				return
			}
			sel.Page--
			sel.Word = m.layout.WordCount(sel.Page) - 1
			if sel.Word >= 0 {
				break
			}
			sel.Word = -1
			continue
		}
		if sel.Page >= doc.PageCount-1 {
			return
		}
		sel.Page++
		sel.Word = 0
		if m.layout.WordCount(sel.Page) > 0 {
			break
		}
	}
	m.selected = sel
	m.refresh()
	m.scrollTo(sel)
}

// clampSelection re-resolves the selection after a rebuild; the numeric
// coordinate survives, degrading to the page's last word when out of range.
func (m *Model) clampSelection() {
	if m.layout == nil {
		return
	}
	count := m.layout.WordCount(m.selected.Page)
	if count == 0 {
		m.selected = playback.Cursor{}
		return
	}
	if m.selected.Word >= count {
		m.selected.Word = count - 1
	}
}

func (m *Model) chromeHeight() int {
	// Title line plus status line plus help.
	helpLines := 1
	if m.help.ShowAll {
		helpLines = 3
	}
	return 2 + helpLines
}

func (m *Model) resize() {
	if !m.ready {
		return
	}
	vpHeight := m.height - m.chromeHeight()
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.viewport.Height = vpHeight
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("vox · " + m.title))
	sb.WriteString("\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")

	status := m.status
	if m.loading {
		status = m.spinner.View() + " " + status
	} else {
		status = fmt.Sprintf("%s | %.2fx | %s", m.engine.State(), m.engine.Rate(), status)
	}
	sb.WriteString(statusStyle.Render(status))
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}
