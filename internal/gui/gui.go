//go:build gui

// Package gui is the desktop variant of the reading client. It shows the
// word being spoken front and center, with the page image available as an
// alternate view.
package gui

import (
	"bytes"
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/voxreader/vox/internal/document"
	"github.com/voxreader/vox/internal/playback"
)

// Loader produces the document to read.
type Loader func() (*document.Document, error)

type view struct {
	engine *playback.Engine

	window    fyne.Window
	wordText  *canvas.Text
	status    *widget.Label
	pageImage *canvas.Image
	content   *fyne.Container
	imageView bool
	current   playback.Cursor
}

// Run opens the reader window and blocks until it is closed. events must be
// the channel the engine's notify callback feeds.
func Run(engine *playback.Engine, events <-chan playback.Event, loader Loader, title string) error {
	a := app.New()
	w := a.NewWindow("vox - " + title)

	v := &view{engine: engine, window: w}

	v.wordText = canvas.NewText("", color.White)
	v.wordText.TextSize = 64
	v.wordText.TextStyle.Bold = true
	v.wordText.Alignment = fyne.TextAlignCenter

	v.status = widget.NewLabel("Loading document...")
	v.status.Alignment = fyne.TextAlignCenter

	controls := widget.NewLabel("SPACE: play/pause  S: stop  ←/→: word  +/-: speed  V: view  B: skip headers  Q: quit")
	controls.Alignment = fyne.TextAlignCenter

	v.pageImage = &canvas.Image{FillMode: canvas.ImageFillContain}
	v.pageImage.Hide()

	v.content = container.NewStack(container.NewCenter(v.wordText), v.pageImage)

	w.SetContent(container.NewBorder(v.status, controls, nil, nil, v.content))
	w.Resize(fyne.NewSize(900, 600))

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case ev := <-events:
				fyne.Do(func() { v.apply(ev) })
			}
		}
	}()

	go func() {
		doc, err := loader()
		if err != nil {
			fyne.Do(func() { v.status.SetText(fmt.Sprintf("Load failed: %v", err)) })
			return
		}
		engine.SetDocument(doc)
		fyne.Do(func() {
			v.status.SetText(fmt.Sprintf("Loaded %d pages. Press SPACE to start.", doc.PageCount))
		})
	}()

	w.Canvas().SetOnTypedKey(func(key *fyne.KeyEvent) {
		switch key.Name {
		case fyne.KeySpace:
			engine.Toggle()
		case fyne.KeyLeft:
			v.seekRelative(-1)
		case fyne.KeyRight:
			v.seekRelative(1)
		case fyne.KeyS:
			engine.Stop()
		case fyne.KeyV:
			v.toggleView()
		case fyne.KeyB:
			engine.SetWordSource(!engine.WordSource())
		case fyne.KeyQ, fyne.KeyEscape:
			engine.Stop()
			close(done)
			a.Quit()
		}
	})
	w.Canvas().SetOnTypedRune(func(r rune) {
		switch r {
		case '+', '=':
			engine.SetRate(engine.Rate() + 0.25)
		case '-':
			engine.SetRate(engine.Rate() - 0.25)
		}
	})

	w.SetOnClosed(func() {
		engine.Stop()
		select {
		case <-done:
		default:
			close(done)
		}
	})

	w.ShowAndRun()
	return nil
}

// apply folds a playback event into the window. Runs on the fyne thread.
func (v *view) apply(ev playback.Event) {
	switch ev.Kind {
	case playback.EventStatus:
		v.status.SetText(ev.Status)
	case playback.EventHighlight:
		if ev.Class == playback.HighlightSpeaking || ev.Class == playback.HighlightSeekStart {
			v.current = ev.Cursor
			v.showWord(ev.Cursor)
		}
	case playback.EventScroll:
		v.current = ev.Cursor
		v.refreshImage()
	case playback.EventClearHighlights, playback.EventRerender:
		v.showWord(v.current)
	case playback.EventFinished:
		v.wordText.Text = ""
		v.wordText.Refresh()
	}
}

func (v *view) showWord(c playback.Cursor) {
	doc := v.engine.Document()
	if doc == nil {
		return
	}
	words := doc.EffectiveWords(c.Page, v.engine.WordSource())
	text := ""
	if c.Word >= 0 && c.Word < len(words) {
		text = words[c.Word].Text
	}
	v.wordText.Text = text
	v.wordText.Refresh()
	v.refreshImage()
}

// refreshImage swaps in the current page's image when image view is active.
func (v *view) refreshImage() {
	if !v.imageView {
		return
	}
	doc := v.engine.Document()
	if doc == nil || v.current.Page < 0 || v.current.Page >= len(doc.Pages) {
		return
	}
	data := doc.Pages[v.current.Page].Image
	if len(data) == 0 {
		v.pageImage.Hide()
		v.status.SetText("No image available for this page.")
		return
	}
	img := canvas.NewImageFromReader(bytes.NewReader(data), fmt.Sprintf("page-%d", v.current.Page+1))
	img.FillMode = canvas.ImageFillContain
	v.content.Objects[1] = img
	v.pageImage = img
	v.content.Refresh()
}

func (v *view) toggleView() {
	v.imageView = !v.imageView
	if v.imageView {
		v.pageImage.Show()
		v.refreshImage()
	} else {
		v.pageImage.Hide()
		v.content.Refresh()
	}
}

// seekRelative moves one word backward or forward from the current cursor.
func (v *view) seekRelative(delta int) {
	doc := v.engine.Document()
	if doc == nil {
		return
	}
	c := v.current
	c.Word += delta
	for c.Word < 0 && c.Page > 0 {
		c.Page--
		c.Word = len(doc.EffectiveWords(c.Page, v.engine.WordSource())) - 1
	}
	if c.Word < 0 {
		c.Word = 0
	}
	v.engine.Seek(c.Page, c.Word)
}
