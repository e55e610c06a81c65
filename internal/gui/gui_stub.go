//go:build !gui

package gui

import (
	"fmt"

	"github.com/voxreader/vox/internal/document"
	"github.com/voxreader/vox/internal/playback"
)

// Loader produces the document to read.
type Loader func() (*document.Document, error)

// Run is unavailable without the gui build tag.
func Run(engine *playback.Engine, events <-chan playback.Event, loader Loader, title string) error {
	return fmt.Errorf("this build has no GUI support; rebuild with -tags gui")
}
