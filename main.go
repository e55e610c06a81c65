package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/voxreader/vox/cmd"
)

func main() {
	root := cmd.NewRootCmd()

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(cmd.Version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}
