//go:build gui

package main

import (
	"fmt"
	"os"

	"snaptext/gui"
	"snaptext/pipeline"
)

var guiApp *gui.App

func runGUI(s *services) {
	guiApp = gui.NewApp(s.cfg.Dir)
	activePipeline = pipeline.New(s.deps(guiApp, guiApp))
	guiApp.Bind(activePipeline)
	if err := gui.Run(guiApp); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}

func quitGUI() {
	if guiApp != nil {
		guiApp.Quit()
	}
}
