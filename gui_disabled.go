//go:build !gui

package main

import (
	"fmt"
	"os"
)

func runGUI(*services) {
	fmt.Fprintln(os.Stderr, "snaptext: built without GUI support (rebuild with -tags gui)")
	os.Exit(1)
}

func quitGUI() {}
