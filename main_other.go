//go:build !linux

package main

import "runtime"

// Cocoa and Win32 windowing must stay on the thread that started the process.
func init() {
	runtime.LockOSThread()
}
