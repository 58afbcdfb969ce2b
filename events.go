package main

import (
	tea "github.com/charmbracelet/bubbletea"

	"snaptext/pipeline"
)

// StateMsg carries a pipeline snapshot into the TUI.
type StateMsg struct{ State pipeline.State }

// NoticeMsg carries a user-facing notice into the TUI.
type NoticeMsg struct{ Notice pipeline.Notice }

// programSink forwards pipeline output to the running TUI in order. Sends go
// through a queue because pipeline calls also run while the TUI has handed
// the terminal to the library picker and is not reading messages.
type programSink struct {
	queue chan tea.Msg
}

func newProgramSink() *programSink {
	s := &programSink{queue: make(chan tea.Msg, 64)}
	go func() {
		for msg := range s.queue {
			tuiSend(msg)
		}
	}()
	return s
}

func (s *programSink) StateChanged(st pipeline.State) { s.queue <- StateMsg{State: st} }
func (s *programSink) Notice(n pipeline.Notice)       { s.queue <- NoticeMsg{Notice: n} }
