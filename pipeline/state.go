package pipeline

import (
	"math"
	"strings"
)

// ImageRef identifies the current image. Zero Width or Height means the
// natural size is unknown.
type ImageRef struct {
	URI    string
	Width  int
	Height int
}

// Text is the recognition result. The zero value is absent, which is not the
// same as present with no lines.
type Text struct {
	lines   []string
	present bool
}

func Absent() Text { return Text{} }

func Lines(lines ...string) Text {
	return Text{lines: append([]string{}, lines...), present: true}
}

func (t Text) Present() bool { return t.present }

func (t Text) Lines() []string {
	if !t.present {
		return nil
	}
	return append([]string{}, t.lines...)
}

func (t Text) Len() int { return len(t.lines) }

// HasContent reports present text with at least one line.
func (t Text) HasContent() bool { return t.present && len(t.lines) > 0 }

// Joined is the text as copied or spoken: lines separated by "\n".
func (t Text) Joined() string { return strings.Join(t.lines, "\n") }

type PlaybackState int

const (
	Idle PlaybackState = iota
	Playing
)

func (s PlaybackState) String() string {
	if s == Playing {
		return "playing"
	}
	return "idle"
}

// State is an immutable snapshot published to a Sink.
type State struct {
	Image         *ImageRef
	Text          Text
	Recognizing   bool
	Playback      PlaybackState
	ViewportWidth int
	Err           error // last capability failure, nil after a new image

	version uint64
}

func (s State) CanCopy() bool { return s.Text.HasContent() }

// CanSpeak guards Speak and drives the speak affordance in every UI.
func (s State) CanSpeak() bool { return s.Playback == Idle && s.Text.HasContent() }

func (s State) DisplayHeight() float64 { return DisplayHeight(s.Image, s.ViewportWidth) }

// DisplayHeight scales the image's natural height to viewport width w.
// It is 0 when either dimension is unknown or w is negative.
func DisplayHeight(ref *ImageRef, w int) float64 {
	h, _ := Geometry(ref, w)
	return h
}

// Geometry is DisplayHeight with the reason for a zero result.
func Geometry(ref *ImageRef, w int) (float64, error) {
	if ref == nil || ref.Width <= 0 || ref.Height <= 0 || w < 0 {
		return 0, &Error{Kind: KindInvalidGeometry, Op: "geometry", Err: ErrInvalidGeometry}
	}
	return float64(w) / float64(ref.Width) * float64(ref.Height), nil
}

// Rows converts a display height in pixels to whole terminal or widget rows
// of rowHeight pixels, rounding up.
func Rows(height float64, rowHeight int) int {
	if height <= 0 || rowHeight <= 0 {
		return 0
	}
	return int(math.Ceil(height / float64(rowHeight)))
}

// Notice is a user-facing message such as the copy confirmation.
type Notice struct {
	Title   string
	Message string
	Error   bool
}

var CopiedNotice = Notice{
	Title:   "Copied to Clipboard",
	Message: "All text has been copied to the clipboard.",
}

// Sink receives state snapshots and notices. Calls may come from any
// goroutine, but snapshots arrive in order and never go backwards.
type Sink interface {
	StateChanged(State)
	Notice(Notice)
}

type nopSink struct{}

func (nopSink) StateChanged(State) {}
func (nopSink) Notice(Notice)      {}
