// Package pipeline coordinates image selection, text recognition and the
// copy and speak actions, and publishes the resulting state.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"snaptext/log"
	"snaptext/picker"
	"snaptext/speech"
)

type Library interface {
	PickFromLibrary(ctx context.Context, opts picker.Options) (picker.Result, error)
}

type Camera interface {
	Capture(ctx context.Context, opts picker.Options) (picker.Result, error)
}

type Recognizer interface {
	Recognize(ctx context.Context, uri string) ([]string, error)
}

type Clipboard interface {
	SetText(text string) error
}

type Speaker interface {
	Speak(ctx context.Context, text string, p speech.Profile) error
	OnFinished(fn func()) (unsubscribe func())
}

// Beeper gives audible feedback; beep.Player satisfies it.
type Beeper interface {
	Copied()
	Failed()
}

type Deps struct {
	Library   Library
	Camera    Camera
	OCR       Recognizer
	Clipboard Clipboard
	Speaker   Speaker
	Profile   speech.Profile
	Sink      Sink
	Beeper    Beeper
}

type Pipeline struct {
	deps Deps
	ocr  string

	ctx  context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	mu          sync.Mutex
	state       State
	closed      bool
	gen         uint64 // bumped for every recognition request
	cancelRec   context.CancelFunc
	recFailed   bool // recognition of state.Image failed
	cancelSpeak context.CancelFunc

	pubMu     sync.Mutex
	published uint64

	unsubscribe func()
	closeOnce   sync.Once
}

func New(d Deps) *Pipeline {
	if d.Sink == nil {
		d.Sink = nopSink{}
	}
	ctx, stop := context.WithCancel(context.Background())
	p := &Pipeline{
		deps: d,
		ocr:  engineName(d.OCR),
		ctx:  ctx,
		stop: stop,
	}
	if d.Speaker != nil {
		p.unsubscribe = d.Speaker.OnFinished(p.onFinished)
	}
	return p
}

func engineName(v any) string {
	if n, ok := v.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "ocr"
}

func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// snapshotLocked stamps and returns the current state. p.mu must be held.
func (p *Pipeline) snapshotLocked() State {
	p.state.version++
	return p.state
}

// publish forwards s unless a newer snapshot already went out.
func (p *Pipeline) publish(s State) {
	p.pubMu.Lock()
	defer p.pubMu.Unlock()
	if s.version <= p.published {
		return
	}
	p.published = s.version
	p.deps.Sink.StateChanged(s)
}

func (p *Pipeline) SelectFromLibrary(ctx context.Context) error {
	if p.deps.Library == nil {
		return p.fail("library", ErrNoSource)
	}
	return p.selectFrom(ctx, "library", p.deps.Library.PickFromLibrary)
}

func (p *Pipeline) CaptureFromCamera(ctx context.Context) error {
	if p.deps.Camera == nil {
		return p.fail("camera", ErrNoSource)
	}
	return p.selectFrom(ctx, "camera", p.deps.Camera.Capture)
}

func (p *Pipeline) selectFrom(ctx context.Context, op string, pick func(context.Context, picker.Options) (picker.Result, error)) error {
	if p.isClosed() {
		return ErrClosed
	}
	res, err := pick(ctx, picker.PhotoOptions)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info(op + "_cancelled")
			return nil
		}
		return p.fail(op, err)
	}
	if res.Cancelled || len(res.Assets) == 0 {
		log.Info(op + "_cancelled")
		return nil
	}
	a := res.Assets[0]
	return p.SetImage(&ImageRef{URI: a.URI, Width: a.Width, Height: a.Height})
}

// SetImage replaces the current image and starts recognition for it. A nil
// ref clears the text without calling OCR. Setting the image that is
// already current is a no-op unless its recognition failed.
func (p *Pipeline) SetImage(ref *ImageRef) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}

	if ref == nil {
		p.gen++
		p.cancelRecLocked()
		p.state.Image = nil
		p.state.Text = Absent()
		p.state.Recognizing = false
		p.state.Err = nil
		p.recFailed = false
		snap := p.snapshotLocked()
		p.mu.Unlock()
		p.publish(snap)
		return nil
	}

	r := *ref
	if cur := p.state.Image; cur != nil && *cur == r && !p.recFailed {
		p.mu.Unlock()
		return nil
	}

	p.gen++
	gen := p.gen
	p.cancelRecLocked()
	ctx, cancel := context.WithCancel(p.ctx)
	p.cancelRec = cancel
	p.state.Image = &r
	p.state.Text = Absent()
	p.state.Recognizing = true
	p.state.Err = nil
	p.recFailed = false
	snap := p.snapshotLocked()
	p.wg.Add(1)
	p.mu.Unlock()

	p.publish(snap)
	go p.recognize(ctx, cancel, gen, r)
	return nil
}

func (p *Pipeline) cancelRecLocked() {
	if p.cancelRec != nil {
		p.cancelRec()
		p.cancelRec = nil
	}
}

func (p *Pipeline) recognize(ctx context.Context, cancel context.CancelFunc, gen uint64, ref ImageRef) {
	defer p.wg.Done()
	defer cancel()

	start := time.Now()
	var lines []string
	err := errNoOCR
	if p.deps.OCR != nil {
		lines, err = p.deps.OCR.Recognize(ctx, ref.URI)
	}
	elapsed := time.Since(start)

	p.mu.Lock()
	if gen != p.gen || p.closed {
		p.mu.Unlock()
		log.Recognition(p.ocr, elapsed, len(lines), true)
		return
	}
	p.cancelRec = nil
	p.state.Recognizing = false
	var perr *Error
	if err != nil {
		perr = &Error{Kind: KindCapability, Op: "recognize", Err: err}
		p.state.Text = Absent()
		p.state.Err = perr
		p.recFailed = true
	} else {
		p.state.Text = Lines(lines...)
	}
	snap := p.snapshotLocked()
	p.mu.Unlock()

	p.publish(snap)
	if perr != nil {
		log.Capability(perr.Op, perr.Kind.String(), err)
		p.beepFailed()
		return
	}
	log.Recognition(p.ocr, elapsed, len(lines), false)
	log.RecognizedText(ref.URI, lines)
}

// SetViewportWidth records the width display height is derived from.
func (p *Pipeline) SetViewportWidth(w int) {
	p.mu.Lock()
	if p.closed || p.state.ViewportWidth == w {
		p.mu.Unlock()
		return
	}
	p.state.ViewportWidth = w
	snap := p.snapshotLocked()
	p.mu.Unlock()
	p.publish(snap)
}

// Copy puts the recognized lines on the clipboard.
func (p *Pipeline) Copy() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	if !p.state.CanCopy() || p.deps.Clipboard == nil {
		p.mu.Unlock()
		return ErrUnavailable
	}
	text := p.state.Text.Joined()
	p.mu.Unlock()

	if err := p.deps.Clipboard.SetText(text); err != nil {
		return p.fail("copy", err)
	}
	log.Info("copied_to_clipboard")
	p.deps.Sink.Notice(CopiedNotice)
	if p.deps.Beeper != nil {
		p.deps.Beeper.Copied()
	}
	return nil
}

// Speak reads the recognized lines aloud. ctx bounds the utterance; Close
// also stops it.
func (p *Pipeline) Speak(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	if !p.state.CanSpeak() || p.deps.Speaker == nil {
		p.mu.Unlock()
		return ErrUnavailable
	}
	text := p.state.Text.Joined()
	sctx, cancel := context.WithCancel(ctx)
	stopAfter := context.AfterFunc(p.ctx, cancel)
	p.cancelSpeak = func() {
		stopAfter()
		cancel()
	}
	p.state.Playback = Playing
	snap := p.snapshotLocked()
	p.wg.Add(1)
	p.mu.Unlock()

	p.publish(snap)
	go func() {
		defer p.wg.Done()
		if err := p.deps.Speaker.Speak(sctx, text, p.deps.Profile); err != nil {
			p.fail("speak", err)
		}
	}()
	return nil
}

func (p *Pipeline) onFinished() {
	p.mu.Lock()
	if p.state.Playback != Playing {
		p.mu.Unlock()
		return
	}
	p.state.Playback = Idle
	p.releaseSpeakLocked()
	snap := p.snapshotLocked()
	p.mu.Unlock()
	p.publish(snap)
}

func (p *Pipeline) releaseSpeakLocked() {
	if p.cancelSpeak != nil {
		p.cancelSpeak()
		p.cancelSpeak = nil
	}
}

// fail records a capability failure, resets playback if speech failed, and
// tells the user.
func (p *Pipeline) fail(op string, err error) error {
	kind := KindCapability
	if errors.Is(err, context.Canceled) {
		kind = KindCancelled
	}
	e := &Error{Kind: kind, Op: op, Err: err}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return e
	}
	if op == "speak" {
		p.state.Playback = Idle
		p.releaseSpeakLocked()
	}
	p.state.Err = e
	snap := p.snapshotLocked()
	p.mu.Unlock()

	p.publish(snap)
	log.Capability(op, kind.String(), err)
	if kind == KindCapability {
		p.deps.Sink.Notice(Notice{Title: "Error", Message: e.Error(), Error: true})
		p.beepFailed()
	}
	return e
}

func (p *Pipeline) beepFailed() {
	if p.deps.Beeper != nil {
		p.deps.Beeper.Failed()
	}
}

func (p *Pipeline) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Close cancels recognition and playback, waits for pipeline goroutines and
// drops the finished subscription. It is safe to call more than once.
func (p *Pipeline) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.gen++
		p.cancelRecLocked()
		p.releaseSpeakLocked()
		p.mu.Unlock()

		p.stop()
		p.wg.Wait()
		if p.unsubscribe != nil {
			p.unsubscribe()
		}
	})
}
