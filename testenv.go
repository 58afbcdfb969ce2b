package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"snaptext/clipboard"
	"snaptext/config"
	"snaptext/log"
	"snaptext/ocr"
	"snaptext/picker"
	"snaptext/pipeline"
	"snaptext/speech"
)

const testWaitTimeout = 30 * time.Second

// sidecarOCR answers from a text file next to the image (photo.png ->
// photo.txt) and fails with the contents of photo.err. Images without a
// sidecar go to the real engine.
type sidecarOCR struct {
	fallback ocr.Recognizer
}

func (s sidecarOCR) Name() string { return "sidecar+" + s.fallback.Name() }

func (s sidecarOCR) Recognize(ctx context.Context, uri string) ([]string, error) {
	path, err := picker.PathFromURI(uri)
	if err != nil {
		return nil, err
	}
	base := strings.TrimSuffix(path, filepath.Ext(path))
	if data, err := os.ReadFile(base + ".err"); err == nil {
		return nil, &ocr.Error{URI: uri, Err: errors.New(strings.TrimSpace(string(data)))}
	}
	if data, err := os.ReadFile(base + ".txt"); err == nil {
		return ocr.SplitLines(string(data)), nil
	}
	return s.fallback.Recognize(ctx, uri)
}

// lockedWriter serializes command output with notices arriving from
// pipeline goroutines.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) printf(format string, args ...any) {
	l.mu.Lock()
	fmt.Fprintf(l.w, format, args...)
	l.mu.Unlock()
}

type testSink struct{ out *lockedWriter }

func (testSink) StateChanged(pipeline.State) {}

func (s testSink) Notice(n pipeline.Notice) {
	s.out.printf("NOTICE %s: %s\n", n.Title, n.Message)
}

func formatState(s pipeline.State) string {
	image, size := "none", "0x0"
	if s.Image != nil {
		image = s.Image.URI
		size = fmt.Sprintf("%dx%d", s.Image.Width, s.Image.Height)
	}
	text := "absent"
	if s.Text.Present() {
		text = "present"
	}
	errText := "none"
	if s.Err != nil {
		errText = strconv.Quote(s.Err.Error())
	}
	return fmt.Sprintf("STATE image=%s size=%s recognizing=%t text=%s lines=%d playback=%s width=%d height=%.0f can_copy=%t can_speak=%t err=%s",
		image, size, s.Recognizing, text, s.Text.Len(), s.Playback, s.ViewportWidth, s.DisplayHeight(), s.CanCopy(), s.CanSpeak(), errText)
}

func waitUntil(p *pipeline.Pipeline, cond func(pipeline.State) bool) bool {
	deadline := time.Now().Add(testWaitTimeout)
	for time.Now().Before(deadline) {
		if cond(p.State()) {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

// pushPath queues the image at path, or the error describing it, on f.
func pushPath(f *picker.Fake, path string) {
	res, err := picker.Single(path)
	f.Push(res, err)
}

// runTestMode drives a pipeline from line commands on in. Pickers, clipboard
// and speech are fakes; recognition uses sidecar files, then the real engine.
func runTestMode(cfg *config.Config, in io.Reader, w io.Writer) int {
	defer log.Close()
	out := &lockedWriter{w: w}

	var fallback ocr.Recognizer
	if tess, err := ocr.New(cfg.Languages()...); err != nil {
		fallback = unavailableOCR{err: err}
	} else {
		defer tess.Close()
		fallback = tess
	}
	rec := sidecarOCR{fallback: fallback}

	lib, cam := picker.NewFake(), picker.NewFake()
	cb := &clipboard.Fake{}
	sp := speech.NewFake()
	sp.AutoFinish(50 * time.Millisecond)

	p := pipeline.New(pipeline.Deps{
		Library:   lib,
		Camera:    cam,
		OCR:       rec,
		Clipboard: cb,
		Speaker:   sp,
		Profile:   cfg.Profile(),
		Sink:      testSink{out: out},
	})
	defer p.Close()
	log.SessionStart(rec.Name(), sp.Name())
	defer func() { log.SessionEnd(log.RecognizedCount()) }()

	ctx := context.Background()
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		cmd, arg, _ := strings.Cut(line, " ")
		switch cmd {
		case "":
		case "OPEN":
			pushPath(lib, arg)
			p.SelectFromLibrary(ctx)
		case "CAMERA":
			pushPath(cam, arg)
			p.CaptureFromCamera(ctx)
		case "CANCEL":
			lib.Push(picker.Cancelled, nil)
			p.SelectFromLibrary(ctx)
		case "CLEAR":
			p.SetImage(nil)
		case "WIDTH":
			n, err := strconv.Atoi(arg)
			if err != nil {
				out.printf("ERROR bad width %q\n", arg)
				continue
			}
			p.SetViewportWidth(n)
		case "WAIT":
			if !waitUntil(p, func(s pipeline.State) bool { return !s.Recognizing }) {
				out.printf("ERROR timeout waiting for recognition\n")
			}
		case "COPY":
			if err := p.Copy(); err != nil {
				out.printf("COPY_ERROR %v\n", err)
				continue
			}
			text, _ := cb.Read()
			out.printf("COPIED %s\n", strconv.Quote(text))
		case "SPEAK":
			if err := p.Speak(ctx); err != nil {
				out.printf("SPEAK_ERROR %v\n", err)
			}
		case "WAIT_SPEECH":
			if !waitUntil(p, func(s pipeline.State) bool { return s.Playback == pipeline.Idle }) {
				out.printf("ERROR timeout waiting for speech\n")
			}
		case "STATE":
			s := p.State()
			out.printf("%s\n", formatState(s))
			for _, l := range s.Text.Lines() {
				out.printf("LINE %s\n", l)
			}
			out.printf("END\n")
		case "SLEEP":
			if ms, err := strconv.Atoi(arg); err == nil {
				time.Sleep(time.Duration(ms) * time.Millisecond)
			}
		case "QUIT":
			return 0
		default:
			out.printf("ERROR unknown command %q\n", cmd)
		}
	}
	return 0
}
