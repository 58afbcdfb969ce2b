package speech

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"snaptext/audio"
)

func testClip() audio.Clip {
	c := audio.Clip{SampleRate: 22050, Channels: 1, Samples: make([]int16, 2205)}
	for i := range c.Samples {
		c.Samples[i] = int16(i % 400 * 50)
	}
	return c
}

func waitFinished(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for finished notification")
	}
}

func TestNotifier(t *testing.T) {
	var n Notifier
	var a, b atomic.Int32
	unsubA := n.Subscribe(func() { a.Add(1) })
	n.Subscribe(func() { b.Add(1) })

	n.Emit()
	unsubA()
	unsubA()
	n.Emit()

	if a.Load() != 1 || b.Load() != 2 {
		t.Errorf("a=%d b=%d, want 1 and 2", a.Load(), b.Load())
	}
	if n.Subscribers() != 1 {
		t.Errorf("Subscribers = %d, want 1", n.Subscribers())
	}
}

func TestNewErrors(t *testing.T) {
	p := audio.NewFakePlayer()
	if _, err := New("robot", "", p); !errors.Is(err, ErrNoEngine) {
		t.Errorf("unknown engine err = %v", err)
	}
	if _, err := New("openai", "", p); !errors.Is(err, ErrNoEngine) {
		t.Errorf("openai without key err = %v", err)
	}
	s, err := New("openai", "sk-test", p)
	if err != nil || s.Name() != "openai" {
		t.Errorf("openai = %v, %v", s, err)
	}
}

func TestCommandArgs(t *testing.T) {
	p := Profile{Voice: "en-us", Rate: 2}

	espeak := NewCommandWith("espeak", "espeak-ng", nil)
	got := strings.Join(espeak.args(p, ""), " ")
	if got != "--stdout -s 350 -v en-us --stdin" {
		t.Errorf("espeak args = %q", got)
	}

	say := NewCommandWith("say", "say", nil)
	got = strings.Join(say.args(Profile{}, "/tmp/o.wav"), " ")
	want := "-o /tmp/o.wav --file-format=WAVE --data-format=LEI16@22050 -r 175 -f -"
	if got != want {
		t.Errorf("say args = %q, want %q", got, want)
	}
}

// fakeTTS writes a script that swallows stdin and prints wav.
func fakeTTS(t *testing.T, wav []byte, exit int) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	dir := t.TempDir()
	wavPath := filepath.Join(dir, "out.wav")
	if err := os.WriteFile(wavPath, wav, 0644); err != nil {
		t.Fatal(err)
	}
	script := "#!/bin/sh\ncat >/dev/null\ncat '" + wavPath + "'\n"
	if exit != 0 {
		script = "#!/bin/sh\necho 'voice not found' >&2\nexit 1\n"
	}
	bin := filepath.Join(dir, "tts")
	if err := os.WriteFile(bin, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return bin
}

func TestCommandSpeakPlaysAndFinishes(t *testing.T) {
	clip := testClip()
	player := audio.NewFakePlayer()
	c := NewCommandWith("espeak", fakeTTS(t, audio.EncodeWAV(clip), 0), player)

	finished := make(chan struct{}, 2)
	unsub := c.OnFinished(func() { finished <- struct{}{} })
	defer unsub()

	prof := Profile{Rate: 1, Volume: 0.5, Pan: -1}
	if err := c.Speak(context.Background(), "Hello\nWorld", prof); err != nil {
		t.Fatal(err)
	}
	waitFinished(t, finished)
	c.Wait()

	played := player.Played()
	if len(played) != 1 {
		t.Fatalf("played %d clips, want 1", len(played))
	}
	if played[0].Clip.Frames() != clip.Frames() {
		t.Errorf("frames = %d, want %d", played[0].Clip.Frames(), clip.Frames())
	}
	if played[0].Opts != (audio.PlayOptions{Volume: 0.5, Pan: -1}) {
		t.Errorf("opts = %+v", played[0].Opts)
	}
	select {
	case <-finished:
		t.Error("finished fired twice")
	default:
	}
}

func TestCommandSpeakFailureDoesNotFinish(t *testing.T) {
	player := audio.NewFakePlayer()
	c := NewCommandWith("espeak", fakeTTS(t, nil, 1), player)
	var fired atomic.Bool
	c.OnFinished(func() { fired.Store(true) })

	err := c.Speak(context.Background(), "Hello", DefaultProfile())
	if err == nil || !strings.Contains(err.Error(), "voice not found") {
		t.Fatalf("err = %v, want stderr in message", err)
	}
	c.Wait()
	if fired.Load() || len(player.Played()) != 0 {
		t.Error("failed synthesis must not play or finish")
	}
}

func TestCommandCancelStopsPlayback(t *testing.T) {
	player := audio.NewFakePlayer()
	player.Hold()
	c := NewCommandWith("espeak", fakeTTS(t, audio.EncodeWAV(testClip()), 0), player)
	finished := make(chan struct{}, 1)
	c.OnFinished(func() { finished <- struct{}{} })

	ctx, cancel := context.WithCancel(context.Background())
	if err := c.Speak(ctx, "Hello", DefaultProfile()); err != nil {
		t.Fatal(err)
	}
	cancel()
	waitFinished(t, finished)
}

func TestOpenAISpeak(t *testing.T) {
	clip := testClip()
	body, err := audio.EncodeFLAC(clip)
	if err != nil {
		t.Fatal(err)
	}

	var got openAIRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			http.Error(w, "no auth", http.StatusUnauthorized)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "audio/flac")
		w.Write(body)
	}))
	defer srv.Close()

	player := audio.NewFakePlayer()
	o := NewOpenAI("sk-test", player).WithURL(srv.URL)
	finished := make(chan struct{}, 1)
	o.OnFinished(func() { finished <- struct{}{} })

	prof := Profile{Voice: "nova", Rate: 9, Volume: 1, Extra: map[string]string{"instructions": "calm"}}
	if err := o.Speak(context.Background(), "Hello\nWorld", prof); err != nil {
		t.Fatal(err)
	}
	waitFinished(t, finished)

	if got.Input != "Hello\nWorld" || got.Voice != "nova" || got.ResponseFormat != "flac" {
		t.Errorf("request = %+v", got)
	}
	if got.Model != openAIDefaultModel || got.Speed != 4 || got.Instructions != "calm" {
		t.Errorf("request = %+v", got)
	}
	played := player.Played()
	if len(played) != 1 || played[0].Clip.Frames() != clip.Frames() {
		t.Fatalf("played = %d clips", len(played))
	}
}

func TestOpenAIErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"Rate limit reached"}}`))
	}))
	defer srv.Close()

	o := NewOpenAI("sk-test", audio.NewFakePlayer()).WithURL(srv.URL)
	err := o.Speak(context.Background(), "Hi", DefaultProfile())
	if err == nil || !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "Rate limit reached") {
		t.Errorf("err = %v", err)
	}
}

func TestFake(t *testing.T) {
	f := NewFake()
	var count atomic.Int32
	unsub := f.OnFinished(func() { count.Add(1) })

	if err := f.Speak(context.Background(), "one", DefaultProfile()); err != nil {
		t.Fatal(err)
	}
	if count.Load() != 0 {
		t.Error("manual fake finished on its own")
	}
	f.Finish()
	if count.Load() != 1 {
		t.Errorf("count = %d after Finish", count.Load())
	}

	f.FailWith(errors.New("busy"))
	if err := f.Speak(context.Background(), "two", DefaultProfile()); err == nil {
		t.Error("expected injected error")
	}
	f.FailWith(nil)

	done := make(chan struct{})
	f.OnFinished(func() { close(done) })
	unsub()
	f.AutoFinish(time.Millisecond)
	if err := f.Speak(context.Background(), "three", DefaultProfile()); err != nil {
		t.Fatal(err)
	}
	waitFinished(t, done)

	if n := len(f.Spoken()); n != 2 {
		t.Errorf("Spoken = %d, want 2", n)
	}
	if f.Subscribers() != 1 {
		t.Errorf("Subscribers = %d, want 1", f.Subscribers())
	}
}
