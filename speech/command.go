package speech

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"snaptext/audio"
	"snaptext/log"
)

// normal speaking rate of espeak and say, in words per minute
const baseWPM = 175

// Command synthesizes with a local TTS program and plays the resulting WAV.
type Command struct {
	player
	kind string // "espeak" or "say"
	bin  string
}

// NewCommand locates the program for kind. espeak-ng is preferred over
// espeak when both are installed.
func NewCommand(kind string, out audio.Player) (*Command, error) {
	var candidates []string
	switch kind {
	case "espeak":
		candidates = []string{"espeak-ng", "espeak"}
	case "say":
		candidates = []string{"say"}
	default:
		return nil, fmt.Errorf("%w: unknown command engine %q", ErrNoEngine, kind)
	}
	for _, c := range candidates {
		if bin, err := exec.LookPath(c); err == nil {
			return NewCommandWith(kind, bin, out), nil
		}
	}
	return nil, fmt.Errorf("%w: %s not found in PATH", ErrNoEngine, strings.Join(candidates, " or "))
}

// NewCommandWith uses bin as-is.
func NewCommandWith(kind, bin string, out audio.Player) *Command {
	return &Command{player: player{out: out}, kind: kind, bin: bin}
}

func (c *Command) Name() string { return c.kind }

func (c *Command) args(p Profile, outFile string) []string {
	wpm := strconv.Itoa(int(baseWPM * p.rate()))
	var args []string
	if c.kind == "say" {
		args = []string{"-o", outFile, "--file-format=WAVE", "--data-format=LEI16@22050", "-r", wpm}
		if p.Voice != "" {
			args = append(args, "-v", p.Voice)
		}
		return append(args, "-f", "-")
	}
	args = []string{"--stdout", "-s", wpm}
	if p.Voice != "" {
		args = append(args, "-v", p.Voice)
	}
	return append(args, "--stdin")
}

func (c *Command) synthesize(ctx context.Context, text string, p Profile) (audio.Clip, error) {
	var outFile string
	if c.kind == "say" {
		f, err := os.CreateTemp("", "snaptext-say-*.wav")
		if err != nil {
			return audio.Clip{}, err
		}
		outFile = f.Name()
		f.Close()
		defer os.Remove(outFile)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.bin, c.args(p, outFile)...)
	cmd.Stdin = strings.NewReader(text)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return audio.Clip{}, ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		return audio.Clip{}, fmt.Errorf("%s: %w: %s", filepath.Base(c.bin), err, msg)
	}

	data := stdout.Bytes()
	if outFile != "" {
		var err error
		if data, err = os.ReadFile(outFile); err != nil {
			return audio.Clip{}, err
		}
	}
	clip, err := audio.ParseWAV(data)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("%s output: %w", filepath.Base(c.bin), err)
	}
	return clip, nil
}

func (c *Command) Speak(ctx context.Context, text string, p Profile) error {
	start := time.Now()
	clip, err := c.synthesize(ctx, text, p)
	if err != nil {
		return err
	}
	log.Speech(c.kind, len(text), time.Since(start))
	c.start(ctx, c.kind, clip, p)
	return nil
}
