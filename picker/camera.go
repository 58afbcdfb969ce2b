package picker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const outPlaceholder = "{out}"

// CommandCamera captures a still by running an external program that writes
// a JPEG to the path substituted for {out}.
type CommandCamera struct {
	Command []string
	Dir     string // where captures are written; os.TempDir() when empty
}

// DefaultCameraCommand returns the capture command for the current OS, or
// nil when there is no sensible default.
func DefaultCameraCommand() []string {
	switch runtime.GOOS {
	case "linux":
		return []string{"fswebcam", "--no-banner", "-r", "1280x720", "--jpeg", "90", outPlaceholder}
	case "darwin":
		return []string{"imagesnap", "-w", "1", outPlaceholder}
	}
	return nil
}

// ParseCommand splits a configured command line; a missing {out} argument is
// appended.
func ParseCommand(s string) []string {
	args := strings.Fields(s)
	if len(args) == 0 {
		return nil
	}
	for _, a := range args {
		if strings.Contains(a, outPlaceholder) {
			return args
		}
	}
	return append(args, outPlaceholder)
}

func NewCommandCamera(command []string, dir string) *CommandCamera {
	return &CommandCamera{Command: command, Dir: dir}
}

func (c *CommandCamera) Capture(ctx context.Context, opts Options) (Result, error) {
	if opts.MediaType != "" && opts.MediaType != "photo" {
		return Result{}, fmt.Errorf("unsupported media type %q", opts.MediaType)
	}
	if len(c.Command) == 0 {
		return Result{}, ErrNoCamera
	}
	bin, err := exec.LookPath(c.Command[0])
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrNoCamera, c.Command[0])
	}

	dir := c.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Result{}, fmt.Errorf("capture dir: %w", err)
	}
	out := filepath.Join(dir, fmt.Sprintf("snaptext-%s.jpg", time.Now().Format("20060102-150405.000")))

	args := make([]string, 0, len(c.Command)-1)
	for _, a := range c.Command[1:] {
		args = append(args, strings.ReplaceAll(a, outPlaceholder, out))
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			os.Remove(out)
			return Cancelled, nil
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 130 {
			// interrupted by the user
			return Cancelled, nil
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return Result{}, fmt.Errorf("camera %s: %w", c.Command[0], err)
		}
		return Result{}, fmt.Errorf("camera %s: %w: %s", c.Command[0], err, msg)
	}

	if _, err := os.Stat(out); err != nil {
		return Result{}, fmt.Errorf("camera %s wrote no image: %w", c.Command[0], err)
	}
	return Single(out)
}
