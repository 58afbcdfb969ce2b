// Package doctor runs interactive checks of the capabilities snaptext
// depends on.
package doctor

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"snaptext/audio"
	"snaptext/clipboard"
	"snaptext/config"
	"snaptext/ocr"
	"snaptext/picker"
	"snaptext/speech"
)

const probeText = "SNAPTEXT 42"

type Clipboard interface {
	SetText(text string) error
	Read() (string, error)
}

// Checker holds the capabilities under test. Nil fields are built from the
// configuration when Run is called.
type Checker struct {
	In      io.Reader
	Out     io.Writer
	OCR     ocr.Recognizer
	OCRErr  error
	Camera  []string
	Clip    Clipboard
	Speaker speech.Speaker
	SpkErr  error
	Profile speech.Profile
	Timeout time.Duration // how long to wait for speech to finish

	reader *bufio.Reader
}

// Run executes the checks and returns an exit code (0=all pass, 1=any fail).
func Run(cfg *config.Config) int {
	resetTerminal()
	setupInterruptHandler()

	c := &Checker{
		In:      os.Stdin,
		Out:     os.Stdout,
		Camera:  cfg.CameraCommand(),
		Clip:    clipboard.System{},
		Profile: cfg.Profile(),
		Timeout: 30 * time.Second,
	}
	tess, err := ocr.New(cfg.Languages()...)
	if err == nil {
		defer tess.Close()
		c.OCR = tess
	}
	c.OCRErr = err

	player, err := audio.NewPlayer()
	if err == nil {
		defer player.Close()
		c.Speaker, c.SpkErr = speech.New(cfg.TTS, cfg.OpenAIKey, player)
	} else {
		c.SpkErr = err
	}
	return c.Run()
}

func (c *Checker) printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Checker) Run() int {
	c.reader = bufio.NewReader(c.In)
	c.printf("snaptext doctor - interactive system diagnostics\n")
	c.printf("================================================\n")

	allPass := true
	for _, check := range []func() bool{c.checkOCR, c.checkCamera, c.checkClipboard, c.checkSpeech} {
		if !check() {
			allPass = false
		}
	}

	c.printf("\n")
	if allPass {
		c.printf("All checks passed!\n")
		return 0
	}
	c.printf("Some checks failed. See details above.\n")
	return 1
}

// renderProbe writes probeText as a black-on-white PNG, upscaled so each
// glyph is large enough for OCR.
func renderProbe(dir string) (string, error) {
	const scale = 4
	face := basicfont.Face7x13
	w := font.MeasureString(face, probeText).Ceil() + 16
	small := image.NewGray(image.Rect(0, 0, w, 24))
	draw.Draw(small, small.Bounds(), image.White, image.Point{}, draw.Src)
	d := &font.Drawer{Dst: small, Src: image.Black, Face: face, Dot: fixed.P(8, 17)}
	d.DrawString(probeText)

	big := image.NewGray(image.Rect(0, 0, w*scale, 24*scale))
	draw.NearestNeighbor.Scale(big, big.Bounds(), small, small.Bounds(), draw.Src, nil)

	path := filepath.Join(dir, "snaptext-doctor.png")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := png.Encode(f, big); err != nil {
		return "", err
	}
	return path, nil
}

func (c *Checker) checkOCR() bool {
	c.printf("\n[1/4] Text recognition\n")
	if c.OCR == nil {
		c.printf("  FAIL: %v\n", c.OCRErr)
		return false
	}

	dir, err := os.MkdirTemp("", "snaptext-doctor")
	if err != nil {
		c.printf("  FAIL: %v\n", err)
		return false
	}
	defer os.RemoveAll(dir)
	path, err := renderProbe(dir)
	if err != nil {
		c.printf("  FAIL: could not render probe image: %v\n", err)
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	start := time.Now()
	lines, err := c.OCR.Recognize(ctx, picker.FileURI(path))
	if err != nil {
		c.printf("  FAIL: %v\n", err)
		return false
	}
	got := strings.Join(lines, " ")
	if !strings.Contains(got, probeText) {
		c.printf("  FAIL: recognized %q, want %q\n", got, probeText)
		return false
	}
	c.printf("  PASS: %s recognized %q in %dms\n", c.OCR.Name(), got, time.Since(start).Milliseconds())
	return true
}

func (c *Checker) checkCamera() bool {
	c.printf("\n[2/4] Camera command\n")
	if len(c.Camera) == 0 {
		c.printf("  FAIL: no camera command configured (set %s)\n", config.EnvCamera)
		return false
	}
	bin, err := exec.LookPath(c.Camera[0])
	if err != nil {
		c.printf("  FAIL: %s not found in PATH\n", c.Camera[0])
		return false
	}
	c.printf("  PASS: %s (%s)\n", strings.Join(c.Camera, " "), bin)
	return true
}

func (c *Checker) checkClipboard() bool {
	c.printf("\n[3/4] Clipboard\n")
	sentinel := fmt.Sprintf("snaptext-doctor-%d", time.Now().UnixNano())
	if err := c.Clip.SetText(sentinel); err != nil {
		c.printf("  FAIL: clipboard write failed: %v\n", err)
		return false
	}
	got, err := c.Clip.Read()
	if err != nil {
		c.printf("  FAIL: could not read clipboard: %v\n", err)
		return false
	}
	if got != sentinel {
		c.printf("  FAIL: clipboard round trip (got %q, want %q)\n", got, sentinel)
		return false
	}
	c.printf("  PASS: clipboard round trip\n")
	return true
}

func (c *Checker) checkSpeech() bool {
	c.printf("\n[4/4] Speech output\n")
	if c.Speaker == nil {
		c.printf("  FAIL: %v\n", c.SpkErr)
		return false
	}
	if devices, err := audio.OutputDevices(); err == nil {
		for _, d := range devices {
			if audio.IsBluetooth(d.Name) {
				c.printf("  Note: %s looks like Bluetooth; speech may start late\n", d.Name)
			}
		}
	}

	finished := make(chan struct{}, 1)
	unsub := c.Speaker.OnFinished(func() {
		select {
		case finished <- struct{}{}:
		default:
		}
	})
	defer unsub()

	c.printf("  Speaking with %s...\n", c.Speaker.Name())
	if err := c.Speaker.Speak(context.Background(), "snaptext doctor. Speech output works.", c.Profile); err != nil {
		c.printf("  FAIL: %v\n", err)
		return false
	}
	select {
	case <-finished:
	case <-time.After(c.Timeout):
		c.printf("  FAIL: no finished notification after %v\n", c.Timeout)
		return false
	}

	c.printf("Did you hear the voice? [y/n]: ")
	confirm, _ := c.reader.ReadString('\n')
	confirm = strings.TrimSpace(strings.ToLower(confirm))
	if confirm != "y" && confirm != "yes" {
		c.printf("  FAIL: speech not confirmed\n")
		return false
	}
	c.printf("  PASS: speech verified by user\n")
	return true
}
