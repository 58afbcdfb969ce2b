// Package config reads snaptext settings from the environment. Command-line
// flags registered through RegisterFlags override the environment.
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"snaptext/picker"
	"snaptext/speech"
)

const (
	EnvDir       = "SNAPTEXT_DIR"
	EnvCamera    = "SNAPTEXT_CAMERA_CMD"
	EnvLang      = "SNAPTEXT_OCR_LANG"
	EnvTTS       = "SNAPTEXT_TTS"
	EnvVoice     = "SNAPTEXT_VOICE"
	EnvRate      = "SNAPTEXT_RATE"
	EnvVolume    = "SNAPTEXT_VOLUME"
	EnvPan       = "SNAPTEXT_PAN"
	EnvOpenAIKey = "OPENAI_API_KEY"

	DefaultLang = "eng"
)

type Config struct {
	Dir       string // image library directory
	CameraCmd string // capture command, {out} is replaced by the output path
	Lang      string // Tesseract language(s), e.g. "eng+deu"
	TTS       string
	Voice     string
	Rate      float64
	Volume    float64
	Pan       float64
	OpenAIKey string
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

// getFloat falls back to def for missing or unparsable values; range
// problems are left for Validate.
func getFloat(k string, def float64) float64 {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func DefaultDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		pics := filepath.Join(home, "Pictures")
		if st, err := os.Stat(pics); err == nil && st.IsDir() {
			return pics
		}
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func DefaultTTS() string {
	if runtime.GOOS == "darwin" {
		return "say"
	}
	return "espeak"
}

func Load() *Config {
	return &Config{
		Dir:       getEnv(EnvDir, DefaultDir()),
		CameraCmd: getEnv(EnvCamera, strings.Join(picker.DefaultCameraCommand(), " ")),
		Lang:      getEnv(EnvLang, DefaultLang),
		TTS:       getEnv(EnvTTS, DefaultTTS()),
		Voice:     getEnv(EnvVoice, ""),
		Rate:      getFloat(EnvRate, 1),
		Volume:    getFloat(EnvVolume, 1),
		Pan:       getFloat(EnvPan, 0),
		OpenAIKey: os.Getenv(EnvOpenAIKey),
	}
}

// RegisterFlags binds flags to c using the loaded values as defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Dir, "dir", c.Dir, "Image library directory ($"+EnvDir+")")
	fs.StringVar(&c.CameraCmd, "camera", c.CameraCmd, "Camera capture command, {out} is the output path ($"+EnvCamera+")")
	fs.StringVar(&c.Lang, "lang", c.Lang, "OCR language(s), e.g. eng+deu ($"+EnvLang+")")
	fs.StringVar(&c.TTS, "tts", c.TTS, "Speech engine: "+strings.Join(speech.Engines, ", ")+" ($"+EnvTTS+")")
	fs.StringVar(&c.Voice, "voice", c.Voice, "Speech voice, engine specific ($"+EnvVoice+")")
	fs.Float64Var(&c.Rate, "rate", c.Rate, "Speech rate multiplier ($"+EnvRate+")")
	fs.Float64Var(&c.Volume, "volume", c.Volume, "Speech volume 0..1 ($"+EnvVolume+")")
	fs.Float64Var(&c.Pan, "pan", c.Pan, "Speech pan -1 (left) .. 1 (right) ($"+EnvPan+")")
}

func (c *Config) Validate() error {
	if c.Rate <= 0 {
		return fmt.Errorf("rate must be positive, got %g", c.Rate)
	}
	if c.Volume < 0 || c.Volume > 1 {
		return fmt.Errorf("volume must be between 0 and 1, got %g", c.Volume)
	}
	if c.Pan < -1 || c.Pan > 1 {
		return fmt.Errorf("pan must be between -1 and 1, got %g", c.Pan)
	}
	if !slices.Contains(speech.Engines, c.TTS) {
		return fmt.Errorf("unknown speech engine %q (want one of %s)", c.TTS, strings.Join(speech.Engines, ", "))
	}
	if c.TTS == "openai" && c.OpenAIKey == "" {
		return fmt.Errorf("-tts openai requires %s", EnvOpenAIKey)
	}
	if strings.TrimSpace(c.Lang) == "" {
		return fmt.Errorf("OCR language must not be empty")
	}
	return nil
}

// Languages splits Lang on "+" the way Tesseract writes combined models.
func (c *Config) Languages() []string {
	var langs []string
	for _, l := range strings.Split(c.Lang, "+") {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	return langs
}

func (c *Config) CameraCommand() []string {
	return picker.ParseCommand(c.CameraCmd)
}

func (c *Config) Profile() speech.Profile {
	return speech.Profile{
		Voice:  c.Voice,
		Rate:   c.Rate,
		Volume: c.Volume,
		Pan:    c.Pan,
	}
}
