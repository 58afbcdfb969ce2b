package log

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	diagLog   zerolog.Logger
	diagFile  *os.File
	textFile  *os.File
	logMu     sync.Mutex
	logReady  bool
	pid       int
	dir       string
	textCount int
)

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		return absolute(flagPath)
	}

	// Priority 2: SNAPTEXT_LOG_PATH environment variable
	if envPath := os.Getenv("SNAPTEXT_LOG_PATH"); envPath != "" {
		return absolute(envPath)
	}

	// Priority 3: Default OS-specific location
	return getDefaultDir()
}

func absolute(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, p), nil
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error

	diagPath := filepath.Join(dir, "diagnostics_log.txt")
	diagFile, err = os.OpenFile(diagPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	textPath := filepath.Join(dir, "recognized_log.txt")
	textFile, err = os.OpenFile(textPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		diagFile.Close()
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Logger()

	textCount = 0
	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	if textFile != nil {
		textFile.Close()
		textFile = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

// Capability records a failed call into an external capability (picker,
// OCR engine, clipboard, speech engine). kind is the pipeline error kind.
func Capability(op, kind string, err error) {
	if !logReady {
		return
	}
	diagLog.Error().
		Str("op", op).
		Str("kind", kind).
		Err(err).
		Msg("capability_failure")
}

func Recognition(engine string, elapsed time.Duration, lines int, stale bool) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("engine", engine).
		Float64("ocr_ms", float64(elapsed.Microseconds())/1000).
		Int("lines", lines).
		Bool("stale", stale).
		Msg("recognition")
}

// RecognizedText appends one line per recognition to recognized_log.txt.
// Lines of the result are joined with " | " so each entry stays on one row.
func RecognizedText(uri string, lines []string) {
	if !logReady {
		return
	}
	logMu.Lock()
	defer logMu.Unlock()
	row := fmt.Sprintf("%s\t[%d]\t%s\t%s\n",
		time.Now().Format("2006-01-02 15:04:05"), pid, uri, strings.Join(lines, " | "))
	textFile.WriteString(row)
	textCount++
}

// RecognizedCount returns how many results were written since Init.
func RecognizedCount() int {
	logMu.Lock()
	defer logMu.Unlock()
	return textCount
}

func Speech(engine string, chars int, synth time.Duration) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("engine", engine).
		Int("chars", chars).
		Float64("synth_ms", float64(synth.Microseconds())/1000).
		Msg("speech")
}

type HTTPMetrics struct {
	DNSMs   float64
	TLSMs   float64
	TTFBMs  float64
	TotalMs float64
	Reused  bool
}

func SpeechRequest(engine string, status int, m HTTPMetrics) {
	if !logReady {
		return
	}
	connStatus := "new"
	if m.Reused {
		connStatus = "reused"
	}
	diagLog.Info().
		Str("engine", engine).
		Int("status", status).
		Str("conn", connStatus).
		Float64("dns_ms", m.DNSMs).
		Float64("tls_ms", m.TLSMs).
		Float64("ttfb_ms", m.TTFBMs).
		Float64("total_ms", m.TotalMs).
		Msg("speech_request")
}

func SessionStart(ocrEngine, speechEngine string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("ocr", ocrEngine).
		Str("speech", speechEngine).
		Msg("session_start")
}

func SessionEnd(count int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Int("recognitions", count).
		Msg("session_end")
}
