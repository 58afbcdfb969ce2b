package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"snaptext/audio"
	"snaptext/beep"
	"snaptext/clipboard"
	"snaptext/config"
	"snaptext/doctor"
	"snaptext/log"
	"snaptext/ocr"
	"snaptext/picker"
	"snaptext/pipeline"
	"snaptext/shutdown"
	"snaptext/speech"
)

var version = "dev"

var (
	shutdownOnce   sync.Once
	activePipeline *pipeline.Pipeline
	activeServices *services
)

func gracefulShutdown() {
	shutdownOnce.Do(func() {
		if activePipeline != nil {
			activePipeline.Close()
		}
		if activeServices != nil {
			activeServices.Close()
		}
		log.SessionEnd(log.RecognizedCount())
		log.Close()
		quitGUI()
		tuiMu.Lock()
		if tuiProgram != nil {
			tuiProgram.Quit()
		}
		tuiMu.Unlock()
		os.Exit(0)
	})
}

// unavailableOCR stands in when no engine could be loaded so that selecting
// an image still reports a recognition failure instead of hanging.
type unavailableOCR struct{ err error }

func (u unavailableOCR) Name() string { return "none" }

func (u unavailableOCR) Recognize(context.Context, string) ([]string, error) {
	return nil, u.err
}

// services holds the capabilities shared by every front end.
type services struct {
	cfg     *config.Config
	ocr     ocr.Recognizer
	speaker speech.Speaker
	out     audio.Player
	beeper  *beep.Player
	tess    *ocr.Tesseract
}

func openServices(cfg *config.Config) *services {
	s := &services{cfg: cfg}

	tess, err := ocr.New(cfg.Languages()...)
	if err != nil {
		log.Warnf("ocr unavailable: %v", err)
		s.ocr = unavailableOCR{err: err}
	} else {
		s.tess = tess
		s.ocr = tess
	}

	out, err := audio.NewPlayer()
	if err != nil {
		log.Warnf("audio output unavailable: %v", err)
	} else {
		s.out = out
		if sp, err := speech.New(cfg.TTS, cfg.OpenAIKey, out); err != nil {
			log.Warnf("speech unavailable: %v", err)
		} else {
			s.speaker = sp
		}
	}
	s.beeper = beep.New(s.out)
	return s
}

func (s *services) speechName() string {
	if s.speaker == nil {
		return "none"
	}
	return s.speaker.Name()
}

// deps assembles pipeline dependencies around the given library and sink.
func (s *services) deps(lib pipeline.Library, sink pipeline.Sink) pipeline.Deps {
	d := pipeline.Deps{
		Library:   lib,
		Camera:    picker.NewCommandCamera(s.cfg.CameraCommand(), filepath.Join(os.TempDir(), "snaptext")),
		OCR:       s.ocr,
		Clipboard: clipboard.System{},
		Profile:   s.cfg.Profile(),
		Sink:      sink,
		Beeper:    s.beeper,
	}
	if s.speaker != nil {
		d.Speaker = s.speaker
	}
	return d
}

func (s *services) Close() {
	s.beeper.Wait()
	if s.out != nil {
		s.out.Close()
	}
	if s.tess != nil {
		s.tess.Close()
	}
}

func initCrashLog() {
	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
	debug.SetCrashOutput(crashFile, debug.CrashOptions{})
}

func main() {
	cfg := config.Load()
	cfg.RegisterFlags(flag.CommandLine)
	versionFlag := flag.Bool("version", false, "Print version and exit")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	testFlag := flag.Bool("test", false, "Test mode (headless, stdin-driven)")
	guiFlag := flag.Bool("gui", false, "Run the desktop window instead of the terminal UI")
	crashFlag := flag.Bool("crash", false, "Trigger synthetic panic for testing crash logging")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	profileFlag := flag.String("profile", "", "Enable pprof profiling server (e.g., :6060 or localhost:6060)")
	flag.Parse()

	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}
	initCrashLog()

	if *profileFlag != "" {
		go func() {
			fmt.Fprintf(os.Stderr, "pprof server listening on http://%s/debug/pprof/\n", *profileFlag)
			if err := http.ListenAndServe(*profileFlag, nil); err != nil {
				fmt.Fprintf(os.Stderr, "pprof server error: %v\n", err)
			}
		}()
	}

	if *crashFlag {
		panic("TEST CRASH: synthetic panic to verify crash logging")
	}

	if *versionFlag {
		fmt.Printf("snaptext %s\n", version)
		os.Exit(0)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *doctorFlag {
		os.Exit(doctor.Run(cfg))
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}

	if *testFlag {
		os.Exit(runTestMode(cfg, os.Stdin, os.Stdout))
	}

	activeServices = openServices(cfg)
	log.SessionStart(activeServices.ocr.Name(), activeServices.speechName())

	stop := shutdown.Channel()
	go func() {
		<-stop
		gracefulShutdown()
	}()

	if *guiFlag {
		runGUI(activeServices)
		gracefulShutdown()
		return
	}

	sink := newProgramSink()
	activePipeline = pipeline.New(activeServices.deps(picker.NewTermLibrary(cfg.Dir), sink))

	tuiMu.Lock()
	tuiProgram = NewTUIProgram(activePipeline, activeServices.ocr.Name(), activeServices.speechName())
	tuiMu.Unlock()
	if _, err := tuiProgram.Run(); err != nil {
		log.Errorf("TUI error: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	gracefulShutdown()
}
