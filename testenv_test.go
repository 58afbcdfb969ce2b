package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"snaptext/config"
)

func runScript(t *testing.T, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	cfg := config.Load()
	if code := runTestMode(cfg, strings.NewReader(strings.Join(lines, "\n")+"\n"), &out); code != 0 {
		t.Fatalf("exit code %d", code)
	}
	return out.String()
}

func withSidecar(t *testing.T, ext, content string) string {
	t.Helper()
	path := writeTestPNG(t, 200, 400)
	side := strings.TrimSuffix(path, filepath.Ext(path)) + ext
	if err := os.WriteFile(side, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestScriptRecognizeCopySpeak(t *testing.T) {
	path := withSidecar(t, ".txt", "HELLO\n\n  WORLD  \n")
	out := runScript(t,
		"WIDTH 300",
		"OPEN "+path,
		"WAIT",
		"STATE",
		"COPY",
		"SPEAK",
		"WAIT_SPEECH",
		"STATE",
		"QUIT",
	)
	for _, want := range []string{
		"text=present lines=2",
		"height=600",
		"LINE HELLO\nLINE WORLD\nEND",
		"NOTICE Copied to Clipboard: All text has been copied to the clipboard.",
		`COPIED "HELLO\nWORLD"`,
		"playback=idle",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "ERROR") {
		t.Errorf("unexpected error:\n%s", out)
	}
}

func TestScriptRecognitionFailure(t *testing.T) {
	path := withSidecar(t, ".err", "engine exploded")
	out := runScript(t, "CAMERA "+path, "WAIT", "STATE", "COPY")
	if !strings.Contains(out, "text=absent") || !strings.Contains(out, "engine exploded") {
		t.Errorf("failure not reported:\n%s", out)
	}
	if !strings.Contains(out, "COPY_ERROR") {
		t.Errorf("copy should be unavailable:\n%s", out)
	}
}

func TestScriptCancelAndClear(t *testing.T) {
	path := withSidecar(t, ".txt", "A")
	out := runScript(t, "OPEN "+path, "WAIT", "CANCEL", "STATE", "CLEAR", "STATE")
	states := strings.Count(out, "STATE ")
	if states != 2 {
		t.Fatalf("got %d states:\n%s", states, out)
	}
	first, second, _ := strings.Cut(out, "END")
	if !strings.Contains(first, "lines=1") {
		t.Errorf("cancel dropped the image:\n%s", first)
	}
	if !strings.Contains(second, "image=none") {
		t.Errorf("clear kept the image:\n%s", second)
	}
}

func TestScriptMissingFile(t *testing.T) {
	out := runScript(t, "OPEN "+filepath.Join(t.TempDir(), "nope.png"), "STATE")
	if !strings.Contains(out, "NOTICE Error:") || !strings.Contains(out, "image=none") {
		t.Errorf("missing file not reported:\n%s", out)
	}
}
