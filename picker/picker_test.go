package picker

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestDescribeReadsNaturalSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipt.png")
	writePNG(t, path, 200, 400)

	a, err := Describe(path)
	if err != nil {
		t.Fatal(err)
	}
	if a.Width != 200 || a.Height != 400 {
		t.Errorf("size = %dx%d, want 200x400", a.Width, a.Height)
	}
	if a.Type != "image/png" {
		t.Errorf("Type = %q, want image/png", a.Type)
	}
	if a.FileSize <= 0 {
		t.Error("FileSize should be positive")
	}
	got, err := PathFromURI(a.URI)
	if err != nil {
		t.Fatal(err)
	}
	if got != path {
		t.Errorf("PathFromURI(%q) = %q, want %q", a.URI, got, path)
	}
}

func TestDescribeUndecodableKeepsZeroSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jpg")
	if err := os.WriteFile(path, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	a, err := Describe(path)
	if err != nil {
		t.Fatal(err)
	}
	if a.Width != 0 || a.Height != 0 {
		t.Errorf("size = %dx%d, want 0x0", a.Width, a.Height)
	}
}

func TestDescribeMissingFile(t *testing.T) {
	if _, err := Describe(filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestListImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.PNG", "a.jpg", "notes.txt", ".hidden.png"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0755); err != nil {
		t.Fatal(err)
	}

	files, err := ListImages(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "a.jpg"), filepath.Join(dir, "b.PNG")}
	if len(files) != len(want) {
		t.Fatalf("ListImages = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}

func TestPathFromURI(t *testing.T) {
	for _, tt := range []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"/tmp/a.png", "/tmp/a.png", false},
		{"file:///tmp/a%20b.png", filepath.FromSlash("/tmp/a b.png"), false},
		{"https://example.com/a.png", "", true},
	} {
		got, err := PathFromURI(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("PathFromURI(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("PathFromURI(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseCommand(t *testing.T) {
	got := ParseCommand("imagesnap -w 2")
	if len(got) != 4 || got[3] != "{out}" {
		t.Errorf("ParseCommand appended = %v", got)
	}
	got = ParseCommand("grab --to={out} -q")
	if len(got) != 3 || got[1] != "--to={out}" {
		t.Errorf("ParseCommand kept = %v", got)
	}
	if ParseCommand("   ") != nil {
		t.Error("blank command should parse to nil")
	}
}

func TestCommandCameraCopiesCapture(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses cp")
	}
	src := filepath.Join(t.TempDir(), "still.png")
	writePNG(t, src, 64, 32)

	cam := NewCommandCamera([]string{"cp", src, "{out}"}, t.TempDir())
	res, err := cam.Capture(context.Background(), PhotoOptions)
	if err != nil {
		t.Fatal(err)
	}
	if res.Cancelled || len(res.Assets) != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Assets[0].Width != 64 || res.Assets[0].Height != 32 {
		t.Errorf("size = %dx%d, want 64x32", res.Assets[0].Width, res.Assets[0].Height)
	}
}

func TestCommandCameraMissingBinary(t *testing.T) {
	cam := NewCommandCamera([]string{"snaptext-no-such-camera", "{out}"}, t.TempDir())
	_, err := cam.Capture(context.Background(), PhotoOptions)
	if !errors.Is(err, ErrNoCamera) {
		t.Errorf("err = %v, want ErrNoCamera", err)
	}

	_, err = NewCommandCamera(nil, "").Capture(context.Background(), PhotoOptions)
	if !errors.Is(err, ErrNoCamera) {
		t.Errorf("nil command err = %v, want ErrNoCamera", err)
	}
}

func TestCommandCameraCancelled(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sleep")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := NewCommandCamera([]string{"sleep", "5"}, t.TempDir()).Capture(ctx, PhotoOptions)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Cancelled {
		t.Errorf("expected cancelled result, got %+v", res)
	}
}

func TestFakeQueue(t *testing.T) {
	f := NewFake()
	f.PushAsset(Asset{URI: "file:///a.png", Width: 1, Height: 2})
	f.Push(Result{}, errors.New("boom"))

	ctx := context.Background()
	r, err := f.PickFromLibrary(ctx, PhotoOptions)
	if err != nil || len(r.Assets) != 1 {
		t.Fatalf("first = %+v, %v", r, err)
	}
	if _, err := f.Capture(ctx, PhotoOptions); err == nil {
		t.Error("second call should fail")
	}
	r, err = f.Capture(ctx, PhotoOptions)
	if err != nil || !r.Cancelled {
		t.Errorf("empty queue = %+v, %v; want cancelled", r, err)
	}
	if f.Calls() != 3 {
		t.Errorf("Calls() = %d, want 3", f.Calls())
	}
	if f.LastOptions().SelectionLimit != 1 {
		t.Errorf("LastOptions = %+v", f.LastOptions())
	}
}

func TestExtensions(t *testing.T) {
	exts := Extensions()
	if len(exts) != 8 || exts[0] != ".bmp" {
		t.Errorf("Extensions() = %v", exts)
	}
	for _, e := range exts {
		if !IsImage("photo" + e) {
			t.Errorf("IsImage(photo%s) = false", e)
		}
	}
}

func TestPageBounds(t *testing.T) {
	for _, tt := range []struct {
		name               string
		n, cursor, rows    int
		wantStart, wantEnd int
	}{
		{"fits", 5, 4, 10, 0, 5},
		{"top", 100, 0, 10, 0, 10},
		{"middle", 100, 50, 10, 45, 55},
		{"bottom", 100, 99, 10, 90, 100},
		{"near bottom", 100, 97, 10, 90, 100},
		{"one row", 100, 42, 1, 42, 43},
		{"no rows", 3, 2, 0, 2, 3},
	} {
		t.Run(tt.name, func(t *testing.T) {
			start, end := pageBounds(tt.n, tt.cursor, tt.rows)
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("pageBounds(%d, %d, %d) = %d, %d, want %d, %d",
					tt.n, tt.cursor, tt.rows, start, end, tt.wantStart, tt.wantEnd)
			}
			if tt.cursor < start || tt.cursor >= end {
				t.Errorf("cursor %d outside [%d, %d)", tt.cursor, start, end)
			}
		})
	}
}

func TestListRows(t *testing.T) {
	if got := listRows(30); got != 26 {
		t.Errorf("listRows(30) = %d, want 26", got)
	}
	if got := listRows(0); got != 20 {
		t.Errorf("listRows(0) = %d, want 20", got)
	}
	if got := listRows(3); got != 1 {
		t.Errorf("listRows(3) = %d, want 1", got)
	}
}

func TestRenderListPages(t *testing.T) {
	var files []string
	for i := 0; i < 50; i++ {
		files = append(files, filepath.Join("/pics", "img"+string(rune('a'+i%26))+string(rune('a'+i/26))+".png"))
	}

	var buf bytes.Buffer
	lines := renderList(&buf, "/pics", files, 30, 8)
	if lines != 2+8+1 {
		t.Errorf("lines = %d, want 11", lines)
	}
	if got := strings.Count(buf.String(), "\r\n"); got != lines {
		t.Errorf("wrote %d lines, reported %d", got, lines)
	}
	if !strings.Contains(buf.String(), "(31/50)") {
		t.Errorf("missing position indicator:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "▶ "+filepath.Base(files[30])) {
		t.Errorf("cursor entry not shown:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), filepath.Base(files[0])) {
		t.Error("entries outside the page should not be drawn")
	}

	buf.Reset()
	if lines := renderList(&buf, "/pics", files[:3], 1, 8); lines != 5 {
		t.Errorf("short list lines = %d, want 5", lines)
	}
	if strings.Contains(buf.String(), "(2/3)") {
		t.Error("short list should not show a position indicator")
	}
}
