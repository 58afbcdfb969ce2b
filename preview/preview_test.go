package preview

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"snaptext/picker"
)

func checker(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, color.White)
			} else {
				img.Set(x, y, color.RGBA{200, 30, 30, 255})
			}
		}
	}
	return img
}

func TestRenderDimensions(t *testing.T) {
	out := Render(checker(40, 80), 12, 5)
	lines := strings.Split(out, "\n")
	if len(lines) != 5 {
		t.Fatalf("rows = %d, want 5", len(lines))
	}
	for i, l := range lines {
		if n := strings.Count(l, "▀"); n != 12 {
			t.Errorf("row %d has %d cells, want 12", i, n)
		}
	}
}

func TestRenderEmpty(t *testing.T) {
	if Render(nil, 10, 10) != "" || Render(checker(2, 2), 0, 3) != "" {
		t.Error("degenerate input should render nothing")
	}
}

func TestScale(t *testing.T) {
	got := Scale(checker(10, 10), 3, 7)
	if got.Bounds().Dx() != 3 || got.Bounds().Dy() != 7 {
		t.Errorf("bounds = %v", got.Bounds())
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, checker(4, 6)); err != nil {
		t.Fatal(err)
	}
	f.Close()

	img, err := Load(picker.FileURI(path))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 6 {
		t.Errorf("bounds = %v", img.Bounds())
	}
	if _, err := Load(picker.FileURI(filepath.Join(t.TempDir(), "missing.png"))); err == nil {
		t.Error("expected error for missing file")
	}
}
