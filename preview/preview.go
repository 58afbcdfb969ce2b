// Package preview draws an image in the terminal with half-block cells, two
// pixel rows per character row.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/draw"

	"snaptext/picker"
)

// Load decodes the image behind a file URI.
func Load(uri string) (image.Image, error) {
	path, err := picker.PathFromURI(uri)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// Scale resizes img to exactly w x h pixels.
func Scale(img image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

func hex(c color.Color) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}

// Render draws img into cols x rows cells. Styles are cached per color pair
// since photos repeat colors heavily after scaling.
func Render(img image.Image, cols, rows int) string {
	if img == nil || cols <= 0 || rows <= 0 {
		return ""
	}
	px := Scale(img, cols, rows*2)

	type pair struct{ fg, bg lipgloss.Color }
	styles := make(map[pair]lipgloss.Style)

	var b strings.Builder
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			p := pair{hex(px.At(x, y*2)), hex(px.At(x, y*2+1))}
			st, ok := styles[p]
			if !ok {
				st = lipgloss.NewStyle().Foreground(p.fg).Background(p.bg)
				styles[p] = st
			}
			b.WriteString(st.Render("▀"))
		}
		if y < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
