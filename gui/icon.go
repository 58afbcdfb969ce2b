package gui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

// appIcon draws a page with text lines under a lens ring.
func appIcon() []byte {
	const size = 64
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	paper := color.RGBA{240, 240, 235, 255}
	ink := color.RGBA{40, 90, 200, 255}
	for y := 6; y < 58; y++ {
		for x := 12; x < 52; x++ {
			img.Set(x, y, paper)
		}
	}
	for row := 0; row < 5; row++ {
		y := 14 + row*8
		end := 44
		if row == 4 {
			end = 32
		}
		for x := 18; x < end; x++ {
			img.Set(x, y, ink)
			img.Set(x, y+1, ink)
		}
	}

	// lens ring in the lower right corner
	ring := color.RGBA{255, 80, 50, 255}
	cx, cy := 44.0, 44.0
	for y := 28; y < size; y++ {
		for x := 28; x < size; x++ {
			dx, dy := float64(x)-cx+0.5, float64(y)-cy+0.5
			d2 := dx*dx + dy*dy
			if d2 < 12*12 && d2 >= 9*9 {
				img.Set(x, y, ring)
			}
		}
	}

	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}
