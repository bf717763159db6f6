package qr

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
)

// renderPNG rasterizes a module grid with a quiet zone of border modules and
// scale pixels per module. The bitmap uses a two-entry palette, so there is
// no anti-aliasing and every pixel is exactly fg or bg.
func renderPNG(grid [][]bool, border, scale int, fg, bg color.RGBA) ([]byte, error) {
	side := OutputSize(len(grid), border, scale)
	img := image.NewPaletted(image.Rect(0, 0, side, side), color.Palette{bg, fg})

	// Index 0 is the background, which NewPaletted already filled in.
	offset := border * scale
	for y, row := range grid {
		for x, set := range row {
			if !set {
				continue
			}
			x0, y0 := offset+x*scale, offset+y*scale
			for py := y0; py < y0+scale; py++ {
				start := img.PixOffset(x0, py)
				for i := 0; i < scale; i++ {
					img.Pix[start+i] = 1
				}
			}
		}
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
