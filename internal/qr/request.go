package qr

import (
	"image/color"
	"strings"
)

// Default request values, matching what the page shows when a parameter is missing.
const (
	DefaultDark   = "#000000"
	DefaultLight  = "#FFFFFF"
	DefaultBorder = 0
	DefaultScale  = 1
)

// MaxScale is the largest pixels-per-module value. The yeqown image writer
// stores the module width in a byte.
const MaxScale = 255

// Request is the per-request input to an Encoder.
type Request struct {
	Text        string
	Dark        string
	Light       string
	Transparent bool
	Border      int // modules of quiet zone on each side
	Scale       int // pixels per module
}

// Normalized returns a copy of r with colors trimmed and defaulted, border
// clamped to >= 0 and scale clamped to [1, MaxScale].
func (r Request) Normalized() Request {
	r.Dark = NormalizeHex(r.Dark)
	if r.Dark == "" {
		r.Dark = DefaultDark
	}
	r.Light = NormalizeHex(r.Light)
	if r.Light == "" {
		r.Light = DefaultLight
	}
	if r.Border < 0 {
		r.Border = 0
	}
	r.Scale = min(max(r.Scale, 1), MaxScale)
	return r
}

// Result is the outcome of a single encode. It is never mutated after creation.
type Result struct {
	Version int // 1..40
	Black   int // set modules in the symbol
	Modules int // side length of the symbol grid, 17 + 4*Version
	Border  int
	Scale   int
	Size    int // output side length in pixels
	PNG     []byte
}

// Total is the number of pixels in the output bitmap.
func (r *Result) Total() int { return r.Size * r.Size }

// White is Total - Black. Black counts modules rather than scaled pixels, so
// this is only exact at scale 1.
func (r *Result) White() int { return r.Total() - r.Black }

// OutputSize computes the bitmap side length for a symbol of the given grid size.
func OutputSize(modules, border, scale int) int {
	return (modules + 2*border) * scale
}

// newResult fills the derived geometry from a module grid.
func newResult(grid [][]bool, border, scale int, png []byte) *Result {
	modules := len(grid)
	return &Result{
		Version: versionFor(modules),
		Black:   countBlack(grid),
		Modules: modules,
		Border:  border,
		Scale:   scale,
		Size:    OutputSize(modules, border, scale),
		PNG:     png,
	}
}

func countBlack(grid [][]bool) int {
	n := 0
	for _, row := range grid {
		for _, v := range row {
			if v {
				n++
			}
		}
	}
	return n
}

// versionFor maps a grid side length back to its QR version.
func versionFor(modules int) int {
	if modules < 21 {
		return 1
	}
	return (modules - 17) / 4
}

// NormalizeHex trims a color string. Values already in #RGB or #RRGGBB form
// and anything else are passed through as-is; parsing happens at render time.
func NormalizeHex(s string) string {
	return strings.TrimSpace(s)
}

// ParseColor converts #RGB or #RRGGBB (with or without the #) into an opaque
// color, returning def for anything it cannot read.
func ParseColor(s string, def color.RGBA) color.RGBA {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return def
	}

	var rgb [3]uint8
	for i := range rgb {
		hi, ok1 := hexNibble(s[2*i])
		lo, ok2 := hexNibble(s[2*i+1])
		if !ok1 || !ok2 {
			return def
		}
		rgb[i] = hi<<4 | lo
	}
	return color.RGBA{rgb[0], rgb[1], rgb[2], 255}
}

func hexNibble(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// colors resolves the foreground and background for rendering. A transparent
// request yields a zero-alpha background.
func (r Request) colors() (fg, bg color.RGBA) {
	fg = ParseColor(r.Dark, color.RGBA{0, 0, 0, 255})
	bg = ParseColor(r.Light, color.RGBA{255, 255, 255, 255})
	if r.Transparent {
		bg = color.RGBA{0, 0, 0, 0}
	}
	return fg, bg
}
