package pixelfont

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	// ErrEmptyText is returned by Render when there is nothing to draw.
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrTooLarge is returned by Render when the bitmap would exceed the size limit.
	ErrTooLarge = errors.New("rendered text exceeds the maximum size")
)

// coverageThreshold is the mean coverage a cell needs to be lit when a glyph
// is synthesized from the fallback face.
const coverageThreshold = 0.35

// Font resolves runes to 5x7 glyphs. It is safe for concurrent use.
type Font struct {
	face  font.Face
	mu    sync.Mutex // guards face, which is not safe for concurrent use
	cache sync.Map   // rune -> Glyph
}

// Option configures a Font.
type Option func(*Font)

// WithFallbackFace sets the face used to synthesize glyphs missing from the table.
func WithFallbackFace(face font.Face) Option {
	return func(f *Font) {
		if face != nil {
			f.face = face
		}
	}
}

// New returns a Font backed by the built-in table, synthesizing other runes
// from basicfont.Face7x13 unless another face is given.
func New(opts ...Option) *Font {
	f := &Font{face: basicfont.Face7x13}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Glyph returns the glyph for r. Lookup is case-insensitive; whitespace is
// blank; anything else missing from the table is synthesized, and runes the
// fallback face cannot draw render as a dash.
func (f *Font) Glyph(r rune) Glyph {
	r = unicode.ToUpper(r)
	if g, ok := table[r]; ok {
		return g
	}
	if unicode.IsSpace(r) {
		return Glyph{}
	}
	if g, ok := f.cache.Load(r); ok {
		return g.(Glyph)
	}

	f.mu.Lock()
	g := synthesize(f.face, r)
	f.mu.Unlock()
	if g.Blank() {
		g = dashGlyph
	}
	f.cache.Store(r, g)
	return g
}

// synthesize rasterizes r into an offscreen bitmap one glyph advance wide
// and one line tall, then lights each 5x7 cell whose mean coverage reaches
// coverageThreshold.
func synthesize(face font.Face, r rune) Glyph {
	adv, ok := face.GlyphAdvance(r)
	if !ok {
		return Glyph{}
	}
	metrics := face.Metrics()
	w := adv.Ceil()
	h := (metrics.Ascent + metrics.Descent).Ceil()
	if w <= 0 || h <= 0 {
		return Glyph{}
	}

	dst := image.NewAlpha(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  dst,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.Point26_6{X: 0, Y: metrics.Ascent},
	}
	d.DrawString(string(r))

	var g Glyph
	for row := 0; row < Rows; row++ {
		y0, y1 := row*h/Rows, (row+1)*h/Rows
		for col := 0; col < Columns; col++ {
			x0, x1 := col*w/Columns, (col+1)*w/Columns
			if cellCoverage(dst, x0, y0, x1, y1) >= coverageThreshold {
				g[row] |= 1 << (Columns - 1 - col)
			}
		}
	}
	return g
}

// cellCoverage averages alpha over [x0,x1)x[y0,y1), widening empty ranges to
// one pixel so narrow faces still sample something.
func cellCoverage(img *image.Alpha, x0, y0, x1, y1 int) float64 {
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}
	sum, n := 0, 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			sum += int(img.AlphaAt(x, y).A)
			n++
		}
	}
	return float64(sum) / float64(n*255)
}

// Measure returns the pixel width of one line drawn with px-sized cells and
// spacing empty columns between characters.
func (f *Font) Measure(line string, px, spacing int) int {
	n := len([]rune(line))
	if n == 0 {
		return 0
	}
	return n*Columns*px + (n-1)*spacing*px
}

// DrawLine paints line onto dst with its top-left corner at (x, y).
func (f *Font) DrawLine(dst draw.Image, line string, c color.Color, x, y, px, spacing int) {
	src := image.NewUniform(c)
	for _, r := range line {
		g := f.Glyph(r)
		for row := 0; row < Rows; row++ {
			for col := 0; col < Columns; col++ {
				if !g.On(col, row) {
					continue
				}
				cell := image.Rect(x+col*px, y+row*px, x+(col+1)*px, y+(row+1)*px)
				draw.Draw(dst, cell, src, image.Point{}, draw.Src)
			}
		}
		x += (Columns + spacing) * px
	}
}

// RenderOptions controls Render.
type RenderOptions struct {
	Pixel      int         // cell size in pixels
	Spacing    int         // empty columns between characters
	Padding    int         // pixels around the text block
	LineGap    int         // pixels between lines
	Foreground color.Color
	Background color.Color // nil means transparent
	MaxSide    int         // largest allowed width or height, 0 for no limit
}

// DefaultRenderOptions mirrors the logo drawn in the page header.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		Pixel:      6,
		Spacing:    2,
		Padding:    6,
		LineGap:    8,
		Foreground: color.White,
	}
}

// Render draws text, one centered line per "\n"-separated segment.
func (f *Font) Render(text string, opts RenderOptions) (*image.NRGBA, error) {
	text = strings.TrimRight(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if opts.Pixel < 1 {
		opts.Pixel = 1
	}
	if opts.Spacing < 0 {
		opts.Spacing = 0
	}
	if opts.Foreground == nil {
		opts.Foreground = color.White
	}

	lines := strings.Split(text, "\n")
	widths := make([]int, len(lines))
	maxWidth := 0
	for i, line := range lines {
		widths[i] = f.Measure(line, opts.Pixel, opts.Spacing)
		maxWidth = max(maxWidth, widths[i])
	}

	lineHeight := Rows * opts.Pixel
	width := 2*opts.Padding + maxWidth
	height := 2*opts.Padding + len(lines)*lineHeight + (len(lines)-1)*opts.LineGap
	if opts.MaxSide > 0 && (width > opts.MaxSide || height > opts.MaxSide) {
		return nil, ErrTooLarge
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	if opts.Background != nil {
		draw.Draw(img, img.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)
	}
	for i, line := range lines {
		x := opts.Padding + (maxWidth-widths[i])/2
		y := opts.Padding + i*(lineHeight+opts.LineGap)
		f.DrawLine(img, line, opts.Foreground, x, y, opts.Pixel, opts.Spacing)
	}
	return img, nil
}
