package qr

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestNormalized(t *testing.T) {
	t.Parallel()

	t.Run("clamps negative border and non-positive scale", func(t *testing.T) {
		t.Parallel()
		got := Request{Text: "x", Border: -3, Scale: 0}.Normalized()
		assert.Equal(t, 0, got.Border)
		assert.Equal(t, 1, got.Scale)
	})

	t.Run("caps scale at the writer limit", func(t *testing.T) {
		t.Parallel()
		got := Request{Text: "x", Scale: 1000}.Normalized()
		assert.Equal(t, MaxScale, got.Scale)
	})

	t.Run("keeps valid geometry", func(t *testing.T) {
		t.Parallel()
		got := Request{Text: "x", Border: 4, Scale: 8}.Normalized()
		assert.Equal(t, 4, got.Border)
		assert.Equal(t, 8, got.Scale)
	})

	t.Run("defaults and trims colors", func(t *testing.T) {
		t.Parallel()
		got := Request{Light: "  #abc "}.Normalized()
		assert.Equal(t, DefaultDark, got.Dark)
		assert.Equal(t, "#abc", got.Light)
	})

	t.Run("passes malformed colors through", func(t *testing.T) {
		t.Parallel()
		got := Request{Dark: "tomato"}.Normalized()
		assert.Equal(t, "tomato", got.Dark)
	})
}

func TestParseColor(t *testing.T) {
	t.Parallel()
	def := color.RGBA{1, 2, 3, 255}

	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"#FF0000", color.RGBA{255, 0, 0, 255}},
		{"00ff80", color.RGBA{0, 255, 128, 255}},
		{"#abc", color.RGBA{0xaa, 0xbb, 0xcc, 255}},
		{"#12345", def},
		{"#GGGGGG", def},
		{"", def},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseColor(tt.in, def), "input %q", tt.in)
	}
}

func TestRequestColorsTransparent(t *testing.T) {
	t.Parallel()
	fg, bg := Request{Dark: "#102030", Light: "#ffffff", Transparent: true}.colors()
	assert.Equal(t, color.RGBA{0x10, 0x20, 0x30, 255}, fg)
	assert.Equal(t, uint8(0), bg.A)
}

func TestResultGeometry(t *testing.T) {
	t.Parallel()
	grid := make([][]bool, 21)
	for i := range grid {
		grid[i] = make([]bool, 21)
	}
	grid[0][0], grid[5][7], grid[20][20] = true, true, true

	res := newResult(grid, 2, 3, nil)
	assert.Equal(t, 1, res.Version)
	assert.Equal(t, 3, res.Black)
	assert.Equal(t, (21+4)*3, res.Size)
	assert.Equal(t, res.Size*res.Size, res.Total())
	assert.Equal(t, res.Total()-3, res.White())
}

func TestVersionFor(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 1, versionFor(21))
	assert.Equal(t, 2, versionFor(25))
	assert.Equal(t, 40, versionFor(177))
}
