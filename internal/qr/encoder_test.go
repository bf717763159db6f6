package qr

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allBackends() []Encoder {
	return []Encoder{NewYeqown(), NewSkip2()}
}

func TestEncodeInvariants(t *testing.T) {
	t.Parallel()

	requests := []Request{
		{Text: "https://wplace.live"},
		{Text: "hello", Border: 2, Scale: 3},
		{Text: "   ", Border: 1, Scale: 2},
		{Text: strings.Repeat("0123456789", 20), Border: 4, Scale: 1},
		{Text: "clamped", Border: -5, Scale: -2},
		{Text: "transparent", Transparent: true, Dark: "#f00", Scale: 2},
	}

	for _, enc := range allBackends() {
		for _, req := range requests {
			t.Run(enc.Name()+"/"+req.Text, func(t *testing.T) {
				t.Parallel()
				res, err := enc.Encode(req)
				require.NoError(t, err)

				norm := req.Normalized()
				assert.Equal(t, 17+4*res.Version, res.Modules)
				assert.Equal(t, (res.Modules+2*norm.Border)*norm.Scale, res.Size)
				assert.Equal(t, res.Size*res.Size, res.Total())
				assert.Equal(t, res.Total()-res.Black, res.White())
				assert.Greater(t, res.Black, 0)
				assert.Less(t, res.Black, res.Modules*res.Modules)

				cfg, err := png.DecodeConfig(bytes.NewReader(res.PNG))
				require.NoError(t, err)
				assert.Equal(t, res.Size, cfg.Width)
				assert.Equal(t, res.Size, cfg.Height)
			})
		}
	}
}

func TestEncodeSmallestVersion(t *testing.T) {
	t.Parallel()

	// 19 bytes in byte mode exceed version 1-L (17 bytes) and fit version 2-L (32 bytes).
	for _, enc := range allBackends() {
		t.Run(enc.Name(), func(t *testing.T) {
			t.Parallel()
			res, err := enc.Encode(Request{Text: "https://wplace.live"})
			require.NoError(t, err)
			assert.Equal(t, 2, res.Version)
			assert.Equal(t, 25, res.Modules)
			assert.Equal(t, 25, res.Size)
			assert.Equal(t, 625, res.Total())
		})
	}

	t.Run("short text stays at version 1", func(t *testing.T) {
		t.Parallel()
		for _, enc := range allBackends() {
			res, err := enc.Encode(Request{Text: "hi"})
			require.NoError(t, err)
			assert.Equal(t, 1, res.Version, enc.Name())
		}
	})
}

func TestEncodeTooLong(t *testing.T) {
	t.Parallel()

	// Version 40-L holds at most 2953 bytes.
	text := strings.Repeat("a", 3000)
	for _, enc := range allBackends() {
		t.Run(enc.Name(), func(t *testing.T) {
			t.Parallel()
			res, err := enc.Encode(Request{Text: text})
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, ErrEncodeFailed))
		})
	}
}

func TestSkip2BlackMatchesBitmap(t *testing.T) {
	t.Parallel()

	res, err := NewSkip2().Encode(Request{Text: "https://wplace.live", Dark: "#000000", Light: "#ffffff"})
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(res.PNG))
	require.NoError(t, err)

	dark := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if r, _, _, _ := img.At(x, y).RGBA(); r < 0x8000 {
				dark++
			}
		}
	}
	assert.Equal(t, res.Black, dark)
}

func TestRenderPNGScalesModules(t *testing.T) {
	t.Parallel()

	grid := [][]bool{{true, false}, {false, true}}
	data, err := renderPNG(grid, 1, 2, color.RGBA{0, 0, 0, 255}, color.RGBA{255, 255, 255, 255})
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 8), img.Bounds())

	isDark := func(x, y int) bool {
		r, _, _, _ := img.At(x, y).RGBA()
		return r < 0x8000
	}
	assert.False(t, isDark(0, 0), "quiet zone")
	assert.True(t, isDark(2, 2))
	assert.True(t, isDark(3, 3))
	assert.False(t, isDark(4, 2))
	assert.True(t, isDark(5, 5))
}

func TestSelect(t *testing.T) {
	t.Parallel()

	t.Run("auto prefers yeqown", func(t *testing.T) {
		t.Parallel()
		enc, err := Select(BackendAuto)
		require.NoError(t, err)
		assert.Equal(t, BackendYeqown, enc.Name())
	})

	t.Run("empty means auto", func(t *testing.T) {
		t.Parallel()
		enc, err := Select("")
		require.NoError(t, err)
		assert.Equal(t, BackendYeqown, enc.Name())
	})

	t.Run("named backend", func(t *testing.T) {
		t.Parallel()
		enc, err := Select(" SKIP2 ")
		require.NoError(t, err)
		assert.Equal(t, BackendSkip2, enc.Name())
	})

	t.Run("unknown backend", func(t *testing.T) {
		t.Parallel()
		enc, err := Select("segno")
		require.Error(t, err)
		assert.Nil(t, enc)
		assert.True(t, errors.Is(err, ErrUnknownBackend))
	})

	t.Run("names in preference order", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, []string{BackendYeqown, BackendSkip2}, Names())
	})
}
