package handlers

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/wplaceqr/internal/pixelfont"
	"github.com/cristianadrielbraun/wplaceqr/internal/qr"
)

const (
	defaultTextPixel = 6
	maxTextPixel     = 32
	maxTextLength    = 512
)

// BitmapText renders ?text= with the 5x7 pixel font and returns a PNG.
// Optional parameters: color (default #000000), bg (omitted or "transparent"
// for none) and px, the cell size (1..32, default 6).
func (h *Handler) BitmapText(c *gin.Context) {
	text := c.Query("text")
	if strings.TrimSpace(text) == "" {
		c.String(http.StatusBadRequest, "Missing text")
		return
	}
	if len([]rune(text)) > maxTextLength {
		c.String(http.StatusBadRequest, "Text too long")
		return
	}

	opts := pixelfont.DefaultRenderOptions()
	opts.Pixel = clampedInt(c.Query("px"), defaultTextPixel, 1, maxTextPixel)
	opts.Foreground = qr.ParseColor(c.Query("color"), color.RGBA{0, 0, 0, 255})
	if bg := strings.TrimSpace(c.Query("bg")); bg != "" && !strings.EqualFold(bg, "transparent") {
		opts.Background = qr.ParseColor(bg, color.RGBA{255, 255, 255, 255})
	}
	opts.MaxSide = h.limits.TextMaxPixels

	img, err := h.font.Render(text, opts)
	switch {
	case errors.Is(err, pixelfont.ErrTooLarge):
		c.String(http.StatusBadRequest, "Text too large to render")
		return
	case err != nil:
		_ = c.Error(err)
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		h.log.ErrorContext(c.Request.Context(), "encode bitmap text", "error", err)
		c.String(http.StatusInternalServerError, "Failed to render text")
		return
	}
	c.Header("Content-Disposition", "inline; filename="+qr.Filename(text, "png"))
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
