package handlers

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/cristianadrielbraun/wplaceqr/web/static"
)

const (
	defaultIconSize    = 32
	appleTouchIconSize = 180
	minIconSize        = 16
	maxIconSize        = 512
)

// FaviconSVG serves the site icon.
func (h *Handler) FaviconSVG(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/svg+xml", static.FaviconSVG)
}

// FaviconPNG serves the icon rasterized to ?size= pixels (16..512, default 32).
func (h *Handler) FaviconPNG(c *gin.Context) {
	h.servePNGIcon(c, clampedInt(c.Query("size"), defaultIconSize, minIconSize, maxIconSize))
}

// AppleTouchIcon serves the 180px icon iOS requests by convention.
func (h *Handler) AppleTouchIcon(c *gin.Context) {
	h.servePNGIcon(c, appleTouchIconSize)
}

func (h *Handler) servePNGIcon(c *gin.Context, size int) {
	data, err := h.iconPNG(size)
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), "rasterize favicon", "size", size, "error", err)
		c.String(http.StatusInternalServerError, "Failed to render icon")
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", data)
}

// iconPNG rasterizes the SVG icon once per size.
func (h *Handler) iconPNG(size int) ([]byte, error) {
	if cached, ok := h.icons.Load(size); ok {
		return cached.([]byte), nil
	}
	data, err := rasterizeSVG(static.FaviconSVG, size)
	if err != nil {
		return nil, err
	}
	h.icons.Store(size, data)
	return data, nil
}

func rasterizeSVG(svg []byte, size int) ([]byte, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svg), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// clampedInt parses s, falling back to def, and clamps the result to [lo, hi].
func clampedInt(s string, def, lo, hi int) int {
	return min(max(atoiDefault(s, def), lo), hi)
}
