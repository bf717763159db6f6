package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/wplaceqr/internal/qr"
	"github.com/cristianadrielbraun/wplaceqr/web/components"
	"github.com/cristianadrielbraun/wplaceqr/web/pages"
)

const missingData = "Missing data"

// metaResponse is the /meta payload polled by the page for live stats.
type metaResponse struct {
	Version int `json:"version"`
	Black   int `json:"black"`
	White   int `json:"white"`
	Total   int `json:"total"`
	Size    int `json:"size"`
}

// Index renders the generator page. Whitespace-only data renders the empty
// form; an encode failure still renders the page, with an error banner.
func (h *Handler) Index(c *gin.Context) {
	data, _ := formValue(c, "data")
	req := h.parseRequest(c, data)

	props := pages.HomeProps{
		Data:        data,
		Dark:        req.Dark,
		Light:       req.Light,
		Transparent: req.Transparent,
		Border:      req.Border,
		Scale:       req.Scale,
		MaxBorder:   h.limits.MaxBorder,
		MaxScale:    h.limits.MaxScale,
	}

	status := http.StatusOK
	if strings.TrimSpace(data) != "" {
		res, err := h.encoder.Encode(req)
		if err != nil {
			h.log.ErrorContext(c.Request.Context(), "encode failed", "backend", h.encoder.Name(), "length", len(data), "error", err)
			_ = c.Error(err)
			status = http.StatusInternalServerError
			props.Error = "Could not generate a QR code for this text. It may be too long."
		} else {
			props.Stats = statsFor(res)
			props.Preview = res.PNG
		}
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := pages.HomePage(props).Render(c.Request.Context(), c.Writer); err != nil {
		_ = c.Error(err)
	}
}

// Download streams the PNG as an attachment named after the text.
func (h *Handler) Download(c *gin.Context) {
	data := c.Query("data")
	if data == "" {
		c.String(http.StatusBadRequest, missingData)
		return
	}

	res, err := h.encode(c, data)
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+qr.Filename(data, "png"))
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/png", res.PNG)
}

// Meta returns the stats for the current parameters without the image.
func (h *Handler) Meta(c *gin.Context) {
	data := c.Query("data")
	if data == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": missingData})
		return
	}

	res, err := h.encode(c, data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code"})
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, metaResponse{
		Version: res.Version,
		Black:   res.Black,
		White:   res.White(),
		Total:   res.Total(),
		Size:    res.Size,
	})
}

func (h *Handler) encode(c *gin.Context, data string) (*qr.Result, error) {
	res, err := h.encoder.Encode(h.parseRequest(c, data))
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), "encode failed", "backend", h.encoder.Name(), "path", c.Request.URL.Path, "length", len(data), "error", err)
		_ = c.Error(err)
		return nil, err
	}
	return res, nil
}

// parseRequest reads the shared parameters. Missing colors use the defaults,
// malformed integers silently fall back to 0 and 1, and geometry is clamped
// to [0, MaxBorder] and [1, MaxScale].
func (h *Handler) parseRequest(c *gin.Context, data string) qr.Request {
	dark, _ := formValue(c, "dark")
	light, _ := formValue(c, "light")
	transparent, _ := formValue(c, "transparent")
	border, _ := formValue(c, "border")
	scale, _ := formValue(c, "scale")

	req := qr.Request{
		Text:        data,
		Dark:        dark,
		Light:       light,
		Transparent: transparent == "1",
		Border:      atoiDefault(border, qr.DefaultBorder),
		Scale:       atoiDefault(scale, qr.DefaultScale),
	}.Normalized()

	if h.limits.MaxBorder > 0 {
		req.Border = min(req.Border, h.limits.MaxBorder)
	}
	if h.limits.MaxScale > 0 {
		req.Scale = min(req.Scale, h.limits.MaxScale)
	}
	return req
}

// formValue reads from the POST form on POST requests and from the query
// string otherwise.
func formValue(c *gin.Context, key string) (string, bool) {
	if c.Request.Method == http.MethodPost {
		return c.GetPostForm(key)
	}
	return c.GetQuery(key)
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

func statsFor(res *qr.Result) *components.QRStats {
	return &components.QRStats{
		Version: res.Version,
		Black:   res.Black,
		White:   res.White(),
		Total:   res.Total(),
		Size:    res.Size,
	}
}
