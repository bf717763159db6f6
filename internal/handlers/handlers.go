package handlers

import (
	"encoding/xml"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/wplaceqr/internal/pixelfont"
	"github.com/cristianadrielbraun/wplaceqr/internal/qr"
)

// Limits bounds the geometry a single request may ask for.
type Limits struct {
	MaxBorder     int
	MaxScale      int
	TextMaxPixels int
}

// DefaultLimits matches the config defaults.
var DefaultLimits = Limits{MaxBorder: 64, MaxScale: 32, TextMaxPixels: 4096}

// Handler holds the dependencies shared by the HTTP handlers. The encoder is
// chosen once at startup; nothing else is mutated per request.
type Handler struct {
	encoder qr.Encoder
	font    *pixelfont.Font
	log     *slog.Logger
	limits  Limits

	icons sync.Map // favicon size -> PNG bytes
}

// New returns a Handler encoding with enc.
func New(enc qr.Encoder, log *slog.Logger, limits Limits) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		encoder: enc,
		font:    pixelfont.New(),
		log:     log,
		limits:  limits,
	}
}

// Routes registers every endpoint on r.
func (h *Handler) Routes(r gin.IRouter) {
	r.GET("/", h.Index)
	r.POST("/", h.Index)
	r.GET("/download", h.Download)
	r.GET("/meta", h.Meta)
	r.GET("/text.png", h.BitmapText)

	r.GET("/favicon.svg", h.FaviconSVG)
	r.GET("/favicon.png", h.FaviconPNG)
	r.GET("/apple-touch-icon.png", h.AppleTouchIcon)
	r.GET("/sitemap.xml", h.SitemapXML)
	r.GET("/healthz", h.Health)
}

// Health reports liveness and the active encoding backend.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "backend": h.encoder.Name()})
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type sitemap struct {
	XMLName xml.Name     `xml:"http://www.sitemaps.org/schemas/sitemap/0.9 urlset"`
	URLs    []sitemapURL `xml:"url"`
}

// SitemapXML lists the generator page under the host the request came in on.
func (h *Handler) SitemapXML(c *gin.Context) {
	loc := requestScheme(c.Request) + "://" + c.Request.Host + "/"
	c.XML(http.StatusOK, sitemap{
		URLs: []sitemapURL{{Loc: loc, ChangeFreq: "weekly", Priority: "1.0"}},
	})
}

// requestScheme trusts X-Forwarded-Proto from a fronting proxy and otherwise
// reports whether the connection itself is TLS.
func requestScheme(r *http.Request) string {
	switch proto := strings.ToLower(r.Header.Get("X-Forwarded-Proto")); proto {
	case "http", "https":
		return proto
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
