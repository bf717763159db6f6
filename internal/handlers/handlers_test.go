package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/wplaceqr/internal/qr"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type failingEncoder struct{}

func (failingEncoder) Name() string { return "failing" }

func (failingEncoder) Encode(qr.Request) (*qr.Result, error) {
	return nil, errors.Join(qr.ErrEncodeFailed, errors.New("text too long"))
}

func newTestRouter(enc qr.Encoder) *gin.Engine {
	h := New(enc, slog.New(slog.NewTextHandler(io.Discard, nil)), DefaultLimits)
	r := gin.New()
	h.Routes(r)
	return r
}

func do(r http.Handler, method, target string, body url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(body.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeMeta(t *testing.T, w *httptest.ResponseRecorder) metaResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var m metaResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}

func TestMissingData(t *testing.T) {
	t.Parallel()
	r := newTestRouter(qr.NewSkip2())

	t.Run("download", func(t *testing.T) {
		t.Parallel()
		for _, target := range []string{"/download", "/download?data="} {
			w := do(r, http.MethodGet, target, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "Missing data", w.Body.String())
			assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
		}
	})

	t.Run("meta", func(t *testing.T) {
		t.Parallel()
		for _, target := range []string{"/meta", "/meta?data="} {
			w := do(r, http.MethodGet, target, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error":"Missing data"}`, w.Body.String())
		}
	})
}

func TestWhitespaceBoundary(t *testing.T) {
	t.Parallel()
	r := newTestRouter(qr.NewSkip2())
	const spaces = "/?data=%20%20%20"

	t.Run("index hides preview", func(t *testing.T) {
		t.Parallel()
		w := do(r, http.MethodGet, spaces, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `style="display:none"`)
		assert.Contains(t, w.Body.String(), `value="   "`)
	})

	t.Run("meta encodes whitespace", func(t *testing.T) {
		t.Parallel()
		m := decodeMeta(t, do(r, http.MethodGet, "/meta?data=%20%20%20", nil))
		assert.Equal(t, 1, m.Version)
	})

	t.Run("download encodes whitespace", func(t *testing.T) {
		t.Parallel()
		w := do(r, http.MethodGet, "/download?data=%20%20%20", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	})
}

func TestMeta(t *testing.T) {
	t.Parallel()
	r := newTestRouter(qr.NewSkip2())

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		m := decodeMeta(t, do(r, http.MethodGet, "/meta?data=https%3A%2F%2Fwplace.live", nil))
		assert.Equal(t, 2, m.Version)
		assert.Equal(t, 25, m.Size)
		assert.Equal(t, 625, m.Total)
		assert.Equal(t, m.Total-m.Black, m.White)
	})

	t.Run("geometry invariant", func(t *testing.T) {
		t.Parallel()
		m := decodeMeta(t, do(r, http.MethodGet, "/meta?data=hello&border=3&scale=4", nil))
		assert.Equal(t, (17+4*m.Version+2*3)*4, m.Size)
		assert.Equal(t, m.Size*m.Size, m.Total)
		assert.Equal(t, m.Total-m.Black, m.White)
	})

	t.Run("clamps negative border and scale", func(t *testing.T) {
		t.Parallel()
		m := decodeMeta(t, do(r, http.MethodGet, "/meta?data=hello&border=-4&scale=-1", nil))
		assert.Equal(t, 17+4*m.Version, m.Size)
	})

	t.Run("malformed numbers fall back to defaults", func(t *testing.T) {
		t.Parallel()
		m := decodeMeta(t, do(r, http.MethodGet, "/meta?data=hello&border=abc&scale=1.5", nil))
		assert.Equal(t, 17+4*m.Version, m.Size)
	})

	t.Run("caps scale", func(t *testing.T) {
		t.Parallel()
		m := decodeMeta(t, do(r, http.MethodGet, "/meta?data=hi&scale=1000", nil))
		assert.Equal(t, 21*DefaultLimits.MaxScale, m.Size)
	})

	t.Run("key order", func(t *testing.T) {
		t.Parallel()
		w := do(r, http.MethodGet, "/meta?data=hi", nil)
		assert.Regexp(t, regexp.MustCompile(`^\{"version":1,"black":\d+,"white":\d+,"total":441,"size":21\}$`), w.Body.String())
	})
}

func TestDownload(t *testing.T) {
	t.Parallel()
	r := newTestRouter(qr.NewSkip2())

	w := do(r, http.MethodGet, "/download?data=hello+world&border=2&scale=3&dark=%23ff0000&transparent=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename="+qr.Filename("hello world", "png"), w.Header().Get("Content-Disposition"))
	assert.Regexp(t, `filename=hello-world-[0-9a-f]{10}\.png$`, w.Header().Get("Content-Disposition"))

	cfg, err := png.DecodeConfig(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, (21+4)*3, cfg.Width)

	t.Run("same text same filename", func(t *testing.T) {
		t.Parallel()
		a := do(r, http.MethodGet, "/download?data=hello+world&scale=1", nil)
		b := do(r, http.MethodGet, "/download?data=hello+world&scale=5", nil)
		assert.Equal(t, a.Header().Get("Content-Disposition"), b.Header().Get("Content-Disposition"))
	})
}

func TestIndex(t *testing.T) {
	t.Parallel()
	r := newTestRouter(qr.NewSkip2())

	t.Run("empty form", func(t *testing.T) {
		t.Parallel()
		w := do(r, http.MethodGet, "/", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), `style="display:none"`)
		assert.Contains(t, w.Body.String(), `value="#000000"`)
	})

	t.Run("get with data embeds inline preview", func(t *testing.T) {
		t.Parallel()
		w := do(r, http.MethodGet, "/?data=https%3A%2F%2Fwplace.live&border=abc", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, `src="data:image/png;base64,`)
		assert.Contains(t, body, `data-version="2"`)
		assert.Contains(t, body, `<span id="totalVal">625</span>`)
		assert.Contains(t, body, `/download?border=0&amp;dark=%23000000&amp;data=https%3A%2F%2Fwplace.live`)
	})

	t.Run("post reads form fields", func(t *testing.T) {
		t.Parallel()
		form := url.Values{"data": {"hello"}, "border": {"-2"}, "scale": {"2"}, "transparent": {"1"}}
		w := do(r, http.MethodPost, "/", form)
		assert.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, `<span id="sizeValPx">42</span>`)
		assert.Contains(t, body, `value="1" checked`)
		assert.Contains(t, body, `<span id="borderVal">0</span>`)
	})
}

func TestEncodeFailure(t *testing.T) {
	t.Parallel()
	r := newTestRouter(failingEncoder{})

	t.Run("download", func(t *testing.T) {
		t.Parallel()
		w := do(r, http.MethodGet, "/download?data=x", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("meta", func(t *testing.T) {
		t.Parallel()
		w := do(r, http.MethodGet, "/meta?data=x", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"Failed to generate QR code"}`, w.Body.String())
	})

	t.Run("index still renders", func(t *testing.T) {
		t.Parallel()
		w := do(r, http.MethodGet, "/?data=x", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), `class="error"`)
		assert.Contains(t, w.Body.String(), `style="display:none"`)
	})
}

func TestAssets(t *testing.T) {
	t.Parallel()
	r := newTestRouter(qr.NewSkip2())

	t.Run("favicon svg", func(t *testing.T) {
		t.Parallel()
		w := do(r, http.MethodGet, "/favicon.svg", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Body.String(), "<svg")
	})

	for _, tc := range []struct {
		target string
		size   int
	}{
		{"/favicon.png", 32},
		{"/favicon.png?size=64", 64},
		{"/favicon.png?size=1", 16},
		{"/favicon.png?size=99999", 512},
		{"/apple-touch-icon.png", 180},
	} {
		t.Run(tc.target, func(t *testing.T) {
			t.Parallel()
			w := do(r, http.MethodGet, tc.target, nil)
			require.Equal(t, http.StatusOK, w.Code)
			cfg, err := png.DecodeConfig(bytes.NewReader(w.Body.Bytes()))
			require.NoError(t, err)
			assert.Equal(t, tc.size, cfg.Width)
			assert.Equal(t, tc.size, cfg.Height)
		})
	}

	t.Run("sitemap", func(t *testing.T) {
		t.Parallel()
		w := do(r, http.MethodGet, "/sitemap.xml", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/xml")
		assert.Contains(t, w.Body.String(), `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
		assert.Contains(t, w.Body.String(), "<loc>http://example.com/</loc>")
	})

	t.Run("healthz", func(t *testing.T) {
		t.Parallel()
		w := do(r, http.MethodGet, "/healthz", nil)
		assert.JSONEq(t, `{"status":"ok","backend":"skip2"}`, w.Body.String())
	})
}

func TestSitemapScheme(t *testing.T) {
	t.Parallel()
	r := newTestRouter(qr.NewSkip2())

	tests := []struct {
		name      string
		target    string
		forwarded string
		want      string
	}{
		{"plain http on any port", "http://localhost:9090/sitemap.xml", "", "<loc>http://localhost:9090/</loc>"},
		{"direct tls", "https://qr.example.com/sitemap.xml", "", "<loc>https://qr.example.com/</loc>"},
		{"proxy terminates tls", "http://qr.example.com/sitemap.xml", "https", "<loc>https://qr.example.com/</loc>"},
		{"proxy reports http", "https://qr.example.com/sitemap.xml", "HTTP", "<loc>http://qr.example.com/</loc>"},
		{"unknown forwarded proto ignored", "http://127.0.0.1:8080/sitemap.xml", "gopher", "<loc>http://127.0.0.1:8080/</loc>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-Proto", tt.forwarded)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}
}

func TestBitmapText(t *testing.T) {
	t.Parallel()
	r := newTestRouter(qr.NewSkip2())

	t.Run("missing text", func(t *testing.T) {
		t.Parallel()
		w := do(r, http.MethodGet, "/text.png", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Missing text", w.Body.String())
	})

	t.Run("renders png", func(t *testing.T) {
		t.Parallel()
		w := do(r, http.MethodGet, "/text.png?text=HI&px=2&bg=%23ffffff", nil)
		require.Equal(t, http.StatusOK, w.Code)
		cfg, err := png.DecodeConfig(bytes.NewReader(w.Body.Bytes()))
		require.NoError(t, err)
		// padding 6 on each side, two glyphs of 5 cells plus 2 spacing cells at 2px.
		assert.Equal(t, 12+(2*5+2)*2, cfg.Width)
		assert.Equal(t, 12+7*2, cfg.Height)
	})

	t.Run("too large", func(t *testing.T) {
		t.Parallel()
		w := do(r, http.MethodGet, "/text.png?px=32&text="+strings.Repeat("W", 100), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
