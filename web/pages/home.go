package pages

import (
	"encoding/base64"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/cristianadrielbraun/wplaceqr/web/components"
)

const blankGIF = "data:image/gif;base64,R0lGODlhAQABAIAAAAAAAP///ywAAAAAAQABAAACAUwAOw=="

// HomeProps is the state embedded into the generator page.
type HomeProps struct {
	Data        string
	Dark        string
	Light       string
	Transparent bool
	Border      int
	Scale       int
	MaxBorder   int
	MaxScale    int

	// Set only when Data was encoded.
	Stats   *components.QRStats
	Preview []byte // PNG shown inline on first paint

	Error string
}

// DownloadURL is the /download link for the current parameters.
func (p HomeProps) DownloadURL() string {
	v := url.Values{}
	v.Set("data", p.Data)
	v.Set("dark", p.Dark)
	v.Set("light", p.Light)
	if p.Transparent {
		v.Set("transparent", "1")
	} else {
		v.Set("transparent", "0")
	}
	v.Set("border", strconv.Itoa(p.Border))
	v.Set("scale", strconv.Itoa(p.Scale))
	return "/download?" + v.Encode()
}

func (p HomeProps) stats() components.QRStats {
	if p.Stats == nil {
		return components.EmptyStats
	}
	return *p.Stats
}

// downloadHref is built from url.Values, so it needs no further sanitizing.
func (p HomeProps) downloadHref() templ.SafeURL {
	if p.Stats == nil {
		return "#"
	}
	return templ.SafeURL(p.DownloadURL())
}

func (p HomeProps) previewSrc() string {
	switch {
	case p.Stats == nil:
		return blankGIF
	case len(p.Preview) > 0:
		return "data:image/png;base64," + base64.StdEncoding.EncodeToString(p.Preview)
	default:
		return p.DownloadURL()
	}
}
