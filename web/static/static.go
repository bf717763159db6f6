// Package static embeds the stylesheet, client script and icon served under /web/static.
package static

import "embed"

// FS holds the static assets.
//
//go:embed app.css app.js favicon.svg
var FS embed.FS

// FaviconSVG is the site icon, also rasterized for /favicon.png.
//
//go:embed favicon.svg
var FaviconSVG []byte
