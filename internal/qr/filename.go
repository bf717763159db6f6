package qr

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	maxSlugLength = 50
	hashLength    = 10
	fallbackSlug  = "qr"
	slugSeparator = '-'
)

// Filename builds a stable download name for text: a readable ASCII slug
// followed by a short SHA-256 prefix of the raw text, e.g.
// "https-wplace-live-1f0c2a9b3d.png".
func Filename(text, ext string) string {
	sum := sha256.Sum256([]byte(text))
	digest := hex.EncodeToString(sum[:])[:hashLength]
	return Slug(text) + "-" + digest + "." + ext
}

// Slug reduces text to [A-Za-z0-9-]: every run of other characters becomes a
// single dash, edge dashes are dropped and the result is capped at 50 bytes.
// It returns "qr" when nothing is left.
func Slug(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	lastWasSep := true // suppresses a leading separator
	for i := 0; i < len(text); i++ {
		c := text[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
			lastWasSep = false
			continue
		}
		if !lastWasSep {
			b.WriteByte(slugSeparator)
			lastWasSep = true
		}
	}

	slug := strings.TrimRight(b.String(), string(slugSeparator))
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], string(slugSeparator))
	}
	if slug == "" {
		return fallbackSlug
	}
	return slug
}
