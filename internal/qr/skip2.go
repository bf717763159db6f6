package qr

import (
	"errors"
	"fmt"

	skipqrcode "github.com/skip2/go-qrcode"
)

const maxVersion = 40

// Skip2 encodes with github.com/skip2/go-qrcode and rasterizes the bitmap
// itself, since the library's PNG writer has a fixed quiet zone.
type Skip2 struct{}

// NewSkip2 returns the skip2 backend.
func NewSkip2() *Skip2 { return &Skip2{} }

// Name implements Encoder.
func (*Skip2) Name() string { return BackendSkip2 }

// Encode implements Encoder. Versions are tried from 1 upward and the first
// one the text fits in at level L wins.
func (s *Skip2) Encode(req Request) (*Result, error) {
	req = req.Normalized()

	var lastErr error
	for version := 1; version <= maxVersion; version++ {
		q, err := skipqrcode.NewWithForcedVersion(req.Text, version, skipqrcode.Low)
		if err != nil {
			lastErr = err
			continue
		}
		q.DisableBorder = true
		grid := q.Bitmap()

		fg, bg := req.colors()
		data, err := renderPNG(grid, req.Border, req.Scale, fg, bg)
		if err != nil {
			return nil, errors.Join(ErrEncodeFailed, err)
		}
		return newResult(grid, req.Border, req.Scale, data), nil
	}

	return nil, errors.Join(ErrEncodeFailed, fmt.Errorf("text does not fit version %d: %w", maxVersion, lastErr))
}
