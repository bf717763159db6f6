package qr

import "errors"

var (
	// ErrEncodeFailed is returned when the text does not fit any standard QR version
	// or the backend fails to render the symbol.
	ErrEncodeFailed = errors.New("failed to encode QR code")

	// ErrNoBackend is returned by Select when no encoding backend passes its probe.
	ErrNoBackend = errors.New("no QR encoding backend available")

	// ErrUnknownBackend is returned by Select for a backend name that is not registered.
	ErrUnknownBackend = errors.New("unknown QR encoding backend")
)
