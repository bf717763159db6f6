// Package qr turns user text into a QR symbol and a PNG bitmap.
//
// Encoding is delegated to one of two third-party libraries, each wrapped in
// an Encoder:
//
//   - "yeqown" uses github.com/yeqown/go-qrcode/v2 and its standard PNG writer.
//   - "skip2" uses github.com/skip2/go-qrcode and renders the bitmap itself.
//
// Both always encode at the lowest error-correction level and pick the
// smallest standard version (1..40) the text fits in. Micro QR is never used.
//
// The backend is chosen once at process start:
//
//	enc, err := qr.Select("auto")
//	if errors.Is(err, qr.ErrNoBackend) {
//		// exit
//	}
//	res, err := enc.Encode(qr.Request{Text: "https://wplace.live", Scale: 4})
//
// Result carries the derived statistics the UI shows next to the preview:
// Size is (Modules + 2*Border) * Scale, Total is Size*Size and White is
// Total - Black.
package qr
