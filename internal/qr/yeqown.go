package qr

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"
)

// Yeqown encodes with github.com/yeqown/go-qrcode/v2 and renders through its
// standard image writer. The library already picks the smallest version that
// fits the text and only produces full-size symbols.
type Yeqown struct {
	tmpDir string
}

// NewYeqown returns the yeqown backend. The standard writer only writes to
// files, so PNGs are staged in os.TempDir.
func NewYeqown() *Yeqown { return &Yeqown{tmpDir: os.TempDir()} }

// Name implements Encoder.
func (*Yeqown) Name() string { return BackendYeqown }

// Encode implements Encoder.
func (y *Yeqown) Encode(req Request) (*Result, error) {
	req = req.Normalized()

	qrc, err := qrcode.NewWith(req.Text, qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionLow))
	if err != nil {
		return nil, errors.Join(ErrEncodeFailed, err)
	}

	grid := &matrixWriter{}
	if err := qrc.Save(grid); err != nil {
		return nil, errors.Join(ErrEncodeFailed, err)
	}

	data, err := y.render(qrc, req)
	if err != nil {
		return nil, errors.Join(ErrEncodeFailed, err)
	}
	return newResult(grid.rows, req.Border, req.Scale, data), nil
}

// render writes the PNG via the standard writer into a temp file and reads it back.
func (y *Yeqown) render(qrc *qrcode.QRCode, req Request) ([]byte, error) {
	tmpFile := filepath.Join(y.tmpDir, uniqueFilename("qr", ".png"))
	defer os.Remove(tmpFile)

	fg, bg := req.colors()
	opts := []standard.ImageOption{
		standard.WithQRWidth(uint8(req.Scale)),
		standard.WithBorderWidth(req.Border * req.Scale),
		standard.WithFgColor(fg),
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
	}
	if req.Transparent {
		opts = append(opts, standard.WithBgTransparent())
	} else {
		opts = append(opts, standard.WithBgColor(bg))
	}

	writer, err := standard.New(tmpFile, opts...)
	if err != nil {
		return nil, fmt.Errorf("create writer: %w", err)
	}
	// Save closes the writer, which flushes the file.
	if err := qrc.Save(writer); err != nil {
		return nil, fmt.Errorf("write image: %w", err)
	}

	data, err := os.ReadFile(tmpFile)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("generated image is empty")
	}
	return data, nil
}

// matrixWriter captures the symbol as a [y][x] grid of set modules.
type matrixWriter struct {
	rows [][]bool
}

func (w *matrixWriter) Write(mat qrcode.Matrix) error {
	width, height := mat.Width(), mat.Height()
	if width != height || width < 21 || (width-17)%4 != 0 {
		return fmt.Errorf("unexpected matrix size %dx%d", width, height)
	}

	w.rows = make([][]bool, height)
	for i := range w.rows {
		w.rows[i] = make([]bool, width)
	}
	mat.Iterate(qrcode.IterDirection_ROW, func(x, y int, v qrcode.QRValue) {
		w.rows[y][x] = v.IsSet()
	})
	return nil
}

func (w *matrixWriter) Close() error { return nil }

// uniqueFilename returns a collision-free name for a temp file.
func uniqueFilename(prefix, extension string) string {
	randomBytes := make([]byte, 4)
	_, _ = rand.Read(randomBytes)
	return fmt.Sprintf("%s_%d_%x%s", prefix, time.Now().UnixNano(), randomBytes, extension)
}
