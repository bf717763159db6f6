package qr

import (
	"errors"
	"fmt"
	"strings"
)

// Encoder turns a Request into a Result using one QR library.
type Encoder interface {
	// Name identifies the backend in logs and in /healthz.
	Name() string
	// Encode normalizes req and produces the symbol and its PNG bitmap.
	Encode(req Request) (*Result, error)
}

// Backend names accepted by Select.
const (
	BackendAuto   = "auto"
	BackendYeqown = "yeqown"
	BackendSkip2  = "skip2"
)

// backends lists the available encoders in preference order.
var backends = []struct {
	name string
	make func() Encoder
}{
	{BackendYeqown, func() Encoder { return NewYeqown() }},
	{BackendSkip2, func() Encoder { return NewSkip2() }},
}

// probeText is encoded once per candidate backend at startup to prove it works.
const probeText = "probe"

// Select resolves the encoding backend once at process start. "auto" (or an
// empty name) picks the first backend in preference order whose probe encode
// succeeds; a concrete name must pass its own probe.
func Select(name string) (Encoder, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = BackendAuto
	}

	var errs []error
	for _, b := range backends {
		if name != BackendAuto && name != b.name {
			continue
		}
		enc := b.make()
		if err := probe(enc); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", b.name, err))
			continue
		}
		return enc, nil
	}

	if name != BackendAuto && len(errs) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	return nil, errors.Join(append([]error{ErrNoBackend}, errs...)...)
}

// Names returns the registered backend names in preference order.
func Names() []string {
	names := make([]string, 0, len(backends))
	for _, b := range backends {
		names = append(names, b.name)
	}
	return names
}

func probe(enc Encoder) error {
	res, err := enc.Encode(Request{Text: probeText})
	if err != nil {
		return err
	}
	if len(res.PNG) == 0 || res.Modules < 21 {
		return fmt.Errorf("probe produced an invalid symbol (%d modules)", res.Modules)
	}
	return nil
}
