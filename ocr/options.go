package ocr

import "fmt"

// InputOption mutates an OCR input built from a rasterized page.
type InputOption func(*Input)

// WithLanguages sets language hints on the OCR input.
func WithLanguages(langs ...string) InputOption {
	return func(in *Input) { in.Languages = append([]string(nil), langs...) }
}

// WithDPI overrides the DPI value on the OCR input.
func WithDPI(dpi int) InputOption {
	return func(in *Input) { in.DPI = dpi }
}

// NewPageInput wraps a PNG rendering of page pageIndex (0-based). The ID is
// the 1-based page label so results can be correlated in logs.
func NewPageInput(png []byte, pageIndex int, opts ...InputOption) Input {
	in := Input{
		ID:    fmt.Sprintf("page-%d", pageIndex+1),
		Image: png,
	}
	for _, opt := range opts {
		opt(&in)
	}
	return in
}
