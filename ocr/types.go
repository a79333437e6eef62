package ocr

import (
	"context"
	"errors"
)

// ErrUnavailable marks an OCR backend that is not installed or cannot load
// its language data.
var ErrUnavailable = errors.New("ocr: engine unavailable")

// Input is a single PNG image submitted for OCR.
type Input struct {
	// ID is echoed back in the Result and used in error messages.
	ID    string
	Image []byte
	// DPI carries the resolution of the rasterized page; zero means unknown.
	DPI int
	// Languages lists trained-data names (e.g. "chi_sim", "eng") in priority
	// order.
	Languages []string
}

// Result captures OCR output for a single input image.
type Result struct {
	InputID   string
	PlainText string
}

// Engine is the simplest OCR provider contract: one image in, one result out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Result, error)
}

// Checker is implemented by engines that can verify their backend before a
// run starts. Check returns an error wrapping ErrUnavailable on failure.
type Checker interface {
	Check(ctx context.Context) error
}
