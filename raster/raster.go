// Package raster renders single PDF pages to PNG for OCR.
package raster

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrPopplerNotFound is returned by LocatePoppler when no pdftoppm binary is
// reachable.
var ErrPopplerNotFound = errors.New("raster: pdftoppm not found")

// Rasterizer renders page index (0-based) of the PDF at path to PNG bytes.
type Rasterizer interface {
	RenderPage(ctx context.Context, path string, index int, dpi int) ([]byte, error)
}

// Backend names accepted by New.
const (
	BackendFitz    = "fitz"
	BackendPoppler = "poppler"
)

// New returns the rasterizer for backend. popplerBin is only used by the
// poppler backend.
func New(backend, popplerBin string) (Rasterizer, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendFitz:
		return Fitz{}, nil
	case BackendPoppler:
		if popplerBin == "" {
			return nil, ErrPopplerNotFound
		}
		return &Poppler{Bin: popplerBin}, nil
	default:
		return nil, fmt.Errorf("raster: unknown backend %q", backend)
	}
}
