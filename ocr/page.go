package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/wudi/pagemerge/observability"
)

// DefaultDPI is the raster resolution used for page OCR.
const DefaultDPI = 300

// DefaultLanguages is the joint Simplified Chinese + English model the source
// documents are recognized with.
var DefaultLanguages = []string{"chi_sim", "eng"}

// Rasterizer renders a single page of a PDF file to PNG bytes.
type Rasterizer interface {
	RenderPage(ctx context.Context, path string, index int, dpi int) ([]byte, error)
}

// PageRecognizer reads the text of one PDF page by rasterizing it and running
// OCR on the image.
type PageRecognizer struct {
	Rasterizer Rasterizer
	Engine     Engine
	DPI        int
	Languages  []string
	Logger     observability.Logger
}

// NewPageRecognizer returns a recognizer using DefaultDPI and
// DefaultLanguages.
func NewPageRecognizer(r Rasterizer, e Engine, log observability.Logger) *PageRecognizer {
	return &PageRecognizer{
		Rasterizer: r,
		Engine:     e,
		DPI:        DefaultDPI,
		Languages:  append([]string(nil), DefaultLanguages...),
		Logger:     observability.OrNop(log),
	}
}

// PageText rasterizes page index (0-based) of path and returns the recognized
// text. Errors from the engine are returned as is, so ErrUnavailable survives
// for the caller to inspect.
func (p *PageRecognizer) PageText(ctx context.Context, path string, index int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	log := observability.OrNop(p.Logger).With(observability.Int(observability.KeyPage, index+1))
	dpi := p.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	img, err := p.Rasterizer.RenderPage(ctx, path, index, dpi)
	if err != nil {
		return "", fmt.Errorf("rasterize page %d: %w", index+1, err)
	}
	if len(img) == 0 {
		return "", fmt.Errorf("rasterize page %d: empty image", index+1)
	}
	langs := p.Languages
	if len(langs) == 0 {
		langs = DefaultLanguages
	}
	res, err := p.Engine.Recognize(ctx, NewPageInput(img, index, WithLanguages(langs...), WithDPI(dpi)))
	if err != nil {
		return "", fmt.Errorf("recognize page %d with %s: %w", index+1, p.Engine.Name(), err)
	}
	log.Debug("ocr text recognized",
		observability.String("input", res.InputID),
		observability.Int("chars", len([]rune(res.PlainText))),
		observability.String("preview", preview(res.PlainText, 120)),
	)
	return res.PlainText, nil
}

func preview(s string, limit int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "…"
}
