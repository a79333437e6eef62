package naming

import (
	"context"
	"errors"
	"regexp"

	"github.com/wudi/pagemerge/observability"
	"github.com/wudi/pagemerge/ocr"
)

// Source records which path produced a Name.
type Source string

const (
	SourceNone Source = ""
	SourceText Source = "text"
	SourceOCR  Source = "ocr"
)

// Name is the applicant label found on one page, if any.
type Name struct {
	Label  string
	Source Source
}

// Found reports whether a label was extracted.
func (n Name) Found() bool { return n.Label != "" }

// TextSource yields the embedded text of a page by 0-based index.
type TextSource interface {
	PageText(index int) (string, error)
}

// PageOCR yields OCR text for one page of the PDF at path.
type PageOCR interface {
	PageText(ctx context.Context, path string, index int) (string, error)
}

// Resolver extracts one Name per page of a document, trying the text layer
// first and OCR second.
type Resolver struct {
	Patterns []*regexp.Regexp
	OCR      PageOCR
	Logger   observability.Logger
}

// NewResolver returns a Resolver using DefaultPatterns.
func NewResolver(o PageOCR, log observability.Logger) *Resolver {
	return &Resolver{Patterns: DefaultPatterns(), OCR: o, Logger: observability.OrNop(log)}
}

// Resolve returns pages names for the document at path. Misses are zero
// Names. Only OCR unavailability (ocr.ErrUnavailable) and cancellation are
// returned as errors; every other per-page failure is logged and treated as
// a miss.
func (r *Resolver) Resolve(ctx context.Context, path string, pages int, text TextSource) ([]Name, error) {
	log := observability.OrNop(r.Logger)
	patterns := r.Patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns()
	}
	names := make([]Name, pages)
	for i := 0; i < pages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pageLog := log.With(observability.Int(observability.KeyPage, i+1))
		n, err := r.resolvePage(ctx, path, i, text, patterns, pageLog)
		if err != nil {
			return nil, err
		}
		names[i] = n
		if n.Found() {
			pageLog.Info("applicant found",
				observability.String(observability.KeyApplicant, n.Label),
				observability.String(observability.KeySource, string(n.Source)),
			)
		} else {
			pageLog.Warn("applicant not found")
		}
	}
	return names, nil
}

func (r *Resolver) resolvePage(ctx context.Context, path string, index int, text TextSource, patterns []*regexp.Regexp, log observability.Logger) (Name, error) {
	if text != nil {
		s, err := text.PageText(index)
		if err != nil {
			log.Warn("text layer unreadable", observability.Err(err))
		} else if label, ok := ExtractLabel(s, patterns); ok {
			return Name{Label: label, Source: SourceText}, nil
		}
	}
	if r.OCR == nil {
		return Name{}, nil
	}
	log.Debug("falling back to ocr")
	s, err := r.OCR.PageText(ctx, path, index)
	if err != nil {
		if errors.Is(err, ocr.ErrUnavailable) || ctx.Err() != nil {
			return Name{}, err
		}
		log.Warn("ocr failed", observability.Err(err))
		return Name{}, nil
	}
	if label, ok := ExtractLabel(s, patterns); ok {
		return Name{Label: label, Source: SourceOCR}, nil
	}
	return Name{}, nil
}
