// Package pdfdoc holds the input documents of a run. Documents are parsed
// once with pdfcpu and then read by page index only, so any page can be
// copied in any order without a shared cursor.
package pdfdoc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/wudi/pagemerge/observability"
)

var disableConfigDir sync.Once

// DefaultConfiguration returns a relaxed pdfcpu configuration that does not
// touch the user's pdfcpu config directory.
func DefaultConfiguration() *model.Configuration {
	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Document is one opened input PDF.
type Document struct {
	path string
	file *os.File
	ctx  *model.Context
}

// Open reads and validates the PDF at path. The file handle is kept until
// Close.
func Open(path string, conf *model.Configuration) (*Document, error) {
	if conf == nil {
		conf = DefaultConfiguration()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &Document{path: path, file: f, ctx: ctx}, nil
}

// Name is the base file name, used in logs and summaries.
func (d *Document) Name() string { return filepath.Base(d.path) }

func (d *Document) PageCount() int { return d.ctx.PageCount }

// Page returns page index (0-based) as a standalone single-page PDF.
func (d *Document) Page(ctx context.Context, index int) (io.ReadSeeker, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if index < 0 || index >= d.ctx.PageCount {
		return nil, fmt.Errorf("%s: page %d out of range (%d pages)", d.Name(), index+1, d.ctx.PageCount)
	}
	r, err := api.ExtractPage(d.ctx, index+1)
	if err != nil {
		return nil, fmt.Errorf("%s: extract page %d: %w", d.Name(), index+1, err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s: buffer page %d: %w", d.Name(), index+1, err)
	}
	return bytes.NewReader(data), nil
}

func (d *Document) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

// Set owns every input document of a run.
type Set struct {
	docs []*Document
	log  observability.Logger
}

// OpenAll opens paths in order. If any document fails to open, the ones
// already opened are closed before the error is returned.
func OpenAll(ctx context.Context, paths []string, conf *model.Configuration, log observability.Logger) (*Set, error) {
	if conf == nil {
		conf = DefaultConfiguration()
	}
	s := &Set{log: observability.OrNop(log)}
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			s.Close()
			return nil, err
		}
		d, err := Open(p, conf)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.docs = append(s.docs, d)
		s.log.Debug("input opened",
			observability.String(observability.KeyFile, d.Name()),
			observability.Int("pages", d.PageCount()),
		)
	}
	return s, nil
}

// Docs returns the documents in open order.
func (s *Set) Docs() []*Document { return s.docs }

// Close releases every handle. Errors are logged and dropped so that one bad
// handle never keeps the others open.
func (s *Set) Close() {
	for _, d := range s.docs {
		if err := d.Close(); err != nil {
			s.log.Warn("close input failed",
				observability.String(observability.KeyFile, d.Name()),
				observability.Err(err),
			)
		}
	}
}

// ErrNoPages is returned by Merger.Assemble for an empty page list.
var ErrNoPages = errors.New("pdfdoc: no pages to assemble")

// Merger concatenates single-page PDFs into one output document.
type Merger struct {
	Conf *model.Configuration
}

func (m Merger) Assemble(ctx context.Context, pages []io.ReadSeeker, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(pages) == 0 {
		return ErrNoPages
	}
	conf := m.Conf
	if conf == nil {
		conf = DefaultConfiguration()
	}
	if err := api.MergeRaw(pages, w, false, conf); err != nil {
		return fmt.Errorf("merge %d pages: %w", len(pages), err)
	}
	return nil
}
