// Package pipeline runs one merge: check OCR, collect the inputs, name the
// outputs from the designated input and write one PDF per page index.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wudi/pagemerge/extractor"
	"github.com/wudi/pagemerge/naming"
	"github.com/wudi/pagemerge/observability"
	"github.com/wudi/pagemerge/ocr"
	"github.com/wudi/pagemerge/pdfdoc"
	"github.com/wudi/pagemerge/regroup"
)

var (
	// ErrNoInputs is returned when the input directory holds no PDF.
	ErrNoInputs = errors.New("pipeline: no input pdf files")
	// ErrMissingInput is returned before any output is written when an input
	// path does not exist.
	ErrMissingInput = errors.New("pipeline: input file missing")
	// ErrWriteOutput is returned when an output cannot be built or written.
	// Outputs written before the failure remain on disk.
	ErrWriteOutput = errors.New("pipeline: write output")
)

// Inputs is the opened input set of a run.
type Inputs interface {
	Sources() []regroup.Source
	Close()
}

// TextLayer is the embedded text of the designated input.
type TextLayer interface {
	naming.TextSource
	Close() error
}

// Progress receives one step per written output.
type Progress interface {
	Describe(desc string)
	Add(n int)
	Finish()
}

// Options are the run parameters.
type Options struct {
	InputDir  string
	OutputDir string
	// Inputs, when set, replaces the directory scan. Paths are used in the
	// given order.
	Inputs          []string
	DesignatedIndex int
}

// Runner wires the stages of a run. Open, OpenText and Regrouper default to
// the pdfcpu and text layer implementations; a nil Checker or Resolver skips
// that stage.
type Runner struct {
	Options   Options
	Checker   ocr.Checker
	Resolver  *naming.Resolver
	Regrouper *regroup.Regrouper
	Open      func(ctx context.Context, paths []string) (Inputs, error)
	OpenText  func(path string) (TextLayer, error)
	// OnInputs, when set, receives the verified inputs before any is opened.
	OnInputs func(files []InputFile)
	// Progress, when set, is called once with the number of outputs.
	Progress func(total int) Progress
	Logger   observability.Logger
}

// InputFile is one verified input, in processing order.
type InputFile struct {
	Path       string
	Size       int64
	Designated bool
}

// Output describes one written file.
type Output struct {
	Index   int
	Path    string
	Name    naming.Name
	Members []string
	Elapsed time.Duration
}

// Summary is the result of a successful run.
type Summary struct {
	RunID   string
	Inputs  []InputFile
	Outputs []Output
	Named   int
	Elapsed time.Duration
}

// Run executes the pipeline. Every returned error is fatal for the run.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	sum := &Summary{RunID: uuid.NewString()}
	log := observability.OrNop(r.Logger).With(observability.String(observability.KeyRunID, sum.RunID))

	if r.Checker != nil {
		if err := r.Checker.Check(ctx); err != nil {
			return nil, err
		}
		log.Debug("ocr engine ready")
	}

	paths, err := r.inputPaths()
	if err != nil {
		return nil, err
	}
	for i, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMissingInput, p, err)
		}
		sum.Inputs = append(sum.Inputs, InputFile{Path: p, Size: fi.Size(), Designated: i == r.Options.DesignatedIndex})
	}
	log.Info("inputs collected", observability.Strings("inputs", baseNames(paths)))
	if r.OnInputs != nil {
		r.OnInputs(sum.Inputs)
	}

	if err := os.MkdirAll(r.Options.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %w", ErrWriteOutput, r.Options.OutputDir, err)
	}

	open := r.Open
	if open == nil {
		open = openPDFs(log)
	}
	in, err := open(ctx, paths)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	sources := in.Sources()

	names, err := r.resolveNames(ctx, paths, sources, log)
	if err != nil {
		return nil, err
	}

	groups := regroup.Groups(regroup.Counts(sources))
	var progress Progress
	if r.Progress != nil {
		progress = r.Progress(len(groups))
	}
	for f, idx := range naming.Duplicates(names, len(groups)) {
		pages := make([]string, len(idx))
		for i, p := range idx {
			pages[i] = fmt.Sprint(p + 1)
		}
		log.Warn("several outputs share a name, the last one wins",
			observability.String(observability.KeyOutput, f),
			observability.Strings("pages", pages),
		)
	}

	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := r.writeGroup(ctx, sources, names, g, progress, log)
		if err != nil {
			return nil, err
		}
		if out.Name.Found() {
			sum.Named++
		}
		sum.Outputs = append(sum.Outputs, out)
	}
	if progress != nil {
		progress.Finish()
	}

	sum.Elapsed = time.Since(start)
	log.Info("merge complete",
		observability.Int("outputs", len(sum.Outputs)),
		observability.Int("named", sum.Named),
		observability.Duration(observability.KeyElapsed, sum.Elapsed),
	)
	return sum, nil
}

func (r *Runner) inputPaths() ([]string, error) {
	if len(r.Options.Inputs) > 0 {
		return append([]string(nil), r.Options.Inputs...), nil
	}
	entries, err := os.ReadDir(r.Options.InputDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist", ErrNoInputs, r.Options.InputDir)
		}
		return nil, fmt.Errorf("read input dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		paths = append(paths, filepath.Join(r.Options.InputDir, e.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoInputs, r.Options.InputDir)
	}
	sort.Strings(paths)
	return paths, nil
}

// resolveNames reads one applicant per page of the designated input. With
// too few inputs, or without a resolver, every output falls back to its
// positional name.
func (r *Runner) resolveNames(ctx context.Context, paths []string, sources []regroup.Source, log observability.Logger) ([]naming.Name, error) {
	idx := r.Options.DesignatedIndex
	if idx < 0 || idx >= len(sources) {
		log.Warn("not enough inputs to name outputs, using page numbers",
			observability.Int("inputs", len(sources)),
			observability.Int("designated", idx+1),
		)
		return nil, nil
	}
	if r.Resolver == nil {
		return nil, nil
	}
	path := paths[idx]
	dlog := log.With(observability.String(observability.KeyFile, filepath.Base(path)))
	dlog.Info("reading applicant names")

	openText := r.OpenText
	if openText == nil {
		openText = openTextLayer
	}
	var text naming.TextSource
	tl, err := openText(path)
	if err != nil {
		dlog.Warn("text layer unavailable, using ocr only", observability.Err(err))
	} else {
		defer tl.Close()
		text = tl
	}

	resolver := *r.Resolver
	resolver.Logger = dlog
	return resolver.Resolve(ctx, path, sources[idx].PageCount(), text)
}

func (r *Runner) writeGroup(ctx context.Context, sources []regroup.Source, names []naming.Name, g regroup.Group, progress Progress, log observability.Logger) (Output, error) {
	filename := naming.Filename(names, g.Index)
	path := filepath.Join(r.Options.OutputDir, filename)
	out := Output{Index: g.Index, Path: path}
	if g.Index < len(names) {
		out.Name = names[g.Index]
	}
	if progress != nil {
		progress.Describe(filename)
	}

	start := time.Now()

	// The output is built under a temporary name and renamed into place, so a
	// failed build never touches an existing file of the same name.
	f, err := os.CreateTemp(r.Options.OutputDir, ".pagemerge-*.tmp")
	if err != nil {
		return out, fmt.Errorf("%w: %s: %w", ErrWriteOutput, filename, err)
	}
	tmp := f.Name()
	rg := r.Regrouper
	if rg == nil {
		rg = regroup.New(pdfdoc.Merger{}, log)
	}
	members, err := rg.Build(ctx, sources, g, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp, path)
	}
	if err != nil {
		os.Remove(tmp)
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		return out, fmt.Errorf("%w: %s: %w", ErrWriteOutput, filename, err)
	}
	out.Members = members
	out.Elapsed = time.Since(start)

	log.Info("output written",
		observability.String(observability.KeyOutput, filename),
		observability.Int(observability.KeyPage, g.Index+1),
		observability.Strings("members", members),
		observability.Duration(observability.KeyElapsed, out.Elapsed),
	)
	if progress != nil {
		progress.Add(1)
	}
	return out, nil
}

func baseNames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

type pdfInputs struct {
	set     *pdfdoc.Set
	sources []regroup.Source
}

func (p *pdfInputs) Sources() []regroup.Source { return p.sources }
func (p *pdfInputs) Close()                    { p.set.Close() }

func openPDFs(log observability.Logger) func(context.Context, []string) (Inputs, error) {
	return func(ctx context.Context, paths []string) (Inputs, error) {
		set, err := pdfdoc.OpenAll(ctx, paths, nil, log)
		if err != nil {
			return nil, err
		}
		docs := set.Docs()
		sources := make([]regroup.Source, len(docs))
		for i, d := range docs {
			sources[i] = d
		}
		return &pdfInputs{set: set, sources: sources}, nil
	}
}

func openTextLayer(path string) (TextLayer, error) {
	tl, err := extractor.Open(path)
	if err != nil {
		return nil, err
	}
	return tl, nil
}
