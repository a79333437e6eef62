package main

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/wudi/pagemerge/config"
	"github.com/wudi/pagemerge/naming"
	"github.com/wudi/pagemerge/observability"
	"github.com/wudi/pagemerge/ocr"
	"github.com/wudi/pagemerge/ocr/tesseract"
	"github.com/wudi/pagemerge/pdfdoc"
	"github.com/wudi/pagemerge/pipeline"
	"github.com/wudi/pagemerge/raster"
	"github.com/wudi/pagemerge/regroup"
	"github.com/wudi/pagemerge/ui"
)

type flags struct {
	base       string
	input      string
	output     string
	designated int
	dpi        int
	rasterizer string
	poppler    string
	tessdata   string
	logLevel   string
	logFormat  string
	noColor    bool
	quiet      bool
}

// newRootCmd builds the command; runFn receives the resolved configuration.
func newRootCmd(runFn func(context.Context, config.Config) error) *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "pagemerge",
		Short: "Merge PDFs page by page and name each output after its applicant",
		Long: `pagemerge reads every PDF in the input directory in name order and writes
one output per page index: output N holds page N of every input that has it.
Outputs are named after the applicant printed on the matching page of the
designated (by default the third) input, read from the text layer or by OCR.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.NoArgs(cmd, args); err != nil {
				return usageError{err}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := buildConfig(cmd, f)
			if err != nil {
				return usageError{err}
			}
			return runFn(cmd.Context(), cfg)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError{err} })

	fl := cmd.Flags()
	fl.StringVar(&f.base, "base", "", "base directory (default: the program's directory)")
	fl.StringVarP(&f.input, "input", "i", "", "input directory (default: <base>/PDF插入/原始文件)")
	fl.StringVarP(&f.output, "output", "o", "", "output directory (default: <base>/PDF插入/最终文件)")
	fl.IntVar(&f.designated, "designated", 3, "position of the input that names the outputs, 1-based")
	fl.IntVar(&f.dpi, "dpi", ocr.DefaultDPI, "render resolution for OCR")
	fl.StringVar(&f.rasterizer, "rasterizer", raster.BackendFitz, "page renderer for OCR: fitz or poppler")
	fl.StringVar(&f.poppler, "poppler", "", "path to pdftoppm (poppler rasterizer)")
	fl.StringVar(&f.tessdata, "tessdata", "", "tesseract tessdata directory")
	fl.StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	fl.StringVar(&f.logFormat, "log-format", "console", "log format: console or json")
	fl.BoolVar(&f.noColor, "no-color", false, "disable colored output")
	fl.BoolVarP(&f.quiet, "quiet", "q", false, "only print errors")
	return cmd
}

// buildConfig layers defaults, environment and explicitly set flags.
func buildConfig(cmd *cobra.Command, f flags) (config.Config, error) {
	base := f.base
	if base == "" {
		b, err := config.BaseDir()
		if err != nil {
			return config.Config{}, err
		}
		base = b
	}
	cfg := config.Default(base)
	env, err := config.LoadEnv(base)
	if err != nil {
		return cfg, err
	}
	if err := env.Apply(&cfg); err != nil {
		return cfg, err
	}

	set := cmd.Flags().Changed
	if set("input") {
		cfg.InputDir = f.input
	}
	if set("output") {
		cfg.OutputDir = f.output
	}
	if set("designated") {
		cfg.DesignatedIndex = f.designated - 1
	}
	if set("dpi") {
		cfg.DPI = f.dpi
	}
	if set("rasterizer") {
		cfg.Rasterizer = f.rasterizer
	}
	if set("poppler") {
		cfg.PopplerPath = f.poppler
	}
	if set("tessdata") {
		cfg.TessdataPrefix = f.tessdata
	}
	if set("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if set("log-format") {
		cfg.LogFormat = f.logFormat
	}
	cfg.NoColor = f.noColor
	cfg.Quiet = f.quiet

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if err := cfg.ResolveTools(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	console := ui.NewConsole(cfg.Quiet, cfg.NoColor)
	level := cfg.LogLevel
	if cfg.Quiet {
		level = "error"
	}
	log := observability.NewZerolog(observability.LogConfig{
		Level:   level,
		Format:  cfg.LogFormat,
		NoColor: cfg.NoColor,
	})

	console.Section("pagemerge " + version)
	console.Info("input:  %s", cfg.InputDir)
	console.Info("output: %s", cfg.OutputDir)

	rz, err := raster.New(cfg.Rasterizer, cfg.PopplerPath)
	if err != nil {
		return err
	}
	engine := tesseract.New(tesseract.Config{TessdataPrefix: cfg.TessdataPrefix, Languages: cfg.Languages})
	recognizer := ocr.NewPageRecognizer(rz, engine, log)
	recognizer.DPI = cfg.DPI
	recognizer.Languages = cfg.Languages

	spin := console.NewSpinner()
	checker := checkerFunc(func(ctx context.Context) error {
		spin.Start("checking OCR engine")
		err := engine.Check(ctx)
		spin.Stop()
		if err != nil {
			return err
		}
		log.Info("ocr engine ready",
			observability.String("engine", engine.Name()),
			observability.String("version", engine.Version()),
			observability.Strings("languages", cfg.Languages),
		)
		return nil
	})

	runner := &pipeline.Runner{
		Options: pipeline.Options{
			InputDir:        cfg.InputDir,
			OutputDir:       cfg.OutputDir,
			DesignatedIndex: cfg.DesignatedIndex,
		},
		Checker:   checker,
		Resolver:  naming.NewResolver(recognizer, log),
		Regrouper: regroup.New(pdfdoc.Merger{Conf: pdfdoc.DefaultConfiguration()}, log),
		OnInputs: func(files []pipeline.InputFile) {
			printInputs(console, files)
		},
		Progress: func(total int) pipeline.Progress {
			return console.NewProgress(total, "merging")
		},
		Logger: log,
	}
	sum, err := runner.Run(ctx)
	if err != nil {
		if errors.Is(err, ocr.ErrUnavailable) {
			console.Error("OCR is not available: install Tesseract with the chi_sim and eng languages, or pass --tessdata")
		}
		return err
	}
	printSummary(console, sum)
	return nil
}

type checkerFunc func(context.Context) error

func (c checkerFunc) Check(ctx context.Context) error { return c(ctx) }

// printInputs lists the inputs in processing order with their size, marking
// the one that names the outputs.
func printInputs(c *ui.Console, files []pipeline.InputFile) {
	c.Info("%d input files:", len(files))
	for i, f := range files {
		mark := ""
		if f.Designated {
			mark = "  <- names the outputs"
		}
		c.Info("%2d. %s (%.2f MB)%s", i+1, filepath.Base(f.Path), float64(f.Size)/(1<<20), mark)
	}
}

func printSummary(c *ui.Console, sum *pipeline.Summary) {
	c.Section("Summary")
	for _, o := range sum.Outputs {
		name := filepath.Base(o.Path)
		took := o.Elapsed.Round(time.Millisecond)
		if o.Name.Found() {
			c.Success("%s (%d pages from %s, %s, %s)", name, len(o.Members), strings.Join(o.Members, ", "), o.Name.Source, took)
		} else {
			c.Warning("%s (%d pages from %s, no applicant found, %s)", name, len(o.Members), strings.Join(o.Members, ", "), took)
		}
	}
	c.Success("%d outputs, %d named, in %s", len(sum.Outputs), sum.Named, sum.Elapsed.Round(time.Millisecond))
	if len(sum.Outputs) > 0 {
		c.Info("written to %s", filepath.Dir(sum.Outputs[0].Path))
	}
}
