// Package config builds the run configuration from defaults, the environment
// (optionally seeded from a .env file next to the program) and CLI flags.
// Tool locations are resolved into explicit fields; the process environment
// is never modified.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/wudi/pagemerge/ocr"
	"github.com/wudi/pagemerge/raster"
)

// Default directory layout under the base directory.
const (
	WorkDirName   = "PDF插入"
	InputDirName  = "原始文件"
	OutputDirName = "最终文件"
)

// Environment variable names.
const (
	EnvInputDir   = "PAGEMERGE_INPUT_DIR"
	EnvOutputDir  = "PAGEMERGE_OUTPUT_DIR"
	EnvDPI        = "PAGEMERGE_DPI"
	EnvRasterizer = "PAGEMERGE_RASTERIZER"
	EnvPoppler    = "PAGEMERGE_POPPLER"
	EnvLogLevel   = "PAGEMERGE_LOG_LEVEL"
	EnvLogFormat  = "PAGEMERGE_LOG_FORMAT"
	EnvTessdata   = "TESSDATA_PREFIX"
)

type Config struct {
	BaseDir   string
	InputDir  string
	OutputDir string
	// DesignatedIndex is the 0-based position, in sorted order, of the input
	// that names the outputs.
	DesignatedIndex int

	DPI            int
	Languages      []string
	TessdataPrefix string
	Rasterizer     string
	PopplerPath    string

	LogLevel  string
	LogFormat string
	NoColor   bool
	Quiet     bool
}

// Default returns the configuration for a program located in base.
func Default(base string) Config {
	work := filepath.Join(base, WorkDirName)
	return Config{
		BaseDir:         base,
		InputDir:        filepath.Join(work, InputDirName),
		OutputDir:       filepath.Join(work, OutputDirName),
		DesignatedIndex: 2,
		DPI:             ocr.DefaultDPI,
		Languages:       append([]string(nil), ocr.DefaultLanguages...),
		Rasterizer:      raster.BackendFitz,
		LogLevel:        "info",
		LogFormat:       "console",
	}
}

// BaseDir returns the directory holding the executable, or its parent when
// the executable sits in a "dist" directory.
func BaseDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return baseFromExecutable(exe), nil
}

func baseFromExecutable(exe string) string {
	dir := filepath.Dir(exe)
	if filepath.Base(dir) == "dist" {
		return filepath.Dir(dir)
	}
	return dir
}

// Env looks values up in the process environment first, then in values read
// from a .env file.
type Env struct {
	file map[string]string
}

// LoadEnv reads <base>/.env when it exists.
func LoadEnv(base string) (Env, error) {
	p := filepath.Join(base, ".env")
	if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
		return Env{}, nil
	}
	m, err := godotenv.Read(p)
	if err != nil {
		return Env{}, fmt.Errorf("read %s: %w", p, err)
	}
	return Env{file: m}, nil
}

func (e Env) Lookup(key string) (string, bool) {
	if v, ok := os.LookupEnv(key); ok {
		return v, true
	}
	v, ok := e.file[key]
	return v, ok
}

// Apply overlays environment values onto cfg.
func (e Env) Apply(cfg *Config) error {
	str := func(key string, dst *string) {
		if v, ok := e.Lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str(EnvInputDir, &cfg.InputDir)
	str(EnvOutputDir, &cfg.OutputDir)
	str(EnvRasterizer, &cfg.Rasterizer)
	str(EnvPoppler, &cfg.PopplerPath)
	str(EnvTessdata, &cfg.TessdataPrefix)
	str(EnvLogLevel, &cfg.LogLevel)
	str(EnvLogFormat, &cfg.LogFormat)
	if v, ok := e.Lookup(EnvDPI); ok && strings.TrimSpace(v) != "" {
		dpi, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDPI, err)
		}
		cfg.DPI = dpi
	}
	return nil
}

// ResolveTools fills TessdataPrefix from <base>/tesseract/tessdata and, for
// the poppler rasterizer, PopplerPath from raster.LocatePoppler, when they
// are not set already.
func (c *Config) ResolveTools() error {
	if c.TessdataPrefix == "" && c.BaseDir != "" {
		bundled := filepath.Join(c.BaseDir, "tesseract", "tessdata")
		if fi, err := os.Stat(bundled); err == nil && fi.IsDir() {
			c.TessdataPrefix = bundled
		}
	}
	if strings.EqualFold(c.Rasterizer, raster.BackendPoppler) && c.PopplerPath == "" {
		p, err := raster.LocatePoppler(c.BaseDir)
		if err != nil {
			return err
		}
		c.PopplerPath = p
	}
	return nil
}

// Validate checks values that would otherwise fail late in a run.
func (c Config) Validate() error {
	var errs []error
	if c.InputDir == "" {
		errs = append(errs, errors.New("input directory is required"))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if c.DesignatedIndex < 0 {
		errs = append(errs, fmt.Errorf("designated input index %d is negative", c.DesignatedIndex))
	}
	if c.DPI < 36 || c.DPI > 1200 {
		errs = append(errs, fmt.Errorf("dpi %d outside 36..1200", c.DPI))
	}
	if len(c.Languages) == 0 {
		errs = append(errs, errors.New("at least one OCR language is required"))
	}
	switch strings.ToLower(c.Rasterizer) {
	case raster.BackendFitz, raster.BackendPoppler:
	default:
		errs = append(errs, fmt.Errorf("unknown rasterizer %q", c.Rasterizer))
	}
	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	return errors.Join(errs...)
}
