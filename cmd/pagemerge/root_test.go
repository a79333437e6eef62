package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wudi/pagemerge/config"
	"github.com/wudi/pagemerge/naming"
	"github.com/wudi/pagemerge/pipeline"
	"github.com/wudi/pagemerge/ui"
)

func execute(t *testing.T, args ...string) (config.Config, error) {
	t.Helper()
	var got config.Config
	cmd := newRootCmd(func(_ context.Context, cfg config.Config) error {
		got = cfg
		return nil
	})
	cmd.SetArgs(args)
	cmd.SetOut(&discard{})
	cmd.SetErr(&discard{})
	err := cmd.Execute()
	return got, err
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestDefaultsUnderBase(t *testing.T) {
	base := t.TempDir()
	cfg, err := execute(t, "--base", base)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "PDF插入", "原始文件"), cfg.InputDir)
	assert.Equal(t, filepath.Join(base, "PDF插入", "最终文件"), cfg.OutputDir)
	assert.Equal(t, 2, cfg.DesignatedIndex)
	assert.Equal(t, 300, cfg.DPI)
	assert.Equal(t, "fitz", cfg.Rasterizer)
}

func TestFlagsOverrideEnvFile(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, ".env"),
		[]byte("PAGEMERGE_DPI=200\nPAGEMERGE_LOG_FORMAT=json\n"), 0o644))

	cfg, err := execute(t, "--base", base, "--dpi", "150", "--designated", "1", "-i", "in", "-o", "out", "--quiet")
	require.NoError(t, err)
	assert.Equal(t, 150, cfg.DPI)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 0, cfg.DesignatedIndex)
	assert.Equal(t, "in", cfg.InputDir)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.True(t, cfg.Quiet)
}

func TestUsageErrors(t *testing.T) {
	base := t.TempDir()
	for name, args := range map[string][]string{
		"unknown flag":       {"--bogus"},
		"bad int":            {"--dpi", "high"},
		"dpi out of range":   {"--dpi", "5"},
		"unknown rasterizer": {"--rasterizer", "gs"},
		"designated zero":    {"--designated", "0"},
		"positional arg":     {"extra"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := execute(t, append([]string{"--base", base}, args...)...)
			require.Error(t, err)
			var ue usageError
			assert.True(t, errors.As(err, &ue), "%v", err)
		})
	}
}

func TestRunErrorIsNotUsage(t *testing.T) {
	cmd := newRootCmd(func(context.Context, config.Config) error {
		return errors.New("write failed")
	})
	cmd.SetArgs([]string{"--base", t.TempDir()})
	err := cmd.Execute()
	require.Error(t, err)
	var ue usageError
	assert.False(t, errors.As(err, &ue))
}

func TestPrintInputsMarksDesignated(t *testing.T) {
	var buf bytes.Buffer
	printInputs(ui.NewWriterConsole(&buf), []pipeline.InputFile{
		{Path: "/in/a.pdf", Size: 1 << 20},
		{Path: "/in/b.pdf", Size: 512 << 10},
		{Path: "/in/c.pdf", Size: 3 << 19, Designated: true},
	})
	out := buf.String()
	assert.Contains(t, out, "3 input files:")
	assert.Contains(t, out, " 1. a.pdf (1.00 MB)\n")
	assert.Contains(t, out, " 2. b.pdf (0.50 MB)\n")
	assert.Contains(t, out, " 3. c.pdf (1.50 MB)  <- names the outputs\n")
}

func TestPrintSummaryListsMembersAndTiming(t *testing.T) {
	var buf bytes.Buffer
	printSummary(ui.NewWriterConsole(&buf), &pipeline.Summary{
		Outputs: []pipeline.Output{
			{Path: "/out/甲.pdf", Name: naming.Name{Label: "甲", Source: naming.SourceText}, Members: []string{"a.pdf", "c.pdf"}, Elapsed: 120 * time.Millisecond},
			{Path: "/out/page-2-merged.pdf", Members: []string{"a.pdf"}, Elapsed: 40 * time.Millisecond},
		},
		Named:   1,
		Elapsed: time.Second,
	})
	out := buf.String()
	assert.Contains(t, out, "甲.pdf (2 pages from a.pdf, c.pdf, text, 120ms)")
	assert.Contains(t, out, "page-2-merged.pdf (1 pages from a.pdf, no applicant found, 40ms)")
	assert.Contains(t, out, "2 outputs, 1 named, in 1s")
	assert.Contains(t, out, "written to /out")
}
