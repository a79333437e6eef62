package raster

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// Poppler renders pages by running pdftoppm once per page.
type Poppler struct {
	Bin string
}

func (p *Poppler) RenderPage(ctx context.Context, path string, index int, dpi int) ([]byte, error) {
	tmp, err := os.MkdirTemp("", "pagemerge-raster-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	prefix := filepath.Join(tmp, "page")
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.Bin, popplerArgs(path, prefix, index, dpi)...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdftoppm page %d: %w: %s", index+1, err, strings.TrimSpace(stderr.String()))
	}
	data, err := os.ReadFile(prefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("read rendered page %d: %w", index+1, err)
	}
	return data, nil
}

func popplerArgs(path, prefix string, index, dpi int) []string {
	page := strconv.Itoa(index + 1)
	return []string{
		"-f", page,
		"-l", page,
		"-r", strconv.Itoa(dpi),
		"-png",
		"-singlefile",
		path,
		prefix,
	}
}

// PopplerDirs lists the directories searched for pdftoppm, relative to base
// first, then the usual Windows install locations.
func PopplerDirs(base string) []string {
	var dirs []string
	if base != "" {
		dirs = append(dirs,
			filepath.Join(base, "poppler", "poppler-24.08.0", "Library", "bin"),
			filepath.Join(base, "poppler", "bin"),
		)
	}
	return append(dirs, "C:/poppler/bin", "C:/Program Files/poppler/bin")
}

// LocatePoppler returns the path of pdftoppm from PopplerDirs(base), falling
// back to PATH.
func LocatePoppler(base string) (string, error) {
	name := "pdftoppm"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	for _, dir := range PopplerDirs(base) {
		candidate := filepath.Join(dir, name)
		if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
			return candidate, nil
		}
	}
	if p, err := exec.LookPath("pdftoppm"); err == nil {
		return p, nil
	}
	return "", ErrPopplerNotFound
}
