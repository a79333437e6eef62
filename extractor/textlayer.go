package extractor

import (
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

// TextLayer reads the embedded text of a PDF page by page.
type TextLayer struct {
	path string
	file *os.File
	r    *pdf.Reader
}

// Open parses the PDF at path for text extraction. Close releases the file.
func Open(path string) (*TextLayer, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	return &TextLayer{path: path, file: f, r: r}, nil
}

// PageText returns the plain text of page index (0-based). A page without a
// text layer yields "" and no error.
func (t *TextLayer) PageText(index int) (string, error) {
	n := t.r.NumPage()
	if index < 0 || index >= n {
		return "", fmt.Errorf("page %d out of range (%d pages)", index+1, n)
	}
	p := t.r.Page(index + 1)
	if p.V.IsNull() {
		return "", nil
	}
	fonts := make(map[string]*pdf.Font)
	for _, name := range p.Fonts() {
		f := p.Font(name)
		fonts[name] = &f
	}
	text, err := p.GetPlainText(fonts)
	if err != nil {
		return "", fmt.Errorf("read page %d of %s: %w", index+1, t.path, err)
	}
	return text, nil
}

func (t *TextLayer) Close() error {
	if t.file == nil {
		return nil
	}
	err := t.file.Close()
	t.file = nil
	return err
}
