// Package testpdf builds small, well-formed PDF files for tests. Each page
// carries one line of text so page identity survives a round trip through
// page copy and text extraction.
package testpdf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Build returns a PDF with one page per entry of texts, set in Helvetica.
// Texts must be printable ASCII without parentheses or backslashes.
func Build(texts ...string) []byte {
	shows := make([]string, len(texts))
	for i, text := range texts {
		shows[i] = "(" + text + ")"
	}
	return build(shows, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>", nil)
}

// BuildCJK returns a PDF whose pages use a non-embedded Type0 font with
// Identity-H encoding and a ToUnicode map, the way CJK forms are usually
// produced. Texts may hold any BMP characters.
func BuildCJK(texts ...string) []byte {
	codes := make(map[rune]int)
	var order []rune
	shows := make([]string, len(texts))
	for i, text := range texts {
		var hex strings.Builder
		for _, r := range text {
			c, ok := codes[r]
			if !ok {
				c = len(order) + 1
				codes[r] = c
				order = append(order, r)
			}
			fmt.Fprintf(&hex, "%04X", c)
		}
		shows[i] = "<" + hex.String() + ">"
	}

	var cmap strings.Builder
	cmap.WriteString("begincmap\n1 begincodespacerange\n<0000> <FFFF>\nendcodespacerange\n")
	fmt.Fprintf(&cmap, "%d beginbfchar\n", len(order))
	for i, r := range order {
		fmt.Fprintf(&cmap, "<%04X> <%04X>\n", i+1, r)
	}
	cmap.WriteString("endbfchar\nendcmap")

	// Font objects follow the pages: descriptor, CID font, ToUnicode.
	next := pageObj(len(texts))
	font := fmt.Sprintf("<< /Type /Font /Subtype /Type0 /BaseFont /STSong-Light /Encoding /Identity-H /DescendantFonts [%d 0 R] /ToUnicode %d 0 R >>", next+1, next+2)
	extra := []string{
		"<< /Type /FontDescriptor /FontName /STSong-Light /Flags 6 /FontBBox [-25 -254 1000 880] /ItalicAngle 0 /Ascent 880 /Descent -120 /CapHeight 880 /StemV 93 >>",
		fmt.Sprintf("<< /Type /Font /Subtype /CIDFontType0 /BaseFont /STSong-Light /CIDSystemInfo << /Registry (Adobe) /Ordering (Identity) /Supplement 0 >> /FontDescriptor %d 0 R /DW 1000 >>", next),
		stream(cmap.String()),
	}
	return build(shows, font, extra)
}

// build writes catalog (1), pages (2), font (3), then a page and content
// stream per show operand, then extra objects numbered from pageObj(len(shows)).
func build(shows []string, font string, extra []string) []byte {
	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	kids := make([]string, len(shows))
	for i := range shows {
		kids[i] = fmt.Sprintf("%d 0 R", pageObj(i))
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(shows)))
	obj(font)
	for i, show := range shows {
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 300 200] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", pageObj(i)+1))
		obj(stream(fmt.Sprintf("BT /F1 14 Tf 20 100 Td %s Tj ET", show)))
	}
	for _, body := range extra {
		obj(body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

func stream(content string) string {
	return fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content)
}

func pageObj(i int) int { return 4 + 2*i }

// Write stores Build(texts...) as dir/name and returns the path.
func Write(t testing.TB, dir, name string, texts ...string) string {
	t.Helper()
	return write(t, dir, name, Build(texts...))
}

// WriteCJK stores BuildCJK(texts...) as dir/name and returns the path.
func WriteCJK(t testing.TB, dir, name string, texts ...string) string {
	t.Helper()
	return write(t, dir, name, BuildCJK(texts...))
}

func write(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}
