package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRasterizer struct {
	img   []byte
	err   error
	calls []int
	dpi   int
}

func (s *stubRasterizer) RenderPage(_ context.Context, _ string, index int, dpi int) ([]byte, error) {
	s.calls = append(s.calls, index)
	s.dpi = dpi
	return s.img, s.err
}

type stubEngine struct {
	text  string
	err   error
	last  Input
	calls int
}

func (s *stubEngine) Name() string { return "stub" }

func (s *stubEngine) Recognize(_ context.Context, in Input) (Result, error) {
	s.calls++
	s.last = in
	if s.err != nil {
		return Result{}, s.err
	}
	return Result{InputID: in.ID, PlainText: s.text}, nil
}

func TestPageRecognizerPassesPageAndSettings(t *testing.T) {
	r := &stubRasterizer{img: []byte{0x89, 'P', 'N', 'G'}}
	e := &stubEngine{text: "申请人：张三，男"}
	p := NewPageRecognizer(r, e, nil)

	got, err := p.PageText(context.Background(), "c.pdf", 1)
	require.NoError(t, err)
	assert.Equal(t, "申请人：张三，男", got)
	assert.Equal(t, []int{1}, r.calls)
	assert.Equal(t, DefaultDPI, r.dpi)
	assert.Equal(t, "page-2", e.last.ID)
	assert.Equal(t, []string{"chi_sim", "eng"}, e.last.Languages)
	assert.Equal(t, DefaultDPI, e.last.DPI)
	assert.Equal(t, 1, e.calls, "each page is recognized once")
}

func TestPageRecognizerCustomDPIAndLanguages(t *testing.T) {
	r := &stubRasterizer{img: []byte{1}}
	e := &stubEngine{}
	p := NewPageRecognizer(r, e, nil)
	p.DPI = 150
	p.Languages = []string{"eng"}

	_, err := p.PageText(context.Background(), "c.pdf", 0)
	require.NoError(t, err)
	assert.Equal(t, 150, r.dpi)
	assert.Equal(t, 150, e.last.DPI)
	assert.Equal(t, []string{"eng"}, e.last.Languages)
}

func TestPageRecognizerKeepsUnavailable(t *testing.T) {
	p := NewPageRecognizer(&stubRasterizer{img: []byte{1}}, &stubEngine{err: ErrUnavailable}, nil)
	_, err := p.PageText(context.Background(), "c.pdf", 0)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestPageRecognizerRasterFailure(t *testing.T) {
	r := &stubRasterizer{err: errors.New("no poppler")}
	e := &stubEngine{}
	p := NewPageRecognizer(r, e, nil)

	_, err := p.PageText(context.Background(), "c.pdf", 0)
	require.Error(t, err)
	assert.Zero(t, e.calls, "engine should not run without an image")

	r.err = nil
	_, err = p.PageText(context.Background(), "c.pdf", 0)
	require.Error(t, err, "empty image")
}

func TestPageRecognizerCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewPageRecognizer(&stubRasterizer{}, &stubEngine{}, nil)
	_, err := p.PageText(ctx, "c.pdf", 0)
	require.ErrorIs(t, err, context.Canceled)
}
