// Package tesseract provides the gosseract-backed OCR engine.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/wudi/pagemerge/ocr"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Config locates Tesseract's trained data. An empty TessdataPrefix leaves the
// library default (TESSDATA_PREFIX or the compiled-in path) in effect.
type Config struct {
	TessdataPrefix string
	Languages      []string
}

// Engine implements ocr.Engine and ocr.Checker using a fresh gosseract client
// per recognition.
type Engine struct {
	cfg           Config
	clientFactory func() *gosseract.Client
}

// New constructs a Tesseract-backed OCR engine.
func New(cfg Config) *Engine {
	if len(cfg.Languages) == 0 {
		cfg.Languages = append([]string(nil), ocr.DefaultLanguages...)
	}
	return &Engine{cfg: cfg, clientFactory: gosseract.NewClient}
}

func (e *Engine) Name() string { return "tesseract" }

// Version reports the linked libtesseract version. It is logged once the
// engine has passed Check.
func (e *Engine) Version() string { return gosseract.Version() }

// Recognize performs OCR on a single image input. Languages on the input win
// over the engine defaults.
func (e *Engine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	if err := ctx.Err(); err != nil {
		return ocr.Result{}, err
	}
	c, err := e.newClient()
	if err != nil {
		return ocr.Result{}, err
	}
	defer c.Close()

	langs := in.Languages
	if len(langs) == 0 {
		langs = e.cfg.Languages
	}
	if err := c.SetLanguage(langs...); err != nil {
		return ocr.Result{}, fmt.Errorf("set languages: %w", err)
	}
	if err := c.SetImageFromBytes(in.Image); err != nil {
		return ocr.Result{}, fmt.Errorf("%s: set image: %w", in.ID, err)
	}
	if in.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(in.DPI)); err != nil {
			return ocr.Result{}, fmt.Errorf("set dpi: %w", err)
		}
	}
	text, err := c.Text()
	if err != nil {
		return ocr.Result{}, classify(in.ID, err)
	}
	return ocr.Result{InputID: in.ID, PlainText: text}, nil
}

// Check verifies that trained data exists for every configured language and
// that the engine can initialize and read a small sample image.
func (e *Engine) Check(ctx context.Context) error {
	if prefix := e.cfg.TessdataPrefix; prefix != "" {
		for _, lang := range e.cfg.Languages {
			p := filepath.Join(prefix, lang+".traineddata")
			if _, err := os.Stat(p); err != nil {
				return fmt.Errorf("%w: trained data for %q: %v", ocr.ErrUnavailable, lang, err)
			}
		}
	}
	sample, err := sampleImage("OK")
	if err != nil {
		return fmt.Errorf("%w: build sample image: %v", ocr.ErrUnavailable, err)
	}
	_, err = e.Recognize(ctx, ocr.Input{ID: "check", Image: sample})
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		return fmt.Errorf("%w: %v", ocr.ErrUnavailable, err)
	}
	return nil
}

func (e *Engine) newClient() (*gosseract.Client, error) {
	c := e.clientFactory()
	if e.cfg.TessdataPrefix != "" {
		if err := c.SetTessdataPrefix(e.cfg.TessdataPrefix); err != nil {
			c.Close()
			return nil, fmt.Errorf("%w: set tessdata prefix: %v", ocr.ErrUnavailable, err)
		}
	}
	return c, nil
}

// classify marks initialization failures (missing binary data, unknown
// language) as unavailability; anything else is a per-page failure.
func classify(id string, err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "initialize") || strings.Contains(msg, "tessdata") {
		return fmt.Errorf("%w: %v", ocr.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: recognize text: %w", id, err)
}

// sampleImage draws text in the basic bitmap face on a white canvas.
func sampleImage(text string) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, 120, 40))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(10, 25),
	}
	d.DrawString(text)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
