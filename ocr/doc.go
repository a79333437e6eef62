// Package ocr defines the engine-agnostic surface pagemerge uses to read text
// from scanned pages. A PageRecognizer rasterizes one page of a PDF and hands
// the image to an Engine; the Tesseract engine lives in ocr/tesseract.
//
// Engines report a missing or misconfigured backend by wrapping
// ErrUnavailable. Callers treat that as fatal, while any other recognition
// error only affects the page being read.
package ocr
