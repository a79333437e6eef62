// Package extractor pulls the embedded text layer out of PDF pages. Scanned
// pages usually have none; callers fall back to OCR for those.
package extractor
