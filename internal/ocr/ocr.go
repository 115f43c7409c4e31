// Package ocr recovers raw text from recipe photographs. The recipe parser
// only ever sees the text an Engine returns.
package ocr

import (
	"context"
	"errors"
)

// ErrNoText is returned when recognition succeeds but finds no text.
var ErrNoText = errors.New("no text found in image")

// Input is a single image submitted for recognition.
type Input struct {
	// ID is echoed back in logs and errors.
	ID string
	// Image is an encoded PNG, JPEG, GIF, TIFF or WebP payload.
	Image []byte
	// Languages are Tesseract language codes such as "eng" or "deu".
	Languages []string
}

// Result is the text recognized in one image.
type Result struct {
	Text string
	// Confidence is the mean word confidence in [0, 1], or 0 when the engine
	// does not report one.
	Confidence float64
}

// Engine recognizes text in an image.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, in Input) (Result, error)
}

// Options configure the Tesseract engine.
type Options struct {
	// Languages used when an Input carries none. Defaults to "eng".
	Languages []string
	// MaxDimension bounds the longest side of the image handed to
	// Tesseract. Zero disables resizing.
	MaxDimension int
}

func (o Options) languages(in Input) []string {
	if len(in.Languages) > 0 {
		return in.Languages
	}
	if len(o.Languages) > 0 {
		return o.Languages
	}
	return []string{"eng"}
}
