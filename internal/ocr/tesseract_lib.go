//go:build ocr

package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract recognizes text through libtesseract via gosseract. Build with
// -tags ocr; without the tag the tesseract command-line tool is used instead.
type Tesseract struct {
	opts          Options
	clientFactory func() *gosseract.Client
}

// NewTesseract returns a Tesseract engine.
func NewTesseract(opts Options) *Tesseract {
	return &Tesseract{opts: opts, clientFactory: gosseract.NewClient}
}

func (e *Tesseract) Name() string { return "tesseract" }

// Recognize runs OCR on a single image. A fresh client is used per call so
// the engine is safe for concurrent use.
func (e *Tesseract) Recognize(ctx context.Context, in Input) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	img, err := Preprocess(in.Image, e.opts.MaxDimension)
	if err != nil {
		return Result{}, err
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetLanguage(e.opts.languages(in)...); err != nil {
		return Result{}, fmt.Errorf("set languages: %w", err)
	}
	if err := c.SetImageFromBytes(img); err != nil {
		return Result{}, fmt.Errorf("set image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return Result{}, fmt.Errorf("recognize %s: %w", in.ID, err)
	}
	if strings.TrimSpace(text) == "" {
		return Result{}, ErrNoText
	}
	return Result{Text: text, Confidence: meanConfidence(c)}, nil
}

func meanConfidence(c *gosseract.Client) float64 {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence / 100.0
	}
	return sum / float64(len(boxes))
}
