package source

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dgallion1/recipeocr/internal/ocr"
)

// ImageExtractor recovers text from a photograph through an OCR engine.
// An image without text yields an empty string, not an error.
type ImageExtractor struct {
	Engine    ocr.Engine
	Languages []string
}

func (e *ImageExtractor) Extract(ctx context.Context, r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	res, err := e.Engine.Recognize(ctx, ocr.Input{ID: filename, Image: data, Languages: e.Languages})
	if errors.Is(err, ocr.ErrNoText) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("ocr %s: %w", e.Engine.Name(), err)
	}
	return res.Text, nil
}
