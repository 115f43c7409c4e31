//go:build !ocr

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Tesseract recognizes text by running the tesseract command-line tool.
// Building with -tags ocr links libtesseract through gosseract instead.
type Tesseract struct {
	opts   Options
	binary string
}

// NewTesseract returns a Tesseract engine.
func NewTesseract(opts Options) *Tesseract {
	return &Tesseract{opts: opts, binary: "tesseract"}
}

func (e *Tesseract) Name() string { return "tesseract-cli" }

// Recognize pipes the preprocessed image through `tesseract stdin stdout`.
// The process is killed when ctx is done.
func (e *Tesseract) Recognize(ctx context.Context, in Input) (Result, error) {
	img, err := Preprocess(in.Image, e.opts.MaxDimension)
	if err != nil {
		return Result{}, err
	}

	cmd := exec.CommandContext(ctx, e.binary, "stdin", "stdout", "-l", strings.Join(e.opts.languages(in), "+"))
	cmd.Stdin = bytes.NewReader(img)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		return Result{}, fmt.Errorf("tesseract %s: %w: %s", in.ID, err, strings.TrimSpace(stderr.String()))
	}
	if strings.TrimSpace(string(out)) == "" {
		return Result{}, ErrNoText
	}
	return Result{Text: string(out)}, nil
}
