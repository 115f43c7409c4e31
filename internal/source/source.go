// Package source turns uploaded files into the raw text the recipe parser
// consumes. Images go through OCR; document formats are read directly.
package source

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/dgallion1/recipeocr/internal/ocr"
)

// Extractor converts a document into raw recipe text, one visual line per
// text line.
type Extractor interface {
	Extract(ctx context.Context, r io.Reader, filename string) (string, error)
}

// Options carry the collaborators some extractors need.
type Options struct {
	OCR                  ocr.Engine
	Languages            []string
	PDFFallbackPdftotext bool
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
	".png":      true,
	".jpg":      true,
	".jpeg":     true,
	".gif":      true,
	".tif":      true,
	".tiff":     true,
	".webp":     true,
}

// ForFile returns the appropriate extractor for a filename.
func ForFile(filename string, opts Options) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextExtractor{}, nil
	case ".md", ".markdown":
		return &MarkdownExtractor{}, nil
	case ".html", ".htm":
		return &HTMLExtractor{}, nil
	case ".pdf":
		return &PDFExtractor{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXExtractor{}, nil
	case ".png", ".jpg", ".jpeg", ".gif", ".tif", ".tiff", ".webp":
		if opts.OCR == nil {
			return nil, fmt.Errorf("no OCR engine configured for %s", ext)
		}
		return &ImageExtractor{Engine: opts.OCR, Languages: opts.Languages}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// IsImage reports whether filename will be routed through OCR.
func IsImage(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".tif", ".tiff", ".webp":
		return true
	}
	return false
}

// Extract picks an extractor for filename, runs it and cleans the result.
func Extract(ctx context.Context, r io.Reader, filename string, opts Options) (string, error) {
	e, err := ForFile(filename, opts)
	if err != nil {
		return "", err
	}
	text, err := e.Extract(ctx, r, filename)
	if err != nil {
		return "", err
	}
	return Clean(text), nil
}

// Clean normalizes line endings and applies NFKC so OCR ligatures and
// compatibility forms ("ﬂour", full-width digits) read as plain text.
// It never removes lines.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\f", "\n")
	return norm.NFKC.String(text)
}
