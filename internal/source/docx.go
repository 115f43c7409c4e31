package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

// DOCXExtractor handles .docx files, one paragraph per line.
type DOCXExtractor struct{}

func (e *DOCXExtractor) Extract(ctx context.Context, r io.Reader, filename string) (string, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "recipeocr-docx-*.docx")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return "", fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}

	var lines []string
	for _, item := range doc.Document.Body.Items {
		switch v := item.(type) {
		case *docx.Paragraph:
			if t := docxParagraphText(v); t != "" {
				lines = append(lines, t)
			}
		case *docx.Table:
			lines = append(lines, docxTableLines(v)...)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// docxTableLines flattens a table row by row, cells joined by a space.
func docxTableLines(tbl *docx.Table) []string {
	var out []string
	for _, row := range tbl.TableRows {
		var cells []string
		for _, cell := range row.TableCells {
			for _, p := range cell.Paragraphs {
				if t := docxParagraphText(p); t != "" {
					cells = append(cells, t)
				}
			}
		}
		if len(cells) > 0 {
			out = append(out, strings.Join(cells, " "))
		}
	}
	return out
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			switch t := rc.(type) {
			case *docx.Text:
				buf.WriteString(t.Text)
			case *docx.Tab:
				buf.WriteByte(' ')
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
