package source

import (
	"bytes"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownExtractor handles Markdown files using goldmark. Headings and
// paragraphs come out as plain lines; list items keep a "- " or "N. "
// marker so the parser still sees them as list entries.
type MarkdownExtractor struct{}

func (e *MarkdownExtractor) Extract(ctx context.Context, r io.Reader, filename string) (string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	w := &mdWriter{src: src}
	w.children(doc)
	return strings.Join(w.lines, "\n"), nil
}

type mdWriter struct {
	src   []byte
	lines []string
}

func (w *mdWriter) add(s string) {
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			w.lines = append(w.lines, l)
		}
	}
}

func (w *mdWriter) children(n ast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		w.block(c)
	}
}

func (w *mdWriter) block(n ast.Node) {
	switch node := n.(type) {
	case *ast.List:
		num := node.Start
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			marker := "- "
			if node.IsOrdered() {
				marker = strconv.Itoa(num) + string(node.Marker) + " "
				num++
			}
			w.listItem(item, marker)
		}
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		w.add(rawLines(n, w.src))
	case *ast.HTMLBlock, *ast.ThematicBreak:
		// Skipped.
	case *ast.Heading, *ast.Paragraph, *ast.TextBlock:
		w.add(inlineText(n, w.src))
	default:
		w.children(n)
	}
}

func (w *mdWriter) listItem(item ast.Node, marker string) {
	first := true
	for c := item.FirstChild(); c != nil; c = c.NextSibling() {
		if _, nested := c.(*ast.List); nested {
			w.block(c)
			continue
		}
		t := strings.TrimSpace(inlineText(c, w.src))
		if t == "" {
			continue
		}
		if first {
			t = marker + t
			first = false
		}
		w.add(t)
	}
}

func rawLines(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(src))
	}
	return buf.String()
}

// inlineText gets the text content of a goldmark node, keeping soft and
// hard line breaks as newlines.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.String:
			buf.Write(t.Value)
		case *ast.AutoLink:
			buf.Write(t.Label(src))
		default:
			buf.WriteString(inlineText(c, src))
		}
	}
	return buf.String()
}
