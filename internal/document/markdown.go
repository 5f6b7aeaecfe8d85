package document

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	mdtext "github.com/yuin/goldmark/text"
)

// extractMarkdown walks the goldmark AST and flattens it. Headings lose
// their markers but keep their own block, so "# Chapter 1" comes out as
// a bare "Chapter 1" line.
func extractMarkdown(r io.Reader) (string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("document: read: %w", err)
	}

	md := goldmark.New()
	doc := md.Parser().Parse(mdtext.NewReader(src))

	var blocks []string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			blocks = append(blocks, string(node.Text(src)))
		default:
			blocks = append(blocks, markdownText(n, src))
		}
	}

	return joinBlocks(blocks), nil
}

// markdownText gets the text content of a goldmark AST node. Leaf
// blocks carry their source lines directly; container blocks (lists,
// quotes) collect from their children.
func markdownText(n ast.Node, src []byte) string {
	if lines := n.Lines(); lines.Len() > 0 {
		var buf bytes.Buffer
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
		return strings.TrimSpace(buf.String())
	}

	var parts []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t := markdownText(c, src); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}
