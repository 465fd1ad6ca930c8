// Package markdown extracts plain-text previews from note bodies.
package markdown

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var parser = goldmark.New().Parser()

func parse(src []byte) ast.Node {
	return parser.Parse(text.NewReader(src))
}

// Excerpt renders markdown as a single line of plain text, truncated to at
// most max runes (an ellipsis marks truncation). Code blocks are omitted.
// max <= 0 disables truncation.
func Excerpt(markdown string, max int) string {
	src := []byte(markdown)
	plain := strings.Join(strings.Fields(plainText(parse(src), src)), " ")

	if max <= 0 || utf8.RuneCountInString(plain) <= max {
		return plain
	}

	runes := []rune(plain)
	return strings.TrimSpace(string(runes[:max])) + "…"
}

// Heading returns the text of the first heading, or "" when there is none.
func Heading(markdown string) string {
	src := []byte(markdown)

	var heading string
	_ = ast.Walk(parse(src), func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			heading = strings.Join(strings.Fields(plainText(h, src)), " ")
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return heading
}

func plainText(root ast.Node, src []byte) string {
	var buf bytes.Buffer

	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch t := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		default:
			// separate blocks (paragraphs, headings, list items)
			if n.Type() == ast.TypeBlock && buf.Len() > 0 {
				buf.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})

	return buf.String()
}
