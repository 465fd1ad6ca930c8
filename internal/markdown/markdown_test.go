package markdown_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/wiki/internal/markdown"
)

func TestExcerpt(t *testing.T) {
	tests := []struct {
		name string
		src  string
		max  int
		want string
	}{
		{"Empty", "", 10, ""},
		{"Heading and paragraph", "# Hi\n\nSome *bold* text.", 0, "Hi Some bold text."},
		{"Soft breaks", "line one\nline two", 0, "line one line two"},
		{"Links keep label", "see [the docs](https://example.com)", 0, "see the docs"},
		{"Code block omitted", "intro\n\n```go\nfmt.Println()\n```\n\noutro", 0, "intro outro"},
		{"Lists", "- a\n- b", 0, "a b"},
		{"Truncated", "# Hello world", 5, "Hello…"},
		{"Exact length", "# Hello", 5, "Hello"},
		{"Multibyte", "héllo wörld", 7, "héllo w…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, markdown.Excerpt(tt.src, tt.max))
		})
	}
}

func TestHeading(t *testing.T) {
	assert.Equal(t, "Intro to Go", markdown.Heading("text\n\n## Intro to *Go*\n\n# Later"))
	assert.Equal(t, "", markdown.Heading("no headings here"))
}
