
package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTML(t *testing.T) {
	out, err := ToHTML("# Title\n\nSome **bold** text\nnext line\n\n- one\n- two\n")
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>Title</h1>")
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, "<br />")
	assert.Contains(t, out, "<li>one</li>")
}

func TestToHTMLTable(t *testing.T) {
	out, err := ToHTML("| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<td>1</td>")
}

func TestIsMarkdownPath(t *testing.T) {
	assert.True(t, IsMarkdownPath("README.md"))
	assert.True(t, IsMarkdownPath("notes/Plan.MARKDOWN"))
	assert.False(t, IsMarkdownPath("page.html"))
	assert.False(t, IsMarkdownPath("md"))
}

func TestToHTMLCodeBlocks(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"fenced", "```go\nif a < b {\n}\n```\n", "<pre>if a &lt; b {\n}\n</pre>"},
		{"indented", "text\n\n    x := 1\n    y := 2\n", "<pre>x := 1\ny := 2\n</pre>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ToHTML(tt.input)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
			assert.NotContains(t, out, "<code")
		})
	}
}

func TestToHTMLTaskList(t *testing.T) {
	out, err := ToHTML("- [x] done\n- [ ] todo\n")
	require.NoError(t, err)
	assert.Contains(t, out, "<li>[x] done</li>")
	assert.Contains(t, out, "<li>[ ] todo</li>")
	assert.NotContains(t, out, "<input")
}
