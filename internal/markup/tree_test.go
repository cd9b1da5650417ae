
package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tags(nodes []*Node) []string {
	var out []string
	for _, n := range nodes {
		if n.IsText() {
			out = append(out, "#"+n.Content)
			continue
		}
		out = append(out, n.Tag)
	}
	return out
}

func TestParseNesting(t *testing.T) {
	nodes := Parse(`<div class="a">one<b>two</b></div>three`)
	require.Len(t, nodes, 2)
	div := nodes[0]
	assert.Equal(t, "div", div.Tag)
	assert.Equal(t, map[string]string{"class": "a"}, div.Attrs)
	assert.Equal(t, []string{"#one", "b"}, tags(div.Children))
	assert.Equal(t, "two", div.Children[1].FirstChildContent())
	assert.Equal(t, "three", nodes[1].Content)
}

func TestParseNoAttributesLeavesMapNil(t *testing.T) {
	nodes := Parse(`<b>x</b>`)
	require.Len(t, nodes, 1)
	assert.Nil(t, nodes[0].Attrs)
}

func TestParseKeepsWhitespaceText(t *testing.T) {
	nodes := Parse("<div>\n</div>\n<p> </p>")
	assert.Equal(t, []string{"div", "#\n", "p"}, tags(nodes))
	assert.Equal(t, []string{"#\n"}, tags(nodes[0].Children))
}

func TestParseCrossedTags(t *testing.T) {
	nodes := Parse(`<b><i>x</b></i>y`)
	require.Len(t, nodes, 2)
	b := nodes[0]
	assert.Equal(t, "b", b.Tag)
	require.Len(t, b.Children, 1)
	assert.Equal(t, "i", b.Children[0].Tag)
	assert.Equal(t, []string{"#x"}, tags(b.Children[0].Children))
	// </b> closed both elements, the stray </i> is ignored
	assert.Equal(t, "y", nodes[1].Content)
}

func TestParseIgnoresUnopenedClose(t *testing.T) {
	nodes := Parse(`</span>a<u>b</em>c</u>`)
	assert.Equal(t, []string{"#a", "u"}, tags(nodes))
	assert.Equal(t, []string{"#b", "#c"}, tags(nodes[1].Children))
}

func TestParseVoidAndSelfClosing(t *testing.T) {
	nodes := Parse(`<div>a<br>b<en-media hash="h"/>c<img src="x.png">d</div>`)
	require.Len(t, nodes, 1)
	assert.Equal(t, []string{"#a", "br", "#b", "en-media", "#c", "img", "#d"}, tags(nodes[0].Children))
	assert.Equal(t, "h", nodes[0].Children[3].Attr("hash"))
	assert.Empty(t, nodes[0].Children[3].Children)
}

func TestParseImpliedCloses(t *testing.T) {
	nodes := Parse(`<ul><li>a<li>b</ul><table><tr><td>1<td>2<tr><td>3</table><p>x<div>y</div>`)
	require.Len(t, nodes, 4)
	assert.Equal(t, []string{"li", "li"}, tags(nodes[0].Children))
	table := nodes[1]
	assert.Equal(t, []string{"tr", "tr"}, tags(table.Children))
	assert.Equal(t, []string{"td", "td"}, tags(table.Children[0].Children))
	assert.Equal(t, []string{"#x"}, tags(nodes[2].Children))
	assert.Equal(t, "div", nodes[3].Tag)
}

func TestParseEntitiesAndCDATA(t *testing.T) {
	nodes := Parse(`<content><![CDATA[<en-note>&amp;</en-note>]]></content><b>a &amp; b</b>`)
	require.Len(t, nodes, 2)
	assert.Equal(t, "<en-note>&amp;</en-note>", nodes[0].FirstChildContent())
	assert.Equal(t, "a & b", nodes[1].FirstChildContent())
}

func TestParseDropsCommentsAndDoctype(t *testing.T) {
	nodes := Parse(`<?xml version="1.0"?><!DOCTYPE en-note><!-- hi --><en-note>x</en-note>`)
	assert.Equal(t, []string{"en-note"}, tags(nodes))
}

func TestFirstChildContentOnlyLooksAtFirstChild(t *testing.T) {
	nodes := Parse(`<pre><b>x</b>y</pre><code>a<i>b</i>c</code>`)
	require.Len(t, nodes, 2)
	assert.Equal(t, "", nodes[0].FirstChildContent())
	assert.Equal(t, "a", nodes[1].FirstChildContent())
	var nilNode *Node
	assert.Equal(t, "", nilNode.FirstChildContent())
}

type recorder struct{ events []string }

func (r *recorder) OpenTag(name string, attrs map[string]string) {
	r.events = append(r.events, "<"+name)
}
func (r *recorder) Text(content string)  { r.events = append(r.events, "#"+content) }
func (r *recorder) CloseTag(name string) { r.events = append(r.events, "/"+name) }

func TestTokenizeEvents(t *testing.T) {
	r := &recorder{}
	Tokenize(`<P>Hi<BR/></p>`, r)
	assert.Equal(t, []string{"<p", "#Hi", "<br", "/br", "/p"}, r.events)
}
