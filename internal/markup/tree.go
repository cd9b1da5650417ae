
// Package markup turns tag soup into a tree of elements and text leaves
// without rejecting malformed input.
package markup

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Node is either an element (Tag set) or a text leaf (Tag empty).
type Node struct {
	Tag      string
	Attrs    map[string]string // nil when the element carries no attributes
	Children []*Node
	Content  string
}

func (n *Node) IsText() bool { return n.Tag == "" }

func (n *Node) Attr(name string) string {
	if n == nil || n.Attrs == nil {
		return ""
	}
	return n.Attrs[name]
}

// FirstChildContent returns the content of the first child when it is a text
// leaf. Later children are never consulted.
func (n *Node) FirstChildContent() string {
	if n == nil || len(n.Children) == 0 {
		return ""
	}
	first := n.Children[0]
	if !first.IsText() {
		return ""
	}
	return first.Content
}

// Handler receives tokenizer events in document order.
type Handler interface {
	OpenTag(name string, attrs map[string]string)
	Text(content string)
	CloseTag(name string)
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

var cdataPrefix = []byte("<![CDATA[")

// Tokenize feeds markup to h. Entities are decoded, CDATA sections pass
// through verbatim as text, comments and doctypes are dropped. Void and
// self-closing elements are closed right after they are opened.
func Tokenize(markup string, h Handler) {
	z := html.NewTokenizer(strings.NewReader(markup))
	z.AllowCDATA(true)
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF; a strings.Reader has no other failure mode
			return
		case html.TextToken:
			raw := z.Raw()
			if bytes.HasPrefix(raw, cdataPrefix) && bytes.HasSuffix(raw, []byte("]]>")) {
				h.Text(string(raw[len(cdataPrefix) : len(raw)-3]))
				continue
			}
			h.Text(z.Token().Data)
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			var attrs map[string]string
			if len(tok.Attr) > 0 {
				attrs = make(map[string]string, len(tok.Attr))
				for _, a := range tok.Attr {
					attrs[a.Key] = a.Val
				}
			}
			h.OpenTag(tok.Data, attrs)
			if tt == html.SelfClosingTagToken || voidElements[tok.Data] {
				h.CloseTag(tok.Data)
			}
		case html.EndTagToken:
			h.CloseTag(z.Token().Data)
		}
	}
}

// Opening one of these tags closes the listed elements while they are on top
// of the open-element stack.
var impliedCloses = map[string]map[string]bool{
	"li":     {"li": true},
	"td":     {"td": true, "th": true},
	"th":     {"td": true, "th": true},
	"tr":     {"tr": true, "td": true, "th": true},
	"option": {"option": true},
	"dd":     {"dd": true, "dt": true},
	"dt":     {"dd": true, "dt": true},
}

var closesParagraph = []string{
	"p", "div", "ul", "ol", "dl", "table", "pre", "blockquote", "hr",
	"h1", "h2", "h3", "h4", "h5", "h6",
	"address", "article", "aside", "fieldset", "figure", "footer", "form",
	"header", "main", "nav", "section",
}

func init() {
	for _, tag := range closesParagraph {
		if impliedCloses[tag] == nil {
			impliedCloses[tag] = map[string]bool{}
		}
		impliedCloses[tag]["p"] = true
	}
}

// Builder assembles tokenizer events into a tree. It keeps an explicit stack
// of open elements with the synthetic root at the bottom.
type Builder struct {
	root *Node
	open []*Node
}

func NewBuilder() *Builder {
	root := &Node{}
	return &Builder{root: root, open: []*Node{root}}
}

func (b *Builder) current() *Node { return b.open[len(b.open)-1] }

func (b *Builder) OpenTag(name string, attrs map[string]string) {
	for len(b.open) > 1 && impliedCloses[name][b.current().Tag] {
		b.open = b.open[:len(b.open)-1]
	}
	next := &Node{Tag: name}
	if len(attrs) > 0 {
		next.Attrs = attrs
	}
	cur := b.current()
	cur.Children = append(cur.Children, next)
	b.open = append(b.open, next)
}

func (b *Builder) Text(content string) {
	cur := b.current()
	cur.Children = append(cur.Children, &Node{Content: content})
}

// CloseTag pops the nearest open element named name together with every
// element opened above it. A close tag that was never opened is ignored.
func (b *Builder) CloseTag(name string) {
	for i := len(b.open) - 1; i >= 1; i-- {
		if b.open[i].Tag == name {
			b.open = b.open[:i]
			return
		}
	}
}

// Children returns the top-level nodes built so far.
func (b *Builder) Children() []*Node {
	return b.root.Children
}

// Parse builds the tree for markup and returns the root's children.
func Parse(markup string) []*Node {
	b := NewBuilder()
	Tokenize(markup, b)
	return b.Children()
}
