
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"markup-tokens/internal/markup"
	"markup-tokens/internal/models"
)

// handlerFunc converts n, appending its tokens to f. A non-nil result is a
// checklist item that the sibling loop groups instead of appending.
type handlerFunc func(s *session, f *frame, n *markup.Node) *models.Token

var handlers map[string]handlerFunc

func init() {
	handlers = map[string]handlerFunc{
		"h1": heading(5),
		"h2": heading(4),
		"h3": heading(3),
		"h4": heading(2),
		"h5": heading(1),

		"b":          formatted(models.Format{Bold: true}),
		"strong":     formatted(models.Format{Bold: true}),
		"i":          formatted(models.Format{Italic: true}),
		"em":         formatted(models.Format{Italic: true}),
		"u":          formatted(models.Format{Underline: true}),
		"s":          formatted(models.Format{Strike: true}),
		"blockquote": formatted(models.Format{Blockquote: 1}),

		"span": styled,
		"font": styled,

		"code": codeBlock,
		"pre":  codeBlock,

		"ol": list(models.VariantOrdered),
		"ul": list(models.VariantUnordered),

		"div":   div,
		"img":   image,
		"a":     link,
		"br":    single(models.KindBr),
		"hr":    single(models.KindHr),
		"table": table,
		"tr":    row,
		"td":    cell,

		"note":     note,
		"en-media": media,
	}
}

// parseNodes converts sibling nodes into f, grouping consecutive checklist
// items into one list. A br or div sibling ends the current group.
func (s *session) parseNodes(f *frame, nodes []*markup.Node) {
	var group checklist
	for _, n := range nodes {
		if n.IsText() && n.Content == "\n" {
			continue
		}
		if check := s.parseNode(f, n); check != nil {
			group.add(f, check)
			continue
		}
		if n.Tag == "br" || n.Tag == "div" {
			group.flush(f)
		}
	}
	group.flush(f)
}

func (s *session) parseNode(f *frame, n *markup.Node) *models.Token {
	if n.IsText() {
		f.push(&models.Token{Type: models.KindText, Text: n.Content})
		return nil
	}
	if h, ok := handlers[n.Tag]; ok {
		return h(s, f, n)
	}
	// unknown wrappers are transparent
	s.parseNodes(f, n.Children)
	return nil
}

// children converts nodes in a fresh frame and returns its tokens, never nil.
func (s *session) children(nodes []*markup.Node) []*models.Token {
	sub := newFrame()
	s.parseNodes(sub, nodes)
	return sub.tokens
}

// simple appends a text token with the given formatting wrapping the
// converted children of n.
func (s *session) simple(f *frame, n *markup.Node, format models.Format) *models.Token {
	t := &models.Token{Type: models.KindText, Format: format}
	switch {
	case n.IsText():
		t.Text = n.Content
	case n.Children != nil:
		t.Children = s.children(n.Children)
	}
	f.push(t)
	return t
}

func heading(enlarge int) handlerFunc {
	return func(s *session, f *frame, n *markup.Node) *models.Token {
		f.push(&models.Token{Type: models.KindBr})
		s.simple(f, n, models.Format{Bold: true, Enlarge: enlarge})
		return nil
	}
}

func formatted(format models.Format) handlerFunc {
	return func(s *session, f *frame, n *markup.Node) *models.Token {
		s.simple(f, n, format)
		return nil
	}
}

func single(kind models.Kind) handlerFunc {
	return func(s *session, f *frame, n *markup.Node) *models.Token {
		f.push(&models.Token{Type: kind})
		return nil
	}
}

var (
	fontSizePx  = regexp.MustCompile(`(?i)^([0-9]+)\s*px\s*$`)
	italicRe    = regexp.MustCompile(`(?i)(^|\s)italic(\s|$)`)
	underlineRe = regexp.MustCompile(`(?i)(^|\s)underline(\s|$)`)
	strikeRe    = regexp.MustCompile(`(?i)(^|\s)line-through(\s|$)`)
)

var enlargeThresholds = []int{21, 30, 42, 56, 68}

// Enlarge maps a pixel font size to a size step by counting the thresholds
// it exceeds.
func Enlarge(px int) int {
	steps := 0
	for _, threshold := range enlargeThresholds {
		if px > threshold {
			steps++
		}
	}
	return steps
}

func fontSize(value string) int {
	m := fontSizePx.FindStringSubmatch(value)
	if m == nil {
		return 0
	}
	px, err := strconv.Atoi(m[1])
	if err != nil {
		// only overflow gets here
		return len(enlargeThresholds)
	}
	return Enlarge(px)
}

func styled(s *session, f *frame, n *markup.Node) *models.Token {
	decoration := s.styles.Get(n, "text-decoration")
	format := models.Format{
		Enlarge:   fontSize(s.styles.Get(n, "font-size")),
		Bold:      s.styles.Get(n, "font-weight") == "bold",
		Italic:    italicRe.MatchString(s.styles.Get(n, "font-style")),
		Underline: underlineRe.MatchString(decoration),
		Strike:    strikeRe.MatchString(decoration),
	}
	if s.opts.Evernote && s.styles.Get(n, "-evernote-highlight") == "true" {
		format.Underline = true
	}
	s.simple(f, n, format)
	return nil
}

// codeBlock only takes the first child's text; later runs are dropped.
func codeBlock(s *session, f *frame, n *markup.Node) *models.Token {
	f.push(&models.Token{Type: models.KindCode, Text: strings.TrimSpace(n.FirstChildContent())})
	return nil
}

// list wraps every direct child as one item without dispatching on the
// child's own tag.
func list(variant models.Variant) handlerFunc {
	return func(s *session, f *frame, n *markup.Node) *models.Token {
		items := newFrame()
		for _, child := range n.Children {
			s.simple(items, child, models.Format{})
		}
		f.push(&models.Token{Type: models.KindList, Variant: variant, Children: items.tokens})
		return nil
	}
}

func div(s *session, f *frame, n *markup.Node) *models.Token {
	if s.opts.Evernote && len(n.Children) > 0 && n.Children[0].Tag == "en-todo" {
		return s.checkItem(n)
	}
	if s.opts.Evernote && n.Children != nil && s.styles.Get(n, "-en-codeblock") == "true" {
		var lines []string
		for _, child := range n.Children {
			if child.Tag == "div" && len(child.Children) == 1 && child.Children[0].IsText() {
				lines = append(lines, child.FirstChildContent())
			}
		}
		f.push(&models.Token{Type: models.KindCode, Text: strings.Join(lines, "\n")})
		return nil
	}
	s.simple(f, n, models.Format{})
	// keeps block content on its own line
	f.push(&models.Token{Type: models.KindBr})
	return nil
}

func image(s *session, f *frame, n *markup.Node) *models.Token {
	f.push(&models.Token{Type: models.KindImg, Src: n.Attr("src")})
	return nil
}

func link(s *session, f *frame, n *markup.Node) *models.Token {
	t := &models.Token{Type: models.KindText, Format: models.Format{Href: n.Attr("href")}}
	if n.Children != nil {
		t.Children = s.children(n.Children)
	}
	f.push(t)
	return nil
}

func table(s *session, f *frame, n *markup.Node) *models.Token {
	rows := make([]*models.Token, 0, len(n.Children))
	for _, t := range s.children(n.Children) {
		if t.Type == models.KindTr {
			rows = append(rows, t)
		}
	}
	f.push(&models.Token{Type: models.KindTable, Children: rows})
	return nil
}

func row(s *session, f *frame, n *markup.Node) *models.Token {
	var cells []*markup.Node
	for _, child := range n.Children {
		if child.Tag == "td" {
			cells = append(cells, child)
		}
	}
	f.push(&models.Token{Type: models.KindTr, Children: s.children(cells)})
	return nil
}

func cell(s *session, f *frame, n *markup.Node) *models.Token {
	s.simple(f, n, models.Format{}).Type = models.KindTd
	return nil
}
