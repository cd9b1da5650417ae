
package markup

import (
	"strings"

	"github.com/aymerick/douceur/parser"
)

// ParseDeclarations parses an inline style attribute into a property map.
// Property names are lower-cased, later declarations win. Unparseable input
// yields an empty map.
func ParseDeclarations(style string) map[string]string {
	props := map[string]string{}
	style = strings.TrimSpace(style)
	if style == "" {
		return props
	}
	// douceur drops the value of an unterminated last declaration
	if !strings.HasSuffix(style, ";") {
		style += ";"
	}
	decls, err := parser.ParseDeclarations(style)
	if err != nil {
		return props
	}
	for _, d := range decls {
		props[strings.ToLower(strings.TrimSpace(d.Property))] = strings.TrimSpace(d.Value)
	}
	return props
}

// Styles memoizes resolved inline styles per element for one conversion.
type Styles struct {
	cache map[*Node]map[string]string
}

func NewStyles() *Styles {
	return &Styles{cache: map[*Node]map[string]string{}}
}

// Get returns the value of prop in n's style attribute, or "" when the
// element has no style declaration or does not set prop.
func (s *Styles) Get(n *Node, prop string) string {
	props, ok := s.cache[n]
	if !ok {
		style := n.Attr("style")
		if style == "" {
			return ""
		}
		props = ParseDeclarations(style)
		s.cache[n] = props
	}
	return props[prop]
}
