
// Package normalize reduces a freshly converted token tree to its minimal
// equivalent: blank text is pruned, single-child text wrappers collapse into
// their child, and formatting shared by all siblings moves onto the parent.
package normalize

import (
	"strings"

	"markup-tokens/internal/models"
)

const maxEnlarge = 5

// Document normalizes the top-level children of doc. Formatting shared by
// all top-level siblings is recorded on the document itself.
func Document(doc *models.Document) {
	root := &models.Token{Format: doc.Format}
	doc.Children = Tokens(doc.Children, root)
	if doc.Children == nil {
		doc.Children = []*models.Token{}
	}
	doc.Format = root.Format
}

// Tokens returns the minimal sequence equivalent to tokens, the children of
// parent. It works bottom-up and may change parent's formatting.
func Tokens(tokens []*models.Token, parent *models.Token) []*models.Token {
	kept := make([]*models.Token, 0, len(tokens))
	for _, t := range tokens {
		if t.Type == models.KindText && t.Children == nil {
			text := strings.TrimSpace(t.Text)
			if text == "" {
				continue
			}
			t.Text = text
		}
		kept = append(kept, t)
	}

	allText := true
	for _, t := range kept {
		if t.Children != nil {
			t.Children = Tokens(t.Children, t)
		}
		if t.Type != models.KindText {
			allText = false
		}
		if t.Type == models.KindText && len(t.Children) == 1 {
			if child := t.Children[0]; child.Type == models.KindText || child.Type == models.KindImg {
				collapse(t, child)
			}
		}
	}
	if allText && len(kept) > 1 {
		hoist(kept, &parent.Format)
	}

	out := make([]*models.Token, 0, len(kept))
	for _, t := range kept {
		if t.Children != nil && len(t.Children) == 0 && parent.Type != models.KindTr {
			continue
		}
		out = append(out, t)
	}
	return out
}

// collapse replaces t by its only child c, merging the formatting of both
// levels. Two distinct link targets are never merged.
func collapse(t, c *models.Token) {
	if t.Href != "" && c.Href != "" {
		return
	}
	t.Type = c.Type
	if c.Src != "" {
		t.Src = c.Src
	}
	if c.Href != "" {
		t.Href = c.Href
	}
	t.Bold = t.Bold || c.Bold
	t.Italic = t.Italic || c.Italic
	t.Strike = t.Strike || c.Strike
	t.Underline = t.Underline || c.Underline
	if t.Enlarge > 0 || c.Enlarge > 0 {
		t.Bold = true
		t.Enlarge = min(t.Enlarge+c.Enlarge, maxEnlarge)
	}
	t.Blockquote += c.Blockquote
	t.Children = c.Children
	t.Text = c.Text
}

var flags = []func(*models.Format) *bool{
	func(f *models.Format) *bool { return &f.Bold },
	func(f *models.Format) *bool { return &f.Underline },
	func(f *models.Format) *bool { return &f.Strike },
	func(f *models.Format) *bool { return &f.Italic },
}

// hoist moves every flag and link target that all tokens agree on onto
// parent. Agreement on "unset" clears nothing on the parent.
func hoist(tokens []*models.Token, parent *models.Format) {
	for _, flag := range flags {
		v := *flag(&tokens[0].Format)
		same := true
		for _, t := range tokens[1:] {
			if *flag(&t.Format) != v {
				same = false
				break
			}
		}
		if !same {
			continue
		}
		for _, t := range tokens {
			*flag(&t.Format) = false
		}
		if v {
			*flag(parent) = true
		}
	}

	href := tokens[0].Href
	for _, t := range tokens[1:] {
		if t.Href != href {
			return
		}
	}
	for _, t := range tokens {
		t.Href = ""
	}
	if href != "" {
		parent.Href = href
	}
}
