
package models

import "encoding/json"

type Kind string

const (
	KindText  Kind = "text"
	KindBr    Kind = "br"
	KindHr    Kind = "hr"
	KindImg   Kind = "img"
	KindCode  Kind = "code"
	KindList  Kind = "list"
	KindTable Kind = "table"
	KindTr    Kind = "tr"
	KindTd    Kind = "td"
	// KindCheck only survives inside a ul list.
	KindCheck Kind = "check"
)

type Variant string

const (
	VariantOrdered   Variant = "ol"
	VariantUnordered Variant = "ul"
)

// Format holds the formatting facts a renderer needs. Enlarge is 0-5,
// Blockquote is a nesting depth.
type Format struct {
	Bold       bool   `json:"bold,omitempty" yaml:"bold,omitempty"`
	Italic     bool   `json:"italic,omitempty" yaml:"italic,omitempty"`
	Underline  bool   `json:"underline,omitempty" yaml:"underline,omitempty"`
	Strike     bool   `json:"strike,omitempty" yaml:"strike,omitempty"`
	Enlarge    int    `json:"enlarge,omitempty" yaml:"enlarge,omitempty"`
	Blockquote int    `json:"blockquote,omitempty" yaml:"blockquote,omitempty"`
	Href       string `json:"href,omitempty" yaml:"href,omitempty"`
}

// Token is a node of the semantic tree. A nil Children slice means the token
// has no child sequence at all; a non-nil empty slice is an empty sequence.
type Token struct {
	Type Kind `json:"type" yaml:"type"`

	Format `yaml:",inline"`

	Text     string   `json:"text,omitempty" yaml:"text,omitempty"`
	Src      string   `json:"src,omitempty" yaml:"src,omitempty"`
	Variant  Variant  `json:"variant,omitempty" yaml:"variant,omitempty"`
	Checked  bool     `json:"checked,omitempty" yaml:"checked,omitempty"`
	Children []*Token `json:"children,omitempty" yaml:"children,omitempty"`
}

// MarshalJSON always writes checked on check tokens, false included, and
// never on any other kind.
func (t Token) MarshalJSON() ([]byte, error) {
	type plain Token
	out := struct {
		*plain
		Checked *bool `json:"checked,omitempty"`
	}{plain: (*plain)(&t)}
	if t.Type == KindCheck {
		out.Checked = &t.Checked
	}
	return json.Marshal(out)
}

// Clone returns a deep copy of t.
func (t *Token) Clone() *Token {
	if t == nil {
		return nil
	}
	c := *t
	if t.Children != nil {
		c.Children = make([]*Token, len(t.Children))
		for i, child := range t.Children {
			c.Children[i] = child.Clone()
		}
	}
	return &c
}

type Document struct {
	Title *string  `json:"title" yaml:"title"`
	Tags  []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	Format `yaml:",inline"`

	Children []*Token `json:"children" yaml:"children"`
}

type Options struct {
	Evernote bool   `json:"evernote,omitempty" yaml:"evernote,omitempty"`
	Selector string `json:"selector,omitempty" yaml:"selector,omitempty"`
}

type Summary struct {
	Counts map[Kind]int `json:"counts" yaml:"counts"`
	Words  int          `json:"words" yaml:"words"`
	Topics []string     `json:"topics,omitempty" yaml:"topics,omitempty"`
}

type ConvertResult struct {
	Source   string   `json:"source,omitempty" yaml:"source,omitempty"`
	Bytes    int      `json:"bytes" yaml:"bytes"`
	ParseMs  int64    `json:"parseMs" yaml:"parseMs"`
	Document Document `json:"document" yaml:"document"`
	Summary  *Summary `json:"summary,omitempty" yaml:"summary,omitempty"`
}
