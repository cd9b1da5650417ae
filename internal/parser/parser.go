
// Package parser converts markup into a normalized semantic token tree.
package parser

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/net/html/charset"

	"markup-tokens/internal/extract"
	"markup-tokens/internal/markup"
	"markup-tokens/internal/models"
	"markup-tokens/internal/normalize"
)

// session is the state of one conversion. It is never shared between calls.
type session struct {
	opts      models.Options
	styles    *markup.Styles
	resources map[string]*models.Token
	title     *string
	tags      []string
}

func newSession(opts models.Options) *session {
	return &session{
		opts:      opts,
		styles:    markup.NewStyles(),
		resources: map[string]*models.Token{},
	}
}

type Parser struct {
	opts models.Options
}

func New(opts models.Options) *Parser { return &Parser{opts: opts} }

// Parse converts markup into a document. Malformed markup never fails; the
// only error is an invalid selector option.
func (p *Parser) Parse(input string) (models.Document, error) {
	if p.opts.Selector != "" {
		narrowed, err := extract.Select(input, p.opts.Selector)
		if err != nil {
			return models.Document{}, err
		}
		input = narrowed
	}

	s := newSession(p.opts)
	root := newFrame()
	s.parseNodes(root, markup.Parse(input))

	doc := models.Document{
		Title:    s.title,
		Tags:     s.tags,
		Children: root.tokens,
	}
	normalize.Document(&doc)
	return doc, nil
}

// Extract reads markup from r, decoding it to UTF-8 according to
// contentType and any meta charset declaration, and converts it.
func (p *Parser) Extract(r io.Reader, contentType string) (models.Document, error) {
	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, r); err != nil {
		return models.Document{}, fmt.Errorf("reading markup: %w", err)
	}
	data := buf.Bytes()

	enc, _, certain := charset.DetermineEncoding(data, contentType)
	if !certain && utf8.Valid(data) {
		// the sniffer only sees the first 1024 bytes
		return p.Parse(string(data))
	}
	utf8data, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		// fallback: if already utf-8, continue
		if !utf8.Valid(data) {
			return models.Document{}, fmt.Errorf("decoding markup: %w", err)
		}
		utf8data = data
	}
	return p.Parse(string(utf8data))
}
