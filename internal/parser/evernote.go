
package parser

import (
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"regexp"
	"strings"

	"markup-tokens/internal/markup"
	"markup-tokens/internal/models"
)

var imageMIME = regexp.MustCompile(`^image/(png|jpeg|gif)$`)

// Fingerprint is the registry key of a resource payload. Evernote references
// resources from en-media by the MD5 of their bytes.
func Fingerprint(raw []byte) string {
	sum := md5.Sum(raw)
	return hex.EncodeToString(sum[:])
}

// note extracts title, tags and resources of an exported note, then converts
// its content. Resources are registered before the content is parsed so every
// en-media reference can be resolved.
func note(s *session, f *frame, n *markup.Node) *models.Token {
	if !s.opts.Evernote {
		return nil
	}
	var content string
	for _, child := range n.Children {
		switch child.Tag {
		case "title":
			title := child.FirstChildContent()
			s.title = &title
		case "tag":
			s.tags = append(s.tags, child.FirstChildContent())
		case "content":
			content = child.FirstChildContent()
		case "resource":
			s.registerResource(child)
		}
	}
	if content != "" {
		s.parseNodes(f, markup.Parse(content))
	}
	return nil
}

func (s *session) registerResource(n *markup.Node) {
	var encoded, mime string
	for _, child := range n.Children {
		switch child.Tag {
		case "data":
			encoded = child.FirstChildContent()
		case "mime":
			mime = strings.TrimSpace(child.FirstChildContent())
		}
	}
	if !imageMIME.MatchString(mime) {
		return
	}
	encoded = strings.Join(strings.Fields(encoded), "")
	raw, err := decodeBase64(encoded)
	if err != nil {
		return
	}
	s.resources[Fingerprint(raw)] = &models.Token{
		Type: models.KindImg,
		Src:  "data:" + mime + ";base64," + encoded,
	}
}

func decodeBase64(encoded string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err == nil {
		return raw, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(encoded, "="))
}

func media(s *session, f *frame, n *markup.Node) *models.Token {
	if !s.opts.Evernote {
		return nil
	}
	if resource, ok := s.resources[n.Attr("hash")]; ok {
		f.push(resource.Clone())
	}
	return nil
}

// checkItem builds a check token from a div whose first child is an en-todo
// marker. The item's content is whatever the marker encloses followed by the
// div's remaining children.
func (s *session) checkItem(n *markup.Node) *models.Token {
	marker := n.Children[0]
	content := make([]*markup.Node, 0, len(marker.Children)+len(n.Children)-1)
	content = append(content, marker.Children...)
	content = append(content, n.Children[1:]...)
	return &models.Token{
		Type:     models.KindCheck,
		Checked:  strings.EqualFold(marker.Attr("checked"), "true"),
		Children: s.children(content),
	}
}
