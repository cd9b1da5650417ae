
// Package extract narrows a markup document to the part a caller selected
// before it is tokenized.
package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

var ErrInvalidSelector = errors.New("invalid selector")

// Select returns the inner markup of the first element matching selector,
// or "" when nothing matches. The document goes through HTML5 tree
// construction first, so misnested tags are already repaired in the result.
func Select(markup, selector string) (string, error) {
	matcher, err := cascadia.Compile(selector)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidSelector, selector, err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("parsing markup: %w", err)
	}
	match := doc.FindMatcher(matcher).First()
	if match.Length() == 0 {
		return "", nil
	}
	inner, err := match.Html()
	if err != nil {
		return "", fmt.Errorf("serializing selection: %w", err)
	}
	return inner, nil
}
