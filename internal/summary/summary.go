
// Package summary computes statistics over a converted document: token
// counts per kind, a word count and the most frequent topics.
package summary

import (
	"sort"
	"strings"
	"unicode"

	"markup-tokens/internal/models"
)

// DefaultTopics is the number of topics Summarize reports.
const DefaultTopics = 5

// simple stopword list (extend as needed)
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "of": {}, "to": {}, "in": {}, "a": {}, "for": {}, "is": {}, "on": {}, "with": {}, "as": {},
	"by": {}, "at": {}, "from": {}, "that": {}, "this": {}, "it": {}, "an": {}, "be": {}, "or": {}, "are": {}, "was": {},
	"will": {}, "has": {}, "have": {}, "had": {}, "but": {}, "not": {}, "your": {}, "you": {}, "we": {}, "our": {},
}

// Summarize walks doc and returns its statistics with up to topN topics.
func Summarize(doc models.Document, topN int) *models.Summary {
	s := &models.Summary{Counts: map[models.Kind]int{}}
	var text []string
	if doc.Title != nil {
		text = append(text, *doc.Title)
	}
	walk(doc.Children, func(t *models.Token) {
		s.Counts[t.Type]++
		if t.Text != "" {
			text = append(text, t.Text)
		}
	})
	joined := strings.Join(text, " ")
	s.Words = len(words(joined))
	s.Topics = TopTopics(joined, topN)
	return s
}

func walk(tokens []*models.Token, visit func(*models.Token)) {
	for _, t := range tokens {
		visit(t)
		walk(t.Children, visit)
	}
}

func words(text string) []string {
	split := func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsNumber(r) }
	return strings.FieldsFunc(strings.ToLower(text), split)
}

// TopTopics returns top N keywords by frequency, ignoring stopwords and short tokens.
func TopTopics(text string, n int) []string {
	freq := map[string]int{}
	for _, w := range words(text) {
		if len([]rune(w)) < 3 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		freq[w]++
	}

	type kv struct {
		K string
		V int
	}
	var list []kv
	for k, v := range freq {
		list = append(list, kv{k, v})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].V == list[j].V {
			return list[i].K < list[j].K
		}
		return list[i].V > list[j].V
	})
	n = max(min(n, len(list)), 0)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, list[i].K)
	}
	return out
}
