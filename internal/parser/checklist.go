
package parser

import (
	"slices"

	"markup-tokens/internal/models"
)

// frame collects the tokens produced for one container.
type frame struct {
	tokens []*models.Token
}

func newFrame() *frame {
	return &frame{tokens: []*models.Token{}}
}

func (f *frame) push(t *models.Token) {
	f.tokens = append(f.tokens, t)
}

// checklist buffers consecutive check items of one sibling loop. The list
// is inserted where the first item was found once the group is flushed.
type checklist struct {
	open    bool
	index   int
	entries []*models.Token
}

func (c *checklist) add(f *frame, check *models.Token) {
	if !c.open {
		c.open = true
		c.index = len(f.tokens)
	}
	c.entries = append(c.entries, check)
}

func (c *checklist) flush(f *frame) {
	if !c.open {
		return
	}
	f.tokens = slices.Insert(f.tokens, c.index, &models.Token{
		Type:     models.KindList,
		Variant:  models.VariantUnordered,
		Children: c.entries,
	})
	*c = checklist{}
}
