
package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"markup-tokens/internal/models"
)

func TestTopTopics(t *testing.T) {
	topics := TopTopics("go go network network network parsing parsing", 3)
	assert.Equal(t, []string{"network", "parsing"}, topics)

	assert.Empty(t, TopTopics("the and of", 5))
	assert.Empty(t, TopTopics("network", 0))
}

func TestSummarize(t *testing.T) {
	title := "Shopping list"
	doc := models.Document{
		Title: &title,
		Children: []*models.Token{
			{Type: models.KindBr},
			{Type: models.KindText, Text: "Groceries for the weekend", Format: models.Format{Bold: true}},
			{Type: models.KindList, Variant: models.VariantUnordered, Children: []*models.Token{
				{Type: models.KindCheck, Checked: true, Children: []*models.Token{{Type: models.KindText, Text: "milk"}}},
				{Type: models.KindCheck, Children: []*models.Token{{Type: models.KindText, Text: "eggs, milk"}}},
			}},
			{Type: models.KindImg, Src: "data:image/png;base64,AAAA"},
		},
	}

	s := Summarize(doc, DefaultTopics)
	assert.Equal(t, map[models.Kind]int{
		models.KindBr:    1,
		models.KindText:  3,
		models.KindList:  1,
		models.KindCheck: 2,
		models.KindImg:   1,
	}, s.Counts)
	assert.Equal(t, 9, s.Words)
	assert.Equal(t, "milk", s.Topics[0])
	assert.Len(t, s.Topics, 5)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(models.Document{Children: []*models.Token{}}, DefaultTopics)
	assert.Empty(t, s.Counts)
	assert.Zero(t, s.Words)
	assert.Empty(t, s.Topics)
}
