
package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><head><title>t</title></head><body>
<nav>menu</nav>
<article id="main"><h1>Head</h1><p>Body <b>text</b></p></article>
</body></html>`

func TestSelect(t *testing.T) {
	inner, err := Select(page, "#main")
	require.NoError(t, err)
	assert.Equal(t, "<h1>Head</h1><p>Body <b>text</b></p>", inner)
}

func TestSelectFirstMatchOnly(t *testing.T) {
	inner, err := Select(`<p>one</p><p>two</p>`, "p")
	require.NoError(t, err)
	assert.Equal(t, "one", inner)
}

func TestSelectNoMatch(t *testing.T) {
	inner, err := Select(page, "main")
	require.NoError(t, err)
	assert.Empty(t, inner)
}

func TestSelectInvalidSelector(t *testing.T) {
	_, err := Select(page, "div[")
	require.ErrorIs(t, err, ErrInvalidSelector)
	assert.True(t, strings.Contains(err.Error(), "div["))
}
