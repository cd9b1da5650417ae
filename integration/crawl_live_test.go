
//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markup-tokens/internal/config"
	"markup-tokens/internal/convert"
	"markup-tokens/internal/crawler"
	"markup-tokens/internal/models"
)

func TestLivePage(t *testing.T) {
	// Go language specification (large, stable, table and code heavy)
	url := "https://go.dev/ref/spec"

	cfg := config.Default().Fetch
	cfg.Timeout = 25 * time.Second
	cfg.RespectRobots = true
	conv := convert.New(crawler.NewHTTPClient(cfg), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := conv.URL(ctx, url, convert.Request{Options: models.Options{Selector: "body"}, Summary: true})
	if err != nil {
		t.Skipf("skipping: fetch failed due to network/robots: %v", err)
		return
	}
	require.NotNil(t, result.Summary)
	assert.NotEmpty(t, result.Document.Children)
	assert.Positive(t, result.Summary.Counts[models.KindCode])
	assert.NotEmpty(t, result.Summary.Topics)
}
