
package ioformats

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadSources(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    []string
	}{
		{"csv url column", "in.csv", "id,URL\n1,https://a.example\n2, https://b.example \n3,\n", []string{"https://a.example", "https://b.example"}},
		{"csv path column", "in.csv", "path\nnotes/one.enex\nnotes/two.html\n", []string{"notes/one.enex", "notes/two.html"}},
		{"csv source wins", "in.csv", "url,source\nhttps://x,doc.html\n", []string{"doc.html"}},
		{"ndjson mixed", "in.ndjson", "{\"url\":\"https://a\"}\n\nhttps://b\n{\"path\":\"c.html\"}\n", []string{"https://a", "https://b", "c.html"}},
		{"jsonl", "in.jsonl", "{\"source\":\"d.html\"}\n", []string{"d.html"}},
		{"unknown ext csv", "in.txt", "url\nhttps://a\n", []string{"https://a"}},
		{"unknown ext ndjson", "in.txt", "{\"url\":\"https://a\"}\n", []string{"https://a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadSources(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadSourcesErrors(t *testing.T) {
	_, err := ReadSources(writeFile(t, "in.csv", "name\nfoo\n"))
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = ReadSources(writeFile(t, "in.ndjson", "\n\n"))
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = ReadSources(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestReadSourcesFrom(t *testing.T) {
	got, err := ReadSourcesFrom(strings.NewReader("url\nhttps://a\n"), "upload.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a"}, got)
}

func TestWriteNDJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteNDJSON(&buf, []map[string]int{{"a": 1}, {"b": 2}}))
	assert.Equal(t, "{\"a\":1}\n{\"b\":2}\n", buf.String())
}

func TestNDJSONWriterConcurrent(t *testing.T) {
	var buf bytes.Buffer
	w := NewNDJSONWriter(&buf)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, w.Write(map[string]int{"n": i}))
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 50)
	for _, l := range lines {
		assert.True(t, strings.HasPrefix(l, `{"n":`), l)
	}
}
