
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markup-tokens/internal/convert"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestConvertFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "page.html", "<h1>Hi</h1>")
	out, err := run(t, "", "convert", path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":null,"children":[{"type":"br"},{"type":"text","bold":true,"enlarge":5,"text":"Hi"}]}`, out)
}

func TestConvertStdinYAML(t *testing.T) {
	out, err := run(t, "<ul><li>a</li></ul>", "convert", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "type: list")
	assert.Contains(t, out, "variant: ul")
	assert.Contains(t, out, "text: a")
}

func TestConvertDump(t *testing.T) {
	out, err := run(t, "<b>x</b>", "convert", "-", "-f", "dump")
	require.NoError(t, err)
	assert.Contains(t, out, "models.Document")
	assert.Contains(t, out, `Text: (string) (len=1) "x"`)
}

func TestConvertSummaryAndSelector(t *testing.T) {
	out, err := run(t, `<nav>menu</nav><main><p>alpha alpha beta</p></main>`, "convert", "--summary", "--selector", "main")
	require.NoError(t, err)

	var result struct {
		Document struct {
			Children []map[string]any `json:"children"`
		} `json:"document"`
		Summary struct {
			Words  int      `json:"words"`
			Topics []string `json:"topics"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Document.Children, 1)
	assert.Equal(t, "alpha alpha beta", result.Document.Children[0]["text"])
	assert.Equal(t, 3, result.Summary.Words)
	assert.Equal(t, []string{"alpha", "beta"}, result.Summary.Topics)
}

func TestConvertEvernoteFlag(t *testing.T) {
	input := `<div><en-todo checked="true"/>done</div>`
	out, err := run(t, input, "convert", "--evernote")
	require.NoError(t, err)
	assert.Contains(t, out, `"type": "check"`)

	out, err = run(t, input, "convert")
	require.NoError(t, err)
	assert.NotContains(t, out, `"check"`)
}

func TestConvertErrors(t *testing.T) {
	_, err := run(t, "", "convert", "--format", "xml")
	assert.ErrorContains(t, err, "unknown --format")

	_, err = run(t, "<p>x</p>", "convert", "--selector", "[[")
	assert.Error(t, err)

	_, err = run(t, "", "convert", filepath.Join(t.TempDir(), "missing.html"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = run(t, "", "convert", "--input-format", "rtf")
	assert.ErrorIs(t, err, convert.ErrUnknownFormat)
}

func TestConvertOutputFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.json")
	out, err := run(t, "<i>x</i>", "convert", "-o", target)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":null,"children":[{"type":"text","italic":true,"text":"x"}]}`, string(data))
}

func TestBatch(t *testing.T) {
	dir := t.TempDir()
	one := writeFile(t, dir, "one.html", "<b>one</b>")
	two := writeFile(t, dir, "two.md", "*two*\n")
	missing := filepath.Join(dir, "missing.html")
	list := writeFile(t, dir, "list.csv", "path\n"+one+"\n"+missing+"\n"+two+"\n")

	out, err := run(t, "", "batch", "--input", list, "--concurrency", "2")
	require.NoError(t, err)

	var records []convert.Record
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		var r convert.Record
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		records = append(records, r)
	}
	require.Len(t, records, 3)
	assert.Equal(t, one, records[0].Source)
	assert.Equal(t, "one", records[0].Result.Document.Children[0].Text)
	assert.NotEmpty(t, records[1].Error)
	assert.Nil(t, records[1].Result)
	assert.True(t, records[2].Result.Document.Children[0].Italic)
}

func TestBatchErrors(t *testing.T) {
	_, err := run(t, "", "batch")
	assert.ErrorContains(t, err, "missing --input")

	list := writeFile(t, t.TempDir(), "list.csv", "path\na.html\n")
	_, err = run(t, "", "batch", "--input", list, "--concurrency", "0")
	assert.Error(t, err)
}

func TestConfigCommand(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), "cfg.yaml", "concurrency: 3\nselector: article\n")
	out, err := run(t, "", "config", "--config", cfgPath, "--evernote")
	require.NoError(t, err)
	assert.Contains(t, out, "concurrency: 3")
	assert.Contains(t, out, "selector: article")
	assert.Contains(t, out, "evernote: true")

	_, err = run(t, "", "config", "--config", filepath.Join(t.TempDir(), "none.yaml"))
	assert.Error(t, err)
}
