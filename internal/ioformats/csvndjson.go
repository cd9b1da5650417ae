
package ioformats

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	ErrEmptyInput    = errors.New("no sources found")
	ErrMissingColumn = errors.New("csv must contain a 'url', 'path' or 'source' header column")
)

// sourceKeys are the accepted column names and NDJSON object keys, by priority.
var sourceKeys = []string{"source", "url", "path"}

// ReadSources reads document sources (URLs or file paths) from a CSV file
// with a source/url/path header or an NDJSON file.
// If ext cannot be determined, tries CSV first then NDJSON.
func ReadSources(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSourcesFrom(f, path)
}

// ReadSourcesFrom is ReadSources over r; name only selects the format.
func ReadSourcesFrom(r io.Reader, name string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return readCSV(r)
	case ".ndjson", ".jsonl":
		return readNDJSON(r)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	// try csv then ndjson
	if sources, err := readCSV(bytes.NewReader(data)); err == nil && len(sources) > 0 {
		return sources, nil
	}
	return readNDJSON(bytes.NewReader(data))
}

func readCSV(in io.Reader) ([]string, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty csv", ErrEmptyInput)
	}
	col := sourceColumn(rows[0])
	if col == -1 {
		return nil, ErrMissingColumn
	}
	var out []string
	for _, row := range rows[1:] {
		if col < len(row) {
			s := strings.TrimSpace(row[col])
			if s != "" {
				out = append(out, s)
			}
		}
	}
	return out, nil
}

func sourceColumn(header []string) int {
	for _, key := range sourceKeys {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), key) {
				return i
			}
		}
	}
	return -1
}

func readNDJSON(in io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		// allow raw string or {"url": "..."}
		if strings.HasPrefix(line, "{") {
			var obj map[string]any
			if err := json.Unmarshal([]byte(line), &obj); err == nil {
				if s := objectSource(obj); s != "" {
					out = append(out, s)
					continue
				}
			}
		}
		// fallback: treat whole line as a source
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w in ndjson", ErrEmptyInput)
	}
	return out, nil
}

func objectSource(obj map[string]any) string {
	for _, key := range sourceKeys {
		if s, ok := obj[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// WriteNDJSON writes any JSON-marshalable items as NDJSON to w.
func WriteNDJSON[T any](w io.Writer, items []T) error {
	enc := json.NewEncoder(w)
	for _, it := range items {
		if err := enc.Encode(it); err != nil {
			return err
		}
	}
	return nil
}

// NDJSONWriter encodes records as NDJSON lines. It is safe for concurrent use.
type NDJSONWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	return &NDJSONWriter{enc: json.NewEncoder(w)}
}

func (w *NDJSONWriter) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enc.Encode(v)
}
