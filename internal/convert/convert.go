
// Package convert ties fetching, decoding, parsing and summarizing together
// for the command line tool and the HTTP service.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"markup-tokens/internal/crawler"
	"markup-tokens/internal/markdown"
	"markup-tokens/internal/models"
	"markup-tokens/internal/parser"
	"markup-tokens/internal/summary"
)

type InputFormat string

const (
	FormatAuto     InputFormat = "auto"
	FormatHTML     InputFormat = "html"
	FormatMarkdown InputFormat = "markdown"
)

var (
	ErrUnknownFormat = errors.New("unknown input format")
	ErrLocalSource   = errors.New("local files are not accepted")
)

func ParseInputFormat(s string) (InputFormat, error) {
	switch f := InputFormat(strings.ToLower(s)); f {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatHTML, FormatMarkdown:
		return f, nil
	}
	return "", fmt.Errorf("%w %q (want auto, html or markdown)", ErrUnknownFormat, s)
}

// Request holds the per-conversion settings.
type Request struct {
	Options models.Options
	Format  InputFormat
	Summary bool
	// RemoteOnly makes Source reject anything but URLs.
	RemoteOnly bool
}

func (r Request) guess() bool { return r.Format == "" || r.Format == FormatAuto }

// Observer is notified about every conversion; metrics.Metrics implements it.
type Observer interface {
	ConversionStarted() func()
	ObserveConversion(source string, size int, counts map[models.Kind]int, err error)
}

// Record is one line of batch output.
type Record struct {
	Source string                `json:"source"`
	Result *models.ConvertResult `json:"result,omitempty"`
	Error  string                `json:"error,omitempty"`
}

type Converter struct {
	client   *crawler.HTTPClient
	observer Observer
}

// New returns a Converter fetching URLs through client. observer may be nil.
func New(client *crawler.HTTPClient, observer Observer) *Converter {
	return &Converter{client: client, observer: observer}
}

// Markup converts a document held in memory.
func (c *Converter) Markup(input string, req Request) (*models.ConvertResult, error) {
	return c.run("markup", "", strings.NewReader(input), "", req)
}

// URL fetches rawURL and converts the response body.
func (c *Converter) URL(ctx context.Context, rawURL string, req Request) (*models.ConvertResult, error) {
	resp, err := c.client.Fetch(ctx, rawURL)
	if err != nil {
		c.observe("url", 0, nil, err)
		return nil, err
	}
	defer resp.Body.Close()
	if req.guess() && markdown.IsMarkdownPath(resp.FinalURL) {
		req.Format = FormatMarkdown
	}
	return c.run("url", resp.FinalURL, resp.Body, resp.ContentType, req)
}

// File converts the document at path. Evernote exports (.enex) switch the
// Evernote dialect on.
func (c *Converter) File(path string, req Request) (*models.ConvertResult, error) {
	f, err := os.Open(path)
	if err != nil {
		c.observe("file", 0, nil, err)
		return nil, err
	}
	defer f.Close()
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".enex" {
		req.Options.Evernote = true
	}
	if req.guess() && markdown.IsMarkdownPath(path) {
		req.Format = FormatMarkdown
	}
	return c.run("file", path, f, mime.TypeByExtension(ext), req)
}

// Source converts src as a URL when it is one and as a file path otherwise.
func (c *Converter) Source(ctx context.Context, src string, req Request) (*models.ConvertResult, error) {
	if crawler.IsURL(src) {
		return c.URL(ctx, src, req)
	}
	if req.RemoteOnly {
		return nil, fmt.Errorf("%w: %q", ErrLocalSource, src)
	}
	return c.File(src, req)
}

// Reader converts everything read from r; name is only used to guess the
// input format.
func (c *Converter) Reader(r io.Reader, name string, req Request) (*models.ConvertResult, error) {
	if req.guess() && markdown.IsMarkdownPath(name) {
		req.Format = FormatMarkdown
	}
	return c.run("markup", name, r, "", req)
}

func (c *Converter) run(kind, source string, r io.Reader, contentType string, req Request) (*models.ConvertResult, error) {
	if c.observer != nil {
		defer c.observer.ConversionStarted()()
	}
	data, err := io.ReadAll(r)
	if err != nil {
		err = fmt.Errorf("reading %s: %w", kind, err)
		c.observe(kind, 0, nil, err)
		return nil, err
	}

	start := time.Now()
	doc, err := c.parse(data, contentType, req)
	if err != nil {
		c.observe(kind, len(data), nil, err)
		return nil, err
	}
	result := &models.ConvertResult{
		Source:   source,
		Bytes:    len(data),
		ParseMs:  time.Since(start).Milliseconds(),
		Document: doc,
	}
	stats := summary.Summarize(doc, summary.DefaultTopics)
	if req.Summary {
		result.Summary = stats
	}
	c.observe(kind, len(data), stats.Counts, nil)
	return result, nil
}

func (c *Converter) parse(data []byte, contentType string, req Request) (models.Document, error) {
	p := parser.New(req.Options)
	if req.Format != FormatMarkdown {
		return p.Extract(bytes.NewReader(data), contentType)
	}
	html, err := markdown.ToHTML(string(data))
	if err != nil {
		return models.Document{}, err
	}
	return p.Parse(html)
}

func (c *Converter) observe(kind string, size int, counts map[models.Kind]int, err error) {
	if c.observer != nil {
		c.observer.ObserveConversion(kind, size, counts, err)
	}
}

// Stream converts sources with at most concurrency conversions in flight and
// calls emit for each finished one, in completion order. emit may be called
// from several goroutines at once.
func (c *Converter) Stream(ctx context.Context, sources []string, concurrency int, req Request, emit func(i int, rec Record)) {
	sem := make(chan struct{}, max(concurrency, 1))
	done := make(chan struct{}, len(sources))

	for i, src := range sources {
		sem <- struct{}{} // acquire
		go func(i int, src string) {
			defer func() { <-sem; done <- struct{}{} }()
			if strings.TrimSpace(src) == "" {
				emit(i, Record{Source: src, Error: "empty source"})
				return
			}
			result, err := c.Source(ctx, src, req)
			if err != nil {
				emit(i, Record{Source: src, Error: err.Error()})
				return
			}
			emit(i, Record{Source: src, Result: result})
		}(i, src)
	}
	// wait
	for range sources {
		<-done
	}
}

// Batch is Stream collecting the records in input order.
func (c *Converter) Batch(ctx context.Context, sources []string, concurrency int, req Request) []Record {
	records := make([]Record, len(sources))
	c.Stream(ctx, sources, concurrency, req, func(i int, rec Record) {
		records[i] = rec
	})
	return records
}
