
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"markup-tokens/internal/config"
	"markup-tokens/internal/convert"
	"markup-tokens/internal/crawler"
	"markup-tokens/internal/extract"
	"markup-tokens/internal/ioformats"
	"markup-tokens/internal/metrics"
	"markup-tokens/internal/models"
	"markup-tokens/pkg/logger"
)

// conversion settings shared by every request body
type requestOptions struct {
	Evernote *bool  `json:"evernote,omitempty"`
	Selector string `json:"selector,omitempty"`
	Format   string `json:"format,omitempty"`
	Summary  bool   `json:"summary,omitempty"`
}

type parseReq struct {
	requestOptions
	Markup string `json:"markup"`
}

type urlReq struct {
	requestOptions
	URL string `json:"url"`
}

type batchItem struct {
	Markup string `json:"markup,omitempty"`
	URL    string `json:"url,omitempty"`
}

type batchReq struct {
	requestOptions
	Items []batchItem `json:"items"`
}

type server struct {
	cfg       *config.Config
	log       *logger.Logger
	metrics   *metrics.Metrics
	converter *convert.Converter
}

func newServer(cfg *config.Config, l *logger.Logger) *server {
	m := metrics.New()
	return &server{
		cfg:       cfg,
		log:       l,
		metrics:   m,
		converter: convert.New(crawler.NewHTTPClient(cfg.Fetch), m),
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/parse", post(s.handleParse))
	mux.HandleFunc("/parse/url", post(s.handleURL))
	mux.HandleFunc("/parse/batch", post(s.handleBatch))
	mux.HandleFunc("/parse/upload", post(s.handleUpload))
	mux.Handle("/metrics", s.metrics.Handler())
	return logRequest(s.log, s.metrics, mux)
}

func post(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
			return
		}
		h(w, r)
	}
}

// request merges per-request options over the configured defaults.
func (s *server) request(o requestOptions) (convert.Request, error) {
	format, err := convert.ParseInputFormat(o.Format)
	if err != nil {
		return convert.Request{}, err
	}
	req := convert.Request{
		Options:    models.Options{Evernote: s.cfg.Evernote, Selector: s.cfg.Selector},
		Format:     format,
		Summary:    o.Summary,
		RemoteOnly: true,
	}
	if o.Evernote != nil {
		req.Options.Evernote = *o.Evernote
	}
	if o.Selector != "" {
		req.Options.Selector = o.Selector
	}
	return req, nil
}

// decode reads a JSON body of at most sizeCap bytes into v and writes the
// error response itself when that fails.
func (s *server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Fetch.SizeCap)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "payload exceeds " + humanize.IBytes(uint64(tooLarge.Limit))})
			return false
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return false
	}
	return true
}

// POST /parse  { "markup": "<h1>..." }
func (s *server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseReq
	if !s.decode(w, r, &req) {
		return
	}
	creq, err := s.request(req.requestOptions)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	result, err := s.converter.Markup(req.Markup, creq)
	if err != nil {
		writeJSON(w, conversionStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// POST /parse/url  { "url": "https://..." }
func (s *server) handleURL(w http.ResponseWriter, r *http.Request) {
	var req urlReq
	if !s.decode(w, r, &req) {
		return
	}
	if req.URL == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	creq, err := s.request(req.requestOptions)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Fetch.Timeout+5*time.Second)
	defer cancel()
	result, err := s.converter.URL(ctx, req.URL, creq)
	if err != nil {
		writeJSON(w, conversionStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// POST /parse/batch  { "items": [{"markup": "..."}, {"url": "https://..."}] }
func (s *server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchReq
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	creq, err := s.request(req.requestOptions)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	results := make([]convert.Record, len(req.Items))

	// bounded concurrency
	sem := make(chan struct{}, s.cfg.Concurrency)
	done := make(chan int, len(req.Items))

	for i, item := range req.Items {
		sem <- struct{}{} // acquire
		go func(i int, item batchItem) {
			defer func() { <-sem; done <- i }()
			results[i] = s.convertItem(r.Context(), item, creq)
		}(i, item)
	}
	// wait
	for range req.Items {
		<-done
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *server) convertItem(ctx context.Context, item batchItem, req convert.Request) convert.Record {
	var (
		result *models.ConvertResult
		err    error
	)
	switch {
	case item.URL != "":
		ctx, cancel := context.WithTimeout(ctx, s.cfg.Fetch.Timeout+5*time.Second)
		defer cancel()
		result, err = s.converter.URL(ctx, item.URL, req)
	case item.Markup != "":
		result, err = s.converter.Markup(item.Markup, req)
	default:
		return convert.Record{Error: "item needs markup or url"}
	}
	rec := convert.Record{Source: item.URL, Result: result}
	if err != nil {
		rec.Error = err.Error()
	}
	return rec
}

// POST /parse/upload (multipart file=...) -> NDJSON stream
func (s *server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart parse error"})
		return
	}
	f, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file part 'file' required"})
		return
	}
	defer f.Close()

	sources, err := ioformats.ReadSourcesFrom(f, header.Filename)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	creq, err := s.request(requestOptions{
		Selector: r.FormValue("selector"),
		Summary:  r.FormValue("summary") == "true",
		Format:   r.FormValue("format"),
	})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if v := r.FormValue("evernote"); v != "" {
		creq.Options.Evernote = v == "true"
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	out := ioformats.NewNDJSONWriter(w)
	s.converter.Stream(r.Context(), sources, s.cfg.Concurrency, creq, func(_ int, rec convert.Record) {
		if err := out.Write(rec); err != nil {
			s.log.Warnf("upload: writing record for %s: %v", rec.Source, err)
		}
	})
}

// conversionStatus maps a conversion failure to an HTTP status.
func conversionStatus(err error) int {
	switch {
	case errors.Is(err, extract.ErrInvalidSelector), errors.Is(err, crawler.ErrInvalidURL),
		errors.Is(err, convert.ErrLocalSource):
		return http.StatusBadRequest
	case errors.Is(err, crawler.ErrStatus), errors.Is(err, crawler.ErrUnsupportedContent),
		errors.Is(err, crawler.ErrRobotsDisallowed), isNetError(err):
		return http.StatusBadGateway
	}
	return http.StatusUnprocessableEntity
}

func isNetError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// statusRecorder remembers the status code written through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

var observedPaths = map[string]struct{}{
	"/health":       {},
	"/parse":        {},
	"/parse/url":    {},
	"/parse/batch":  {},
	"/parse/upload": {},
}

func logRequest(l *logger.Logger, m *metrics.Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)
		if _, ok := observedPaths[r.URL.Path]; ok {
			m.ObserveRequest(r.URL.Path, rec.status, elapsed)
		}
		l.Infof("%s %s %d %s", r.Method, r.URL.Path, rec.status, elapsed)
	})
}
