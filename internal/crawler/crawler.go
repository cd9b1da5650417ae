
package crawler

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"

	"markup-tokens/internal/config"
)

var (
	ErrInvalidURL         = errors.New("invalid url")
	ErrStatus             = errors.New("unexpected http status")
	ErrUnsupportedContent = errors.New("unsupported content type")
	ErrRobotsDisallowed   = errors.New("disallowed by robots.txt")
)

// markup media types accepted from servers; an empty Content-Type is accepted too
var acceptedTypes = map[string]struct{}{
	"text/html":             {},
	"application/xhtml+xml": {},
	"application/xml":       {},
	"text/xml":              {},
	"application/enex+xml":  {},
	"text/markdown":         {},
	"text/x-markdown":       {},
}

// Response is a fetched document. Body is capped at the client's size limit
// and must be closed by the caller.
type Response struct {
	Body        io.ReadCloser
	FinalURL    string
	ContentType string
	Elapsed     time.Duration
}

type HTTPClient struct {
	client        *http.Client
	sizeCap       int64
	userAgent     string
	respectRobots bool

	mu     sync.Mutex
	robots map[string]*robotstxt.Group
}

func NewHTTPClient(cfg config.FetchConfig) *HTTPClient {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &HTTPClient{
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		sizeCap:       cfg.SizeCap,
		userAgent:     cfg.UserAgent,
		respectRobots: cfg.RespectRobots,
		robots:        map[string]*robotstxt.Group{},
	}
}

// IsURL reports whether s is an absolute http or https URL.
func IsURL(s string) bool {
	_, err := parseURL(s)
	return err == nil
}

func parseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return u, nil
}

func (h *HTTPClient) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	start := time.Now()
	u, err := parseURL(rawURL)
	if err != nil {
		return nil, err
	}
	if h.respectRobots {
		if err := h.checkRobots(ctx, u); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w %d", ErrStatus, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" {
		mediaType, _, _ := mime.ParseMediaType(contentType)
		if _, ok := acceptedTypes[mediaType]; !ok {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedContent, contentType)
		}
	}

	var body io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, err
		}
		body = gz
	}

	// enforce a size cap
	return &Response{
		Body: struct {
			io.Reader
			io.Closer
		}{io.LimitReader(body, h.sizeCap), resp.Body},
		FinalURL:    resp.Request.URL.String(),
		ContentType: contentType,
		Elapsed:     time.Since(start),
	}, nil
}

// checkRobots tests u against the robots.txt group of its host for the
// client's user agent. Groups are cached per scheme and host.
func (h *HTTPClient) checkRobots(ctx context.Context, u *url.URL) error {
	base := u.Scheme + "://" + u.Host
	h.mu.Lock()
	group, ok := h.robots[base]
	h.mu.Unlock()

	if !ok {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/robots.txt", nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", h.userAgent)
		resp, err := h.client.Do(req)
		if err != nil {
			return fmt.Errorf("fetching robots.txt: %w", err)
		}
		data, err := robotstxt.FromResponse(resp)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("parsing robots.txt: %w", err)
		}
		group = data.FindGroup(h.userAgent)
		h.mu.Lock()
		h.robots[base] = group
		h.mu.Unlock()
	}

	if !group.Test(u.RequestURI()) {
		return fmt.Errorf("%w: %s", ErrRobotsDisallowed, u.Path)
	}
	return nil
}
