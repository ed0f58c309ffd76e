// Package api is the HTTP transport to the DraCor REST API and its SPARQL endpoint.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/dracor/internal/domain"
	"github.com/kailas-cloud/dracor/internal/metrics"
)

// Default upstream locations.
const (
	DefaultBaseURL   = "https://dracor.org/api/v1"
	DefaultSPARQLURL = "https://dracor.org/fuseki/sparql"
	DefaultTimeout   = 30 * time.Second
)

// Accept headers used by the API.
const (
	AcceptJSON   = "application/json"
	AcceptCSV    = "text/csv"
	AcceptText   = "text/plain"
	AcceptXML    = "application/xml"
	AcceptSPARQL = "application/sparql-results+xml"
)

// maxErrorBody caps how much of an error response is kept for diagnostics.
const maxErrorBody = 1 << 10

// Memo is the consumer interface for the payload memo (ISP).
type Memo interface {
	Get(ctx context.Context, url, accept string) ([]byte, bool)
	Put(ctx context.Context, url, accept string, body []byte)
	Invalidate(ctx context.Context, url string) (int, error)
	Purge(ctx context.Context) (int, error)
}

// Config holds the transport settings. Zero values fall back to defaults.
type Config struct {
	BaseURL    string
	SPARQLURL  string
	HTTPClient *http.Client
	Timeout    time.Duration
	Limiter    *rate.Limiter
	Memo       Memo
	Metrics    *metrics.Upstream
	Logger     *zap.Logger
}

// Client issues requests against the DraCor API.
type Client struct {
	base      *url.URL
	sparqlURL string
	http      *http.Client
	limiter   *rate.Limiter
	memo      Memo
	metrics   *metrics.Upstream
	logger    *zap.Logger
}

// New creates a transport client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.SPARQLURL == "" {
		cfg.SPARQLURL = DefaultSPARQLURL
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}
	if _, err := url.Parse(cfg.SPARQLURL); err != nil {
		return nil, fmt.Errorf("invalid sparql url %q: %w", cfg.SPARQLURL, err)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		base:      base,
		sparqlURL: cfg.SPARQLURL,
		http:      hc,
		limiter:   cfg.Limiter,
		memo:      cfg.Memo,
		metrics:   cfg.Metrics,
		logger:    logger,
	}, nil
}

// URL resolves an API path (e.g. "/corpora/rus") against the base URL.
// path is taken as already escaped; callers escape parameters with url.PathEscape.
func (c *Client) URL(path string, query url.Values) string {
	u := *c.base
	escaped := c.base.EscapedPath() + "/" + strings.TrimLeft(path, "/")
	if unescaped, err := url.PathUnescape(escaped); err == nil {
		u.Path = unescaped
		u.RawPath = escaped
	} else {
		u.Path = escaped
		u.RawPath = ""
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string { return c.base.String() }

// GetJSON fetches path and decodes the JSON body into out.
// Numbers are decoded as json.Number so they keep their textual form.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.get(ctx, path, query, AcceptJSON)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w: %w", path, domain.ErrUpstream, err)
	}
	return nil
}

// GetText fetches path with the given Accept header and returns the raw body.
func (c *Client) GetText(ctx context.Context, path string, query url.Values, accept string) (string, error) {
	body, err := c.get(ctx, path, query, accept)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// PostSPARQL runs query against the SPARQL endpoint and returns the XML result document.
// SPARQL responses are never memoized.
func (c *Client) PostSPARQL(ctx context.Context, query string) (string, error) {
	form := url.Values{"query": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sparqlURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build sparql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", AcceptSPARQL)

	body, err := c.send(req, "sparql")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Ping checks that the API answers /info. The memo is bypassed.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL("/info", nil), http.NoBody)
	if err != nil {
		return fmt.Errorf("build ping request: %w", err)
	}
	req.Header.Set("Accept", AcceptJSON)
	if _, err := c.send(req, "/info"); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Invalidate drops memoized responses for path.
func (c *Client) Invalidate(ctx context.Context, path string, query url.Values) (int, error) {
	if c.memo == nil {
		return 0, nil
	}
	n, err := c.memo.Invalidate(ctx, c.URL(path, query))
	if err != nil {
		return n, fmt.Errorf("invalidate %s: %w", path, err)
	}
	return n, nil
}

// Purge drops every memoized response.
func (c *Client) Purge(ctx context.Context) (int, error) {
	if c.memo == nil {
		return 0, nil
	}
	n, err := c.memo.Purge(ctx)
	if err != nil {
		return n, fmt.Errorf("purge payload cache: %w", err)
	}
	return n, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, accept string) ([]byte, error) {
	target := c.URL(path, query)
	if c.memo != nil {
		if body, ok := c.memo.Get(ctx, target, accept); ok {
			return body, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", accept)

	body, err := c.send(req, endpointLabel(path))
	if err != nil {
		return nil, err
	}
	if c.memo != nil {
		c.memo.Put(ctx, target, accept, body)
	}
	return body, nil
}

// send waits for the limiter, performs req and maps the response status.
func (c *Client) send(req *http.Request, endpoint string) ([]byte, error) {
	ctx := req.Context()
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.observe(endpoint, "error", duration)
		c.logger.Warn("Upstream request failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w: %w", req.Method, req.URL, domain.ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.observe(endpoint, strconv.Itoa(resp.StatusCode), duration)
	c.logger.Debug("Upstream request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, statusError(req, resp.StatusCode, snippet)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w: %w", req.URL, domain.ErrUpstream, err)
	}
	return body, nil
}

func (c *Client) observe(endpoint, status string, d time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.RequestsTotal.WithLabelValues(endpoint, status).Inc()
	c.metrics.RequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// StatusError is a non-2xx upstream response other than 400 and 404.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: upstream status %d", e.Method, e.URL, e.StatusCode)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *StatusError) Unwrap() error { return domain.ErrUpstream }

func statusError(req *http.Request, status int, body []byte) error {
	detail := extractDetail(body)
	switch status {
	case http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", req.Method, req.URL, domain.ErrNotFound)
	case http.StatusBadRequest:
		if detail != "" {
			return fmt.Errorf("%s %s: %s: %w", req.Method, req.URL, detail, domain.ErrBadRequest)
		}
		return fmt.Errorf("%s %s: %w", req.Method, req.URL, domain.ErrBadRequest)
	default:
		return &StatusError{Method: req.Method, URL: req.URL.String(), StatusCode: status, Detail: detail}
	}
}

// extractDetail pulls a human-readable message out of an error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	return strings.TrimSpace(string(body))
}

// staticSegments are the literal path segments of the API; anything else is a parameter.
var staticSegments = map[string]bool{
	"info": true, "corpora": true, "plays": true, "metadata": true, "csv": true,
	"metrics": true, "tei": true, "txt": true, "characters": true, "networkdata": true,
	"gexf": true, "graphml": true, "relations": true, "spoken-text": true,
	"spoken-text-by-character": true, "stage-directions": true,
	"stage-directions-with-speakers": true, "character": true, "id": true,
	"wikidata": true, "author": true, "author-info": true, "mixnmatch": true, "rdf": true,
	"dts": true, "collection": true, "navigation": true, "document": true,
}

// endpointLabel collapses parameter segments so metrics stay low-cardinality:
// "/corpora/rus/plays/gogol-revizor" -> "/corpora/{}/plays/{}".
func endpointLabel(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segments {
		if !staticSegments[s] {
			segments[i] = "{}"
		}
	}
	return "/" + strings.Join(segments, "/")
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool { return errors.Is(err, domain.ErrNotFound) }
