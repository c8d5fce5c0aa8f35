// Package client talks to the qguru server: it fetches source files and runs
// engine queries over plain HTTP GET requests.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kobzarvs/qguru/internal/logger"
	"github.com/kobzarvs/qguru/internal/position"
)

// ErrStatus is wrapped by errors for responses with a non-2xx status.
var ErrStatus = errors.New("client: unexpected status")

const DefaultCacheSize = 64

// Client implements the navigator's file and query providers and the menu's
// applicability asker. It is safe for concurrent use.
type Client struct {
	base  *url.URL
	http  *http.Client
	files *lru.Cache[string, string]
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New returns a client for the server at base. Up to cacheSize fetched files
// are kept in memory; a size below 1 uses DefaultCacheSize.
func New(base string, cacheSize int, opts ...Option) (*Client, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parse server url: %q is not absolute", base)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if cacheSize < 1 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, string](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create file cache: %w", err)
	}
	c := &Client{base: u, http: http.DefaultClient, files: cache}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Fetch returns the content of the file at path. sel, when set, is passed
// to the server as the "s" parameter.
func (c *Client) Fetch(ctx context.Context, path string, sel *position.Range) (string, error) {
	if sel == nil {
		if src, ok := c.files.Get(path); ok {
			return src, nil
		}
	}
	params := url.Values{"path": {path}}
	if sel != nil {
		params.Set("s", sel.String())
	}
	body, hdr, err := c.get(ctx, "file", params)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", path, err)
	}
	if b := hdr.Get(position.SelectionHeader); b != "" {
		logger.Debug("selection bytes", "path", path, "bytes", b)
	}
	src := string(body)
	c.files.Add(path, src)
	return src, nil
}

// Query runs mode at pos and returns the engine's plain-text report.
func (c *Client) Query(ctx context.Context, mode, pos string) (string, error) {
	body, _, err := c.get(ctx, "query", url.Values{"mode": {mode}, "pos": {pos}, "format": {"plain"}})
	if err != nil {
		return "", fmt.Errorf("query %s: %w", mode, err)
	}
	return string(body), nil
}

type whatResult struct {
	What struct {
		Modes []string `json:"modes"`
	} `json:"what"`
}

// ApplicableModes asks the engine which modes apply at pos.
func (c *Client) ApplicableModes(ctx context.Context, pos string) ([]string, error) {
	body, _, err := c.get(ctx, "query", url.Values{"mode": {"what"}, "pos": {pos}, "format": {"json"}})
	if err != nil {
		return nil, fmt.Errorf("query what: %w", err)
	}
	var res whatResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("decode what: %w", err)
	}
	return res.What.Modes, nil
}

// Files lists the files the server is willing to serve.
func (c *Client) Files(ctx context.Context) ([]string, error) {
	body, _, err := c.get(ctx, "files", nil)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	var files []string
	if err := json.Unmarshal(body, &files); err != nil {
		return nil, fmt.Errorf("decode files: %w", err)
	}
	return files, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, http.Header, error) {
	u := c.base.ResolveReference(&url.URL{Path: endpoint, RawQuery: params.Encode()})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Debug("close response body", "url", u.String(), "error", err)
		}
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, fmt.Errorf("%w %d: %s", ErrStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, resp.Header, nil
}
