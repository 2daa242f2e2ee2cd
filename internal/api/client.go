// Package api talks to the property-management REST backend.
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
	"strings"
	"time"

	"propadmin/internal/grid"

	"github.com/hashicorp/go-retryablehttp"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

const (
	defaultTimeout       = 20 * time.Second
	defaultOptionRetries = 2
	defaultCacheSize     = 64
	maxErrorBody         = 64 << 10
)

type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	// OptionRetries applies to filter option lookups only; list loads are never retried.
	OptionRetries int
	CacheSize     int
	Logger        *zap.Logger
	// HTTPClient overrides the underlying transport (tests).
	HTTPClient *http.Client
}

// Client implements grid.Fetcher plus the row-level calls the console needs.
type Client struct {
	base    string
	token   string
	list    *retryablehttp.Client
	options *retryablehttp.Client
	cache   *lru.Cache
	log     *zap.Logger
}

var ErrNoBaseURL = errors.New("api: missing backend url")

func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, ErrNoBaseURL
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("api: backend url: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.OptionRetries < 0 {
		cfg.OptionRetries = 0
	} else if cfg.OptionRetries == 0 {
		cfg.OptionRetries = defaultOptionRetries
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaultCacheSize
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	cache, err := lru.New(cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("api: option cache: %w", err)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}

	list := retryablehttp.NewClient()
	list.HTTPClient = hc
	list.RetryMax = 0
	list.CheckRetry = func(context.Context, *http.Response, error) (bool, error) { return false, nil }
	list.ErrorHandler = retryablehttp.PassthroughErrorHandler
	list.Logger = leveled{log.Sugar()}

	opts := retryablehttp.NewClient()
	opts.HTTPClient = hc
	opts.RetryMax = cfg.OptionRetries
	opts.RetryWaitMin = 200 * time.Millisecond
	opts.RetryWaitMax = 2 * time.Second
	opts.ErrorHandler = retryablehttp.PassthroughErrorHandler
	opts.Logger = leveled{log.Sugar()}

	return &Client{
		base:    base,
		token:   strings.TrimSpace(cfg.Token),
		list:    list,
		options: opts,
		cache:   cache,
		log:     log,
	}, nil
}

// URL joins path (and an optional encoded query) onto the backend base.
func (c *Client) URL(path, query string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		if query == "" {
			return path
		}
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + query
	}
	u := c.base + "/" + strings.TrimLeft(path, "/")
	if query != "" {
		u += "?" + query
	}
	return u
}

// RowPath is the resource path of one row under a list endpoint.
func RowPath(listPath, id string) string {
	return strings.TrimRight(listPath, "/") + "/" + url.PathEscape(id)
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string, body []byte) (*retryablehttp.Request, error) {
	var rb any
	if body != nil {
		rb = body
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, rawURL, rb)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) do(hc *retryablehttp.Client, req *retryablehttp.Request) ([]byte, error) {
	resp, err := hc.Do(req)
	if err != nil {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Redacted(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, newError(resp.StatusCode, b)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", req.Method, req.URL.Redacted(), err)
	}
	return b, nil
}

func decodeJSON(b []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return dec.Decode(v)
}

// List issues one GET against a list endpoint. It never retries.
func (c *Client) List(ctx context.Context, path string, params grid.Params) (*grid.Page, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.URL(path, params.Encode()), nil)
	if err != nil {
		return nil, err
	}
	b, err := c.do(c.list, req)
	if err != nil {
		return nil, err
	}
	var page grid.Page
	if err := decodeJSON(b, &page); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if page.Data == nil {
		page.Data = []grid.Row{}
	}
	return &page, nil
}

// Options fetches a filter's option list. Successful results are cached per URL and keys.
func (c *Client) Options(ctx context.Context, rawURL, valueKey, labelKey string) ([]grid.Option, error) {
	u := c.URL(rawURL, "")
	key := u + "\x00" + valueKey + "\x00" + labelKey
	if v, ok := c.cache.Get(key); ok {
		return v.([]grid.Option), nil
	}
	req, err := c.newRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	b, err := c.do(c.options, req)
	if err != nil {
		return nil, err
	}
	opts, err := grid.DecodeOptions(b, valueKey, labelKey)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, opts)
	return opts, nil
}

// Get fetches one resource as raw JSON.
func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.URL(path, ""), nil)
	if err != nil {
		return nil, err
	}
	b, err := c.do(c.list, req)
	if err != nil {
		return nil, err
	}
	if !json.Valid(b) {
		return nil, fmt.Errorf("get %s: response is not json", path)
	}
	return json.RawMessage(b), nil
}

// Update replaces a resource with body (a JSON document).
func (c *Client) Update(ctx context.Context, path string, body []byte) error {
	if !json.Valid(body) {
		return errors.New("update: body is not valid json")
	}
	req, err := c.newRequest(ctx, http.MethodPut, c.URL(path, ""), body)
	if err != nil {
		return err
	}
	_, err = c.do(c.list, req)
	return err
}

func (c *Client) Delete(ctx context.Context, path string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, c.URL(path, ""), nil)
	if err != nil {
		return err
	}
	_, err = c.do(c.list, req)
	return err
}

// History lists the change log of one row, newest first as the backend returns it.
func (c *Client) History(ctx context.Context, listPath, id string) ([]grid.Row, error) {
	raw, err := c.Get(ctx, RowPath(listPath, id)+"/history")
	if err != nil {
		return nil, err
	}
	var entries []grid.Row
	if err := decodeJSON(raw, &entries); err == nil {
		return entries, nil
	}
	var wrapped struct {
		Data []grid.Row `json:"data"`
	}
	if err := decodeJSON(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return wrapped.Data, nil
}

// leveled adapts zap to retryablehttp's LeveledLogger.
type leveled struct{ s *zap.SugaredLogger }

func (l leveled) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l leveled) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l leveled) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l leveled) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
