package facetdex

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
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "facetdex-sdk"

	// maxResponseBytes caps decoded catalog responses.
	maxResponseBytes = 16 << 20
	// maxErrorBody caps the response text kept in a StatusError.
	maxErrorBody = 512
)

// Client calls the catalog API.
type Client struct {
	base      *url.URL
	hc        *http.Client
	timeout   time.Duration
	endpoints Endpoints
	userAgent string
	obs       *observer
}

// New creates a catalog client for baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{timeout: defaultTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	if baseURL == "" {
		return nil, errors.New("facetdex: base URL required")
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("facetdex: parse base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("facetdex: base URL must be http or https, got %q", baseURL)
	}
	base.Path = strings.TrimSuffix(base.Path, "/")

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{}
	}
	ua := cfg.userAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{
		base:      base,
		hc:        hc,
		timeout:   cfg.timeout,
		endpoints: cfg.endpoints.withDefaults(),
		userAgent: ua,
		obs:       obs,
	}, nil
}

// SearchFields fetches the facet schema: every facet key with its ordered values.
func (c *Client) SearchFields(ctx context.Context) (schema Schema, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search_fields", start, err) }()

	if err = c.do(ctx, "search_fields", http.MethodGet, c.endpoints.SearchFields, nil, &schema); err != nil {
		return Schema{}, err
	}
	return schema, nil
}

// Filters fetches the display metadata of the facets.
func (c *Client) Filters(ctx context.Context) (infos []FacetInfo, err error) {
	start := time.Now()
	defer func() { c.obs.observe("filters", start, err) }()

	if err = c.do(ctx, "filters", http.MethodGet, c.endpoints.Filters, nil, &infos); err != nil {
		return nil, err
	}
	return infos, nil
}

// SearchModules runs a filtered search. A null response is an empty result.
func (c *Client) SearchModules(ctx context.Context, q Query) (records []Record, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search_module", start, err) }()

	if q == nil {
		q = Query{}
	}
	body, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("facetdex: encode query: %w", err)
	}
	if err = c.do(ctx, "search_module", http.MethodPost, c.endpoints.SearchModule, body, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// AddToBench adds record id to the caller's bench. Any 2xx status is success.
func (c *Client) AddToBench(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("bench_add", start, err) }()

	if id == "" {
		return errors.New("facetdex: record id required")
	}
	path := strings.ReplaceAll(c.endpoints.BenchAdd, "{id}", url.PathEscape(id))
	return c.do(ctx, "bench_add", http.MethodGet, path, nil, nil)
}

// Ping checks that the catalog answers the search-fields endpoint.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	return c.do(ctx, "ping", http.MethodGet, c.endpoints.SearchFields, nil, nil)
}

// do performs one call and decodes a 2xx response into out when out is non-nil.
func (c *Client) do(ctx context.Context, op, method, path string, body []byte, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), rdr)
	if err != nil {
		return fmt.Errorf("facetdex: %s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	applyForwardedHeaders(ctx, req)

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("facetdex: %s: %w: %w", op, ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(text)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("facetdex: %s: decode response: %w", op, err)
	}
	return nil
}

func (c *Client) resolve(path string) string {
	u := *c.base
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	// path is already escaped; RawPath keeps %2F in ids intact.
	raw := u.EscapedPath() + path
	if p, err := url.PathUnescape(raw); err == nil {
		u.Path = p
		u.RawPath = raw
	}
	return u.String()
}
