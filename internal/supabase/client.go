// Package supabase is a small client for the hosted data service: GoTrue
// auth, PostgREST tables and Postgres remote procedures.
package supabase

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

	"github.com/baharkarakas/betzone-api/internal/async"
	"github.com/baharkarakas/betzone-api/internal/metrics"
)

type Config struct {
	URL        string
	AnonKey    string
	ServiceKey string
	// Timeout bounds every outbound call. Defaults to 10s.
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Client struct {
	cfg     Config
	restURL string
	authURL string
	http    *http.Client
	auth    *AuthClient
}

func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("supabase: project URL is required")
	}
	if cfg.AnonKey == "" || cfg.ServiceKey == "" {
		return nil, errors.New("supabase: anon and service keys are required")
	}
	base := strings.TrimRight(cfg.URL, "/")
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("supabase: invalid project URL: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}

	c := &Client{
		cfg:     cfg,
		restURL: base + "/rest/v1",
		authURL: base + "/auth/v1",
		http:    hc,
	}
	c.auth = &AuthClient{client: c}
	return c, nil
}

func (c *Client) Auth() *AuthClient { return c.auth }

// From starts a PostgREST query against table using the service role.
func (c *Client) From(table string) *QueryBuilder {
	return &QueryBuilder{
		client:  c,
		table:   table,
		method:  http.MethodGet,
		columns: "*",
		headers: map[string]string{},
	}
}

// RPC calls a Postgres function and decodes its JSON result into dest
// (which may be nil).
func (c *Client) RPC(ctx context.Context, fn string, params any, dest any) error {
	if params == nil {
		params = map[string]any{}
	}
	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal rpc params: %w", err)
	}
	resp, err := c.do(ctx, "rpc:"+fn, request{
		method: http.MethodPost,
		url:    c.restURL + "/rpc/" + url.PathEscape(fn),
		body:   body,
		key:    c.cfg.ServiceKey,
	})
	if err != nil {
		return err
	}
	if dest == nil || len(resp.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, dest); err != nil {
		return fmt.Errorf("unmarshal rpc %s: %w", fn, err)
	}
	return nil
}

type request struct {
	method  string
	url     string
	body    []byte
	headers map[string]string
	// key is sent as apikey; bearer defaults to key.
	key    string
	bearer string
}

type response struct {
	status int
	header http.Header
	body   []byte
}

// do performs one HTTP call bounded by the configured timeout and maps
// non-2xx answers to *Error.
func (c *Client) do(ctx context.Context, op string, req request) (*response, error) {
	start := time.Now()
	resp, err := async.Call(ctx, c.cfg.Timeout, func(ctx context.Context) (*response, error) {
		return c.roundTrip(ctx, req)
	})

	outcome := "ok"
	switch {
	case errors.Is(err, async.ErrTimeout):
		outcome = "timeout"
		err = fmt.Errorf("%s: %w", op, err)
	case err != nil:
		outcome = "error"
		err = fmt.Errorf("%s: %w", op, err)
	case resp.status >= 400:
		outcome = "error"
		err = parseError(resp.body, resp.status, op)
	}
	metrics.RemoteCallDuration.WithLabelValues(op, outcome).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) roundTrip(ctx context.Context, req request) (*response, error) {
	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	hr, err := http.NewRequestWithContext(ctx, req.method, req.url, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	hr.Header.Set("Content-Type", "application/json")
	hr.Header.Set("Accept", "application/json")
	hr.Header.Set("apikey", req.key)
	bearer := req.bearer
	if bearer == "" {
		bearer = req.key
	}
	hr.Header.Set("Authorization", "Bearer "+bearer)
	for k, v := range req.headers {
		hr.Header.Set(k, v)
	}

	res, err := c.http.Do(hr)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	b, err := io.ReadAll(io.LimitReader(res.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return &response{status: res.StatusCode, header: res.Header, body: b}, nil
}
