package restapi

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

var (
	ErrNoBaseURL = errors.New("base URL is required")
	ErrNoAPIPath = errors.New("API path is required")
)

type Config struct {
	BaseURL string
	APIPath string
	// Timeout bounds every request; zero leaves requests unbounded.
	Timeout    time.Duration
	HTTPClient *http.Client
	// Interceptors run in order, outermost first. Nil selects
	// PassThrough followed by UnwrapErrorBody.
	Interceptors []Interceptor
}

// Client talks to the storefront REST API.
type Client struct {
	baseURL    string
	apiPath    string
	httpClient *http.Client
}

func New(cfg Config) (*Client, error) {
	const op = "restapi.New"

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNoBaseURL)
	}
	if cfg.APIPath == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNoAPIPath)
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var hc http.Client
	if cfg.HTTPClient != nil {
		hc = *cfg.HTTPClient
	}
	if cfg.Timeout > 0 {
		hc.Timeout = cfg.Timeout
	}
	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	interceptors := cfg.Interceptors
	if interceptors == nil {
		interceptors = []Interceptor{PassThrough, UnwrapErrorBody}
	}
	hc.Transport = chain(base, interceptors...)

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiPath:    cfg.APIPath,
		httpClient: &hc,
	}, nil
}

func (c *Client) endpoint(elem ...string) (string, error) {
	return url.JoinPath(c.baseURL, append([]string{"v2", "api", c.apiPath}, elem...)...)
}

// do sends a request and decodes a 2xx JSON body into out when out is
// not nil.
func (c *Client) do(
	ctx context.Context,
	method string,
	query url.Values,
	in, out any,
	elem ...string,
) error {
	const op = "Client.do"

	reqURL, err := c.endpoint(elem...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if len(query) != 0 {
		reqURL += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: failed to encode body: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return apiErr
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	defer res.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}
