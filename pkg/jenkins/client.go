// Copyright 2026 Informatics Matters. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package jenkins provides a minimal client for the Jenkins REST API:
// job configuration transfer and credential creation.
package jenkins

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/cockroachdb/errors"

	"github.com/informaticsmatters/jenkins-utils/pkg/observability"
)

const (
	// DefaultTimeout is the per-request timeout of the default HTTP client.
	DefaultTimeout = 30 * time.Second
	// DefaultRetryAttempts is how many times an idempotent GET is tried.
	DefaultRetryAttempts = 3
	// DefaultRetryDelay is the base delay between GET attempts.
	DefaultRetryDelay = 200 * time.Millisecond
)

// Client talks to a single Jenkins server.
type Client struct {
	baseURL  string
	username string
	apiToken string

	httpClient *http.Client
	timeout    time.Duration
	insecure   bool

	retryAttempts uint
	retryDelay    time.Duration

	logger observability.Logger

	crumbMu    sync.Mutex
	crumbReady bool
	crumbField string
	crumbValue string
}

// Option configures a Client.
type Option func(*Client)

// WithBasicAuth sets the user and API token, overriding any user info
// embedded in the server URL.
func WithBasicAuth(username, apiToken string) Option {
	return func(c *Client) {
		c.username = username
		c.apiToken = apiToken
	}
}

// WithHTTPClient replaces the default HTTP client.
// WithTimeout and WithInsecureSkipVerify are ignored when this is set.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithInsecureSkipVerify disables TLS certificate verification, for
// servers with self-signed or improperly installed certificates.
func WithInsecureSkipVerify(skip bool) Option {
	return func(c *Client) {
		c.insecure = skip
	}
}

// WithRetry sets the GET retry policy. Attempts below 1 are treated as 1.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(c *Client) {
		if attempts < 1 {
			attempts = 1
		}
		c.retryAttempts = attempts
		c.retryDelay = delay
	}
}

// WithLogger sets the logger.
func WithLogger(l observability.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a client for the server at rawURL. The URL is usually
// of the form https://<user>:<token>@<host>; embedded user info is moved
// to basic auth and stripped from the base URL.
func NewClient(rawURL string, opts ...Option) (*Client, error) {
	parsed, err := validateBaseURL(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid base URL")
	}

	c := &Client{
		timeout:       DefaultTimeout,
		retryAttempts: DefaultRetryAttempts,
		retryDelay:    DefaultRetryDelay,
		logger:        observability.Nop(),
	}

	if parsed.User != nil {
		c.username = parsed.User.Username()
		c.apiToken, _ = parsed.User.Password()
		parsed.User = nil
	}
	parsed.RawQuery = ""
	parsed.Fragment = ""
	c.baseURL = strings.TrimSuffix(parsed.String(), "/")

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if c.insecure {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
		}
		// Crumbs are bound to the session cookie they were issued with.
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create cookie jar")
		}
		c.httpClient = &http.Client{
			Timeout:   c.timeout,
			Transport: transport,
			Jar:       jar,
		}
	}

	return c, nil
}

// BaseURL returns the server URL without credentials.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Version connects to the server and returns the version it reports in
// the X-Jenkins header.
func (c *Client) Version(ctx context.Context) (string, error) {
	resp, err := c.get(ctx, "/api/json")
	if err != nil {
		return "", errors.Wrap(err, "failed to connect to Jenkins")
	}

	version := resp.header.Get("X-Jenkins")
	if version == "" {
		return "", errors.Newf("%s does not look like a Jenkins server (no X-Jenkins header)", c.baseURL)
	}

	c.logger.Debug("Connected", observability.String("version", version))
	return version, nil
}

// response is a fully read HTTP response.
type response struct {
	status int
	header http.Header
	body   []byte
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	if c.username != "" || c.apiToken != "" {
		req.SetBasicAuth(c.username, c.apiToken)
	}
	return req, nil
}

func (c *Client) send(req *http.Request, path string) (*response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", req.Method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Jenkins answers a successful form POST with a redirect; the
		// client follows it, but a disabled redirect policy surfaces it.
		if !(req.Method == http.MethodPost && resp.StatusCode == http.StatusFound) {
			return nil, newAPIError(req.Method, path, resp.StatusCode, data)
		}
	}

	return &response{status: resp.StatusCode, header: resp.Header, body: data}, nil
}

// get performs an idempotent GET, retrying network errors and 5xx.
func (c *Client) get(ctx context.Context, path string) (*response, error) {
	var out *response
	err := retry.Do(
		func() error {
			req, err := c.newRequest(ctx, http.MethodGet, path, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := c.send(req, path)
			if err != nil {
				var apiErr *APIError
				if errors.As(err, &apiErr) && !apiErr.retryable() {
					return retry.Unrecoverable(err)
				}
				return err
			}
			out = resp
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.retryAttempts),
		retry.Delay(c.retryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("Retrying request",
				observability.String("path", path),
				observability.Int("attempt", int(n)+1),
				observability.Err(err))
		}),
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// post performs a POST with a CSRF crumb when the server issues one.
// POSTs are never retried.
func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader) (*response, error) {
	field, value, err := c.crumb(ctx)
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if field != "" {
		req.Header.Set(field, value)
	}

	return c.send(req, path)
}

// crumb returns the CSRF crumb header, fetching it once per client.
// A server without a crumb issuer has CSRF protection disabled.
func (c *Client) crumb(ctx context.Context) (string, string, error) {
	c.crumbMu.Lock()
	defer c.crumbMu.Unlock()

	if c.crumbReady {
		return c.crumbField, c.crumbValue, nil
	}

	resp, err := c.get(ctx, "/crumbIssuer/api/json")
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.crumbReady = true
			return "", "", nil
		}
		return "", "", errors.Wrap(err, "failed to get crumb")
	}

	var crumb struct {
		Crumb             string `json:"crumb"`
		CrumbRequestField string `json:"crumbRequestField"`
	}
	if err := json.Unmarshal(resp.body, &crumb); err != nil {
		return "", "", errors.Wrap(err, "failed to decode crumb")
	}

	c.crumbField = crumb.CrumbRequestField
	c.crumbValue = crumb.Crumb
	c.crumbReady = true
	return c.crumbField, c.crumbValue, nil
}
