// Package http implements the transport under every resource client: verb
// primitives over one reusable HTTP handle, credential attachment, the single
// 401-renew-retry, and envelope-to-error translation.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fivetwenty-io/arango/internal/auth"
	"github.com/fivetwenty-io/arango/internal/constants"
	"github.com/fivetwenty-io/arango/pkg/arango"
)

// Request represents an HTTP request to the server.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Headers map[string]string
	Body    interface{}
}

// Response represents a decoded-enough HTTP response: status, headers, and
// the raw body for the caller's payload pass.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Client is the transport shared by all resource clients. It never retries a
// request, with one exception: a 401 answered by renewable credentials
// triggers exactly one token renewal and one retry of the original request.
// Callers wanting broader retry policies supply their own *http.Client.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	tokenManager auth.TokenManager
	logger       arango.Logger
	debug        bool
	userAgent    string
	interceptors *arango.InterceptorChain

	useBasicAuth  bool
	basicUsername string
	basicPassword string
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the structured logger.
func WithLogger(logger arango.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithHTTPClient swaps the underlying *http.Client, e.g. for one built by
// retryablehttp when the caller wants transient-failure retries.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout sets the default timeout of the owned *http.Client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithBasicAuth authenticates every request with HTTP basic auth instead of
// a bearer token.
func WithBasicAuth(username, password string) Option {
	return func(c *Client) {
		c.useBasicAuth = true
		c.basicUsername = username
		c.basicPassword = password
	}
}

// WithInterceptors attaches a request/response interceptor chain.
func WithInterceptors(chain *arango.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// NewClient creates a transport for the given base URL. tokenManager may be
// nil for unauthenticated or basic-auth use.
func NewClient(baseURL string, tokenManager auth.TokenManager, opts ...Option) *Client {
	client := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   &http.Client{Timeout: constants.DefaultHTTPTimeout},
		tokenManager: tokenManager,
		logger:       arango.NoopLogger(),
		userAgent:    "arango-go-client",
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Do executes the request. The returned Response is non-nil whenever a
// well-formed HTTP response arrived, error or not, so callers can inspect
// the status alongside a typed failure.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	var bodyBytes []byte

	if req.Body != nil {
		var err error

		bodyBytes, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
	}

	interceptReq, err := c.runRequestInterceptors(ctx, req, bodyBytes)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, req, interceptReq, bodyBytes)

	// One renewal, one retry. A transport holding non-renewable credentials
	// surfaces the 401 untouched.
	if err == nil && resp.StatusCode == http.StatusUnauthorized &&
		c.tokenManager != nil && c.tokenManager.Renewable() {
		renewErr := c.tokenManager.RefreshToken(ctx)
		if renewErr != nil {
			return resp, renewErr
		}

		resp, err = c.send(ctx, req, interceptReq, bodyBytes)
		if err == nil && resp.StatusCode == http.StatusUnauthorized {
			return resp, &arango.AuthenticationError{
				Kind: arango.AuthRejected,
				Err:  arango.ParseArangoError(resp.StatusCode, resp.Body),
			}
		}
	}

	if err != nil {
		return resp, err
	}

	if respErr := c.errorFromStatus(resp); respErr != nil {
		return resp, respErr
	}

	return resp, nil
}

func (c *Client) send(ctx context.Context, req *Request, interceptReq *arango.Request, body []byte) (*Response, error) {
	fullURL := c.baseURL + req.Path
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if interceptReq != nil {
		for key, values := range interceptReq.Headers {
			for _, value := range values {
				httpReq.Header.Set(key, value)
			}
		}
	}

	err = c.attachCredentials(ctx, httpReq)
	if err != nil {
		return nil, err
	}

	if c.debug {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    fullURL,
		})
	}

	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &arango.NetworkError{Err: err}
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &arango.NetworkError{Err: err}
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}

	if c.debug {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"method":      req.Method,
			"url":         fullURL,
			"status_code": resp.StatusCode,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}

	c.runResponseInterceptors(ctx, interceptReq, resp)

	return resp, nil
}

func (c *Client) attachCredentials(ctx context.Context, httpReq *http.Request) error {
	if c.useBasicAuth {
		httpReq.SetBasicAuth(c.basicUsername, c.basicPassword)

		return nil
	}

	if c.tokenManager == nil {
		return nil
	}

	token, err := c.tokenManager.GetToken(ctx)
	if err != nil {
		return err
	}

	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	return nil
}

// errorFromStatus turns an error status into a typed failure. 401 is handled
// by the caller; 304 is not an error (conditional reads branch on it).
func (c *Client) errorFromStatus(resp *Response) error {
	if resp.StatusCode < http.StatusBadRequest {
		return nil
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return &arango.AuthenticationError{
			Kind: arango.AuthRejected,
			Err:  arango.ParseArangoError(resp.StatusCode, resp.Body),
		}
	}

	return arango.ParseArangoError(resp.StatusCode, resp.Body)
}

func (c *Client) runRequestInterceptors(ctx context.Context, req *Request, body []byte) (*arango.Request, error) {
	if c.interceptors == nil {
		return nil, nil //nolint:nilnil // absent chain means nothing to carry
	}

	interceptReq := &arango.Request{
		Method:  req.Method,
		Path:    req.Path,
		Headers: make(http.Header),
		Body:    body,
	}

	err := c.interceptors.ExecuteRequestInterceptors(ctx, interceptReq)
	if err != nil {
		return nil, err
	}

	return interceptReq, nil
}

func (c *Client) runResponseInterceptors(ctx context.Context, interceptReq *arango.Request, resp *Response) {
	if c.interceptors == nil {
		return
	}

	if interceptReq == nil {
		interceptReq = &arango.Request{}
	}

	_ = c.interceptors.ExecuteResponseInterceptors(ctx, interceptReq, &arango.Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
	})
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Head performs a HEAD request.
func (c *Client) Head(ctx context.Context, path string, headers map[string]string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodHead, Path: path, Headers: headers})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}
