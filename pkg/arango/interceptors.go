package arango

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/fivetwenty-io/arango/internal/constants"
)

// Request represents an HTTP request that can be intercepted.
type Request struct {
	Method   string
	Path     string
	Headers  http.Header
	Body     []byte
	Metadata map[string]interface{}
}

// Response represents an HTTP response that can be intercepted.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Error      error
}

// RequestInterceptor is called before a request is sent.
type RequestInterceptor func(ctx context.Context, req *Request) error

// ResponseInterceptor is called after a response is received.
type ResponseInterceptor func(ctx context.Context, req *Request, resp *Response) error

// InterceptorChain manages a chain of interceptors.
type InterceptorChain struct {
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

// NewInterceptorChain creates a new interceptor chain.
func NewInterceptorChain() *InterceptorChain {
	return &InterceptorChain{
		requestInterceptors:  make([]RequestInterceptor, 0),
		responseInterceptors: make([]ResponseInterceptor, 0),
	}
}

// AddRequestInterceptor adds a request interceptor to the chain.
func (c *InterceptorChain) AddRequestInterceptor(interceptor RequestInterceptor) {
	c.requestInterceptors = append(c.requestInterceptors, interceptor)
}

// AddResponseInterceptor adds a response interceptor to the chain.
func (c *InterceptorChain) AddResponseInterceptor(interceptor ResponseInterceptor) {
	c.responseInterceptors = append(c.responseInterceptors, interceptor)
}

// ExecuteRequestInterceptors runs all request interceptors.
func (c *InterceptorChain) ExecuteRequestInterceptors(ctx context.Context, req *Request) error {
	for _, interceptor := range c.requestInterceptors {
		err := interceptor(ctx, req)
		if err != nil {
			return fmt.Errorf("request interceptor failed: %w", err)
		}
	}

	return nil
}

// ExecuteResponseInterceptors runs all response interceptors.
func (c *InterceptorChain) ExecuteResponseInterceptors(ctx context.Context, req *Request, resp *Response) error {
	for _, interceptor := range c.responseInterceptors {
		err := interceptor(ctx, req, resp)
		if err != nil {
			return fmt.Errorf("response interceptor failed: %w", err)
		}
	}

	return nil
}

// Common Interceptors

// LoggingInterceptor logs requests.
func LoggingInterceptor(logger Logger) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		logger.Debug("API Request", map[string]interface{}{
			"method": req.Method,
			"path":   req.Path,
		})

		return nil
	}
}

// LoggingResponseInterceptor logs responses.
func LoggingResponseInterceptor(logger Logger) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		fields := map[string]interface{}{
			"method":      req.Method,
			"path":        req.Path,
			"status_code": resp.StatusCode,
		}

		if resp.Error != nil {
			logger.Error("API Response Error", fields)
		} else {
			logger.Debug("API Response", fields)
		}

		return nil
	}
}

// RequestIDInterceptor tags every request with a client-generated id, useful
// for correlating verbose traces against server logs.
func RequestIDInterceptor() RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		if req.Headers == nil {
			req.Headers = make(http.Header)
		}

		if req.Headers.Get("X-Request-ID") == "" {
			req.Headers.Set("X-Request-ID", uuid.NewString())
		}

		return nil
	}
}

// AsyncInterceptor marks every request in the chain for asynchronous
// execution by attaching the x-arango-async header.
func AsyncInterceptor(store bool) RequestInterceptor {
	mode := constants.AsyncFireAndForget
	if store {
		mode = constants.AsyncStore
	}

	return func(ctx context.Context, req *Request) error {
		if req.Headers == nil {
			req.Headers = make(http.Header)
		}

		req.Headers.Set(constants.HeaderAsync, mode)

		return nil
	}
}

// RateLimitInterceptor implements client-side rate limiting.
func RateLimitInterceptor(requestsPerSecond int) RequestInterceptor {
	// Simple token bucket implementation
	bucket := make(chan struct{}, requestsPerSecond)

	// Fill the bucket initially
	for i := 0; i < requestsPerSecond; i++ {
		bucket <- struct{}{}
	}

	// Refill the bucket periodically
	go func() {
		ticker := time.NewTicker(time.Second / time.Duration(requestsPerSecond))
		defer ticker.Stop()

		for range ticker.C {
			select {
			case bucket <- struct{}{}:
			default:
				// Bucket is full
			}
		}
	}()

	return func(ctx context.Context, req *Request) error {
		select {
		case <-bucket:
			return nil
		case <-ctx.Done():
			return fmt.Errorf("waiting for rate limit slot: %w", ctx.Err())
		}
	}
}
