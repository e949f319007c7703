package core

import (
	"strings"
	"time"
)

// RequestOptions are per-call settings. Unset fields fall back to the
// transport defaults.
type RequestOptions struct {
	// Timeout bounds each attempt. Zero means the transport default.
	Timeout time.Duration
	// MaxRetries is the number of retries for 429 and 503 responses. Nil
	// means the transport default, which is 0.
	MaxRetries *int
	// Headers are added to the request and win over base headers.
	Headers map[string]string
	// Query parameters are added to the request and win over the call's own
	// parameters.
	Query map[string]string
}

// RequestOption mutates RequestOptions for a single call.
type RequestOption func(*RequestOptions)

// WithRequestTimeout overrides the timeout for one call.
func WithRequestTimeout(timeout time.Duration) RequestOption {
	return func(opts *RequestOptions) {
		if timeout <= 0 {
			return
		}
		opts.Timeout = timeout
	}
}

// WithRetries sets the retry budget for one call.
func WithRetries(maxRetries int) RequestOption {
	return func(opts *RequestOptions) {
		if maxRetries < 0 {
			maxRetries = 0
		}
		opts.MaxRetries = &maxRetries
	}
}

// WithHeader adds a header to one call.
func WithHeader(key, value string) RequestOption {
	return func(opts *RequestOptions) {
		if strings.TrimSpace(key) == "" {
			return
		}
		if opts.Headers == nil {
			opts.Headers = make(map[string]string)
		}
		opts.Headers[key] = value
	}
}

// WithQuery adds a query parameter to one call.
func WithQuery(key, value string) RequestOption {
	return func(opts *RequestOptions) {
		if strings.TrimSpace(key) == "" {
			return
		}
		if opts.Query == nil {
			opts.Query = make(map[string]string)
		}
		opts.Query[key] = value
	}
}

// WithOptions merges a prepared RequestOptions value into one call.
func WithOptions(in RequestOptions) RequestOption {
	return func(opts *RequestOptions) {
		if in.Timeout > 0 {
			opts.Timeout = in.Timeout
		}
		if in.MaxRetries != nil {
			WithRetries(*in.MaxRetries)(opts)
		}
		for key, value := range in.Headers {
			WithHeader(key, value)(opts)
		}
		for key, value := range in.Query {
			WithQuery(key, value)(opts)
		}
	}
}

func resolveRequestOptions(opts []RequestOption) RequestOptions {
	var out RequestOptions
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&out)
	}
	return out
}
