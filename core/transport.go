package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/m43i/go-scrapybara/internal/version"
)

const (
	// DefaultTimeout bounds each attempt when nothing else is configured.
	DefaultTimeout = 600 * time.Second
	// APIKeyEnv is read when no API key is passed explicitly.
	APIKeyEnv = "SCRAPYBARA_API_KEY"

	maxResponseBytes = 64 * 1024 * 1024
)

// Config is the immutable transport configuration shared by every resource
// client.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	UserAgent  string
	MaxRetries int
}

// Transport builds, sends, retries and decodes requests. It is safe for
// concurrent use; no state is shared between calls.
type Transport struct {
	config     Config
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *Metrics
	retry      RetryPolicy
	sleep      func(ctx context.Context, d time.Duration) error
	maxBody    int64
}

// Option configures a Transport.
type Option func(*Transport)

// WithHTTPClient sets the underlying HTTP engine.
func WithHTTPClient(client *http.Client) Option {
	return func(t *Transport) {
		if client == nil {
			return
		}
		t.httpClient = client
	}
}

// WithLogger sets the logger used for attempt and retry events.
func WithLogger(logger *zap.Logger) Option {
	return func(t *Transport) {
		if logger == nil {
			return
		}
		t.logger = logger
	}
}

// WithMetrics enables request metrics.
func WithMetrics(metrics *Metrics) Option {
	return func(t *Transport) {
		t.metrics = metrics
	}
}

// WithRetryPolicy replaces the retry delay policy.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(t *Transport) {
		t.retry = policy
	}
}

// WithSleeper replaces the function used to wait between retries.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(t *Transport) {
		if sleep == nil {
			return
		}
		t.sleep = sleep
	}
}

// NewTransport validates cfg and returns a Transport. A missing API key or
// base URL fails with a *ConfigError before any network activity.
func NewTransport(cfg Config, opts ...Option) (*Transport, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		cfg.APIKey = strings.TrimSpace(os.Getenv(APIKeyEnv))
	}
	if cfg.APIKey == "" {
		return nil, &ConfigError{Err: ErrMissingAPIKey}
	}

	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	if cfg.BaseURL == "" {
		return nil, &ConfigError{Err: ErrMissingBaseURL}
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)}
	}

	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = version.UserAgent()
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	t := &Transport{
		config:     cfg,
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
		retry:      DefaultRetryPolicy(),
		sleep:      sleepContext,
		maxBody:    maxResponseBytes,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(t)
	}

	return t, nil
}

// Config returns a copy of the transport configuration.
func (t *Transport) Config() Config {
	return t.config
}

// Request describes one API call.
type Request struct {
	// Operation names the call in logs and metrics, e.g. "instance.bash".
	Operation string
	Method    string
	Path      string
	Query     Fields
	// JSON is the request body. Fields values are cleaned of null and
	// omitted entries; any other value is marshalled as is.
	JSON any
	// Form holds non-file fields of a multipart body.
	Form    Fields
	Files   map[string]File
	Headers map[string]string
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

type builtRequest struct {
	operation  string
	method     string
	url        string
	header     http.Header
	body       []byte
	timeout    time.Duration
	maxRetries int
}

// Call sends req and decodes the response into out. out may be nil.
func (t *Transport) Call(ctx context.Context, req Request, out any, opts ...RequestOption) error {
	resp, err := t.Do(ctx, req, opts...)
	if err != nil {
		return err
	}
	return Decode(resp, out)
}

// Do sends req, retrying 429 and 503 responses within the call's retry
// budget. The last response is returned as is; classify it with Decode.
func (t *Transport) Do(ctx context.Context, req Request, opts ...RequestOption) (*Response, error) {
	built, err := t.build(req, resolveRequestOptions(opts))
	if err != nil {
		return nil, err
	}

	logger := t.logger.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("operation", built.operation),
	)

	start := time.Now()
	defer func() {
		t.metrics.observeCall(built.operation, time.Since(start))
	}()

	for attempt := 0; ; attempt++ {
		attemptStart := time.Now()
		resp, err := t.send(ctx, built)
		if err != nil {
			t.metrics.observeAttempt(built.operation, 0)
			logger.Debug("request failed",
				zap.String("method", built.method),
				zap.String("url", built.url),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return nil, err
		}

		t.metrics.observeAttempt(built.operation, resp.StatusCode)
		logger.Debug("request completed",
			zap.String("method", built.method),
			zap.String("url", built.url),
			zap.Int("status", resp.StatusCode),
			zap.Int("attempt", attempt),
			zap.Duration("duration", time.Since(attemptStart)),
		)

		if !ShouldRetry(resp.StatusCode, attempt, built.maxRetries) {
			return resp, nil
		}

		delay := t.retry.Delay(resp.Header, attempt)
		t.metrics.observeRetry(built.operation, resp.StatusCode)
		logger.Warn("retrying request",
			zap.Int("status", resp.StatusCode),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", built.maxRetries),
			zap.Duration("delay", delay),
		)

		if err := t.sleep(ctx, delay); err != nil {
			return nil, &TransportError{Method: built.method, URL: built.url, Err: err}
		}
	}
}

func (t *Transport) build(req Request, opts RequestOptions) (*builtRequest, error) {
	if strings.TrimSpace(t.config.BaseURL) == "" {
		return nil, &ConfigError{Err: ErrMissingBaseURL}
	}

	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}

	operation := strings.TrimSpace(req.Operation)
	if operation == "" {
		operation = method + " " + strings.TrimLeft(req.Path, "/")
	}

	rawURL := JoinURL(t.config.BaseURL, req.Path)
	query, err := encodeQuery(req.Query, opts.Query)
	if err != nil {
		return nil, err
	}
	if query != "" {
		rawURL += "?" + query
	}

	header := make(http.Header)
	header.Set("x-api-key", t.config.APIKey)
	header.Set("User-Agent", t.config.UserAgent)
	header.Set("Accept", "application/json")

	var body []byte
	switch {
	case len(req.Files) > 0:
		payload, contentType, err := buildMultipart(req.Form, req.Files)
		if err != nil {
			return nil, fmt.Errorf("scrapybara: build multipart body: %w", err)
		}
		body = payload
		header.Set("Content-Type", contentType)

	case req.JSON != nil:
		payload, err := encodeJSON(req.JSON)
		if err != nil {
			return nil, fmt.Errorf("scrapybara: marshal request body: %w", err)
		}
		body = payload
		header.Set("Content-Type", "application/json")
	}

	for key, value := range req.Headers {
		header.Set(key, value)
	}
	for key, value := range opts.Headers {
		header.Set(key, value)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = t.config.Timeout
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	maxRetries := t.config.MaxRetries
	if opts.MaxRetries != nil {
		maxRetries = *opts.MaxRetries
	}

	return &builtRequest{
		operation:  operation,
		method:     method,
		url:        rawURL,
		header:     header,
		body:       body,
		timeout:    timeout,
		maxRetries: maxRetries,
	}, nil
}

func (t *Transport) send(ctx context.Context, built *builtRequest) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, built.timeout)
	defer cancel()

	var body io.Reader
	if built.body != nil {
		body = bytes.NewReader(built.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, built.method, built.url, body)
	if err != nil {
		return nil, &TransportError{Method: built.method, URL: built.url, Err: err}
	}
	httpReq.Header = built.header.Clone()

	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Method: built.method, URL: built.url, Err: err}
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, t.maxBody+1))
	if err != nil {
		return nil, &TransportError{Method: built.method, URL: built.url, Err: fmt.Errorf("read response body: %w", err)}
	}
	if int64(len(data)) > t.maxBody {
		return nil, &TransportError{Method: built.method, URL: built.url, Err: ErrResponseTooLarge}
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
	}, nil
}

// JoinURL joins base and path with exactly one slash between them.
func JoinURL(base, path string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	path = strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "" {
		return base
	}
	return base + "/" + path
}

func encodeJSON(body any) ([]byte, error) {
	if fields, ok := body.(Fields); ok {
		body = fields.Clean()
	}
	return json.Marshal(body)
}

func encodeQuery(params Fields, overrides map[string]string) (string, error) {
	values := make(url.Values)
	for key, value := range params.Clean() {
		encoded, err := queryValues(value)
		if err != nil {
			return "", fmt.Errorf("scrapybara: query parameter %q: %w", key, err)
		}
		for _, v := range encoded {
			values.Add(key, v)
		}
	}
	for key, value := range overrides {
		values.Set(key, value)
	}
	return values.Encode(), nil
}

func queryValues(value any) ([]string, error) {
	rv := reflect.ValueOf(value)
	if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Type().Elem().Kind() != reflect.Uint8 {
		out := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			v, err := stringValue(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}

	v, err := stringValue(value)
	if err != nil {
		return nil, err
	}
	return []string{v}, nil
}

func stringValue(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case bool:
		if v {
			return "true", nil
		}
		return "false", nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v), nil
	case float32, float64:
		return fmt.Sprintf("%g", v), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		b, err := json.Marshal(value)
		if err != nil {
			return "", fmt.Errorf("cannot convert value of type %T to string: %w", value, err)
		}
		return string(b), nil
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
