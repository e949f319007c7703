// Package scrapybara is a client for the Scrapybara virtual computer API.
//
// New builds a Client that owns the transport configuration and one resource
// client per API area. Instances started through the Client come back as
// *Instance handles that forward calls for their own id.
package scrapybara

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/m43i/go-scrapybara/act"
	"github.com/m43i/go-scrapybara/browser"
	"github.com/m43i/go-scrapybara/code"
	"github.com/m43i/go-scrapybara/core"
	"github.com/m43i/go-scrapybara/env"
	"github.com/m43i/go-scrapybara/instance"
	"github.com/m43i/go-scrapybara/notebook"
	"github.com/m43i/go-scrapybara/tools"
)

// Environment is the base URL of a Scrapybara deployment.
type Environment string

const (
	Production  Environment = "https://api.scrapybara.com"
	Staging     Environment = "https://api.staging.scrapybara.com"
	Development Environment = "https://api.dev.scrapybara.com"
)

// ParseEnvironment maps production, staging or development to its
// Environment.
func ParseEnvironment(name string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "production":
		return Production, nil
	case "staging":
		return Staging, nil
	case "development":
		return Development, nil
	default:
		return "", fmt.Errorf("unknown environment %q", name)
	}
}

type settings struct {
	apiKey      string
	baseURL     string
	environment Environment
	timeout     time.Duration
	userAgent   string
	maxRetries  int
	httpClient  *http.Client
	logger      *zap.Logger
	metrics     *core.Metrics
}

type Option func(*settings)

// WithAPIKey sets the API key. Without it New reads SCRAPYBARA_API_KEY.
func WithAPIKey(apiKey string) Option {
	return func(s *settings) {
		if strings.TrimSpace(apiKey) == "" {
			return
		}
		s.apiKey = strings.TrimSpace(apiKey)
	}
}

// WithBaseURL sets the API base URL. It takes precedence over
// WithEnvironment.
func WithBaseURL(baseURL string) Option {
	return func(s *settings) {
		if strings.TrimSpace(baseURL) == "" {
			return
		}
		s.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithEnvironment(environment Environment) Option {
	return func(s *settings) {
		if environment == "" {
			return
		}
		s.environment = environment
	}
}

// WithTimeout bounds every request attempt that has no per-call timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(s *settings) {
		if timeout <= 0 {
			return
		}
		s.timeout = timeout
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(s *settings) {
		if client == nil {
			return
		}
		s.httpClient = client
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger == nil {
			return
		}
		s.logger = logger
	}
}

func WithMetrics(metrics *core.Metrics) Option {
	return func(s *settings) {
		if metrics == nil {
			return
		}
		s.metrics = metrics
	}
}

// WithMaxRetries sets the default retry budget for 429 and 503 responses.
// The default is 0.
func WithMaxRetries(maxRetries int) Option {
	return func(s *settings) {
		if maxRetries < 0 {
			return
		}
		s.maxRetries = maxRetries
	}
}

func WithUserAgent(userAgent string) Option {
	return func(s *settings) {
		if strings.TrimSpace(userAgent) == "" {
			return
		}
		s.userAgent = strings.TrimSpace(userAgent)
	}
}

// Client is the entry point to the API. It is safe for concurrent use.
type Client struct {
	transport *core.Transport

	instances *instance.Client
	browsers  *browser.Client
	code      *code.Client
	notebooks *notebook.Client
	env       *env.Client
	act       *act.Client
}

// New builds a Client. It fails with a *core.ConfigError when no API key is
// available and makes no network call.
func New(opts ...Option) (*Client, error) {
	s := settings{environment: Production}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&s)
	}

	baseURL := s.baseURL
	if baseURL == "" {
		baseURL = string(s.environment)
	}

	transportOpts := []core.Option{
		core.WithHTTPClient(s.httpClient),
		core.WithLogger(s.logger),
	}
	if s.metrics != nil {
		transportOpts = append(transportOpts, core.WithMetrics(s.metrics))
	}

	transport, err := core.NewTransport(core.Config{
		BaseURL:    baseURL,
		APIKey:     s.apiKey,
		Timeout:    s.timeout,
		UserAgent:  s.userAgent,
		MaxRetries: s.maxRetries,
	}, transportOpts...)
	if err != nil {
		return nil, err
	}

	return &Client{
		transport: transport,
		instances: instance.NewClient(transport),
		browsers:  browser.NewClient(transport),
		code:      code.NewClient(transport),
		notebooks: notebook.NewClient(transport),
		env:       env.NewClient(transport),
		act:       act.NewClient(transport),
	}, nil
}

// Config returns the transport configuration in effect.
func (c *Client) Config() core.Config { return c.transport.Config() }

func (c *Client) Instance() *instance.Client { return c.instances }

func (c *Client) Browser() *browser.Client { return c.browsers }

func (c *Client) Code() *code.Client { return c.code }

func (c *Client) Notebook() *notebook.Client { return c.notebooks }

func (c *Client) Env() *env.Client { return c.env }

func (c *Client) Act() *act.Client { return c.act }

// Tools returns the computer, edit and bash tools bound to instanceID.
func (c *Client) Tools(instanceID string) *tools.Set {
	return tools.ForInstance(c.instances, instanceID)
}
