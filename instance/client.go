package instance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/m43i/go-scrapybara/core"
)

const pathPrefix = "v1/instance"

// Client calls the instance endpoints.
type Client struct {
	transport *core.Transport
}

// NewClient returns an instance client that sends requests through transport.
func NewClient(transport *core.Transport) *Client {
	return &Client{transport: transport}
}

// Start provisions a new instance. The type is checked before any request is
// sent.
func (c *Client) Start(ctx context.Context, params StartParams, opts ...core.RequestOption) (*Details, error) {
	if !params.Type.Valid() {
		return nil, fmt.Errorf("instance type must be one of ubuntu, browser, windows; got %q", params.Type)
	}

	var out Details
	err := c.transport.Call(ctx, core.Request{
		Operation: "instance.start",
		Method:    http.MethodPost,
		Path:      "v1/start",
		JSON: core.Fields{
			"instance_type":   string(params.Type),
			"timeout_hours":   params.TimeoutHours,
			"blocked_domains": params.BlockedDomains,
			"resolution":      params.Resolution,
		},
	}, &out, opts...)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns every instance of the account.
func (c *Client) List(ctx context.Context, opts ...core.RequestOption) ([]Details, error) {
	var out []Details
	err := c.transport.Call(ctx, core.Request{
		Operation: "instance.list",
		Method:    http.MethodGet,
		Path:      "v1/instances",
	}, &out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id string, opts ...core.RequestOption) (*Details, error) {
	var out Details
	if err := c.call(ctx, "instance.get", http.MethodGet, id, "", nil, &out, opts); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Stop(ctx context.Context, id string, opts ...core.RequestOption) (*core.StatusResponse, error) {
	var out core.StatusResponse
	if err := c.call(ctx, "instance.stop", http.MethodPost, id, "stop", nil, &out, opts); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Pause(ctx context.Context, id string, opts ...core.RequestOption) (*core.StatusResponse, error) {
	var out core.StatusResponse
	if err := c.call(ctx, "instance.pause", http.MethodPost, id, "pause", nil, &out, opts); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Resume(ctx context.Context, id string, params ResumeParams, opts ...core.RequestOption) (*Details, error) {
	body := core.Fields{"timeout_hours": params.TimeoutHours}

	var out Details
	if err := c.call(ctx, "instance.resume", http.MethodPost, id, "resume", body, &out, opts); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Screenshot(ctx context.Context, id string, opts ...core.RequestOption) (*ScreenshotResponse, error) {
	var out ScreenshotResponse
	if err := c.call(ctx, "instance.screenshot", http.MethodPost, id, "screenshot", nil, &out, opts); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) StreamURL(ctx context.Context, id string, opts ...core.RequestOption) (*StreamURLResponse, error) {
	var out StreamURLResponse
	if err := c.call(ctx, "instance.stream_url", http.MethodGet, id, "stream_url", nil, &out, opts); err != nil {
		return nil, err
	}
	return &out, nil
}

// Bash runs a shell command on the instance.
func (c *Client) Bash(ctx context.Context, id string, params BashParams, opts ...core.RequestOption) (*CommandResponse, error) {
	var out CommandResponse
	if err := c.call(ctx, "instance.bash", http.MethodPost, id, "bash", params.fields(), &out, opts); err != nil {
		return nil, err
	}
	return &out, nil
}

// File runs a file command such as read, write or str_replace.
func (c *Client) File(ctx context.Context, id string, params FileParams, opts ...core.RequestOption) (*CommandResponse, error) {
	if strings.TrimSpace(params.Command) == "" {
		return nil, errors.New("file command is required")
	}

	var out CommandResponse
	if err := c.call(ctx, "instance.file", http.MethodPost, id, "file", params.fields(), &out, opts); err != nil {
		return nil, err
	}
	return &out, nil
}

// Computer performs a mouse, keyboard or screen action.
func (c *Client) Computer(ctx context.Context, id string, params ComputerParams, opts ...core.RequestOption) (*CommandResponse, error) {
	if strings.TrimSpace(params.Action) == "" {
		return nil, errors.New("computer action is required")
	}

	var out CommandResponse
	if err := c.call(ctx, "instance.computer", http.MethodPost, id, "computer", params.fields(), &out, opts); err != nil {
		return nil, err
	}
	return &out, nil
}

// Upload writes file to path on the instance.
func (c *Client) Upload(ctx context.Context, id, path string, file core.File, opts ...core.RequestOption) (*UploadResponse, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("upload path is required")
	}
	if file == nil {
		return nil, errors.New("upload file is required")
	}

	p, err := core.ResourcePath(pathPrefix, id, "upload")
	if err != nil {
		return nil, err
	}

	var out UploadResponse
	err = c.transport.Call(ctx, core.Request{
		Operation: "instance.upload",
		Method:    http.MethodPost,
		Path:      p,
		Query:     core.Fields{"path": path},
		Files:     map[string]core.File{"file": file},
	}, &out, opts...)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) call(ctx context.Context, operation, method, id, action string, body core.Fields, out any, opts []core.RequestOption) error {
	p, err := core.ResourcePath(pathPrefix, id, action)
	if err != nil {
		return err
	}

	req := core.Request{
		Operation: operation,
		Method:    method,
		Path:      p,
	}
	if body != nil {
		req.JSON = body
	}
	return c.transport.Call(ctx, req, out, opts...)
}
