// Package code executes snippets in a kernel running on an instance.
package code

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/m43i/go-scrapybara/core"
)

type Client struct {
	transport *core.Transport
}

func NewClient(transport *core.Transport) *Client {
	return &Client{transport: transport}
}

type ExecuteParams struct {
	InstanceID string
	Code       string
	KernelName core.Opt[string]
	// Timeout is in seconds and bounds the execution on the instance, not
	// the HTTP call.
	Timeout core.Opt[int]
}

// Execute runs params.Code and returns the decoded result. Bodies that are not
// JSON are returned as a string.
func (c *Client) Execute(ctx context.Context, params ExecuteParams, opts ...core.RequestOption) (any, error) {
	if strings.TrimSpace(params.InstanceID) == "" {
		return nil, core.ErrMissingID
	}
	if strings.TrimSpace(params.Code) == "" {
		return nil, errors.New("code is required")
	}

	var out any
	err := c.transport.Call(ctx, core.Request{
		Operation: "code.execute",
		Method:    http.MethodPost,
		Path:      "v1/code/execute",
		JSON: core.Fields{
			"instance_id": params.InstanceID,
			"code":        params.Code,
			"kernel_name": params.KernelName,
			"timeout":     params.Timeout,
		},
	}, &out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}
