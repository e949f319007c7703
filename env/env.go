// Package env manages environment variables of an instance.
package env

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

type GetResponse struct {
	Variables map[string]string `json:"variables"`
}

// Set adds or overwrites variables on the instance.
func (c *Client) Set(ctx context.Context, instanceID string, variables map[string]string, opts ...core.RequestOption) (*core.StatusResponse, error) {
	if strings.TrimSpace(instanceID) == "" {
		return nil, core.ErrMissingID
	}
	if len(variables) == 0 {
		return nil, errors.New("no variables to set")
	}

	var out core.StatusResponse
	err := c.transport.Call(ctx, core.Request{
		Operation: "env.set",
		Method:    http.MethodPost,
		Path:      "v1/env/set",
		JSON:      core.Fields{"instance_id": instanceID, "variables": variables},
	}, &out, opts...)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Get(ctx context.Context, instanceID string, opts ...core.RequestOption) (*GetResponse, error) {
	if strings.TrimSpace(instanceID) == "" {
		return nil, core.ErrMissingID
	}

	var out GetResponse
	err := c.transport.Call(ctx, core.Request{
		Operation: "env.get",
		Method:    http.MethodGet,
		Path:      "v1/env/get",
		Query:     core.Fields{"instance_id": instanceID},
	}, &out, opts...)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes keys from the instance environment. The keys travel in a
// JSON body on a DELETE request.
func (c *Client) Delete(ctx context.Context, instanceID string, keys []string, opts ...core.RequestOption) (*core.StatusResponse, error) {
	if strings.TrimSpace(instanceID) == "" {
		return nil, core.ErrMissingID
	}
	if len(keys) == 0 {
		return nil, errors.New("no keys to delete")
	}

	var out core.StatusResponse
	err := c.transport.Call(ctx, core.Request{
		Operation: "env.delete",
		Method:    http.MethodDelete,
		Path:      "v1/env/delete",
		JSON:      core.Fields{"instance_id": instanceID, "keys": keys},
	}, &out, opts...)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
