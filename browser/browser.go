// Package browser drives the managed browser of an instance and the saved
// authentication states it can load.
package browser

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/m43i/go-scrapybara/core"
)

const pathPrefix = "v1/instance"

type Client struct {
	transport *core.Transport
}

func NewClient(transport *core.Transport) *Client {
	return &Client{transport: transport}
}

type StartParams struct {
	Headless core.Opt[bool]
	BlockAds core.Opt[bool]
}

type CDPURLResponse struct {
	CDPURL string `json:"cdp_url"`
}

type CurrentURLResponse struct {
	URL string `json:"url"`
}

// AuthResponse identifies a saved authentication state.
type AuthResponse struct {
	AuthStateID string `json:"auth_state_id"`
	Name        string `json:"name,omitempty"`
}

type AuthState struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Action is one browser action, e.g. {"type": "goto", "url": "..."}.
type Action map[string]any

func (c *Client) Start(ctx context.Context, id string, params StartParams, opts ...core.RequestOption) (*core.StatusResponse, error) {
	body := core.Fields{
		"headless":  params.Headless,
		"block_ads": params.BlockAds,
	}

	var out core.StatusResponse
	if err := c.call(ctx, "browser.start", http.MethodPost, id, "start", nil, body, &out, opts); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Stop(ctx context.Context, id string, opts ...core.RequestOption) (*core.StatusResponse, error) {
	var out core.StatusResponse
	if err := c.call(ctx, "browser.stop", http.MethodPost, id, "stop", nil, nil, &out, opts); err != nil {
		return nil, err
	}
	return &out, nil
}

// CDPURL returns the Chrome DevTools Protocol endpoint of the browser.
func (c *Client) CDPURL(ctx context.Context, id string, opts ...core.RequestOption) (*CDPURLResponse, error) {
	var out CDPURLResponse
	if err := c.call(ctx, "browser.cdp_url", http.MethodGet, id, "cdp_url", nil, nil, &out, opts); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CurrentURL(ctx context.Context, id string, opts ...core.RequestOption) (*CurrentURLResponse, error) {
	var out CurrentURLResponse
	if err := c.call(ctx, "browser.current_url", http.MethodGet, id, "current_url", nil, nil, &out, opts); err != nil {
		return nil, err
	}
	return &out, nil
}

// Act runs actions in order and returns the raw result of the service.
func (c *Client) Act(ctx context.Context, id string, actions []Action, opts ...core.RequestOption) (json.RawMessage, error) {
	if len(actions) == 0 {
		return nil, errors.New("browser act needs at least one action")
	}

	var out json.RawMessage
	body := core.Fields{"actions": actions}
	if err := c.call(ctx, "browser.act", http.MethodPost, id, "act", nil, body, &out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// Authenticate loads a saved authentication state into the browser.
func (c *Client) Authenticate(ctx context.Context, id, authStateID string, opts ...core.RequestOption) (*core.StatusResponse, error) {
	if strings.TrimSpace(authStateID) == "" {
		return nil, errors.New("auth state id is required")
	}

	var out core.StatusResponse
	query := core.Fields{"auth_state_id": authStateID}
	if err := c.call(ctx, "browser.authenticate", http.MethodPost, id, "authenticate", query, nil, &out, opts); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveAuth stores the current browser session as an authentication state.
func (c *Client) SaveAuth(ctx context.Context, id string, name core.Opt[string], opts ...core.RequestOption) (*AuthResponse, error) {
	var out AuthResponse
	query := core.Fields{"name": name}
	if err := c.call(ctx, "browser.save_auth", http.MethodPost, id, "save_auth", query, nil, &out, opts); err != nil {
		return nil, err
	}
	return &out, nil
}

// ModifyAuth overwrites an authentication state with the current session.
func (c *Client) ModifyAuth(ctx context.Context, id, authStateID string, name core.Opt[string], opts ...core.RequestOption) (*core.StatusResponse, error) {
	if strings.TrimSpace(authStateID) == "" {
		return nil, errors.New("auth state id is required")
	}

	var out core.StatusResponse
	query := core.Fields{"auth_state_id": authStateID, "name": name}
	if err := c.call(ctx, "browser.modify_auth", http.MethodPost, id, "modify_auth", query, nil, &out, opts); err != nil {
		return nil, err
	}
	return &out, nil
}

// AuthStates lists the saved authentication states of the account.
func (c *Client) AuthStates(ctx context.Context, opts ...core.RequestOption) ([]AuthState, error) {
	var out []AuthState
	err := c.transport.Call(ctx, core.Request{
		Operation: "browser.auth_states",
		Method:    http.MethodGet,
		Path:      "v1/auth_states",
	}, &out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) call(ctx context.Context, operation, method, id, action string, query, body core.Fields, out any, opts []core.RequestOption) error {
	p, err := core.ResourcePath(pathPrefix, id, "browser", action)
	if err != nil {
		return err
	}

	req := core.Request{
		Operation: operation,
		Method:    method,
		Path:      p,
		Query:     query,
	}
	if body != nil {
		req.JSON = body
	}
	return c.transport.Call(ctx, req, out, opts...)
}
