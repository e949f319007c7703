package scrapybara

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/m43i/go-scrapybara/browser"
	"github.com/m43i/go-scrapybara/code"
	"github.com/m43i/go-scrapybara/core"
	"github.com/m43i/go-scrapybara/env"
	"github.com/m43i/go-scrapybara/instance"
	"github.com/m43i/go-scrapybara/notebook"
	"github.com/m43i/go-scrapybara/tools"
)

// Kind is the flavor of an instance.
type Kind = instance.Type

const (
	KindUbuntu  = instance.TypeUbuntu
	KindBrowser = instance.TypeBrowser
	KindWindows = instance.TypeWindows
)

// ParseKind accepts the current kind names and the retired names chrome,
// firefox (browser) and jupyter (ubuntu).
func ParseKind(name string) (Kind, error) {
	return instance.ParseType(name)
}

// Capability is an API area an instance kind supports beyond the common
// instance commands.
type Capability string

const (
	CapabilityBrowser  Capability = "browser"
	CapabilityCode     Capability = "code"
	CapabilityNotebook Capability = "notebook"
)

var capabilities = map[Kind][]Capability{
	KindUbuntu:  {CapabilityBrowser, CapabilityCode, CapabilityNotebook},
	KindBrowser: {CapabilityBrowser},
	KindWindows: {},
}

// ErrUnsupported is returned when an instance kind lacks a capability.
var ErrUnsupported = errors.New("scrapybara: operation not supported by instance kind")

// StartParams tune a new instance. Unset fields use the service defaults.
type StartParams struct {
	TimeoutHours   core.Opt[float64]
	BlockedDomains core.Opt[[]string]
	// Resolution is [width, height].
	Resolution core.Opt[[]int]
}

// Start launches an instance of kind.
func (c *Client) Start(ctx context.Context, kind Kind, params StartParams, opts ...core.RequestOption) (*Instance, error) {
	details, err := c.instances.Start(ctx, instance.StartParams{
		Type:           kind,
		TimeoutHours:   params.TimeoutHours,
		BlockedDomains: params.BlockedDomains,
		Resolution:     params.Resolution,
	}, opts...)
	if err != nil {
		return nil, err
	}
	return c.handle(details, kind), nil
}

func (c *Client) StartUbuntu(ctx context.Context, params StartParams, opts ...core.RequestOption) (*Instance, error) {
	return c.Start(ctx, KindUbuntu, params, opts...)
}

func (c *Client) StartBrowser(ctx context.Context, params StartParams, opts ...core.RequestOption) (*Instance, error) {
	return c.Start(ctx, KindBrowser, params, opts...)
}

func (c *Client) StartWindows(ctx context.Context, params StartParams, opts ...core.RequestOption) (*Instance, error) {
	return c.Start(ctx, KindWindows, params, opts...)
}

// Get returns a handle for an existing instance.
func (c *Client) Get(ctx context.Context, id string, opts ...core.RequestOption) (*Instance, error) {
	details, err := c.instances.Get(ctx, id, opts...)
	if err != nil {
		return nil, err
	}
	return c.handle(details, details.InstanceType), nil
}

// List returns handles for every instance of the account.
func (c *Client) List(ctx context.Context, opts ...core.RequestOption) ([]*Instance, error) {
	list, err := c.instances.List(ctx, opts...)
	if err != nil {
		return nil, err
	}

	out := make([]*Instance, 0, len(list))
	for i := range list {
		out = append(out, c.handle(&list[i], list[i].InstanceType))
	}
	return out, nil
}

// AuthStates lists the saved browser auth states of the account.
func (c *Client) AuthStates(ctx context.Context, opts ...core.RequestOption) ([]browser.AuthState, error) {
	return c.browsers.AuthStates(ctx, opts...)
}

func (c *Client) handle(details *instance.Details, kind Kind) *Instance {
	if details.InstanceType != "" {
		kind = details.InstanceType
	}
	return &Instance{
		ID:         details.ID,
		LaunchTime: details.LaunchTime,
		Status:     details.Status,
		Kind:       kind,
		Resolution: details.Resolution,
		client:     c,
	}
}

// Instance is a handle to a server side instance. Its fields are a snapshot
// taken when the handle was created; call Refresh to update them.
type Instance struct {
	ID         string
	LaunchTime string
	Status     string
	Kind       Kind
	Resolution []int

	client *Client
}

// Capabilities lists the API areas the instance kind supports.
func (i *Instance) Capabilities() []Capability {
	return slices.Clone(capabilities[i.Kind])
}

func (i *Instance) Supports(capability Capability) bool {
	return slices.Contains(capabilities[i.Kind], capability)
}

func (i *Instance) require(capability Capability) error {
	if i.Supports(capability) {
		return nil
	}
	return fmt.Errorf("%w: %s instance has no %s", ErrUnsupported, i.Kind, capability)
}

// Refresh reloads the status fields from the service.
func (i *Instance) Refresh(ctx context.Context, opts ...core.RequestOption) error {
	details, err := i.client.instances.Get(ctx, i.ID, opts...)
	if err != nil {
		return err
	}
	i.LaunchTime = details.LaunchTime
	i.Status = details.Status
	i.Resolution = details.Resolution
	if details.InstanceType != "" {
		i.Kind = details.InstanceType
	}
	return nil
}

func (i *Instance) Stop(ctx context.Context, opts ...core.RequestOption) (*core.StatusResponse, error) {
	return i.client.instances.Stop(ctx, i.ID, opts...)
}

func (i *Instance) Pause(ctx context.Context, opts ...core.RequestOption) (*core.StatusResponse, error) {
	return i.client.instances.Pause(ctx, i.ID, opts...)
}

func (i *Instance) Resume(ctx context.Context, params instance.ResumeParams, opts ...core.RequestOption) (*instance.Details, error) {
	return i.client.instances.Resume(ctx, i.ID, params, opts...)
}

func (i *Instance) Screenshot(ctx context.Context, opts ...core.RequestOption) (*instance.ScreenshotResponse, error) {
	return i.client.instances.Screenshot(ctx, i.ID, opts...)
}

func (i *Instance) StreamURL(ctx context.Context, opts ...core.RequestOption) (*instance.StreamURLResponse, error) {
	return i.client.instances.StreamURL(ctx, i.ID, opts...)
}

func (i *Instance) Bash(ctx context.Context, params instance.BashParams, opts ...core.RequestOption) (*instance.CommandResponse, error) {
	return i.client.instances.Bash(ctx, i.ID, params, opts...)
}

func (i *Instance) File(ctx context.Context, params instance.FileParams, opts ...core.RequestOption) (*instance.CommandResponse, error) {
	return i.client.instances.File(ctx, i.ID, params, opts...)
}

func (i *Instance) Computer(ctx context.Context, params instance.ComputerParams, opts ...core.RequestOption) (*instance.CommandResponse, error) {
	return i.client.instances.Computer(ctx, i.ID, params, opts...)
}

func (i *Instance) Upload(ctx context.Context, path string, file core.File, opts ...core.RequestOption) (*instance.UploadResponse, error) {
	return i.client.instances.Upload(ctx, i.ID, path, file, opts...)
}

// Tools returns the computer, edit and bash tools bound to this instance.
func (i *Instance) Tools() *tools.Set {
	return i.client.Tools(i.ID)
}

func (i *Instance) Env() *EnvSession {
	return &EnvSession{id: i.ID, env: i.client.env}
}

func (i *Instance) Browser() (*BrowserSession, error) {
	if err := i.require(CapabilityBrowser); err != nil {
		return nil, err
	}
	return &BrowserSession{id: i.ID, browser: i.client.browsers}, nil
}

func (i *Instance) Code() (*CodeSession, error) {
	if err := i.require(CapabilityCode); err != nil {
		return nil, err
	}
	return &CodeSession{id: i.ID, code: i.client.code}, nil
}

func (i *Instance) Notebook() (*NotebookSession, error) {
	if err := i.require(CapabilityNotebook); err != nil {
		return nil, err
	}
	return &NotebookSession{id: i.ID, notebooks: i.client.notebooks}, nil
}

// BrowserSession forwards browser calls for one instance.
type BrowserSession struct {
	id      string
	browser *browser.Client
}

func (s *BrowserSession) Start(ctx context.Context, params browser.StartParams, opts ...core.RequestOption) (*core.StatusResponse, error) {
	return s.browser.Start(ctx, s.id, params, opts...)
}

func (s *BrowserSession) Stop(ctx context.Context, opts ...core.RequestOption) (*core.StatusResponse, error) {
	return s.browser.Stop(ctx, s.id, opts...)
}

func (s *BrowserSession) CDPURL(ctx context.Context, opts ...core.RequestOption) (*browser.CDPURLResponse, error) {
	return s.browser.CDPURL(ctx, s.id, opts...)
}

func (s *BrowserSession) CurrentURL(ctx context.Context, opts ...core.RequestOption) (*browser.CurrentURLResponse, error) {
	return s.browser.CurrentURL(ctx, s.id, opts...)
}

func (s *BrowserSession) Act(ctx context.Context, actions []browser.Action, opts ...core.RequestOption) (json.RawMessage, error) {
	return s.browser.Act(ctx, s.id, actions, opts...)
}

func (s *BrowserSession) Authenticate(ctx context.Context, authStateID string, opts ...core.RequestOption) (*core.StatusResponse, error) {
	return s.browser.Authenticate(ctx, s.id, authStateID, opts...)
}

func (s *BrowserSession) SaveAuth(ctx context.Context, name core.Opt[string], opts ...core.RequestOption) (*browser.AuthResponse, error) {
	return s.browser.SaveAuth(ctx, s.id, name, opts...)
}

func (s *BrowserSession) ModifyAuth(ctx context.Context, authStateID string, name core.Opt[string], opts ...core.RequestOption) (*core.StatusResponse, error) {
	return s.browser.ModifyAuth(ctx, s.id, authStateID, name, opts...)
}

// CodeSession runs code on one instance.
type CodeSession struct {
	id   string
	code *code.Client
}

func (s *CodeSession) Execute(ctx context.Context, source string, kernelName core.Opt[string], timeout core.Opt[int], opts ...core.RequestOption) (any, error) {
	return s.code.Execute(ctx, code.ExecuteParams{
		InstanceID: s.id,
		Code:       source,
		KernelName: kernelName,
		Timeout:    timeout,
	}, opts...)
}

// NotebookSession forwards notebook calls for one instance.
type NotebookSession struct {
	id        string
	notebooks *notebook.Client
}

func (s *NotebookSession) ListKernels(ctx context.Context, opts ...core.RequestOption) ([]notebook.Kernel, error) {
	return s.notebooks.ListKernels(ctx, s.id, opts...)
}

func (s *NotebookSession) List(ctx context.Context, opts ...core.RequestOption) ([]notebook.Notebook, error) {
	return s.notebooks.List(ctx, s.id, opts...)
}

func (s *NotebookSession) Get(ctx context.Context, notebookID string, opts ...core.RequestOption) (*notebook.Notebook, error) {
	return s.notebooks.Get(ctx, s.id, notebookID, opts...)
}

func (s *NotebookSession) Create(ctx context.Context, params notebook.CreateParams, opts ...core.RequestOption) (*notebook.Notebook, error) {
	return s.notebooks.Create(ctx, s.id, params, opts...)
}

func (s *NotebookSession) Delete(ctx context.Context, notebookID string, opts ...core.RequestOption) (any, error) {
	return s.notebooks.Delete(ctx, s.id, notebookID, opts...)
}

func (s *NotebookSession) AddCell(ctx context.Context, notebookID string, params notebook.AddCellParams, opts ...core.RequestOption) (*notebook.Cell, error) {
	return s.notebooks.AddCell(ctx, s.id, notebookID, params, opts...)
}

func (s *NotebookSession) ExecuteCell(ctx context.Context, notebookID, cellID string, timeout core.Opt[int], opts ...core.RequestOption) (*notebook.Cell, error) {
	return s.notebooks.ExecuteCell(ctx, s.id, notebookID, cellID, timeout, opts...)
}

func (s *NotebookSession) Execute(ctx context.Context, notebookID string, timeout core.Opt[int], opts ...core.RequestOption) ([]notebook.Cell, error) {
	return s.notebooks.Execute(ctx, s.id, notebookID, timeout, opts...)
}

// EnvSession manages environment variables of one instance.
type EnvSession struct {
	id  string
	env *env.Client
}

func (s *EnvSession) Set(ctx context.Context, variables map[string]string, opts ...core.RequestOption) (*core.StatusResponse, error) {
	return s.env.Set(ctx, s.id, variables, opts...)
}

func (s *EnvSession) Get(ctx context.Context, opts ...core.RequestOption) (*env.GetResponse, error) {
	return s.env.Get(ctx, s.id, opts...)
}

func (s *EnvSession) Delete(ctx context.Context, keys []string, opts ...core.RequestOption) (*core.StatusResponse, error) {
	return s.env.Delete(ctx, s.id, keys, opts...)
}
