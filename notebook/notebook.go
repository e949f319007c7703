// Package notebook manages Jupyter notebooks on an instance.
package notebook

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

type Kernel struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name,omitempty"`
	Language    string `json:"language,omitempty"`
}

type Notebook struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	KernelName string         `json:"kernel_name"`
	Cells      []Cell         `json:"cells"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type Cell struct {
	ID             string           `json:"id"`
	Type           CellType         `json:"type"`
	Content        string           `json:"content"`
	Metadata       map[string]any   `json:"metadata,omitempty"`
	Outputs        []map[string]any `json:"outputs,omitempty"`
	ExecutionCount *int             `json:"execution_count,omitempty"`
}

type CellType string

const (
	CellCode     CellType = "code"
	CellMarkdown CellType = "markdown"
)

type CreateParams struct {
	Name       string
	KernelName string
	Metadata   core.Opt[map[string]any]
}

type AddCellParams struct {
	Type     CellType
	Content  string
	Metadata core.Opt[map[string]any]
}

// ListKernels returns the kernels available on the instance.
func (c *Client) ListKernels(ctx context.Context, instanceID string, opts ...core.RequestOption) ([]Kernel, error) {
	if err := requireIDs(instanceID); err != nil {
		return nil, err
	}

	var out []Kernel
	err := c.query(ctx, "notebook.kernels", http.MethodGet, "v1/notebook/kernels",
		core.Fields{"instance_id": instanceID}, &out, opts)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) List(ctx context.Context, instanceID string, opts ...core.RequestOption) ([]Notebook, error) {
	if err := requireIDs(instanceID); err != nil {
		return nil, err
	}

	var out []Notebook
	err := c.query(ctx, "notebook.list", http.MethodGet, "v1/notebook/list",
		core.Fields{"instance_id": instanceID}, &out, opts)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, instanceID, notebookID string, opts ...core.RequestOption) (*Notebook, error) {
	if err := requireIDs(instanceID, notebookID); err != nil {
		return nil, err
	}

	var out Notebook
	err := c.query(ctx, "notebook.get", http.MethodGet, "v1/notebook/get",
		core.Fields{"instance_id": instanceID, "notebook_id": notebookID}, &out, opts)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Create(ctx context.Context, instanceID string, params CreateParams, opts ...core.RequestOption) (*Notebook, error) {
	if err := requireIDs(instanceID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Name) == "" || strings.TrimSpace(params.KernelName) == "" {
		return nil, errors.New("notebook name and kernel name are required")
	}

	var out Notebook
	err := c.post(ctx, "notebook.create", "v1/notebook/create", core.Fields{
		"instance_id": instanceID,
		"name":        params.Name,
		"kernel_name": params.KernelName,
		"metadata":    params.Metadata,
	}, &out, opts)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a notebook. The service response is returned decoded.
func (c *Client) Delete(ctx context.Context, instanceID, notebookID string, opts ...core.RequestOption) (any, error) {
	if err := requireIDs(instanceID, notebookID); err != nil {
		return nil, err
	}

	var out any
	err := c.query(ctx, "notebook.delete", http.MethodDelete, "v1/notebook/delete",
		core.Fields{"instance_id": instanceID, "notebook_id": notebookID}, &out, opts)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddCell(ctx context.Context, instanceID, notebookID string, params AddCellParams, opts ...core.RequestOption) (*Cell, error) {
	if err := requireIDs(instanceID, notebookID); err != nil {
		return nil, err
	}
	if params.Type == "" {
		params.Type = CellCode
	}

	var out Cell
	err := c.post(ctx, "notebook.add_cell", "v1/notebook/add_cell", core.Fields{
		"instance_id": instanceID,
		"notebook_id": notebookID,
		"type":        string(params.Type),
		"content":     params.Content,
		"metadata":    params.Metadata,
	}, &out, opts)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ExecuteCell runs one cell. timeout is in seconds on the instance.
func (c *Client) ExecuteCell(ctx context.Context, instanceID, notebookID, cellID string, timeout core.Opt[int], opts ...core.RequestOption) (*Cell, error) {
	if err := requireIDs(instanceID, notebookID, cellID); err != nil {
		return nil, err
	}

	var out Cell
	err := c.post(ctx, "notebook.execute_cell", "v1/notebook/execute_cell", core.Fields{
		"instance_id": instanceID,
		"notebook_id": notebookID,
		"cell_id":     cellID,
		"timeout":     timeout,
	}, &out, opts)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Execute runs every cell of the notebook in order.
func (c *Client) Execute(ctx context.Context, instanceID, notebookID string, timeout core.Opt[int], opts ...core.RequestOption) ([]Cell, error) {
	if err := requireIDs(instanceID, notebookID); err != nil {
		return nil, err
	}

	var out []Cell
	err := c.post(ctx, "notebook.execute", "v1/notebook/execute", core.Fields{
		"instance_id": instanceID,
		"notebook_id": notebookID,
		"timeout":     timeout,
	}, &out, opts)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) query(ctx context.Context, operation, method, path string, query core.Fields, out any, opts []core.RequestOption) error {
	return c.transport.Call(ctx, core.Request{
		Operation: operation,
		Method:    method,
		Path:      path,
		Query:     query,
	}, out, opts...)
}

func (c *Client) post(ctx context.Context, operation, path string, body core.Fields, out any, opts []core.RequestOption) error {
	return c.transport.Call(ctx, core.Request{
		Operation: operation,
		Method:    http.MethodPost,
		Path:      path,
		JSON:      body,
	}, out, opts...)
}

func requireIDs(ids ...string) error {
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return core.ErrMissingID
		}
	}
	return nil
}
