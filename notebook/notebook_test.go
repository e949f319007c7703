package notebook

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/m43i/go-scrapybara/core"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	transport, err := core.NewTransport(core.Config{BaseURL: server.URL, APIKey: "test-key"})
	require.NoError(t, err)
	return NewClient(transport)
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func TestQueryEndpoints(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		require.Equal(t, "abc", query.Get("instance_id"))

		switch r.Method + " " + r.URL.Path {
		case "GET /v1/notebook/kernels":
			writeJSON(w, `[{"name":"python3","display_name":"Python 3","language":"python"}]`)
		case "GET /v1/notebook/list":
			writeJSON(w, `[{"id":"nb1","name":"analysis","kernel_name":"python3","cells":[]}]`)
		case "GET /v1/notebook/get":
			require.Equal(t, "nb1", query.Get("notebook_id"))
			writeJSON(w, `{"id":"nb1","name":"analysis","kernel_name":"python3","cells":[{"id":"c1","type":"code","content":"1+1","execution_count":3}]}`)
		case "DELETE /v1/notebook/delete":
			require.Equal(t, "nb1", query.Get("notebook_id"))
			writeJSON(w, `{"success":true}`)
		default:
			http.NotFound(w, r)
		}
	})

	ctx := context.Background()

	kernels, err := client.ListKernels(ctx, "abc")
	require.NoError(t, err)
	require.Equal(t, "python3", kernels[0].Name)

	list, err := client.List(ctx, "abc")
	require.NoError(t, err)
	require.Len(t, list, 1)

	nb, err := client.Get(ctx, "abc", "nb1")
	require.NoError(t, err)
	require.Equal(t, CellCode, nb.Cells[0].Type)
	require.Equal(t, 3, *nb.Cells[0].ExecutionCount)

	deleted, err := client.Delete(ctx, "abc", "nb1")
	require.NoError(t, err)
	require.Equal(t, map[string]any{"success": true}, deleted)
}

func TestPostEndpoints(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		switch r.URL.Path {
		case "/v1/notebook/create":
			require.JSONEq(t, `{"instance_id":"abc","name":"analysis","kernel_name":"python3"}`, string(body))
			writeJSON(w, `{"id":"nb1","name":"analysis","kernel_name":"python3","cells":[]}`)
		case "/v1/notebook/add_cell":
			require.JSONEq(t, `{"instance_id":"abc","notebook_id":"nb1","type":"code","content":"1+1","metadata":{"tag":"x"}}`, string(body))
			writeJSON(w, `{"id":"c1","type":"code","content":"1+1"}`)
		case "/v1/notebook/execute_cell":
			require.JSONEq(t, `{"instance_id":"abc","notebook_id":"nb1","cell_id":"c1","timeout":0}`, string(body))
			writeJSON(w, `{"id":"c1","type":"code","content":"1+1","outputs":[{"text":"2"}]}`)
		case "/v1/notebook/execute":
			require.JSONEq(t, `{"instance_id":"abc","notebook_id":"nb1"}`, string(body))
			writeJSON(w, `[{"id":"c1","type":"code","content":"1+1"}]`)
		default:
			http.NotFound(w, r)
		}
	})

	ctx := context.Background()

	nb, err := client.Create(ctx, "abc", CreateParams{Name: "analysis", KernelName: "python3"})
	require.NoError(t, err)
	require.Equal(t, "nb1", nb.ID)

	cell, err := client.AddCell(ctx, "abc", "nb1", AddCellParams{
		Content:  "1+1",
		Metadata: core.Value(map[string]any{"tag": "x"}),
	})
	require.NoError(t, err)
	require.Equal(t, "c1", cell.ID)

	executed, err := client.ExecuteCell(ctx, "abc", "nb1", "c1", core.Value(0))
	require.NoError(t, err)
	require.Equal(t, "2", executed.Outputs[0]["text"])

	cells, err := client.Execute(ctx, "abc", "nb1", core.Opt[int]{})
	require.NoError(t, err)
	require.Len(t, cells, 1)
}

func TestMissingIDs(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not be sent")
	})

	_, err := client.Get(context.Background(), "abc", "")
	require.ErrorIs(t, err, core.ErrMissingID)

	_, err = client.Create(context.Background(), "abc", CreateParams{Name: "x"})
	require.Error(t, err)
}
