package scrapybara

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/m43i/go-scrapybara/act"
	"github.com/m43i/go-scrapybara/core"
	"github.com/m43i/go-scrapybara/instance"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{WithAPIKey("test-key"), WithBaseURL(server.URL)}, opts...)
	client, err := New(opts...)
	require.NoError(t, err)
	return client
}

func toolCall(name string, args map[string]any) act.ToolCallPart {
	return act.ToolCallPart{ToolCallID: "call-1", ToolName: name, Args: args}
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func TestNewRequiresAPIKey(t *testing.T) {
	t.Setenv(core.APIKeyEnv, "")

	_, err := New()
	var cfgErr *core.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	require.ErrorIs(t, err, core.ErrMissingAPIKey)
}

func TestNewReadsAPIKeyFromEnv(t *testing.T) {
	t.Setenv(core.APIKeyEnv, "env-key")

	client, err := New()
	require.NoError(t, err)
	require.Equal(t, "env-key", client.Config().APIKey)
	require.Equal(t, string(Production), client.Config().BaseURL)
}

func TestNewBaseURLSelection(t *testing.T) {
	t.Parallel()

	client, err := New(WithAPIKey("k"), WithEnvironment(Staging))
	require.NoError(t, err)
	require.Equal(t, string(Staging), client.Config().BaseURL)

	client, err = New(WithAPIKey("k"), WithBaseURL("http://localhost:9000"), WithEnvironment(Development))
	require.NoError(t, err)
	require.Equal(t, "http://localhost:9000", client.Config().BaseURL)

	client, err = New(WithAPIKey("k"), WithTimeout(5*time.Second), WithMaxRetries(2), WithUserAgent("custom/1"))
	require.NoError(t, err)
	cfg := client.Config()
	require.Equal(t, 5*time.Second, cfg.Timeout)
	require.Equal(t, 2, cfg.MaxRetries)
	require.Equal(t, "custom/1", cfg.UserAgent)
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	tests := map[string]Kind{
		"ubuntu":  KindUbuntu,
		"jupyter": KindUbuntu,
		"browser": KindBrowser,
		"chrome":  KindBrowser,
		"Firefox": KindBrowser,
		"windows": KindWindows,
	}
	for name, want := range tests {
		got, err := ParseKind(name)
		require.NoError(t, err, name)
		require.Equal(t, want, got, name)
	}

	_, err := ParseKind("macos")
	require.Error(t, err)
}

func TestStartReturnsHandle(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/start", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.JSONEq(t, `{"instance_type":"browser","timeout_hours":2}`, string(body))

		writeJSON(w, `{"id":"b-1","launch_time":"2025-01-01T00:00:00Z","instance_type":"browser","status":"running"}`)
	})

	inst, err := client.StartBrowser(context.Background(), StartParams{TimeoutHours: core.Value(2.0)})
	require.NoError(t, err)
	require.Equal(t, "b-1", inst.ID)
	require.Equal(t, "running", inst.Status)
	require.Equal(t, KindBrowser, inst.Kind)
	require.Equal(t, []Capability{CapabilityBrowser}, inst.Capabilities())
}

func TestCapabilities(t *testing.T) {
	t.Parallel()

	client, err := New(WithAPIKey("k"))
	require.NoError(t, err)

	ubuntu := &Instance{ID: "u", Kind: KindUbuntu, client: client}
	_, err = ubuntu.Browser()
	require.NoError(t, err)
	_, err = ubuntu.Code()
	require.NoError(t, err)
	_, err = ubuntu.Notebook()
	require.NoError(t, err)

	browserInst := &Instance{ID: "b", Kind: KindBrowser, client: client}
	_, err = browserInst.Browser()
	require.NoError(t, err)
	_, err = browserInst.Code()
	require.ErrorIs(t, err, ErrUnsupported)

	windows := &Instance{ID: "w", Kind: KindWindows, client: client}
	_, err = windows.Browser()
	require.ErrorIs(t, err, ErrUnsupported)
	_, err = windows.Notebook()
	require.ErrorIs(t, err, ErrUnsupported)
	require.NotNil(t, windows.Env())
	require.Empty(t, windows.Capabilities())
}

func TestInstanceHandleForwardsID(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + r.URL.Path {
		case "GET /v1/instance/u-1":
			writeJSON(w, `{"id":"u-1","launch_time":"t","instance_type":"ubuntu","status":"paused"}`)
		case "POST /v1/instance/u-1/bash":
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			require.JSONEq(t, `{"command":"whoami","wait":true}`, string(body))
			writeJSON(w, `{"output":"scrapybara"}`)
		case "POST /v1/code/execute":
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			require.JSONEq(t, `{"instance_id":"u-1","code":"1+1"}`, string(body))
			writeJSON(w, `{"result":2}`)
		case "GET /v1/env/get":
			require.Equal(t, "u-1", r.URL.Query().Get("instance_id"))
			writeJSON(w, `{"variables":{"A":"1"}}`)
		case "GET /v1/instance/u-1/browser/cdp_url":
			writeJSON(w, `{"cdp_url":"ws://cdp"}`)
		default:
			http.NotFound(w, r)
		}
	})

	ctx := context.Background()

	inst, err := client.Get(ctx, "u-1")
	require.NoError(t, err)
	require.Equal(t, KindUbuntu, inst.Kind)
	require.Equal(t, "paused", inst.Status)

	out, err := inst.Bash(ctx, instance.BashParams{Command: "whoami", Wait: core.Value(true)})
	require.NoError(t, err)
	require.Equal(t, "scrapybara", out.Output)

	codeSession, err := inst.Code()
	require.NoError(t, err)
	result, err := codeSession.Execute(ctx, "1+1", core.Opt[string]{}, core.Opt[int]{})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"result": float64(2)}, result)

	vars, err := inst.Env().Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "1", vars.Variables["A"])

	browserSession, err := inst.Browser()
	require.NoError(t, err)
	cdp, err := browserSession.CDPURL(ctx)
	require.NoError(t, err)
	require.Equal(t, "ws://cdp", cdp.CDPURL)
}

func TestToolsBoundToInstance(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, "/v1/instance/u-1/computer", r.URL.Path)
		writeJSON(w, `{"base64_image":"aGk="}`)
	})

	inst := &Instance{ID: "u-1", Kind: KindUbuntu, client: client}
	set := inst.Tools()
	require.Len(t, set.Tools(), 3)

	result := set.Execute(context.Background(), toolCall("computer", map[string]any{"action": "take_screenshot"}))
	require.False(t, result.IsError)
	require.Equal(t, "aGk=", result.Result.(*instance.CommandResponse).Base64Image)
	require.Equal(t, int32(1), calls.Load())
}

func TestAsyncAndLazy(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, `{"base64_image":"aGk="}`)
	})
	inst := &Instance{ID: "u-1", Kind: KindUbuntu, client: client}
	ctx := context.Background()

	lazy := Lazy(func(ctx context.Context) (*instance.ScreenshotResponse, error) {
		return inst.Screenshot(ctx)
	})
	require.Equal(t, int32(0), calls.Load())

	shot, err := lazy.Await(ctx)
	require.NoError(t, err)
	require.Equal(t, "aGk=", shot.Base64Image)
	require.Equal(t, int32(1), calls.Load())

	eager := Async(ctx, func(ctx context.Context) (*instance.ScreenshotResponse, error) {
		return inst.Screenshot(ctx)
	})
	<-eager.Done()
	require.Equal(t, int32(2), calls.Load())

	shot, err = eager.Await(ctx)
	require.NoError(t, err)
	require.Equal(t, "aGk=", shot.Base64Image)
}

func TestAsyncPropagatesAPIError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"missing"}`))
	})

	d := Async(context.Background(), func(ctx context.Context) (*Instance, error) {
		return client.Get(ctx, "gone")
	})
	_, err := d.Await(context.Background())

	var apiErr *core.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestParseEnvironment(t *testing.T) {
	t.Parallel()

	got, err := ParseEnvironment("Staging")
	require.NoError(t, err)
	require.Equal(t, Staging, got)

	got, err = ParseEnvironment("")
	require.NoError(t, err)
	require.Equal(t, Production, got)

	_, err = ParseEnvironment("moon")
	require.Error(t, err)
}
