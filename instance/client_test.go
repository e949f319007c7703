package instance

import (
	"context"
	"io"
	"mime"
	"mime/multipart"
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

func TestStart(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/start", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.JSONEq(t, `{"instance_type":"ubuntu","timeout_hours":0.5,"resolution":[1280,720]}`, string(body))

		writeJSON(w, `{"id":"s-123","launch_time":"2025-01-01T00:00:00Z","instance_type":"ubuntu","status":"running"}`)
	})

	details, err := client.Start(context.Background(), StartParams{
		Type:         TypeUbuntu,
		TimeoutHours: core.Value(0.5),
		Resolution:   core.Value([]int{1280, 720}),
	})
	require.NoError(t, err)
	require.Equal(t, "s-123", details.ID)
	require.Equal(t, TypeUbuntu, details.InstanceType)
	require.Equal(t, "running", details.Status)
}

func TestStartRejectsUnknownType(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not be sent")
	})

	_, err := client.Start(context.Background(), StartParams{Type: "mac"})
	require.ErrorContains(t, err, "ubuntu, browser, windows")
}

func TestParseType(t *testing.T) {
	t.Parallel()

	cases := map[string]Type{
		"ubuntu":  TypeUbuntu,
		"jupyter": TypeUbuntu,
		"browser": TypeBrowser,
		"Chrome":  TypeBrowser,
		"firefox": TypeBrowser,
		"windows": TypeWindows,
	}
	for name, want := range cases {
		got, err := ParseType(name)
		require.NoError(t, err, name)
		require.Equal(t, want, got, name)
	}

	_, err := ParseType("plan9")
	require.Error(t, err)
}

func TestList(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v1/instances", r.URL.Path)
		writeJSON(w, `[{"id":"a","status":"running"},{"id":"b","status":"paused"}]`)
	})

	list, err := client.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "paused", list[1].Status)
}

func TestLifecyclePaths(t *testing.T) {
	t.Parallel()

	var got []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Method+" "+r.URL.Path)
		switch r.URL.Path {
		case "/v1/instance/abc/screenshot":
			writeJSON(w, `{"base64_image":"AAA"}`)
		case "/v1/instance/abc/stream_url":
			writeJSON(w, `{"stream_url":"https://stream"}`)
		case "/v1/instance/abc/resume":
			body, _ := io.ReadAll(r.Body)
			require.JSONEq(t, `{"timeout_hours":2}`, string(body))
			writeJSON(w, `{"id":"abc","status":"running"}`)
		default:
			writeJSON(w, `{"success":true,"id":"abc","status":"running"}`)
		}
	})

	ctx := context.Background()

	_, err := client.Get(ctx, "abc")
	require.NoError(t, err)

	stopped, err := client.Stop(ctx, "abc")
	require.NoError(t, err)
	require.True(t, stopped.Success)

	_, err = client.Pause(ctx, "abc")
	require.NoError(t, err)

	resumed, err := client.Resume(ctx, "abc", ResumeParams{TimeoutHours: core.Value(2.0)})
	require.NoError(t, err)
	require.Equal(t, "running", resumed.Status)

	shot, err := client.Screenshot(ctx, "abc")
	require.NoError(t, err)
	require.Equal(t, "AAA", shot.Base64Image)

	stream, err := client.StreamURL(ctx, "abc")
	require.NoError(t, err)
	require.Equal(t, "https://stream", stream.StreamURL)

	require.Equal(t, []string{
		"GET /v1/instance/abc",
		"POST /v1/instance/abc/stop",
		"POST /v1/instance/abc/pause",
		"POST /v1/instance/abc/resume",
		"POST /v1/instance/abc/screenshot",
		"GET /v1/instance/abc/stream_url",
	}, got)
}

func TestMissingIDFailsBeforeRequest(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not be sent")
	})

	_, err := client.Get(context.Background(), " ")
	require.ErrorIs(t, err, core.ErrMissingID)
}

func TestBashStripsUnsetFields(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/instance/abc/bash", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.JSONEq(t, `{"command":"sleep 5 &","wait":false}`, string(body))

		writeJSON(w, `{"output":"started"}`)
	})

	out, err := client.Bash(context.Background(), "abc", BashParams{
		Command: "sleep 5 &",
		Wait:    core.Value(false),
		Restart: core.Null[bool](),
	})
	require.NoError(t, err)
	require.Equal(t, "started", out.Output)
}

func TestFile(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.JSONEq(t, `{"command":"view","path":"/tmp/a.txt","view_range":[1,10],"line_numbers":true}`, string(body))
		writeJSON(w, `{"output":"1: hello"}`)
	})

	out, err := client.File(context.Background(), "abc", FileParams{
		Command:     "view",
		Path:        core.Value("/tmp/a.txt"),
		ViewRange:   core.Value([]int{1, 10}),
		LineNumbers: core.Value(true),
	})
	require.NoError(t, err)
	require.Equal(t, "1: hello", out.Output)

	_, err = client.File(context.Background(), "abc", FileParams{})
	require.Error(t, err)
}

func TestComputer(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.JSONEq(t, `{"action":"click_mouse","button":"left","coordinates":[10,20],"num_clicks":0}`, string(body))
		writeJSON(w, `{"base64_image":"BBB"}`)
	})

	out, err := client.Computer(context.Background(), "abc", ComputerParams{
		Action:      "click_mouse",
		Button:      core.Value("left"),
		Coordinates: core.Value([]int{10, 20}),
		NumClicks:   core.Value(0),
	})
	require.NoError(t, err)
	require.Equal(t, "BBB", out.Base64Image)
}

func TestUpload(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/instance/abc/upload", r.URL.Path)
		require.Equal(t, "/home/user/report.pdf", r.URL.Query().Get("path"))

		_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		require.NoError(t, err)

		part, err := multipart.NewReader(r.Body, params["boundary"]).NextPart()
		require.NoError(t, err)
		require.Equal(t, "application/pdf", part.Header.Get("Content-Type"))

		writeJSON(w, `{"filename":"report.pdf","path":"/home/user/report.pdf","media_type":"application/pdf"}`)
	})

	out, err := client.Upload(context.Background(), "abc", "/home/user/report.pdf",
		core.FileBytes{Content: []byte("%PDF-1.4"), Filename: "report.pdf"})
	require.NoError(t, err)
	require.Equal(t, "application/pdf", out.MediaType)
}
