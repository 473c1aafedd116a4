package transport

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/tangent/pkg/types"
)

func newTestServer(t *testing.T, opts ServerOptions) (*Server, *httptest.Server) {
	t.Helper()
	server := NewServer(echoInvoker, opts)
	ts := httptest.NewServer(server)
	t.Cleanup(func() {
		server.Close()
		ts.Close()
		ts.Client().CloseIdleConnections()
	})
	return server, ts
}

func dial(t *testing.T, ts *httptest.Server, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var m map[string]any
	require.NoError(t, conn.ReadJSON(&m))
	return m
}

func TestWebSocketRoundTrip(t *testing.T) {
	_, ts := newTestServer(t, ServerOptions{})
	conn := dial(t, ts, nil)

	require.NoError(t, conn.WriteJSON(types.Request{ID: "a", Cmd: "get_recent_files"}))
	resp := readJSON(t, conn)
	assert.Equal(t, "a", resp["id"])
	assert.Equal(t, true, resp["ok"])
	assert.Equal(t, "get_recent_files", resp["result"])

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("garbage")))
	resp = readJSON(t, conn)
	assert.Nil(t, resp["id"])
	assert.Equal(t, "invalid", resp["kind"])
}

func TestWebSocketBroadcast(t *testing.T) {
	server, ts := newTestServer(t, ServerOptions{})
	conn := dial(t, ts, nil)

	require.Eventually(t, func() bool { return server.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	files := []types.RecentFile{{Path: "/x", Name: "x", Timestamp: 1}}
	server.Broadcast(types.NewRecentFilesChangedEvent(files))

	msg := readJSON(t, conn)
	assert.Equal(t, "recent_files_changed", msg["event"])
	payload, ok := msg["payload"].([]any)
	require.True(t, ok)
	require.Len(t, payload, 1)
	assert.Equal(t, "/x", payload[0].(map[string]any)["path"])
}

func TestWebSocketOrigins(t *testing.T) {
	t.Run("foreign origin rejected by default", func(t *testing.T) {
		_, ts := newTestServer(t, ServerOptions{})
		url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
		_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://evil.example"}})
		require.Error(t, err)
		require.NotNil(t, resp)
		resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("configured origin accepted", func(t *testing.T) {
		_, ts := newTestServer(t, ServerOptions{AllowedOrigins: []string{"http://localhost:1420/"}})
		dial(t, ts, http.Header{"Origin": {"http://localhost:1420"}})
	})
}

func TestHTTPInvoke(t *testing.T) {
	_, ts := newTestServer(t, ServerOptions{})

	tests := []struct {
		name   string
		cmd    string
		body   string
		status int
		ok     bool
	}{
		{name: "success", cmd: "read_notebook_file", body: `{"path":"/x"}`, status: http.StatusOK, ok: true},
		{name: "empty body", cmd: "get_recent_files", status: http.StatusOK, ok: true},
		{name: "failure", cmd: "fail", status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPost, ts.URL+"/invoke/"+tt.cmd, strings.NewReader(tt.body))
			require.NoError(t, err)
			req.Header.Set("X-Request-Id", "req-1")

			resp, err := ts.Client().Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

			var out types.Response
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
			assert.Equal(t, tt.ok, out.OK)
			assert.Equal(t, "req-1", out.ID)
		})
	}
}

func TestHTTPInvokeMethodNotAllowed(t *testing.T) {
	_, ts := newTestServer(t, ServerOptions{})

	resp, err := ts.Client().Get(ts.URL + "/invoke/get_recent_files")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	_, ts := newTestServer(t, ServerOptions{})

	resp, err := ts.Client().Get(ts.URL + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))

	resp, err = ts.Client().Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "tangent_notebook_bytes_read_total")
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusOK, statusFor(types.NewResult(1, nil)))
	assert.Equal(t, http.StatusBadRequest, statusFor(types.NewError(1, types.ErrorKindInvalid, "")))
	assert.Equal(t, http.StatusNotFound, statusFor(types.NewError(1, types.ErrorKindNotFound, "")))
	assert.Equal(t, http.StatusNotFound, statusFor(types.NewError(1, types.ErrorKindUnknownCommand, "")))
	assert.Equal(t, http.StatusInternalServerError, statusFor(types.NewError(1, types.ErrorKindParse, "")))
}

func TestServeShutsDownOnCancel(t *testing.T) {
	server := NewServer(echoInvoker, ServerOptions{})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	http.DefaultClient.CloseIdleConnections()
}
