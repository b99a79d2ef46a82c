package server_test

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/katalvlaran/lcsall/server"
	"github.com/katalvlaran/lcsall/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	w, err := worker.New(worker.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(w.Close)

	ts := httptest.NewServer(server.New(server.DefaultConfig(), w, nil).Handler())
	t.Cleanup(ts.Close)

	return ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

// readUntil reads messages until one with the given id and kind arrives.
func readUntil(t *testing.T, conn *websocket.Conn, id string, kind worker.MessageKind) (seen []worker.Message) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(10*time.Second)))
	for {
		var m worker.Message
		require.NoError(t, conn.ReadJSON(&m))
		seen = append(seen, m)
		if m.ID == id && m.Kind == kind {
			return seen
		}
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok\n", string(body))
}

func TestBatch(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/v1/batch", "text/plain", strings.NewReader("2\nabc\nacb\nab\nba\n"))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ab\nac\n\na\nb\n", string(body))

	resp, err = http.Post(ts.URL+"/v1/batch", "text/plain", strings.NewReader("2\nab\nba\nAB\nba\n"))
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "a\nb\nerror: dataset 2: batch: symbol not allowed: 'A' (allowed: abcdefghijklmnopqrstuvwxyz)\n", string(body))

	resp, err = http.Get(ts.URL + "/v1/batch")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestMetrics(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Post(ts.URL+"/v1/batch", "text/plain", strings.NewReader("1\nab\nba\n"))
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `lcsall_batch_requests_total{result="ok"}`)
}

func TestWS_ComputeTable(t *testing.T) {
	conn := dial(t, newTestServer(t))
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "computeTable", "id": "t1", "a": "abc", "b": "ac"}))

	seen := readUntil(t, conn, "t1", worker.MsgTableResult)
	last := seen[len(seen)-1]
	require.NotNil(t, last.Table)
	assert.Equal(t, 2, last.Table.Length)
	assert.Equal(t, "ac", last.Table.LCS)
}

func TestWS_ComputeAllBounded(t *testing.T) {
	conn := dial(t, newTestServer(t))
	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": "computeAllBounded", "id": "b1", "a": "ijkijkii", "b": "ikjikji",
		"limits": map[string]int{"maxResults": 3},
	}))

	seen := readUntil(t, conn, "b1", worker.MsgBoundedResult)
	last := seen[len(seen)-1]
	require.NotNil(t, last.Bounded)
	assert.Equal(t, 3, last.Bounded.Count)
	assert.Equal(t, "countLimitReached", last.Bounded.Reason)
	for _, m := range seen[:len(seen)-1] {
		assert.Equal(t, worker.MsgProgress, m.Kind)
	}
}

func TestWS_PingAndErrors(t *testing.T) {
	conn := dial(t, newTestServer(t))

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "ping", "id": "p"}))
	readUntil(t, conn, "p", "pong")

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "bogus", "id": "x"}))
	seen := readUntil(t, conn, "x", worker.MsgError)
	assert.Contains(t, seen[len(seen)-1].Error, "unknown request kind")

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "cancel", "id": "missing"}))
	readUntil(t, conn, "missing", worker.MsgError)
}

func TestWS_Cancel(t *testing.T) {
	conn := dial(t, newTestServer(t))
	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": "computeAllBounded", "id": "big",
		"a": strings.Repeat("ab", 20), "b": strings.Repeat("ba", 20),
		"limits": map[string]int{"maxResults": 0, "timeoutMs": 0, "maxFrontier": 0},
	}))
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "cancel", "id": "big"}))

	seen := readUntil(t, conn, "big", worker.MsgError)
	assert.Contains(t, seen[len(seen)-1].Error, context.Canceled.Error())

	// Anything still queued for "big" arrives before the pong.
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "ping", "id": "after"}))
	seen = append(seen, readUntil(t, conn, "after", "pong")...)

	terminals := 0
	for _, m := range seen {
		if m.ID == "big" && m.Kind.Terminal() {
			terminals++
		}
	}
	assert.Equal(t, 1, terminals, "a cancelled request ends with exactly one terminal message")
}

func TestWS_PartialLimitsKeepDefaults(t *testing.T) {
	conn := dial(t, newTestServer(t))
	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": "computeAllBounded", "id": "wide",
		"a": strings.Repeat("abc", 14), "b": strings.Repeat("cba", 14),
		"limits": map[string]int{"maxResults": 3000000},
	}))

	seen := readUntil(t, conn, "wide", worker.MsgBoundedResult)
	last := seen[len(seen)-1]
	require.NotNil(t, last.Bounded)
	assert.True(t, last.Bounded.Truncated)
	assert.Contains(t, []string{"timeLimitReached", "stateLimitReached"}, last.Bounded.Reason)
	assert.Less(t, last.Bounded.ElapsedMS, int64(5000))
}

func TestRun_GracefulShutdown(t *testing.T) {
	w, err := worker.New(worker.DefaultConfig())
	require.NoError(t, err)
	defer w.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.New(server.DefaultConfig(), w, nil).Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
