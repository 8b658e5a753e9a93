package devtool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// fakeDevTools serves the /json discovery list and a CDP websocket that
// answers Page.captureScreenshot.
type fakeDevTools struct {
	srv         *httptest.Server
	upgrader    websocket.Upgrader
	dials       atomic.Int64
	screenshot  string
	failCommand bool
}

func newFakeDevTools(t *testing.T) *fakeDevTools {
	f := &fakeDevTools{screenshot: "ZmFrZWpwZWc="}
	mux := http.NewServeMux()
	mux.HandleFunc("/json", func(w http.ResponseWriter, r *http.Request) {
		wsURL := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/devtools/page/tab-1"
		targets := []TargetInfo{
			{ID: "bg-1", Type: "background_page", URL: "chrome-extension://x"},
			{ID: "tab-1", Type: "page", Title: "Example", URL: "https://example.com/a", WebSocketDebuggerURL: wsURL},
		}
		_ = json.NewEncoder(w).Encode(targets)
	})
	mux.HandleFunc("/devtools/page/tab-1", func(w http.ResponseWriter, r *http.Request) {
		f.dials.Add(1)
		ws, err := f.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		for {
			var req cdpRequest
			if err := ws.ReadJSON(&req); err != nil {
				return
			}
			if f.failCommand {
				_ = ws.WriteJSON(map[string]interface{}{
					"id":    req.ID,
					"error": map[string]interface{}{"code": -32000, "message": "Not allowed"},
				})
				continue
			}
			_ = ws.WriteJSON(map[string]interface{}{
				"id":     req.ID,
				"result": map[string]string{"data": f.screenshot},
			})
		}
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func TestResolveTarget_DefaultsToFirstPage(t *testing.T) {
	f := newFakeDevTools(t)
	client := NewClient(f.srv.URL, f.srv.Client())

	target, err := client.ResolveTarget(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, "tab-1", target.ID)
	require.Equal(t, "https://example.com/a", target.URL)

	_, err = client.ResolveTarget(context.Background(), "bg-1")
	require.ErrorIs(t, err, ErrNoPageTarget)
}

func TestAttach_IsIdempotent(t *testing.T) {
	f := newFakeDevTools(t)
	client := NewClient(f.srv.URL, f.srv.Client())
	defer client.Close()

	target, err := client.ResolveTarget(context.Background(), "tab-1")
	require.NoError(t, err)

	require.NoError(t, client.Attach(context.Background(), target))
	require.NoError(t, client.Attach(context.Background(), target))
	require.True(t, client.Attached("tab-1"))
	require.Equal(t, int64(1), f.dials.Load(), "second attach must reuse the record")
}

func TestCaptureScreenshot_ReturnsData(t *testing.T) {
	f := newFakeDevTools(t)
	client := NewClient(f.srv.URL, f.srv.Client())
	defer client.Close()

	target, err := client.ResolveTarget(context.Background(), "tab-1")
	require.NoError(t, err)
	require.NoError(t, client.Attach(context.Background(), target))

	data, err := client.CaptureScreenshot(context.Background(), "tab-1")
	require.NoError(t, err)
	require.Equal(t, "ZmFrZWpwZWc=", data)
}

func TestCaptureScreenshot_RequiresAttachment(t *testing.T) {
	f := newFakeDevTools(t)
	client := NewClient(f.srv.URL, f.srv.Client())

	_, err := client.CaptureScreenshot(context.Background(), "tab-1")
	require.ErrorIs(t, err, ErrNotAttached)
}

func TestCaptureScreenshot_CommandError(t *testing.T) {
	f := newFakeDevTools(t)
	f.failCommand = true
	client := NewClient(f.srv.URL, f.srv.Client())
	defer client.Close()

	target, err := client.ResolveTarget(context.Background(), "tab-1")
	require.NoError(t, err)
	require.NoError(t, client.Attach(context.Background(), target))

	_, err = client.CaptureScreenshot(context.Background(), "tab-1")
	require.ErrorContains(t, err, "Not allowed")
}

func TestDetach_ClearsRecordSoNextCaptureReattaches(t *testing.T) {
	f := newFakeDevTools(t)
	client := NewClient(f.srv.URL, f.srv.Client())
	defer client.Close()

	target, err := client.ResolveTarget(context.Background(), "tab-1")
	require.NoError(t, err)
	require.NoError(t, client.Attach(context.Background(), target))

	// Externally triggered detach: the browser side drops the socket.
	client.mu.Lock()
	s := client.attached["tab-1"]
	client.mu.Unlock()
	s.close()

	require.Eventually(t, func() bool {
		return !client.Attached("tab-1")
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, client.Attach(context.Background(), target))
	require.True(t, client.Attached("tab-1"))
	require.Equal(t, int64(2), f.dials.Load())
}

func TestListTargets_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()
	client := NewClient(srv.URL, srv.Client())

	_, err := client.ListTargets(context.Background())
	require.ErrorContains(t, err, fmt.Sprint(http.StatusBadGateway))
}
