package devtool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

var (
	ErrNoPageTarget = errors.New("no debuggable page target found")
	ErrNotAttached  = errors.New("debugger is not attached to target")
	ErrDetached     = errors.New("debugger detached from target")
)

// TargetInfo describes one debuggable page as listed by the DevTools
// discovery endpoint.
type TargetInfo struct {
	ID                   string `json:"id"`
	Type                 string `json:"type"`
	Title                string `json:"title"`
	URL                  string `json:"url"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// Client drives the Chrome DevTools protocol for webpage captures. It owns
// the per-target attachment record: Attach is idempotent, and a read-loop
// exit (the target navigated away, DevTools was opened, the browser died)
// clears the record so the next capture re-attaches.
type Client struct {
	baseURL string
	hc      *http.Client
	dialer  *websocket.Dialer

	mu       sync.Mutex
	attached map[string]*session
}

func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		hc:       hc,
		dialer:   websocket.DefaultDialer,
		attached: make(map[string]*session),
	}
}

// ListTargets queries the discovery endpoint and keeps page targets only.
func (c *Client) ListTargets(ctx context.Context) ([]TargetInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/json", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query devtools targets: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("devtools target list returned status %d", resp.StatusCode)
	}
	var all []TargetInfo
	if err := json.NewDecoder(resp.Body).Decode(&all); err != nil {
		return nil, fmt.Errorf("decode devtools target list: %w", err)
	}
	pages := make([]TargetInfo, 0, len(all))
	for _, t := range all {
		if t.Type == "page" {
			pages = append(pages, t)
		}
	}
	return pages, nil
}

// ResolveTarget maps an optional explicit target id to a page target,
// defaulting to the first listed page (the active tab).
func (c *Client) ResolveTarget(ctx context.Context, targetID string) (TargetInfo, error) {
	pages, err := c.ListTargets(ctx)
	if err != nil {
		return TargetInfo{}, err
	}
	if len(pages) == 0 {
		return TargetInfo{}, ErrNoPageTarget
	}
	if targetID == "" {
		return pages[0], nil
	}
	for _, t := range pages {
		if t.ID == targetID {
			return t, nil
		}
	}
	return TargetInfo{}, fmt.Errorf("%w: %s", ErrNoPageTarget, targetID)
}

func (c *Client) Attached(targetID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.attached[targetID]
	return ok
}

// Attach dials the target's debugger socket unless the record already marks
// it attached. Two requests racing on the same unattached target may both
// dial; the loser's session replaces the winner's, which is the accepted
// benign-duplicate behavior.
func (c *Client) Attach(ctx context.Context, target TargetInfo) error {
	c.mu.Lock()
	if _, ok := c.attached[target.ID]; ok {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	ws, _, err := c.dialer.DialContext(ctx, target.WebSocketDebuggerURL, nil)
	if err != nil {
		return fmt.Errorf("attach debugger: %w", err)
	}
	s := newSession(target.ID, ws)
	c.mu.Lock()
	c.attached[target.ID] = s
	c.mu.Unlock()

	go func() {
		s.readLoop()
		c.detach(target.ID, s)
	}()
	return nil
}

// detach clears the attachment record for any reason the socket closed.
func (c *Client) detach(targetID string, s *session) {
	c.mu.Lock()
	if cur, ok := c.attached[targetID]; ok && cur == s {
		delete(c.attached, targetID)
	}
	c.mu.Unlock()
	logutil.GetLogger(context.Background()).Info("debugger detached", zap.String("target", targetID))
}

// CaptureScreenshot runs Page.captureScreenshot on an attached target and
// returns the base64 JPEG data. The capture includes beyond-viewport content.
func (c *Client) CaptureScreenshot(ctx context.Context, targetID string) (string, error) {
	c.mu.Lock()
	s, ok := c.attached[targetID]
	c.mu.Unlock()
	if !ok {
		return "", ErrNotAttached
	}
	raw, err := s.call(ctx, "Page.captureScreenshot", map[string]interface{}{
		"format":                "jpeg",
		"quality":               90,
		"captureBeyondViewport": true,
	})
	if err != nil {
		return "", err
	}
	var result struct {
		Data string `json:"data"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("decode screenshot result: %w", err)
	}
	if result.Data == "" {
		return "", errors.New("screenshot capture returned no data")
	}
	return result.Data, nil
}

// Close tears down every attached session.
func (c *Client) Close() {
	c.mu.Lock()
	sessions := make([]*session, 0, len(c.attached))
	for _, s := range c.attached {
		sessions = append(sessions, s)
	}
	c.mu.Unlock()
	for _, s := range sessions {
		s.close()
	}
}
