package devtool

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

type cdpRequest struct {
	ID     int64       `json:"id"`
	Method string      `json:"method"`
	Params interface{} `json:"params,omitempty"`
}

type cdpMessage struct {
	ID     int64           `json:"id"`
	Method string          `json:"method"`
	Result json.RawMessage `json:"result"`
	Error  *cdpError       `json:"error"`
}

type cdpError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type reply struct {
	result json.RawMessage
	err    error
}

// session is one live debugger connection. Command replies are matched to
// callers by message id; protocol events are ignored.
type session struct {
	targetID string
	ws       *websocket.Conn
	writeMu  sync.Mutex
	nextID   atomic.Int64

	mu        sync.Mutex
	pending   map[int64]chan reply
	done      chan struct{}
	closeOnce sync.Once
}

func newSession(targetID string, ws *websocket.Conn) *session {
	return &session{
		targetID: targetID,
		ws:       ws,
		pending:  make(map[int64]chan reply),
		done:     make(chan struct{}),
	}
}

func (s *session) call(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	id := s.nextID.Add(1)
	ch := make(chan reply, 1)
	s.mu.Lock()
	s.pending[id] = ch
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
	}()

	s.writeMu.Lock()
	err := s.ws.WriteJSON(cdpRequest{ID: id, Method: method, Params: params})
	s.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("send %s: %w", method, err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.done:
		return nil, ErrDetached
	case r := <-ch:
		return r.result, r.err
	}
}

func (s *session) readLoop() {
	defer s.close()
	for {
		_, data, err := s.ws.ReadMessage()
		if err != nil {
			return
		}
		var msg cdpMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.ID == 0 {
			continue
		}
		s.mu.Lock()
		ch, ok := s.pending[msg.ID]
		s.mu.Unlock()
		if !ok {
			continue
		}
		if msg.Error != nil {
			ch <- reply{err: fmt.Errorf("debugger command failed: %s", msg.Error.Message)}
			continue
		}
		ch <- reply{result: msg.Result}
	}
}

func (s *session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.ws.Close()
	})
}
