package badge

import (
	"sync"
	"time"
)

// State mirrors the toolbar badge the browser surface renders while a
// webpage capture runs.
type State struct {
	Text  string `json:"text"`
	Color string `json:"color"`
}

var (
	Attaching  = State{Text: "...", Color: "#007BFF"}
	Capturing  = State{Text: "OCR", Color: "#FFA500"}
	Processing = State{Text: "AI", Color: "#17A2B8"}
	Success    = State{Text: "OK", Color: "#28A745"}
	Failure    = State{Text: "ERR", Color: "#DC3545"}
)

const defaultClearDelay = 5 * time.Second

type slot struct {
	state State
	gen   uint64
}

// Registry tracks the current badge per capture target. Every Set schedules
// a clear after the delay; a later Set supersedes the pending clear via the
// generation counter.
type Registry struct {
	mu         sync.Mutex
	targets    map[string]*slot
	clearDelay time.Duration
	afterFunc  func(time.Duration, func()) *time.Timer
}

func NewRegistry() *Registry {
	return &Registry{
		targets:    make(map[string]*slot),
		clearDelay: defaultClearDelay,
		afterFunc:  time.AfterFunc,
	}
}

func (r *Registry) Set(target string, state State) {
	r.mu.Lock()
	s, ok := r.targets[target]
	if !ok {
		s = &slot{}
		r.targets[target] = s
	}
	s.state = state
	s.gen++
	gen := s.gen
	r.mu.Unlock()

	// Only terminal states fade out; intermediate states stay until the
	// capture moves them along.
	if state == Success || state == Failure {
		r.afterFunc(r.clearDelay, func() {
			r.clearIfCurrent(target, gen)
		})
	}
}

func (r *Registry) clearIfCurrent(target string, gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.targets[target]; ok && s.gen == gen {
		delete(r.targets, target)
	}
}

func (r *Registry) Get(target string) (State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.targets[target]
	if !ok {
		return State{}, false
	}
	return s.state, true
}
