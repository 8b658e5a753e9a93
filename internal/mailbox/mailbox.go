package mailbox

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Result is the handoff payload a capture writes for exactly one reader.
type Result struct {
	Text       string
	TargetLang string
	SourceType string
}

type entry struct {
	result   Result
	deadline time.Time
}

// Box is a consume-once slot store. Put mints a ULID, Take removes the slot
// so a second read misses; unconsumed slots expire after the TTL and are
// collected by the sweep job.
type Box struct {
	mu      sync.Mutex
	slots   map[string]entry
	ttl     time.Duration
	nowFunc func() time.Time
}

func New(ttl time.Duration) *Box {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Box{
		slots:   make(map[string]entry),
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

func (b *Box) Put(res Result) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.nowFunc()
	id := ulid.MustNew(ulid.Timestamp(now), rand.Reader).String()
	b.slots[id] = entry{result: res, deadline: now.Add(b.ttl)}
	return id
}

func (b *Box) Take(id string) (Result, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	slot, ok := b.slots[id]
	if !ok {
		return Result{}, false
	}
	delete(b.slots, id)
	if b.nowFunc().After(slot.deadline) {
		return Result{}, false
	}
	return slot.result, true
}

// Sweep drops expired unconsumed slots and reports how many were removed.
func (b *Box) Sweep(now time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	removed := 0
	for id, slot := range b.slots {
		if now.After(slot.deadline) {
			delete(b.slots, id)
			removed++
		}
	}
	return removed
}

func (b *Box) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.slots)
}
