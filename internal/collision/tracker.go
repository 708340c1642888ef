package collision

import (
	"sync"

	"github.com/arloliu/ifsf/internal/hash"
)

// Outcome classifies a tracked request.
type Outcome uint8

const (
	// New is the first request seen under its key.
	New Outcome = iota
	// Repeat is a byte-identical retransmission of a tracked request.
	Repeat
	// Conflict reuses a tracked key for a different request.
	Conflict
)

func (o Outcome) String() string {
	switch o {
	case New:
		return "new"
	case Repeat:
		return "repeat"
	case Conflict:
		return "conflict"
	default:
		return "unknown"
	}
}

type entry struct {
	key         string
	fingerprint uint64
	response    []byte
}

// Tracker remembers recent requests by key, typically terminal and STAN, and
// detects retransmissions and key reuse.
//
// Keys are indexed by their xxHash64. Two keys sharing a hash evict one
// another rather than being reported as conflicts. The oldest key is evicted
// once the window is full. A Tracker is safe for concurrent use.
type Tracker struct {
	mu        sync.Mutex
	seen      map[uint64]*entry
	order     []uint64
	window    int
	repeats   int
	conflicts int
}

// NewTracker creates a tracker that remembers up to window keys.
func NewTracker(window int) *Tracker {
	if window <= 0 {
		window = 1
	}

	return &Tracker{
		seen:   make(map[uint64]*entry, window),
		order:  make([]uint64, 0, window),
		window: window,
	}
}

// Track records fingerprint under key. On Repeat it returns the response
// stored for the original request, which is nil until Store is called.
func (t *Tracker) Track(key string, fingerprint uint64) (Outcome, []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h := hash.ID(key)
	if e, ok := t.seen[h]; ok && e.key == key {
		if e.fingerprint == fingerprint {
			t.repeats++
			return Repeat, e.response
		}
		t.conflicts++

		return Conflict, nil
	} else if ok {
		// hash shared with another key
		e.key, e.fingerprint, e.response = key, fingerprint, nil

		return New, nil
	}

	if len(t.order) == t.window {
		delete(t.seen, t.order[0])
		t.order = append(t.order[:0], t.order[1:]...)
	}
	t.seen[h] = &entry{key: key, fingerprint: fingerprint}
	t.order = append(t.order, h)

	return New, nil
}

// Store attaches the response sent for the request tracked under key.
func (t *Tracker) Store(key string, response []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if e, ok := t.seen[hash.ID(key)]; ok && e.key == key {
		e.response = response
	}
}

// Count returns the number of keys in the window.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.order)
}

// Repeats returns the number of retransmissions seen.
func (t *Tracker) Repeats() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.repeats
}

// Conflicts returns the number of reused keys seen.
func (t *Tracker) Conflicts() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.conflicts
}

// Reset forgets all keys and counters.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	clear(t.seen)
	t.order = t.order[:0]
	t.repeats, t.conflicts = 0, 0
}
