package tree

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDAllocator hands out node identifiers. Implementations must be safe for
// concurrent use; the Tree still rejects any identifier already present in
// the forest, so a colliding allocator can never corrupt node identity.
type IDAllocator interface {
	Next() string
}

// CounterAllocator issues monotonic identifiers "n1", "n2", ...
type CounterAllocator struct {
	prefix string
	next   atomic.Uint64
}

// NewCounterAllocator creates a counter allocator with the default "n" prefix.
func NewCounterAllocator() *CounterAllocator {
	return &CounterAllocator{prefix: "n"}
}

// Next returns the next identifier in sequence.
func (a *CounterAllocator) Next() string {
	return a.prefix + strconv.FormatUint(a.next.Add(1), 10)
}

// UUIDAllocator issues random v4 UUIDs and remembers every identifier it has
// returned, retrying on the (vanishingly rare) repeat.
type UUIDAllocator struct {
	mu   sync.Mutex
	seen map[string]struct{}
	gen  func() string
}

// NewUUIDAllocator creates a collision-checked UUID allocator.
func NewUUIDAllocator() *UUIDAllocator {
	return &UUIDAllocator{
		seen: make(map[string]struct{}),
		gen:  uuid.NewString,
	}
}

// Next returns an identifier this allocator has never returned before.
func (a *UUIDAllocator) Next() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	for {
		id := a.gen()
		if _, dup := a.seen[id]; dup {
			continue
		}
		a.seen[id] = struct{}{}
		return id
	}
}

// NewAllocator returns the allocator for a configured strategy name.
// Unknown names fall back to the counter.
func NewAllocator(strategy string) IDAllocator {
	switch strategy {
	case "uuid":
		return NewUUIDAllocator()
	default:
		return NewCounterAllocator()
	}
}
