package structure

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"dockergen/internal/tree"
)

func TestSessionStoreExpiresIdleSessions(t *testing.T) {
	store := NewSessionStore(time.Hour, 10, nil)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.get("old")
	now = now.Add(30 * time.Minute)
	store.get("recent")
	assert.Equal(t, 2, store.Len())

	now = now.Add(45 * time.Minute)
	store.get("new")

	assert.Equal(t, 2, store.Len())
	store.mu.Lock()
	_, oldExists := store.sessions["old"]
	store.mu.Unlock()
	assert.False(t, oldExists)
}

func TestSessionStoreCapEvictsLeastRecentlyUsed(t *testing.T) {
	store := NewSessionStore(0, 10, nil).WithMaxSessions(2)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.get("a")
	now = now.Add(time.Minute)
	store.get("b")
	now = now.Add(time.Minute)
	store.get("a")
	now = now.Add(time.Minute)

	for i := range 50 {
		store.get("cycled-" + strconv.Itoa(i))
		now = now.Add(time.Second)
		assert.LessOrEqual(t, store.Len(), 2)
	}

	store.mu.Lock()
	_, aExists := store.sessions["a"]
	_, lastExists := store.sessions["cycled-49"]
	store.mu.Unlock()
	assert.False(t, aExists)
	assert.True(t, lastExists)
}

func TestSessionStoreCapKeepsExistingSessions(t *testing.T) {
	store := NewSessionStore(0, 10, nil).WithMaxSessions(1)

	first := store.get("a")
	again := store.get("a")
	assert.Same(t, first, again)
	assert.Equal(t, 1, store.Len())
}

func TestSessionStoreWithoutTTLKeepsSessions(t *testing.T) {
	store := NewSessionStore(0, 10, nil)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.get("a")
	now = now.Add(1000 * time.Hour)
	store.get("b")

	assert.Equal(t, 2, store.Len())
}

func TestSessionStoreUsesAllocatorFactory(t *testing.T) {
	store := NewSessionStore(time.Hour, 10, func() tree.IDAllocator {
		return &prefixAllocator{prefix: "s-"}
	})

	s := store.get("a")
	next, node, err := s.current().Insert("", tree.KindFile, "x")
	assert.NoError(t, err)
	assert.Equal(t, "s-1", node.ID())
	assert.Equal(t, 1, next.Len())
}

type prefixAllocator struct {
	prefix string
	n      int
}

func (a *prefixAllocator) Next() string {
	a.n++
	return a.prefix + strconv.Itoa(a.n)
}
