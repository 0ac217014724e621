package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

type entry[V any] struct {
	expiresAt time.Time
	value     V
	key       string
	size      int64
}

func (e *entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Memory is a process-local LRU cache.
type Memory[V any] struct {
	items      map[string]*list.Element
	lru        *list.List
	sizeOf     func(V) int64
	now        func() time.Time
	defaultTTL time.Duration
	maxEntries int
	maxSize    int64
	size       int64
	mu         sync.Mutex
	closed     bool
}

// MemoryOption configures a Memory cache.
type MemoryOption[V any] func(*Memory[V])

// WithDefaultTTL applies to Set calls with a zero TTL. Default: one hour.
func WithDefaultTTL[V any](d time.Duration) MemoryOption[V] {
	return func(m *Memory[V]) { m.defaultTTL = d }
}

// WithMaxEntries bounds the entry count. Zero means unbounded.
func WithMaxEntries[V any](n int) MemoryOption[V] {
	return func(m *Memory[V]) { m.maxEntries = n }
}

// WithMaxSize bounds the summed sizeOf of all values, evicting least recently
// used entries to make room. A single value larger than max is rejected.
func WithMaxSize[V any](limit int64, sizeOf func(V) int64) MemoryOption[V] {
	return func(m *Memory[V]) {
		m.maxSize = limit
		m.sizeOf = sizeOf
	}
}

// WithClock overrides time.Now, for tests.
func WithClock[V any](now func() time.Time) MemoryOption[V] {
	return func(m *Memory[V]) { m.now = now }
}

func NewMemory[V any](opts ...MemoryOption[V]) *Memory[V] {
	m := &Memory[V]{
		items:      make(map[string]*list.Element),
		lru:        list.New(),
		now:        time.Now,
		defaultTTL: time.Hour,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero V
	if m.closed {
		return zero, ErrClosed
	}

	el, ok := m.items[key]
	if !ok {
		return zero, ErrNotFound
	}
	e := el.Value.(*entry[V])
	if e.expired(m.now()) {
		m.remove(el)
		return zero, ErrNotFound
	}
	m.lru.MoveToFront(el)
	return e.value, nil
}

func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	var size int64
	if m.sizeOf != nil {
		size = m.sizeOf(value)
		if m.maxSize > 0 && size > m.maxSize {
			return ErrTooLarge
		}
	}

	if ttl == 0 {
		ttl = m.defaultTTL
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = m.now().Add(ttl)
	}

	if el, ok := m.items[key]; ok {
		m.remove(el)
	}

	for m.lru.Len() > 0 && m.overBudget(size) {
		m.remove(m.lru.Back())
	}

	m.items[key] = m.lru.PushFront(&entry[V]{key: key, value: value, expiresAt: expiresAt, size: size})
	m.size += size
	return nil
}

func (m *Memory[V]) overBudget(incoming int64) bool {
	if m.maxEntries > 0 && m.lru.Len() >= m.maxEntries {
		return true
	}
	return m.maxSize > 0 && m.size+incoming > m.maxSize
}

func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if el, ok := m.items[key]; ok {
		m.remove(el)
	}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lru.Len()
}

// Size returns the summed size of stored values.
func (m *Memory[V]) Size() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.size
}

// Close drops every entry. Close is idempotent.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.items = map[string]*list.Element{}
	m.lru.Init()
	m.size = 0
	return nil
}

// remove requires m.mu.
func (m *Memory[V]) remove(el *list.Element) {
	e := m.lru.Remove(el).(*entry[V])
	delete(m.items, e.key)
	m.size -= e.size
}

var _ Cache[any] = (*Memory[any])(nil)
