package store

import (
	"sort"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/jpalmerr/syncboard/table"
)

const subscriberBuffer = 100

// MemoryStore is an in-memory implementation of [Store].
//
// Each table is written through a [TableSink]. Appends are staged and only
// become visible when the render is flushed, so readers always see either the
// previous table or the new one. Subscribers receive every published snapshot
// via buffered channels; if a subscriber's buffer is full the update is
// dropped for that subscriber.
type MemoryStore struct {
	clock clock.Clock

	mu     sync.RWMutex
	tables map[string]*tableState

	subMu       sync.RWMutex
	subscribers map[chan Snapshot]struct{}
}

type tableState struct {
	pending   []table.Row
	published Snapshot
}

// NewMemoryStore creates a new in-memory [Store] with the given table names
// registered. A nil clk means the wall clock.
func NewMemoryStore(clk clock.Clock, names ...string) *MemoryStore {
	if clk == nil {
		clk = clock.New()
	}
	m := &MemoryStore{
		clock:       clk,
		tables:      make(map[string]*tableState, len(names)),
		subscribers: make(map[chan Snapshot]struct{}),
	}
	for _, name := range names {
		m.tables[name] = &tableState{published: Snapshot{Name: name, Rows: []table.Row{}}}
	}
	return m
}

// Table returns the sink for the named table, registering it if needed.
func (m *MemoryStore) Table(name string) *TableSink {
	m.mu.Lock()
	if _, ok := m.tables[name]; !ok {
		m.tables[name] = &tableState{published: Snapshot{Name: name, Rows: []table.Row{}}}
	}
	m.mu.Unlock()
	return &TableSink{store: m, name: name}
}

// Get returns the latest published snapshot of the named table.
func (m *MemoryStore) Get(name string) (Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st, ok := m.tables[name]
	if !ok {
		return Snapshot{}, false
	}
	return copySnapshot(st.published), true
}

// GetAll returns the latest published snapshot of every table, ordered by name.
//
// The returned slice is a copy; modifications do not affect the store.
func (m *MemoryStore) GetAll() []Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Snapshot, 0, len(m.tables))
	for _, st := range m.tables {
		out = append(out, copySnapshot(st.published))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Subscribe creates a new subscription and returns a channel for receiving
// published snapshots.
//
// Caller must call [MemoryStore.Unsubscribe] when done to prevent resource leaks.
func (m *MemoryStore) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
//
// Safe to call multiple times or with an unknown channel.
func (m *MemoryStore) Unsubscribe(ch <-chan Snapshot) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

func (m *MemoryStore) clear(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[name].pending = []table.Row{}
}

func (m *MemoryStore) append(name string, row table.Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.tables[name]
	st.pending = append(st.pending, row)
}

// publish promotes the staged rows to the published snapshot.
func (m *MemoryStore) publish(name string) {
	m.mu.Lock()
	st := m.tables[name]
	rows := st.pending
	if rows == nil {
		rows = []table.Row{}
	}
	st.published = Snapshot{
		Name:      name,
		Rows:      rows,
		UpdatedAt: m.clock.Now(),
		Version:   st.published.Version + 1,
	}
	st.pending = nil
	snap := copySnapshot(st.published)
	m.mu.Unlock()

	m.notifySubscribers(snap)
}

// notifySubscribers sends the snapshot to all active subscribers.
//
// This is non-blocking: if a subscriber's channel buffer is full, the message
// is dropped for that subscriber rather than blocking the render path.
func (m *MemoryStore) notifySubscribers(snap Snapshot) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- snap:
		default:
			// subscriber is slow, drop the message
		}
	}
}

func copySnapshot(s Snapshot) Snapshot {
	rows := make([]table.Row, len(s.Rows))
	copy(rows, s.Rows)
	s.Rows = rows
	return s
}

// TableSink writes one named table of a [MemoryStore].
//
// It implements [table.Sink] and [table.Flusher]. Rows appended since the
// last Clear are published on Flush.
type TableSink struct {
	store *MemoryStore
	name  string
}

// Name returns the table name.
func (s *TableSink) Name() string {
	return s.name
}

// Clear implements [table.Sink].
func (s *TableSink) Clear() {
	s.store.clear(s.name)
}

// Append implements [table.Sink].
func (s *TableSink) Append(row table.Row) {
	s.store.append(s.name, row)
}

// Flush implements [table.Flusher].
func (s *TableSink) Flush() {
	s.store.publish(s.name)
}
