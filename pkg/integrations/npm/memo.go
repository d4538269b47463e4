package npm

import (
	"slices"
	"sync"
)

// Memo holds packuments for the lifetime of a process. It is safe for
// concurrent use; concurrent writers for the same name race and the last
// one wins, which is harmless because they store equivalent documents.
type Memo struct {
	mu    sync.RWMutex
	items map[string]*Packument
}

// NewMemo creates an empty memo.
func NewMemo() *Memo {
	return &Memo{items: make(map[string]*Packument)}
}

func (m *Memo) Get(name string) (*Packument, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.items[name]
	return p, ok
}

func (m *Memo) Put(name string, p *Packument) {
	m.mu.Lock()
	m.items[name] = p
	m.mu.Unlock()
}

// Keys returns the memoized names in sorted order.
func (m *Memo) Keys() []string {
	m.mu.RLock()
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	m.mu.RUnlock()
	slices.Sort(keys)
	return keys
}

func (m *Memo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Clear drops every entry.
func (m *Memo) Clear() {
	m.mu.Lock()
	m.items = make(map[string]*Packument)
	m.mu.Unlock()
}
