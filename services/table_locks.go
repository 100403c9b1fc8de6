package services

import (
	"sort"
	"sync"
)

// tableLocks serializes all mutations per table id. Tables are created
// once at hall setup and never destroyed, so the map only grows to the
// table count.
type tableLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newTableLocks() *tableLocks {
	return &tableLocks{locks: make(map[uint]*sync.Mutex)}
}

func (l *tableLocks) forTable(id uint) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	return m
}

// acquire locks a set of tables in ascending id order so concurrent
// multi-table operations cannot deadlock. The returned func releases in
// reverse order.
func (l *tableLocks) acquire(ids ...uint) func() {
	uniq := make([]uint, 0, len(ids))
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			uniq = append(uniq, id)
		}
	}
	sort.Slice(uniq, func(i, j int) bool { return uniq[i] < uniq[j] })

	held := make([]*sync.Mutex, 0, len(uniq))
	for _, id := range uniq {
		m := l.forTable(id)
		m.Lock()
		held = append(held, m)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
