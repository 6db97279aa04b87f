package usecase

import (
	"sync"

	"chato-dashboard/internal/conversations/core/domain"
)

// SnapshotBoard keeps the latest snapshot per application and fans it out
// to watchers.
type SnapshotBoard struct {
	mu       sync.RWMutex
	latest   map[string]domain.Snapshot
	watchers map[string]map[int]func(domain.Snapshot)
	nextID   int
}

func NewSnapshotBoard() *SnapshotBoard {
	return &SnapshotBoard{
		latest:   make(map[string]domain.Snapshot),
		watchers: make(map[string]map[int]func(domain.Snapshot)),
	}
}

// Deliver records snap and notifies the watchers of its application.
func (b *SnapshotBoard) Deliver(snap domain.Snapshot) {
	b.mu.Lock()
	b.latest[snap.APIKey] = snap
	fns := make([]func(domain.Snapshot), 0, len(b.watchers[snap.APIKey]))
	for _, fn := range b.watchers[snap.APIKey] {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (b *SnapshotBoard) Get(apiKey string) (domain.Snapshot, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	snap, ok := b.latest[apiKey]
	return snap, ok
}

// Retain forgets snapshots of applications that are no longer tracked.
func (b *SnapshotBoard) Retain(apiKeys []string) {
	keep := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		keep[k] = struct{}{}
	}
	b.mu.Lock()
	for k := range b.latest {
		if _, ok := keep[k]; !ok {
			delete(b.latest, k)
		}
	}
	b.mu.Unlock()
}

// Watch calls fn with the current snapshot, if any, and with every later one.
func (b *SnapshotBoard) Watch(apiKey string, fn func(domain.Snapshot)) (cancel func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	if b.watchers[apiKey] == nil {
		b.watchers[apiKey] = make(map[int]func(domain.Snapshot))
	}
	b.watchers[apiKey][id] = fn
	snap, ok := b.latest[apiKey]
	b.mu.Unlock()

	if ok {
		fn(snap)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.watchers[apiKey], id)
			if len(b.watchers[apiKey]) == 0 {
				delete(b.watchers, apiKey)
			}
			b.mu.Unlock()
		})
	}
}
