// Package memory is an in-process realtime tree used for development and tests.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"chato-dashboard/internal/realtime/core/domain"
	"chato-dashboard/internal/realtime/core/ports"
)

var ErrPermissionDenied = errors.New("permission denied")

type listener struct {
	path    domain.Path
	onValue func([]byte)
	onError func(error)
	active  atomic.Bool
}

type delivery struct {
	l   *listener
	raw []byte
}

// Store keeps the whole tree as decoded JSON. Listener callbacks run on the
// writing goroutine after the write is applied; they must not write back
// into the store.
type Store struct {
	// emitMu orders write+notify batches so every listener sees values in
	// write order.
	emitMu sync.Mutex

	mu        sync.Mutex
	root      map[string]any
	listeners map[int]*listener
	nextID    int
	denied    []domain.Path
}

var (
	_ ports.StorePort  = (*Store)(nil)
	_ ports.WriterPort = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{
		root:      map[string]any{},
		listeners: map[int]*listener{},
	}
}

// Deny makes future Listen calls at or below prefix fail with
// ErrPermissionDenied, emulating the store's access rules.
func (s *Store) Deny(prefix domain.Path) {
	s.mu.Lock()
	s.denied = append(s.denied, prefix)
	s.mu.Unlock()
}

func (s *Store) Listen(ctx context.Context, path domain.Path, onValue func([]byte), onError func(error)) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	for _, d := range s.denied {
		if path.IsWithin(d) {
			s.mu.Unlock()
			return nil, fmt.Errorf("listen %s: %w", path, ErrPermissionDenied)
		}
	}
	l := &listener{path: path, onValue: onValue, onError: onError}
	l.active.Store(true)
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	raw, err := s.encodeLocked(path)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	onValue(raw)

	stop := func() {
		l.active.Store(false)
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
	return stop, nil
}

// FailListeners terminates every listener at or below prefix with err.
func (s *Store) FailListeners(prefix domain.Path, err error) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	var failed []*listener
	for id, l := range s.listeners {
		if l.path.IsWithin(prefix) {
			failed = append(failed, l)
			delete(s.listeners, id)
		}
	}
	s.mu.Unlock()

	for _, l := range failed {
		if l.active.CompareAndSwap(true, false) && l.onError != nil {
			l.onError(err)
		}
	}
}

// Set replaces the value at path. A nil value removes it.
func (s *Store) Set(ctx context.Context, path domain.Path, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if value == nil {
		return s.Remove(ctx, path)
	}
	generic, err := toGeneric(value)
	if err != nil {
		return err
	}
	return s.write(path, func() {
		s.setLocked(path, generic)
	})
}

// Update merges fields into the object at path in one write.
func (s *Store) Update(ctx context.Context, path domain.Path, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	generic := make(map[string]any, len(fields))
	for k, v := range fields {
		if _, err := path.Child(k); err != nil {
			return err
		}
		g, err := toGeneric(v)
		if err != nil {
			return err
		}
		generic[k] = g
	}
	return s.write(path, func() {
		for k, v := range generic {
			child, _ := path.Child(k)
			if v == nil {
				s.removeLocked(child)
				continue
			}
			s.setLocked(child, v)
		}
	})
}

func (s *Store) Remove(ctx context.Context, path domain.Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.write(path, func() {
		s.removeLocked(path)
	})
}

// Get returns the JSON value at path ("null" when absent).
func (s *Store) Get(path domain.Path) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.encodeLocked(path)
}

func (s *Store) write(path domain.Path, apply func()) error {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	apply()
	var batch []delivery
	for _, l := range s.listeners {
		if !l.path.Related(path) {
			continue
		}
		raw, err := s.encodeLocked(l.path)
		if err != nil {
			s.mu.Unlock()
			return err
		}
		batch = append(batch, delivery{l: l, raw: raw})
	}
	s.mu.Unlock()

	for _, d := range batch {
		if d.l.active.Load() {
			d.l.onValue(d.raw)
		}
	}
	return nil
}

func (s *Store) setLocked(path domain.Path, value any) {
	segs := path.Segments()
	node := s.root
	for _, seg := range segs[:len(segs)-1] {
		next, ok := node[seg].(map[string]any)
		if !ok {
			next = map[string]any{}
			node[seg] = next
		}
		node = next
	}
	node[segs[len(segs)-1]] = value
}

func (s *Store) removeLocked(path domain.Path) {
	segs := path.Segments()
	trail := []map[string]any{s.root}
	node := s.root
	for _, seg := range segs[:len(segs)-1] {
		next, ok := node[seg].(map[string]any)
		if !ok {
			return
		}
		trail = append(trail, next)
		node = next
	}
	delete(node, segs[len(segs)-1])

	// empty parents disappear, like in the hosted store
	for i := len(trail) - 1; i > 0; i-- {
		if len(trail[i]) > 0 {
			break
		}
		delete(trail[i-1], segs[i-1])
	}
}

func (s *Store) encodeLocked(path domain.Path) ([]byte, error) {
	var node any = s.root
	for _, seg := range path.Segments() {
		m, ok := node.(map[string]any)
		if !ok {
			node = nil
			break
		}
		node = m[seg]
	}
	raw, err := json.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", path, err)
	}
	return raw, nil
}

func toGeneric(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return out, nil
}
