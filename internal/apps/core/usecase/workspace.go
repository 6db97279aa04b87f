package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"chato-dashboard/internal/apps/core/ports"
	convDomain "chato-dashboard/internal/conversations/core/domain"
	convUsecase "chato-dashboard/internal/conversations/core/usecase"

	"github.com/sirupsen/logrus"
)

// Workspace is everything one owner sees: the application list, its live
// counters and the latest snapshot of each application. Owners never share
// a Workspace.
type Workspace struct {
	*AppsUseCase

	state   *State
	board   *convUsecase.SnapshotBoard
	manager *SubscriptionManager

	mu       sync.Mutex
	lastUsed time.Time
	holds    int
}

// Authorize succeeds when apiKey is one of the owner's applications. An
// unknown key triggers one reload so apps created elsewhere are found.
func (w *Workspace) Authorize(ctx context.Context, token, apiKey string) error {
	if _, ok := w.state.Find(apiKey); ok {
		return nil
	}
	if _, err := w.Fetch(ctx, token); err != nil {
		return err
	}
	if _, ok := w.state.Find(apiKey); !ok {
		return fmt.Errorf("%w: %s", ErrAppNotFound, apiKey)
	}
	return nil
}

// Keys lists the owner's applications, loading them on first use.
func (w *Workspace) Keys(ctx context.Context, token string) ([]string, error) {
	if w.state.View().Status == StatusIdle {
		if _, err := w.Fetch(ctx, token); err != nil {
			return nil, err
		}
	}
	return w.state.Keys().Keys(), nil
}

// Snapshot returns the latest aggregate of an owned application.
func (w *Workspace) Snapshot(apiKey string) (convDomain.Snapshot, bool) {
	if _, ok := w.state.Find(apiKey); !ok {
		return convDomain.Snapshot{}, false
	}
	return w.board.Get(apiKey)
}

// WatchSnapshots follows the aggregates of apiKey. The workspace is not
// evicted while watched.
func (w *Workspace) WatchSnapshots(apiKey string, fn func(convDomain.Snapshot)) (cancel func()) {
	return w.hold(w.board.Watch(apiKey, fn))
}

// Watch follows the application list. The workspace is not evicted while
// watched.
func (w *Workspace) Watch(fn func(StateView)) (cancel func()) {
	return w.hold(w.state.Watch(fn))
}

// Tracked lists the keys with an open aggregator.
func (w *Workspace) Tracked() []string {
	return w.manager.Tracked()
}

func (w *Workspace) hold(cancel func()) func() {
	w.mu.Lock()
	w.holds++
	w.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			w.mu.Lock()
			w.holds--
			w.mu.Unlock()
		})
	}
}

func (w *Workspace) touch(now time.Time) {
	w.mu.Lock()
	w.lastUsed = now
	w.mu.Unlock()
}

func (w *Workspace) idleSince(now time.Time) (time.Duration, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return now.Sub(w.lastUsed), w.holds > 0
}

// Registry hands out one Workspace per bearer token.
type Registry struct {
	api         ports.AppsAPIPort
	aggregators AggregatorPort
	identity    IdentityPort
	shared      []SnapshotSink
	now         func() time.Time
	log         *logrus.Entry

	mu     sync.Mutex
	spaces map[string]*Workspace
	closed bool
}

// NewRegistry builds workspaces on demand. shared sinks see the snapshots
// of every workspace.
func NewRegistry(api ports.AppsAPIPort, aggregators AggregatorPort, identity IdentityPort, now func() time.Time, log *logrus.Entry, shared ...SnapshotSink) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{
		api:         api,
		aggregators: aggregators,
		identity:    identity,
		shared:      shared,
		now:         now,
		log:         log,
		spaces:      make(map[string]*Workspace),
	}
}

// For returns the workspace of token, creating it on first use. After
// Close it returns a workspace whose syncs fail.
func (r *Registry) For(token string) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.spaces[token]
	if !ok {
		w = r.newWorkspace()
		if r.closed {
			w.manager.Close()
		} else {
			r.spaces[token] = w
		}
	}
	w.touch(r.now())
	return w
}

func (r *Registry) newWorkspace() *Workspace {
	state := NewState(r.log)
	board := convUsecase.NewSnapshotBoard()
	sinks := append([]SnapshotSink{state, board}, r.shared...)
	manager := NewSubscriptionManager(r.aggregators, r.identity, r.log, sinks...)
	return &Workspace{
		AppsUseCase: NewAppsUseCase(r.api, state, manager, r.log),
		state:       state,
		board:       board,
		manager:     manager,
	}
}

// Release drops the workspace of token and its aggregators.
func (r *Registry) Release(token string) {
	r.mu.Lock()
	w, ok := r.spaces[token]
	delete(r.spaces, token)
	r.mu.Unlock()

	if ok {
		w.manager.Close()
	}
}

// Sweep releases unwatched workspaces idle for at least maxIdle and returns
// how many it dropped.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	now := r.now()

	r.mu.Lock()
	var stale []*Workspace
	for token, w := range r.spaces {
		idle, held := w.idleSince(now)
		if held || idle < maxIdle {
			continue
		}
		stale = append(stale, w)
		delete(r.spaces, token)
	}
	r.mu.Unlock()

	for _, w := range stale {
		w.manager.Close()
	}
	if len(stale) > 0 {
		r.log.WithField("released", len(stale)).Debug("idle workspaces swept")
	}
	return len(stale)
}

// Tracked counts the open aggregators over all workspaces.
func (r *Registry) Tracked() int {
	r.mu.Lock()
	spaces := make([]*Workspace, 0, len(r.spaces))
	for _, w := range r.spaces {
		spaces = append(spaces, w)
	}
	r.mu.Unlock()

	n := 0
	for _, w := range spaces {
		n += len(w.Tracked())
	}
	return n
}

// Close releases every workspace.
func (r *Registry) Close() {
	r.mu.Lock()
	spaces := r.spaces
	r.spaces = make(map[string]*Workspace)
	r.closed = true
	r.mu.Unlock()

	for _, w := range spaces {
		w.manager.Close()
	}
}
