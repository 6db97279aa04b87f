package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"chato-dashboard/internal/apps/core/domain"
	convDomain "chato-dashboard/internal/conversations/core/domain"
	idDomain "chato-dashboard/internal/identity/core/domain"
	rtPorts "chato-dashboard/internal/realtime/core/ports"

	"github.com/sirupsen/logrus"
)

var (
	ErrManagerClosed       = errors.New("subscription manager closed")
	ErrIdentityUnavailable = errors.New("realtime identity unavailable")
)

type AggregatorPort interface {
	Open(ctx context.Context, apiKey string, onSnapshot func(convDomain.Snapshot)) (rtPorts.Unsubscribe, error)
}

type IdentityPort interface {
	EnsureReady(ctx context.Context) (*idDomain.Identity, error)
}

// SnapshotSink receives every emitted snapshot.
type SnapshotSink interface {
	Deliver(snap convDomain.Snapshot)
}

// Retainer is an optional SnapshotSink extension told which keys remain
// tracked after a membership change.
type Retainer interface {
	Retain(apiKeys []string)
}

// SubscriptionManager keeps one aggregator per tracked API key and rebuilds
// the set only when the membership changes.
type SubscriptionManager struct {
	aggregators AggregatorPort
	identity    IdentityPort
	sinks       []SnapshotSink
	log         *logrus.Entry

	mu         sync.Mutex
	membership string
	synced     bool
	open       map[string]rtPorts.Unsubscribe
	closed     bool
}

func NewSubscriptionManager(aggregators AggregatorPort, identity IdentityPort, log *logrus.Entry, sinks ...SnapshotSink) *SubscriptionManager {
	return &SubscriptionManager{
		aggregators: aggregators,
		identity:    identity,
		sinks:       sinks,
		log:         log,
		open:        make(map[string]rtPorts.Unsubscribe),
	}
}

// Sync makes the open aggregators match keys. An unchanged membership is a
// no-op. A failed identity bootstrap leaves nothing open and is returned;
// the next Sync retries.
func (m *SubscriptionManager) Sync(ctx context.Context, keys domain.KeySet) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrManagerClosed
	}
	membership := keys.MembershipKey()
	if m.synced && membership == m.membership {
		return nil
	}

	m.closeAllLocked()
	m.membership = membership
	m.synced = true
	m.retain(keys.Keys())

	if keys.Len() == 0 {
		return nil
	}

	if _, err := m.identity.EnsureReady(ctx); err != nil {
		m.synced = false
		m.log.WithError(err).Error("identity bootstrap failed, realtime counters disabled")
		return fmt.Errorf("%w: %w", ErrIdentityUnavailable, err)
	}

	// Aggregators outlive the request that triggered the sync.
	openCtx := context.WithoutCancel(ctx)
	for _, key := range keys.Keys() {
		unsub, err := m.aggregators.Open(openCtx, key, m.route)
		if err != nil {
			m.log.WithError(err).WithField("api_key", key).Error("open aggregator failed")
			continue
		}
		m.open[key] = unsub
	}
	m.log.WithField("apps", keys.Len()).Debug("realtime subscriptions rebuilt")
	return nil
}

// Tracked lists the keys with an open aggregator.
func (m *SubscriptionManager) Tracked() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.NewKeySet(mapKeys(m.open)...).Keys()
}

// Close tears down every aggregator. Later Syncs fail.
func (m *SubscriptionManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeAllLocked()
	m.closed = true
}

func (m *SubscriptionManager) route(snap convDomain.Snapshot) {
	for _, sink := range m.sinks {
		sink.Deliver(snap)
	}
}

func (m *SubscriptionManager) retain(keys []string) {
	for _, sink := range m.sinks {
		if r, ok := sink.(Retainer); ok {
			r.Retain(keys)
		}
	}
}

func (m *SubscriptionManager) closeAllLocked() {
	for key, unsub := range m.open {
		unsub()
		delete(m.open, key)
	}
}

func mapKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
