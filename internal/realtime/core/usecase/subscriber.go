package usecase

import (
	"context"
	"errors"
	"sync"

	idDomain "chato-dashboard/internal/identity/core/domain"
	"chato-dashboard/internal/platform/logger"
	"chato-dashboard/internal/realtime/core/domain"
	"chato-dashboard/internal/realtime/core/ports"

	"github.com/sirupsen/logrus"
)

var ErrUnauthenticated = errors.New("realtime subscription requires an identity")

// IdentityGate exposes the identity currently held by the bootstrapper.
type IdentityGate interface {
	Current() *idDomain.Identity
}

// Subscriber turns raw store pushes into ordered child snapshots. Errors are
// never handed to the consumer: it receives an empty snapshot instead.
type Subscriber struct {
	store ports.StorePort
	gate  IdentityGate
	log   *logrus.Entry
}

func NewSubscriber(store ports.StorePort, gate IdentityGate, log *logrus.Entry) *Subscriber {
	return &Subscriber{store: store, gate: gate, log: log}
}

// Subscribe opens a listener at path. It fails fast with ErrUnauthenticated
// when no identity is held; any later failure is logged and converted into
// an empty snapshot.
func (s *Subscriber) Subscribe(ctx context.Context, path domain.Path, onSnapshot func([]domain.Child)) (ports.Unsubscribe, error) {
	if s.gate == nil || s.gate.Current() == nil {
		return nil, ErrUnauthenticated
	}

	sub := &subscription{
		onSnapshot: onSnapshot,
		log:        logger.FromContext(ctx, s.log).WithField("path", path.String()),
	}

	stop, err := s.store.Listen(ctx, path, sub.value, sub.fail)
	if err != nil {
		sub.fail(err)
		return sub.unsubscribe, nil
	}

	sub.mu.Lock()
	sub.stop = stop
	closed := sub.closed
	sub.mu.Unlock()
	if closed {
		stop()
	}
	return sub.unsubscribe, nil
}

type subscription struct {
	onSnapshot func([]domain.Child)
	log        *logrus.Entry

	// mu is held for every delivery and by teardown, so teardown waits
	// for an in-progress callback and later deliveries see closed.
	mu     sync.Mutex
	closed bool
	stop   func()
	once   sync.Once
}

func (s *subscription) value(raw []byte) {
	children, err := domain.Flatten(raw)
	if err != nil {
		s.log.WithError(err).Warn("realtime subtree is not an object, delivering empty snapshot")
		children = []domain.Child{}
	}
	s.deliver(children)
}

func (s *subscription) fail(err error) {
	s.log.WithError(err).Error("realtime subscription failed")
	s.deliver([]domain.Child{})
}

func (s *subscription) deliver(children []domain.Child) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.WithField("panic", r).Error("realtime snapshot callback panicked")
		}
	}()
	s.onSnapshot(children)
}

func (s *subscription) unsubscribe() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		stop := s.stop
		s.mu.Unlock()
		if stop != nil {
			stop()
		}
	})
}
