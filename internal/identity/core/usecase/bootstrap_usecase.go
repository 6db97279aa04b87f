package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"chato-dashboard/internal/identity/core/domain"
	"chato-dashboard/internal/identity/core/ports"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

var (
	ErrBootstrapFailed = errors.New("realtime identity bootstrap failed")
	ErrNoIdentity      = errors.New("sign-in returned no identity")
)

const flightKey = "anonymous"

// Bootstrapper owns the realtime identity. It is either holding a valid
// identity, running exactly one sign-in that all callers share, or idle.
type Bootstrapper struct {
	signIn ports.AnonymousSignInPort
	log    *logrus.Entry
	now    func() time.Time

	mu      sync.Mutex
	current *domain.Identity
	flight  singleflight.Group
}

func NewBootstrapper(signIn ports.AnonymousSignInPort, log *logrus.Entry) *Bootstrapper {
	return &Bootstrapper{
		signIn: signIn,
		log:    log,
		now:    time.Now,
	}
}

// Current returns the held identity, or nil when none is held or it expired.
func (b *Bootstrapper) Current() *domain.Identity {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.current.Valid(b.now()) {
		return nil
	}
	return b.current
}

// EnsureReady resolves immediately when an identity is held. Otherwise it
// joins the in-flight sign-in, starting one if needed. Cancelling ctx stops
// this caller's wait only; the shared attempt keeps running for the others.
func (b *Bootstrapper) EnsureReady(ctx context.Context) (*domain.Identity, error) {
	if id := b.Current(); id != nil {
		return id, nil
	}

	ch := b.flight.DoChan(flightKey, func() (any, error) {
		id, err := b.signIn.SignInAnonymously(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		if id == nil {
			return nil, ErrNoIdentity
		}
		b.mu.Lock()
		b.current = id
		b.mu.Unlock()
		return id, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			b.log.WithError(res.Err).Error("anonymous sign-in failed")
			return nil, fmt.Errorf("%w: %w", ErrBootstrapFailed, res.Err)
		}
		return res.Val.(*domain.Identity), nil
	}
}

// SignOut drops the held identity; the next EnsureReady signs in again.
func (b *Bootstrapper) SignOut() {
	b.mu.Lock()
	b.current = nil
	b.mu.Unlock()
}
