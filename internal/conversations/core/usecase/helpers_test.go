package usecase_test

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"chato-dashboard/internal/conversations/core/ports"
	idDomain "chato-dashboard/internal/identity/core/domain"
	"chato-dashboard/internal/platform/logger"
	"chato-dashboard/internal/realtime/adapters/memory"
	rtDomain "chato-dashboard/internal/realtime/core/domain"
	rtUsecase "chato-dashboard/internal/realtime/core/usecase"
)

// fakeClock fires timers synchronously from Advance.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock(now time.Time) *fakeClock { return &fakeClock{now: now} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) ports.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.f()
	}
}

func (c *fakeClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type signedInGate struct{}

func (signedInGate) Current() *idDomain.Identity {
	return &idDomain.Identity{UID: "anon", Anonymous: true}
}

// harness wires the real subscriber over the in-memory store.
type harness struct {
	store *memory.Store
	subs  *rtUsecase.Subscriber
}

func newHarness() *harness {
	store := memory.NewStore()
	return &harness{
		store: store,
		subs:  rtUsecase.NewSubscriber(store, signedInGate{}, logger.Discard()),
	}
}

func (h *harness) set(t *testing.T, value any, segs ...string) {
	t.Helper()
	p, err := rtDomain.Join(segs...)
	if err != nil {
		t.Fatalf("bad path: %v", err)
	}
	if err := h.store.Set(context.Background(), p, value); err != nil {
		t.Fatalf("set %s: %v", p, err)
	}
}
