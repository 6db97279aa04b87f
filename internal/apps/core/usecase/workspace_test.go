package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"chato-dashboard/internal/apps/core/domain"
	"chato-dashboard/internal/apps/core/usecase"
	convDomain "chato-dashboard/internal/conversations/core/domain"
	"chato-dashboard/internal/platform/logger"
	"chato-dashboard/internal/platform/restclient"
)

// ownersAPI lists a fixed set of apps per token and rejects unknown tokens.
func ownersAPI(apps map[string][]string) *fakeAppsAPI {
	return &fakeAppsAPI{ListFn: func(ctx context.Context, token string) ([]domain.Application, error) {
		keys, ok := apps[token]
		if !ok {
			return nil, &restclient.APIError{Status: 401, Message: "invalid token"}
		}
		out := make([]domain.Application, 0, len(keys))
		for _, k := range keys {
			out = append(out, domain.Application{APIKey: k, Name: k})
		}
		return out, nil
	}}
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newRegistry(api *fakeAppsAPI, aggs *fakeAggregators, clock *fakeClock) *usecase.Registry {
	return usecase.NewRegistry(api, aggs, &fakeIdentity{}, clock.Now, logger.Discard())
}

func keysOf(v usecase.StateView) []string {
	out := make([]string, 0, len(v.Items))
	for _, a := range v.Items {
		out = append(out, a.APIKey)
	}
	return out
}

// ------------------------------------------------------------
// ISOLATION
// ------------------------------------------------------------
func TestRegistry_OwnersSeeOnlyTheirApps(t *testing.T) {
	aggs := newFakeAggregators()
	reg := newRegistry(ownersAPI(map[string][]string{
		"alice": {"alice-secret-key"},
		"bob":   {"bob-key"},
	}), aggs, &fakeClock{t: time.Unix(0, 0)})
	ctx := context.Background()

	alice, err := reg.For("alice").Fetch(ctx, "alice")
	if err != nil {
		t.Fatalf("alice fetch: %v", err)
	}
	bob, err := reg.For("bob").Fetch(ctx, "bob")
	if err != nil {
		t.Fatalf("bob fetch: %v", err)
	}

	if got := keysOf(alice); len(got) != 1 || got[0] != "alice-secret-key" {
		t.Fatalf("alice sees %v", got)
	}
	if got := keysOf(bob); len(got) != 1 || got[0] != "bob-key" {
		t.Fatalf("bob sees %v", got)
	}
	if got := keysOf(reg.For("alice").View()); len(got) != 1 || got[0] != "alice-secret-key" {
		t.Fatalf("bob's fetch changed alice's list: %v", got)
	}
	if aggs.closes["alice-secret-key"] != 0 {
		t.Fatalf("bob's fetch tore down alice's aggregator")
	}

	stranger, err := reg.For("anything").Fetch(ctx, "anything")
	if err == nil {
		t.Fatalf("expected unknown token to fail")
	}
	if len(stranger.Items) != 0 {
		t.Fatalf("unknown token sees %v", keysOf(stranger))
	}
}

func TestRegistry_SnapshotsStayInTheirWorkspace(t *testing.T) {
	aggs := newFakeAggregators()
	reg := newRegistry(ownersAPI(map[string][]string{
		"alice": {"a1"},
		"bob":   {"b1"},
	}), aggs, &fakeClock{t: time.Unix(0, 0)})
	ctx := context.Background()

	if _, err := reg.For("alice").Fetch(ctx, "alice"); err != nil {
		t.Fatalf("alice fetch: %v", err)
	}
	if _, err := reg.For("bob").Fetch(ctx, "bob"); err != nil {
		t.Fatalf("bob fetch: %v", err)
	}

	aggs.emit["a1"](convDomain.Snapshot{APIKey: "a1", Unread: 4})

	if snap, ok := reg.For("alice").Snapshot("a1"); !ok || snap.Unread != 4 {
		t.Fatalf("expected alice to see her snapshot, got %+v %v", snap, ok)
	}
	if _, ok := reg.For("bob").Snapshot("a1"); ok {
		t.Fatalf("bob must not read alice's snapshot")
	}
	if alice := reg.For("alice").View(); alice.Items[0].Unread != 4 {
		t.Fatalf("expected alice's counters updated, got %+v", alice.Items[0])
	}
	if bob := reg.For("bob").View(); bob.Items[0].Unread != 0 {
		t.Fatalf("bob's counters changed: %+v", bob.Items[0])
	}
}

// ------------------------------------------------------------
// AUTHORIZE / KEYS
// ------------------------------------------------------------
func TestWorkspace_Authorize(t *testing.T) {
	api := ownersAPI(map[string][]string{"alice": {"a1"}, "bob": {"b1"}})
	reg := newRegistry(api, newFakeAggregators(), &fakeClock{t: time.Unix(0, 0)})
	ctx := context.Background()

	if err := reg.For("alice").Authorize(ctx, "alice", "a1"); err != nil {
		t.Fatalf("expected owned key allowed, got %v", err)
	}
	if err := reg.For("alice").Authorize(ctx, "alice", "b1"); !errors.Is(err, usecase.ErrAppNotFound) {
		t.Fatalf("expected ErrAppNotFound for another owner's key, got %v", err)
	}
	if err := reg.For("nobody").Authorize(ctx, "nobody", "a1"); restclient.StatusOf(err) != 401 {
		t.Fatalf("expected the backend rejection, got %v", err)
	}
}

func TestWorkspace_AuthorizeReloadsForNewApps(t *testing.T) {
	owned := map[string][]string{"alice": {"a1"}}
	reg := newRegistry(ownersAPI(owned), newFakeAggregators(), &fakeClock{t: time.Unix(0, 0)})
	ctx := context.Background()

	if _, err := reg.For("alice").Fetch(ctx, "alice"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	owned["alice"] = []string{"a1", "a2"}

	if err := reg.For("alice").Authorize(ctx, "alice", "a2"); err != nil {
		t.Fatalf("expected app created elsewhere to be found, got %v", err)
	}
}

func TestWorkspace_KeysLoadOnFirstUse(t *testing.T) {
	api := ownersAPI(map[string][]string{"alice": {"a2", "a1"}})
	reg := newRegistry(api, newFakeAggregators(), &fakeClock{t: time.Unix(0, 0)})

	keys, err := reg.For("alice").Keys(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 2 || keys[0] != "a1" || keys[1] != "a2" {
		t.Fatalf("unexpected keys: %v", keys)
	}
	if !api.called {
		t.Fatalf("expected the list loaded")
	}
}

// ------------------------------------------------------------
// RELEASE / SWEEP
// ------------------------------------------------------------
func TestRegistry_ReleaseClosesAggregators(t *testing.T) {
	aggs := newFakeAggregators()
	reg := newRegistry(ownersAPI(map[string][]string{"alice": {"a1"}}), aggs, &fakeClock{t: time.Unix(0, 0)})

	if _, err := reg.For("alice").Fetch(context.Background(), "alice"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	reg.Release("alice")

	if aggs.closes["a1"] != 1 {
		t.Fatalf("expected a1 closed once, got %d", aggs.closes["a1"])
	}
	if got := reg.For("alice").View(); got.Status != usecase.StatusIdle {
		t.Fatalf("expected a fresh workspace after release, got %s", got.Status)
	}
}

func TestRegistry_SweepSkipsWatchedWorkspaces(t *testing.T) {
	aggs := newFakeAggregators()
	clock := &fakeClock{t: time.Unix(0, 0)}
	reg := newRegistry(ownersAPI(map[string][]string{"alice": {"a1"}, "bob": {"b1"}}), aggs, clock)
	ctx := context.Background()

	if _, err := reg.For("alice").Fetch(ctx, "alice"); err != nil {
		t.Fatalf("alice fetch: %v", err)
	}
	if _, err := reg.For("bob").Fetch(ctx, "bob"); err != nil {
		t.Fatalf("bob fetch: %v", err)
	}
	stop := reg.For("bob").Watch(func(usecase.StateView) {})

	clock.t = clock.t.Add(time.Hour)
	if n := reg.Sweep(30 * time.Minute); n != 1 {
		t.Fatalf("expected only alice swept, got %d", n)
	}
	if aggs.closes["a1"] != 1 || aggs.closes["b1"] != 0 {
		t.Fatalf("unexpected closes: %v", aggs.closes)
	}
	if reg.Tracked() != 1 {
		t.Fatalf("expected bob still tracked, got %d", reg.Tracked())
	}

	stop()
	if n := reg.Sweep(30 * time.Minute); n != 1 {
		t.Fatalf("expected bob swept once unwatched, got %d", n)
	}
}

func TestRegistry_CloseReleasesEverything(t *testing.T) {
	aggs := newFakeAggregators()
	reg := newRegistry(ownersAPI(map[string][]string{"alice": {"a1"}}), aggs, &fakeClock{t: time.Unix(0, 0)})

	if _, err := reg.For("alice").Fetch(context.Background(), "alice"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	reg.Close()

	if aggs.closes["a1"] != 1 {
		t.Fatalf("expected a1 closed, got %d", aggs.closes["a1"])
	}
	if reg.Tracked() != 0 {
		t.Fatalf("expected nothing tracked after close")
	}
}
