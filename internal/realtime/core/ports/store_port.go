package ports

import (
	"context"

	"chato-dashboard/internal/realtime/core/domain"
)

// StorePort is the push-subscription primitive of the realtime store.
//
// Listen delivers the whole current subtree at path once the listener is
// attached and again after every write that can change it. onError reports
// a terminal listener failure (e.g. permission denied); no values follow it.
// stop detaches the listener and returns once no further callbacks will run.
type StorePort interface {
	Listen(ctx context.Context, path domain.Path, onValue func(raw []byte), onError func(err error)) (stop func(), err error)
}

// WriterPort is used by tooling and tests to mutate the tree.
type WriterPort interface {
	Set(ctx context.Context, path domain.Path, value any) error
	Update(ctx context.Context, path domain.Path, fields map[string]any) error
	Remove(ctx context.Context, path domain.Path) error
}

// Unsubscribe is idempotent. Once it returns, the snapshot callback is not
// invoked again. It must not be called from inside that callback.
type Unsubscribe func()
