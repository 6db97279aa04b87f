package ports

import (
	"context"
	"time"

	rtDomain "chato-dashboard/internal/realtime/core/domain"
	rtPorts "chato-dashboard/internal/realtime/core/ports"
)

// SubtreeSubscriber is satisfied by the realtime Subscriber.
type SubtreeSubscriber interface {
	Subscribe(ctx context.Context, path rtDomain.Path, onSnapshot func([]rtDomain.Child)) (rtPorts.Unsubscribe, error)
}

// Clock abstracts time for the debounce and optimistic-message expiry.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	Stop() bool
}

// DashboardPort is the owner-side conversation API of the backend.
type DashboardPort interface {
	SendMessage(ctx context.Context, token, apiKey, sessionID, text string) error
	MarkRead(ctx context.Context, token, apiKey, sessionID string) error
}
