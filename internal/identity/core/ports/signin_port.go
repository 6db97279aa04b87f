package ports

import (
	"context"

	"chato-dashboard/internal/identity/core/domain"
)

type AnonymousSignInPort interface {
	SignInAnonymously(ctx context.Context) (*domain.Identity, error)
}
