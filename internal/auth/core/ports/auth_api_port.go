package ports

import (
	"context"

	"chato-dashboard/internal/auth/core/domain"
)

// AuthAPIPort exchanges credentials for a backend token.
type AuthAPIPort interface {
	Register(ctx context.Context, c domain.Credentials) (token string, err error)
	Login(ctx context.Context, c domain.Credentials) (token string, err error)
}
