package ports

import (
	"context"

	"chato-dashboard/internal/apps/core/domain"
)

// AppsAPIPort is the backend's application CRUD.
type AppsAPIPort interface {
	List(ctx context.Context, token string) ([]domain.Application, error)
	Create(ctx context.Context, token, name string) (domain.Application, error)
	Delete(ctx context.Context, token, apiKey string) error
	UpdateSettings(ctx context.Context, token, apiKey string, theme *domain.Theme, prechat *domain.Prechat) error
	// Config reads the widget configuration with the app's own key.
	Config(ctx context.Context, apiKey string) (domain.Theme, domain.Prechat, error)
}
