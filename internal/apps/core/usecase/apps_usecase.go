package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chato-dashboard/internal/apps/core/domain"
	"chato-dashboard/internal/apps/core/ports"
	"chato-dashboard/internal/platform/restclient"

	"github.com/sirupsen/logrus"
)

const defaultFetchError = "Failed to load apps (backend cold start)"

var (
	ErrFetchFailed     = errors.New("load apps failed")
	ErrInvalidName     = errors.New("app name is required")
	ErrInvalidAPIKey   = errors.New("api key is required")
	ErrNothingToUpdate = errors.New("theme or prechat is required")
	ErrAppNotFound     = errors.New("app not found")
)

// Syncer is the SubscriptionManager as seen by AppsUseCase.
type Syncer interface {
	Sync(ctx context.Context, keys domain.KeySet) error
}

type AppsUseCase struct {
	api     ports.AppsAPIPort
	state   *State
	manager Syncer
	log     *logrus.Entry
}

func NewAppsUseCase(api ports.AppsAPIPort, state *State, manager Syncer, log *logrus.Entry) *AppsUseCase {
	return &AppsUseCase{api: api, state: state, manager: manager, log: log}
}

// Fetch reloads the list. On failure the state turns failed with a
// retryable message and the previous items are kept.
func (uc *AppsUseCase) Fetch(ctx context.Context, token string) (StateView, error) {
	uc.state.BeginLoad()

	apps, err := uc.api.List(ctx, token)
	if err != nil {
		uc.state.LoadFailed(fetchMessage(err))
		return uc.state.View(), fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	uc.state.LoadSucceeded(apps)
	uc.resync(ctx)
	return uc.state.View(), nil
}

// Retry is the explicit retry action of the failed state.
func (uc *AppsUseCase) Retry(ctx context.Context, token string) (StateView, error) {
	return uc.Fetch(ctx, token)
}

func (uc *AppsUseCase) Create(ctx context.Context, token, name string) (domain.Application, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Application{}, ErrInvalidName
	}

	app, err := uc.api.Create(ctx, token, name)
	if err != nil {
		return domain.Application{}, err
	}
	if app.Name == "" {
		app.Name = name
	}

	uc.state.Prepend(app)
	uc.resync(ctx)
	created, _ := uc.state.Find(app.APIKey)
	return created, nil
}

func (uc *AppsUseCase) Delete(ctx context.Context, token, apiKey string) error {
	if strings.TrimSpace(apiKey) == "" {
		return ErrInvalidAPIKey
	}
	if err := uc.api.Delete(ctx, token, apiKey); err != nil {
		return err
	}
	uc.state.Remove(apiKey)
	uc.resync(ctx)
	return nil
}

func (uc *AppsUseCase) UpdateSettings(ctx context.Context, token, apiKey string, theme *domain.Theme, prechat *domain.Prechat) (domain.Application, error) {
	if strings.TrimSpace(apiKey) == "" {
		return domain.Application{}, ErrInvalidAPIKey
	}
	if theme == nil && prechat == nil {
		return domain.Application{}, ErrNothingToUpdate
	}
	if err := uc.api.UpdateSettings(ctx, token, apiKey, theme, prechat); err != nil {
		return domain.Application{}, err
	}

	uc.state.MergeSettings(apiKey, theme, prechat)
	app, ok := uc.state.Find(apiKey)
	if !ok {
		return domain.Application{}, ErrAppNotFound
	}
	return app, nil
}

// Config returns the widget settings the SDK sees for apiKey.
func (uc *AppsUseCase) Config(ctx context.Context, apiKey string) (domain.Theme, domain.Prechat, error) {
	if strings.TrimSpace(apiKey) == "" {
		return domain.Theme{}, domain.Prechat{}, ErrInvalidAPIKey
	}
	return uc.api.Config(ctx, apiKey)
}

func (uc *AppsUseCase) View() StateView {
	return uc.state.View()
}

func (uc *AppsUseCase) Watch(fn func(StateView)) func() {
	return uc.state.Watch(fn)
}

// resync never fails the calling operation: realtime counters degrade to
// zero while the app list itself is fine.
func (uc *AppsUseCase) resync(ctx context.Context) {
	if err := uc.manager.Sync(ctx, uc.state.Keys()); err != nil {
		uc.log.WithError(err).Warn("realtime resync failed")
	}
}

func fetchMessage(err error) string {
	var apiErr *restclient.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" && apiErr.Status != 0 {
		return apiErr.Message
	}
	return defaultFetchError
}
