// Package rest implements the apps port against the Chato backend.
package rest

import (
	"context"
	"net/http"
	"net/url"

	"chato-dashboard/internal/apps/core/domain"
	"chato-dashboard/internal/platform/restclient"
)

// Doer is the subset of restclient.Client the adapter needs.
type Doer interface {
	Do(ctx context.Context, req restclient.Request, out any) error
}

type AppsClient struct {
	api Doer
}

func NewAppsClient(api Doer) *AppsClient {
	return &AppsClient{api: api}
}

type appRecord struct {
	APIKey  string          `json:"apiKey"`
	Name    string          `json:"name"`
	Theme   *domain.Theme   `json:"theme,omitempty"`
	Prechat *domain.Prechat `json:"prechat,omitempty"`
}

func (r appRecord) toDomain() domain.Application {
	app := domain.Application{APIKey: r.APIKey, Name: r.Name}
	if r.Theme != nil {
		app.Theme = *r.Theme
	}
	if r.Prechat != nil {
		app.Prechat = *r.Prechat
	}
	return app
}

func (c *AppsClient) List(ctx context.Context, token string) ([]domain.Application, error) {
	var out struct {
		Apps []appRecord `json:"apps"`
	}
	if err := c.api.Do(ctx, restclient.Request{Method: http.MethodGet, Path: "/apps", Token: token}, &out); err != nil {
		return nil, err
	}

	apps := make([]domain.Application, 0, len(out.Apps))
	for _, r := range out.Apps {
		if r.APIKey == "" {
			continue
		}
		apps = append(apps, r.toDomain())
	}
	return apps, nil
}

func (c *AppsClient) Create(ctx context.Context, token, name string) (domain.Application, error) {
	var out appRecord
	err := c.api.Do(ctx, restclient.Request{
		Method: http.MethodPost,
		Path:   "/apps",
		Token:  token,
		Body:   map[string]string{"name": name},
	}, &out)
	if err != nil {
		return domain.Application{}, err
	}
	if out.APIKey == "" {
		return domain.Application{}, &restclient.APIError{Status: http.StatusBadGateway, Message: "backend returned no apiKey"}
	}
	return out.toDomain(), nil
}

func (c *AppsClient) Delete(ctx context.Context, token, apiKey string) error {
	return c.api.Do(ctx, restclient.Request{
		Method: http.MethodDelete,
		Path:   "/apps/" + url.PathEscape(apiKey),
		Token:  token,
	}, nil)
}

func (c *AppsClient) UpdateSettings(ctx context.Context, token, apiKey string, theme *domain.Theme, prechat *domain.Prechat) error {
	body := struct {
		Prechat *domain.Prechat `json:"prechat,omitempty"`
		Theme   *domain.Theme   `json:"theme,omitempty"`
	}{Prechat: prechat, Theme: theme}

	return c.api.Do(ctx, restclient.Request{
		Method: http.MethodPatch,
		Path:   "/apps/" + url.PathEscape(apiKey) + "/settings",
		Token:  token,
		Body:   body,
	}, nil)
}

// Config reads /sdk/config with the app's key, the way the widget does.
// Some backends nest the payload under "config".
func (c *AppsClient) Config(ctx context.Context, apiKey string) (domain.Theme, domain.Prechat, error) {
	type settings struct {
		Theme   *domain.Theme   `json:"theme"`
		Prechat *domain.Prechat `json:"prechat"`
	}
	var out struct {
		settings
		Config *settings `json:"config"`
	}
	if err := c.api.Do(ctx, restclient.Request{Method: http.MethodGet, Path: "/sdk/config", APIKey: apiKey}, &out); err != nil {
		return domain.Theme{}, domain.Prechat{}, err
	}

	s := out.settings
	if s.Theme == nil && s.Prechat == nil && out.Config != nil {
		s = *out.Config
	}

	var theme domain.Theme
	var prechat domain.Prechat
	if s.Theme != nil {
		theme = *s.Theme
	}
	if s.Prechat != nil {
		prechat = *s.Prechat
	}
	return theme, prechat, nil
}
