package fiber_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	httpadapter "chato-dashboard/internal/activity/adapters/http/fiber"
	"chato-dashboard/internal/activity/core/domain"
	"chato-dashboard/internal/activity/core/usecase"
	"chato-dashboard/internal/platform/bearer"
	"chato-dashboard/internal/platform/logger"
	"chato-dashboard/internal/platform/restclient"

	"github.com/gofiber/fiber/v2"
)

// Fake usecase implementing the interface that handler depends on.
type fakeGetActivityUseCase struct {
	ExecuteFn func(ctx context.Context, in usecase.GetActivityInput) (*domain.Summary, error)
	lastInput usecase.GetActivityInput
	called    bool
}

func (f *fakeGetActivityUseCase) Execute(ctx context.Context, in usecase.GetActivityInput) (*domain.Summary, error) {
	f.called = true
	f.lastInput = in
	if f.ExecuteFn != nil {
		return f.ExecuteFn(ctx, in)
	}
	return &domain.Summary{}, nil
}

func ownsAll(context.Context, string) ([]string, error) { return []string{"a", "b"}, nil }

func setupApp(t *testing.T, uc httpadapter.GetActivityUseCase) *fiber.App {
	t.Helper()
	return setupOwnedApp(t, uc, ownsAll)
}

func setupOwnedApp(t *testing.T, uc httpadapter.GetActivityUseCase, owned httpadapter.OwnedApps) *fiber.App {
	t.Helper()
	app := fiber.New()
	h := httpadapter.NewActivityHandler(uc, owned, logger.Discard())
	app.Get("/activity", bearer.Require(), h.GetActivity)
	return app
}

func get(t *testing.T, app *fiber.App, params url.Values) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/activity?"+params.Encode(), nil)
	req.Header.Set("Authorization", "Bearer alice")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

// ------------------------------------------------------------
// SUCCESS: group_by=app
// ------------------------------------------------------------
func TestGetActivity_Success_GroupByApp(t *testing.T) {
	uc := &fakeGetActivityUseCase{
		ExecuteFn: func(ctx context.Context, in usecase.GetActivityInput) (*domain.Summary, error) {
			if in.From != 100 || in.To != 200 || in.GroupBy != "app" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.Summary{
				From:     "2026-10-01",
				To:       "2026-10-07",
				Messages: 15,
				GroupBy:  "app",
				Groups:   []domain.Group{{Key: "a", Messages: 10}, {Key: "b", Messages: 5}},
			}, nil
		},
	}
	app := setupApp(t, uc)

	params := url.Values{}
	params.Set("from", "100")
	params.Set("to", "200")
	params.Set("group_by", "app")
	resp, body := get(t, app, params)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var out httpadapter.ActivityResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Messages != 15 || len(out.Groups) != 2 || out.Groups[0].Key != "a" {
		t.Fatalf("unexpected response: %+v", out)
	}
}

// ------------------------------------------------------------
// VALIDATION
// ------------------------------------------------------------
func TestGetActivity_MissingRange(t *testing.T) {
	uc := &fakeGetActivityUseCase{}
	app := setupApp(t, uc)

	resp, _ := get(t, app, url.Values{"from": {"100"}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if uc.called {
		t.Fatalf("usecase must not be called")
	}
}

func TestGetActivity_InvalidNumber(t *testing.T) {
	app := setupApp(t, &fakeGetActivityUseCase{})
	resp, _ := get(t, app, url.Values{"from": {"abc"}, "to": {"200"}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGetActivity_UseCaseErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"range", usecase.ErrInvalidTimeRange, http.StatusBadRequest},
		{"group", usecase.ErrInvalidGroupBy, http.StatusBadRequest},
		{"foreign app", usecase.ErrUnknownApp, http.StatusNotFound},
		{"db", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc := &fakeGetActivityUseCase{ExecuteFn: func(context.Context, usecase.GetActivityInput) (*domain.Summary, error) {
				return nil, tc.err
			}}
			app := setupApp(t, uc)

			resp, _ := get(t, app, url.Values{"from": {"100"}, "to": {"200"}})
			if resp.StatusCode != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, resp.StatusCode)
			}
		})
	}
}

// ------------------------------------------------------------
// OWNERSHIP
// ------------------------------------------------------------
func TestGetActivity_ScopedToCallersApps(t *testing.T) {
	uc := &fakeGetActivityUseCase{}
	var gotToken string
	app := setupOwnedApp(t, uc, func(ctx context.Context, token string) ([]string, error) {
		gotToken = token
		return []string{"alice-1"}, nil
	})

	resp, _ := get(t, app, url.Values{"from": {"100"}, "to": {"200"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if gotToken != "alice" {
		t.Fatalf("expected caller's token, got %q", gotToken)
	}
	if len(uc.lastInput.Owned) != 1 || uc.lastInput.Owned[0] != "alice-1" {
		t.Fatalf("expected query scoped to alice's apps, got %v", uc.lastInput.Owned)
	}
}

func TestGetActivity_OwnerLookupFailures(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"rejected token", &restclient.APIError{Status: 401, Message: "invalid token"}, http.StatusUnauthorized},
		{"backend down", &restclient.APIError{Message: "connection refused"}, http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc := &fakeGetActivityUseCase{}
			app := setupOwnedApp(t, uc, func(context.Context, string) ([]string, error) { return nil, tc.err })

			resp, _ := get(t, app, url.Values{"from": {"100"}, "to": {"200"}})
			if resp.StatusCode != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, resp.StatusCode)
			}
			if uc.called {
				t.Fatalf("usecase must not be called")
			}
		})
	}
}

func TestGetActivity_RequiresToken(t *testing.T) {
	app := setupApp(t, &fakeGetActivityUseCase{})

	req := httptest.NewRequest(http.MethodGet, "/activity?from=100&to=200", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}
