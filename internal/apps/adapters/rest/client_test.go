package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chato-dashboard/internal/apps/core/domain"
	"chato-dashboard/internal/platform/restclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	auth   string
	apiKey string
	body   map[string]any
}

func newBackend(t *testing.T, reply func(w http.ResponseWriter, r *http.Request)) (*AppsClient, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{
			method: r.Method,
			path:   r.URL.Path,
			auth:   r.Header.Get("Authorization"),
			apiKey: r.Header.Get("x-api-key"),
		}
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.body)
		}
		calls = append(calls, rec)
		w.Header().Set("Content-Type", "application/json")
		reply(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewAppsClient(restclient.New(srv.URL, time.Second)), &calls
}

func TestAppsClient_List(t *testing.T) {
	c, calls := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"apps":[{"apiKey":"k1","name":"Shop","theme":{"primary":"#111"}},{"name":"broken"},{"apiKey":"k2","name":"Blog"}]}`))
	})

	apps, err := c.List(context.Background(), "tok")
	require.NoError(t, err)

	require.Len(t, apps, 2)
	assert.Equal(t, "k1", apps[0].APIKey)
	assert.Equal(t, "#111", apps[0].Theme.Primary)
	assert.Equal(t, "Blog", apps[1].Name)
	assert.Equal(t, "Bearer tok", (*calls)[0].auth)
	assert.Equal(t, "/apps", (*calls)[0].path)
}

func TestAppsClient_CreateAndDelete(t *testing.T) {
	c, calls := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_, _ = w.Write([]byte(`{"apiKey":"new","name":"Shop"}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	app, err := c.Create(context.Background(), "tok", "Shop")
	require.NoError(t, err)
	assert.Equal(t, "new", app.APIKey)
	assert.Equal(t, "Shop", (*calls)[0].body["name"])

	require.NoError(t, c.Delete(context.Background(), "tok", "new"))
	assert.Equal(t, http.MethodDelete, (*calls)[1].method)
	assert.Equal(t, "/apps/new", (*calls)[1].path)
}

func TestAppsClient_CreateWithoutKeyFails(t *testing.T) {
	c, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := c.Create(context.Background(), "tok", "Shop")
	assert.Equal(t, http.StatusBadGateway, restclient.StatusOf(err))
}

func TestAppsClient_UpdateSettingsSendsOnlyGivenParts(t *testing.T) {
	c, calls := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	err := c.UpdateSettings(context.Background(), "tok", "k1", nil, &domain.Prechat{Q1: "Name?"})
	require.NoError(t, err)

	got := (*calls)[0]
	assert.Equal(t, http.MethodPatch, got.method)
	assert.Equal(t, "/apps/k1/settings", got.path)
	assert.Contains(t, got.body, "prechat")
	assert.NotContains(t, got.body, "theme")
}

func TestAppsClient_ConfigUsesAPIKeyHeader(t *testing.T) {
	c, calls := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"theme":{"title":"Help","bubbleBg":"#fff"},"prechat":{"q1":"Name?"}}`))
	})

	theme, prechat, err := c.Config(context.Background(), "k1")
	require.NoError(t, err)

	assert.Equal(t, "Help", theme.Title)
	assert.Equal(t, "Name?", prechat.Q1)
	assert.Equal(t, "k1", (*calls)[0].apiKey)
	assert.Empty(t, (*calls)[0].auth)
}

func TestAppsClient_ConfigNested(t *testing.T) {
	c, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"config":{"theme":{"primary":"#222"}}}`))
	})

	theme, _, err := c.Config(context.Background(), "k1")
	require.NoError(t, err)
	assert.Equal(t, "#222", theme.Primary)
}

func TestAppsClient_BackendError(t *testing.T) {
	c, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Invalid token"}`))
	})

	_, err := c.List(context.Background(), "bad")
	var apiErr *restclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid token", apiErr.Message)
}
