package restclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SendsHeadersAndDecodes(t *testing.T) {
	var seen *http.Request
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"apiKey":"k1","name":"Shop"}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", time.Second)
	var out struct {
		APIKey string `json:"apiKey"`
		Name   string `json:"name"`
	}
	err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/apps",
		Query:  map[string]string{"weekStart": "10"},
		Token:  "tok",
		APIKey: "k1",
		Body:   map[string]string{"name": "Shop"},
	}, &out)
	require.NoError(t, err)

	assert.Equal(t, "k1", out.APIKey)
	assert.Equal(t, "/apps", seen.URL.Path)
	assert.Equal(t, "10", seen.URL.Query().Get("weekStart"))
	assert.Equal(t, "Bearer tok", seen.Header.Get("Authorization"))
	assert.Equal(t, "k1", seen.Header.Get("x-api-key"))

	var sent map[string]string
	require.NoError(t, json.Unmarshal(body, &sent))
	assert.Equal(t, "Shop", sent["name"])
}

func TestClient_ErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bad":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"name required"}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`<html>cold start</html>`))
		}
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)

	err := c.Do(context.Background(), Request{Path: "/bad"}, nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "name required", apiErr.Message)
	assert.False(t, apiErr.Retryable())

	err = c.Do(context.Background(), Request{Path: "/down"}, nil)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, defaultMessage, apiErr.Message)
	assert.True(t, apiErr.Retryable())
	assert.Equal(t, http.StatusBadGateway, StatusOf(err))
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := New(url, 200*time.Millisecond).Do(context.Background(), Request{Path: "/apps"}, nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 0, apiErr.Status)
	assert.True(t, apiErr.Retryable())
}

func TestClient_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New("http://127.0.0.1:1", time.Second).Do(ctx, Request{Path: "/apps"}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
