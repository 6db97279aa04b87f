// Package rest implements the auth port against the Chato backend.
package rest

import (
	"context"
	"net/http"

	"chato-dashboard/internal/auth/core/domain"
	"chato-dashboard/internal/platform/restclient"
)

type Doer interface {
	Do(ctx context.Context, req restclient.Request, out any) error
}

type AuthClient struct {
	api Doer
}

func NewAuthClient(api Doer) *AuthClient {
	return &AuthClient{api: api}
}

func (c *AuthClient) Register(ctx context.Context, creds domain.Credentials) (string, error) {
	return c.exchange(ctx, "/auth/register", creds)
}

func (c *AuthClient) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	return c.exchange(ctx, "/auth/login", creds)
}

func (c *AuthClient) exchange(ctx context.Context, path string, creds domain.Credentials) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	if err := c.api.Do(ctx, restclient.Request{Method: http.MethodPost, Path: path, Body: creds}, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}
