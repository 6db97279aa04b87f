package usecase

import (
	"context"
	"errors"

	"chato-dashboard/internal/auth/core/domain"
	"chato-dashboard/internal/auth/core/ports"

	"github.com/sirupsen/logrus"
)

var ErrNoToken = errors.New("backend returned no token")

// SessionEnder is called on logout to drop the realtime identity.
type SessionEnder interface {
	SignOut()
}

type AuthUseCase struct {
	api      ports.AuthAPIPort
	sessions SessionEnder
	log      *logrus.Entry
}

func NewAuthUseCase(api ports.AuthAPIPort, sessions SessionEnder, log *logrus.Entry) *AuthUseCase {
	return &AuthUseCase{api: api, sessions: sessions, log: log}
}

func (uc *AuthUseCase) Register(ctx context.Context, email, password string) (string, error) {
	creds, err := domain.NewCredentials(email, password)
	if err != nil {
		return "", err
	}
	return uc.token(uc.api.Register(ctx, creds))
}

func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (string, error) {
	creds, err := domain.NewCredentials(email, password)
	if err != nil {
		return "", err
	}
	return uc.token(uc.api.Login(ctx, creds))
}

// Logout ends the realtime identity. Backend tokens are stateless.
func (uc *AuthUseCase) Logout() {
	if uc.sessions != nil {
		uc.sessions.SignOut()
	}
	uc.log.Debug("signed out")
}

func (uc *AuthUseCase) token(token string, err error) (string, error) {
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}
