package anonjwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chato-dashboard/internal/identity/core/domain"
	"chato-dashboard/internal/identity/core/ports"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid identity token")

type Claims struct {
	Anonymous bool `json:"anon"`
	jwt.RegisteredClaims
}

// Issuer mints anonymous realtime identities signed with a shared secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

var _ ports.AnonymousSignInPort = (*Issuer)(nil)

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *Issuer) SignInAnonymously(ctx context.Context) (*domain.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := i.now()
	uid := uuid.New().String()
	claims := Claims{
		Anonymous: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return nil, fmt.Errorf("sign identity token: %w", err)
	}

	return &domain.Identity{
		UID:       uid,
		Token:     token,
		Anonymous: true,
		IssuedAt:  now,
		ExpiresAt: now.Add(i.ttl),
	}, nil
}

// Verify parses a token minted by SignInAnonymously.
func (i *Issuer) Verify(tokenString string) (*domain.Identity, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	id := &domain.Identity{
		UID:       claims.Subject,
		Token:     tokenString,
		Anonymous: claims.Anonymous,
	}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}
