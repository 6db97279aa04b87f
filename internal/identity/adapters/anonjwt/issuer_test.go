package anonjwt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer_SignInAndVerify(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	id, err := issuer.SignInAnonymously(context.Background())
	require.NoError(t, err)
	assert.True(t, id.Anonymous)
	assert.NotEmpty(t, id.UID)
	assert.NotEmpty(t, id.Token)
	assert.True(t, id.Valid(time.Now()))

	parsed, err := issuer.Verify(id.Token)
	require.NoError(t, err)
	assert.Equal(t, id.UID, parsed.UID)
	assert.True(t, parsed.Anonymous)
}

func TestIssuer_EachSignInIsANewIdentity(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	a, err := issuer.SignInAnonymously(context.Background())
	require.NoError(t, err)
	b, err := issuer.SignInAnonymously(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, a.UID, b.UID)
}

func TestIssuer_VerifyRejectsForeignSecret(t *testing.T) {
	id, err := NewIssuer("secret-a", time.Hour).SignInAnonymously(context.Background())
	require.NoError(t, err)

	_, err = NewIssuer("secret-b", time.Hour).Verify(id.Token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestIssuer_VerifyRejectsExpiredToken(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Minute)
	start := time.Now()
	issuer.now = func() time.Time { return start }

	id, err := issuer.SignInAnonymously(context.Background())
	require.NoError(t, err)

	issuer.now = func() time.Time { return start.Add(2 * time.Minute) }
	_, err = issuer.Verify(id.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.False(t, id.Valid(start.Add(2*time.Minute)))
}

func TestIssuer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewIssuer("test-secret", time.Hour).SignInAnonymously(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
