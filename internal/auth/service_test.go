package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostbook/internal/auth"
	"hostbook/internal/domain"
	"hostbook/internal/storage/memory"
)

func newService() (*auth.Service, *auth.TokenService) {
	tokens := auth.NewTokenService("test-key", "hostbook-test", time.Hour)
	return auth.NewService(memory.New(), tokens), tokens
}

func TestRegisterThenLogin(t *testing.T) {
	svc, tokens := newService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, "  Host@Example.com ", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "host@example.com", reg.Email)
	assert.NotEmpty(t, reg.OwnerID)

	p, err := tokens.Validate(reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.OwnerID, p.OwnerID)

	login, err := svc.Login(ctx, "host@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, reg.OwnerID, login.OwnerID)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "secret123")
	require.ErrorIs(t, err, domain.ErrInvalid)

	_, err = svc.Register(ctx, "host@example.com", "short")
	require.ErrorIs(t, err, domain.ErrInvalid)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "host@example.com", "secret123")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "HOST@example.com", "another1")
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "host@example.com", "secret123")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "host@example.com", "nope-nope")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "secret123")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}
