package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripplanner-backend/apperr"
	"tripplanner-backend/models"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	user, err := e.users.Register(ctx, models.RegisterRequest{Username: "Alice", Email: " Alice@Example.COM ", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)

	_, err = e.users.Register(ctx, models.RegisterRequest{Username: "alice", Email: "other@example.com", Password: "password123"})
	assertKind(t, err, apperr.KindConflict)
	_, err = e.users.Register(ctx, models.RegisterRequest{Username: "other", Email: "ALICE@example.com", Password: "password123"})
	assertKind(t, err, apperr.KindConflict)
	_, err = e.users.Register(ctx, models.RegisterRequest{Username: "a@b", Email: "ab@example.com", Password: "password123"})
	assertKind(t, err, apperr.KindValidation)

	got, err := e.users.Authenticate(ctx, "ALICE", "password123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	got, err = e.users.Authenticate(ctx, "alice@EXAMPLE.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = e.users.Authenticate(ctx, "alice", "wrong")
	assertKind(t, err, apperr.KindUnauthenticated)
	_, err = e.users.Authenticate(ctx, "nobody", "password123")
	assertKind(t, err, apperr.KindUnauthenticated)
}
