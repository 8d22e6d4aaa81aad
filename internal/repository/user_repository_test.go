package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/stadium-tickets/internal/model"
	"github.com/iliyamo/stadium-tickets/internal/utils"
)

func TestUserRepo(t *testing.T) {
	db := newDB(t)
	ctx := context.Background()
	repo := NewUserRepo(db)

	u := &model.User{Email: "  Fan@Example.COM ", FirstName: "Ada", LastName: "Lovelace"}
	require.NoError(t, repo.Create(ctx, u, "password123", 4))
	assert.Equal(t, "fan@example.com", u.Email)
	assert.Equal(t, model.RoleUser, u.Role)

	got, err := repo.GetByEmail(ctx, "FAN@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.True(t, utils.VerifyPassword(got.PasswordHash, "password123"))

	byID, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", byID.FirstName)

	err = repo.Create(ctx, &model.User{Email: "fan@example.com"}, "password123", 4)
	assert.ErrorIs(t, err, ErrEmailExists)

	_, err = repo.GetByID(ctx, 12345)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestTokenRepo_RotateAndRevoke(t *testing.T) {
	db := newDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "fan@example.com")
	repo := NewTokenRepo(db)
	exp := time.Now().Add(time.Hour)

	require.NoError(t, repo.StoreRefresh(ctx, u.ID, "h1", exp))
	id, err := repo.ValidateRefresh(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	id, err = repo.Rotate(ctx, "h1", "h2", exp)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	_, err = repo.ValidateRefresh(ctx, "h1")
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = repo.Rotate(ctx, "h1", "h3", exp)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	require.NoError(t, repo.RevokeAllForUser(ctx, u.ID))
	_, err = repo.ValidateRefresh(ctx, "h2")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenRepo_Expired(t *testing.T) {
	db := newDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "fan@example.com")
	repo := NewTokenRepo(db)

	require.NoError(t, repo.StoreRefresh(ctx, u.ID, "old", time.Now().Add(-time.Minute)))
	_, err := repo.ValidateRefresh(ctx, "old")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
