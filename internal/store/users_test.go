package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/crudapp/internal/db"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "alice", "a@x.com", "hash123")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "a@x.com", user.Email)
	assert.False(t, user.CreatedAt.IsZero(), "created_at should be defaulted")

	got, err := GetUser(ctx, database, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash123", got.PasswordHash)
}

func TestGetUserByUsername(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := CreateUser(ctx, database, "alice", "alice@example.com", "hash")
	require.NoError(t, err)

	user, err := GetUserByUsername(ctx, database, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)

	_, err = GetUserByUsername(ctx, database, "bob")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := CreateUser(ctx, database, "alice", "a@x.com", "hash")
	require.NoError(t, err)

	// Different email, same username.
	_, err = CreateUser(ctx, database, "alice", "other@x.com", "hash")
	require.ErrorIs(t, err, ErrConflict)

	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "username", cerr.Field)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	_, err := CreateUser(ctx, database, "alice", "a@x.com", "hash")
	require.NoError(t, err)

	_, err = CreateUser(ctx, database, "bob", "a@x.com", "hash")
	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "email", cerr.Field)
}

func TestDeleteUserCascadesItems(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "alice", "a@x.com", "hash")
	require.NoError(t, err)
	item, err := CreateItem(ctx, database, user.ID, "Buy milk", "")
	require.NoError(t, err)

	require.NoError(t, DeleteUser(ctx, database, user.ID))

	_, err = GetUser(ctx, database, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = GetItem(ctx, database, item.ID, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	items, err := ListItems(ctx, database, user.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	var count int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&count))
	assert.Zero(t, count, "items table should be empty after cascade")
}

func TestDeleteUserMissing(t *testing.T) {
	database := db.NewTestDB(t)

	err := DeleteUser(context.Background(), database, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}
