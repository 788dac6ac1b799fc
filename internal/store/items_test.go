package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/crudapp/internal/db"
)

func newOwner(t *testing.T, database *sql.DB, name string) int64 {
	t.Helper()
	user, err := CreateUser(context.Background(), database, name, name+"@example.com", "hash")
	require.NoError(t, err)
	return user.ID
}

func TestCreateAndGetItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := newOwner(t, database, "alice")

	item, err := CreateItem(ctx, database, owner, "Buy milk", "2 litres")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", item.Title)
	assert.Equal(t, "2 litres", item.Description)
	assert.Equal(t, owner, item.UserID)
	assert.False(t, item.CreatedAt.IsZero())
	assert.Equal(t, item.CreatedAt, item.UpdatedAt)

	got, err := GetItem(ctx, database, item.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, item, got)
}

func TestCreateItemWithoutDescriptionStoresNull(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := newOwner(t, database, "alice")

	item, err := CreateItem(ctx, database, owner, "No details", "")
	require.NoError(t, err)
	assert.Empty(t, item.Description)

	var description sql.NullString
	require.NoError(t, database.QueryRow(`SELECT description FROM items WHERE id = ?`, item.ID).Scan(&description))
	assert.False(t, description.Valid)
}

func TestCreateItemRequiresExistingOwner(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := CreateItem(context.Background(), database, 999, "Orphan", "")
	assert.Error(t, err)
}

func TestItemsAreScopedToOwner(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	alice := newOwner(t, database, "alice")
	bob := newOwner(t, database, "bob")

	item, err := CreateItem(ctx, database, alice, "Private", "")
	require.NoError(t, err)

	_, err = GetItem(ctx, database, item.ID, bob)
	assert.True(t, errors.Is(err, ErrNotFound), "get: %v", err)

	_, err = UpdateItem(ctx, database, item.ID, bob, "Hijacked", "")
	assert.True(t, errors.Is(err, ErrNotFound), "update: %v", err)

	err = DeleteItem(ctx, database, item.ID, bob)
	assert.True(t, errors.Is(err, ErrNotFound), "delete: %v", err)

	items, err := ListItems(ctx, database, bob)
	require.NoError(t, err)
	assert.Empty(t, items)

	// Alice's item is untouched.
	got, err := GetItem(ctx, database, item.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, "Private", got.Title)
}

func TestListItemsNewestFirst(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := newOwner(t, database, "alice")

	first, _ := CreateItem(ctx, database, owner, "First", "")
	second, _ := CreateItem(ctx, database, owner, "Second", "")
	third, _ := CreateItem(ctx, database, owner, "Third", "")

	items, err := ListItems(ctx, database, owner)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []int64{third.ID, second.ID, first.ID}, []int64{items[0].ID, items[1].ID, items[2].ID})
}

func TestListItemsEmptyIsNotNil(t *testing.T) {
	database := db.NewTestDB(t)

	items, err := ListItems(context.Background(), database, newOwner(t, database, "alice"))
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestUpdateItemRefreshesUpdatedAt(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := newOwner(t, database, "alice")

	item, _ := CreateItem(ctx, database, owner, "Buy milk", "")

	// Backdate so the refresh is observable at second resolution.
	past := time.Now().UTC().Add(-time.Hour).Format("2006-01-02 15:04:05")
	_, err := database.Exec(`UPDATE items SET created_at = ?, updated_at = ? WHERE id = ?`, past, past, item.ID)
	require.NoError(t, err)

	updated, err := UpdateItem(ctx, database, item.ID, owner, "Buy milk and eggs", "from the corner shop")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk and eggs", updated.Title)
	assert.Equal(t, "from the corner shop", updated.Description)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt), "updated_at %v should be after created_at %v", updated.UpdatedAt, updated.CreatedAt)

	cleared, err := UpdateItem(ctx, database, item.ID, owner, "Buy milk and eggs", "")
	require.NoError(t, err)
	assert.Empty(t, cleared.Description)
}

func TestDeleteItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	owner := newOwner(t, database, "alice")

	item, _ := CreateItem(ctx, database, owner, "Delete me", "")
	require.NoError(t, DeleteItem(ctx, database, item.ID, owner))

	_, err := GetItem(ctx, database, item.ID, owner)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting twice reports the item as missing.
	assert.ErrorIs(t, DeleteItem(ctx, database, item.ID, owner), ErrNotFound)
}
