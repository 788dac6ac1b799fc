package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/crudapp/internal/model"
)

// Every item query is scoped by owner. An item that exists but belongs to
// someone else is reported as ErrNotFound, same as a missing one.

const itemColumns = `id, user_id, title, description, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

// CreateItem inserts an item for ownerID. An empty description is stored as NULL.
func CreateItem(ctx context.Context, db *sql.DB, ownerID int64, title, description string) (*model.Item, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO items (user_id, title, description) VALUES (?, ?, ?)`,
		ownerID, title, nullString(description),
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id, ownerID)
}

// GetItem returns the item with the given ID if ownerID owns it.
func GetItem(ctx context.Context, db *sql.DB, id, ownerID int64) (*model.Item, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ? AND user_id = ?`,
		id, ownerID,
	)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting item %d: %w", id, err)
	}
	return item, nil
}

// ListItems returns all items of ownerID, newest first. The result is
// never nil.
func ListItems(ctx context.Context, db *sql.DB, ownerID int64) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateItem replaces the title and description of an owned item and
// refreshes updated_at.
func UpdateItem(ctx context.Context, db *sql.DB, id, ownerID int64, title, description string) (*model.Item, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET title = ?, description = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ?`,
		title, nullString(description), id, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}
	if err := expectAffected(result, "updating item"); err != nil {
		return nil, err
	}

	return GetItem(ctx, db, id, ownerID)
}

// DeleteItem removes an owned item.
func DeleteItem(ctx context.Context, db *sql.DB, id, ownerID int64) error {
	result, err := db.ExecContext(ctx,
		`DELETE FROM items WHERE id = ? AND user_id = ?`, id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return expectAffected(result, "deleting item")
}

func scanItem(row scanner) (*model.Item, error) {
	item := &model.Item{}
	var description sql.NullString
	err := row.Scan(&item.ID, &item.UserID, &item.Title, &description, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.Description = description.String
	return item, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
