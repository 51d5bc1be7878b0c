// Item operations for the SQLite backend. Each method hydrates between
// SQLite rows and *types.Item structs. UpsertAdd is a single
// insert-or-increment statement so concurrent adders cannot lose
// updates; SetQuantity and Delete are plain guarded statements.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mesh-intelligence/freezer/pkg/types"
)

const itemColumns = "item_id, owner, item_name, quantity, created_at, updated_at"

// List returns every item belonging to the attached owner.
func (b *Backend) List() ([]*types.Item, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.guard(); err != nil {
		return nil, err
	}

	rows, err := b.db.Query(
		"SELECT "+itemColumns+" FROM items WHERE owner = ?",
		b.config.Owner,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	items := []*types.Item{}
	for rows.Next() {
		item, err := hydrateItem(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}
	return items, nil
}

// UpsertAdd adds delta to the named item's quantity, creating the row
// with quantity = delta if absent. The insert-or-increment is one
// statement keyed on UNIQUE(owner, item_name), so two concurrent adds of
// the same item both land.
func (b *Backend) UpsertAdd(name string, delta int) (*types.Item, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.guard(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, types.ErrEmptyName
	}
	if delta <= 0 {
		return nil, types.ErrInvalidQuantity
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := b.db.Exec(
		`INSERT INTO items (item_id, owner, item_name, quantity, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(owner, item_name)
		 DO UPDATE SET quantity = quantity + excluded.quantity,
		               updated_at = excluded.updated_at`,
		generateUUID(), b.config.Owner, name, delta, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("upserting item %q: %w", name, err)
	}

	return b.getItem(name)
}

// SetQuantity overwrites the named item's quantity. A plain UPDATE, not a
// compare-and-swap: concurrent removers can overwrite each other, which
// the store contract accepts.
func (b *Backend) SetQuantity(name string, value int) (*types.Item, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.guard(); err != nil {
		return nil, err
	}
	if value < 0 {
		return nil, types.ErrNegativeQuantity
	}

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := b.db.Exec(
		"UPDATE items SET quantity = ?, updated_at = ? WHERE owner = ? AND item_name = ?",
		value, now, b.config.Owner, name,
	)
	if err != nil {
		return nil, fmt.Errorf("setting quantity for %q: %w", name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking update of %q: %w", name, err)
	}
	if affected == 0 {
		return nil, types.ErrNotFound
	}

	return b.getItem(name)
}

// Delete removes the named item's row. The quantity guard lives in the
// store, not just the controller: the DELETE only matches rows already at
// zero, and a positive-quantity row is reported without being touched.
func (b *Backend) Delete(name string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.guard(); err != nil {
		return err
	}

	res, err := b.db.Exec(
		"DELETE FROM items WHERE owner = ? AND item_name = ? AND quantity = 0",
		b.config.Owner, name,
	)
	if err != nil {
		return fmt.Errorf("deleting item %q: %w", name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete of %q: %w", name, err)
	}
	if affected > 0 {
		return nil
	}

	// Nothing deleted: either the row is absent or it still has stock.
	item, err := b.getItem(name)
	if err != nil {
		return err
	}
	return fmt.Errorf("cannot delete %q with %d in stock: %w", item.Name, item.Quantity, types.ErrNotDepleted)
}

// getItem reads one row by name for the attached owner.
// Callers must hold b.mu (read or write lock).
func (b *Backend) getItem(name string) (*types.Item, error) {
	rows, err := b.db.Query(
		"SELECT "+itemColumns+" FROM items WHERE owner = ? AND item_name = ?",
		b.config.Owner, name,
	)
	if err != nil {
		return nil, fmt.Errorf("getting item %q: %w", name, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("getting item %q: %w", name, err)
		}
		return nil, types.ErrNotFound
	}
	item, err := hydrateItem(rows)
	if err != nil {
		return nil, fmt.Errorf("hydrating item %q: %w", name, err)
	}
	return item, nil
}

// hydrateItem converts the current row of rows into a *types.Item.
func hydrateItem(rows *sql.Rows) (*types.Item, error) {
	var item types.Item
	var createdAt, updatedAt string
	if err := rows.Scan(&item.ItemID, &item.Owner, &item.Name, &item.Quantity, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	item.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	item.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &item, nil
}
