package storage

import (
	"context"
	"fmt"
	"log/slog"

	"bilancio/internal/core"
)

// CreateCategory inserts a category and returns it with its new id.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.ID = newID()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, type, created_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, int(c.Type), r.timestamp())
	if err != nil {
		return core.Category{}, mapError("create category", err)
	}

	slog.InfoContext(ctx, "Category saved to SQLite", "id", c.ID, "name", c.Name, "type", c.Type.String())
	return c, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id string) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, type FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Type)
	if err != nil {
		return core.Category{}, mapError("get category", err)
	}
	return c, nil
}

// FindCategory looks a category up by its natural key.
func (r *SQLiteRepository) FindCategory(ctx context.Context, name string, t core.EntryType) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, type FROM categories WHERE name = ? AND type = ?`, name, int(t)).
		Scan(&c.ID, &c.Name, &c.Type)
	if err != nil {
		return core.Category{}, mapError("find category", err)
	}
	return c, nil
}

// ListCategories returns every category ordered by type, then name.
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, type FROM categories ORDER BY type, name`)
	if err != nil {
		return nil, mapError("list categories", err)
	}
	defer rows.Close()

	categories := []core.Category{}
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

// DeleteCategory removes a category; transactions and budgets referencing it
// are removed by the ON DELETE CASCADE foreign keys.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return mapError("delete category", err)
	}
	if err := expectOne(res); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Category deleted from SQLite", "id", id)
	return nil
}
