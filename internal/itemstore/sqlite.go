package itemstore

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"sync"

	"github.com/erazemk/lostfound/internal/model"
)

// SQLite stores items in the items table. Each Update runs in one
// transaction and only rows that changed are written.
type SQLite struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLite returns an item store on an open database with the schema applied.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Load implements Store.
func (s *SQLite) Load(ctx context.Context) ([]model.Item, error) {
	return loadItems(ctx, s.db)
}

// Update implements Store.
func (s *SQLite) Update(ctx context.Context, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := loadItems(ctx, tx)
	if err != nil {
		return err
	}

	next, err := fn(slices.Clone(current))
	if err != nil {
		return err
	}

	existing := make(map[string]int, len(current))
	for i := range current {
		existing[current[i].ID] = i
	}
	kept := make(map[string]bool, len(next))
	for i := range next {
		kept[next[i].ID] = true
	}
	for i := range current {
		if kept[current[i].ID] {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, current[i].ID); err != nil {
			return fmt.Errorf("deleting item: %w", err)
		}
	}

	for i := range next {
		it := &next[i]
		idx, ok := existing[it.ID]
		switch {
		case !ok:
			err = insertItem(ctx, tx, it)
		case !sameItem(&current[idx], it):
			err = updateItem(ctx, tx, it)
		}
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing items: %w", err)
	}
	return nil
}

func loadItems(ctx context.Context, q querier) ([]model.Item, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, type, name, category, location, color, description, image,
		        status, verified, reported_by, date, matched_with
		 FROM items ORDER BY seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var it model.Item
		var image, matchedWith sql.NullString
		if err := rows.Scan(&it.ID, &it.Type, &it.Name, &it.Category, &it.Location, &it.Color,
			&it.Description, &image, &it.Status, &it.Verified, &it.ReportedBy, &it.Date, &matchedWith); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		it.Image = image.String
		it.MatchedWith = matchedWith.String
		items = append(items, it)
	}
	return items, rows.Err()
}

func insertItem(ctx context.Context, tx *sql.Tx, it *model.Item) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO items (id, type, name, category, location, color, description, image,
		                    status, verified, reported_by, date, matched_with)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.ID, it.Type, it.Name, it.Category, it.Location, it.Color, it.Description, nullString(it.Image),
		it.Status, it.Verified, it.ReportedBy, it.Date.UTC(), nullString(it.MatchedWith),
	)
	if err != nil {
		return fmt.Errorf("inserting item: %w", err)
	}
	return nil
}

func updateItem(ctx context.Context, tx *sql.Tx, it *model.Item) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE items SET type = ?, name = ?, category = ?, location = ?, color = ?, description = ?,
		                  image = ?, status = ?, verified = ?, reported_by = ?, date = ?, matched_with = ?
		 WHERE id = ?`,
		it.Type, it.Name, it.Category, it.Location, it.Color, it.Description, nullString(it.Image),
		it.Status, it.Verified, it.ReportedBy, it.Date.UTC(), nullString(it.MatchedWith), it.ID,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return nil
}

func sameItem(a, b *model.Item) bool {
	return a.ID == b.ID && a.Type == b.Type && a.Name == b.Name && a.Category == b.Category &&
		a.Location == b.Location && a.Color == b.Color && a.Description == b.Description &&
		a.Image == b.Image && a.Status == b.Status && a.Verified == b.Verified &&
		a.ReportedBy == b.ReportedBy && a.Date.Equal(b.Date) && a.MatchedWith == b.MatchedWith
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
