// Package catalog is the application layer over the item store: reporting,
// browsing and searching items, ranked matches, accounts, and the contact
// form. HTTP handlers and the CLI share it.
package catalog

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/erazemk/lostfound/internal/imaging"
	"github.com/erazemk/lostfound/internal/itemstore"
	"github.com/erazemk/lostfound/internal/matching"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/notify"
)

// ErrNotFound is returned for unknown item IDs.
var ErrNotFound = itemstore.ErrNotFound

// MatchCache stores ranked matches between item changes.
type MatchCache interface {
	// Get returns cached matches and the generation it looked under.
	Get(ctx context.Context, itemID string) ([]matching.Candidate, int64, bool)
	// Put stores matches computed after a Get under that Get's generation.
	Put(ctx context.Context, gen int64, itemID string, matches []matching.Candidate)
	Invalidate(ctx context.Context)
}

// Service implements the catalog operations.
type Service struct {
	Items itemstore.Store

	// DB holds users and contact messages.
	DB *sql.DB

	Notifier      notify.Notifier
	NotifyTimeout time.Duration

	UploadsDir string
	Cache      MatchCache
	Logger     *slog.Logger
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Browse returns verified items that are still open, in report order.
func (s *Service) Browse(ctx context.Context) ([]model.Item, error) {
	items, err := s.Items.Load(ctx)
	if err != nil {
		return nil, err
	}
	return filter(items, (*model.Item).Public), nil
}

// SearchQuery narrows Search results. Empty fields match everything.
type SearchQuery struct {
	Q        string
	Category string
	Type     string
}

// Search returns public items matching q. Text is matched case-insensitively
// against name and description; category and type must match exactly.
func (s *Service) Search(ctx context.Context, q SearchQuery) ([]model.Item, error) {
	items, err := s.Items.Load(ctx)
	if err != nil {
		return nil, err
	}

	text := strings.ToLower(strings.TrimSpace(q.Q))
	return filter(items, func(it *model.Item) bool {
		if !it.Public() {
			return false
		}
		if q.Category != "" && it.Category != q.Category {
			return false
		}
		if q.Type != "" && it.Type != q.Type {
			return false
		}
		if text != "" &&
			!strings.Contains(strings.ToLower(it.Name), text) &&
			!strings.Contains(strings.ToLower(it.Description), text) {
			return false
		}
		return true
	}), nil
}

// Mine returns every item reported by email, whatever its status.
func (s *Service) Mine(ctx context.Context, email string) ([]model.Item, error) {
	items, err := s.Items.Load(ctx)
	if err != nil {
		return nil, err
	}
	return filter(items, func(it *model.Item) bool { return it.ReportedBy == email }), nil
}

// All returns every item.
func (s *Service) All(ctx context.Context) ([]model.Item, error) {
	return s.Items.Load(ctx)
}

// Get returns a single item.
func (s *Service) Get(ctx context.Context, id string) (*model.Item, error) {
	return itemstore.Get(ctx, s.Items, id)
}

// Stats counts items by state.
func (s *Service) Stats(ctx context.Context) (model.Stats, error) {
	items, err := s.Items.Load(ctx)
	if err != nil {
		return model.Stats{}, err
	}
	return model.CountItems(items), nil
}

// Matches returns ranked candidates for an item.
func (s *Service) Matches(ctx context.Context, id string) ([]matching.Candidate, error) {
	// The generation is read before the items so that an invalidation
	// between Load and Put discards this result.
	var gen int64
	if s.Cache != nil {
		cached, g, ok := s.Cache.Get(ctx, id)
		if ok {
			return cached, nil
		}
		gen = g
	}

	items, err := s.Items.Load(ctx)
	if err != nil {
		return nil, err
	}
	if model.IndexOf(items, id) < 0 {
		return nil, ErrNotFound
	}

	matches := matching.FindMatches(id, items)
	if matches == nil {
		matches = []matching.Candidate{}
	}
	if s.Cache != nil {
		s.Cache.Put(ctx, gen, id, matches)
	}
	return matches, nil
}

// RemoveImage deletes an item's stored upload, logging failures.
func (s *Service) RemoveImage(item *model.Item) {
	if item.Image == "" || s.UploadsDir == "" {
		return
	}
	if err := imaging.Remove(s.UploadsDir, item.Image); err != nil {
		s.logger().Warn("failed to remove item image", "item", item.ID, "image", item.Image, "error", err)
	}
}

func (s *Service) invalidate(ctx context.Context) {
	if s.Cache != nil {
		s.Cache.Invalidate(ctx)
	}
}

func filter(items []model.Item, keep func(*model.Item) bool) []model.Item {
	out := []model.Item{}
	for i := range items {
		if keep(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out
}
