package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/itemstore"
	"github.com/erazemk/lostfound/internal/model"
)

type sent struct {
	to, subject, body string
}

type recorder struct {
	mu   sync.Mutex
	sent []sent
	err  error
}

func (r *recorder) Send(_ context.Context, to, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, sent{to, subject, body})
	return nil
}

type countingCache struct{ n int }

func (c *countingCache) Invalidate(context.Context) { c.n++ }

func newItem(id, typ, name, category, location, color, reporter string) model.Item {
	return model.Item{
		ID:         id,
		Type:       typ,
		Name:       name,
		Category:   category,
		Location:   location,
		Color:      color,
		Status:     model.ItemStatusPending,
		ReportedBy: reporter,
		Date:       time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func load(t *testing.T, s itemstore.Store, id string) model.Item {
	t.Helper()
	it, err := itemstore.Get(context.Background(), s, id)
	require.NoError(t, err)
	return *it
}

func TestVerifyAutoMatchesIdenticalPair(t *testing.T) {
	store := itemstore.NewMemory(
		newItem("a", model.ItemTypeLost, "Black Wallet", "wallet", "Library", "black", "owner@example.com"),
		newItem("b", model.ItemTypeFound, "Black Wallet", "wallet", "Library", "black", "finder@example.com"),
	)
	rec := &recorder{}
	cache := &countingCache{}
	c := &Controller{Items: store, Notifier: rec, Cache: cache}

	res, err := c.Verify(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, res.Verified)
	assert.Equal(t, "b", res.AutoMatchedWith)
	assert.Equal(t, 100.0, res.Score)

	a, b := load(t, store, "a"), load(t, store, "b")
	assert.Equal(t, model.ItemStatusMatched, a.Status)
	assert.Equal(t, model.ItemStatusMatched, b.Status)
	assert.True(t, a.Verified)
	assert.True(t, b.Verified)
	assert.Equal(t, "b", a.MatchedWith)
	assert.Equal(t, "a", b.MatchedWith)

	require.Len(t, rec.sent, 2)
	assert.Equal(t, "owner@example.com", rec.sent[0].to)
	assert.Contains(t, rec.sent[0].body, "collect")
	assert.Equal(t, "finder@example.com", rec.sent[1].to)
	assert.Contains(t, rec.sent[1].body, "hand over")
	assert.Equal(t, 1, cache.n)
}

func TestVerifyWithoutMatchLeavesItemActive(t *testing.T) {
	store := itemstore.NewMemory(
		newItem("c", model.ItemTypeLost, "Red Umbrella", "umbrella", "Gate 2", "red", "c@example.com"),
		newItem("d", model.ItemTypeFound, "Blue Backpack", "bag", "Parking Lot", "blue", "d@example.com"),
	)
	rec := &recorder{}
	c := &Controller{Items: store, Notifier: rec}

	res, err := c.Verify(context.Background(), "c")
	require.NoError(t, err)
	assert.True(t, res.Verified)
	assert.Empty(t, res.AutoMatchedWith)

	got := load(t, store, "c")
	assert.Equal(t, model.ItemStatusActive, got.Status)
	assert.True(t, got.Verified)
	assert.Empty(t, got.MatchedWith)

	d := load(t, store, "d")
	assert.Equal(t, model.ItemStatusPending, d.Status)
	assert.Empty(t, rec.sent)
}

func TestVerifyPicksBestCandidateOnly(t *testing.T) {
	bystander := newItem("e", model.ItemTypeFound, "Black Wallet", "wallet", "Library Hall", "black", "e@example.com")
	store := itemstore.NewMemory(
		newItem("a", model.ItemTypeLost, "Black Wallet", "wallet", "Library", "black", "a@example.com"),
		bystander,
		newItem("b", model.ItemTypeFound, "Black Wallet", "wallet", "Library", "black", "b@example.com"),
	)
	c := &Controller{Items: store, Notifier: &recorder{}}

	res, err := c.Verify(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "b", res.AutoMatchedWith)
	assert.Equal(t, bystander, load(t, store, "e"))
}

func TestVerifyLaterItemMatchesActiveOne(t *testing.T) {
	store := itemstore.NewMemory(
		newItem("a", model.ItemTypeLost, "Silver Ring", "jewelry", "Gym", "silver", "a@example.com"),
		newItem("b", model.ItemTypeFound, "Silver Ring", "jewelry", "Gym", "silver", "b@example.com"),
	)
	require.NoError(t, store.Update(context.Background(), func(items []model.Item) ([]model.Item, error) {
		items[0].Verified = true
		items[0].Status = model.ItemStatusActive
		return items, nil
	}))

	c := &Controller{Items: store, Notifier: &recorder{}}
	res, err := c.Verify(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, "a", res.AutoMatchedWith)
	assert.Equal(t, model.ItemStatusMatched, load(t, store, "a").Status)
}

func TestConcurrentVerifyMatchesFoundItemOnce(t *testing.T) {
	jsonStore, err := itemstore.OpenJSONFile(filepath.Join(t.TempDir(), "items.json"))
	require.NoError(t, err)

	stores := map[string]itemstore.Store{
		"memory": itemstore.NewMemory(),
		"json":   jsonStore,
		"sqlite": itemstore.NewSQLite(db.NewTestDB(t)),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			found := newItem("found", model.ItemTypeFound, "Black Wallet", "wallet", "Library", "black", "finder@example.com")
			found.Status = model.ItemStatusActive
			found.Verified = true
			require.NoError(t, itemstore.Insert(ctx, store, found))

			var lost []string
			for i := 0; i < 8; i++ {
				id := fmt.Sprintf("lost-%d", i)
				lost = append(lost, id)
				require.NoError(t, itemstore.Insert(ctx, store,
					newItem(id, model.ItemTypeLost, "Black Wallet", "wallet", "Library", "black", id+"@example.com")))
			}

			rec := &recorder{}
			c := &Controller{Items: store, Notifier: rec}

			results := make([]*VerificationResult, len(lost))
			var wg sync.WaitGroup
			for i, id := range lost {
				wg.Add(1)
				go func(i int, id string) {
					defer wg.Done()
					res, err := c.Verify(ctx, id)
					assert.NoError(t, err)
					results[i] = res
				}(i, id)
			}
			wg.Wait()

			var winners []string
			for i, res := range results {
				require.NotNil(t, res, lost[i])
				if res.AutoMatchedWith != "" {
					assert.Equal(t, "found", res.AutoMatchedWith)
					winners = append(winners, lost[i])
				}
			}
			require.Len(t, winners, 1)

			items, err := store.Load(ctx)
			require.NoError(t, err)
			var matched []model.Item
			for _, it := range items {
				if it.Status == model.ItemStatusMatched {
					matched = append(matched, it)
				} else {
					assert.Equal(t, model.ItemStatusActive, it.Status, it.ID)
					assert.True(t, it.Verified, it.ID)
				}
			}
			require.Len(t, matched, 2)
			assert.Equal(t, matched[0].ID, matched[1].MatchedWith)
			assert.Equal(t, matched[1].ID, matched[0].MatchedWith)
			assert.Equal(t, winners[0], load(t, store, "found").MatchedWith)

			rec.mu.Lock()
			defer rec.mu.Unlock()
			assert.Len(t, rec.sent, 2)
		})
	}
}

func TestVerifyMatchedItemRefused(t *testing.T) {
	store := itemstore.NewMemory(
		newItem("a", model.ItemTypeLost, "Black Wallet", "wallet", "Library", "black", "a@example.com"),
		newItem("b", model.ItemTypeFound, "Black Wallet", "wallet", "Library", "black", "b@example.com"),
		newItem("f", model.ItemTypeFound, "Black Wallet", "wallet", "Library", "black", "f@example.com"),
	)
	c := &Controller{Items: store, Notifier: &recorder{}}

	_, err := c.Verify(context.Background(), "a")
	require.NoError(t, err)

	_, err = c.Verify(context.Background(), "a")
	assert.ErrorIs(t, err, ErrAlreadyMatched)
	assert.Equal(t, "b", load(t, store, "a").MatchedWith)

	err = c.Reject(context.Background(), "b")
	assert.ErrorIs(t, err, ErrAlreadyMatched)
	assert.Equal(t, model.ItemStatusPending, load(t, store, "f").Status)
}

func TestVerifyUnknownItem(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.json")
	store, err := itemstore.OpenJSONFile(path)
	require.NoError(t, err)
	require.NoError(t, itemstore.Insert(context.Background(), store,
		newItem("a", model.ItemTypeLost, "Keys", "keys", "Bus", "", "a@example.com")))

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	rec := &recorder{}
	c := &Controller{Items: store, Notifier: rec}

	_, err = c.Verify(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, c.Reject(context.Background(), "missing"), ErrNotFound)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Empty(t, rec.sent)
}

func TestVerifyNotificationFailureKeepsMatch(t *testing.T) {
	store := itemstore.NewMemory(
		newItem("a", model.ItemTypeLost, "Black Wallet", "wallet", "Library", "black", "a@example.com"),
		newItem("b", model.ItemTypeFound, "Black Wallet", "wallet", "Library", "black", "b@example.com"),
	)
	c := &Controller{Items: store, Notifier: &recorder{err: errors.New("smtp down")}}

	res, err := c.Verify(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "b", res.AutoMatchedWith)
	assert.Equal(t, model.ItemStatusMatched, load(t, store, "a").Status)
	assert.Equal(t, model.ItemStatusMatched, load(t, store, "b").Status)
}

func TestRejectRemovesItem(t *testing.T) {
	it := newItem("a", model.ItemTypeLost, "Keys", "keys", "Bus", "", "a@example.com")
	it.Image = "photo.jpg"
	store := itemstore.NewMemory(it,
		newItem("b", model.ItemTypeFound, "Umbrella", "umbrella", "Gate", "", "b@example.com"))

	var removed []string
	c := &Controller{
		Items:    store,
		OnRemove: func(item *model.Item) { removed = append(removed, item.Image) },
	}

	require.NoError(t, c.Reject(context.Background(), "a"))

	items, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].ID)
	assert.Equal(t, []string{"photo.jpg"}, removed)

	_, err = itemstore.Get(context.Background(), store, "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNotifyOwner(t *testing.T) {
	store := itemstore.NewMemory(
		newItem("a", model.ItemTypeLost, "Blue Scarf", "clothing", "Cafe", "blue", "a@example.com"),
	)
	rec := &recorder{}
	c := &Controller{Items: store, Notifier: rec}

	ok, err := c.NotifyOwner(context.Background(), "a", "Jane")
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, rec.sent, 1)
	assert.Equal(t, "a@example.com", rec.sent[0].to)
	assert.Equal(t, "Potential Match Found for Your Lost Item!", rec.sent[0].subject)
	assert.Contains(t, rec.sent[0].body, "Hi Jane")
	assert.Contains(t, rec.sent[0].body, "Blue Scarf")

	// state is untouched
	assert.Equal(t, model.ItemStatusPending, load(t, store, "a").Status)

	_, err = c.NotifyOwner(context.Background(), "missing", "Jane")
	assert.ErrorIs(t, err, ErrNotFound)

	c.Notifier = &recorder{err: errors.New("offline")}
	ok, err = c.NotifyOwner(context.Background(), "a", "Jane")
	require.NoError(t, err)
	assert.False(t, ok)
}
