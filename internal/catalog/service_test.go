package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/itemstore"
	"github.com/erazemk/lostfound/internal/lifecycle"
	"github.com/erazemk/lostfound/internal/matching"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/notify"
)

// memCache mirrors matchcache: entries live under a generation that
// Invalidate bumps.
type memCache struct {
	mu          sync.Mutex
	gen         int64
	entries     map[string][]matching.Candidate
	gets, puts  int
	invalidated int
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]matching.Candidate{}}
}

func cacheKey(gen int64, id string) string {
	return fmt.Sprintf("%d:%s", gen, id)
}

func (c *memCache) Get(_ context.Context, id string) ([]matching.Candidate, int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	m, ok := c.entries[cacheKey(c.gen, id)]
	return m, c.gen, ok
}

func (c *memCache) Put(_ context.Context, gen int64, id string, m []matching.Candidate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts++
	c.entries[cacheKey(gen, id)] = m
}

func (c *memCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
	c.gen++
}

// loadHook runs fn once, after the first Load has taken its snapshot and
// before that snapshot is returned.
type loadHook struct {
	itemstore.Store
	once sync.Once
	fn   func()
}

func (h *loadHook) Load(ctx context.Context) ([]model.Item, error) {
	items, err := h.Store.Load(ctx)
	h.once.Do(h.fn)
	return items, err
}

type mailbox struct {
	mu   sync.Mutex
	to   []string
	subj []string
	err  error
}

func (m *mailbox) Send(_ context.Context, to, subject, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.to = append(m.to, to)
	m.subj = append(m.subj, subject)
	return nil
}

func newService(t *testing.T, items ...model.Item) *Service {
	t.Helper()
	return &Service{
		Items:      itemstore.NewMemory(items...),
		DB:         db.NewTestDB(t),
		Notifier:   &mailbox{},
		UploadsDir: filepath.Join(t.TempDir(), "uploads"),
	}
}

func stored(id, typ, name, status string, verified bool) model.Item {
	return model.Item{
		ID:          id,
		Type:        typ,
		Name:        name,
		Category:    "wallet",
		Location:    "Library",
		Color:       "black",
		Description: "A " + name,
		Status:      status,
		Verified:    verified,
		ReportedBy:  id + "@example.com",
	}
}

func validReport() ReportInput {
	return ReportInput{
		Name:        " Black Wallet ",
		Category:    "wallet",
		Type:        "Lost",
		Location:    "Library",
		Color:       "black",
		Description: "Leather, two cards inside",
		ReportedBy:  "Owner@Example.com",
	}
}

func TestReportCreatesPendingItem(t *testing.T) {
	svc := newService(t)
	cache := newMemCache()
	svc.Cache = cache

	item, err := svc.Report(context.Background(), validReport(), nil)
	require.NoError(t, err)

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "Black Wallet", item.Name)
	assert.Equal(t, model.ItemTypeLost, item.Type)
	assert.Equal(t, model.ItemStatusPending, item.Status)
	assert.False(t, item.Verified)
	assert.Equal(t, "owner@example.com", item.ReportedBy)
	assert.False(t, item.Date.IsZero())
	assert.Equal(t, 1, cache.invalidated)

	got, err := svc.Get(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)
}

func TestReportValidation(t *testing.T) {
	svc := newService(t)

	in := validReport()
	in.Name = "  "
	in.Type = "stolen"
	in.Description = ""

	_, err := svc.Report(context.Background(), in, nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name is required", verr.Fields["name"])
	assert.Equal(t, "type must be one of: lost, found", verr.Fields["type"])
	assert.Contains(t, verr.Fields, "description")
	assert.NotContains(t, verr.Fields, "color")

	items, _ := svc.All(context.Background())
	assert.Empty(t, items)
}

func TestReportWithImage(t *testing.T) {
	svc := newService(t)

	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	img.Set(1, 1, color.RGBA{255, 0, 0, 255})
	require.NoError(t, png.Encode(&buf, img))

	item, err := svc.Report(context.Background(), validReport(), &buf)
	require.NoError(t, err)
	require.NotEmpty(t, item.Image)

	_, err = os.Stat(filepath.Join(svc.UploadsDir, item.Image))
	require.NoError(t, err)

	svc.RemoveImage(item)
	_, err = os.Stat(filepath.Join(svc.UploadsDir, item.Image))
	assert.True(t, os.IsNotExist(err))
}

func TestReportRejectsBadImage(t *testing.T) {
	svc := newService(t)

	_, err := svc.Report(context.Background(), validReport(), bytes.NewReader([]byte("nope")))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "image")
}

func TestBrowseAndSearch(t *testing.T) {
	svc := newService(t,
		stored("p", model.ItemTypeLost, "Pending Wallet", model.ItemStatusPending, false),
		stored("a", model.ItemTypeLost, "Black Wallet", model.ItemStatusActive, true),
		stored("m", model.ItemTypeFound, "Matched Wallet", model.ItemStatusMatched, true),
		stored("f", model.ItemTypeFound, "Umbrella", model.ItemStatusActive, true),
	)
	ctx := context.Background()

	browse, err := svc.Browse(ctx)
	require.NoError(t, err)
	require.Len(t, browse, 2)
	assert.Equal(t, "a", browse[0].ID)
	assert.Equal(t, "f", browse[1].ID)

	res, err := svc.Search(ctx, SearchQuery{Q: "WALLET"})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "a", res[0].ID)

	res, _ = svc.Search(ctx, SearchQuery{Type: model.ItemTypeFound})
	require.Len(t, res, 1)
	assert.Equal(t, "f", res[0].ID)

	// description matches too
	res, _ = svc.Search(ctx, SearchQuery{Q: "a umbrella"})
	require.Len(t, res, 1)

	res, _ = svc.Search(ctx, SearchQuery{Category: "Wallet"})
	assert.Empty(t, res)
}

func TestMineAllStats(t *testing.T) {
	svc := newService(t,
		stored("p", model.ItemTypeLost, "Pending", model.ItemStatusPending, false),
		stored("a", model.ItemTypeLost, "Active", model.ItemStatusActive, true),
		stored("m", model.ItemTypeFound, "Matched", model.ItemStatusMatched, true),
	)
	ctx := context.Background()

	mine, err := svc.Mine(ctx, "p@example.com")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "p", mine[0].ID)

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Stats{Pending: 1, Active: 1, Verified: 2, Matched: 1, Total: 2}, stats)
}

func TestMatchesUsesCache(t *testing.T) {
	svc := newService(t,
		stored("a", model.ItemTypeLost, "Black Wallet", model.ItemStatusActive, true),
		stored("b", model.ItemTypeFound, "Black Wallet", model.ItemStatusPending, false),
	)
	cache := newMemCache()
	svc.Cache = cache
	ctx := context.Background()

	first, err := svc.Matches(ctx, "a")
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "b", first[0].ItemID)
	assert.Equal(t, 1, cache.puts)

	second, err := svc.Matches(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.puts)

	_, err = svc.Matches(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMatchesDropsResultInvalidatedDuringLoad(t *testing.T) {
	items := itemstore.NewMemory(
		stored("a", model.ItemTypeLost, "Black Wallet", model.ItemStatusPending, false),
		stored("b", model.ItemTypeFound, "Black Wallet", model.ItemStatusActive, true),
		stored("c", model.ItemTypeLost, "Black Wallet", model.ItemStatusActive, true),
	)
	cache := newMemCache()
	ctrl := &lifecycle.Controller{Items: items, Notifier: notify.Noop{}, Cache: cache}
	ctx := context.Background()

	hook := &loadHook{Store: items}
	hook.fn = func() {
		res, err := ctrl.Verify(ctx, "a")
		require.NoError(t, err)
		require.Equal(t, "b", res.AutoMatchedWith)
	}

	svc := newService(t)
	svc.Items = hook
	svc.Cache = cache

	// The first call works on the snapshot taken before the verify.
	stale, err := svc.Matches(ctx, "c")
	require.NoError(t, err)
	require.Len(t, stale, 1)

	fresh, err := svc.Matches(ctx, "c")
	require.NoError(t, err)
	assert.Empty(t, fresh, "matched item b must not be served from the cache")
	assert.Equal(t, 2, cache.puts)
}

func TestMatchesEmptyIsNotNil(t *testing.T) {
	svc := newService(t, stored("a", model.ItemTypeLost, "Keys", model.ItemStatusActive, true))
	matches, err := svc.Matches(context.Background(), "a")
	require.NoError(t, err)
	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Name: "Jane", Email: "Jane@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, model.RoleUser, user.Role)

	_, err = svc.Register(ctx, RegisterInput{Name: "Jane", Email: "jane@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	got, err := svc.Authenticate(ctx, "JANE@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx, "jane@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	svc := newService(t)

	_, err := svc.Register(context.Background(), RegisterInput{Name: "J", Email: "not-an-email", Password: "12345"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "invalid email format", verr.Fields["email"])
	assert.Equal(t, "password must be at least 6 characters", verr.Fields["password"])
}

func TestChangePassword(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Name: "Jane", Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword(ctx, user.ID, "wrong", "newpass1"), ErrInvalidCredentials)

	var verr *ValidationError
	assert.ErrorAs(t, svc.ChangePassword(ctx, user.ID, "secret1", "short"), &verr)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "secret1", "newpass1"))
	_, err = svc.Authenticate(ctx, "jane@example.com", "newpass1")
	assert.NoError(t, err)
}

func TestContact(t *testing.T) {
	svc := newService(t)
	box := svc.Notifier.(*mailbox)
	ctx := context.Background()

	msg, err := svc.Contact(ctx, ContactInput{
		Name: "Jane", Email: "Jane@Example.com", Subject: "My wallet", Message: "Is it there?",
	})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", msg.Email)
	assert.Equal(t, []string{"jane@example.com"}, box.to)
	assert.Equal(t, []string{"We Received Your Message"}, box.subj)

	msgs, err := svc.ContactMessages(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "My wallet", msgs[0].Subject)

	_, err = svc.Contact(ctx, ContactInput{Name: "Jane"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 3)
}

func TestContactReceiptFailureIsIgnored(t *testing.T) {
	svc := newService(t)
	svc.Notifier = &mailbox{err: errors.New("smtp down")}

	_, err := svc.Contact(context.Background(), ContactInput{
		Name: "Jane", Email: "jane@example.com", Subject: "Hi", Message: "Hello",
	})
	require.NoError(t, err)
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		"type": "type must be one of: lost, found",
		"name": "name is required",
	}}
	assert.Equal(t, "name is required; type must be one of: lost, found", err.Error())
}
