package storage

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoArmGo/ShopTrack/internal/database/client"
	"github.com/GoArmGo/ShopTrack/internal/domain"
	"github.com/GoArmGo/ShopTrack/internal/logger"
)

type testStores struct {
	client   *client.Client
	users    *UserStorage
	sessions *SessionStorage
	products *ProductStorage
	history  *HistoryStorage
}

func newTestStores(t *testing.T) *testStores {
	t.Helper()

	log := logger.Discard()
	c, err := client.Open("sqlite://:memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.Migrate())

	return &testStores{
		client:   c,
		users:    NewUserStorage(c, log),
		sessions: NewSessionStorage(c, log),
		products: NewProductStorage(c, log),
		history:  NewHistoryStorage(c, log),
	}
}

func (s *testStores) createUser(t *testing.T, username string) uuid.UUID {
	t.Helper()
	u := &domain.User{ID: uuid.New(), Username: username, PasswordHash: "hash", CreatedAt: time.Now()}
	require.NoError(t, s.users.CreateUser(context.Background(), u))
	return u.ID
}

func (s *testStores) createProduct(t *testing.T, owner uuid.UUID, name string, stock int64, created time.Time) int64 {
	t.Helper()
	id, err := s.products.InsertProduct(context.Background(), &domain.Product{
		Name: name, Stock: stock, Price: 5, OwnerID: owner, Created: created,
	})
	require.NoError(t, err)
	return id
}

func TestUserStorage(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()

	id := s.createUser(t, "alice")

	got, err := s.users.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)

	err = s.users.CreateUser(ctx, &domain.User{ID: uuid.New(), Username: "alice", PasswordHash: "x", CreatedAt: time.Now()})
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, "User alice is already registered.", domain.MessageOf(err))

	_, err = s.users.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionStorage(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()
	userID := s.createUser(t, "alice")

	now := time.Now().UTC().Truncate(time.Second)
	session := &domain.Session{ID: "token-1", UserID: userID, CreatedAt: now, ExpiresAt: now.Add(domain.SessionTTL)}
	require.NoError(t, s.sessions.CreateSession(ctx, session))

	got, err := s.sessions.GetSession(ctx, "token-1")
	require.NoError(t, err)
	assert.Equal(t, userID, got.UserID)
	assert.True(t, got.ExpiresAt.Equal(session.ExpiresAt))

	require.NoError(t, s.sessions.DeleteSession(ctx, "token-1"))
	require.NoError(t, s.sessions.DeleteSession(ctx, "token-1"), "delete is idempotent")

	_, err = s.sessions.GetSession(ctx, "token-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductStorageOwnershipScoping(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()
	alice := s.createUser(t, "alice")
	bob := s.createUser(t, "bob")

	id := s.createProduct(t, alice, "Widget", 10, time.Now())

	_, err := s.products.GetProduct(ctx, bob, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = s.products.UpdateProduct(ctx, &domain.Product{ID: id, OwnerID: bob, Name: "Stolen", Stock: 1, Price: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, s.products.DeleteProduct(ctx, bob, id), domain.ErrNotFound)

	_, err = s.products.ChangeStock(ctx, bob, id, 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	bobs, err := s.products.ListProducts(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, bobs)

	got, err := s.products.GetProduct(ctx, alice, id)
	require.NoError(t, err)
	assert.Equal(t, "Widget", got.Name)
	assert.Equal(t, int64(10), got.Stock)
}

func TestProductStorageListOrder(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()
	owner := s.createUser(t, "alice")

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	first := s.createProduct(t, owner, "first", 0, base)
	second := s.createProduct(t, owner, "second", 0, base.Add(time.Minute))
	tie := s.createProduct(t, owner, "tie", 0, base.Add(time.Minute))

	products, err := s.products.ListProducts(ctx, owner)
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, []int64{tie, second, first}, []int64{products[0].ID, products[1].ID, products[2].ID})
}

func TestProductStorageUpdateAndDelete(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()
	owner := s.createUser(t, "alice")
	id := s.createProduct(t, owner, "Widget", 3, time.Now())

	desc := "blue"
	require.NoError(t, s.products.UpdateProduct(ctx, &domain.Product{
		ID: id, OwnerID: owner, Name: "Gadget", Stock: 7, Price: 2.5, Description: &desc,
	}))

	got, err := s.products.GetProduct(ctx, owner, id)
	require.NoError(t, err)
	assert.Equal(t, "Gadget", got.Name)
	assert.Equal(t, int64(7), got.Stock)
	assert.InDelta(t, 2.5, got.Price, 1e-9)
	require.NotNil(t, got.Description)
	assert.Equal(t, "blue", *got.Description)

	require.NoError(t, s.products.DeleteProduct(ctx, owner, id))
	_, err = s.products.GetProduct(ctx, owner, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChangeStockRefusesNegative(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()
	owner := s.createUser(t, "alice")
	id := s.createProduct(t, owner, "Widget", 10, time.Now())

	level, err := s.products.ChangeStock(ctx, owner, id, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(15), level.Stock)
	assert.Equal(t, "Widget", level.Name)
	assert.InDelta(t, 5.0, level.Price, 1e-9)

	_, err = s.products.ChangeStock(ctx, owner, id, -20)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	level, err = s.products.ChangeStock(ctx, owner, id, -15)
	require.NoError(t, err)
	assert.Zero(t, level.Stock)
}

func TestChangeStockRefusesOverflow(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()
	owner := s.createUser(t, "alice")
	id := s.createProduct(t, owner, "Widget", 10, time.Now())

	_, err := s.products.ChangeStock(ctx, owner, id, math.MaxInt64)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := s.products.GetProduct(ctx, owner, id)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.Stock)

	level, err := s.products.ChangeStock(ctx, owner, id, math.MaxInt64-10)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), level.Stock)

	level, err = s.products.ChangeStock(ctx, owner, id, -math.MaxInt64)
	require.NoError(t, err)
	assert.Zero(t, level.Stock)
}

func TestHistoryStorage(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()
	alice := s.createUser(t, "alice")
	bob := s.createUser(t, "bob")
	widget := s.createProduct(t, alice, "Widget", 0, time.Now())
	gadget := s.createProduct(t, alice, "Gadget", 0, time.Now())

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	entries := []domain.History{
		{ProductID: widget, ProductName: "Widget", UserID: alice, Price: 5, Quantity: 10, Action: domain.ActionBuy, Created: base},
		{ProductID: gadget, ProductName: "Gadget", UserID: alice, Price: 2, Quantity: 1, Action: domain.ActionBuy, Created: base.Add(time.Second)},
		{ProductID: widget, ProductName: "Widget", UserID: alice, Price: 5, Quantity: 4, Action: domain.ActionSell, Created: base.Add(2 * time.Second)},
	}
	for i := range entries {
		id, err := s.history.InsertHistory(ctx, &entries[i])
		require.NoError(t, err)
		assert.Positive(t, id)
	}

	all, err := s.history.ListHistory(ctx, alice)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, domain.ActionSell, all[0].Action)
	assert.Equal(t, "Gadget", all[1].ProductName)

	widgetHistory, err := s.history.ListProductHistory(ctx, alice, widget)
	require.NoError(t, err)
	require.Len(t, widgetHistory, 2)
	assert.Equal(t, int64(6), domain.ReplayStock(widgetHistory))

	none, err := s.history.ListHistory(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, none)

	// журнал переживает удаление товара
	require.NoError(t, s.products.DeleteProduct(ctx, alice, widget))
	widgetHistory, err = s.history.ListProductHistory(ctx, alice, widget)
	require.NoError(t, err)
	assert.Len(t, widgetHistory, 2)
}
