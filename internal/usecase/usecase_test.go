package usecase

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/GoArmGo/ShopTrack/internal/database/client"
	"github.com/GoArmGo/ShopTrack/internal/database/storage"
	"github.com/GoArmGo/ShopTrack/internal/logger"
	"github.com/GoArmGo/ShopTrack/internal/messaging/payloads"
)

// fakePublisher запоминает опубликованные события.
type fakePublisher struct {
	mu     sync.Mutex
	events []payloads.StockMovementPayload
	err    error
}

func (p *fakePublisher) PublishStockMovement(_ context.Context, payload payloads.StockMovementPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, payload)
	return nil
}

func (p *fakePublisher) published() []payloads.StockMovementPayload {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]payloads.StockMovementPayload(nil), p.events...)
}

type fakeFiles struct {
	key         string
	body        string
	contentType string
}

func (f *fakeFiles) UploadFile(_ context.Context, key string, reader io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	f.key, f.body, f.contentType = key, string(data), contentType
	return "http://files.local/" + key, nil
}

type fixture struct {
	auth      *authUseCase
	inventory *inventoryUseCase
	publisher *fakePublisher
	files     *fakeFiles
	clock     *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := logger.Discard()
	c, err := client.Open("sqlite://:memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.Migrate())

	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }

	auth := NewAuthUseCase(storage.NewUserStorage(c, log), storage.NewSessionStorage(c, log), bcrypt.MinCost, log).(*authUseCase)
	auth.now = now

	publisher := &fakePublisher{}
	files := &fakeFiles{}
	inventory := NewInventoryUseCase(c,
		storage.NewProductStorage(c, log),
		storage.NewHistoryStorage(c, log),
		publisher, files, log,
	).(*inventoryUseCase)
	inventory.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	return &fixture{auth: auth, inventory: inventory, publisher: publisher, files: files, clock: &clock}
}
