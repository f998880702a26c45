package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/ShopTrack/internal/database/client"
	"github.com/GoArmGo/ShopTrack/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const historyColumns = `id, product_id, product_name, user_id, price, quantity, action, created`

// HistoryStorage реализует ports.HistoryStorage. Записи только добавляются.
type HistoryStorage struct {
	client *client.Client
	logger *slog.Logger
}

func NewHistoryStorage(c *client.Client, logger *slog.Logger) *HistoryStorage {
	return &HistoryStorage{client: c, logger: logger}
}

func (s *HistoryStorage) InsertHistory(ctx context.Context, entry *domain.History) (int64, error) {
	q := s.client.Querier(ctx)

	var id int64
	err := sqlx.GetContext(ctx, q, &id, q.Rebind(`
		INSERT INTO history (product_id, product_name, user_id, price, quantity, action, created)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		entry.ProductID, entry.ProductName, entry.UserID, entry.Price, entry.Quantity, entry.Action, entry.Created.UTC(),
	)
	if err != nil {
		s.logger.Error("failed to insert history entry",
			"product_id", entry.ProductID,
			"action", entry.Action,
			"error", err,
		)
		return 0, fmt.Errorf("insert history entry: %w", err)
	}

	s.logger.Info("history entry recorded",
		"history_id", id,
		"product_id", entry.ProductID,
		"action", entry.Action,
		"quantity", entry.Quantity,
	)
	return id, nil
}

// ListHistory возвращает журнал владельца, новые записи первыми.
func (s *HistoryStorage) ListHistory(ctx context.Context, owner uuid.UUID) ([]domain.History, error) {
	q := s.client.Querier(ctx)

	entries := []domain.History{}
	err := sqlx.SelectContext(ctx, q, &entries, q.Rebind(`
		SELECT `+historyColumns+`
		FROM history
		WHERE user_id = ?
		ORDER BY created DESC, id DESC`), owner)
	if err != nil {
		s.logger.Error("failed to list history", "user_id", owner, "error", err)
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}

func (s *HistoryStorage) ListProductHistory(ctx context.Context, owner uuid.UUID, productID int64) ([]domain.History, error) {
	q := s.client.Querier(ctx)

	entries := []domain.History{}
	err := sqlx.SelectContext(ctx, q, &entries, q.Rebind(`
		SELECT `+historyColumns+`
		FROM history
		WHERE product_id = ? AND user_id = ?
		ORDER BY created DESC, id DESC`), productID, owner)
	if err != nil {
		s.logger.Error("failed to list product history", "product_id", productID, "error", err)
		return nil, fmt.Errorf("list history of product %d: %w", productID, err)
	}
	return entries, nil
}
