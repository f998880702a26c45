package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/ShopTrack/internal/database/client"
	"github.com/GoArmGo/ShopTrack/internal/domain"
	"github.com/jmoiron/sqlx"
)

// SessionStorage реализует ports.SessionStorage.
type SessionStorage struct {
	client *client.Client
	logger *slog.Logger
}

func NewSessionStorage(c *client.Client, logger *slog.Logger) *SessionStorage {
	return &SessionStorage{client: c, logger: logger}
}

func (s *SessionStorage) CreateSession(ctx context.Context, session *domain.Session) error {
	q := s.client.Querier(ctx)

	_, err := q.ExecContext(ctx, q.Rebind(`
		INSERT INTO sessions (id, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)`),
		session.ID, session.UserID, session.ExpiresAt.UTC(), session.CreatedAt.UTC(),
	)
	if err != nil {
		s.logger.Error("failed to insert session", "user_id", session.UserID, "error", err)
		return fmt.Errorf("insert session: %w", err)
	}

	s.logger.Info("session created", "user_id", session.UserID, "expires_at", session.ExpiresAt)
	return nil
}

func (s *SessionStorage) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	q := s.client.Querier(ctx)

	var session domain.Session
	err := sqlx.GetContext(ctx, q, &session, q.Rebind(`
		SELECT id, user_id, expires_at, created_at
		FROM sessions WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.KindNotFound, "Session not found", err)
		}
		s.logger.Error("failed to select session", "error", err)
		return nil, fmt.Errorf("select session: %w", err)
	}
	return &session, nil
}

func (s *SessionStorage) DeleteSession(ctx context.Context, id string) error {
	q := s.client.Querier(ctx)

	res, err := q.ExecContext(ctx, q.Rebind(`DELETE FROM sessions WHERE id = ?`), id)
	if err != nil {
		s.logger.Error("failed to delete session", "error", err)
		return fmt.Errorf("delete session: %w", err)
	}

	if n, _ := res.RowsAffected(); n > 0 {
		s.logger.Info("session revoked")
	}
	return nil
}
