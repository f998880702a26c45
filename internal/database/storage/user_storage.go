package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/ShopTrack/internal/database/client"
	"github.com/GoArmGo/ShopTrack/internal/domain"
	"github.com/jmoiron/sqlx"
)

// UserStorage реализует интерфейс ports.UserStorage поверх sqlx
type UserStorage struct {
	client *client.Client
	logger *slog.Logger
}

// NewUserStorage создает новый экземпляр UserStorage
func NewUserStorage(c *client.Client, logger *slog.Logger) *UserStorage {
	return &UserStorage{client: c, logger: logger}
}

// CreateUser сохраняет пользователя; занятое имя возвращается как ошибка вида Conflict.
func (s *UserStorage) CreateUser(ctx context.Context, user *domain.User) error {
	start := time.Now()
	q := s.client.Querier(ctx)

	_, err := q.ExecContext(ctx, q.Rebind(`
		INSERT INTO users (id, username, password_hash, created_at)
		VALUES (?, ?, ?, ?)`),
		user.ID, user.Username, user.PasswordHash, user.CreatedAt.UTC(),
	)
	if err != nil {
		if client.IsUniqueViolation(err) {
			s.logger.Warn("username already taken", "username", user.Username)
			return domain.WrapError(domain.KindConflict,
				fmt.Sprintf("User %s is already registered.", user.Username), err)
		}
		s.logger.Error("failed to insert user", "username", user.Username, "error", err)
		return fmt.Errorf("insert user: %w", err)
	}

	s.logger.Info("user created",
		"user_id", user.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// GetUserByUsername получает пользователя по имени.
func (s *UserStorage) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	q := s.client.Querier(ctx)

	var user domain.User
	err := sqlx.GetContext(ctx, q, &user, q.Rebind(`
		SELECT id, username, password_hash, created_at
		FROM users WHERE username = ?`), username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.KindNotFound, "User not found", err)
		}
		s.logger.Error("failed to select user", "username", username, "error", err)
		return nil, fmt.Errorf("select user by username: %w", err)
	}
	return &user, nil
}
