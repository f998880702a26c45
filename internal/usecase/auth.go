package usecase

import (
	"context"

	"github.com/GoArmGo/ShopTrack/internal/domain"
	"github.com/google/uuid"
)

// AuthUseCase: менеджер учётных данных и сессий.
type AuthUseCase interface {
	// Register создаёт пользователя и хранит только bcrypt-хэш пароля.
	Register(ctx context.Context, username, password string) (uuid.UUID, error)

	// Authenticate проверяет пароль и выдаёт новый токен сессии на SessionTTL.
	Authenticate(ctx context.Context, username, password string) (*domain.User, string, error)

	// Revoke удаляет сессию; повторный вызов не ошибка.
	Revoke(ctx context.Context, token string) error

	// Resolve возвращает владельца действующей сессии. Срок жизни не продлевается.
	Resolve(ctx context.Context, token string) (uuid.UUID, error)
}
