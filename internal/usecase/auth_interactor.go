package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/GoArmGo/ShopTrack/internal/core/ports"
	"github.com/GoArmGo/ShopTrack/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenBytes     = 32 // 256 бит энтропии
	tokenHexLength = tokenBytes * 2
)

// authUseCase implements AuthUseCase
type authUseCase struct {
	users      ports.UserStorage
	sessions   ports.SessionStorage
	logger     *slog.Logger
	bcryptCost int
	random     io.Reader
	now        func() time.Time
}

// NewAuthUseCase создает новый экземпляр AuthUseCase.
// bcryptCost 0 означает bcrypt.DefaultCost.
func NewAuthUseCase(
	users ports.UserStorage,
	sessions ports.SessionStorage,
	bcryptCost int,
	logger *slog.Logger,
) AuthUseCase {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &authUseCase{
		users:      users,
		sessions:   sessions,
		logger:     logger,
		bcryptCost: bcryptCost,
		random:     rand.Reader,
		now:        time.Now,
	}
}

func (uc *authUseCase) Register(ctx context.Context, username, password string) (uuid.UUID, error) {
	if username == "" {
		return uuid.Nil, domain.NewError(domain.KindValidation, "Username is required.")
	}
	if password == "" {
		return uuid.Nil, domain.NewError(domain.KindValidation, "Password is required.")
	}

	hash, err := bcrypt.GenerateFromPassword(passwordDigest(password), uc.bcryptCost)
	if err != nil {
		return uuid.Nil, fmt.Errorf("usecase: hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    uc.now(),
	}
	if err := uc.users.CreateUser(ctx, user); err != nil {
		return uuid.Nil, fmt.Errorf("usecase: register %q: %w", username, err)
	}

	uc.logger.Info("user registered", "user_id", user.ID, "username", username)
	return user.ID, nil
}

func (uc *authUseCase) Authenticate(ctx context.Context, username, password string) (*domain.User, string, error) {
	if username == "" {
		return nil, "", domain.NewError(domain.KindValidation, "Username is required.")
	}
	if password == "" {
		return nil, "", domain.NewError(domain.KindValidation, "Password is required.")
	}

	user, err := uc.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", domain.WrapError(domain.KindNotFound, "Incorrect username.", err)
		}
		return nil, "", fmt.Errorf("usecase: load user %q: %w", username, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), passwordDigest(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, "", domain.WrapError(domain.KindInvalidCredentials, "Incorrect password.", err)
		}
		return nil, "", fmt.Errorf("usecase: compare password hash: %w", err)
	}

	token, err := uc.newToken()
	if err != nil {
		return nil, "", err
	}

	now := uc.now()
	session := &domain.Session{
		ID:        token,
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(domain.SessionTTL),
	}
	if err := uc.sessions.CreateSession(ctx, session); err != nil {
		return nil, "", fmt.Errorf("usecase: persist session: %w", err)
	}

	uc.logger.Info("user logged in", "user_id", user.ID, "expires_at", session.ExpiresAt)
	return user, token, nil
}

func (uc *authUseCase) Revoke(ctx context.Context, token string) error {
	if err := uc.sessions.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("usecase: revoke session: %w", err)
	}
	return nil
}

func (uc *authUseCase) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	if !wellFormedToken(token) {
		return uuid.Nil, domain.NewError(domain.KindUnauthorized, "Unauthorized")
	}

	session, err := uc.sessions.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return uuid.Nil, domain.WrapError(domain.KindUnauthorized, "Unauthorized", err)
		}
		return uuid.Nil, fmt.Errorf("usecase: resolve session: %w", err)
	}

	if !session.ActiveAt(uc.now()) {
		uc.logger.Debug("expired session presented", "user_id", session.UserID, "expires_at", session.ExpiresAt)
		return uuid.Nil, domain.NewError(domain.KindUnauthorized, "Unauthorized")
	}
	return session.UserID, nil
}

// passwordDigest сжимает пароль до 44 байт base64(SHA-256) перед bcrypt,
// который учитывает только первые 72 байта и отвергает более длинный ввод.
func passwordDigest(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

// newToken читает 256 бит из криптостойкого источника.
func (uc *authUseCase) newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := io.ReadFull(uc.random, buf); err != nil {
		return "", fmt.Errorf("usecase: generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func wellFormedToken(token string) bool {
	if len(token) != tokenHexLength {
		return false
	}
	for _, c := range token {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
