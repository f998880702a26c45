package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionTTL: фиксированное время жизни сессии с момента выдачи (без продления).
const SessionTTL = 30 * 24 * time.Hour

// Session: строка таблицы sessions. ID и есть bearer-токен.
type Session struct {
	ID        string    `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

// ActiveAt сообщает, действительна ли сессия в момент now.
func (s Session) ActiveAt(now time.Time) bool {
	return s.ExpiresAt.After(now)
}
