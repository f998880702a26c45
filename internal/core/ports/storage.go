package ports

import (
	"context"

	"github.com/GoArmGo/ShopTrack/internal/domain"
	"github.com/google/uuid"
)

// Transactor выполняет fn в одной транзакции хранилища.
// Все вызовы хранилищ с переданным в fn контекстом попадают в эту транзакцию.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserStorage определяет методы для взаимодействия с хранилищем пользователей
type UserStorage interface {
	// CreateUser возвращает ошибку вида Conflict, если имя уже занято.
	CreateUser(ctx context.Context, user *domain.User) error
	// GetUserByUsername возвращает ошибку вида NotFound для неизвестного имени.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
}

// SessionStorage хранит выданные bearer-токены.
type SessionStorage interface {
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	// DeleteSession идемпотентна: отсутствие строки не ошибка.
	DeleteSession(ctx context.Context, id string) error
}

// StockLevel: состояние товара сразу после изменения остатка.
type StockLevel struct {
	Name  string  `db:"name"`
	Price float64 `db:"price"`
	Stock int64   `db:"stock"`
}

// ProductStorage определяет методы для работы с товарами.
// Каждый метод фильтрует по owner: чужой товар неотличим от отсутствующего.
type ProductStorage interface {
	ListProducts(ctx context.Context, owner uuid.UUID) ([]domain.Product, error)
	GetProduct(ctx context.Context, owner uuid.UUID, id int64) (*domain.Product, error)
	InsertProduct(ctx context.Context, product *domain.Product) (int64, error)
	UpdateProduct(ctx context.Context, product *domain.Product) error
	DeleteProduct(ctx context.Context, owner uuid.UUID, id int64) error

	// ChangeStock атомарно прибавляет delta к остатку, если результат не уходит в минус
	// и не превышает MaxInt64.
	// Ошибка вида NotFound означает, что строка не обновлена: товара нет, он чужой
	// либо остатка не хватает или он переполнился бы.
	ChangeStock(ctx context.Context, owner uuid.UUID, id int64, delta int64) (*StockLevel, error)
}

// HistoryStorage: журнал движения остатков (только добавление и чтение).
type HistoryStorage interface {
	InsertHistory(ctx context.Context, entry *domain.History) (int64, error)
	ListHistory(ctx context.Context, owner uuid.UUID) ([]domain.History, error)
	ListProductHistory(ctx context.Context, owner uuid.UUID, productID int64) ([]domain.History, error)
}
