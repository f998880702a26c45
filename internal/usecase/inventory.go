package usecase

import (
	"context"

	"github.com/GoArmGo/ShopTrack/internal/domain"
	"github.com/google/uuid"
)

// InventoryUseCase определяет бизнес-логику учёта товаров и журнала остатков.
// Владелец всегда передаётся явно; чужие товары неотличимы от отсутствующих.
type InventoryUseCase interface {
	// ListProducts возвращает товары владельца, новые первыми. Пустой список: не ошибка.
	ListProducts(ctx context.Context, owner uuid.UUID) ([]domain.Product, error)

	GetProduct(ctx context.Context, owner uuid.UUID, id int64) (*domain.Product, error)

	// CreateProduct сохраняет товар; ненулевой начальный остаток записывается
	// в журнал как buy в той же транзакции.
	CreateProduct(ctx context.Context, owner uuid.UUID, input domain.ProductInput) (int64, error)

	// UpdateProduct перезаписывает поля товара. Журнал не меняется.
	UpdateProduct(ctx context.Context, owner uuid.UUID, id int64, input domain.ProductInput) error

	// DeleteProduct удаляет товар; записи журнала сохраняются.
	DeleteProduct(ctx context.Context, owner uuid.UUID, id int64) error

	// AddStock и RemoveStock меняют остаток и пишут запись журнала атомарно.
	AddStock(ctx context.Context, owner uuid.UUID, id int64, quantity int64) (*domain.History, error)
	RemoveStock(ctx context.Context, owner uuid.UUID, id int64, quantity int64) (*domain.History, error)

	ListHistory(ctx context.Context, owner uuid.UUID) ([]domain.History, error)

	// ListProductHistory сначала проверяет владение товаром.
	ListProductHistory(ctx context.Context, owner uuid.UUID, productID int64) ([]domain.History, error)

	// ExportHistory выгружает журнал владельца в CSV в файловое хранилище и возвращает URL.
	ExportHistory(ctx context.Context, owner uuid.UUID) (string, error)
}
