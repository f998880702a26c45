package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/GoArmGo/ShopTrack/internal/core/ports"
	"github.com/GoArmGo/ShopTrack/internal/database/client"
	"github.com/GoArmGo/ShopTrack/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const productColumns = `id, name, stock, price, description, owner_id, created`

const errProductNotFound = "Product not found"

// ProductStorage реализует ports.ProductStorage. Все запросы ограничены owner_id.
type ProductStorage struct {
	client *client.Client
	logger *slog.Logger
}

func NewProductStorage(c *client.Client, logger *slog.Logger) *ProductStorage {
	return &ProductStorage{client: c, logger: logger}
}

// ListProducts возвращает товары владельца, новые первыми.
func (s *ProductStorage) ListProducts(ctx context.Context, owner uuid.UUID) ([]domain.Product, error) {
	start := time.Now()
	q := s.client.Querier(ctx)

	products := []domain.Product{}
	err := sqlx.SelectContext(ctx, q, &products, q.Rebind(`
		SELECT `+productColumns+`
		FROM products
		WHERE owner_id = ?
		ORDER BY created DESC, id DESC`), owner)
	if err != nil {
		s.logger.Error("failed to list products", "owner_id", owner, "error", err)
		return nil, fmt.Errorf("list products: %w", err)
	}

	s.logger.Debug("listed products",
		"owner_id", owner,
		"count", len(products),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return products, nil
}

// GetProduct получает товар по id в пределах владельца.
func (s *ProductStorage) GetProduct(ctx context.Context, owner uuid.UUID, id int64) (*domain.Product, error) {
	q := s.client.Querier(ctx)

	var product domain.Product
	err := sqlx.GetContext(ctx, q, &product, q.Rebind(`
		SELECT `+productColumns+`
		FROM products
		WHERE id = ? AND owner_id = ?`), id, owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.KindNotFound, errProductNotFound, err)
		}
		s.logger.Error("failed to get product", "product_id", id, "error", err)
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return &product, nil
}

// InsertProduct сохраняет товар и возвращает сгенерированный id.
func (s *ProductStorage) InsertProduct(ctx context.Context, product *domain.Product) (int64, error) {
	start := time.Now()
	q := s.client.Querier(ctx)

	var id int64
	err := sqlx.GetContext(ctx, q, &id, q.Rebind(`
		INSERT INTO products (name, stock, price, description, owner_id, created)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`),
		product.Name, product.Stock, product.Price, product.Description, product.OwnerID, product.Created.UTC(),
	)
	if err != nil {
		s.logger.Error("failed to insert product", "owner_id", product.OwnerID, "error", err)
		return 0, fmt.Errorf("insert product: %w", err)
	}

	s.logger.Info("product saved",
		"product_id", id,
		"owner_id", product.OwnerID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return id, nil
}

// UpdateProduct перезаписывает изменяемые поля товара.
func (s *ProductStorage) UpdateProduct(ctx context.Context, product *domain.Product) error {
	q := s.client.Querier(ctx)

	res, err := q.ExecContext(ctx, q.Rebind(`
		UPDATE products
		SET name = ?, stock = ?, price = ?, description = ?
		WHERE id = ? AND owner_id = ?`),
		product.Name, product.Stock, product.Price, product.Description, product.ID, product.OwnerID,
	)
	if err != nil {
		s.logger.Error("failed to update product", "product_id", product.ID, "error", err)
		return fmt.Errorf("update product %d: %w", product.ID, err)
	}
	if err := expectRow(res, errProductNotFound); err != nil {
		return err
	}

	s.logger.Info("product updated", "product_id", product.ID)
	return nil
}

func (s *ProductStorage) DeleteProduct(ctx context.Context, owner uuid.UUID, id int64) error {
	q := s.client.Querier(ctx)

	res, err := q.ExecContext(ctx, q.Rebind(`DELETE FROM products WHERE id = ? AND owner_id = ?`), id, owner)
	if err != nil {
		s.logger.Error("failed to delete product", "product_id", id, "error", err)
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	if err := expectRow(res, errProductNotFound); err != nil {
		return err
	}

	s.logger.Info("product deleted", "product_id", id)
	return nil
}

// ChangeStock выполняет условный UPDATE; строка блокируется до конца транзакции,
// поэтому параллельные изменения одного товара не теряются.
func (s *ProductStorage) ChangeStock(ctx context.Context, owner uuid.UUID, id int64, delta int64) (*ports.StockLevel, error) {
	start := time.Now()
	q := s.client.Querier(ctx)

	// граница сравнивается со stock напрямую, чтобы stock + delta не переполнялся в условии
	bound := `stock <= ?`
	limit := math.MaxInt64 - delta
	if delta < 0 {
		bound = `stock >= ?`
		limit = -delta
	}

	var level ports.StockLevel
	err := sqlx.GetContext(ctx, q, &level, q.Rebind(`
		UPDATE products
		SET stock = stock + ?
		WHERE id = ? AND owner_id = ? AND `+bound+`
		RETURNING name, price, stock`),
		delta, id, owner, limit,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.KindNotFound, errProductNotFound, err)
		}
		s.logger.Error("failed to change stock", "product_id", id, "delta", delta, "error", err)
		return nil, fmt.Errorf("change stock of product %d: %w", id, err)
	}

	s.logger.Info("stock changed",
		"product_id", id,
		"delta", delta,
		"stock", level.Stock,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &level, nil
}

func expectRow(res sql.Result, notFound string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return domain.NewError(domain.KindNotFound, notFound)
	}
	return nil
}
