package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/GoArmGo/ShopTrack/internal/core/ports"
	"github.com/GoArmGo/ShopTrack/internal/domain"
	"github.com/GoArmGo/ShopTrack/internal/messaging/payloads"
	"github.com/GoArmGo/ShopTrack/internal/metrics"
	"github.com/google/uuid"
)

// inventoryUseCase implements InventoryUseCase
type inventoryUseCase struct {
	tx        ports.Transactor
	products  ports.ProductStorage
	history   ports.HistoryStorage
	publisher ports.StockEventPublisher // nil: события не публикуются
	files     ports.FileStorage         // nil: экспорт выключен
	logger    *slog.Logger
	now       func() time.Time
}

// NewInventoryUseCase создает новый экземпляр InventoryUseCase.
// publisher и files могут быть nil.
func NewInventoryUseCase(
	tx ports.Transactor,
	products ports.ProductStorage,
	history ports.HistoryStorage,
	publisher ports.StockEventPublisher,
	files ports.FileStorage,
	logger *slog.Logger,
) InventoryUseCase {
	return &inventoryUseCase{
		tx:        tx,
		products:  products,
		history:   history,
		publisher: publisher,
		files:     files,
		logger:    logger,
		now:       time.Now,
	}
}

func (uc *inventoryUseCase) ListProducts(ctx context.Context, owner uuid.UUID) ([]domain.Product, error) {
	products, err := uc.products.ListProducts(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("usecase: list products: %w", err)
	}
	return products, nil
}

func (uc *inventoryUseCase) GetProduct(ctx context.Context, owner uuid.UUID, id int64) (*domain.Product, error) {
	product, err := uc.products.GetProduct(ctx, owner, id)
	if err != nil {
		return nil, fmt.Errorf("usecase: get product %d: %w", id, err)
	}
	return product, nil
}

func (uc *inventoryUseCase) CreateProduct(ctx context.Context, owner uuid.UUID, input domain.ProductInput) (int64, error) {
	if err := validateProductInput(input); err != nil {
		return 0, err
	}

	now := uc.now()
	product := domain.Product{
		Name:        input.Name,
		Stock:       input.Stock,
		Price:       input.Price,
		Description: input.Description,
		OwnerID:     owner,
		Created:     now,
	}

	var initial *domain.History
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		id, err := uc.products.InsertProduct(ctx, &product)
		if err != nil {
			return err
		}
		product.ID = id

		if product.Stock == 0 {
			return nil
		}

		entry := domain.History{
			ProductID:   id,
			ProductName: product.Name,
			UserID:      owner,
			Price:       product.Price,
			Quantity:    product.Stock,
			Action:      domain.ActionBuy,
			Created:     now,
		}
		if entry.ID, err = uc.history.InsertHistory(ctx, &entry); err != nil {
			return err
		}
		initial = &entry
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("usecase: create product: %w", err)
	}

	uc.logger.Info("product created", "product_id", product.ID, "owner_id", owner, "stock", product.Stock)
	if initial != nil {
		uc.recordMovement(ctx, *initial, product.Stock)
	}
	return product.ID, nil
}

func (uc *inventoryUseCase) UpdateProduct(ctx context.Context, owner uuid.UUID, id int64, input domain.ProductInput) error {
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := uc.products.GetProduct(ctx, owner, id); err != nil {
			return err
		}
		if err := validateProductInput(input); err != nil {
			return err
		}
		return uc.products.UpdateProduct(ctx, &domain.Product{
			ID:          id,
			OwnerID:     owner,
			Name:        input.Name,
			Stock:       input.Stock,
			Price:       input.Price,
			Description: input.Description,
		})
	})
	if err != nil {
		return fmt.Errorf("usecase: update product %d: %w", id, err)
	}

	uc.logger.Info("product updated", "product_id", id, "owner_id", owner)
	return nil
}

func (uc *inventoryUseCase) DeleteProduct(ctx context.Context, owner uuid.UUID, id int64) error {
	if err := uc.products.DeleteProduct(ctx, owner, id); err != nil {
		return fmt.Errorf("usecase: delete product %d: %w", id, err)
	}
	uc.logger.Info("product deleted", "product_id", id, "owner_id", owner)
	return nil
}

func (uc *inventoryUseCase) AddStock(ctx context.Context, owner uuid.UUID, id int64, quantity int64) (*domain.History, error) {
	return uc.moveStock(ctx, owner, id, quantity, domain.ActionBuy)
}

func (uc *inventoryUseCase) RemoveStock(ctx context.Context, owner uuid.UUID, id int64, quantity int64) (*domain.History, error) {
	return uc.moveStock(ctx, owner, id, quantity, domain.ActionSell)
}

// moveStock меняет остаток и добавляет запись журнала в одной транзакции.
// Цена и имя в записи берутся из строки товара в момент изменения.
func (uc *inventoryUseCase) moveStock(ctx context.Context, owner uuid.UUID, id int64, quantity int64, action domain.Action) (*domain.History, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}

	delta := quantity
	if action == domain.ActionSell {
		delta = -quantity
	}

	var (
		entry      domain.History
		stockAfter int64
	)
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		level, err := uc.products.ChangeStock(ctx, owner, id, delta)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				return err
			}
			// строка не обновилась: товара нет, остатка не хватает или он переполнился бы
			product, getErr := uc.products.GetProduct(ctx, owner, id)
			if getErr != nil {
				return getErr
			}
			if action == domain.ActionBuy {
				return domain.Errorf(domain.KindValidation,
					"Stock would exceed the maximum value. Available: %d, requested: %d", product.Stock, quantity)
			}
			return domain.Errorf(domain.KindInsufficientStock,
				"Insufficient stock. Available: %d, requested: %d", product.Stock, quantity)
		}

		entry = domain.History{
			ProductID:   id,
			ProductName: level.Name,
			UserID:      owner,
			Price:       level.Price,
			Quantity:    quantity,
			Action:      action,
			Created:     uc.now(),
		}
		if entry.ID, err = uc.history.InsertHistory(ctx, &entry); err != nil {
			return err
		}
		stockAfter = level.Stock
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("usecase: %s %d of product %d: %w", action, quantity, id, err)
	}

	uc.logger.Info("stock moved",
		"product_id", id,
		"action", action,
		"quantity", quantity,
		"stock", stockAfter,
	)
	uc.recordMovement(ctx, entry, stockAfter)
	return &entry, nil
}

// recordMovement вызывается после commit: ошибка публикации только логируется.
func (uc *inventoryUseCase) recordMovement(ctx context.Context, entry domain.History, stockAfter int64) {
	metrics.RecordStockMovement(string(entry.Action), entry.Quantity)

	if uc.publisher == nil {
		return
	}
	payload := payloads.NewStockMovementPayload(entry, stockAfter)
	if err := uc.publisher.PublishStockMovement(context.WithoutCancel(ctx), payload); err != nil {
		uc.logger.Warn("failed to publish stock movement",
			"history_id", entry.ID,
			"product_id", entry.ProductID,
			"error", err,
		)
	}
}

func (uc *inventoryUseCase) ListHistory(ctx context.Context, owner uuid.UUID) ([]domain.History, error) {
	entries, err := uc.history.ListHistory(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("usecase: list history: %w", err)
	}
	return entries, nil
}

func (uc *inventoryUseCase) ListProductHistory(ctx context.Context, owner uuid.UUID, productID int64) ([]domain.History, error) {
	if _, err := uc.products.GetProduct(ctx, owner, productID); err != nil {
		return nil, fmt.Errorf("usecase: product history %d: %w", productID, err)
	}

	entries, err := uc.history.ListProductHistory(ctx, owner, productID)
	if err != nil {
		return nil, fmt.Errorf("usecase: product history %d: %w", productID, err)
	}
	return entries, nil
}

var historyCSVHeader = []string{"id", "created", "action", "product_id", "product_name", "quantity", "price"}

func (uc *inventoryUseCase) ExportHistory(ctx context.Context, owner uuid.UUID) (string, error) {
	if uc.files == nil {
		return "", domain.NewError(domain.KindInternal, "History export is not configured")
	}

	entries, err := uc.history.ListHistory(ctx, owner)
	if err != nil {
		return "", fmt.Errorf("usecase: export history: %w", err)
	}
	if len(entries) == 0 {
		return "", domain.NewError(domain.KindNotFound, "No transaction history found")
	}

	body, err := renderHistoryCSV(entries)
	if err != nil {
		return "", fmt.Errorf("usecase: render history csv: %w", err)
	}

	now := uc.now().UTC()
	key := fmt.Sprintf("history-exports/%s/%s.csv", owner, now.Format("20060102T150405Z"))
	url, err := uc.files.UploadFile(ctx, key, bytes.NewReader(body), "text/csv")
	if err != nil {
		return "", fmt.Errorf("usecase: upload history export: %w", err)
	}

	uc.logger.Info("history exported", "owner_id", owner, "entries", len(entries), "key", key)
	return url, nil
}

func renderHistoryCSV(entries []domain.History) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(historyCSVHeader); err != nil {
		return nil, err
	}
	for _, e := range entries {
		record := []string{
			strconv.FormatInt(e.ID, 10),
			e.Created.UTC().Format(time.RFC3339),
			string(e.Action),
			strconv.FormatInt(e.ProductID, 10),
			e.ProductName,
			strconv.FormatInt(e.Quantity, 10),
			strconv.FormatFloat(e.Price, 'f', 2, 64),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
