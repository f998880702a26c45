package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/ShopTrack/internal/messaging/payloads"
	"github.com/GoArmGo/ShopTrack/internal/metrics"
)

// runWorker запускает потребителя RabbitMQ и обрабатывает события движения остатков.
func (a *App) runWorker(ctx context.Context) error {
	if a.stockEventConsumer == nil {
		return errors.New("worker requires RABBITMQ_URL to be set")
	}

	messageHandler := newStockEventHandler(a.logger, int64(a.Config.LowStockThreshold))

	if err := a.stockEventConsumer.StartConsumingStockMovements(ctx, messageHandler); err != nil {
		return fmt.Errorf("start rabbitmq consumer: %w", err)
	}
	a.logger.Info("worker started, waiting for stock movements", "low_stock_threshold", a.Config.LowStockThreshold)

	<-ctx.Done()
	a.logger.Info("shutdown signal received, stopping worker")
	return nil
}

// newStockEventHandler логирует каждое движение и предупреждает,
// когда остаток опустился до порога или ниже.
func newStockEventHandler(logger *slog.Logger, lowStockThreshold int64) func(context.Context, payloads.StockMovementPayload) error {
	return func(_ context.Context, p payloads.StockMovementPayload) error {
		metrics.StockEventsConsumedTotal.WithLabelValues("ok").Inc()

		logger.Info("stock movement received",
			"history_id", p.HistoryID,
			"product_id", p.ProductID,
			"action", p.Action,
			"quantity", p.Quantity,
			"stock_after", p.StockAfter,
		)

		if p.StockAfter <= lowStockThreshold {
			metrics.LowStockAlertsTotal.Inc()
			logger.Warn("low stock",
				"product_id", p.ProductID,
				"product_name", p.ProductName,
				"owner_id", p.UserID,
				"stock", p.StockAfter,
				"threshold", lowStockThreshold,
			)
		}
		return nil
	}
}
