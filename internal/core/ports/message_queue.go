package ports

import (
	"context"

	"github.com/GoArmGo/ShopTrack/internal/messaging/payloads"
)

// StockEventPublisher публикует события движения остатков после фиксации транзакции.
type StockEventPublisher interface {
	PublishStockMovement(ctx context.Context, payload payloads.StockMovementPayload) error
}

// StockEventConsumer используется воркером для получения событий из очереди.
type StockEventConsumer interface {
	// StartConsumingStockMovements начинает прослушивание очереди;
	// handler вызывается для каждого полученного сообщения
	StartConsumingStockMovements(ctx context.Context, handler func(context.Context, payloads.StockMovementPayload) error) error
}
