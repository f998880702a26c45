package payloads

import (
	"time"

	"github.com/GoArmGo/ShopTrack/internal/domain"
	"github.com/google/uuid"
)

// StockMovementPayload: сообщение в RabbitMQ о зафиксированной записи журнала.
type StockMovementPayload struct {
	HistoryID   int64         `json:"history_id"`
	ProductID   int64         `json:"product_id"`
	ProductName string        `json:"product_name"`
	UserID      uuid.UUID     `json:"user_id"`
	Action      domain.Action `json:"action"`
	Quantity    int64         `json:"quantity"`
	Price       float64       `json:"price"`
	StockAfter  int64         `json:"stock_after"`
	OccurredAt  time.Time     `json:"occurred_at"`
}

// NewStockMovementPayload собирает сообщение из записи журнала и остатка после операции.
func NewStockMovementPayload(entry domain.History, stockAfter int64) StockMovementPayload {
	return StockMovementPayload{
		HistoryID:   entry.ID,
		ProductID:   entry.ProductID,
		ProductName: entry.ProductName,
		UserID:      entry.UserID,
		Action:      entry.Action,
		Quantity:    entry.Quantity,
		Price:       entry.Price,
		StockAfter:  stockAfter,
		OccurredAt:  entry.Created,
	}
}
