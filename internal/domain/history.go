package domain

import (
	"time"

	"github.com/google/uuid"
)

// Action: тип складской операции в журнале.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
)

// History: неизменяемая запись журнала движения остатков,
// соответствует таблице history в бд. ProductName: снимок имени на момент операции,
// поэтому запись остаётся осмысленной после удаления товара.
type History struct {
	ID          int64     `json:"id" db:"id"`
	ProductID   int64     `json:"product_id" db:"product_id"`
	ProductName string    `json:"product_name" db:"product_name"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	Price       float64   `json:"price" db:"price"`
	Quantity    int64     `json:"quantity" db:"quantity"`
	Action      Action    `json:"action" db:"action"`
	Created     time.Time `json:"created" db:"created"`
}

// Delta возвращает изменение остатка: +quantity для buy, -quantity для sell.
func (h History) Delta() int64 {
	if h.Action == ActionSell {
		return -h.Quantity
	}
	return h.Quantity
}

// ReplayStock восстанавливает остаток, проигрывая журнал с нуля.
func ReplayStock(entries []History) int64 {
	var stock int64
	for _, e := range entries {
		stock += e.Delta()
	}
	return stock
}
