package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product представляет товар пользователя,
// соответствует таблице products в бд
type Product struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Stock       int64     `json:"stock" db:"stock"`
	Price       float64   `json:"price" db:"price"`
	Description *string   `json:"description" db:"description"`
	OwnerID     uuid.UUID `json:"owner_id" db:"owner_id"`
	Created     time.Time `json:"created" db:"created"`
}

// ProductInput: изменяемые поля товара, приходящие от клиента.
type ProductInput struct {
	Name        string
	Stock       int64
	Price       float64
	Description *string
}
