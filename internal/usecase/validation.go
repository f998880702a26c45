package usecase

import (
	"math"
	"strings"

	"github.com/GoArmGo/ShopTrack/internal/domain"
)

func validateProductInput(in domain.ProductInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return domain.NewError(domain.KindValidation, "Name must be a non-empty string")
	}
	if in.Stock < 0 {
		return domain.NewError(domain.KindValidation, "Stock must be a non-negative integer")
	}
	if math.IsNaN(in.Price) || math.IsInf(in.Price, 0) || in.Price <= 0 {
		return domain.NewError(domain.KindValidation, "Price must be a positive number")
	}
	return nil
}

func validateQuantity(quantity int64) error {
	if quantity <= 0 {
		return domain.NewError(domain.KindValidation, "Stock must be a positive integer")
	}
	return nil
}
