package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/GoArmGo/ShopTrack/internal/domain"
	"github.com/GoArmGo/ShopTrack/internal/logger"
	"github.com/GoArmGo/ShopTrack/internal/usecase"
)

const (
	msgProductNotFound = "Product not found"
	msgProductAccess   = "Product not found or access denied"
)

// StockHandler: обработчик HTTP-запросов учёта товаров и остатков.
// Все маршруты монтируются за AuthMiddleware.
type StockHandler struct {
	inventoryUseCase usecase.InventoryUseCase
	logger           *slog.Logger
}

// NewStockHandler создаёт новый экземпляр StockHandler.
func NewStockHandler(uc usecase.InventoryUseCase, logger *slog.Logger) *StockHandler {
	return &StockHandler{inventoryUseCase: uc, logger: logger}
}

type stockMovementResponse struct {
	Message string          `json:"message"`
	History *domain.History `json:"history"`
}

// requestScope достаёт логгер запроса и владельца, установленного AuthMiddleware.
func (h *StockHandler) requestScope(w http.ResponseWriter, r *http.Request) (*slog.Logger, uuid.UUID, bool) {
	log := logger.FromContext(r.Context(), h.logger)
	owner, ok := UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, msgUnauthorized, log)
		return log, uuid.Nil, false
	}
	return log, owner, true
}

// productID читает {id}; маршрут уже ограничивает его цифрами.
func productID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Not found", log)
		return 0, false
	}
	return id, true
}

// respondOwnership отвечает на ошибку ресурса, к которому у пользователя нет доступа,
// остальные ошибки уходят в общую таблицу.
func respondOwnership(w http.ResponseWriter, err error, log *slog.Logger, status int) {
	if errors.Is(err, domain.ErrNotFound) {
		respondWithError(w, status, msgProductAccess, log)
		return
	}
	respondWithDomainError(w, err, log, nil)
}

// ListProducts: GET /stock/.
func (h *StockHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	log, owner, ok := h.requestScope(w, r)
	if !ok {
		return
	}

	products, err := h.inventoryUseCase.ListProducts(r.Context(), owner)
	if err != nil {
		respondWithDomainError(w, err, log, nil)
		return
	}
	if len(products) == 0 {
		respondWithError(w, http.StatusNotFound, "No products found", log)
		return
	}
	respondWithJSON(w, http.StatusOK, products, log)
}

// GetProduct: GET /stock/{id}.
func (h *StockHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	log, owner, ok := h.requestScope(w, r)
	if !ok {
		return
	}
	id, ok := productID(w, r, log)
	if !ok {
		return
	}

	product, err := h.inventoryUseCase.GetProduct(r.Context(), owner, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, msgProductNotFound, log)
			return
		}
		respondWithDomainError(w, err, log, nil)
		return
	}
	respondWithJSON(w, http.StatusOK, product, log)
}

// CreateProduct: POST /stock/.
func (h *StockHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	log, owner, ok := h.requestScope(w, r)
	if !ok {
		return
	}

	data, err := decodeObject(w, r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), log)
		return
	}
	input, err := productInputFrom(data)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), log)
		return
	}

	id, err := h.inventoryUseCase.CreateProduct(r.Context(), owner, input)
	if err != nil {
		respondWithDomainError(w, err, log, nil)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]any{
		"message": "Product created successfully.",
		"id":      id,
	}, log)
}

// UpdateProduct: PUT /stock/{id}, полная перезапись полей товара.
func (h *StockHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	log, owner, ok := h.requestScope(w, r)
	if !ok {
		return
	}
	id, ok := productID(w, r, log)
	if !ok {
		return
	}
	// чужой товар отвечает 404 раньше проверки тела запроса
	if _, err := h.inventoryUseCase.GetProduct(r.Context(), owner, id); err != nil {
		respondOwnership(w, err, log, http.StatusNotFound)
		return
	}

	data, err := decodeObject(w, r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), log)
		return
	}
	input, err := productInputFrom(data)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), log)
		return
	}

	if err := h.inventoryUseCase.UpdateProduct(r.Context(), owner, id, input); err != nil {
		respondOwnership(w, err, log, http.StatusNotFound)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Product updated successfully."}, log)
}

// DeleteProduct: DELETE /stock/{id}. Журнал товара сохраняется.
func (h *StockHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	log, owner, ok := h.requestScope(w, r)
	if !ok {
		return
	}
	id, ok := productID(w, r, log)
	if !ok {
		return
	}

	if err := h.inventoryUseCase.DeleteProduct(r.Context(), owner, id); err != nil {
		respondOwnership(w, err, log, http.StatusNotFound)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully."}, log)
}

// AddStock: POST /stock/{id}/stock.
func (h *StockHandler) AddStock(w http.ResponseWriter, r *http.Request) {
	h.moveStock(w, r, h.inventoryUseCase.AddStock, "Stock added successfully.")
}

// RemoveStock: DELETE /stock/{id}/stock.
func (h *StockHandler) RemoveStock(w http.ResponseWriter, r *http.Request) {
	h.moveStock(w, r, h.inventoryUseCase.RemoveStock, "Stock removed successfully.")
}

type stockMove func(ctx context.Context, owner uuid.UUID, id int64, quantity int64) (*domain.History, error)

func (h *StockHandler) moveStock(w http.ResponseWriter, r *http.Request, move stockMove, message string) {
	log, owner, ok := h.requestScope(w, r)
	if !ok {
		return
	}
	id, ok := productID(w, r, log)
	if !ok {
		return
	}

	data, err := decodeObject(w, r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), log)
		return
	}
	quantity, err := quantityFrom(data)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), log)
		return
	}

	entry, err := move(r.Context(), owner, id, quantity)
	if err != nil {
		respondOwnership(w, err, log, http.StatusBadRequest)
		return
	}
	respondWithJSON(w, http.StatusOK, stockMovementResponse{Message: message, History: entry}, log)
}

// ListHistory: GET /stock/history.
func (h *StockHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	log, owner, ok := h.requestScope(w, r)
	if !ok {
		return
	}

	entries, err := h.inventoryUseCase.ListHistory(r.Context(), owner)
	if err != nil {
		respondWithDomainError(w, err, log, nil)
		return
	}
	if len(entries) == 0 {
		respondWithError(w, http.StatusNotFound, "No transaction history found", log)
		return
	}
	respondWithJSON(w, http.StatusOK, entries, log)
}

// ListProductHistory: GET /stock/{id}/history.
func (h *StockHandler) ListProductHistory(w http.ResponseWriter, r *http.Request) {
	log, owner, ok := h.requestScope(w, r)
	if !ok {
		return
	}
	id, ok := productID(w, r, log)
	if !ok {
		return
	}

	entries, err := h.inventoryUseCase.ListProductHistory(r.Context(), owner, id)
	if err != nil {
		respondOwnership(w, err, log, http.StatusNotFound)
		return
	}
	if len(entries) == 0 {
		respondWithError(w, http.StatusNotFound, "No transaction history found for this product", log)
		return
	}
	respondWithJSON(w, http.StatusOK, entries, log)
}

// ExportHistory: POST /stock/history/export, выгружает журнал в CSV.
func (h *StockHandler) ExportHistory(w http.ResponseWriter, r *http.Request) {
	log, owner, ok := h.requestScope(w, r)
	if !ok {
		return
	}

	url, err := h.inventoryUseCase.ExportHistory(r.Context(), owner)
	if err != nil {
		respondWithDomainError(w, err, log, nil)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]string{"url": url}, log)
}
