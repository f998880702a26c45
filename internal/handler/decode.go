package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"mime"
	"net/http"
	"strings"

	"github.com/GoArmGo/ShopTrack/internal/domain"
)

const maxBodyBytes = 1 << 20

const (
	msgContentType = "Content-Type must be application/json"
	msgInvalidJSON = "Invalid JSON format"
)

// errBadRequest: ошибка разбора тела запроса; сообщение уходит клиенту как есть.
type errBadRequest string

func (e errBadRequest) Error() string { return string(e) }

// decodeObject проверяет Content-Type и читает тело как JSON-объект.
// Числа остаются json.Number, чтобы отличать целые от дробных.
func decodeObject(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return nil, errBadRequest(msgContentType)
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, errBadRequest(msgInvalidJSON)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var data map[string]any
	if err := dec.Decode(&data); err != nil || data == nil {
		return nil, errBadRequest(msgInvalidJSON)
	}
	// за объектом не должно быть ничего, кроме пробелов
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errBadRequest(msgInvalidJSON)
	}
	return data, nil
}

// productInputFrom проверяет поля товара в том же порядке, что и сообщения об ошибках:
// сначала наличие name, stock, price, затем их типы.
func productInputFrom(data map[string]any) (domain.ProductInput, error) {
	for _, field := range []string{"name", "stock", "price"} {
		if _, ok := data[field]; !ok {
			return domain.ProductInput{}, errBadRequest("Missing required field: " + field)
		}
	}

	name, ok := data["name"].(string)
	if !ok || strings.TrimSpace(name) == "" {
		return domain.ProductInput{}, errBadRequest("Name must be a non-empty string")
	}

	stock, ok := integerOf(data["stock"])
	if !ok || stock < 0 {
		return domain.ProductInput{}, errBadRequest("Stock must be a non-negative integer")
	}

	price, ok := numberOf(data["price"])
	if !ok || price <= 0 {
		return domain.ProductInput{}, errBadRequest("Price must be a positive number")
	}

	input := domain.ProductInput{Name: name, Stock: stock, Price: price}
	if raw, present := data["description"]; present && raw != nil {
		desc, ok := raw.(string)
		if !ok {
			return domain.ProductInput{}, errBadRequest("Description must be a string")
		}
		input.Description = &desc
	}
	return input, nil
}

// quantityFrom читает поле stock запросов на изменение остатка.
func quantityFrom(data map[string]any) (int64, error) {
	raw, ok := data["stock"]
	if !ok {
		return 0, errBadRequest("Missing required field: stock")
	}
	qty, ok := integerOf(raw)
	if !ok || qty <= 0 {
		return 0, errBadRequest("Stock must be a positive integer")
	}
	return qty, nil
}

// credentialsFrom читает username и password; отсутствующее или нестроковое поле
// считается пустым, дальше его отклонит usecase.
func credentialsFrom(data map[string]any) (username, password string) {
	username, _ = data["username"].(string)
	password, _ = data["password"].(string)
	return username, password
}

// integerOf принимает только целочисленные литералы (5, но не 5.0 и не "5").
func integerOf(v any) (int64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	i, err := n.Int64()
	if err != nil {
		return 0, false
	}
	return i, true
}

func numberOf(v any) (float64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
