package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonRequest(body, contentType string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	return r
}

func TestDecodeObject(t *testing.T) {
	cases := []struct {
		name        string
		body        string
		contentType string
		wantErr     string
	}{
		{name: "object", body: `{"a":1}`, contentType: "application/json"},
		{name: "charset param", body: `{"a":1}`, contentType: "application/json; charset=utf-8"},
		{name: "no content type", body: `{"a":1}`, wantErr: msgContentType},
		{name: "form", body: `a=1`, contentType: "application/x-www-form-urlencoded", wantErr: msgContentType},
		{name: "broken", body: `{"a":`, contentType: "application/json", wantErr: msgInvalidJSON},
		{name: "array", body: `[1,2]`, contentType: "application/json", wantErr: msgInvalidJSON},
		{name: "null", body: `null`, contentType: "application/json", wantErr: msgInvalidJSON},
		{name: "empty", body: ``, contentType: "application/json", wantErr: msgInvalidJSON},
		{name: "trailing data", body: `{"a":1} {}`, contentType: "application/json", wantErr: msgInvalidJSON},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := decodeObject(httptest.NewRecorder(), jsonRequest(tc.body, tc.contentType))
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tc.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Contains(t, data, "a")
		})
	}
}

func decode(t *testing.T, body string) map[string]any {
	t.Helper()
	data, err := decodeObject(httptest.NewRecorder(), jsonRequest(body, "application/json"))
	require.NoError(t, err)
	return data
}

func TestProductInputFrom(t *testing.T) {
	cases := []struct {
		body    string
		wantErr string
	}{
		{body: `{"stock":1,"price":1}`, wantErr: "Missing required field: name"},
		{body: `{"name":"A","price":1}`, wantErr: "Missing required field: stock"},
		{body: `{"name":"A","stock":1}`, wantErr: "Missing required field: price"},
		{body: `{"name":"  ","stock":1,"price":1}`, wantErr: "Name must be a non-empty string"},
		{body: `{"name":5,"stock":1,"price":1}`, wantErr: "Name must be a non-empty string"},
		{body: `{"name":"A","stock":-1,"price":1}`, wantErr: "Stock must be a non-negative integer"},
		{body: `{"name":"A","stock":1.5,"price":1}`, wantErr: "Stock must be a non-negative integer"},
		{body: `{"name":"A","stock":"1","price":1}`, wantErr: "Stock must be a non-negative integer"},
		{body: `{"name":"A","stock":1,"price":0}`, wantErr: "Price must be a positive number"},
		{body: `{"name":"A","stock":1,"price":"9"}`, wantErr: "Price must be a positive number"},
		{body: `{"name":"A","stock":1,"price":1,"description":7}`, wantErr: "Description must be a string"},
	}
	for _, tc := range cases {
		_, err := productInputFrom(decode(t, tc.body))
		require.Error(t, err, tc.body)
		assert.Equal(t, tc.wantErr, err.Error(), tc.body)
	}

	input, err := productInputFrom(decode(t, `{"name":"Widget","stock":0,"price":2.5,"description":null}`))
	require.NoError(t, err)
	assert.Equal(t, "Widget", input.Name)
	assert.Zero(t, input.Stock)
	assert.InDelta(t, 2.5, input.Price, 1e-9)
	assert.Nil(t, input.Description)

	input, err = productInputFrom(decode(t, `{"name":"Widget","stock":3,"price":4,"description":"blue"}`))
	require.NoError(t, err)
	require.NotNil(t, input.Description)
	assert.Equal(t, "blue", *input.Description)
}

func TestQuantityFrom(t *testing.T) {
	_, err := quantityFrom(decode(t, `{}`))
	assert.EqualError(t, err, "Missing required field: stock")

	for _, body := range []string{`{"stock":0}`, `{"stock":-3}`, `{"stock":2.5}`, `{"stock":"2"}`} {
		_, err := quantityFrom(decode(t, body))
		assert.EqualError(t, err, "Stock must be a positive integer", body)
	}

	qty, err := quantityFrom(decode(t, `{"stock":5}`))
	require.NoError(t, err)
	assert.Equal(t, int64(5), qty)
}
