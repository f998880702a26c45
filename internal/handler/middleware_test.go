package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoArmGo/ShopTrack/internal/domain"
	"github.com/GoArmGo/ShopTrack/internal/logger"
)

// stubAuth принимает единственный известный токен.
type stubAuth struct {
	token    string
	userID   uuid.UUID
	resolved int
}

func (s *stubAuth) Register(context.Context, string, string) (uuid.UUID, error) {
	return uuid.Nil, nil
}

func (s *stubAuth) Authenticate(context.Context, string, string) (*domain.User, string, error) {
	return nil, "", nil
}

func (s *stubAuth) Revoke(context.Context, string) error { return nil }

func (s *stubAuth) Resolve(_ context.Context, token string) (uuid.UUID, error) {
	s.resolved++
	if token != s.token {
		return uuid.Nil, domain.NewError(domain.KindUnauthorized, "Unauthorized")
	}
	return s.userID, nil
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestAuthMiddleware(t *testing.T) {
	auth := &stubAuth{token: "good", userID: uuid.New()}

	var seenUser uuid.UUID
	var seenToken string
	protected := AuthMiddleware(auth, logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser, _ = UserIDFromContext(r.Context())
		seenToken, _ = TokenFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("malformed headers never reach the store", func(t *testing.T) {
		for _, header := range []string{"", "good", "Basic good", "Bearer", "Bearer ", "bearer good", "Bearer a b"} {
			r := httptest.NewRequest(http.MethodGet, "/stock/", nil)
			if header != "" {
				r.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, r)

			assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
			assert.Equal(t, msgInvalidAuthHeader, errorBody(t, rec), header)
		}
		assert.Zero(t, auth.resolved)
	})

	t.Run("unknown token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/stock/", nil)
		r.Header.Set("Authorization", "Bearer bad")
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, r)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, msgUnauthorized, errorBody(t, rec))
	})

	t.Run("valid token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/stock/", nil)
		r.Header.Set("Authorization", "Bearer good")
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, r)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, auth.userID, seenUser)
		assert.Equal(t, "good", seenToken)
	})
}

func TestRespondWithDomainErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	respondWithDomainError(rec, assert.AnError, logger.Discard(), nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, msgInternalError, errorBody(t, rec))
}

func TestRespondWithDomainErrorOverrides(t *testing.T) {
	err := domain.NewError(domain.KindNotFound, "Incorrect username.")

	rec := httptest.NewRecorder()
	respondWithDomainError(rec, err, logger.Discard(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	respondWithDomainError(rec, err, logger.Discard(), map[domain.ErrorKind]int{domain.KindNotFound: http.StatusUnauthorized})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Incorrect username.", errorBody(t, rec))
}
