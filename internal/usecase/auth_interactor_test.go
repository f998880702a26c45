package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoArmGo/ShopTrack/internal/domain"
)

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.auth.Register(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	user, token, err := f.auth.Authenticate(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Len(t, token, 64)
	assert.Equal(t, strings.ToLower(token), token)

	resolved, err := f.auth.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, id, resolved)
}

func TestRegisterDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, "alice", "pw1")
	require.NoError(t, err)

	_, err = f.auth.Register(ctx, "alice", "other")
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, "User alice is already registered.", domain.MessageOf(err))
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, "", "pw")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.auth.Register(ctx, "alice", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLongPasswordsAreAcceptedWhole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	password := strings.Repeat("p", 80)
	id, err := f.auth.Register(ctx, "alice", password)
	require.NoError(t, err)

	user, _, err := f.auth.Authenticate(ctx, "alice", password)
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)

	// отличие после 72-го байта тоже учитывается
	_, _, err = f.auth.Authenticate(ctx, "alice", strings.Repeat("p", 79)+"q")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, "alice", "pw1")
	require.NoError(t, err)

	_, _, err = f.auth.Authenticate(ctx, "bob", "pw1")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "Incorrect username.", domain.MessageOf(err))

	_, _, err = f.auth.Authenticate(ctx, "alice", "wrong")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Equal(t, "Incorrect password.", domain.MessageOf(err))
}

func TestEachLoginIssuesNewToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, "alice", "pw1")
	require.NoError(t, err)

	_, first, err := f.auth.Authenticate(ctx, "alice", "pw1")
	require.NoError(t, err)
	_, second, err := f.auth.Authenticate(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	// выход из одной сессии не затрагивает другую
	require.NoError(t, f.auth.Revoke(ctx, first))
	_, err = f.auth.Resolve(ctx, first)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.auth.Resolve(ctx, second)
	assert.NoError(t, err)
}

func TestRevokeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.auth.Revoke(context.Background(), strings.Repeat("a", 64)))
}

func TestResolveRejectsMalformedAndUnknownTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, token := range []string{"", "short", strings.Repeat("A", 64), strings.Repeat("g", 64), strings.Repeat("a", 65)} {
		_, err := f.auth.Resolve(ctx, token)
		assert.ErrorIs(t, err, domain.ErrUnauthorized, token)
	}

	_, err := f.auth.Resolve(ctx, strings.Repeat("0", 64))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestSessionExpires(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, "alice", "pw1")
	require.NoError(t, err)
	_, token, err := f.auth.Authenticate(ctx, "alice", "pw1")
	require.NoError(t, err)

	issued := *f.clock
	f.auth.now = func() time.Time { return issued.Add(domain.SessionTTL - time.Second) }
	_, err = f.auth.Resolve(ctx, token)
	require.NoError(t, err)

	f.auth.now = func() time.Time { return issued.Add(domain.SessionTTL) }
	_, err = f.auth.Resolve(ctx, token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
