package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/crudapp/internal/db"
	"github.com/erazemk/crudapp/internal/model"
	"github.com/erazemk/crudapp/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return &Service{
		DB:     db.NewTestDB(t),
		Issuer: NewIssuer("service-test-secret", time.Hour),
	}
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	user, err := s.Register(ctx, model.Registration{Username: "alice", Email: "a@x.com", Password: "pw123"})
	require.NoError(t, err)
	assert.NotEqual(t, "pw123", user.PasswordHash)

	got, token, err := s.Login(ctx, model.Credentials{Username: "alice", Password: "pw123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NotEmpty(t, token.Value)

	_, _, err = s.Login(ctx, model.Credentials{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = s.Login(ctx, model.Credentials{Username: "nobody", Password: "pw123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, model.Registration{Username: "alice", Email: "a@x.com", Password: "pw123"})
	require.NoError(t, err)

	_, err = s.Register(ctx, model.Registration{Username: "alice", Email: "other@x.com", Password: "pw456"})
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestAuthenticate(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	user, err := s.Register(ctx, model.Registration{Username: "alice", Email: "a@x.com", Password: "pw123"})
	require.NoError(t, err)
	token, err := s.Issuer.Issue(user.ID, user.Username)
	require.NoError(t, err)

	t.Run("bearer header", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Authorization", "Bearer "+token.Value)
		got, err := s.Authenticate(r)
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Username)
	})

	t.Run("cookie", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.AddCookie(&http.Cookie{Name: CookieName, Value: token.Value})
		got, err := s.Authenticate(r)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("missing", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		_, err := s.Authenticate(r)
		assert.ErrorIs(t, err, ErrNoCredentials)
		assert.True(t, IsUnauthenticated(err))
	})

	t.Run("garbage", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Authorization", "Bearer nope")
		_, err := s.Authenticate(r)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		old, err := s.Issuer.WithClock(func() time.Time {
			return time.Now().Add(-2 * time.Hour)
		}).Issue(user.ID, user.Username)
		require.NoError(t, err)

		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Authorization", "Bearer "+old.Value)
		_, err = s.Authenticate(r)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("deleted user", func(t *testing.T) {
		other, err := s.Register(ctx, model.Registration{Username: "bob", Email: "b@x.com", Password: "pw123"})
		require.NoError(t, err)
		tok, err := s.Issuer.Issue(other.ID, other.Username)
		require.NoError(t, err)
		require.NoError(t, store.DeleteUser(ctx, s.DB, other.ID))

		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("Authorization", "Bearer "+tok.Value)
		_, err = s.Authenticate(r)
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
		{"", ""},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		assert.Equal(t, tt.want, BearerToken(r), "header %q", tt.header)
	}
}

func TestDummyHashIsUsable(t *testing.T) {
	ok, err := VerifyPassword("dummy-password", dummyHash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("pw123", dummyHash)
	require.NoError(t, err)
	assert.False(t, ok)
}
