package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/erazemk/crudapp/internal/model"
	"github.com/erazemk/crudapp/internal/store"
)

// CookieName is the cookie carrying the session token for browser clients.
const CookieName = "token"

var (
	// ErrInvalidCredentials is returned by Login for an unknown user or a
	// wrong password alike.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrNoCredentials means the request carried neither a bearer token
	// nor a token cookie.
	ErrNoCredentials = errors.New("missing credentials")
)

// dummyHash is verified against when the username does not exist.
var dummyHash = mustHash("dummy-password")

// mustHash panics if hashing fails, which only happens when the system
// random source is broken.
func mustHash(password string) string {
	hash, err := HashPassword(password)
	if err != nil {
		panic(fmt.Sprintf("hashing dummy password: %v", err))
	}
	return hash
}

// Service ties password hashing and tokens to the user store.
type Service struct {
	DB     *sql.DB
	Issuer *Issuer
}

// Register hashes the password and creates the user.
func (s *Service) Register(ctx context.Context, reg model.Registration) (*model.User, error) {
	hash, err := HashPassword(reg.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	return store.CreateUser(ctx, s.DB, reg.Username, reg.Email, hash)
}

// Login checks the credentials and issues a token.
func (s *Service) Login(ctx context.Context, creds model.Credentials) (*model.User, Token, error) {
	user, err := store.GetUserByUsername(ctx, s.DB, creds.Username)
	if errors.Is(err, store.ErrNotFound) {
		_, _ = VerifyPassword(creds.Password, dummyHash)
		return nil, Token{}, ErrInvalidCredentials
	}
	if err != nil {
		return nil, Token{}, err
	}

	ok, err := VerifyPassword(creds.Password, user.PasswordHash)
	if err != nil {
		return nil, Token{}, fmt.Errorf("verifying password for %s: %w", user.Username, err)
	}
	if !ok {
		return nil, Token{}, ErrInvalidCredentials
	}

	token, err := s.Issuer.Issue(user.ID, user.Username)
	if err != nil {
		return nil, Token{}, err
	}
	return user, token, nil
}

// Authenticate resolves the user making the request. It is called
// explicitly at the top of every protected handler.
func (s *Service) Authenticate(r *http.Request) (*model.User, error) {
	raw := BearerToken(r)
	if raw == "" {
		if c, err := r.Cookie(CookieName); err == nil {
			raw = c.Value
		}
	}
	if raw == "" {
		return nil, ErrNoCredentials
	}

	claims, err := s.Issuer.Validate(raw)
	if err != nil {
		return nil, err
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, err
	}

	user, err := store.GetUser(r.Context(), s.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: user %d no longer exists", ErrInvalidToken, id)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// IsUnauthenticated reports whether err means the caller is not logged in.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrNoCredentials) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrExpiredToken) ||
		errors.Is(err, ErrInvalidCredentials)
}

// BearerToken returns the token from an "Authorization: Bearer" header, or
// the empty string.
func BearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// SetTokenCookie stores the token in an HttpOnly cookie that lives as long
// as the token.
func SetTokenCookie(w http.ResponseWriter, token Token, maxAge int, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token.Value,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   maxAge,
	})
}

// ClearTokenCookie removes the token cookie with matching attributes.
func ClearTokenCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}
