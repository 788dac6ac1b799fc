package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/erazemk/crudapp/internal/auth"
	"github.com/erazemk/crudapp/internal/model"
)

// AuthHandler handles registration, login and the current-user endpoint.
type AuthHandler struct {
	*Env
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Register handles POST /api/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in model.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.respondError(w, r, err)
		return
	}

	reg, err := in.Validate()
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	user, err := h.Auth.Register(r.Context(), reg)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.Log.Info("user registered", zap.String("user", user.Username), zap.Int64("id", user.ID))
	jsonResponse(w, http.StatusCreated, user)
}

// Login handles POST /api/login. The token is returned in the body and set
// as a cookie so browser clients can use it too.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in model.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.respondError(w, r, err)
		return
	}

	creds, err := in.Validate()
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	user, token, err := h.Auth.Login(r.Context(), creds)
	if err != nil {
		if auth.IsUnauthenticated(err) {
			h.Log.Warn("login failed", zap.String("username", creds.Username), zap.String("remote", r.RemoteAddr))
		}
		h.respondError(w, r, err)
		return
	}

	auth.SetTokenCookie(w, token, int(h.Auth.Issuer.TTL().Seconds()), h.SecureCookies)

	h.Log.Info("user logged in", zap.String("user", user.Username))
	jsonResponse(w, http.StatusOK, loginResponse{Token: token.Value, ExpiresAt: token.ExpiresAt})
}

// Logout handles POST /api/logout. Tokens are stateless, so this only clears
// the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearTokenCookie(w, h.SecureCookies)
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.Auth.Authenticate(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, user)
}
