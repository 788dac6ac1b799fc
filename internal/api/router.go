package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/erazemk/crudapp/internal/auth"
)

// Env is the shared state handed to every API handler. It is built once at
// startup and never mutated.
type Env struct {
	DB            *sql.DB
	Auth          *auth.Service
	Log           *zap.Logger
	SecureCookies bool
}

// NewRouter creates the API router. Paths are relative to its mount point,
// normally /api.
func NewRouter(env *Env) http.Handler {
	r := chi.NewRouter()

	authHandler := &AuthHandler{Env: env}
	itemsHandler := &ItemsHandler{Env: env}

	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)
	r.Post("/logout", authHandler.Logout)
	r.Get("/me", authHandler.Me)

	r.Get("/items", itemsHandler.List)
	r.Post("/items", itemsHandler.Create)
	r.Get("/items/{id}", itemsHandler.Get)
	r.Put("/items/{id}", itemsHandler.Update)
	r.Delete("/items/{id}", itemsHandler.Delete)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
