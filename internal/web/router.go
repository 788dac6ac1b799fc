package web

import (
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"

	"github.com/erazemk/crudapp/internal/auth"
	webembed "github.com/erazemk/crudapp/web"
)

// Server holds all dependencies for page handlers.
type Server struct {
	DB            *sql.DB
	Templates     *Templates
	Auth          *auth.Service
	Log           *zap.Logger
	SecureCookies bool
}

// Options configure NewRouter.
type Options struct {
	DB            *sql.DB
	Auth          *auth.Service
	Log           *zap.Logger
	Secret        string // token signing secret; the CSRF key is derived from it
	SecureCookies bool
}

// NewRouter creates the web page router with all page routes registered.
func NewRouter(opts Options) (http.Handler, error) {
	templates, err := LoadTemplates(opts.Log)
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:            opts.DB,
		Templates:     templates,
		Auth:          opts.Auth,
		Log:           opts.Log,
		SecureCookies: opts.SecureCookies,
	}

	protect := csrf.Protect(
		csrfKey(opts.Secret),
		csrf.Secure(opts.SecureCookies),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteStrictMode),
		csrf.Path("/"),
		csrf.ErrorHandler(http.HandlerFunc(s.csrfFailure)),
	)

	r := chi.NewRouter()
	r.Use(securityHeaders)
	r.Use(plaintextUnlessTLS(opts.SecureCookies))
	r.Use(protect)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	r.Get("/", s.Home)
	r.Get("/login", s.LoginPage)
	r.Post("/login", s.LoginSubmit)
	r.Get("/register", s.RegisterPage)
	r.Post("/register", s.RegisterSubmit)
	r.Post("/logout", s.Logout)

	r.Get("/items", s.ItemsPage)
	r.Post("/items", s.ItemCreateSubmit)
	r.Get("/items/new", s.ItemNewPage)
	r.Get("/items/{id}/edit", s.ItemEditPage)
	r.Post("/items/{id}", s.ItemUpdateSubmit)
	r.Post("/items/{id}/delete", s.ItemDeleteSubmit)

	return r, nil
}

// csrfKey derives a 32-byte CSRF authentication key from the signing
// secret so a restart with the same secret keeps forms valid.
func csrfKey(secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("csrf"))
	return mac.Sum(nil)
}
