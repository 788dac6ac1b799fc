package web

import (
	"errors"
	"net/http"

	"github.com/gorilla/csrf"
	"go.uber.org/zap"

	"github.com/erazemk/crudapp/internal/auth"
	"github.com/erazemk/crudapp/internal/model"
)

// securityHeaders adds the standard browser hardening headers to every page.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy",
			"default-src 'self'; "+
				"style-src 'self'; "+
				"img-src 'self' data:; "+
				"frame-ancestors 'none'; "+
				"form-action 'self'")
		h.Set("Permissions-Policy", "camera=(), geolocation=(), microphone=(), payment=(), usb=()")
		next.ServeHTTP(w, r)
	})
}

// plaintextUnlessTLS tells gorilla/csrf that requests arrive over plain
// HTTP, which skips its HTTPS-only Referer check. It is a no-op when secure
// cookies are configured.
func plaintextUnlessTLS(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secure {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.TLS == nil {
				r = csrf.PlaintextHTTPRequest(r)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// csrfFailure answers a rejected form submission.
func (s *Server) csrfFailure(w http.ResponseWriter, r *http.Request) {
	s.Log.Warn("csrf check failed",
		zap.String("path", r.URL.Path),
		zap.String("remote", r.RemoteAddr),
		zap.Error(csrf.FailureReason(r)),
	)
	http.Error(w, "Your session has expired or the form was invalid. Go back, reload and try again.", http.StatusForbidden)
}

// requireUser authenticates the request from the token cookie. When that
// fails it clears a stale cookie, redirects to the login page and returns
// nil; handlers must return immediately in that case.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) *model.User {
	user, err := s.Auth.Authenticate(r)
	if err == nil {
		return user
	}

	if !errors.Is(err, auth.ErrNoCredentials) {
		if !auth.IsUnauthenticated(err) {
			s.Log.Error("failed to authenticate request", zap.Error(err))
		}
		auth.ClearTokenCookie(w, s.SecureCookies)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
	return nil
}

// currentUser returns the logged-in user, or nil for anonymous visitors.
func (s *Server) currentUser(r *http.Request) *model.User {
	user, err := s.Auth.Authenticate(r)
	if err != nil {
		return nil
	}
	return user
}

// page fills the fields shared by every template.
func (s *Server) page(r *http.Request, title string, user *model.User) PageData {
	return PageData{
		Title:     title,
		User:      user,
		CSRFField: csrf.TemplateField(r),
	}
}
