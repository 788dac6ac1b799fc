package web

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/erazemk/crudapp/internal/auth"
	"github.com/erazemk/crudapp/internal/model"
	"github.com/erazemk/crudapp/internal/store"
)

type authForm struct {
	PageData
	Username string
	Email    string
}

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	data := authForm{PageData: s.page(r, "Log in", nil)}
	if r.URL.Query().Get("registered") == "true" {
		data.Success = "Registration successful. Please log in."
	}
	s.Templates.Render(w, http.StatusOK, "login.html", data)
}

// LoginSubmit handles POST /login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	in := model.LoginInput{
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
	}
	data := authForm{PageData: s.page(r, "Log in", nil), Username: in.Username}

	creds, err := in.Validate()
	if err != nil {
		data.Error = "Enter your username and password."
		s.Templates.Render(w, http.StatusBadRequest, "login.html", data)
		return
	}

	user, token, err := s.Auth.Login(r.Context(), creds)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		s.Log.Warn("login failed", zap.String("username", creds.Username), zap.String("remote", r.RemoteAddr))
		data.Error = "Invalid username or password."
		s.Templates.Render(w, http.StatusUnauthorized, "login.html", data)
		return
	}
	if err != nil {
		s.Log.Error("login error", zap.Error(err))
		data.Error = "An error occurred. Please try again."
		s.Templates.Render(w, http.StatusInternalServerError, "login.html", data)
		return
	}

	auth.SetTokenCookie(w, token, int(s.Auth.Issuer.TTL().Seconds()), s.SecureCookies)
	s.Log.Info("user logged in", zap.String("user", user.Username))
	http.Redirect(w, r, "/items", http.StatusSeeOther)
}

// RegisterPage handles GET /register.
func (s *Server) RegisterPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, http.StatusOK, "register.html", authForm{PageData: s.page(r, "Register", nil)})
}

// RegisterSubmit handles POST /register.
func (s *Server) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	in := model.RegisterInput{
		Username: r.FormValue("username"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}
	data := authForm{PageData: s.page(r, "Register", nil), Username: in.Username, Email: in.Email}

	reg, err := in.Validate()
	if err != nil {
		data.Error = formError(err)
		s.Templates.Render(w, http.StatusBadRequest, "register.html", data)
		return
	}
	if in.Password != r.FormValue("confirm_password") {
		data.Error = "Passwords do not match."
		s.Templates.Render(w, http.StatusBadRequest, "register.html", data)
		return
	}

	user, err := s.Auth.Register(r.Context(), reg)
	var conflict *store.ConflictError
	switch {
	case errors.As(err, &conflict):
		if conflict.Field == "email" {
			data.Error = "Email is already registered."
		} else {
			data.Error = "Username is already taken."
		}
		s.Templates.Render(w, http.StatusConflict, "register.html", data)
		return
	case err != nil:
		s.Log.Error("registration error", zap.Error(err))
		data.Error = "An error occurred. Please try again."
		s.Templates.Render(w, http.StatusInternalServerError, "register.html", data)
		return
	}

	s.Log.Info("user registered", zap.String("user", user.Username), zap.Int64("id", user.ID))
	http.Redirect(w, r, "/login?registered=true", http.StatusSeeOther)
}

// Logout handles POST /logout.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearTokenCookie(w, s.SecureCookies)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// formError turns a validation error into a single sentence for a form.
func formError(err error) string {
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		return "Invalid input."
	}
	for _, field := range []string{"username", "email", "password", "title", "description"} {
		if problem, ok := verr.Fields[field]; ok {
			return capitalize(field) + " " + problem + "."
		}
	}
	return "Invalid input."
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
