package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/erazemk/crudapp/internal/auth"
	"github.com/erazemk/crudapp/internal/model"
	"github.com/erazemk/crudapp/internal/store"
)

// maxBodyBytes caps request bodies read by decodeJSON.
const maxBodyBytes = 1 << 20

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		// The status line is already sent, nothing useful to do on failure.
		_ = json.NewEncoder(w).Encode(data)
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, errorBody{Error: message})
}

// decodeJSON decodes a JSON request body into the given target. Any
// failure is reported as a validation error on the body.
func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	defer r.Body.Close()
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return model.NewValidationError("body", fmt.Sprintf("is not valid JSON: %v", err))
	}
	return nil
}

// respondError maps err onto the error taxonomy and writes the response.
// Unexpected errors are logged and answered without detail.
func (e *Env) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *model.ValidationError
	var conflict *store.ConflictError

	switch {
	case errors.As(err, &verr):
		jsonResponse(w, http.StatusBadRequest, errorBody{Error: "validation failed", Fields: verr.Fields})
	case errors.As(err, &conflict):
		jsonError(w, http.StatusConflict, conflict.Error())
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, http.StatusNotFound, "not found")
	case errors.Is(err, auth.ErrInvalidCredentials):
		jsonError(w, http.StatusUnauthorized, "invalid username or password")
	case errors.Is(err, auth.ErrExpiredToken):
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="token expired"`)
		jsonError(w, http.StatusUnauthorized, "token expired")
	case auth.IsUnauthenticated(err):
		w.Header().Set("WWW-Authenticate", `Bearer`)
		jsonError(w, http.StatusUnauthorized, "not authenticated")
	default:
		e.Log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}
