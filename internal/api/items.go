package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/erazemk/crudapp/internal/model"
	"github.com/erazemk/crudapp/internal/store"
)

// ItemsHandler handles the owner-scoped item endpoints. Every handler
// authenticates first; items belonging to other users are reported as not
// found.
type ItemsHandler struct {
	*Env
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	user, err := h.Auth.Authenticate(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	items, err := store.ListItems(r.Context(), h.DB, user.ID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := h.Auth.Authenticate(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	fields, err := decodeItem(w, r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	item, err := store.CreateItem(r.Context(), h.DB, user.ID, fields.Title, fields.Description)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.Auth.Authenticate(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	id, err := itemID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id, user.ID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, err := h.Auth.Authenticate(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	id, err := itemID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	fields, err := decodeItem(w, r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	item, err := store.UpdateItem(r.Context(), h.DB, id, user.ID, fields.Title, fields.Description)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := h.Auth.Authenticate(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	id, err := itemID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := store.DeleteItem(r.Context(), h.DB, id, user.ID); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeItem(w http.ResponseWriter, r *http.Request) (model.ItemFields, error) {
	var in model.ItemInput
	if err := decodeJSON(w, r, &in); err != nil {
		return model.ItemFields{}, err
	}
	return in.Validate()
}

func itemID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, model.NewValidationError("id", "must be a positive integer")
	}
	return id, nil
}
