package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/erazemk/crudapp/internal/model"
	"github.com/erazemk/crudapp/internal/store"
)

var flashSuccess = map[string]string{
	"created": "Item created successfully.",
	"updated": "Item updated successfully.",
	"deleted": "Item deleted successfully.",
}

var flashError = map[string]string{
	"not_found": "Item not found.",
	"database":  "A database error occurred. Please try again.",
}

type itemForm struct {
	PageData
	Item   *model.Item // nil when creating
	Values model.ItemInput
}

// ItemsPage handles GET /items.
func (s *Server) ItemsPage(w http.ResponseWriter, r *http.Request) {
	user := s.requireUser(w, r)
	if user == nil {
		return
	}

	data := struct {
		PageData
		Items []model.Item
	}{PageData: s.page(r, "My items", user)}
	data.Success = flashSuccess[r.URL.Query().Get("success")]
	data.Error = flashError[r.URL.Query().Get("error")]

	items, err := store.ListItems(r.Context(), s.DB, user.ID)
	if err != nil {
		s.Log.Error("failed to list items", zap.Int64("user", user.ID), zap.Error(err))
		data.Error = flashError["database"]
	}
	data.Items = items

	s.Templates.Render(w, http.StatusOK, "items.html", data)
}

// ItemNewPage handles GET /items/new.
func (s *Server) ItemNewPage(w http.ResponseWriter, r *http.Request) {
	user := s.requireUser(w, r)
	if user == nil {
		return
	}
	s.Templates.Render(w, http.StatusOK, "item_form.html", itemForm{PageData: s.page(r, "New item", user)})
}

// ItemCreateSubmit handles POST /items.
func (s *Server) ItemCreateSubmit(w http.ResponseWriter, r *http.Request) {
	user := s.requireUser(w, r)
	if user == nil {
		return
	}

	in := itemInput(r)
	fields, err := in.Validate()
	if err != nil {
		data := itemForm{PageData: s.page(r, "New item", user), Values: in}
		data.Error = formError(err)
		s.Templates.Render(w, http.StatusBadRequest, "item_form.html", data)
		return
	}

	if _, err := store.CreateItem(r.Context(), s.DB, user.ID, fields.Title, fields.Description); err != nil {
		s.Log.Error("failed to create item", zap.Int64("user", user.ID), zap.Error(err))
		http.Redirect(w, r, "/items?error=database", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/items?success=created", http.StatusSeeOther)
}

// ItemEditPage handles GET /items/{id}/edit.
func (s *Server) ItemEditPage(w http.ResponseWriter, r *http.Request) {
	user := s.requireUser(w, r)
	if user == nil {
		return
	}

	item, ok := s.loadItem(w, r, user.ID)
	if !ok {
		return
	}

	data := itemForm{
		PageData: s.page(r, "Edit item", user),
		Item:     item,
		Values:   model.ItemInput{Title: item.Title, Description: item.Description},
	}
	s.Templates.Render(w, http.StatusOK, "item_form.html", data)
}

// ItemUpdateSubmit handles POST /items/{id}.
func (s *Server) ItemUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	user := s.requireUser(w, r)
	if user == nil {
		return
	}

	item, ok := s.loadItem(w, r, user.ID)
	if !ok {
		return
	}

	in := itemInput(r)
	fields, err := in.Validate()
	if err != nil {
		data := itemForm{PageData: s.page(r, "Edit item", user), Item: item, Values: in}
		data.Error = formError(err)
		s.Templates.Render(w, http.StatusBadRequest, "item_form.html", data)
		return
	}

	_, err = store.UpdateItem(r.Context(), s.DB, item.ID, user.ID, fields.Title, fields.Description)
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Redirect(w, r, "/items?error=not_found", http.StatusSeeOther)
	case err != nil:
		s.Log.Error("failed to update item", zap.Int64("item", item.ID), zap.Error(err))
		http.Redirect(w, r, "/items?error=database", http.StatusSeeOther)
	default:
		http.Redirect(w, r, "/items?success=updated", http.StatusSeeOther)
	}
}

// ItemDeleteSubmit handles POST /items/{id}/delete.
func (s *Server) ItemDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	user := s.requireUser(w, r)
	if user == nil {
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/items?error=not_found", http.StatusSeeOther)
		return
	}

	err = store.DeleteItem(r.Context(), s.DB, id, user.ID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Redirect(w, r, "/items?error=not_found", http.StatusSeeOther)
	case err != nil:
		s.Log.Error("failed to delete item", zap.Int64("item", id), zap.Error(err))
		http.Redirect(w, r, "/items?error=database", http.StatusSeeOther)
	default:
		http.Redirect(w, r, "/items?success=deleted", http.StatusSeeOther)
	}
}

// loadItem fetches the item named in the URL for its owner. On failure it
// redirects to the list with an error flash and returns false.
func (s *Server) loadItem(w http.ResponseWriter, r *http.Request, ownerID int64) (*model.Item, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/items?error=not_found", http.StatusSeeOther)
		return nil, false
	}

	item, err := store.GetItem(r.Context(), s.DB, id, ownerID)
	if errors.Is(err, store.ErrNotFound) {
		http.Redirect(w, r, "/items?error=not_found", http.StatusSeeOther)
		return nil, false
	}
	if err != nil {
		s.Log.Error("failed to get item", zap.Int64("item", id), zap.Error(err))
		http.Redirect(w, r, "/items?error=database", http.StatusSeeOther)
		return nil, false
	}
	return item, true
}

func itemInput(r *http.Request) model.ItemInput {
	return model.ItemInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	}
}
