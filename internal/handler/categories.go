package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dukerupert/feirinha/internal/categories"
	"github.com/dukerupert/feirinha/internal/model"
)

type CategoryHandler struct {
	categories *categories.Store
}

func NewCategoryHandler(cs *categories.Store) *CategoryHandler {
	return &CategoryHandler{categories: cs}
}

func (h *CategoryHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/suggest", h.Suggest)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// List returns built-in categories followed by custom ones; ?custom=true
// returns only the custom ones.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("custom") == "true" {
		writeJSON(w, http.StatusOK, h.categories.Categories())
		return
	}
	writeJSON(w, http.StatusOK, h.categories.All())
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.Category
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.categories.AddCategory(req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.Category
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = urlParam(r, "id")
	if err := h.categories.UpdateCategory(req); err != nil {
		writeErr(w, err)
		return
	}
	c, _ := h.categories.Get(req.ID)
	writeJSON(w, http.StatusOK, c)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.DeleteCategory(urlParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CategoryHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	id := categories.Suggest(r.URL.Query().Get("name"))
	c, _ := h.categories.Get(id)
	writeJSON(w, http.StatusOK, c)
}
