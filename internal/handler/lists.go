package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dukerupert/feirinha/internal/categories"
	"github.com/dukerupert/feirinha/internal/export"
	"github.com/dukerupert/feirinha/internal/lists"
	"github.com/dukerupert/feirinha/internal/model"
)

const defaultListName = "Lista de Compra %d"

type ListHandler struct {
	lists      *lists.Store
	categories *categories.Store
	logger     *zap.Logger
}

func NewListHandler(ls *lists.Store, cs *categories.Store, logger *zap.Logger) *ListHandler {
	return &ListHandler{lists: ls, categories: cs, logger: logger}
}

// Routes mounts the list and item endpoints.
func (h *ListHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Route("/{list_id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Patch("/", h.Update)
		r.Delete("/", h.Delete)
		r.Post("/archive", h.Archive)
		r.Post("/total", h.RecomputeTotal)
		r.Get("/export.xlsx", h.Export)

		r.Post("/items", h.CreateItem)
		r.Patch("/items/{item_id}", h.UpdateItem)
		r.Delete("/items/{item_id}", h.DeleteItem)
	})
}

func (h *ListHandler) List(w http.ResponseWriter, r *http.Request) {
	status, err := model.ParseListStatus(r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.lists.Filter(status))
}

func (h *ListHandler) Get(w http.ResponseWriter, r *http.Request) {
	l, err := h.lists.Get(urlParam(r, "list_id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

type listRequest struct {
	Name                 *string    `json:"name"`
	Status               *string    `json:"status"`
	MarketID             *string    `json:"marketId"`
	MarketName           *string    `json:"marketName"`
	ExpectedPurchaseDate *time.Time `json:"ExpectedPurchaseDate"`
}

func (h *ListHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req listRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in := model.NewList{ExpectedPurchaseDate: req.ExpectedPurchaseDate}
	if req.Name != nil {
		in.Name = strings.TrimSpace(*req.Name)
	}
	if in.Name == "" {
		in.Name = fmt.Sprintf(defaultListName, len(h.lists.Lists())+1)
	}
	if req.MarketID != nil {
		in.MarketID = *req.MarketID
	}
	if req.MarketName != nil {
		in.MarketName = *req.MarketName
	}

	l, err := h.lists.AddList(in)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (h *ListHandler) Update(w http.ResponseWriter, r *http.Request) {
	listID := urlParam(r, "list_id")

	var req listRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	patch := model.ListPatch{
		Name:                 req.Name,
		MarketID:             req.MarketID,
		MarketName:           req.MarketName,
		ExpectedPurchaseDate: req.ExpectedPurchaseDate,
	}
	if req.Status != nil {
		status, err := model.ParseListStatus(*req.Status)
		if err != nil || !status.Stored() {
			writeError(w, http.StatusBadRequest, lists.ErrInvalidStatus.Error())
			return
		}
		patch.Status = &status
	}

	if err := h.lists.UpdateList(listID, patch); err != nil {
		writeErr(w, err)
		return
	}
	h.writeList(w, listID)
}

func (h *ListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.lists.RemoveList(urlParam(r, "list_id")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListHandler) Archive(w http.ResponseWriter, r *http.Request) {
	listID := urlParam(r, "list_id")
	if err := h.lists.ArchieList(listID); err != nil {
		writeErr(w, err)
		return
	}
	h.writeList(w, listID)
}

func (h *ListHandler) RecomputeTotal(w http.ResponseWriter, r *http.Request) {
	listID := urlParam(r, "list_id")
	if err := h.lists.UpdateListTotal(listID); err != nil {
		writeErr(w, err)
		return
	}
	h.writeList(w, listID)
}

func (h *ListHandler) writeList(w http.ResponseWriter, listID string) {
	l, err := h.lists.Get(listID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

type itemRequest struct {
	Name          *string `json:"name"`
	Amount        *Number `json:"amount"`
	Unit          *string `json:"unit"`
	UnitValue     *Number `json:"unitvalue"`
	CategoryID    *string `json:"categoryId"`
	LastPricePaid *string `json:"lastPricePaid"`
	LastMarketID  *string `json:"lastMarketId"`
}

func (h *ListHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	listID := urlParam(r, "list_id")

	var req itemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in := model.NewItem{UnitValue: req.UnitValue.ptr()}
	if req.Name != nil {
		in.Name = strings.TrimSpace(*req.Name)
	}
	if req.Amount != nil {
		in.Amount = float64(*req.Amount)
	}
	if req.Unit != nil {
		in.Unit = *req.Unit
	}
	if req.LastPricePaid != nil {
		in.LastPricePaid = *req.LastPricePaid
	}
	if req.LastMarketID != nil {
		in.LastMarketID = *req.LastMarketID
	}

	// Auto-categorize if no category provided
	if req.CategoryID != nil && *req.CategoryID != "" {
		in.CategoryID = *req.CategoryID
	} else {
		in.CategoryID = categories.Suggest(in.Name)
	}
	cat, ok := h.categories.Get(in.CategoryID)
	if !ok {
		writeError(w, http.StatusBadRequest, categories.ErrCategoryNotFound.Error())
		return
	}
	in.Category = &cat

	item, err := h.lists.AddItemToList(listID, in)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *ListHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	listID := urlParam(r, "list_id")
	itemID := urlParam(r, "item_id")

	var req itemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	patch := model.ItemPatch{
		Name:          req.Name,
		Unit:          req.Unit,
		UnitValue:     req.UnitValue.ptr(),
		LastPricePaid: req.LastPricePaid,
		LastMarketID:  req.LastMarketID,
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		patch.Name = &name
	}
	if req.Amount != nil {
		patch.Amount = req.Amount.ptr()
	}
	if req.CategoryID != nil {
		cat, ok := h.categories.Get(*req.CategoryID)
		if !ok {
			writeError(w, http.StatusBadRequest, categories.ErrCategoryNotFound.Error())
			return
		}
		patch.CategoryID = &cat.ID
		patch.Category = &cat
	}

	item, err := h.lists.UpdateItemInList(listID, itemID, patch)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ListHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.lists.RemoveItemFromList(urlParam(r, "list_id"), urlParam(r, "item_id")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListHandler) Export(w http.ResponseWriter, r *http.Request) {
	l, err := h.lists.Get(urlParam(r, "list_id"))
	if err != nil {
		writeErr(w, err)
		return
	}

	names := func(id string) string {
		if c, ok := h.categories.Get(id); ok {
			return c.Name
		}
		return ""
	}

	var buf bytes.Buffer
	if err := export.WriteList(&buf, l, names); err != nil {
		h.logger.Error("export list", zap.String("list_id", l.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to export list")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(l)))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
