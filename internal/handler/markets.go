package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dukerupert/feirinha/internal/markets"
	"github.com/dukerupert/feirinha/internal/model"
	"github.com/dukerupert/feirinha/internal/places"
)

// PlaceFinder searches places and resolves them to markets.
type PlaceFinder interface {
	Search(ctx context.Context, query string, near *places.Location) ([]places.Prediction, error)
	Details(ctx context.Context, placeID string) (model.Market, error)
}

type MarketHandler struct {
	markets *markets.Store
	places  PlaceFinder
	logger  *zap.Logger
}

func NewMarketHandler(ms *markets.Store, pf PlaceFinder, logger *zap.Logger) *MarketHandler {
	return &MarketHandler{markets: ms, places: pf, logger: logger}
}

func (h *MarketHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Add)
	r.Delete("/", h.Clear)
	r.Post("/remove", h.Remove)
	r.Delete("/{id}", h.RemoveOne)
}

func (h *MarketHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.markets.FavoriteMarkets())
}

type addMarketRequest struct {
	model.Market
	PlaceID string `json:"placeId"`
}

// Add saves a favorite. The body is either a full market or {"placeId": ...},
// which is resolved through the place service.
func (h *MarketHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addMarketRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	m := req.Market
	if req.PlaceID != "" && m.Name == "" {
		resolved, err := h.places.Details(r.Context(), req.PlaceID)
		if err != nil {
			h.logger.Warn("resolve place", zap.String("place_id", req.PlaceID), zap.Error(err))
			writeErr(w, err)
			return
		}
		m = resolved
	}
	m.ID = strings.TrimSpace(m.ID)
	if m.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	if !h.markets.AddFavoriteMarket(m) {
		existing, _ := h.markets.Get(m.ID)
		writeJSON(w, http.StatusOK, existing)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

type removeMarketsRequest struct {
	IDs []string `json:"ids"`
}

func (h *MarketHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var req removeMarketsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	n := h.markets.RemoveFavoriteMarkets(req.IDs)
	writeJSON(w, http.StatusOK, map[string]int{"removed": n})
}

func (h *MarketHandler) RemoveOne(w http.ResponseWriter, r *http.Request) {
	if h.markets.RemoveFavoriteMarkets([]string{urlParam(r, "id")}) == 0 {
		writeErr(w, markets.ErrMarketNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MarketHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.markets.ClearFavoriteMarkets()
	w.WriteHeader(http.StatusNoContent)
}

type PlacesHandler struct {
	places PlaceFinder
	logger *zap.Logger
}

func NewPlacesHandler(pf PlaceFinder, logger *zap.Logger) *PlacesHandler {
	return &PlacesHandler{places: pf, logger: logger}
}

func (h *PlacesHandler) Routes(r chi.Router) {
	r.Get("/search", h.Search)
	r.Get("/{id}", h.Details)
}

// Search proxies place autocomplete. lat and lng bias results when both are
// given.
func (h *PlacesHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var near *places.Location
	if q.Get("lat") != "" || q.Get("lng") != "" {
		lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
		lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
		if errLat != nil || errLng != nil {
			writeError(w, http.StatusBadRequest, "invalid lat/lng")
			return
		}
		near = &places.Location{Latitude: lat, Longitude: lng}
	}

	preds, err := h.places.Search(r.Context(), q.Get("q"), near)
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			h.logger.Error("place search", zap.Error(err))
			writeError(w, http.StatusBadGateway, "place search failed")
			return
		}
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, preds)
}

func (h *PlacesHandler) Details(w http.ResponseWriter, r *http.Request) {
	m, err := h.places.Details(r.Context(), urlParam(r, "id"))
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			h.logger.Error("place details", zap.Error(err))
			writeError(w, http.StatusBadGateway, "place lookup failed")
			return
		}
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}
