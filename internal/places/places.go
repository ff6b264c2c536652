// Package places looks up markets through the Google Places web service.
package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dukerupert/feirinha/internal/model"
)

const (
	DefaultBaseURL = "https://maps.googleapis.com/maps/api/place"
	cacheTTL       = 10 * time.Minute
	searchRadius   = 50000 // meters
	minQueryLen    = 2
)

var (
	ErrNotConfigured = errors.New("place search is not configured")
	ErrNotFound      = errors.New("place not found")
)

type Config struct {
	APIKey  string
	BaseURL string
}

// Location biases search results toward a point.
type Location struct {
	Latitude  float64
	Longitude float64
}

// Prediction is one autocomplete suggestion.
type Prediction struct {
	PlaceID       string `json:"place_id"`
	Description   string `json:"description"`
	MainText      string `json:"main_text"`
	SecondaryText string `json:"secondary_text,omitempty"`
}

type cacheEntry struct {
	value   any
	expires time.Time
}

// Client searches establishments in Brazil and resolves them to markets.
// Responses are cached in memory for cacheTTL.
type Client struct {
	config Config
	client *http.Client
	logger *zap.Logger
	now    func() time.Time

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		config: cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
		now:    time.Now,
		cache:  make(map[string]cacheEntry),
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.config.APIKey != ""
}

type autocompleteResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Predictions  []struct {
		PlaceID              string `json:"place_id"`
		Description          string `json:"description"`
		StructuredFormatting struct {
			MainText      string `json:"main_text"`
			SecondaryText string `json:"secondary_text"`
		} `json:"structured_formatting"`
	} `json:"predictions"`
}

// Search returns autocomplete predictions for query. Queries shorter than two
// characters return no predictions without calling the service.
func (c *Client) Search(ctx context.Context, query string, near *Location) ([]Prediction, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minQueryLen {
		return []Prediction{}, nil
	}

	params := url.Values{}
	params.Set("input", query)
	params.Set("language", "pt-BR")
	params.Set("components", "country:br")
	params.Set("types", "establishment")
	if near != nil {
		params.Set("location", fmt.Sprintf("%f,%f", near.Latitude, near.Longitude))
		params.Set("radius", fmt.Sprint(searchRadius))
	}

	cacheKey := "search:" + params.Encode()
	if v, ok := c.cached(cacheKey); ok {
		return append([]Prediction{}, v.([]Prediction)...), nil
	}

	var resp autocompleteResponse
	if err := c.get(ctx, "/autocomplete/json", params, &resp); err != nil {
		return nil, err
	}

	switch resp.Status {
	case "OK":
	case "ZERO_RESULTS":
		c.store(cacheKey, []Prediction{})
		return []Prediction{}, nil
	default:
		return nil, fmt.Errorf("places autocomplete: status %s: %s", resp.Status, resp.ErrorMessage)
	}

	out := make([]Prediction, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		out = append(out, Prediction{
			PlaceID:       p.PlaceID,
			Description:   p.Description,
			MainText:      p.StructuredFormatting.MainText,
			SecondaryText: p.StructuredFormatting.SecondaryText,
		})
	}
	c.store(cacheKey, out)
	return append([]Prediction{}, out...), nil
}

type detailsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Result       *struct {
		PlaceID          string `json:"place_id"`
		Name             string `json:"name"`
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"result"`
}

// Details resolves a place id to a Market.
func (c *Client) Details(ctx context.Context, placeID string) (model.Market, error) {
	if !c.Configured() {
		return model.Market{}, ErrNotConfigured
	}
	if placeID == "" {
		return model.Market{}, ErrNotFound
	}

	cacheKey := "details:" + placeID
	if v, ok := c.cached(cacheKey); ok {
		return v.(model.Market), nil
	}

	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("language", "pt-BR")
	params.Set("fields", "name,formatted_address,geometry,place_id")

	var resp detailsResponse
	if err := c.get(ctx, "/details/json", params, &resp); err != nil {
		return model.Market{}, err
	}

	switch {
	case resp.Status == "OK" && resp.Result != nil:
	case resp.Status == "NOT_FOUND" || resp.Status == "INVALID_REQUEST" || resp.Status == "OK":
		return model.Market{}, ErrNotFound
	default:
		return model.Market{}, fmt.Errorf("places details: status %s: %s", resp.Status, resp.ErrorMessage)
	}

	r := resp.Result
	m := model.Market{
		ID:        r.PlaceID,
		Name:      r.Name,
		Address:   r.FormattedAddress,
		Latitude:  r.Geometry.Location.Lat,
		Longitude: r.Geometry.Location.Lng,
	}
	if m.ID == "" {
		m.ID = placeID
	}
	c.store(cacheKey, m)
	return m, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, dst any) error {
	params.Set("key", c.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build places request: %w", err)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("places request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("places request",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("places API returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode places response: %w", err)
	}
	return nil
}

func (c *Client) cached(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.cache[key]
	if !ok || !c.now().Before(e.expires) {
		return nil, false
	}
	return e.value, true
}

func (c *Client) store(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for k, e := range c.cache {
		if !now.Before(e.expires) {
			delete(c.cache, k)
		}
	}
	c.cache[key] = cacheEntry{value: v, expires: now.Add(cacheTTL)}
}
