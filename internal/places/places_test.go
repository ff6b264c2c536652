package places

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const autocompleteOK = `{
	"status": "OK",
	"predictions": [
		{
			"place_id": "ChIJ-mercado-1",
			"description": "Mercado Central, Rua A, São Paulo - SP",
			"structured_formatting": {"main_text": "Mercado Central", "secondary_text": "Rua A, São Paulo - SP"}
		},
		{
			"place_id": "ChIJ-mercado-2",
			"description": "Mercado Bom Preço, Av. B",
			"structured_formatting": {"main_text": "Mercado Bom Preço"}
		}
	]
}`

const detailsOK = `{
	"status": "OK",
	"result": {
		"place_id": "ChIJ-mercado-1",
		"name": "Mercado Central",
		"formatted_address": "Rua A, 100 - Centro, São Paulo - SP",
		"geometry": {"location": {"lat": -23.5505, "lng": -46.6333}}
	}
}`

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewClient(Config{APIKey: "test-key", BaseURL: srv.URL}, nil), &calls
}

func TestSearch(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/autocomplete/json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		want := map[string]string{
			"input":      "mercado",
			"key":        "test-key",
			"language":   "pt-BR",
			"components": "country:br",
			"types":      "establishment",
			"radius":     "50000",
		}
		for k, v := range want {
			if got := q.Get(k); got != v {
				t.Errorf("query %s = %q, want %q", k, got, v)
			}
		}
		if q.Get("location") == "" {
			t.Error("expected location bias")
		}
		fmt.Fprint(w, autocompleteOK)
	})

	got, err := c.Search(context.Background(), " mercado ", &Location{Latitude: -23.55, Longitude: -46.63})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d predictions, want 2", len(got))
	}
	if got[0].PlaceID != "ChIJ-mercado-1" || got[0].MainText != "Mercado Central" {
		t.Errorf("first prediction = %+v", got[0])
	}
	if got[1].SecondaryText != "" {
		t.Errorf("second secondary text = %q, want empty", got[1].SecondaryText)
	}
}

func TestSearchWithoutLocation(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("location") || r.URL.Query().Has("radius") {
			t.Error("unexpected location bias")
		}
		fmt.Fprint(w, autocompleteOK)
	})
	if _, err := c.Search(context.Background(), "mercado", nil); err != nil {
		t.Fatalf("Search: %v", err)
	}
}

func TestSearchShortQuery(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, autocompleteOK)
	})
	got, err := c.Search(context.Background(), "m", nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d predictions, want 0", len(got))
	}
	if n := atomic.LoadInt32(calls); n != 0 {
		t.Errorf("calls = %d, want 0", n)
	}
}

func TestSearchZeroResults(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ZERO_RESULTS","predictions":[]}`)
	})
	got, err := c.Search(context.Background(), "xyzxyz", nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty slice", got)
	}
}

func TestSearchAPIError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"REQUEST_DENIED","error_message":"bad key"}`)
	})
	if _, err := c.Search(context.Background(), "mercado", nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestSearchHTTPError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	if _, err := c.Search(context.Background(), "mercado", nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestSearchCache(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, autocompleteOK)
	})
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	ctx := context.Background()
	c.Search(ctx, "mercado", nil)
	c.Search(ctx, "mercado", nil)
	if n := atomic.LoadInt32(calls); n != 1 {
		t.Errorf("calls within TTL = %d, want 1", n)
	}

	c.Search(ctx, "padaria", nil)
	if n := atomic.LoadInt32(calls); n != 2 {
		t.Errorf("calls after new query = %d, want 2", n)
	}

	now = now.Add(cacheTTL + time.Second)
	c.Search(ctx, "mercado", nil)
	if n := atomic.LoadInt32(calls); n != 3 {
		t.Errorf("calls after TTL = %d, want 3", n)
	}
}

func TestDetails(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/details/json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("place_id") != "ChIJ-mercado-1" {
			t.Errorf("place_id = %q", q.Get("place_id"))
		}
		if q.Get("fields") != "name,formatted_address,geometry,place_id" {
			t.Errorf("fields = %q", q.Get("fields"))
		}
		fmt.Fprint(w, detailsOK)
	})

	m, err := c.Details(context.Background(), "ChIJ-mercado-1")
	if err != nil {
		t.Fatalf("Details: %v", err)
	}
	if m.ID != "ChIJ-mercado-1" || m.Name != "Mercado Central" {
		t.Errorf("market = %+v", m)
	}
	if m.Address != "Rua A, 100 - Centro, São Paulo - SP" {
		t.Errorf("address = %q", m.Address)
	}
	if m.Latitude != -23.5505 || m.Longitude != -46.6333 {
		t.Errorf("coords = %v,%v", m.Latitude, m.Longitude)
	}

	c.Details(context.Background(), "ChIJ-mercado-1")
	if n := atomic.LoadInt32(calls); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestDetailsNotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"NOT_FOUND"}`)
	})
	_, err := c.Details(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestNotConfigured(t *testing.T) {
	c := NewClient(Config{}, nil)
	if c.Configured() {
		t.Fatal("Configured() = true without key")
	}
	if _, err := c.Search(context.Background(), "mercado", nil); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Search err = %v, want ErrNotConfigured", err)
	}
	if _, err := c.Details(context.Background(), "x"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Details err = %v, want ErrNotConfigured", err)
	}
}
