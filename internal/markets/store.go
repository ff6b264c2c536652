// Package markets keeps the user's favorite markets.
package markets

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/dukerupert/feirinha/internal/model"
)

// StorageKey is the durable storage slot of the favorites document.
const StorageKey = "favorite-markets-storage"

var ErrMarketNotFound = errors.New("market not found")

type Document struct {
	FavoriteMarkets []model.Market `json:"favoriteMarkets"`
}

type Slot interface {
	Load(ctx context.Context) (Document, error)
	Save(doc Document)
}

type Options struct {
	OnChange model.Notifier
}

// Store holds favorite markets, at most one per id, in insertion order.
type Store struct {
	mu      sync.RWMutex
	markets []model.Market
	slot    Slot
	logger  *zap.Logger
	opts    Options
}

func Open(ctx context.Context, slot Slot, logger *zap.Logger, opts Options) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{slot: slot, logger: logger, opts: opts}

	doc, err := slot.Load(ctx)
	if err != nil {
		logger.Warn("rehydrate favorite markets, starting empty", zap.Error(err))
		return s
	}
	s.markets = dedupe(doc.FavoriteMarkets)
	logger.Debug("favorite markets rehydrated", zap.Int("count", len(s.markets)))
	return s
}

func (s *Store) FavoriteMarkets() []model.Market {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Market{}, s.markets...)
}

func (s *Store) Get(id string) (model.Market, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.markets {
		if m.ID == id {
			return m, nil
		}
	}
	return model.Market{}, ErrMarketNotFound
}

func (s *Store) Contains(id string) bool {
	_, err := s.Get(id)
	return err == nil
}

// AddFavoriteMarket appends m unless a market with the same id is already
// saved. It reports whether m was inserted.
func (s *Store) AddFavoriteMarket(m model.Market) bool {
	s.mu.Lock()
	for _, existing := range s.markets {
		if existing.ID == m.ID {
			s.mu.Unlock()
			return false
		}
	}
	next := make([]model.Market, 0, len(s.markets)+1)
	next = append(next, s.markets...)
	s.markets = append(next, m)
	s.commit()
	s.mu.Unlock()

	s.notify(model.Change{Entity: model.EntityMarket, Action: model.ActionCreated, ID: m.ID})
	return true
}

// RemoveFavoriteMarkets removes every market whose id is in ids in a single
// update and returns how many were removed. Unknown ids are ignored.
func (s *Store) RemoveFavoriteMarkets(ids []string) int {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	s.mu.Lock()
	next := make([]model.Market, 0, len(s.markets))
	var removed []string
	for _, m := range s.markets {
		if _, ok := drop[m.ID]; ok {
			removed = append(removed, m.ID)
			continue
		}
		next = append(next, m)
	}
	if len(removed) == 0 {
		s.mu.Unlock()
		return 0
	}
	s.markets = next
	s.commit()
	s.mu.Unlock()

	for _, id := range removed {
		s.notify(model.Change{Entity: model.EntityMarket, Action: model.ActionDeleted, ID: id})
	}
	return len(removed)
}

func (s *Store) ClearFavoriteMarkets() {
	s.mu.Lock()
	s.markets = []model.Market{}
	s.commit()
	s.mu.Unlock()

	s.notify(model.Change{Entity: model.EntityMarket, Action: model.ActionReplaced})
}

// Replace swaps the whole collection. Duplicate ids keep the first entry.
func (s *Store) Replace(in []model.Market) {
	next := dedupe(in)

	s.mu.Lock()
	s.markets = next
	s.commit()
	s.mu.Unlock()

	s.notify(model.Change{Entity: model.EntityMarket, Action: model.ActionReplaced})
}

func (s *Store) commit() {
	s.slot.Save(Document{FavoriteMarkets: append([]model.Market{}, s.markets...)})
}

func (s *Store) notify(c model.Change) {
	if s.opts.OnChange != nil {
		s.opts.OnChange(c)
	}
}

func dedupe(in []model.Market) []model.Market {
	seen := make(map[string]struct{}, len(in))
	out := make([]model.Market, 0, len(in))
	for _, m := range in {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m)
	}
	return out
}
