// Package categories owns the user's custom categories and exposes them
// alongside the read-only built-in catalog.
package categories

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/dukerupert/feirinha/internal/model"
)

// StorageKey is the durable storage slot of the custom category document.
const StorageKey = "custom-categories-storage"

const (
	CustomPrefix = "custom-"
	DefaultIcon  = "format-list-bulleted"
	DefaultColor = "#6b7280"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrDefaultCategory  = errors.New("built-in categories cannot be changed")
	ErrDuplicateID      = errors.New("category id already exists")
	ErrNameRequired     = errors.New("category name is required")
)

type Document struct {
	Categories []model.Category `json:"categories"`
}

// Slot is the persistence binding used by the store.
type Slot interface {
	Load(ctx context.Context) (Document, error)
	Save(doc Document)
}

type Options struct {
	// Strict rejects names that are empty after trimming.
	Strict   bool
	OnChange model.Notifier
	NewID    func() string
}

// Store holds custom categories. Built-in categories come from the catalog
// given to Open and are never persisted, edited or deleted.
type Store struct {
	mu      sync.RWMutex
	builtin []model.Category
	custom  []model.Category
	slot    Slot
	logger  *zap.Logger
	opts    Options
}

func Open(ctx context.Context, slot Slot, catalog []CatalogEntry, logger *zap.Logger, opts Options) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return CustomPrefix + ulid.Make().String() }
	}
	s := &Store{
		builtin: builtinCategories(catalog),
		slot:    slot,
		logger:  logger,
		opts:    opts,
	}

	doc, err := slot.Load(ctx)
	if err != nil {
		logger.Warn("rehydrate categories, starting empty", zap.Error(err))
		return s
	}
	s.custom = append([]model.Category(nil), doc.Categories...)
	logger.Debug("categories rehydrated", zap.Int("count", len(s.custom)))
	return s
}

// Categories returns the custom categories.
func (s *Store) Categories() []model.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Category{}, s.custom...)
}

// Builtin returns the read-only catalog categories.
func (s *Store) Builtin() []model.Category {
	return append([]model.Category{}, s.builtin...)
}

// All returns built-in categories followed by custom ones.
func (s *Store) All() []model.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Category, 0, len(s.builtin)+len(s.custom))
	out = append(out, s.builtin...)
	return append(out, s.custom...)
}

// Get looks a category up in both the catalog and the custom categories.
func (s *Store) Get(id string) (model.Category, bool) {
	if i := indexOf(s.builtin, id); i >= 0 {
		return s.builtin[i], true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.custom, id); i >= 0 {
		return s.custom[i], true
	}
	return model.Category{}, false
}

// AddCategory appends a custom category. A missing id is generated with
// CustomPrefix; icon and color get defaults. IsPadrao is always cleared.
func (s *Store) AddCategory(c model.Category) (model.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if s.opts.Strict && c.Name == "" {
		return model.Category{}, ErrNameRequired
	}
	if c.ID == "" {
		c.ID = s.opts.NewID()
	}
	if c.Icon == "" {
		c.Icon = DefaultIcon
	}
	if c.Color == "" {
		c.Color = DefaultColor
	}
	c.IsPadrao = false

	s.mu.Lock()
	if indexOf(s.builtin, c.ID) >= 0 || indexOf(s.custom, c.ID) >= 0 {
		s.mu.Unlock()
		return model.Category{}, ErrDuplicateID
	}
	s.custom = append(s.custom, c)
	s.commit()
	s.mu.Unlock()

	s.notify(model.Change{Entity: model.EntityCategory, Action: model.ActionCreated, ID: c.ID})
	return c, nil
}

// UpdateCategory replaces the custom category with the same id.
func (s *Store) UpdateCategory(c model.Category) error {
	if indexOf(s.builtin, c.ID) >= 0 {
		return ErrDefaultCategory
	}
	c.Name = strings.TrimSpace(c.Name)
	if s.opts.Strict && c.Name == "" {
		return ErrNameRequired
	}

	s.mu.Lock()
	i := indexOf(s.custom, c.ID)
	if i < 0 {
		s.mu.Unlock()
		return ErrCategoryNotFound
	}
	if s.custom[i].IsPadrao {
		s.mu.Unlock()
		return ErrDefaultCategory
	}
	c.IsPadrao = false
	next := append([]model.Category(nil), s.custom...)
	next[i] = c
	s.custom = next
	s.commit()
	s.mu.Unlock()

	s.notify(model.Change{Entity: model.EntityCategory, Action: model.ActionUpdated, ID: c.ID})
	return nil
}

// DeleteCategory removes a custom category. Built-in categories, and any
// stored entry flagged IsPadrao, are refused with ErrDefaultCategory.
func (s *Store) DeleteCategory(id string) error {
	if indexOf(s.builtin, id) >= 0 {
		return ErrDefaultCategory
	}

	s.mu.Lock()
	i := indexOf(s.custom, id)
	if i < 0 {
		s.mu.Unlock()
		return ErrCategoryNotFound
	}
	if s.custom[i].IsPadrao {
		s.mu.Unlock()
		return ErrDefaultCategory
	}
	next := make([]model.Category, 0, len(s.custom)-1)
	next = append(next, s.custom[:i]...)
	next = append(next, s.custom[i+1:]...)
	s.custom = next
	s.commit()
	s.mu.Unlock()

	s.notify(model.Change{Entity: model.EntityCategory, Action: model.ActionDeleted, ID: id})
	return nil
}

// Replace swaps all custom categories, dropping any that collide with the
// catalog.
func (s *Store) Replace(in []model.Category) {
	next := make([]model.Category, 0, len(in))
	for _, c := range in {
		if indexOf(s.builtin, c.ID) >= 0 || indexOf(next, c.ID) >= 0 {
			continue
		}
		next = append(next, c)
	}

	s.mu.Lock()
	s.custom = next
	s.commit()
	s.mu.Unlock()

	s.notify(model.Change{Entity: model.EntityCategory, Action: model.ActionReplaced})
}

func (s *Store) commit() {
	s.slot.Save(Document{Categories: append([]model.Category{}, s.custom...)})
}

func (s *Store) notify(c model.Change) {
	if s.opts.OnChange != nil {
		s.opts.OnChange(c)
	}
}

func indexOf(cats []model.Category, id string) int {
	for i := range cats {
		if cats[i].ID == id {
			return i
		}
	}
	return -1
}
