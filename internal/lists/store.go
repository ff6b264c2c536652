// Package lists owns shopping lists and their purchase items, including the
// per-item and per-list totals.
package lists

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dukerupert/feirinha/internal/model"
)

// StorageKey is the durable storage slot of the list document.
const StorageKey = "shopping-lists-storage"

var (
	ErrListNotFound  = errors.New("list not found")
	ErrItemNotFound  = errors.New("item not found")
	ErrNameRequired  = errors.New("name is required")
	ErrInvalidStatus = errors.New("invalid list status")
)

// Document is the persisted form of the store.
type Document struct {
	Lists []model.ShoppingList `json:"lists"`
}

// Slot is the persistence binding used by the store; *persist.Slot[Document]
// satisfies it.
type Slot interface {
	Load(ctx context.Context) (Document, error)
	Save(doc Document)
}

type Options struct {
	// Strict rejects list and item names that are empty after trimming.
	Strict bool
	// OnChange is called after every committed mutation, outside the lock.
	OnChange model.Notifier
	Now      func() time.Time
	NewID    func() string
}

// Store is the single writer for shopping lists. Every exported method is
// safe for concurrent use and applies its mutation atomically: readers see
// the state before or after, never in between.
//
// Methods that reference a missing list or item return ErrListNotFound or
// ErrItemNotFound and leave every list unchanged.
type Store struct {
	mu     sync.RWMutex
	lists  []model.ShoppingList
	slot   Slot
	logger *zap.Logger
	opts   Options
}

// Open builds a store and rehydrates it from slot. An unreadable document is
// logged and the store starts empty.
func Open(ctx context.Context, slot Slot, logger *zap.Logger, opts Options) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	s := &Store{slot: slot, logger: logger, opts: opts}

	doc, err := slot.Load(ctx)
	if err != nil {
		logger.Warn("rehydrate lists, starting empty", zap.Error(err))
		return s
	}
	s.lists = normalize(doc.Lists)
	logger.Debug("lists rehydrated", zap.Int("count", len(s.lists)))
	return s
}

// normalize repairs documents written by older versions: nil item slices,
// missing status and stale totals.
func normalize(in []model.ShoppingList) []model.ShoppingList {
	out := make([]model.ShoppingList, 0, len(in))
	for _, l := range in {
		l = l.Clone()
		if !l.Status.Stored() {
			l.Status = model.StatusPending
		}
		l.TotalExpectedValue = ListTotal(l.Items)
		out = append(out, l)
	}
	return out
}

// Lists returns a copy of every list in insertion order.
func (s *Store) Lists() []model.ShoppingList {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.lists)
}

// Filter returns the lists with the given status; StatusAll returns all.
func (s *Store) Filter(status model.ListStatus) []model.ShoppingList {
	if status == model.StatusAll || status == "" {
		return s.Lists()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.ShoppingList{}
	for _, l := range s.lists {
		if l.Status == status {
			out = append(out, l.Clone())
		}
	}
	return out
}

// Get returns a copy of one list.
func (s *Store) Get(listID string) (model.ShoppingList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(listID)
	if i < 0 {
		return model.ShoppingList{}, ErrListNotFound
	}
	return s.lists[i].Clone(), nil
}

// AddList creates a pending, empty list.
func (s *Store) AddList(in model.NewList) (model.ShoppingList, error) {
	if s.opts.Strict && strings.TrimSpace(in.Name) == "" {
		return model.ShoppingList{}, ErrNameRequired
	}

	l := model.ShoppingList{
		ID:                 s.opts.NewID(),
		Name:               in.Name,
		DateCreation:       s.opts.Now().UTC(),
		MarketID:           in.MarketID,
		MarketName:         in.MarketName,
		Items:              []model.PurchaseItem{},
		Status:             model.StatusPending,
		TotalExpectedValue: 0,
	}
	if in.ExpectedPurchaseDate != nil {
		d := *in.ExpectedPurchaseDate
		l.ExpectedPurchaseDate = &d
	}

	s.mu.Lock()
	s.lists = append(s.lists, l)
	s.commit()
	s.mu.Unlock()

	s.notify(model.Change{Entity: model.EntityList, Action: model.ActionCreated, ID: l.ID})
	return l.Clone(), nil
}

// AddItemToList appends a new item, pricing it with AddedItemTotal, and
// recomputes the list total.
func (s *Store) AddItemToList(listID string, in model.NewItem) (model.PurchaseItem, error) {
	if s.opts.Strict && strings.TrimSpace(in.Name) == "" {
		return model.PurchaseItem{}, ErrNameRequired
	}

	item := model.PurchaseItem{
		ID:            s.opts.NewID(),
		Name:          in.Name,
		Amount:        in.Amount,
		Unit:          in.Unit,
		CategoryID:    in.CategoryID,
		LastPricePaid: in.LastPricePaid,
		LastMarketID:  in.LastMarketID,
	}
	if in.UnitValue != nil {
		v := *in.UnitValue
		item.UnitValue = &v
	}
	if in.Category != nil {
		c := *in.Category
		item.Category = &c
	}
	item.TotalValueItem = AddedItemTotal(item.Amount, item.Unit, item.UnitPrice())

	s.mu.Lock()
	i := s.indexOf(listID)
	if i < 0 {
		s.mu.Unlock()
		return model.PurchaseItem{}, ErrListNotFound
	}
	l := s.lists[i].Clone()
	l.Items = append(l.Items, item)
	l.TotalExpectedValue = ListTotal(l.Items)
	s.lists[i] = l
	s.commit()
	s.mu.Unlock()

	s.notify(model.Change{Entity: model.EntityItem, Action: model.ActionCreated, ID: item.ID, ListID: listID})
	return item.Clone(), nil
}

// UpdateItemInList merges patch into an item. The line total is always
// recomputed with UpdatedItemTotal, even if only the name changed.
func (s *Store) UpdateItemInList(listID, itemID string, patch model.ItemPatch) (model.PurchaseItem, error) {
	if s.opts.Strict && patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return model.PurchaseItem{}, ErrNameRequired
	}

	s.mu.Lock()
	i := s.indexOf(listID)
	if i < 0 {
		s.mu.Unlock()
		return model.PurchaseItem{}, ErrListNotFound
	}
	j := indexOfItem(s.lists[i].Items, itemID)
	if j < 0 {
		s.mu.Unlock()
		return model.PurchaseItem{}, ErrItemNotFound
	}

	l := s.lists[i].Clone()
	item := applyItemPatch(l.Items[j], patch)
	item.TotalValueItem = UpdatedItemTotal(item.Amount, item.UnitPrice())
	l.Items[j] = item
	l.TotalExpectedValue = ListTotal(l.Items)
	s.lists[i] = l
	s.commit()
	s.mu.Unlock()

	s.notify(model.Change{Entity: model.EntityItem, Action: model.ActionUpdated, ID: itemID, ListID: listID})
	return item.Clone(), nil
}

func applyItemPatch(item model.PurchaseItem, p model.ItemPatch) model.PurchaseItem {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Amount != nil {
		item.Amount = *p.Amount
	}
	if p.Unit != nil {
		item.Unit = *p.Unit
	}
	if p.UnitValue != nil {
		v := *p.UnitValue
		item.UnitValue = &v
	}
	if p.CategoryID != nil {
		item.CategoryID = *p.CategoryID
	}
	if p.Category != nil {
		c := *p.Category
		item.Category = &c
	}
	if p.LastPricePaid != nil {
		item.LastPricePaid = *p.LastPricePaid
	}
	if p.LastMarketID != nil {
		item.LastMarketID = *p.LastMarketID
	}
	return item
}

// RemoveItemFromList deletes an item and recomputes the list total.
func (s *Store) RemoveItemFromList(listID, itemID string) error {
	s.mu.Lock()
	i := s.indexOf(listID)
	if i < 0 {
		s.mu.Unlock()
		return ErrListNotFound
	}
	j := indexOfItem(s.lists[i].Items, itemID)
	if j < 0 {
		s.mu.Unlock()
		return ErrItemNotFound
	}

	l := s.lists[i].Clone()
	l.Items = append(l.Items[:j], l.Items[j+1:]...)
	l.TotalExpectedValue = ListTotal(l.Items)
	s.lists[i] = l
	s.commit()
	s.mu.Unlock()

	s.notify(model.Change{Entity: model.EntityItem, Action: model.ActionDeleted, ID: itemID, ListID: listID})
	return nil
}

// RemoveList deletes a list together with its items.
func (s *Store) RemoveList(listID string) error {
	s.mu.Lock()
	i := s.indexOf(listID)
	if i < 0 {
		s.mu.Unlock()
		return ErrListNotFound
	}
	next := make([]model.ShoppingList, 0, len(s.lists)-1)
	next = append(next, s.lists[:i]...)
	next = append(next, s.lists[i+1:]...)
	s.lists = next
	s.commit()
	s.mu.Unlock()

	s.notify(model.Change{Entity: model.EntityList, Action: model.ActionDeleted, ID: listID})
	return nil
}

// RenameList sets the list name. Renaming to the current name changes
// nothing and writes nothing.
func (s *Store) RenameList(listID, name string) error {
	if s.opts.Strict && strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	return s.patchList(listID, func(l *model.ShoppingList) bool {
		if l.Name == name {
			return false
		}
		l.Name = name
		return true
	})
}

// ArchieList marks a list archived whatever its current status.
func (s *Store) ArchieList(listID string) error {
	return s.patchList(listID, func(l *model.ShoppingList) bool {
		if l.Status == model.StatusArchived {
			return false
		}
		l.Status = model.StatusArchived
		return true
	})
}

// UpdateListTotal recomputes TotalExpectedValue from the list's items.
func (s *Store) UpdateListTotal(listID string) error {
	return s.patchList(listID, func(l *model.ShoppingList) bool {
		total := ListTotal(l.Items)
		if total == l.TotalExpectedValue {
			return false
		}
		l.TotalExpectedValue = total
		return true
	})
}

// UpdateList merges patch into a list. Identity, creation date, items and
// the derived total cannot be patched.
func (s *Store) UpdateList(listID string, patch model.ListPatch) error {
	if patch.Status != nil && !patch.Status.Stored() {
		return ErrInvalidStatus
	}
	if s.opts.Strict && patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return ErrNameRequired
	}
	return s.patchList(listID, func(l *model.ShoppingList) bool {
		if patch.Name != nil {
			l.Name = *patch.Name
		}
		if patch.Status != nil {
			l.Status = *patch.Status
		}
		if patch.MarketID != nil {
			l.MarketID = *patch.MarketID
		}
		if patch.MarketName != nil {
			l.MarketName = *patch.MarketName
		}
		if patch.ExpectedPurchaseDate != nil {
			d := *patch.ExpectedPurchaseDate
			l.ExpectedPurchaseDate = &d
		}
		return true
	})
}

// Replace swaps the whole collection, e.g. when restoring a backup. Totals
// are recomputed.
func (s *Store) Replace(in []model.ShoppingList) {
	s.mu.Lock()
	s.lists = normalize(in)
	s.commit()
	s.mu.Unlock()

	s.notify(model.Change{Entity: model.EntityList, Action: model.ActionReplaced})
}

// patchList applies fn to a copy of the list and commits it when fn reports
// a change.
func (s *Store) patchList(listID string, fn func(*model.ShoppingList) bool) error {
	s.mu.Lock()
	i := s.indexOf(listID)
	if i < 0 {
		s.mu.Unlock()
		return ErrListNotFound
	}
	l := s.lists[i].Clone()
	if !fn(&l) {
		s.mu.Unlock()
		return nil
	}
	s.lists[i] = l
	s.commit()
	s.mu.Unlock()

	s.notify(model.Change{Entity: model.EntityList, Action: model.ActionUpdated, ID: listID})
	return nil
}

// commit hands a snapshot to the persistence slot. Callers hold s.mu so
// snapshots are queued in mutation order.
func (s *Store) commit() {
	s.slot.Save(Document{Lists: cloneAll(s.lists)})
}

func (s *Store) notify(c model.Change) {
	if s.opts.OnChange != nil {
		s.opts.OnChange(c)
	}
}

func (s *Store) indexOf(listID string) int {
	for i := range s.lists {
		if s.lists[i].ID == listID {
			return i
		}
	}
	return -1
}

func indexOfItem(items []model.PurchaseItem, itemID string) int {
	for i := range items {
		if items[i].ID == itemID {
			return i
		}
	}
	return -1
}

func cloneAll(in []model.ShoppingList) []model.ShoppingList {
	out := make([]model.ShoppingList, len(in))
	for i, l := range in {
		out[i] = l.Clone()
	}
	return out
}
