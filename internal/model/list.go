package model

import (
	"fmt"
	"strings"
	"time"
)

type ListStatus string

const (
	// StatusAll is a filter value only; it is never stored on a list.
	StatusAll       ListStatus = "Todos"
	StatusPending   ListStatus = "Pendente"
	StatusArchived  ListStatus = "Arquivado"
	StatusCompleted ListStatus = "Concluída"
)

// Stored reports whether s may be stored on a list.
func (s ListStatus) Stored() bool {
	switch s {
	case StatusPending, StatusArchived, StatusCompleted:
		return true
	}
	return false
}

// ParseListStatus accepts the stored values as well as their English names
// ("all", "pending", "archived", "completed"), case-insensitively.
func ParseListStatus(v string) (ListStatus, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "all", "todos":
		return StatusAll, nil
	case "pending", "pendente":
		return StatusPending, nil
	case "archived", "arquivado":
		return StatusArchived, nil
	case "completed", "concluída", "concluida":
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("unknown list status %q", v)
}

type PurchaseItem struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Amount         float64   `json:"amount"`
	Unit           string    `json:"unit,omitempty"`
	UnitValue      *float64  `json:"unitvalue,omitempty"`
	TotalValueItem float64   `json:"totalValueItem"`
	CategoryID     string    `json:"categoryId,omitempty"`
	Category       *Category `json:"category,omitempty"`
	LastPricePaid  string    `json:"lastPricePaid,omitempty"`
	LastMarketID   string    `json:"lastMarketId,omitempty"`
}

// UnitPrice returns the item's unit value, or 0 when none was set.
func (i PurchaseItem) UnitPrice() float64 {
	if i.UnitValue == nil {
		return 0
	}
	return *i.UnitValue
}

func (i PurchaseItem) Clone() PurchaseItem {
	c := i
	if i.UnitValue != nil {
		v := *i.UnitValue
		c.UnitValue = &v
	}
	if i.Category != nil {
		cat := *i.Category
		c.Category = &cat
	}
	return c
}

// ShoppingList holds its items inline. MarketID and MarketName are a snapshot
// taken when the list was created; they are not kept in sync with the
// favorite markets.
type ShoppingList struct {
	ID                   string         `json:"id"`
	Name                 string         `json:"name"`
	DateCreation         time.Time      `json:"dateCreation"`
	ExpectedPurchaseDate *time.Time     `json:"ExpectedPurchaseDate,omitempty"`
	MarketID             string         `json:"marketId,omitempty"`
	MarketName           string         `json:"marketName,omitempty"`
	TotalExpectedValue   float64        `json:"TotalExpectedValue"`
	Items                []PurchaseItem `json:"items"`
	Status               ListStatus     `json:"status"`
}

func (l ShoppingList) Clone() ShoppingList {
	c := l
	if l.ExpectedPurchaseDate != nil {
		d := *l.ExpectedPurchaseDate
		c.ExpectedPurchaseDate = &d
	}
	c.Items = make([]PurchaseItem, len(l.Items))
	for i, item := range l.Items {
		c.Items[i] = item.Clone()
	}
	return c
}

// NewList carries the caller-supplied fields of a list being created.
type NewList struct {
	Name                 string     `json:"name"`
	MarketID             string     `json:"marketId,omitempty"`
	MarketName           string     `json:"marketName,omitempty"`
	ExpectedPurchaseDate *time.Time `json:"ExpectedPurchaseDate,omitempty"`
}

// ListPatch is a merge-patch for a list. Nil fields are left unchanged.
type ListPatch struct {
	Name                 *string     `json:"name,omitempty"`
	Status               *ListStatus `json:"status,omitempty"`
	MarketID             *string     `json:"marketId,omitempty"`
	MarketName           *string     `json:"marketName,omitempty"`
	ExpectedPurchaseDate *time.Time  `json:"ExpectedPurchaseDate,omitempty"`
}

// NewItem carries the caller-supplied fields of an item being added.
type NewItem struct {
	Name          string    `json:"name"`
	Amount        float64   `json:"amount"`
	Unit          string    `json:"unit,omitempty"`
	UnitValue     *float64  `json:"unitvalue,omitempty"`
	CategoryID    string    `json:"categoryId,omitempty"`
	Category      *Category `json:"category,omitempty"`
	LastPricePaid string    `json:"lastPricePaid,omitempty"`
	LastMarketID  string    `json:"lastMarketId,omitempty"`
}

// ItemPatch is a merge-patch for an item. Nil fields are left unchanged.
type ItemPatch struct {
	Name          *string   `json:"name,omitempty"`
	Amount        *float64  `json:"amount,omitempty"`
	Unit          *string   `json:"unit,omitempty"`
	UnitValue     *float64  `json:"unitvalue,omitempty"`
	CategoryID    *string   `json:"categoryId,omitempty"`
	Category      *Category `json:"category,omitempty"`
	LastPricePaid *string   `json:"lastPricePaid,omitempty"`
	LastMarketID  *string   `json:"lastMarketId,omitempty"`
}
