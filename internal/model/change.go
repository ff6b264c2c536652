package model

const (
	EntityList     = "shopping_list"
	EntityItem     = "purchase_item"
	EntityCategory = "category"
	EntityMarket   = "favorite_market"

	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionDeleted  = "deleted"
	ActionReplaced = "replaced"
)

// Change describes one committed store mutation. ListID is set for item
// changes.
type Change struct {
	Entity string `json:"entity"`
	Action string `json:"action"`
	ID     string `json:"id,omitempty"`
	ListID string `json:"list_id,omitempty"`
}

// Notifier receives changes after they are applied to in-memory state.
type Notifier func(Change)
