package model

// Category is either a built-in category (IsPadrao, ID equal to its catalog
// value) or one created by the user.
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Icon     string `json:"icon,omitempty"`
	Color    string `json:"color,omitempty"`
	IsPadrao bool   `json:"isPadrao"`
}
