package handler

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dukerupert/feirinha/internal/lists"
)

// Number accepts a JSON number or a string such as "2,5" typed by the user.
// Strings go through lists.ParseAmount, so unparseable text becomes 0.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Number(lists.ParseAmount(s))
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("number: %w", err)
	}
	*n = Number(f)
	return nil
}

func (n *Number) ptr() *float64 {
	if n == nil {
		return nil
	}
	v := float64(*n)
	return &v
}
