package lists

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dukerupert/feirinha/internal/model"
)

// UnitEach is the only unit priced per piece when an item is added.
const UnitEach = "un"

// AddedItemTotal is the line total of an item at the moment it is added. For
// "un" the unit value is a price per piece; for every other unit (or none)
// the unit value already is the price paid for the whole amount.
func AddedItemTotal(amount float64, unit string, unitValue float64) float64 {
	if unit == UnitEach {
		return multiply(amount, unitValue)
	}
	return unitValue
}

// UpdatedItemTotal is the line total after an item is edited: always amount
// times unit value, whatever the unit.
//
// TODO: this disagrees with AddedItemTotal for non-"un" units; settle which
// rule is intended before changing either.
func UpdatedItemTotal(amount, unitValue float64) float64 {
	return multiply(amount, unitValue)
}

// ListTotal sums the line totals of items.
func ListTotal(items []model.PurchaseItem) float64 {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(decimal.NewFromFloat(item.TotalValueItem))
	}
	return sum.InexactFloat64()
}

func multiply(a, b float64) float64 {
	return decimal.NewFromFloat(a).Mul(decimal.NewFromFloat(b)).InexactFloat64()
}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)`)

// ParseAmount reads a quantity or price typed by a user. A comma is accepted
// as decimal separator and trailing text is ignored ("2,5 kg" is 2.5).
// Anything without a leading number is 0.
func ParseAmount(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	m := leadingNumber.FindString(s)
	if m == "" {
		return 0
	}
	d, err := decimal.NewFromString(strings.TrimSuffix(m, "."))
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}
