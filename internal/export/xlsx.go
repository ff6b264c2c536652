// Package export renders a shopping list as a spreadsheet.
package export

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/dukerupert/feirinha/internal/model"
)

const sheetName = "Lista"

var header = []interface{}{
	"Item",
	"Categoria",
	"Quantidade",
	"Unidade",
	"Valor unitário",
	"Total",
	"Último preço pago",
}

// CategoryNamer resolves a category id to a display name.
type CategoryNamer func(id string) string

// WriteList writes list as an xlsx workbook: a header row, one row per item
// and a final total row.
func WriteList(w io.Writer, list model.ShoppingList, categoryName CategoryNamer) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := 2
	for _, it := range list.Items {
		cat := it.CategoryID
		if it.Category != nil && it.Category.Name != "" {
			cat = it.Category.Name
		} else if categoryName != nil {
			if name := categoryName(it.CategoryID); name != "" {
				cat = name
			}
		}

		var unitValue interface{}
		if it.UnitValue != nil {
			unitValue = *it.UnitValue
		}

		values := []interface{}{
			it.Name,
			cat,
			it.Amount,
			it.Unit,
			unitValue,
			it.TotalValueItem,
			it.LastPricePaid,
		}
		if err := setRow(f, row, values); err != nil {
			return err
		}
		row++
	}

	if err := setRow(f, row, []interface{}{"Total", nil, nil, nil, nil, list.TotalExpectedValue}); err != nil {
		return err
	}

	if err := f.SetColWidth(sheetName, "A", "B", 28); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

var unsafeFileChars = regexp.MustCompile(`[^\p{L}\p{N}_-]+`)

// FileName builds a download name such as "lista_Feira_do_mes_20250601.xlsx".
func FileName(list model.ShoppingList) string {
	name := strings.Trim(unsafeFileChars.ReplaceAllString(list.Name, "_"), "_")
	if name == "" {
		name = list.ID
	}
	return fmt.Sprintf("lista_%s_%s.xlsx", name, list.DateCreation.Format("20060102"))
}
