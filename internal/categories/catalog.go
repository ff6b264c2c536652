package categories

import "github.com/dukerupert/feirinha/internal/model"

// CatalogEntry is one built-in category as configured: Value doubles as the
// category id.
type CatalogEntry struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// DefaultCatalog is the built-in category list shipped with the app.
var DefaultCatalog = []CatalogEntry{
	{Label: "Frutas e Vegetais", Value: "frutas_vegetais"},
	{Label: "Laticínios e Ovos", Value: "laticinios_ovos"},
	{Label: "Carnes e Aves", Value: "carnes_aves"},
	{Label: "Padaria e Confeitaria", Value: "padaria_confeitaria"},
	{Label: "Grãos e Massas", Value: "graos_massas"},
	{Label: "Bebidas", Value: "bebidas"},
	{Label: "Limpeza", Value: "limpeza"},
	{Label: "Higiene Pessoal", Value: "higiene_pessoal"},
	{Label: "Congelados", Value: "congelados"},
	{Label: "Mercearia", Value: "mercearia"},
	{Label: "Doces e Sobremesas", Value: "doces_sobremesas"},
	{Label: "Biscoitos e Salgadinhos", Value: "biscoitos_salgadinhos"},
	{Label: "Pet Shop", Value: "pet_shop"},
}

func builtinCategories(catalog []CatalogEntry) []model.Category {
	out := make([]model.Category, 0, len(catalog))
	for _, e := range catalog {
		out = append(out, model.Category{ID: e.Value, Name: e.Label, IsPadrao: true})
	}
	return out
}
