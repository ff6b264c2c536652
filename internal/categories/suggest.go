package categories

import "strings"

// FallbackCategory is suggested when nothing matches.
const FallbackCategory = "mercearia"

// Suggest returns the built-in category value for a product name. It
// performs case-insensitive matching: exact match first, then substring
// match. Falls back to FallbackCategory.
func Suggest(itemName string) string {
	name := strings.ToLower(strings.TrimSpace(itemName))
	if name == "" {
		return FallbackCategory
	}

	if cat, ok := exactMatch[name]; ok {
		return cat
	}

	// ordered longer/more-specific first
	for _, entry := range substringMatches {
		if strings.Contains(name, entry.keyword) {
			return entry.category
		}
	}

	return FallbackCategory
}

var exactMatch = map[string]string{
	// frutas_vegetais
	"banana":   "frutas_vegetais",
	"maçã":     "frutas_vegetais",
	"laranja":  "frutas_vegetais",
	"limão":    "frutas_vegetais",
	"tomate":   "frutas_vegetais",
	"batata":   "frutas_vegetais",
	"cebola":   "frutas_vegetais",
	"alho":     "frutas_vegetais",
	"alface":   "frutas_vegetais",
	"cenoura":  "frutas_vegetais",
	"abacate":  "frutas_vegetais",
	"mamão":    "frutas_vegetais",
	"manga":    "frutas_vegetais",
	"uva":      "frutas_vegetais",
	"abóbora":  "frutas_vegetais",
	"couve":    "frutas_vegetais",
	"pepino":   "frutas_vegetais",
	"chuchu":   "frutas_vegetais",
	"mandioca": "frutas_vegetais",
	"cheiro-verde": "frutas_vegetais",

	// laticinios_ovos
	"leite":     "laticinios_ovos",
	"ovos":      "laticinios_ovos",
	"ovo":       "laticinios_ovos",
	"manteiga":  "laticinios_ovos",
	"queijo":    "laticinios_ovos",
	"iogurte":   "laticinios_ovos",
	"requeijão": "laticinios_ovos",
	"nata":      "laticinios_ovos",

	// carnes_aves
	"frango":   "carnes_aves",
	"carne":    "carnes_aves",
	"picanha":  "carnes_aves",
	"alcatra":  "carnes_aves",
	"linguiça": "carnes_aves",
	"bacon":    "carnes_aves",
	"presunto": "carnes_aves",
	"peixe":    "carnes_aves",
	"tilápia":  "carnes_aves",
	"camarão":  "carnes_aves",

	// padaria_confeitaria
	"pão":       "padaria_confeitaria",
	"pães":      "padaria_confeitaria",
	"bolo":      "padaria_confeitaria",
	"torrada":   "padaria_confeitaria",
	"sonho":     "padaria_confeitaria",
	"pão de queijo": "padaria_confeitaria",

	// graos_massas
	"arroz":     "graos_massas",
	"feijão":    "graos_massas",
	"macarrão":  "graos_massas",
	"lentilha":  "graos_massas",
	"grão-de-bico": "graos_massas",
	"farinha":   "graos_massas",
	"aveia":     "graos_massas",
	"fubá":      "graos_massas",

	// bebidas
	"água":         "bebidas",
	"refrigerante": "bebidas",
	"suco":         "bebidas",
	"cerveja":      "bebidas",
	"vinho":        "bebidas",
	"café":         "bebidas",
	"chá":          "bebidas",

	// limpeza
	"detergente":   "limpeza",
	"sabão em pó":  "limpeza",
	"amaciante":    "limpeza",
	"desinfetante": "limpeza",
	"água sanitária": "limpeza",
	"esponja":      "limpeza",
	"saco de lixo": "limpeza",

	// higiene_pessoal
	"sabonete":       "higiene_pessoal",
	"shampoo":        "higiene_pessoal",
	"condicionador":  "higiene_pessoal",
	"pasta de dente": "higiene_pessoal",
	"creme dental":   "higiene_pessoal",
	"desodorante":    "higiene_pessoal",
	"papel higiênico": "higiene_pessoal",
	"fio dental":     "higiene_pessoal",

	// congelados
	"sorvete":     "congelados",
	"pizza":       "congelados",
	"lasanha":     "congelados",
	"hambúrguer":  "congelados",
	"nuggets":     "congelados",

	// mercearia
	"óleo":     "mercearia",
	"azeite":   "mercearia",
	"sal":      "mercearia",
	"açúcar":   "mercearia",
	"vinagre":  "mercearia",
	"molho de tomate": "mercearia",
	"extrato de tomate": "mercearia",
	"milho":    "mercearia",
	"ervilha":  "mercearia",
	"atum":     "mercearia",
	"sardinha": "mercearia",

	// doces_sobremesas
	"chocolate":    "doces_sobremesas",
	"doce de leite": "doces_sobremesas",
	"gelatina":     "doces_sobremesas",
	"goiabada":     "doces_sobremesas",
	"leite condensado": "doces_sobremesas",

	// biscoitos_salgadinhos
	"biscoito":    "biscoitos_salgadinhos",
	"bolacha":     "biscoitos_salgadinhos",
	"salgadinho":  "biscoitos_salgadinhos",
	"pipoca":      "biscoitos_salgadinhos",
	"amendoim":    "biscoitos_salgadinhos",

	// pet_shop
	"ração":        "pet_shop",
	"areia de gato": "pet_shop",
	"petisco":      "pet_shop",
}

type substringEntry struct {
	keyword  string
	category string
}

var substringMatches = []substringEntry{
	// multi-word first so "leite condensado" beats "leite"
	{"leite condensado", "doces_sobremesas"},
	{"creme de leite", "laticinios_ovos"},
	{"doce de leite", "doces_sobremesas"},
	{"pão de queijo", "padaria_confeitaria"},
	{"papel higiênico", "higiene_pessoal"},
	{"água sanitária", "limpeza"},
	{"sabão", "limpeza"},
	{"limpador", "limpeza"},
	{"multiuso", "limpeza"},
	{"ração", "pet_shop"},
	{"congelad", "congelados"},
	{"sorvete", "congelados"},
	{"biscoito", "biscoitos_salgadinhos"},
	{"bolacha", "biscoitos_salgadinhos"},
	{"chocolate", "doces_sobremesas"},
	{"refrigerante", "bebidas"},
	{"cerveja", "bebidas"},
	{"suco", "bebidas"},
	{"frango", "carnes_aves"},
	{"carne", "carnes_aves"},
	{"queijo", "laticinios_ovos"},
	{"iogurte", "laticinios_ovos"},
	{"leite", "laticinios_ovos"},
	{"arroz", "graos_massas"},
	{"feijão", "graos_massas"},
	{"macarrão", "graos_massas"},
	{"pão", "padaria_confeitaria"},
	{"shampoo", "higiene_pessoal"},
	{"sabonete", "higiene_pessoal"},
}
