package cost

import "slices"

// Classification is the accounting bucket of a cost entry
type Classification string

const (
	ClassificationFixed      Classification = "FIXED"
	ClassificationVariable   Classification = "VARIABLE"
	ClassificationInvestment Classification = "INVESTMENT"
)

// AllClassifications returns the classifications in display order
func AllClassifications() []Classification {
	return []Classification{ClassificationFixed, ClassificationVariable, ClassificationInvestment}
}

// IsValid checks if the classification is a known value
func (c Classification) IsValid() bool {
	switch c {
	case ClassificationFixed, ClassificationVariable, ClassificationInvestment:
		return true
	}
	return false
}

// Label returns the human-readable name used in exports
func (c Classification) Label() string {
	switch c {
	case ClassificationFixed:
		return "Custos Fixos"
	case ClassificationVariable:
		return "Custos Variáveis"
	case ClassificationInvestment:
		return "Investimentos"
	}
	return string(c)
}

// Categories returns the categories allowed for the classification
func (c Classification) Categories() []string {
	return slices.Clone(categories[c])
}

// AllowsCategory reports whether category belongs to the classification
func (c Classification) AllowsCategory(category string) bool {
	return slices.Contains(categories[c], category)
}

var categories = map[Classification][]string{
	ClassificationFixed: {
		"salarios", "internet", "energia", "agua", "aluguel",
		"seguro", "impostos", "manutencao", "outros",
	},
	ClassificationVariable: {
		"sementes", "fertilizantes", "defensivos", "combustivel", "embalagens",
		"mao_de_obra_temporaria", "frete", "outros",
	},
	ClassificationInvestment: {
		"equipamentos", "maquinas", "construcoes", "irrigacao", "veiculos",
		"melhorias", "outros",
	},
}

var units = []string{"UN", "KG", "L", "M", "M²", "M³", "T", "SC", "CX", "PC", "HR", "DIA"}

// Units returns the measurement units accepted on cost entries
func Units() []string {
	return slices.Clone(units)
}

// IsValidUnit reports whether unit is an accepted cost unit
func IsValidUnit(unit string) bool {
	return slices.Contains(units, unit)
}

// DefaultUsefulLifeMonths is used for investments when no useful life is given
const DefaultUsefulLifeMonths = 12
