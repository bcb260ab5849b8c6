package partner

import (
	"sort"
	"strings"
)

// Lookup limits used by the quick search box and the supplier picker
const (
	QuickSearchLimit = 5
	PickerLimit      = 10
)

// MatchByName returns active suppliers whose name contains term, ignoring case,
// sorted by name ascending and capped at limit when limit > 0.
// An empty term matches every active supplier.
func MatchByName(suppliers []Supplier, term string, limit int) []Supplier {
	needle := FoldName(term)
	matches := make([]Supplier, 0, len(suppliers))
	for _, s := range suppliers {
		if !s.Active {
			continue
		}
		if needle != "" && !strings.Contains(s.FoldedName(), needle) {
			continue
		}
		matches = append(matches, s)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].FoldedName() < matches[j].FoldedName()
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
