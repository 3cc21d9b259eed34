package columns

import (
	"sort"
	"strings"
)

// Sets defines named column groups that expand into lists of columns.
var Sets = map[string][]string{
	"default":    {"sym", "name", "sector", "price", "mcap", "pe", "roe", "roa", "de"},
	"overview":   {"sym", "name", "sector", "industry", "mcap"},
	"price":      {"price", "high52", "low52", "chg1y"},
	"valuation":  {"eps", "pe", "divyield"},
	"financials": {"revenue", "gross", "netincome"},
	"ratios":     {"roe", "roa", "de", "yroe", "yroa", "yde"},
	"analyst":    {"reco", "target", "targetlow", "targethigh"},
	"screen":     {"sym", "name", "roe", "de", "mcap", "included"},
	// Export mirrors the dashboard's summary CSV plus the derived ratios.
	"export": {"sym", "name", "price", "pe", "eps", "revenue", "netincome", "roe", "roa", "de"},
}

// ExpandSets returns the union of columns for the given set names.
// It preserves the order of the sets and the order of columns within each set,
// and de-duplicates columns while keeping the first occurrence.
func ExpandSets(setNames []string) ([]string, error) {
	out := make([]string, 0, 16)
	seen := map[string]struct{}{}
	for _, name := range setNames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		cols, ok := Sets[name]
		if !ok {
			return nil, &UnknownSetError{Name: name, Available: availableSets()}
		}
		for _, c := range cols {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out, nil
}

// UnknownSetError reports an unknown column set name.
type UnknownSetError struct {
	Name      string
	Available []string
}

func (e *UnknownSetError) Error() string {
	return "unknown column set: " + e.Name + "; available: " + strings.Join(e.Available, ", ")
}

func availableSets() []string {
	keys := make([]string, 0, len(Sets))
	for k := range Sets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Resolve combines explicit columns and set names into column definitions.
// Explicit columns come first; with neither given, fallback sets are used.
func Resolve(cols, sets, fallbackSets []string) ([]Def, error) {
	if len(cols) == 0 && len(sets) == 0 {
		sets = fallbackSets
	}
	fromSets, err := ExpandSets(sets)
	if err != nil {
		return nil, err
	}
	return Compute(append(append([]string(nil), cols...), fromSets...), nil)
}
