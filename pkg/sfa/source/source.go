package source

import (
	"context"
	"strings"
)

// Watchlist is a named list of symbols.
type Watchlist struct {
	Name    string
	Symbols []string
}

// Source loads watchlists from a specification (e.g., filepath).
type Source interface {
	Load(ctx context.Context, path string) ([]Watchlist, error)
}

// ParseSymbols splits comma or whitespace separated symbol input,
// upper-cases it and drops duplicates while keeping first-seen order.
func ParseSymbols(args []string) []string {
	out := make([]string, 0, len(args))
	seen := map[string]struct{}{}
	for _, a := range args {
		for _, f := range strings.FieldsFunc(a, isSep) {
			s := strings.ToUpper(strings.TrimSpace(f))
			if s == "" {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

func isSep(r rune) bool {
	return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// Symbols flattens watchlists into one de-duplicated symbol list.
func Symbols(lists []Watchlist) []string {
	var all []string
	for _, l := range lists {
		all = append(all, l.Symbols...)
	}
	return ParseSymbols(all)
}
