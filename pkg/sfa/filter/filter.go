// Package filter matches free text such as sector, industry or watchlist
// names against a user expression.
package filter

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Filter matches a text value.
type Filter interface {
	Match(s string) bool
}

// Parse builds a filter from an expression:
//   - Comma-separated exact names (case-insensitive): "Technology,Energy"
//   - Glob (case-insensitive): "Financial*"
//   - Regex: "/^Consumer (Cyclical|Defensive)$/"
//   - Leading "!" negates: "!Utilities"
//   - Anything else: case-insensitive substring
func Parse(expr string) (Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Always(true), nil
	}
	if strings.HasPrefix(expr, "!") {
		inner, err := Parse(expr[1:])
		if err != nil {
			return nil, err
		}
		return Not{inner: inner}, nil
	}
	if strings.HasPrefix(expr, "/") && strings.HasSuffix(expr, "/") && len(expr) > 2 {
		re, err := regexp.Compile(expr[1 : len(expr)-1])
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", expr, err)
		}
		return Regex{re: re}, nil
	}
	if strings.Contains(expr, ",") {
		set := map[string]struct{}{}
		for _, p := range strings.Split(expr, ",") {
			p = strings.ToLower(strings.TrimSpace(p))
			if p == "" {
				continue
			}
			set[p] = struct{}{}
		}
		return ExactSet{set: set}, nil
	}
	if strings.ContainsAny(expr, "*?[") {
		pattern := strings.ToLower(expr)
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("filter %q: %w", expr, err)
		}
		return Glob{pattern: pattern}, nil
	}
	return SubstrCI{needle: expr}, nil
}

// MustParse is Parse for expressions known to be valid.
func MustParse(expr string) Filter {
	f, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return f
}

type Always bool

func (a Always) Match(string) bool { return bool(a) }

type ExactSet struct{ set map[string]struct{} }

func (e ExactSet) Match(s string) bool {
	_, ok := e.set[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

type Glob struct{ pattern string }

func (g Glob) Match(s string) bool {
	ok, _ := filepath.Match(g.pattern, strings.ToLower(s))
	return ok
}

type Regex struct{ re *regexp.Regexp }

func (r Regex) Match(s string) bool { return r.re.MatchString(s) }

// SubstrCI matches if s contains needle, case-insensitively.
type SubstrCI struct{ needle string }

func (m SubstrCI) Match(s string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(m.needle))
}

type Not struct{ inner Filter }

func (n Not) Match(s string) bool { return !n.inner.Match(s) }

// String provides a human-readable representation useful for logs/errors.
func (g Glob) String() string     { return fmt.Sprintf("glob:%s", g.pattern) }
func (r Regex) String() string    { return fmt.Sprintf("regex:%s", r.re) }
func (m SubstrCI) String() string { return fmt.Sprintf("substr-ci:%s", m.needle) }
func (n Not) String() string      { return fmt.Sprintf("not:%v", n.inner) }
