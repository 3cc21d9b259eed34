package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAMLSource loads watchlists from a YAML file or a directory of them.
//
// Accepted shapes:
//
//	symbols: [AAPL, MSFT]
//
//	watchlist:
//	  - sym: AAPL
//	  - name: India
//	    watchlist:
//	      - sym: TCS.NS
type YAMLSource struct{}

func (YAMLSource) Load(ctx context.Context, path string) ([]Watchlist, error) { //nolint:revive // ctx reserved for future use
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		data, err := readFile(path)
		if err != nil {
			return nil, err
		}
		lists, err := parseYAML(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		for i := range lists {
			if strings.TrimSpace(lists[i].Name) == "" {
				lists[i].Name = base
			}
		}
		return lists, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	var all []Watchlist
	for _, full := range files {
		data, err := readFile(full)
		if err != nil {
			return nil, err
		}
		lists, err := parseYAML(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", full, err)
		}
		// Prefix list names with the file's path relative to the root.
		rel, err := filepath.Rel(path, full)
		if err != nil {
			rel = filepath.Base(full)
		}
		prefix := filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))
		for i := range lists {
			if strings.TrimSpace(lists[i].Name) == "" {
				lists[i].Name = prefix
			} else if prefix != "" {
				lists[i].Name = prefix + "/" + lists[i].Name
			}
		}
		all = append(all, lists...)
	}
	return all, nil
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func parseYAML(data []byte) ([]Watchlist, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root == nil {
		return nil, fmt.Errorf("invalid yaml: empty document")
	}

	var lists []Watchlist
	if v, ok := root["symbols"]; ok && v != nil {
		syms := ParseSymbols(toStringSlice(v))
		if len(syms) > 0 {
			name, _ := root["name"].(string)
			lists = append(lists, Watchlist{Name: name, Symbols: syms})
		}
	}

	wl, hasWL := root["watchlist"]
	if !hasWL && len(lists) == 0 {
		return nil, fmt.Errorf("invalid yaml: expected 'symbols' or 'watchlist'")
	}
	if hasWL && wl != nil {
		walk(wl, nil, &lists)
	}
	return lists, nil
}

// walk collects leaf symbols of each list level into a Watchlist named by
// the group path.
func walk(node any, path []string, lists *[]Watchlist) {
	switch n := node.(type) {
	case []any:
		var syms []string
		for _, e := range n {
			switch v := e.(type) {
			case string:
				syms = append(syms, v)
			case map[string]any:
				if child, ok := v["watchlist"]; ok {
					walk(child, childPath(path, v), lists)
					continue
				}
				if s, ok := v["sym"]; ok && s != nil {
					syms = append(syms, fmt.Sprint(s))
				}
			}
		}
		if syms = ParseSymbols(syms); len(syms) > 0 {
			*lists = append(*lists, Watchlist{Name: strings.Join(path, "/"), Symbols: syms})
		}
	case map[string]any:
		if child, ok := n["watchlist"]; ok {
			walk(child, childPath(path, n), lists)
			return
		}
		if s, ok := n["sym"]; ok && s != nil {
			*lists = append(*lists, Watchlist{Name: strings.Join(path, "/"), Symbols: ParseSymbols([]string{fmt.Sprint(s)})})
		}
	}
}

func childPath(path []string, group map[string]any) []string {
	next := append([]string(nil), path...)
	if name, ok := group["name"].(string); ok && name != "" {
		next = append(next, name)
	}
	return next
}

func toStringSlice(v any) []string {
	switch s := v.(type) {
	case string:
		return []string{s}
	case []any:
		out := make([]string, 0, len(s))
		for _, e := range s {
			if e == nil {
				continue
			}
			out = append(out, fmt.Sprint(e))
		}
		return out
	default:
		return nil
	}
}
