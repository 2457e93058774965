package document

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

const pathSep = "\x00"

// parseTOML decodes data and restores the key order recorded in the
// decoder metadata. Keys the metadata does not order follow, sorted.
func parseTOML(data []byte) (fields, error) {
	var raw map[string]any
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, fmt.Errorf("toml decode failed: %w", err)
	}
	order := make(map[string][]string)
	seen := make(map[string]bool)
	for _, key := range md.Keys() {
		if len(key) == 0 {
			continue
		}
		full := strings.Join(key, pathSep)
		if seen[full] {
			continue
		}
		seen[full] = true
		parent := strings.Join(key[:len(key)-1], pathSep)
		order[parent] = append(order[parent], key[len(key)-1])
	}
	return orderedTOML(raw, nil, order), nil
}

func orderedTOML(m map[string]any, path []string, order map[string][]string) fields {
	out := make(fields, 0, len(m))
	used := make(map[string]bool, len(m))
	for _, k := range order[strings.Join(path, pathSep)] {
		v, ok := m[k]
		if !ok || used[k] {
			continue
		}
		used[k] = true
		out = append(out, field{key: k, val: tomlValue(v, childPath(path, k), order)})
	}
	rest := make([]string, 0, len(m)-len(used))
	for k := range m {
		if !used[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		out = append(out, field{key: k, val: tomlValue(m[k], childPath(path, k), order)})
	}
	return out
}

// Array elements share the path of their array.
func tomlValue(v any, path []string, order map[string][]string) any {
	switch x := v.(type) {
	case map[string]any:
		return orderedTOML(x, path, order)
	case []map[string]any:
		items := make([]any, 0, len(x))
		for _, item := range x {
			items = append(items, orderedTOML(item, path, order))
		}
		return items
	case []any:
		items := make([]any, 0, len(x))
		for _, item := range x {
			items = append(items, tomlValue(item, path, order))
		}
		return items
	default:
		return v
	}
}

func childPath(path []string, key string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = key
	return out
}
