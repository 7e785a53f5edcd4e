package engine

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/specklesystems/speckle-automate-checker/internal/model"
	"github.com/specklesystems/speckle-automate-checker/internal/normalize"
)

// isContainerKey reports whether a key is schema scaffolding rather than a
// property name. Path normalization drops these segments and store
// traversal tunnels through them.
func isContainerKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "properties", "parameters":
		return true
	}
	return false
}

// normalizePath splits a dotted property path and drops container
// segments, so "properties.Parameters.Construction.Width" and
// "Construction.Width" address the same value.
func normalizePath(path string) []string {
	var out []string
	for _, part := range strings.Split(path, ".") {
		part = strings.TrimSpace(part)
		if part == "" || isContainerKey(part) {
			continue
		}
		out = append(out, part)
	}
	return out
}

// Resolve looks one property up on one object. Multi-segment paths
// traverse the store literally, tunneling through container levels when a
// segment has no direct match. Single names try the flat store first,
// then a deep search of nested parameter collections, then a spelling-
// insensitive retry. The result is unwrapped and coerced; every miss is
// the same absent value.
func Resolve(obj model.Object, property string) Value {
	segments := normalizePath(property)
	if len(segments) == 0 || obj.Props == nil {
		return Value{}
	}

	if len(segments) > 1 {
		if raw, path, ok := searchPath(obj.Props, segments); ok {
			return coerce(raw, path)
		}
		return Value{}
	}

	name := segments[0]

	if raw, path, ok := lookupKey(obj.Props, name, false); ok {
		return coerce(raw, path)
	}

	for _, store := range parameterStores(obj.Props) {
		if raw, path, ok := searchParameters(store.props, name, false); ok {
			return coerce(raw, store.path+"."+path)
		}
	}

	if normalize.Key(name) == "" {
		return Value{}
	}
	if raw, path, ok := lookupKey(obj.Props, name, true); ok {
		return coerce(raw, path)
	}
	for _, store := range parameterStores(obj.Props) {
		if raw, path, ok := searchParameters(store.props, name, true); ok {
			return coerce(raw, store.path+"."+path)
		}
	}
	return Value{}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// matchName compares a store key or display name against the requested
// property, either fold-insensitively or on normalized spellings so that
// "FIRE_RATING" finds "Fire Rating".
func matchName(candidate, name string, normalized bool) bool {
	if normalized {
		return normalize.Key(candidate) == normalize.Key(name)
	}
	return normalize.EqualFoldTrimmed(candidate, name)
}

// lookupKey scans one map level for the property. Keys are visited in
// sorted order so ambiguous stores resolve the same way on every run.
func lookupKey(props map[string]any, name string, normalized bool) (any, string, bool) {
	for _, k := range sortedKeys(props) {
		if matchName(k, name, normalized) {
			return props[k], k, true
		}
	}
	return nil, "", false
}

type store struct {
	props map[string]any
	path  string
}

// parameterStores returns the nested parameter collections an object may
// carry: a top-level parameters map, and a parameters map inside a
// top-level properties map.
func parameterStores(props map[string]any) []store {
	var stores []store
	for _, k := range sortedKeys(props) {
		if strings.ToLower(k) != "parameters" {
			continue
		}
		if m, ok := props[k].(map[string]any); ok {
			stores = append(stores, store{props: m, path: k})
		}
	}
	for _, k := range sortedKeys(props) {
		if strings.ToLower(k) != "properties" {
			continue
		}
		outer, ok := props[k].(map[string]any)
		if !ok {
			continue
		}
		for _, pk := range sortedKeys(outer) {
			if strings.ToLower(pk) != "parameters" {
				continue
			}
			if m, ok := outer[pk].(map[string]any); ok {
				stores = append(stores, store{props: m, path: k + "." + pk})
			}
		}
	}
	return stores
}

// searchParameters finds a property anywhere in a parameter collection.
// Matches at the current level win over deeper ones: direct keys first,
// then entries whose "name" field matches, then a recursive descent into
// nested groups.
func searchParameters(params map[string]any, name string, normalized bool) (any, string, bool) {
	keys := sortedKeys(params)
	for _, k := range keys {
		if matchName(k, name, normalized) {
			return params[k], k, true
		}
	}
	for _, k := range keys {
		entry, ok := params[k].(map[string]any)
		if !ok {
			continue
		}
		if display, ok := entry["name"].(string); ok && matchName(display, name, normalized) {
			return entry, k, true
		}
	}
	for _, k := range keys {
		child, ok := params[k].(map[string]any)
		if !ok {
			continue
		}
		if raw, path, ok := searchParameters(child, name, normalized); ok {
			return raw, k + "." + path, true
		}
	}
	return nil, "", false
}

// searchPath walks a normalized multi-segment path. When the head segment
// misses at this level the walk retries one level down inside container
// keys, which lets "Construction.Width" match under either a properties
// or a parameters wrapper.
func searchPath(props map[string]any, segments []string) (any, string, bool) {
	keys := sortedKeys(props)
	for _, k := range keys {
		if !normalize.EqualFoldTrimmed(k, segments[0]) {
			continue
		}
		if len(segments) == 1 {
			return props[k], k, true
		}
		if child, ok := props[k].(map[string]any); ok {
			if raw, path, ok := searchPath(child, segments[1:]); ok {
				return raw, k + "." + path, true
			}
		}
	}
	for _, k := range keys {
		if !isContainerKey(k) {
			continue
		}
		if child, ok := props[k].(map[string]any); ok {
			if raw, path, ok := searchPath(child, segments); ok {
				return raw, k + "." + path, true
			}
		}
	}
	return nil, "", false
}

// coerce unwraps parameter envelopes and types the scalar. Numeric
// strings become numbers and true/false strings become booleans so
// predicates compare like against like. Nulls and non-scalar values
// resolve as absent.
func coerce(raw any, path string) Value {
	if m, ok := raw.(map[string]any); ok {
		if inner, ok := m["value"]; ok {
			raw = inner
		}
	}
	switch t := raw.(type) {
	case bool:
		return Value{Kind: KindBool, Bool: t, Path: path}
	case float64:
		return Value{Kind: KindNumber, Num: t, Path: path}
	case int:
		return Value{Kind: KindNumber, Num: float64(t), Path: path}
	case int64:
		return Value{Kind: KindNumber, Num: float64(t), Path: path}
	case string:
		trimmed := strings.TrimSpace(t)
		if n, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
			return Value{Kind: KindNumber, Num: n, Path: path}
		}
		switch strings.ToLower(trimmed) {
		case "true":
			return Value{Kind: KindBool, Bool: true, Path: path}
		case "false":
			return Value{Kind: KindBool, Bool: false, Path: path}
		}
		return Value{Kind: KindString, Str: t, Path: path}
	default:
		return Value{}
	}
}
