package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseConfigPath splits a dotted key such as "gateway.auth.mode" or
// "agents.list.0.name" into segments. Numeric segments index lists.
func ParseConfigPath(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &ConfigError{Message: "empty config path"}
	}
	parts := strings.Split(raw, ".")
	for _, p := range parts {
		if p == "" {
			return nil, &ConfigError{Message: fmt.Sprintf("config path %q contains an empty segment", raw)}
		}
	}
	return parts, nil
}

// GetValueAtPath walks maps by key and lists by index.
func GetValueAtPath(root map[string]any, path []string) (any, bool) {
	var cur any = root
	for _, key := range path {
		switch n := cur.(type) {
		case map[string]any:
			v, ok := n[key]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, err := listIndex(key, len(n))
			if err != nil {
				return nil, false
			}
			cur = n[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// SetValueAtPath stores value at path. Missing or scalar intermediates
// become maps. Inside a list, an index equal to its length appends.
func SetValueAtPath(root map[string]any, path []string, value any) error {
	if len(path) == 0 {
		return &ConfigError{Message: "empty config path"}
	}
	_, err := setAt(root, path, value)
	return err
}

func setAt(node any, path []string, value any) (any, error) {
	if len(path) == 0 {
		return value, nil
	}
	key, rest := path[0], path[1:]

	switch n := node.(type) {
	case map[string]any:
		v, err := setAt(n[key], rest, value)
		if err != nil {
			return nil, err
		}
		n[key] = v
		return n, nil
	case []any:
		i, err := listIndex(key, len(n)+1)
		if err != nil {
			return nil, err
		}
		if i == len(n) {
			v, err := setAt(nil, rest, value)
			if err != nil {
				return nil, err
			}
			return append(n, v), nil
		}
		v, err := setAt(n[i], rest, value)
		if err != nil {
			return nil, err
		}
		n[i] = v
		return n, nil
	default:
		return setAt(map[string]any{}, path, value)
	}
}

// UnsetValueAtPath removes the value at path and reports whether it
// existed. Removing a list element shifts the ones after it.
func UnsetValueAtPath(root map[string]any, path []string) bool {
	if len(path) == 0 {
		return false
	}
	_, ok := unsetAt(root, path)
	return ok
}

func unsetAt(node any, path []string) (any, bool) {
	key, rest := path[0], path[1:]

	switch n := node.(type) {
	case map[string]any:
		child, ok := n[key]
		if !ok {
			return n, false
		}
		if len(rest) == 0 {
			delete(n, key)
			return n, true
		}
		v, ok := unsetAt(child, rest)
		if ok {
			n[key] = v
		}
		return n, ok
	case []any:
		i, err := listIndex(key, len(n))
		if err != nil {
			return n, false
		}
		if len(rest) == 0 {
			return append(n[:i], n[i+1:]...), true
		}
		v, ok := unsetAt(n[i], rest)
		if ok {
			n[i] = v
		}
		return n, ok
	}
	return node, false
}

// listIndex parses key as an index in [0, n).
func listIndex(key string, n int) (int, error) {
	i, err := strconv.Atoi(key)
	if err != nil || i < 0 || i >= n {
		return 0, &ConfigError{Message: fmt.Sprintf("list index %q out of range", key)}
	}
	return i, nil
}
