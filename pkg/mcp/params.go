package mcp

import (
	"fmt"
)

// Arguments is the decoded argument object of a tool call. Values arrive as
// whatever encoding/json produced, so numbers are float64 until coerced.
type Arguments map[string]interface{}

func (a Arguments) String(key string) (string, error) {
	v, ok := a[key]
	if !ok {
		return "", fmt.Errorf("missing required parameter: %s", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("parameter %s must be a string", key)
	}
	return s, nil
}

func (a Arguments) OptionalString(key string) (string, error) {
	if _, ok := a[key]; !ok {
		return "", nil
	}
	return a.String(key)
}

func (a Arguments) Int(key string, defaultValue int) (int, error) {
	v, ok := a[key]
	if !ok {
		return defaultValue, nil
	}
	switch n := v.(type) {
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("parameter %s must be an integer", key)
		}
		return int(n), nil
	case int:
		return n, nil
	case int64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("parameter %s must be an integer", key)
	}
}

func (a Arguments) Bool(key string, defaultValue bool) (bool, error) {
	v, ok := a[key]
	if !ok {
		return defaultValue, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("parameter %s must be a boolean", key)
	}
	return b, nil
}
