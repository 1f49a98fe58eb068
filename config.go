package socialite

import (
	"fmt"
	"strconv"
	"strings"
)

// Config holds provider credentials and options as a nested key/value
// map with dotted-path access. A Config belongs to exactly one provider
// instance; constructors may normalize it in place (e.g. aliasing
// app_id to client_id).
type Config struct {
	values map[string]any
}

// NewConfig creates a Config from the given values. A nil map yields an
// empty Config.
func NewConfig(values map[string]any) *Config {
	if values == nil {
		values = map[string]any{}
	}
	return &Config{values: values}
}

// Get resolves key as a dotted path ("component.app_id"). It returns
// def when any segment is absent or when a path segment indexes into a
// non-map value. A direct hit on the full key wins over path traversal.
func (c *Config) Get(key string, def any) any {
	if v, ok := c.values[key]; ok {
		return v
	}

	cur := any(c.values)
	for _, seg := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return def
		}
		v, ok := m[seg]
		if !ok {
			return def
		}
		cur = v
	}
	return cur
}

// GetString returns the value at key as a string, or "" when absent.
func (c *Config) GetString(key string) string {
	switch v := c.Get(key, nil).(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// GetInt returns the value at key as an int, or def when absent or not
// numeric.
func (c *Config) GetInt(key string, def int) int {
	switch v := c.Get(key, nil).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// GetBool returns the value at key as a bool, or false when absent.
func (c *Config) GetBool(key string) bool {
	v, _ := c.Get(key, nil).(bool)
	return v
}

// Set writes value at the dotted path key, creating intermediate maps
// as needed. Scalar values that collide with a path segment are
// overwritten.
func (c *Config) Set(key string, value any) {
	segs := strings.Split(key, ".")
	m := c.values
	for _, seg := range segs[:len(segs)-1] {
		next, ok := m[seg].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[seg] = next
		}
		m = next
	}
	m[segs[len(segs)-1]] = value
}

// Has reports whether key resolves to a truthy value. A present but
// falsy value ("", "0", 0, false, nil) counts as absent. This mirrors
// the fallback-key logic several providers rely on (corp_id before
// client_id and the like), so it is intentional, not strict presence.
func (c *Config) Has(key string) bool {
	return truthy(c.Get(key, nil))
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != "" && t != "0"
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	case []string:
		return len(t) > 0
	default:
		return true
	}
}
