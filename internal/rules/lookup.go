package rules

import (
	"reflect"
	"strings"
)

// Lookup reads a dot-path field from a nested context. It returns false when
// any segment is missing or an intermediate value is not a map; it never panics.
func Lookup(ctx map[string]any, field string) (any, bool) {
	if ctx == nil || field == "" {
		return nil, false
	}

	var current any = ctx
	for _, segment := range strings.Split(field, ".") {
		var ok bool
		current, ok = child(current, segment)
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// child reads key from any string-keyed map, including named map types.
func child(v any, key string) (any, bool) {
	switch m := v.(type) {
	case map[string]any:
		val, ok := m[key]
		return val, ok
	case map[string]string:
		val, ok := m[key]
		return val, ok
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	val := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
	if !val.IsValid() {
		return nil, false
	}
	return val.Interface(), true
}
