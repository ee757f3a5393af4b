package toggle

import (
	"encoding/json"
	"math"

	"github.com/spf13/cast"
)

const (
	VariantEnabled  = "enabled"
	VariantDisabled = "disabled"
)

// GetVariant derives the variant label from the toggle's default value.
// Variant toggles return a string default as-is; boolean toggles return
// "enabled" or "disabled" by the truthiness of the default. Anything else
// has no variant.
func GetVariant(t FeatureToggle) string {
	switch t.Type {
	case TypeVariant:
		if s, ok := t.DefaultValue.(string); ok {
			return s
		}
		return ""
	case TypeBoolean:
		if isTruthy(t.DefaultValue) {
			return VariantEnabled
		}
		return VariantDisabled
	default:
		return ""
	}
}

// isTruthy follows JavaScript-like truthiness rules, since default values
// arrive from JSON configuration.
func isTruthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, json.Number:
		f, err := cast.ToFloat64E(val)
		return err == nil && f != 0 && !math.IsNaN(f)
	default:
		return true
	}
}
