package tool

import "math"

// Parameter type literals used by tool and prompt schemas.
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeFloat   = "float"
	TypeBoolean = "boolean"
	TypeArray   = "array"
	TypeObject  = "object"
	TypeAny     = "any"
)

var validTypes = map[string]struct{}{
	TypeString:  {},
	TypeInteger: {},
	TypeFloat:   {},
	TypeBoolean: {},
	TypeArray:   {},
	TypeObject:  {},
	TypeAny:     {},
}

// IsValidType reports whether the literal names a supported parameter type.
func IsValidType(typeName string) bool {
	_, ok := validTypes[typeName]
	return ok
}

// Coerce converts a decoded JSON value to the declared parameter type.
// JSON numbers always decode as float64, so integral floats coerce to int64
// for integer parameters and integers widen for float parameters.
func Coerce(value any, typeName string) (any, bool) {
	if value == nil {
		return nil, typeName == TypeAny
	}

	switch typeName {
	case TypeAny:
		return value, true
	case TypeString:
		s, ok := value.(string)
		return s, ok
	case TypeBoolean:
		b, ok := value.(bool)
		return b, ok
	case TypeInteger:
		switch n := value.(type) {
		case int:
			return int64(n), true
		case int64:
			return n, true
		case float64:
			if n == math.Trunc(n) && !math.IsInf(n, 0) {
				return int64(n), true
			}
			return nil, false
		}
		return nil, false
	case TypeFloat:
		switch n := value.(type) {
		case float64:
			return n, true
		case int:
			return float64(n), true
		case int64:
			return float64(n), true
		}
		return nil, false
	case TypeArray:
		a, ok := value.([]any)
		return a, ok
	case TypeObject:
		o, ok := value.(map[string]any)
		return o, ok
	}
	return nil, false
}
