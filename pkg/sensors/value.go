package sensors

// ValueType identifies the representable type of a sensor value.
type ValueType uint8

const (
	TypeUnknown ValueType = iota
	TypeInteger
	TypeFloat
	TypeString
	TypeBoolean
)

// String returns the value type name as used on the wire.
func (t ValueType) String() string {
	names := []string{"unknown", "integer", "float", "string", "boolean"}
	if int(t) < len(names) {
		return names[t]
	}
	return "unknown"
}

// toFloat64 converts any numeric sensor value to float64.
// Returns false for non-numeric values.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
