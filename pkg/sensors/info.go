package sensors

// SensorInfo is the display metadata snapshot of a sensor, container or
// object as delivered to consumers.
type SensorInfo struct {
	// Name is the human-readable display name.
	Name string `cbor:"1,keyasint,omitempty"`

	// ShortName is a compact label for constrained displays.
	ShortName string `cbor:"2,keyasint,omitempty"`

	// Unit is the unit of measurement.
	Unit Unit `cbor:"3,keyasint,omitempty"`

	// Type is the value type.
	Type ValueType `cbor:"4,keyasint,omitempty"`

	// Min is the lower bound of the value range, if known.
	Min any `cbor:"5,keyasint,omitempty"`

	// Max is the upper bound of the value range, if known.
	Max any `cbor:"6,keyasint,omitempty"`
}

// SensorData is a single (path, value) update.
type SensorData struct {
	Path  string `cbor:"1,keyasint"`
	Value any    `cbor:"2,keyasint"`
}
