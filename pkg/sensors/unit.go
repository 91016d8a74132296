package sensors

// Unit identifies the unit of measurement of a sensor value.
type Unit uint8

const (
	UnitNone Unit = iota

	// UnitByte is an absolute size in bytes.
	UnitByte

	// UnitByteRate is a throughput in bytes per second.
	UnitByteRate

	// UnitPercent is a percentage in the range 0-100.
	UnitPercent

	// UnitHertz is a frequency.
	UnitHertz

	// UnitSecond is a duration in seconds.
	UnitSecond

	// UnitTimestamp is an absolute point in time (Unix seconds).
	UnitTimestamp

	// UnitCelsius is a temperature.
	UnitCelsius

	// UnitWatt is a power draw.
	UnitWatt
)

// String returns the unit name as used on the wire.
func (u Unit) String() string {
	names := []string{
		"none", "byte", "byteRate", "percent", "hertz",
		"second", "timestamp", "celsius", "watt",
	}
	if int(u) < len(names) {
		return names[u]
	}
	return "none"
}
