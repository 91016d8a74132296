package sensors

// Property is a single named leaf sensor: a current value plus display
// metadata and subscriber bookkeeping. Properties are owned by exactly one
// Object and addressed by "<container>/<object path>/<name>".
//
// A Property fires three kinds of notifications: value changes, metadata
// (info) changes and destruction. Listeners are attached and detached
// explicitly and are invoked synchronously on the goroutine that mutates
// the property, which for a running daemon is always the dispatch loop.
type Property struct {
	name   string
	object *Object

	displayName string
	shortName   string
	prefix      string
	unit        Unit
	valueType   ValueType
	min, max    any

	value       any
	subscribers int
	destroyed   bool

	valueChanged      listenerList[*Property]
	infoChanged       listenerList[*Property]
	destroyedSignal   listenerList[*Property]
	subscribedChanged listenerList[bool]
}

// NewProperty creates a property named name under obj and registers it
// there. The display name is used verbatim in consumer-facing metadata.
func NewProperty(name, displayName string, obj *Object) *Property {
	p := &Property{
		name:        name,
		displayName: displayName,
		object:      obj,
	}
	obj.addProperty(p)
	return p
}

// NewPropertyWithValue creates a property with an initial value.
// No change notification fires for the initial value.
func NewPropertyWithValue(name, displayName string, value any, obj *Object) *Property {
	p := &Property{
		name:        name,
		displayName: displayName,
		object:      obj,
		value:       value,
	}
	obj.addProperty(p)
	return p
}

// Name returns the property's local name.
func (p *Property) Name() string {
	return p.name
}

// Object returns the owning object.
func (p *Property) Object() *Object {
	return p.object
}

// Path returns the globally unique sensor path,
// "<container>/<object path>/<name>".
func (p *Property) Path() string {
	return p.object.Path() + "/" + p.name
}

// Value returns the current value, which may be nil if the property has
// never been set.
func (p *Property) Value() any {
	return p.value
}

// SetValue updates the current value. Setting a value equal to the
// current one is a no-op and fires no notification, so idle sensors stay
// out of dispatch frames.
func (p *Property) SetValue(v any) {
	if p.value == v {
		return
	}
	p.value = v
	p.valueChanged.emit(p)
}

// Info returns a metadata snapshot for consumers.
func (p *Property) Info() SensorInfo {
	name := p.displayName
	if p.prefix != "" {
		name = p.prefix + " " + name
	}
	return SensorInfo{
		Name:      name,
		ShortName: p.shortName,
		Unit:      p.unit,
		Type:      p.valueType,
		Min:       p.min,
		Max:       p.max,
	}
}

// SetDisplayName updates the display name.
func (p *Property) SetDisplayName(name string) {
	if p.displayName == name {
		return
	}
	p.displayName = name
	p.infoChanged.emit(p)
}

// SetShortName updates the compact display label.
func (p *Property) SetShortName(name string) {
	if p.shortName == name {
		return
	}
	p.shortName = name
	p.infoChanged.emit(p)
}

// SetPrefix sets a display-name prefix, typically the owning entity's
// name (for example the volume label ahead of "Used Space").
func (p *Property) SetPrefix(prefix string) {
	if p.prefix == prefix {
		return
	}
	p.prefix = prefix
	p.infoChanged.emit(p)
}

// SetUnit sets the unit of measurement.
func (p *Property) SetUnit(u Unit) {
	if p.unit == u {
		return
	}
	p.unit = u
	p.infoChanged.emit(p)
}

// SetValueType sets the advertised value type.
func (p *Property) SetValueType(t ValueType) {
	if p.valueType == t {
		return
	}
	p.valueType = t
	p.infoChanged.emit(p)
}

// SetMin sets the lower bound of the value range.
func (p *Property) SetMin(min any) {
	if p.min == min {
		return
	}
	p.min = min
	p.infoChanged.emit(p)
}

// SetMax sets the upper bound of the value range.
func (p *Property) SetMax(max any) {
	if p.max == max {
		return
	}
	p.max = max
	p.infoChanged.emit(p)
}

// Max returns the upper bound of the value range, or nil.
func (p *Property) Max() any {
	return p.max
}

// Min returns the lower bound of the value range, or nil.
func (p *Property) Min() any {
	return p.min
}

// Subscribe increments the subscriber count. The 0→1 transition fires
// the subscribed-changed notification so providers can lazily start
// expensive collection only while someone is listening.
func (p *Property) Subscribe() {
	p.subscribers++
	if p.subscribers == 1 {
		p.subscribedChanged.emit(true)
	}
}

// Unsubscribe decrements the subscriber count. The 1→0 transition fires
// the subscribed-changed notification so providers can stop collection.
func (p *Property) Unsubscribe() {
	if p.subscribers == 0 {
		return
	}
	p.subscribers--
	if p.subscribers == 0 {
		p.subscribedChanged.emit(false)
	}
}

// IsSubscribed reports whether at least one consumer is subscribed.
func (p *Property) IsSubscribed() bool {
	return p.subscribers > 0
}

// OnValueChanged attaches a value-change listener.
func (p *Property) OnValueChanged(fn func(*Property)) ListenerHandle {
	return p.valueChanged.add(fn)
}

// RemoveValueListener detaches a value-change listener.
func (p *Property) RemoveValueListener(h ListenerHandle) {
	p.valueChanged.remove(h)
}

// OnInfoChanged attaches a metadata-change listener.
func (p *Property) OnInfoChanged(fn func(*Property)) ListenerHandle {
	return p.infoChanged.add(fn)
}

// RemoveInfoListener detaches a metadata-change listener.
func (p *Property) RemoveInfoListener(h ListenerHandle) {
	p.infoChanged.remove(h)
}

// OnDestroyed attaches a destruction listener. It fires once, when the
// owning object tears the property down.
func (p *Property) OnDestroyed(fn func(*Property)) ListenerHandle {
	return p.destroyedSignal.add(fn)
}

// RemoveDestroyedListener detaches a destruction listener.
func (p *Property) RemoveDestroyedListener(h ListenerHandle) {
	p.destroyedSignal.remove(h)
}

// OnSubscribedChanged attaches a listener for 0→1 and 1→0 subscriber
// transitions.
func (p *Property) OnSubscribedChanged(fn func(bool)) ListenerHandle {
	return p.subscribedChanged.add(fn)
}

// RemoveSubscribedListener detaches a subscribed-changed listener.
func (p *Property) RemoveSubscribedListener(h ListenerHandle) {
	p.subscribedChanged.remove(h)
}

// destroy fires the destruction notification and drops all listeners.
// Called by the owning object; destruction cascades strictly downward
// from the owner.
func (p *Property) destroy() {
	if p.destroyed {
		return
	}
	p.destroyed = true
	p.destroyedSignal.emit(p)
	p.valueChanged = listenerList[*Property]{}
	p.infoChanged = listenerList[*Property]{}
	p.destroyedSignal = listenerList[*Property]{}
	p.subscribedChanged = listenerList[bool]{}
	p.subscribers = 0
}
