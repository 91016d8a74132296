package sensors

import (
	"regexp"
	"strings"
)

// AggregateSensor is a derived property whose value is the sum of other
// properties in the same container: every property whose local name
// equals the configured sensor name and whose object path inside the
// container matches the configured pattern. Properties of the
// aggregate's own object never match, so an "all" object can safely
// aggregate its siblings.
//
// The aggregate keeps an explicit dependency list instead of rescanning
// the tree: it recomputes when a dependency changes value and rebuilds
// the list when the container's sensor set changes.
type AggregateSensor struct {
	*Property

	container  *Container
	pattern    *regexp.Regexp
	sensorName string

	matches map[*Property]ListenerHandle
}

// NewAggregateSensor creates an aggregate property under obj. Call
// SetMatchSensors to configure what it sums.
func NewAggregateSensor(name, displayName string, obj *Object) *AggregateSensor {
	a := &AggregateSensor{
		Property:  NewProperty(name, displayName, obj),
		container: obj.Container(),
		matches:   make(map[*Property]ListenerHandle),
	}

	c := a.container
	added := c.OnSensorAdded(func(p *Property) {
		a.attachIfMatch(p, true)
	})
	removed := c.OnSensorRemoved(func(p *Property) {
		if h, ok := a.matches[p]; ok {
			p.RemoveValueListener(h)
			delete(a.matches, p)
			a.recompute()
		}
	})
	a.Property.OnDestroyed(func(*Property) {
		c.RemoveSensorAddedListener(added)
		c.RemoveSensorRemovedListener(removed)
		for p, h := range a.matches {
			p.RemoveValueListener(h)
			delete(a.matches, p)
		}
	})

	return a
}

// SetMatchSensors configures the dependency pattern: sensorName is the
// required local name and pattern is matched against the object path
// relative to the container. Existing properties are scanned
// immediately; later additions and removals adjust the dependency list
// through the container's sensor events.
func (a *AggregateSensor) SetMatchSensors(pattern *regexp.Regexp, sensorName string) {
	a.pattern = pattern
	a.sensorName = sensorName

	for p, h := range a.matches {
		p.RemoveValueListener(h)
		delete(a.matches, p)
	}
	for _, obj := range a.container.Objects() {
		a.scanObject(obj)
	}
	a.recompute()
}

func (a *AggregateSensor) scanObject(obj *Object) {
	for _, p := range obj.Sensors() {
		a.attachIfMatch(p, false)
	}
	for _, child := range obj.Children() {
		a.scanObject(child)
	}
}

func (a *AggregateSensor) attachIfMatch(p *Property, recompute bool) {
	if !a.isMatch(p) {
		return
	}
	if _, ok := a.matches[p]; ok {
		return
	}
	a.matches[p] = p.OnValueChanged(func(*Property) {
		a.recompute()
	})
	if recompute {
		a.recompute()
	}
}

func (a *AggregateSensor) isMatch(p *Property) bool {
	if a.pattern == nil || p.Name() != a.sensorName {
		return false
	}
	if topLevelObject(p.Object()) == topLevelObject(a.Object()) {
		return false
	}
	rel := strings.TrimPrefix(p.Object().Path(), a.container.ID()+"/")
	return a.pattern.MatchString(rel)
}

// recompute sums the current values of all dependencies and stores the
// result, firing a value-changed notification when it differs.
func (a *AggregateSensor) recompute() {
	var sum float64
	for p := range a.matches {
		if v, ok := toFloat64(p.Value()); ok {
			sum += v
		}
	}
	if a.Property.valueType == TypeFloat {
		a.SetValue(sum)
	} else {
		a.SetValue(int64(sum))
	}
}

func topLevelObject(o *Object) *Object {
	for o.Parent() != nil {
		o = o.Parent()
	}
	return o
}

// PercentageSensor is a derived property reporting a base sensor's value
// as a percentage of that sensor's maximum.
type PercentageSensor struct {
	*Property

	base *Property
}

// NewPercentageSensor creates a percentage property under obj. Call
// SetBaseSensor to bind it.
func NewPercentageSensor(name, displayName string, obj *Object) *PercentageSensor {
	s := &PercentageSensor{
		Property: NewProperty(name, displayName, obj),
	}
	s.SetUnit(UnitPercent)
	s.SetValueType(TypeFloat)
	s.SetMin(float64(0))
	s.SetMax(float64(100))
	return s
}

// SetBaseSensor binds the sensor whose value/max ratio is reported.
// The percentage recomputes whenever the base's value or range changes.
func (s *PercentageSensor) SetBaseSensor(base *Property) {
	s.base = base
	base.OnValueChanged(func(*Property) { s.recompute() })
	base.OnInfoChanged(func(*Property) { s.recompute() })
	base.OnDestroyed(func(*Property) { s.base = nil })
	s.recompute()
}

func (s *PercentageSensor) recompute() {
	if s.base == nil {
		return
	}
	value, okV := toFloat64(s.base.Value())
	max, okM := toFloat64(s.base.Max())
	if !okV || !okM || max == 0 {
		return
	}
	s.SetValue(100 * value / max)
}
