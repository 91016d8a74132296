// Package registry indexes every sensor container and resolves sensor
// paths on behalf of the daemon. It is the mediator between providers,
// which register containers and publish values, and consumers, which
// look sensors up by path.
package registry

import (
	"errors"
	"strings"

	"github.com/sysstats-project/sysstats-go/pkg/sensors"
)

// ErrDuplicateProvider is returned when a provider (or one of its
// container ids) is already registered. Registration is single-owner:
// the first provider with a given name wins.
var ErrDuplicateProvider = errors.New("provider already registered")

// Registry owns the set of registered providers and their containers.
// Like the sensor tree itself it is confined to the dispatch loop and
// needs no internal locking.
type Registry struct {
	providers     []sensors.Provider
	providerNames map[string]struct{}
	containers    map[string]*sensors.Container
	order         []*sensors.Container

	sensorAdded   map[sensors.ListenerHandle]func(path string)
	sensorRemoved map[sensors.ListenerHandle]func(path string)
	nextHandle    sensors.ListenerHandle
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		providerNames: make(map[string]struct{}),
		containers:    make(map[string]*sensors.Container),
		sensorAdded:   make(map[sensors.ListenerHandle]func(string)),
		sensorRemoved: make(map[sensors.ListenerHandle]func(string)),
	}
}

// RegisterProvider indexes the provider's containers. It fails with
// ErrDuplicateProvider if a provider with the same name, or a container
// with an already-taken id, is registered; in that case nothing is
// indexed.
func (r *Registry) RegisterProvider(p sensors.Provider) error {
	if _, taken := r.providerNames[p.Name()]; taken {
		return ErrDuplicateProvider
	}
	containers := p.Containers()
	for _, c := range containers {
		if _, taken := r.containers[c.ID()]; taken {
			return ErrDuplicateProvider
		}
	}

	r.providerNames[p.Name()] = struct{}{}
	r.providers = append(r.providers, p)
	for _, c := range containers {
		r.containers[c.ID()] = c
		r.order = append(r.order, c)

		c.OnSensorAdded(func(prop *sensors.Property) {
			for _, fn := range r.sensorAdded {
				fn(prop.Path())
			}
		})
		c.OnSensorRemoved(func(prop *sensors.Property) {
			for _, fn := range r.sensorRemoved {
				fn(prop.Path())
			}
		})
	}
	return nil
}

// Providers returns the registered providers in registration order.
func (r *Registry) Providers() []sensors.Provider {
	return r.providers
}

// Container returns the container with the given id, or nil.
func (r *Registry) Container(id string) *sensors.Container {
	return r.containers[id]
}

// Resolve looks a sensor path up: the first segment selects the
// container, the last is the property name, everything between is the
// (possibly nested) object path. A nil result means not found, which is
// a routine outcome — consumers regularly ask for paths of entities
// that have disappeared.
func (r *Registry) Resolve(path string) *sensors.Property {
	first := strings.IndexByte(path, '/')
	last := strings.LastIndexByte(path, '/')
	if first < 0 || last <= first {
		return nil
	}

	c := r.containers[path[:first]]
	if c == nil {
		return nil
	}
	obj := c.ObjectByPath(path[first+1 : last])
	if obj == nil {
		return nil
	}
	return obj.Sensor(path[last+1:])
}

// AllSensors walks every container, object and property and snapshots
// their display metadata, keyed by path. Containers and objects appear
// with name-only entries so consumers can build the tree. The walk runs
// on the dispatch loop, between ticks, so the snapshot is never
// partial.
func (r *Registry) AllSensors() map[string]sensors.SensorInfo {
	infos := make(map[string]sensors.SensorInfo)
	for _, c := range r.order {
		infos[c.ID()] = sensors.SensorInfo{Name: c.Name()}
		for _, obj := range c.Objects() {
			r.walkObject(obj, infos)
		}
	}
	return infos
}

func (r *Registry) walkObject(obj *sensors.Object, infos map[string]sensors.SensorInfo) {
	infos[obj.Path()] = sensors.SensorInfo{Name: obj.Name()}
	for _, p := range obj.Sensors() {
		infos[p.Path()] = p.Info()
	}
	for _, child := range obj.Children() {
		r.walkObject(child, infos)
	}
}

// SensorInfos snapshots metadata for the requested paths. Unknown paths
// are left out.
func (r *Registry) SensorInfos(paths []string) map[string]sensors.SensorInfo {
	infos := make(map[string]sensors.SensorInfo)
	for _, path := range paths {
		if p := r.Resolve(path); p != nil {
			infos[path] = p.Info()
		}
	}
	return infos
}

// SensorData reads the current values of the requested paths. Unknown
// paths and never-set sensors are skipped.
func (r *Registry) SensorData(paths []string) []sensors.SensorData {
	var data []sensors.SensorData
	for _, path := range paths {
		p := r.Resolve(path)
		if p == nil || p.Value() == nil {
			continue
		}
		data = append(data, sensors.SensorData{Path: path, Value: p.Value()})
	}
	return data
}

// OnSensorAdded attaches a listener fired with the path of every sensor
// created in any registered container.
func (r *Registry) OnSensorAdded(fn func(path string)) sensors.ListenerHandle {
	r.nextHandle++
	r.sensorAdded[r.nextHandle] = fn
	return r.nextHandle
}

// OnSensorRemoved attaches a listener fired with the path of every
// sensor about to be destroyed.
func (r *Registry) OnSensorRemoved(fn func(path string)) sensors.ListenerHandle {
	r.nextHandle++
	r.sensorRemoved[r.nextHandle] = fn
	return r.nextHandle
}

// RemoveListener detaches a listener registered with OnSensorAdded or
// OnSensorRemoved.
func (r *Registry) RemoveListener(h sensors.ListenerHandle) {
	delete(r.sensorAdded, h)
	delete(r.sensorRemoved, h)
}
