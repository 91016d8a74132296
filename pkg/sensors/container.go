package sensors

import "strings"

// Container is a top-level namespace of sensors owned by exactly one
// provider. It indexes objects by id and announces object and sensor
// additions and removals so interested parties (the registry, aggregate
// sensors) can track the changing sensor set.
type Container struct {
	id   string
	name string

	objects   []*Object
	objectIdx map[string]*Object

	objectAdded   listenerList[*Object]
	objectRemoved listenerList[*Object]
	sensorAdded   listenerList[*Property]
	sensorRemoved listenerList[*Property]
}

// NewContainer creates an empty container with the given id and display
// name.
func NewContainer(id, name string) *Container {
	return &Container{
		id:        id,
		name:      name,
		objectIdx: make(map[string]*Object),
	}
}

// ID returns the container id, the first path segment of every sensor
// inside it.
func (c *Container) ID() string {
	return c.id
}

// Name returns the human-readable display name.
func (c *Container) Name() string {
	return c.name
}

// Object returns the top-level object with the given id, or nil.
func (c *Container) Object(id string) *Object {
	return c.objectIdx[id]
}

// Objects returns the top-level objects in creation order.
func (c *Container) Objects() []*Object {
	return c.objects
}

// ObjectByPath resolves a '/'-separated object path, descending through
// nested objects. Returns nil if any segment is absent.
func (c *Container) ObjectByPath(path string) *Object {
	var obj *Object
	for len(path) > 0 {
		segment := path
		if i := strings.IndexByte(path, '/'); i >= 0 {
			segment, path = path[:i], path[i+1:]
		} else {
			path = ""
		}
		if obj == nil {
			obj = c.objectIdx[segment]
		} else {
			obj = obj.Child(segment)
		}
		if obj == nil {
			return nil
		}
	}
	return obj
}

// RemoveObject detaches and destroys a top-level object, for example
// when the device it represents disappears. All of its properties fire
// their destruction notifications and subsequent path lookups miss.
func (c *Container) RemoveObject(o *Object) {
	if c.objectIdx[o.id] != o {
		return
	}
	delete(c.objectIdx, o.id)
	for i, have := range c.objects {
		if have == o {
			c.objects = append(c.objects[:i], c.objects[i+1:]...)
			break
		}
	}
	c.objectRemoved.emit(o)
	o.destroy()
}

// OnObjectAdded attaches a listener fired when an object is created in
// this container, including nested ones.
func (c *Container) OnObjectAdded(fn func(*Object)) ListenerHandle {
	return c.objectAdded.add(fn)
}

// RemoveObjectAddedListener detaches an object-added listener.
func (c *Container) RemoveObjectAddedListener(h ListenerHandle) {
	c.objectAdded.remove(h)
}

// OnObjectRemoved attaches a listener fired when a top-level object is
// removed.
func (c *Container) OnObjectRemoved(fn func(*Object)) ListenerHandle {
	return c.objectRemoved.add(fn)
}

// RemoveObjectRemovedListener detaches an object-removed listener.
func (c *Container) RemoveObjectRemovedListener(h ListenerHandle) {
	c.objectRemoved.remove(h)
}

// OnSensorAdded attaches a listener fired for every property created
// inside this container. Aggregate sensors use this to pick up new
// matches without rescanning the tree.
func (c *Container) OnSensorAdded(fn func(*Property)) ListenerHandle {
	return c.sensorAdded.add(fn)
}

// RemoveSensorAddedListener detaches a sensor-added listener.
func (c *Container) RemoveSensorAddedListener(h ListenerHandle) {
	c.sensorAdded.remove(h)
}

// OnSensorRemoved attaches a listener fired just before a property is
// destroyed; the property's path is still resolvable inside the
// listener.
func (c *Container) OnSensorRemoved(fn func(*Property)) ListenerHandle {
	return c.sensorRemoved.add(fn)
}

// RemoveSensorRemovedListener detaches a sensor-removed listener.
func (c *Container) RemoveSensorRemovedListener(h ListenerHandle) {
	c.sensorRemoved.remove(h)
}

func (c *Container) addObject(o *Object) {
	c.objects = append(c.objects, o)
	c.objectIdx[o.id] = o
	c.objectAdded.emit(o)
}

func (c *Container) notifyObjectAdded(o *Object) {
	c.objectAdded.emit(o)
}

func (c *Container) notifySensorAdded(p *Property) {
	c.sensorAdded.emit(p)
}

func (c *Container) notifySensorRemoved(p *Property) {
	c.sensorRemoved.emit(p)
}
