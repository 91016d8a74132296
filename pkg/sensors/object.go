package sensors

// Object is a named group of properties representing one monitored
// entity, such as a disk volume or a CPU core. Objects live inside a
// Container and may nest: a child object's path extends its parent's.
//
// Ownership cascades strictly downward: the container owns its objects,
// an object owns its properties and child objects. Back-references
// (parent, container) are lookups only and never manage lifetime.
type Object struct {
	id        string
	name      string
	container *Container
	parent    *Object

	properties  []*Property
	propertyIdx map[string]*Property

	children []*Object
	childIdx map[string]*Object

	destroyed bool
}

// NewObject creates a top-level object inside c and registers it there.
func NewObject(id, name string, c *Container) *Object {
	o := &Object{
		id:          id,
		name:        name,
		container:   c,
		propertyIdx: make(map[string]*Property),
		childIdx:    make(map[string]*Object),
	}
	c.addObject(o)
	return o
}

// NewChildObject creates an object nested under parent.
func NewChildObject(id, name string, parent *Object) *Object {
	o := &Object{
		id:          id,
		name:        name,
		container:   parent.container,
		parent:      parent,
		propertyIdx: make(map[string]*Property),
		childIdx:    make(map[string]*Object),
	}
	parent.children = append(parent.children, o)
	parent.childIdx[id] = o
	parent.container.notifyObjectAdded(o)
	return o
}

// ID returns the object's identifier, unique among its siblings.
func (o *Object) ID() string {
	return o.id
}

// Name returns the human-readable display name.
func (o *Object) Name() string {
	return o.name
}

// Container returns the container this object belongs to.
func (o *Object) Container() *Container {
	return o.container
}

// Parent returns the parent object, or nil for top-level objects.
func (o *Object) Parent() *Object {
	return o.parent
}

// Path returns "<container>/<id>" for top-level objects, with parent IDs
// interleaved for nested ones.
func (o *Object) Path() string {
	if o.parent != nil {
		return o.parent.Path() + "/" + o.id
	}
	return o.container.ID() + "/" + o.id
}

// Sensor returns the property with the given local name, or nil.
func (o *Object) Sensor(name string) *Property {
	return o.propertyIdx[name]
}

// Sensors returns the object's properties in creation order.
func (o *Object) Sensors() []*Property {
	return o.properties
}

// Child returns the nested object with the given id, or nil.
func (o *Object) Child(id string) *Object {
	return o.childIdx[id]
}

// Children returns the nested objects in creation order.
func (o *Object) Children() []*Object {
	return o.children
}

// IsSubscribed reports whether any property of this object or of its
// children has at least one subscriber. Providers use this to skip
// expensive collection entirely when nobody is listening.
func (o *Object) IsSubscribed() bool {
	for _, p := range o.properties {
		if p.IsSubscribed() {
			return true
		}
	}
	for _, c := range o.children {
		if c.IsSubscribed() {
			return true
		}
	}
	return false
}

// addProperty registers p and announces the new sensor to the container.
func (o *Object) addProperty(p *Property) {
	o.properties = append(o.properties, p)
	o.propertyIdx[p.name] = p
	o.container.notifySensorAdded(p)
}

// destroy tears down the object: children first, then every property.
// Each sensor removal is announced before the property's destruction
// notification fires, so path lookups still work inside the removal
// listeners.
func (o *Object) destroy() {
	if o.destroyed {
		return
	}
	o.destroyed = true

	for _, child := range o.children {
		child.destroy()
	}
	o.children = nil
	o.childIdx = make(map[string]*Object)

	for _, p := range o.properties {
		o.container.notifySensorRemoved(p)
		p.destroy()
	}
	o.properties = nil
	o.propertyIdx = make(map[string]*Property)
}
