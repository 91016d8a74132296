package sensors

import "testing"

func TestObjectNestedPath(t *testing.T) {
	c := NewContainer("gpu", "GPUs")
	card := NewObject("gpu0", "GPU 1", c)
	engine := NewChildObject("engine0", "3D Engine", card)
	p := NewProperty("usage", "Usage", engine)

	if got, want := engine.Path(), "gpu/gpu0/engine0"; got != want {
		t.Errorf("engine.Path() = %q, want %q", got, want)
	}
	if got, want := p.Path(), "gpu/gpu0/engine0/usage"; got != want {
		t.Errorf("p.Path() = %q, want %q", got, want)
	}
}

func TestObjectByPathNested(t *testing.T) {
	c := NewContainer("gpu", "GPUs")
	card := NewObject("gpu0", "GPU 1", c)
	engine := NewChildObject("engine0", "3D Engine", card)

	if got := c.ObjectByPath("gpu0"); got != card {
		t.Error("ObjectByPath(gpu0) did not return the card")
	}
	if got := c.ObjectByPath("gpu0/engine0"); got != engine {
		t.Error("ObjectByPath(gpu0/engine0) did not return the engine")
	}
	if got := c.ObjectByPath("gpu0/missing"); got != nil {
		t.Error("ObjectByPath(gpu0/missing) should be nil")
	}
	if got := c.ObjectByPath("missing"); got != nil {
		t.Error("ObjectByPath(missing) should be nil")
	}
}

func TestObjectIsSubscribedRecursive(t *testing.T) {
	c := NewContainer("gpu", "GPUs")
	card := NewObject("gpu0", "GPU 1", c)
	engine := NewChildObject("engine0", "3D Engine", card)
	p := NewProperty("usage", "Usage", engine)

	if card.IsSubscribed() {
		t.Fatal("IsSubscribed() = true without subscribers")
	}
	p.Subscribe()
	if !card.IsSubscribed() {
		t.Error("IsSubscribed() = false with a subscribed child sensor")
	}
}

func TestRemoveObjectCascades(t *testing.T) {
	c := NewContainer("gpu", "GPUs")
	card := NewObject("gpu0", "GPU 1", c)
	engine := NewChildObject("engine0", "3D Engine", card)
	cardProp := NewProperty("name", "Name", card)
	engineProp := NewProperty("usage", "Usage", engine)

	var removed []string
	c.OnSensorRemoved(func(p *Property) {
		// Paths must still resolve while the removal listener runs.
		removed = append(removed, p.Path())
	})

	c.RemoveObject(card)

	want := map[string]bool{
		"gpu/gpu0/name":          false,
		"gpu/gpu0/engine0/usage": false,
	}
	for _, path := range removed {
		if _, ok := want[path]; !ok {
			t.Errorf("unexpected removal notification for %q", path)
			continue
		}
		want[path] = true
	}
	for path, seen := range want {
		if !seen {
			t.Errorf("missing removal notification for %q", path)
		}
	}

	if c.Object("gpu0") != nil {
		t.Error("object still resolvable after removal")
	}
	_ = cardProp
	_ = engineProp
}

func TestContainerObjectEvents(t *testing.T) {
	c := NewContainer("disk", "Disks")

	var added, removed []string
	c.OnObjectAdded(func(o *Object) { added = append(added, o.ID()) })
	c.OnObjectRemoved(func(o *Object) { removed = append(removed, o.ID()) })

	o := NewObject("sda1", "/dev/sda1", c)
	c.RemoveObject(o)

	if len(added) != 1 || added[0] != "sda1" {
		t.Errorf("added = %v, want [sda1]", added)
	}
	if len(removed) != 1 || removed[0] != "sda1" {
		t.Errorf("removed = %v, want [sda1]", removed)
	}
}
