package sensors

// Provider is a data-source module that owns one or more containers and
// refreshes their sensor values once per tick.
type Provider interface {
	// Name identifies the provider. Registration of two providers with
	// the same name is rejected.
	Name() string

	// Containers returns the containers this provider owns. The set is
	// declared once, at registration time.
	Containers() []*Container

	// Update refreshes the provider's sensors. It is called once per
	// tick on the dispatch loop and must not block; long-running work
	// has to complete asynchronously and marshal its results back via a
	// Scheduler. Providers should skip collection entirely while none
	// of their sensors are subscribed. A returned error is logged and
	// the provider is skipped for that tick only.
	Update() error
}

// Scheduler marshals work onto the dispatch loop. Providers whose
// collection completes asynchronously (free-space queries, hotplug
// events) must hand results back through it before touching any sensor.
type Scheduler interface {
	// Post enqueues fn for execution on the dispatch loop. It never
	// blocks and may be called from any goroutine.
	Post(fn func())
}
