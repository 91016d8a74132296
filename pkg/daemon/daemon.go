// Package daemon hosts the sysstats dispatch engine: the single-threaded
// run loop owning the sensor tree, per-consumer subscription clients,
// and the fixed-interval poll-then-dispatch tick.
package daemon

import (
	"fmt"
	"time"

	"github.com/sysstats-project/sysstats-go/pkg/log"
	"github.com/sysstats-project/sysstats-go/pkg/registry"
	"github.com/sysstats-project/sysstats-go/pkg/sensors"
)

// DefaultUpdateInterval is the default tick cadence.
const DefaultUpdateInterval = 500 * time.Millisecond

// tickState tracks where the dispatcher is within one cycle.
type tickState uint8

const (
	stateIdle tickState = iota
	statePolling
	stateDispatching
)

// Config configures a Daemon.
type Config struct {
	// Interval is the tick cadence. Zero means DefaultUpdateInterval.
	Interval time.Duration

	// Logger receives daemon events. Nil disables logging.
	Logger log.Logger
}

// Daemon owns the registry and drives the tick loop. Consumer-facing
// methods are safe to call from any goroutine: they marshal onto the
// dispatch loop internally.
type Daemon struct {
	registry *registry.Registry
	loop     *runLoop
	logger   log.Logger
	interval time.Duration

	clients map[string]*Client
	state   tickState

	stopTick chan struct{}
	tickDone chan struct{}
	running  bool
}

// New creates a daemon with an empty registry.
func New(cfg Config) *Daemon {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultUpdateInterval
	}
	return &Daemon{
		registry: registry.New(),
		loop:     newRunLoop(),
		logger:   log.OrNoop(cfg.Logger),
		interval: interval,
		clients:  make(map[string]*Client),
		stopTick: make(chan struct{}),
		tickDone: make(chan struct{}),
	}
}

// Registry exposes the sensor registry, e.g. for providers that need to
// look up sensors outside their own containers.
func (d *Daemon) Registry() *registry.Registry {
	return d.registry
}

// RegisterProvider registers a provider and indexes its containers.
// Must be called before Start; providers are fixed for the daemon's
// lifetime.
func (d *Daemon) RegisterProvider(p sensors.Provider) error {
	if err := d.registry.RegisterProvider(p); err != nil {
		return fmt.Errorf("provider %q: %w", p.Name(), err)
	}
	log.Infof(d.logger, "daemon", "registered provider %q", p.Name())
	return nil
}

// Start launches the dispatch loop and the tick timer.
func (d *Daemon) Start() {
	if d.running {
		return
	}
	d.running = true
	d.loop.start()

	go func() {
		defer close(d.tickDone)
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()
		for {
			select {
			case <-d.stopTick:
				return
			case <-ticker.C:
				// Call is synchronous, so ticks never overlap; the
				// ticker drops fires we are too slow for, keeping the
				// cadence fixed with no catch-up burst.
				d.loop.Call(d.tick)
			}
		}
	}()
}

// Stop halts the tick timer and the dispatch loop.
func (d *Daemon) Stop() {
	if !d.running {
		return
	}
	d.running = false
	close(d.stopTick)
	<-d.tickDone
	d.loop.stop()
}

// Post marshals fn onto the dispatch loop. Providers use this to hand
// asynchronous collection results back before touching any sensor.
// Implements sensors.Scheduler.
func (d *Daemon) Post(fn func()) {
	d.loop.Post(fn)
}

var _ sensors.Scheduler = (*Daemon)(nil)

// tick runs one poll-then-dispatch cycle on the loop goroutine.
func (d *Daemon) tick() {
	d.state = statePolling
	for _, p := range d.registry.Providers() {
		d.updateProvider(p)
	}

	d.state = stateDispatching
	for _, c := range d.clients {
		c.sendFrame()
	}

	d.state = stateIdle
}

// updateProvider refreshes one provider, isolating its failures: an
// error or panic skips that provider for this tick only and never
// halts the others or the dispatch phase.
func (d *Daemon) updateProvider(p sensors.Provider) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf(d.logger, "daemon", fmt.Errorf("%v", r),
				"provider %q panicked during refresh", p.Name())
		}
	}()
	if err := p.Update(); err != nil {
		log.Warnf(d.logger, "daemon", "provider %q refresh failed: %v", p.Name(), err)
	}
}

// Subscribe subscribes a consumer to the given paths, creating its
// client state on first use. Unknown paths are silently skipped.
func (d *Daemon) Subscribe(consumerID string, paths []string, sender FrameSender) {
	d.loop.Call(func() {
		c, ok := d.clients[consumerID]
		if !ok {
			c = newClient(consumerID, d.registry, sender, d.logger)
			d.clients[consumerID] = c
		}
		c.subscribe(paths)
	})
}

// Unsubscribe removes a consumer's subscriptions for the given paths.
// Idempotent for paths not currently subscribed; unknown consumers are
// ignored.
func (d *Daemon) Unsubscribe(consumerID string, paths []string) {
	d.loop.Call(func() {
		if c, ok := d.clients[consumerID]; ok {
			c.unsubscribe(paths)
		}
	})
}

// RemoveConsumer tears down all of a consumer's subscriptions, e.g. on
// disconnect.
func (d *Daemon) RemoveConsumer(consumerID string) {
	d.loop.Call(func() {
		if c, ok := d.clients[consumerID]; ok {
			c.teardown()
			delete(d.clients, consumerID)
		}
	})
}

// AllSensors snapshots metadata for every known sensor path.
func (d *Daemon) AllSensors() map[string]sensors.SensorInfo {
	var infos map[string]sensors.SensorInfo
	d.loop.Call(func() {
		infos = d.registry.AllSensors()
	})
	return infos
}

// SensorInfos snapshots metadata for the requested paths; unknown paths
// are left out.
func (d *Daemon) SensorInfos(paths []string) map[string]sensors.SensorInfo {
	var infos map[string]sensors.SensorInfo
	d.loop.Call(func() {
		infos = d.registry.SensorInfos(paths)
	})
	return infos
}

// SensorData reads the current values of the requested paths; unknown
// paths and never-set sensors are skipped.
func (d *Daemon) SensorData(paths []string) []sensors.SensorData {
	var data []sensors.SensorData
	d.loop.Call(func() {
		data = d.registry.SensorData(paths)
	})
	return data
}
