package daemon

import (
	"github.com/sysstats-project/sysstats-go/pkg/log"
	"github.com/sysstats-project/sysstats-go/pkg/registry"
	"github.com/sysstats-project/sysstats-go/pkg/sensors"
	"github.com/sysstats-project/sysstats-go/pkg/wire"
)

// FrameSender is the push channel towards one consumer. The transport
// layer implements it on top of a framed connection.
type FrameSender interface {
	// SendFrame pushes one per-tick delta. Never called with an empty
	// frame.
	SendFrame(frame *wire.Frame) error
}

// propertyListeners holds the listener handles a client keeps per
// subscribed property, so unsubscribing can detach all three.
type propertyListeners struct {
	value     sensors.ListenerHandle
	info      sensors.ListenerHandle
	destroyed sensors.ListenerHandle
}

// Client tracks one consumer's subscriptions and accumulates its
// pending delta between ticks. All methods run on the dispatch loop.
type Client struct {
	id       string
	registry *registry.Registry
	sender   FrameSender
	logger   log.Logger

	subscribed map[string]*sensors.Property
	listeners  map[string]propertyListeners

	// pendingUpdates preserves the order in which values changed.
	pendingUpdates []sensors.SensorData

	// pendingInfo coalesces metadata changes per path; intermediate
	// states are not observable, last write wins.
	pendingInfo map[string]sensors.SensorInfo
}

func newClient(id string, reg *registry.Registry, sender FrameSender, logger log.Logger) *Client {
	return &Client{
		id:          id,
		registry:    reg,
		sender:      sender,
		logger:      logger,
		subscribed:  make(map[string]*sensors.Property),
		listeners:   make(map[string]propertyListeners),
		pendingInfo: make(map[string]sensors.SensorInfo),
	}
}

// ID returns the consumer id.
func (c *Client) ID() string {
	return c.id
}

// subscribe resolves each path and starts accumulating its changes.
// Unknown paths are silently skipped: consumers race with entity
// removal all the time and must not have a whole batch rejected for one
// stale path. Subscribing an already-subscribed path is a no-op.
func (c *Client) subscribe(paths []string) {
	for _, path := range paths {
		if _, ok := c.subscribed[path]; ok {
			continue
		}
		p := c.registry.Resolve(path)
		if p == nil {
			continue
		}

		path := path
		conns := propertyListeners{
			value: p.OnValueChanged(func(p *sensors.Property) {
				if p.Value() == nil {
					return
				}
				c.pendingUpdates = append(c.pendingUpdates, sensors.SensorData{
					Path:  path,
					Value: p.Value(),
				})
			}),
			info: p.OnInfoChanged(func(p *sensors.Property) {
				c.pendingInfo[path] = p.Info()
			}),
			destroyed: p.OnDestroyed(func(*sensors.Property) {
				// The property is going away; just forget it. Listener
				// handles die with the property.
				delete(c.subscribed, path)
				delete(c.listeners, path)
			}),
		}

		c.listeners[path] = conns
		c.subscribed[path] = p
		p.Subscribe()
	}
}

// unsubscribe stops tracking the given paths. Any delta already
// accumulated for them is dropped without being flushed; this is
// intentional, not a lost-update bug. Unknown paths are ignored.
func (c *Client) unsubscribe(paths []string) {
	for _, path := range paths {
		p, ok := c.subscribed[path]
		if !ok {
			continue
		}
		conns := c.listeners[path]
		p.RemoveValueListener(conns.value)
		p.RemoveInfoListener(conns.info)
		p.RemoveDestroyedListener(conns.destroyed)
		p.Unsubscribe()
		delete(c.subscribed, path)
		delete(c.listeners, path)
		c.dropPending(path)
	}
}

// dropPending scrubs a path from both accumulators.
func (c *Client) dropPending(path string) {
	kept := c.pendingUpdates[:0]
	for _, u := range c.pendingUpdates {
		if u.Path != path {
			kept = append(kept, u)
		}
	}
	c.pendingUpdates = kept
	delete(c.pendingInfo, path)
}

// flush returns and clears the pending delta. A value change arriving
// after flush lands in the next one; nothing is lost or duplicated
// because listener callbacks and flush share the dispatch loop.
func (c *Client) flush() (values []sensors.SensorData, info map[string]sensors.SensorInfo) {
	values = c.pendingUpdates
	info = c.pendingInfo
	c.pendingUpdates = nil
	c.pendingInfo = make(map[string]sensors.SensorInfo)
	return values, info
}

// sendFrame flushes the pending delta and pushes it to the consumer.
// Nothing is sent when the delta is empty.
func (c *Client) sendFrame() {
	values, info := c.flush()
	frame := &wire.Frame{Data: values, Sensors: info}
	if frame.Empty() {
		return
	}
	if err := c.sender.SendFrame(frame); err != nil {
		log.Warnf(c.logger, "daemon", "failed to push frame to consumer %s: %v", c.id, err)
	}
}

// teardown unsubscribes everything the consumer still tracks. Called
// when the consumer disconnects so no listener outlives it.
func (c *Client) teardown() {
	paths := make([]string, 0, len(c.subscribed))
	for path := range c.subscribed {
		paths = append(paths, path)
	}
	c.unsubscribe(paths)
}
