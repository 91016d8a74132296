package transport

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/sysstats-project/sysstats-go/pkg/sensors"
	"github.com/sysstats-project/sysstats-go/pkg/wire"
)

// DefaultRequestTimeout bounds how long a Client waits for a response.
const DefaultRequestTimeout = 5 * time.Second

// ErrClientClosed is returned for operations on a closed client.
var ErrClientClosed = errors.New("transport: client closed")

// Client is the consumer side of the sysstats protocol: request/
// response plus a channel of pushed per-tick delta frames.
type Client struct {
	conn   net.Conn
	framer *Framer

	// reqMu serializes requests; the protocol answers strictly in
	// order, so one outstanding request at a time keeps routing simple.
	reqMu     sync.Mutex
	responses chan *wire.Response
	frames    chan *wire.Frame

	timeout time.Duration

	closeOnce sync.Once
	closed    chan struct{}
}

// Dial connects to a sysstats daemon at addr.
func Dial(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	c := &Client{
		conn:      conn,
		framer:    NewFramer(conn),
		responses: make(chan *wire.Response, 1),
		frames:    make(chan *wire.Frame, 16),
		timeout:   DefaultRequestTimeout,
		closed:    make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Frames returns the channel of pushed delta frames. The channel is
// closed when the connection drops. Slow consumers lose frames rather
// than stalling the read loop; each frame is a self-contained delta.
func (c *Client) Frames() <-chan *wire.Frame {
	return c.frames
}

// Close shuts the connection down. Safe to call multiple times.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.conn.Close()
	})
	return err
}

func (c *Client) readLoop() {
	defer close(c.frames)
	for {
		payload, err := c.framer.ReadFrame()
		if err != nil {
			c.Close()
			return
		}
		msg, err := wire.DecodeServerMessage(payload)
		if err != nil {
			c.Close()
			return
		}

		switch msg.Type {
		case wire.MessageResponse:
			select {
			case c.responses <- msg.Response:
			default:
				// Response with no request outstanding; drop it.
			}
		case wire.MessageFrame:
			select {
			case c.frames <- msg.Frame:
			default:
			}
		}
	}
}

func (c *Client) request(req *wire.Request) (*wire.Response, error) {
	c.reqMu.Lock()
	defer c.reqMu.Unlock()

	select {
	case <-c.closed:
		return nil, ErrClientClosed
	default:
	}

	data, err := wire.EncodeRequest(req)
	if err != nil {
		return nil, err
	}
	if err := c.framer.WriteFrame(data); err != nil {
		return nil, err
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()
	select {
	case resp := <-c.responses:
		if resp.Error != "" {
			return nil, fmt.Errorf("daemon error: %s", resp.Error)
		}
		return resp, nil
	case <-c.closed:
		return nil, ErrClientClosed
	case <-timer.C:
		return nil, errors.New("transport: request timed out")
	}
}

// ListSensors returns metadata for every sensor path the daemon knows,
// including name-only entries for containers and objects.
func (c *Client) ListSensors() (map[string]sensors.SensorInfo, error) {
	resp, err := c.request(&wire.Request{Op: wire.OpListSensors})
	if err != nil {
		return nil, err
	}
	return resp.Sensors, nil
}

// GetSensors returns metadata for the given paths; unknown paths are
// absent from the result.
func (c *Client) GetSensors(paths []string) (map[string]sensors.SensorInfo, error) {
	resp, err := c.request(&wire.Request{Op: wire.OpGetSensors, Paths: paths})
	if err != nil {
		return nil, err
	}
	return resp.Sensors, nil
}

// GetData returns the current values of the given paths; unknown paths
// and never-set sensors are skipped.
func (c *Client) GetData(paths []string) ([]sensors.SensorData, error) {
	resp, err := c.request(&wire.Request{Op: wire.OpGetData, Paths: paths})
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Subscribe subscribes to the given paths. Unknown paths are silently
// skipped by the daemon; the call still succeeds for the valid subset.
func (c *Client) Subscribe(paths []string) error {
	_, err := c.request(&wire.Request{Op: wire.OpSubscribe, Paths: paths})
	return err
}

// Unsubscribe removes subscriptions for the given paths.
func (c *Client) Unsubscribe(paths []string) error {
	_, err := c.request(&wire.Request{Op: wire.OpUnsubscribe, Paths: paths})
	return err
}
