// Package wire defines the CBOR message format spoken between the
// sysstats daemon and its consumers.
//
// Consumers send Requests over a length-prefixed framed connection; the
// daemon answers with a ServerMessage of type MessageResponse and, for
// subscribed consumers, pushes ServerMessages of type MessageFrame once
// per tick whenever the accumulated delta is non-empty.
package wire

import (
	"errors"

	"github.com/sysstats-project/sysstats-go/pkg/sensors"
)

// Operation identifies a consumer request.
type Operation uint8

const (
	// OpListSensors asks for metadata of every known sensor path.
	OpListSensors Operation = 1

	// OpGetSensors asks for metadata of specific paths.
	OpGetSensors Operation = 2

	// OpGetData asks for the current values of specific paths.
	OpGetData Operation = 3

	// OpSubscribe subscribes the consumer to the given paths.
	OpSubscribe Operation = 4

	// OpUnsubscribe removes subscriptions for the given paths.
	OpUnsubscribe Operation = 5
)

// String returns the operation name.
func (o Operation) String() string {
	switch o {
	case OpListSensors:
		return "listSensors"
	case OpGetSensors:
		return "getSensors"
	case OpGetData:
		return "getData"
	case OpSubscribe:
		return "subscribe"
	case OpUnsubscribe:
		return "unsubscribe"
	default:
		return "unknown"
	}
}

// Message validation errors.
var (
	ErrUnknownOperation = errors.New("unknown operation")
	ErrMissingPayload   = errors.New("message payload missing")
)

// Request is a consumer request. Paths is ignored for OpListSensors.
type Request struct {
	Op    Operation `cbor:"1,keyasint"`
	Paths []string  `cbor:"2,keyasint,omitempty"`
}

// Validate checks the request is well-formed.
func (r *Request) Validate() error {
	switch r.Op {
	case OpListSensors, OpGetSensors, OpGetData, OpSubscribe, OpUnsubscribe:
		return nil
	default:
		return ErrUnknownOperation
	}
}

// Response answers a Request. Sensors is set for metadata operations,
// Data for OpGetData. Subscribe and unsubscribe answer with neither:
// invalid paths are silently dropped, never rejected.
type Response struct {
	Op      Operation                     `cbor:"1,keyasint"`
	Sensors map[string]sensors.SensorInfo `cbor:"2,keyasint,omitempty"`
	Data    []sensors.SensorData          `cbor:"3,keyasint,omitempty"`
	Error   string                        `cbor:"4,keyasint,omitempty"`
}

// Frame is one per-tick delta pushed to a subscribed consumer. Data
// preserves the order values changed; Sensors is coalesced per path
// (last metadata state wins). A frame is only sent when at least one of
// the two is non-empty.
type Frame struct {
	Data    []sensors.SensorData          `cbor:"1,keyasint,omitempty"`
	Sensors map[string]sensors.SensorInfo `cbor:"2,keyasint,omitempty"`
}

// Empty reports whether the frame carries no delta at all.
func (f *Frame) Empty() bool {
	return len(f.Data) == 0 && len(f.Sensors) == 0
}

// MessageType discriminates daemon-to-consumer messages.
type MessageType uint8

const (
	// MessageResponse answers a request.
	MessageResponse MessageType = 1

	// MessageFrame is an unsolicited per-tick delta push.
	MessageFrame MessageType = 2
)

// ServerMessage is the envelope for everything the daemon sends.
type ServerMessage struct {
	Type     MessageType `cbor:"1,keyasint"`
	Response *Response   `cbor:"2,keyasint,omitempty"`
	Frame    *Frame      `cbor:"3,keyasint,omitempty"`
}

// Validate checks the envelope carries the payload its type promises.
func (m *ServerMessage) Validate() error {
	switch m.Type {
	case MessageResponse:
		if m.Response == nil {
			return ErrMissingPayload
		}
	case MessageFrame:
		if m.Frame == nil {
			return ErrMissingPayload
		}
	default:
		return ErrUnknownOperation
	}
	return nil
}
