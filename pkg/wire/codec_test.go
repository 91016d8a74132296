package wire

import (
	"errors"
	"testing"

	"github.com/sysstats-project/sysstats-go/pkg/sensors"
)

func TestRequestRoundTrip(t *testing.T) {
	req := &Request{Op: OpGetData, Paths: []string{"cpu/all/usage", "memory/physical/used"}}

	data, err := EncodeRequest(req)
	if err != nil {
		t.Fatalf("EncodeRequest: %v", err)
	}
	got, err := DecodeRequest(data)
	if err != nil {
		t.Fatalf("DecodeRequest: %v", err)
	}
	if got.Op != OpGetData {
		t.Errorf("Op = %v, want OpGetData", got.Op)
	}
	if len(got.Paths) != 2 || got.Paths[0] != "cpu/all/usage" {
		t.Errorf("Paths = %v", got.Paths)
	}
}

func TestDecodeRequestRejectsUnknownOperation(t *testing.T) {
	data, err := Marshal(&Request{Op: Operation(99)})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeRequest(data); !errors.Is(err, ErrUnknownOperation) {
		t.Errorf("error = %v, want ErrUnknownOperation", err)
	}
}

func TestDecodeRequestRejectsGarbage(t *testing.T) {
	if _, err := DecodeRequest([]byte{0xff, 0x00, 0x12}); err == nil {
		t.Error("DecodeRequest accepted garbage")
	}
}

func TestServerMessageValidate(t *testing.T) {
	cases := []struct {
		name    string
		msg     ServerMessage
		wantErr error
	}{
		{"response ok", ServerMessage{Type: MessageResponse, Response: &Response{Op: OpListSensors}}, nil},
		{"frame ok", ServerMessage{Type: MessageFrame, Frame: &Frame{Data: []sensors.SensorData{{Path: "a/b/c", Value: 1}}}}, nil},
		{"response missing", ServerMessage{Type: MessageResponse}, ErrMissingPayload},
		{"frame missing", ServerMessage{Type: MessageFrame}, ErrMissingPayload},
		{"bad type", ServerMessage{Type: MessageType(9)}, ErrUnknownOperation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.msg.Validate(); !errors.Is(err, tc.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestServerMessageRoundTrip(t *testing.T) {
	msg := &ServerMessage{
		Type: MessageFrame,
		Frame: &Frame{
			Data: []sensors.SensorData{{Path: "cpu/all/usage", Value: 42.5}},
			Sensors: map[string]sensors.SensorInfo{
				"cpu/all/usage": {Name: "Total Usage", Unit: sensors.UnitPercent},
			},
		},
	}

	data, err := EncodeServerMessage(msg)
	if err != nil {
		t.Fatalf("EncodeServerMessage: %v", err)
	}
	got, err := DecodeServerMessage(data)
	if err != nil {
		t.Fatalf("DecodeServerMessage: %v", err)
	}
	if got.Type != MessageFrame {
		t.Fatalf("Type = %v, want MessageFrame", got.Type)
	}
	if len(got.Frame.Data) != 1 || got.Frame.Data[0].Path != "cpu/all/usage" {
		t.Errorf("Frame.Data = %v", got.Frame.Data)
	}
	if got.Frame.Sensors["cpu/all/usage"].Unit != sensors.UnitPercent {
		t.Errorf("Sensors = %v", got.Frame.Sensors)
	}
}

func TestFrameEmpty(t *testing.T) {
	if !(&Frame{}).Empty() {
		t.Error("empty frame reported non-empty")
	}
	if (&Frame{Data: []sensors.SensorData{{Path: "a/b/c", Value: 1}}}).Empty() {
		t.Error("frame with data reported empty")
	}
	if (&Frame{Sensors: map[string]sensors.SensorInfo{"a/b/c": {}}}).Empty() {
		t.Error("frame with metadata reported empty")
	}
}
