package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysstats-project/sysstats-go/pkg/daemon"
	"github.com/sysstats-project/sysstats-go/pkg/sensors"
	"github.com/sysstats-project/sysstats-go/pkg/wire"
)

type stubProvider struct {
	container *sensors.Container
	value     *sensors.Property
	ticks     int
}

func newStubProvider() *stubProvider {
	p := &stubProvider{}
	p.container = sensors.NewContainer("stub", "Stub")
	obj := sensors.NewObject("obj", "Object", p.container)
	p.value = sensors.NewPropertyWithValue("value", "Value", int64(0), obj)
	return p
}

func (p *stubProvider) Name() string                     { return "stub" }
func (p *stubProvider) Containers() []*sensors.Container { return []*sensors.Container{p.container} }
func (p *stubProvider) Update() error {
	p.ticks++
	p.value.SetValue(int64(p.ticks))
	return nil
}

// startServer brings up a daemon with a fast tick and a server on a
// loopback port, and returns the dial address.
func startServer(t *testing.T) (string, *stubProvider) {
	t.Helper()

	provider := newStubProvider()
	d := daemon.New(daemon.Config{Interval: 20 * time.Millisecond})
	require.NoError(t, d.RegisterProvider(provider))
	d.Start()
	t.Cleanup(d.Stop)

	server := NewServer(d, nil)
	require.NoError(t, server.Listen("127.0.0.1:0"))
	go server.Serve()
	t.Cleanup(func() { server.Close() })

	return server.Addr().String(), provider
}

func TestListSensors(t *testing.T) {
	addr, _ := startServer(t)

	client, err := Dial(addr)
	require.NoError(t, err)
	defer client.Close()

	infos, err := client.ListSensors()
	require.NoError(t, err)

	assert.Contains(t, infos, "stub")
	assert.Contains(t, infos, "stub/obj")
	require.Contains(t, infos, "stub/obj/value")
	assert.Equal(t, "Value", infos["stub/obj/value"].Name)
}

func TestGetSensorsSkipsUnknownPaths(t *testing.T) {
	addr, _ := startServer(t)

	client, err := Dial(addr)
	require.NoError(t, err)
	defer client.Close()

	infos, err := client.GetSensors([]string{"stub/obj/value", "stub/obj/missing"})
	require.NoError(t, err)
	assert.Len(t, infos, 1)
	assert.Contains(t, infos, "stub/obj/value")
}

func TestGetData(t *testing.T) {
	addr, _ := startServer(t)

	client, err := Dial(addr)
	require.NoError(t, err)
	defer client.Close()

	data, err := client.GetData([]string{"stub/obj/value"})
	require.NoError(t, err)
	require.Len(t, data, 1)
	assert.Equal(t, "stub/obj/value", data[0].Path)
}

func TestSubscribeReceivesFrames(t *testing.T) {
	addr, _ := startServer(t)

	client, err := Dial(addr)
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Subscribe([]string{"stub/obj/value"}))

	frame := waitForFrame(t, client)
	require.NotEmpty(t, frame.Data)
	assert.Equal(t, "stub/obj/value", frame.Data[0].Path)
}

func TestUnsubscribeStopsFrames(t *testing.T) {
	addr, _ := startServer(t)

	client, err := Dial(addr)
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Subscribe([]string{"stub/obj/value"}))
	waitForFrame(t, client)

	require.NoError(t, client.Unsubscribe([]string{"stub/obj/value"}))

	// Frames already in flight may still arrive briefly.
	drain := time.After(150 * time.Millisecond)
drained:
	for {
		select {
		case _, ok := <-client.Frames():
			require.True(t, ok, "connection dropped")
		case <-drain:
			break drained
		}
	}

	select {
	case f := <-client.Frames():
		t.Fatalf("frame arrived after unsubscribe: %+v", f)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestSubscribeUnknownPathSucceeds(t *testing.T) {
	addr, _ := startServer(t)

	client, err := Dial(addr)
	require.NoError(t, err)
	defer client.Close()

	// The daemon drops unknown paths silently instead of failing the
	// request.
	require.NoError(t, client.Subscribe([]string{"stub/obj/missing"}))
}

func TestServerClosePropagates(t *testing.T) {
	provider := newStubProvider()
	d := daemon.New(daemon.Config{Interval: time.Hour})
	require.NoError(t, d.RegisterProvider(provider))
	d.Start()
	t.Cleanup(d.Stop)

	server := NewServer(d, nil)
	require.NoError(t, server.Listen("127.0.0.1:0"))
	go server.Serve()

	client, err := Dial(server.Addr().String())
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, server.Close())

	select {
	case _, ok := <-client.Frames():
		assert.False(t, ok, "frames channel should close with the connection")
	case <-time.After(time.Second):
		t.Fatal("frames channel not closed after server shutdown")
	}
}

func waitForFrame(t *testing.T, client *Client) *wire.Frame {
	t.Helper()
	select {
	case frame, ok := <-client.Frames():
		require.True(t, ok, "connection dropped while waiting for frame")
		return frame
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return nil
	}
}
