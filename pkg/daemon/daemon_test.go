package daemon

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysstats-project/sysstats-go/pkg/sensors"
	"github.com/sysstats-project/sysstats-go/pkg/wire"
)

// testProvider exposes one object with two value sensors and runs an
// arbitrary callback on every refresh.
type testProvider struct {
	name      string
	container *sensors.Container
	a, b      *sensors.Property
	onUpdate  func() error
}

func newTestProvider(name string) *testProvider {
	p := &testProvider{name: name}
	p.container = sensors.NewContainer(name, name)
	obj := sensors.NewObject("obj", "Object", p.container)
	p.a = sensors.NewProperty("a", "A", obj)
	p.b = sensors.NewProperty("b", "B", obj)
	return p
}

func (p *testProvider) Name() string                     { return p.name }
func (p *testProvider) Containers() []*sensors.Container { return []*sensors.Container{p.container} }
func (p *testProvider) Update() error {
	if p.onUpdate != nil {
		return p.onUpdate()
	}
	return nil
}

// captureSender collects pushed frames.
type captureSender struct {
	frames chan *wire.Frame
}

func newCaptureSender() *captureSender {
	return &captureSender{frames: make(chan *wire.Frame, 16)}
}

func (s *captureSender) SendFrame(frame *wire.Frame) error {
	s.frames <- frame
	return nil
}

func (s *captureSender) next(t *testing.T) *wire.Frame {
	t.Helper()
	select {
	case f := <-s.frames:
		return f
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
		return nil
	}
}

func (s *captureSender) expectNone(t *testing.T, d *Daemon) {
	t.Helper()
	// A synchronous round-trip through the loop guarantees any frame
	// from the preceding tick would already have been pushed.
	d.loop.Call(func() {})
	select {
	case f := <-s.frames:
		t.Fatalf("unexpected frame: %+v", f)
	default:
	}
}

// newTestDaemon starts a daemon whose ticker never fires on its own, so
// tests drive ticks explicitly.
func newTestDaemon(t *testing.T, providers ...sensors.Provider) *Daemon {
	t.Helper()
	d := New(Config{Interval: time.Hour})
	for _, p := range providers {
		require.NoError(t, d.RegisterProvider(p))
	}
	d.Start()
	t.Cleanup(d.Stop)
	return d
}

func (d *Daemon) forceTick() {
	d.loop.Call(d.tick)
}

func TestSubscribeUnknownPathIsSilent(t *testing.T) {
	p := newTestProvider("test")
	d := newTestDaemon(t, p)
	sender := newCaptureSender()

	d.Subscribe("consumer", []string{"test/obj/missing", "nosuch/obj/a"}, sender)

	d.Post(func() { p.a.SetValue(int64(1)) })
	d.forceTick()
	sender.expectNone(t, d)
}

func TestDeltaPreservesValueOrder(t *testing.T) {
	p := newTestProvider("test")
	d := newTestDaemon(t, p)
	sender := newCaptureSender()

	d.Subscribe("consumer", []string{"test/obj/a", "test/obj/b"}, sender)

	d.Post(func() {
		p.a.SetValue(int64(1))
		p.b.SetValue(int64(2))
		p.a.SetValue(int64(3))
	})
	d.forceTick()

	frame := sender.next(t)
	require.Len(t, frame.Data, 3)
	assert.Equal(t, "test/obj/a", frame.Data[0].Path)
	assert.Equal(t, int64(1), frame.Data[0].Value)
	assert.Equal(t, "test/obj/b", frame.Data[1].Path)
	assert.Equal(t, "test/obj/a", frame.Data[2].Path)
	assert.Equal(t, int64(3), frame.Data[2].Value)
}

func TestUnsubscribeDropsPendingDelta(t *testing.T) {
	p := newTestProvider("test")
	d := newTestDaemon(t, p)
	sender := newCaptureSender()

	d.Subscribe("consumer", []string{"test/obj/a", "test/obj/b"}, sender)

	d.Post(func() {
		p.a.SetValue(int64(1))
		p.b.SetValue(int64(2))
	})
	// The accumulated delta for a must vanish with the subscription.
	d.Unsubscribe("consumer", []string{"test/obj/a"})
	d.forceTick()

	frame := sender.next(t)
	require.Len(t, frame.Data, 1)
	assert.Equal(t, "test/obj/b", frame.Data[0].Path)

	// Later changes to a are not delivered either.
	d.Post(func() {
		p.a.SetValue(int64(5))
	})
	d.forceTick()
	sender.expectNone(t, d)
}

func TestEntityRemovalEndsSubscriptionSilently(t *testing.T) {
	p := newTestProvider("test")
	d := newTestDaemon(t, p)
	sender := newCaptureSender()

	d.Subscribe("consumer", []string{"test/obj/a"}, sender)

	d.Post(func() {
		p.a.SetValue(int64(1))
		p.container.RemoveObject(p.a.Object())
	})
	d.forceTick()

	// The change recorded before removal still goes out.
	frame := sender.next(t)
	require.Len(t, frame.Data, 1)
	assert.Equal(t, int64(1), frame.Data[0].Value)

	// After that the path is simply gone, with no error to the
	// consumer.
	d.forceTick()
	sender.expectNone(t, d)
}

func TestMetadataChangesCoalesce(t *testing.T) {
	p := newTestProvider("test")
	d := newTestDaemon(t, p)
	sender := newCaptureSender()

	d.Subscribe("consumer", []string{"test/obj/a"}, sender)

	d.Post(func() {
		p.a.SetShortName("first")
		p.a.SetShortName("second")
	})
	d.forceTick()

	frame := sender.next(t)
	require.Len(t, frame.Sensors, 1)
	assert.Equal(t, "second", frame.Sensors["test/obj/a"].ShortName)
}

func TestEmptyTickSendsNoFrame(t *testing.T) {
	p := newTestProvider("test")
	d := newTestDaemon(t, p)
	sender := newCaptureSender()

	d.Subscribe("consumer", []string{"test/obj/a"}, sender)
	d.forceTick()
	sender.expectNone(t, d)
}

func TestProviderFailureDoesNotStallOthers(t *testing.T) {
	failing := newTestProvider("failing")
	failing.onUpdate = func() error { return errors.New("refresh failed") }

	panicking := newTestProvider("panicking")
	panicking.onUpdate = func() error { panic("boom") }

	healthy := newTestProvider("healthy")
	healthy.onUpdate = func() error {
		healthy.a.SetValue(int64(7))
		return nil
	}

	d := newTestDaemon(t, failing, panicking, healthy)
	sender := newCaptureSender()
	d.Subscribe("consumer", []string{"healthy/obj/a"}, sender)

	d.forceTick()

	frame := sender.next(t)
	require.Len(t, frame.Data, 1)
	assert.Equal(t, int64(7), frame.Data[0].Value)
}

func TestRemoveConsumer(t *testing.T) {
	p := newTestProvider("test")
	d := newTestDaemon(t, p)
	sender := newCaptureSender()

	d.Subscribe("consumer", []string{"test/obj/a"}, sender)
	d.RemoveConsumer("consumer")

	d.Post(func() { p.a.SetValue(int64(1)) })
	d.forceTick()
	sender.expectNone(t, d)

	var subscribed bool
	d.loop.Call(func() { subscribed = p.a.IsSubscribed() })
	assert.False(t, subscribed, "property still subscribed after consumer removal")
}

func TestSensorDataSkipsUnsetSensors(t *testing.T) {
	p := newTestProvider("test")
	d := newTestDaemon(t, p)

	d.Post(func() { p.a.SetValue(int64(42)) })

	data := d.SensorData([]string{"test/obj/a", "test/obj/b"})
	require.Len(t, data, 1)
	assert.Equal(t, "test/obj/a", data[0].Path)
	assert.Equal(t, int64(42), data[0].Value)
}

func TestAllSensorsIncludesHierarchy(t *testing.T) {
	p := newTestProvider("test")
	d := newTestDaemon(t, p)

	infos := d.AllSensors()
	assert.Contains(t, infos, "test")
	assert.Contains(t, infos, "test/obj")
	assert.Contains(t, infos, "test/obj/a")
}
