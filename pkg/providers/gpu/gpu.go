// Package gpu provides GPU usage and video memory sensors. The only
// backend so far reads the Linux DRM sysfs interface exposed by the
// amdgpu driver, other platforms report ErrNoBackend.
package gpu

import (
	"errors"

	"github.com/sysstats-project/sysstats-go/pkg/sensors"
)

// ErrNoBackend is returned when no GPU statistics source is available
// on this system.
var ErrNoBackend = errors.New("gpu: no supported backend")

// backend enumerates GPU devices and refreshes their sensors.
type backend interface {
	supported() bool
	devices(c *sensors.Container) []*deviceObject
	update(devices []*deviceObject) error
}

// Provider exposes one object per detected GPU.
type Provider struct {
	container *sensors.Container
	backend   backend
	devs      []*deviceObject
}

func NewProvider() (*Provider, error) {
	p := &Provider{container: sensors.NewContainer("gpu", "GPUs")}

	backends := []backend{
		newSysfsBackend(),
	}
	for _, b := range backends {
		if b.supported() {
			p.backend = b
			break
		}
	}
	if p.backend == nil {
		return nil, ErrNoBackend
	}

	p.devs = p.backend.devices(p.container)
	if len(p.devs) == 0 {
		return nil, ErrNoBackend
	}
	return p, nil
}

func (p *Provider) Name() string {
	return "gpu"
}

func (p *Provider) Containers() []*sensors.Container {
	return []*sensors.Container{p.container}
}

func (p *Provider) Update() error {
	return p.backend.update(p.devs)
}

type deviceObject struct {
	object *sensors.Object

	// sysfs directory of the card's device, backend specific key.
	devicePath string

	usage     *sensors.Property
	usedVram  *sensors.Property
	totalVram *sensors.Property
}

func newDeviceObject(id, name, devicePath string, c *sensors.Container) *deviceObject {
	obj := sensors.NewObject(id, name, c)
	d := &deviceObject{object: obj, devicePath: devicePath}

	gpuName := sensors.NewPropertyWithValue("name", "Name", name, obj)
	gpuName.SetShortName("Name")
	gpuName.SetValueType(sensors.TypeString)

	d.usage = sensors.NewProperty("usage", "Usage", obj)
	d.usage.SetPrefix(name)
	d.usage.SetShortName("Usage")
	d.usage.SetUnit(sensors.UnitPercent)
	d.usage.SetValueType(sensors.TypeInteger)
	d.usage.SetMin(int64(0))
	d.usage.SetMax(int64(100))

	d.usedVram = sensors.NewProperty("usedVram", "Used Video Memory", obj)
	d.usedVram.SetPrefix(name)
	d.usedVram.SetShortName("Used VRAM")
	d.usedVram.SetUnit(sensors.UnitByte)
	d.usedVram.SetValueType(sensors.TypeInteger)

	d.totalVram = sensors.NewProperty("totalVram", "Total Video Memory", obj)
	d.totalVram.SetPrefix(name)
	d.totalVram.SetShortName("Total VRAM")
	d.totalVram.SetUnit(sensors.UnitByte)
	d.totalVram.SetValueType(sensors.TypeInteger)

	usedVramPercent := sensors.NewPercentageSensor("usedVramPercent", "Percentage VRAM Used", obj)
	usedVramPercent.SetPrefix(name)
	usedVramPercent.SetBaseSensor(d.usedVram)

	return d
}

var _ sensors.Provider = (*Provider)(nil)
