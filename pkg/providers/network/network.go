// Package network provides per-interface traffic sensors. Backends are
// probed in order and the first supported one drives the device list,
// the same sensors work regardless of which backend feeds them.
package network

import (
	"errors"
	"regexp"

	"github.com/sysstats-project/sysstats-go/pkg/sensors"
)

// ErrNoBackend is returned when no backend can provide interface
// statistics on this system.
var ErrNoBackend = errors.New("network: no supported backend")

// backend feeds interface counters into the provider. supported is the
// capability probe, update pushes fresh counters through the device
// callbacks.
type backend interface {
	supported() bool
	update(p *Provider) error
}

// Provider exposes one object per network interface plus an "all"
// object aggregating the traffic of every interface.
type Provider struct {
	container *sensors.Container
	backend   backend

	devices map[string]*deviceObject
}

func NewProvider() (*Provider, error) {
	p := &Provider{
		container: sensors.NewContainer("network", "Network Devices"),
		devices:   make(map[string]*deviceObject),
	}

	backends := []backend{
		newCountersBackend(),
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

	p.addAggregateSensors()
	return p, nil
}

func (p *Provider) addAggregateSensors() {
	allDevices := sensors.NewObject("all", "All Network Devices", p.container)
	any := regexp.MustCompile(".*")

	download := sensors.NewAggregateSensor("download", "Download Rate", allDevices)
	download.SetShortName("Download")
	download.SetUnit(sensors.UnitByteRate)
	download.SetValueType(sensors.TypeFloat)
	download.SetMatchSensors(any, "download")

	upload := sensors.NewAggregateSensor("upload", "Upload Rate", allDevices)
	upload.SetShortName("Upload")
	upload.SetUnit(sensors.UnitByteRate)
	upload.SetValueType(sensors.TypeFloat)
	upload.SetMatchSensors(any, "upload")

	totalDownload := sensors.NewAggregateSensor("totalDownload", "Total Downloaded", allDevices)
	totalDownload.SetShortName("Downloaded")
	totalDownload.SetUnit(sensors.UnitByte)
	totalDownload.SetValueType(sensors.TypeInteger)
	totalDownload.SetMatchSensors(any, "totalDownload")

	totalUpload := sensors.NewAggregateSensor("totalUpload", "Total Uploaded", allDevices)
	totalUpload.SetShortName("Uploaded")
	totalUpload.SetUnit(sensors.UnitByte)
	totalUpload.SetValueType(sensors.TypeInteger)
	totalUpload.SetMatchSensors(any, "totalUpload")
}

func (p *Provider) Name() string {
	return "network"
}

func (p *Provider) Containers() []*sensors.Container {
	return []*sensors.Container{p.container}
}

func (p *Provider) Update() error {
	return p.backend.update(p)
}

// deviceFor returns the object for an interface, creating it on first
// sight.
func (p *Provider) deviceFor(name string) *deviceObject {
	if d, ok := p.devices[name]; ok {
		return d
	}
	d := newDeviceObject(name, p.container)
	p.devices[name] = d
	return d
}

// dropMissing removes objects for interfaces that have disappeared.
func (p *Provider) dropMissing(seen map[string]bool) {
	for name, d := range p.devices {
		if !seen[name] {
			delete(p.devices, name)
			p.container.RemoveObject(d.object)
		}
	}
}

var _ sensors.Provider = (*Provider)(nil)
