// Package memory provides physical and swap memory sensors backed by
// gopsutil.
package memory

import (
	"fmt"

	"github.com/shirou/gopsutil/v4/mem"

	"github.com/sysstats-project/sysstats-go/pkg/sensors"
)

// Provider exposes a "physical" and a "swap" object under the "memory"
// container.
type Provider struct {
	container *sensors.Container

	total       *sensors.Property
	used        *sensors.Property
	free        *sensors.Property
	available   *sensors.Property
	cached      *sensors.Property
	buffers     *sensors.Property
	application *sensors.Property

	swapTotal *sensors.Property
	swapUsed  *sensors.Property
	swapFree  *sensors.Property
}

func NewProvider() (*Provider, error) {
	p := &Provider{container: sensors.NewContainer("memory", "Memory")}

	physical := sensors.NewObject("physical", "Memory", p.container)
	p.total = byteProperty("total", "Total Memory", "Total", physical)
	p.used = byteProperty("used", "Used Memory", "Used", physical)
	p.free = byteProperty("free", "Free Memory", "Free", physical)
	p.available = byteProperty("available", "Available Memory", "Available", physical)
	p.cached = byteProperty("cached", "Cached Memory", "Cached", physical)
	p.buffers = byteProperty("buffers", "Buffered Memory", "Buffers", physical)
	p.application = byteProperty("application", "Application Memory", "Application", physical)

	usedPercent := sensors.NewPercentageSensor("usedPercent", "Percentage Used", physical)
	usedPercent.SetPrefix(physical.Name())
	usedPercent.SetBaseSensor(p.used)

	swap := sensors.NewObject("swap", "Swap", p.container)
	p.swapTotal = byteProperty("total", "Total Swap", "Total", swap)
	p.swapUsed = byteProperty("used", "Used Swap", "Used", swap)
	p.swapFree = byteProperty("free", "Free Swap", "Free", swap)

	swapUsedPercent := sensors.NewPercentageSensor("usedPercent", "Percentage Used", swap)
	swapUsedPercent.SetPrefix(swap.Name())
	swapUsedPercent.SetBaseSensor(p.swapUsed)

	return p, nil
}

func byteProperty(name, displayName, shortName string, obj *sensors.Object) *sensors.Property {
	p := sensors.NewProperty(name, displayName, obj)
	p.SetPrefix(obj.Name())
	p.SetShortName(shortName)
	p.SetUnit(sensors.UnitByte)
	p.SetValueType(sensors.TypeInteger)
	return p
}

func (p *Provider) Name() string {
	return "memory"
}

func (p *Provider) Containers() []*sensors.Container {
	return []*sensors.Container{p.container}
}

func (p *Provider) Update() error {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return fmt.Errorf("failed to read memory stats: %w", err)
	}
	p.total.SetValue(int64(vm.Total))
	p.total.SetMax(int64(vm.Total))
	p.used.SetValue(int64(vm.Used))
	p.used.SetMax(int64(vm.Total))
	p.free.SetValue(int64(vm.Free))
	p.free.SetMax(int64(vm.Total))
	p.available.SetValue(int64(vm.Available))
	p.available.SetMax(int64(vm.Total))
	p.cached.SetValue(int64(vm.Cached))
	p.cached.SetMax(int64(vm.Total))
	p.buffers.SetValue(int64(vm.Buffers))
	p.buffers.SetMax(int64(vm.Total))
	// gopsutil's Used already excludes cache and buffers, which is
	// exactly what application memory means here.
	p.application.SetValue(int64(vm.Used))
	p.application.SetMax(int64(vm.Total))

	sm, err := mem.SwapMemory()
	if err != nil {
		return fmt.Errorf("failed to read swap stats: %w", err)
	}
	p.swapTotal.SetValue(int64(sm.Total))
	p.swapTotal.SetMax(int64(sm.Total))
	p.swapUsed.SetValue(int64(sm.Used))
	p.swapUsed.SetMax(int64(sm.Total))
	p.swapFree.SetValue(int64(sm.Free))
	p.swapFree.SetMax(int64(sm.Total))

	return nil
}

var _ sensors.Provider = (*Provider)(nil)
