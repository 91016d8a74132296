// Package cpu provides per-core and aggregate CPU usage sensors backed
// by gopsutil.
package cpu

import (
	"fmt"

	gopscpu "github.com/shirou/gopsutil/v4/cpu"

	"github.com/sysstats-project/sysstats-go/pkg/sensors"
)

type coreObject struct {
	object *sensors.Object
	usage  usageComputer

	totalUsage  *sensors.Property
	userUsage   *sensors.Property
	systemUsage *sensors.Property
	waitUsage   *sensors.Property
}

func newCoreObject(id, name string, c *sensors.Container) *coreObject {
	obj := sensors.NewObject(id, name, c)
	co := &coreObject{object: obj}
	co.totalUsage = newPercentProperty("usage", "Total Usage", "Usage", obj)
	co.userUsage = newPercentProperty("user", "User Usage", "User", obj)
	co.systemUsage = newPercentProperty("system", "System Usage", "System", obj)
	co.waitUsage = newPercentProperty("wait", "Wait Usage", "Wait", obj)
	return co
}

func newPercentProperty(name, displayName, shortName string, obj *sensors.Object) *sensors.Property {
	p := sensors.NewProperty(name, displayName, obj)
	p.SetPrefix(obj.Name())
	p.SetShortName(shortName)
	p.SetUnit(sensors.UnitPercent)
	p.SetValueType(sensors.TypeFloat)
	p.SetMin(0.0)
	p.SetMax(100.0)
	return p
}

func (co *coreObject) setTimes(t gopscpu.TimesStat) {
	co.usage.setTicks(t.System+t.Irq+t.Softirq, t.User+t.Nice, t.Iowait, t.Idle+t.Steal)
	co.totalUsage.SetValue(co.usage.total)
	co.userUsage.SetValue(co.usage.user)
	co.systemUsage.SetValue(co.usage.system)
	co.waitUsage.SetValue(co.usage.wait)
}

// Provider exposes one object per logical CPU plus an "all" object that
// reflects usage across all CPUs.
type Provider struct {
	container *sensors.Container
	cores     []*coreObject
	all       *coreObject
}

// NewProvider enumerates the logical CPUs and builds the sensor tree.
func NewProvider() (*Provider, error) {
	count, err := gopscpu.Counts(true)
	if err != nil {
		return nil, fmt.Errorf("failed to count CPUs: %w", err)
	}

	p := &Provider{container: sensors.NewContainer("cpu", "CPU")}

	p.all = newCoreObject("all", "All", p.container)
	coreCount := sensors.NewPropertyWithValue("coreCount", "Core Count", int64(count), p.all.object)
	coreCount.SetShortName("Cores")
	coreCount.SetValueType(sensors.TypeInteger)

	for i := 0; i < count; i++ {
		core := newCoreObject(fmt.Sprintf("cpu%d", i), fmt.Sprintf("CPU %d", i+1), p.container)
		p.cores = append(p.cores, core)
	}
	p.addFrequencies()

	return p, nil
}

// addFrequencies attaches a static base-frequency sensor to each core
// where the platform reports one. Best effort, a failure simply leaves
// the sensors out.
func (p *Provider) addFrequencies() {
	infos, err := gopscpu.Info()
	if err != nil || len(infos) == 0 {
		return
	}
	for i, core := range p.cores {
		info := infos[0]
		if i < len(infos) {
			info = infos[i]
		}
		if info.Mhz <= 0 {
			continue
		}
		freq := sensors.NewPropertyWithValue("frequency", "Frequency", info.Mhz*1e6, core.object)
		freq.SetPrefix(core.object.Name())
		freq.SetShortName("Frequency")
		freq.SetUnit(sensors.UnitHertz)
		freq.SetValueType(sensors.TypeFloat)
	}
}

func (p *Provider) Name() string {
	return "cpu"
}

func (p *Provider) Containers() []*sensors.Container {
	return []*sensors.Container{p.container}
}

// Update refreshes the usage percentages from the kernel's CPU time
// counters. Per-core times and the machine-wide total are read in one
// pass each.
func (p *Provider) Update() error {
	if !p.anySubscribed() {
		return nil
	}

	perCore, err := gopscpu.Times(true)
	if err != nil {
		return fmt.Errorf("failed to read per-CPU times: %w", err)
	}
	for i, core := range p.cores {
		if i >= len(perCore) {
			break
		}
		core.setTimes(perCore[i])
	}

	total, err := gopscpu.Times(false)
	if err != nil {
		return fmt.Errorf("failed to read total CPU times: %w", err)
	}
	if len(total) > 0 {
		p.all.setTimes(total[0])
	}
	return nil
}

func (p *Provider) anySubscribed() bool {
	if p.all.object.IsSubscribed() {
		return true
	}
	for _, core := range p.cores {
		if core.object.IsSubscribed() {
			return true
		}
	}
	return false
}

var _ sensors.Provider = (*Provider)(nil)
