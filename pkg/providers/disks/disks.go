// Package disks provides capacity and throughput sensors for mounted
// volumes, plus an "all" object aggregating across every volume.
package disks

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/disk"

	"github.com/sysstats-project/sysstats-go/pkg/sensors"
)

type volumeObject struct {
	object     *sensors.Object
	device     string
	mountPoint string

	total     *sensors.Property
	used      *sensors.Property
	free      *sensors.Property
	readRate  *sensors.Property
	writeRate *sensors.Property

	bytesRead    uint64
	bytesWritten uint64
}

func newVolumeObject(part disk.PartitionStat, c *sensors.Container) *volumeObject {
	id := strings.ReplaceAll(strings.TrimPrefix(part.Device, "/dev/"), "/", "_")
	obj := sensors.NewObject(id, part.Device, c)
	v := &volumeObject{
		object:     obj,
		device:     part.Device,
		mountPoint: part.Mountpoint,
	}

	name := sensors.NewPropertyWithValue("name", "Name", part.Device, obj)
	name.SetShortName("Name")
	name.SetValueType(sensors.TypeString)

	v.total = sensors.NewProperty("total", "Total Space", obj)
	v.total.SetPrefix(obj.Name())
	v.total.SetShortName("Total")
	v.total.SetUnit(sensors.UnitByte)
	v.total.SetValueType(sensors.TypeInteger)

	v.used = sensors.NewProperty("used", "Used Space", obj)
	v.used.SetPrefix(obj.Name())
	v.used.SetShortName("Used")
	v.used.SetUnit(sensors.UnitByte)
	v.used.SetValueType(sensors.TypeInteger)

	v.free = sensors.NewProperty("free", "Free Space", obj)
	v.free.SetPrefix(obj.Name())
	v.free.SetShortName("Free")
	v.free.SetUnit(sensors.UnitByte)
	v.free.SetValueType(sensors.TypeInteger)

	v.readRate = sensors.NewPropertyWithValue("read", "Read Rate", 0.0, obj)
	v.readRate.SetPrefix(obj.Name())
	v.readRate.SetShortName("Read")
	v.readRate.SetUnit(sensors.UnitByteRate)
	v.readRate.SetValueType(sensors.TypeFloat)

	v.writeRate = sensors.NewPropertyWithValue("write", "Write Rate", 0.0, obj)
	v.writeRate.SetPrefix(obj.Name())
	v.writeRate.SetShortName("Write")
	v.writeRate.SetUnit(sensors.UnitByteRate)
	v.writeRate.SetValueType(sensors.TypeFloat)

	usedPercent := sensors.NewPercentageSensor("usedPercent", "Percentage Used", obj)
	usedPercent.SetPrefix(obj.Name())
	usedPercent.SetBaseSensor(v.used)

	freePercent := sensors.NewPercentageSensor("freePercent", "Percentage Free", obj)
	freePercent.SetPrefix(obj.Name())
	freePercent.SetBaseSensor(v.free)

	return v
}

func (v *volumeObject) setUsage(u *disk.UsageStat) {
	v.total.SetValue(int64(u.Total))
	v.free.SetValue(int64(u.Free))
	v.free.SetMax(int64(u.Total))
	v.used.SetValue(int64(u.Used))
	v.used.SetMax(int64(u.Total))
}

func (v *volumeObject) setBytes(read, written uint64, elapsed time.Duration) {
	if elapsed > 0 {
		seconds := elapsed.Seconds()
		v.readRate.SetValue(float64(read-v.bytesRead) / seconds)
		v.writeRate.SetValue(float64(written-v.bytesWritten) / seconds)
	}
	v.bytesRead = read
	v.bytesWritten = written
}

// Provider exposes one object per mounted physical volume. Free-space
// figures are fetched off the event loop and posted back through the
// scheduler; throughput comes from the kernel's block device counters.
type Provider struct {
	container *sensors.Container
	scheduler sensors.Scheduler

	volumesByDevice map[string]*volumeObject
	lastUpdate      time.Time
}

func NewProvider(scheduler sensors.Scheduler) (*Provider, error) {
	p := &Provider{
		container:       sensors.NewContainer("disk", "Disks"),
		scheduler:       scheduler,
		volumesByDevice: make(map[string]*volumeObject),
	}

	parts, err := disk.Partitions(false)
	if err != nil {
		return nil, fmt.Errorf("failed to list partitions: %w", err)
	}
	for _, part := range parts {
		p.addPartition(part)
	}
	p.addAggregateSensors()

	return p, nil
}

func (p *Provider) addPartition(part disk.PartitionStat) {
	if !strings.HasPrefix(part.Device, "/dev/") {
		return
	}
	if _, ok := p.volumesByDevice[part.Device]; ok {
		return
	}
	for _, v := range p.volumesByDevice {
		if v.mountPoint == part.Mountpoint {
			return
		}
	}
	p.volumesByDevice[part.Device] = newVolumeObject(part, p.container)
}

func (p *Provider) addAggregateSensors() {
	allDisks := sensors.NewObject("all", "All Disks", p.container)
	any := regexp.MustCompile(".*")

	total := sensors.NewAggregateSensor("total", "Total Space", allDisks)
	total.SetShortName("Total")
	total.SetUnit(sensors.UnitByte)
	total.SetValueType(sensors.TypeInteger)
	total.SetMatchSensors(any, "total")

	free := sensors.NewAggregateSensor("free", "Free Space", allDisks)
	free.SetShortName("Free")
	free.SetUnit(sensors.UnitByte)
	free.SetValueType(sensors.TypeInteger)
	free.SetMax(total.Value())
	free.SetMatchSensors(any, "free")

	used := sensors.NewAggregateSensor("used", "Used Space", allDisks)
	used.SetShortName("Used")
	used.SetUnit(sensors.UnitByte)
	used.SetValueType(sensors.TypeInteger)
	used.SetMax(total.Value())
	used.SetMatchSensors(any, "used")

	readRate := sensors.NewAggregateSensor("read", "Read Rate", allDisks)
	readRate.SetShortName("Read")
	readRate.SetUnit(sensors.UnitByteRate)
	readRate.SetValueType(sensors.TypeFloat)
	readRate.SetMatchSensors(any, "read")

	writeRate := sensors.NewAggregateSensor("write", "Write Rate", allDisks)
	writeRate.SetShortName("Write")
	writeRate.SetUnit(sensors.UnitByteRate)
	writeRate.SetValueType(sensors.TypeFloat)
	writeRate.SetMatchSensors(any, "write")

	freePercent := sensors.NewPercentageSensor("freePercent", "Percentage Free", allDisks)
	freePercent.SetShortName("Free")
	freePercent.SetBaseSensor(free.Property)

	usedPercent := sensors.NewPercentageSensor("usedPercent", "Percentage Used", allDisks)
	usedPercent.SetShortName("Used")
	usedPercent.SetBaseSensor(used.Property)

	// The per-volume maxima move as volumes come and go, keep the
	// aggregate percentages relative to the aggregate total.
	total.OnValueChanged(func(t *sensors.Property) {
		free.SetMax(t.Value())
		used.SetMax(t.Value())
	})
}

func (p *Provider) Name() string {
	return "disk"
}

func (p *Provider) Containers() []*sensors.Container {
	return []*sensors.Container{p.container}
}

// Update rescans partitions for hotplug events and refreshes the
// subscribed volumes. Statfs on a stale network mount can block, so
// free-space queries run on their own goroutines and post results back
// to the event loop.
func (p *Provider) Update() error {
	parts, err := disk.Partitions(false)
	if err != nil {
		return fmt.Errorf("failed to list partitions: %w", err)
	}
	p.reconcilePartitions(parts)

	anySubscribed := false
	for _, v := range p.volumesByDevice {
		if v.object.IsSubscribed() {
			anySubscribed = true
			p.fetchUsage(v)
		}
	}
	if !anySubscribed {
		return nil
	}

	var elapsed time.Duration
	now := time.Now()
	if !p.lastUpdate.IsZero() {
		elapsed = now.Sub(p.lastUpdate)
	}
	p.lastUpdate = now

	counters, err := disk.IOCounters()
	if err != nil {
		return fmt.Errorf("failed to read disk counters: %w", err)
	}
	for name, stat := range counters {
		device := "/dev/" + name
		if v, ok := p.volumesByDevice[device]; ok {
			v.setBytes(stat.ReadBytes, stat.WriteBytes, elapsed)
		}
	}
	return nil
}

func (p *Provider) reconcilePartitions(parts []disk.PartitionStat) {
	seen := make(map[string]bool, len(parts))
	for _, part := range parts {
		seen[part.Device] = true
		p.addPartition(part)
	}
	for device, v := range p.volumesByDevice {
		if !seen[device] {
			delete(p.volumesByDevice, device)
			p.container.RemoveObject(v.object)
		}
	}
}

func (p *Provider) fetchUsage(v *volumeObject) {
	mountPoint := v.mountPoint
	device := v.device
	go func() {
		usage, err := disk.Usage(mountPoint)
		if err != nil {
			return
		}
		p.scheduler.Post(func() {
			// The volume may have been unmounted while the
			// query was in flight.
			if cur, ok := p.volumesByDevice[device]; ok && cur == v {
				v.setUsage(usage)
			}
		})
	}()
}

var _ sensors.Provider = (*Provider)(nil)
