package sensors

import (
	"regexp"
	"testing"
)

func newDiskFixture(t *testing.T) (*Container, *Property, *Property) {
	t.Helper()
	c := NewContainer("disk", "Disks")

	sda := NewObject("sda1", "/dev/sda1", c)
	sdaTotal := NewProperty("total", "Total Space", sda)
	sdaTotal.SetUnit(UnitByte)

	sdb := NewObject("sdb1", "/dev/sdb1", c)
	sdbTotal := NewProperty("total", "Total Space", sdb)
	sdbTotal.SetUnit(UnitByte)

	return c, sdaTotal, sdbTotal
}

func TestAggregateSensorSums(t *testing.T) {
	c, sdaTotal, sdbTotal := newDiskFixture(t)

	all := NewObject("all", "All Disks", c)
	agg := NewAggregateSensor("total", "Total Space", all)
	agg.SetMatchSensors(regexp.MustCompile(".*"), "total")

	sdaTotal.SetValue(int64(100))
	sdbTotal.SetValue(int64(200))
	if got := agg.Value(); got != int64(300) {
		t.Fatalf("aggregate = %v, want 300", got)
	}

	sdaTotal.SetValue(int64(150))
	if got := agg.Value(); got != int64(350) {
		t.Errorf("aggregate after update = %v, want 350", got)
	}
}

func TestAggregateSensorIgnoresOwnObject(t *testing.T) {
	c, sdaTotal, _ := newDiskFixture(t)

	all := NewObject("all", "All Disks", c)
	agg := NewAggregateSensor("total", "Total Space", all)
	agg.SetMatchSensors(regexp.MustCompile(".*"), "total")

	sdaTotal.SetValue(int64(100))

	// A same-named property under the aggregate's own object must
	// never feed back into the sum.
	child := NewChildObject("snapshots", "Snapshots", all)
	extra := NewProperty("total", "Total Space", child)
	extra.SetValue(int64(5))

	if got := agg.Value(); got != int64(100) {
		t.Errorf("aggregate = %v, want 100", got)
	}
}

func TestAggregateSensorTracksRemovals(t *testing.T) {
	c, sdaTotal, sdbTotal := newDiskFixture(t)

	all := NewObject("all", "All Disks", c)
	agg := NewAggregateSensor("total", "Total Space", all)
	agg.SetMatchSensors(regexp.MustCompile(".*"), "total")

	sdaTotal.SetValue(int64(100))
	sdbTotal.SetValue(int64(200))

	c.RemoveObject(sdbTotal.Object())
	if got := agg.Value(); got != int64(100) {
		t.Errorf("aggregate after removal = %v, want 100", got)
	}

	// New matching objects join the sum.
	sdc := NewObject("sdc1", "/dev/sdc1", c)
	sdcTotal := NewProperty("total", "Total Space", sdc)
	sdcTotal.SetValue(int64(50))
	if got := agg.Value(); got != int64(150) {
		t.Errorf("aggregate after addition = %v, want 150", got)
	}
}

func TestAggregateSensorPatternFilters(t *testing.T) {
	c := NewContainer("net", "Network")

	eth := NewObject("eth0", "eth0", c)
	ethDown := NewProperty("download", "Download", eth)
	ethDown.SetValue(int64(10))

	wlan := NewObject("wlan0", "wlan0", c)
	wlanDown := NewProperty("download", "Download", wlan)
	wlanDown.SetValue(int64(20))

	all := NewObject("all", "All", c)
	agg := NewAggregateSensor("download", "Download", all)
	agg.SetMatchSensors(regexp.MustCompile("^eth"), "download")

	if got := agg.Value(); got != int64(10) {
		t.Errorf("aggregate = %v, want 10 (only eth0 matches)", got)
	}
}

func TestPercentageSensor(t *testing.T) {
	c := NewContainer("disk", "Disks")
	sda := NewObject("sda1", "/dev/sda1", c)

	used := NewProperty("used", "Used Space", sda)
	used.SetMax(int64(3000))

	pct := NewPercentageSensor("usedPercent", "Percentage Used", sda)
	pct.SetBaseSensor(used)

	used.SetValue(int64(900))
	if got := pct.Value(); got != 30.0 {
		t.Errorf("percentage = %v, want 30", got)
	}

	info := pct.Info()
	if info.Unit != UnitPercent {
		t.Errorf("Unit = %v, want UnitPercent", info.Unit)
	}

	// A zero max must not divide.
	used.SetMax(int64(0))
	used.SetValue(int64(1000))
	if got := pct.Value(); got != 30.0 {
		t.Errorf("percentage after zero max = %v, want unchanged 30", got)
	}
}
