package network

import (
	"time"

	"github.com/sysstats-project/sysstats-go/pkg/sensors"
)

type deviceObject struct {
	object *sensors.Object

	download      *sensors.Property
	upload        *sensors.Property
	totalDownload *sensors.Property
	totalUpload   *sensors.Property

	initialized bool
	received    uint64
	sent        uint64
	lastSample  time.Time
}

func newDeviceObject(name string, c *sensors.Container) *deviceObject {
	obj := sensors.NewObject(name, name, c)
	d := &deviceObject{object: obj}

	networkName := sensors.NewPropertyWithValue("network", "Connected Network", name, obj)
	networkName.SetPrefix(name)
	networkName.SetShortName("Network")
	networkName.SetValueType(sensors.TypeString)

	d.download = sensors.NewPropertyWithValue("download", "Download Rate", 0.0, obj)
	d.download.SetPrefix(name)
	d.download.SetShortName("Download")
	d.download.SetUnit(sensors.UnitByteRate)
	d.download.SetValueType(sensors.TypeFloat)

	d.upload = sensors.NewPropertyWithValue("upload", "Upload Rate", 0.0, obj)
	d.upload.SetPrefix(name)
	d.upload.SetShortName("Upload")
	d.upload.SetUnit(sensors.UnitByteRate)
	d.upload.SetValueType(sensors.TypeFloat)

	d.totalDownload = sensors.NewProperty("totalDownload", "Total Downloaded", obj)
	d.totalDownload.SetPrefix(name)
	d.totalDownload.SetShortName("Downloaded")
	d.totalDownload.SetUnit(sensors.UnitByte)
	d.totalDownload.SetValueType(sensors.TypeInteger)

	d.totalUpload = sensors.NewProperty("totalUpload", "Total Uploaded", obj)
	d.totalUpload.SetPrefix(name)
	d.totalUpload.SetShortName("Uploaded")
	d.totalUpload.SetUnit(sensors.UnitByte)
	d.totalUpload.SetValueType(sensors.TypeInteger)

	return d
}

// setCounters feeds absolute byte counters. Rates fall out of the delta
// since the previous sample, the first sample only seeds the state.
func (d *deviceObject) setCounters(received, sent uint64, now time.Time) {
	if d.initialized {
		seconds := now.Sub(d.lastSample).Seconds()
		if seconds > 0 {
			d.download.SetValue(rate(received, d.received, seconds))
			d.upload.SetValue(rate(sent, d.sent, seconds))
		}
	}
	d.totalDownload.SetValue(int64(received))
	d.totalUpload.SetValue(int64(sent))
	d.received = received
	d.sent = sent
	d.lastSample = now
	d.initialized = true
}

func rate(cur, prev uint64, seconds float64) float64 {
	if cur < prev {
		return 0
	}
	return float64(cur-prev) / seconds
}
