package network

import (
	"fmt"
	"time"

	gopsnet "github.com/shirou/gopsutil/v4/net"
)

// countersBackend reads per-interface byte counters through gopsutil.
// It works on every platform gopsutil supports, so it probes last in
// line for more capable backends to win.
type countersBackend struct{}

func newCountersBackend() *countersBackend {
	return &countersBackend{}
}

func (b *countersBackend) supported() bool {
	counters, err := gopsnet.IOCounters(true)
	return err == nil && len(counters) > 0
}

func (b *countersBackend) update(p *Provider) error {
	counters, err := gopsnet.IOCounters(true)
	if err != nil {
		return fmt.Errorf("failed to read interface counters: %w", err)
	}

	now := time.Now()
	seen := make(map[string]bool, len(counters))
	for _, stat := range counters {
		if stat.Name == "lo" {
			continue
		}
		seen[stat.Name] = true
		p.deviceFor(stat.Name).setCounters(stat.BytesRecv, stat.BytesSent, now)
	}
	p.dropMissing(seen)
	return nil
}
