package cpu

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestUsageComputerFirstSampleSeedsOnly(t *testing.T) {
	var u usageComputer
	u.setTicks(100, 200, 50, 650)

	// The very first sample has no previous state to diff against;
	// diffs equal the raw counters and total usage reflects them.
	if u.total == 0 {
		t.Error("total usage zero on first sample with non-zero counters")
	}
}

func TestUsageComputerDeltas(t *testing.T) {
	var u usageComputer
	u.setTicks(100, 200, 50, 650)

	// +10 system, +20 user, +10 wait, +60 idle over a 100-tick window.
	u.setTicks(110, 220, 60, 710)

	if !almostEqual(u.system, 10) {
		t.Errorf("system = %v, want 10", u.system)
	}
	if !almostEqual(u.user, 20) {
		t.Errorf("user = %v, want 20", u.user)
	}
	if !almostEqual(u.wait, 10) {
		t.Errorf("wait = %v, want 10", u.wait)
	}
	if !almostEqual(u.total, 40) {
		t.Errorf("total = %v, want 40", u.total)
	}
}

func TestUsageComputerIdleWindow(t *testing.T) {
	var u usageComputer
	u.setTicks(100, 200, 50, 650)
	u.setTicks(100, 200, 50, 750)

	if u.total != 0 || u.system != 0 || u.user != 0 || u.wait != 0 {
		t.Errorf("usages = %v/%v/%v/%v, want all 0 in an idle window",
			u.total, u.system, u.user, u.wait)
	}
}

func TestUsageComputerClampsBackwardsCounters(t *testing.T) {
	var u usageComputer
	u.setTicks(100, 200, 50, 650)

	// Counters can go backwards, e.g. after CPU hotplug. Negative
	// deltas must clamp to zero instead of producing garbage.
	u.setTicks(90, 220, 50, 740)

	if u.system != 0 {
		t.Errorf("system = %v, want 0 for a backwards counter", u.system)
	}
	if !almostEqual(u.user, 20) {
		t.Errorf("user = %v, want 20", u.user)
	}
}
