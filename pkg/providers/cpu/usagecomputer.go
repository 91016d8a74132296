package cpu

// usageComputer converts absolute CPU time counters into percentages
// over the interval between two consecutive calls to setTicks. Counters
// can go backwards in rare cases (CPU hotplug, counter wrap), so
// negative deltas are clamped to zero.
type usageComputer struct {
	prevSystem float64
	prevUser   float64
	prevWait   float64
	prevTotal  float64

	system float64
	user   float64
	wait   float64
	total  float64
}

func clampDiff(cur, prev float64) float64 {
	if cur < prev {
		return 0
	}
	return cur - prev
}

func (u *usageComputer) setTicks(system, user, wait, idle float64) {
	systemDiff := clampDiff(system, u.prevSystem)
	userDiff := clampDiff(user, u.prevUser)
	waitDiff := clampDiff(wait, u.prevWait)

	totalTicks := system + user + wait + idle
	totalDiff := clampDiff(totalTicks, u.prevTotal)

	percentage := func(diff float64) float64 {
		if diff > 0 && totalDiff > 0 {
			return 100.0 * diff / totalDiff
		}
		return 0.0
	}

	u.system = percentage(systemDiff)
	u.user = percentage(userDiff)
	u.wait = percentage(waitDiff)
	u.total = percentage(systemDiff + userDiff + waitDiff)

	u.prevTotal = totalTicks
	u.prevSystem = system
	u.prevUser = user
	u.prevWait = wait
}
