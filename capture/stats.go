package capture

import "sync/atomic"

// Stats is a snapshot of an Engine's lifetime counters, per spec.md §4.F.
type Stats struct {
	TotalCaptures      uint64
	SuccessfulCaptures uint64
	FailedCaptures     uint64
	BytesProduced      uint64
}

// counters holds the live atomic fields an Engine updates after every
// capture call. Grounded on capture_service.go's atomic-counter fields in
// the teacher repo, widened from its fixed capture/miss pair to the four
// fields spec.md §4.F names.
type counters struct {
	total      atomic.Uint64
	successful atomic.Uint64
	failed     atomic.Uint64
	bytes      atomic.Uint64
}

func (c *counters) recordSuccess(n int) {
	c.total.Add(1)
	c.successful.Add(1)
	c.bytes.Add(uint64(n))
}

func (c *counters) recordFailure() {
	c.total.Add(1)
	c.failed.Add(1)
}

func (c *counters) snapshot() Stats {
	return Stats{
		TotalCaptures:      c.total.Load(),
		SuccessfulCaptures: c.successful.Load(),
		FailedCaptures:     c.failed.Load(),
		BytesProduced:      c.bytes.Load(),
	}
}
