package httpmsg

import (
	"sync/atomic"
	"time"
)

// GateStats contains statistics about an admission gate.
//
// For Prometheus integration, expose these as:
//   - Gauges: Capacity, Active
//   - Counters: AcquireCount, AcquireWaitCount, AcquireErrors
//   - Histogram: AcquireWaitDuration (use AcquireWaitCount and AcquireWaitTimeNs to calculate)
type GateStats struct {
	AcquireCount      uint64 // Total acquire attempts
	AcquireWaitCount  uint64 // Acquires that had to wait for a release
	AcquireErrors     uint64 // Acquires that gave up (context done, gate closed)
	AcquireWaitTimeNs uint64 // Total nanoseconds spent waiting

	Capacity int32 // Maximum number of tokens held at once
	Active   int32 // Tokens currently held
}

// ServerStats contains statistics about a server.
// All fields are safe for concurrent access.
type ServerStats struct {
	Accepted     uint64 // Connections accepted
	AcceptErrors uint64 // Failed accepts
	Responses    uint64 // Responses fully written
	Failed       uint64 // Workers that ended without a complete response
	Status200    uint64
	Status404    uint64
	Status405    uint64
	Status505    uint64

	ActiveWorkers int32 // Workers currently running
	PeakWorkers   int32 // Highest ActiveWorkers ever observed

	Gate GateStats
}

// gateStatsCollector provides internal methods for updating gate stats.
// Not exported - gates update their own stats.
type gateStatsCollector struct {
	stats *GateStats
}

func newGateStatsCollector(capacity int) *gateStatsCollector {
	return &gateStatsCollector{
		stats: &GateStats{Capacity: int32(capacity)},
	}
}

func (c *gateStatsCollector) recordAcquire() {
	atomic.AddUint64(&c.stats.AcquireCount, 1)
}

func (c *gateStatsCollector) recordAcquireWait(duration time.Duration) {
	atomic.AddUint64(&c.stats.AcquireWaitCount, 1)
	atomic.AddUint64(&c.stats.AcquireWaitTimeNs, uint64(duration.Nanoseconds()))
}

func (c *gateStatsCollector) recordAcquireError() {
	atomic.AddUint64(&c.stats.AcquireErrors, 1)
}

func (c *gateStatsCollector) recordActivate() {
	atomic.AddInt32(&c.stats.Active, 1)
}

func (c *gateStatsCollector) recordRelease() {
	atomic.AddInt32(&c.stats.Active, -1)
}

func (c *gateStatsCollector) snapshot() GateStats {
	return GateStats{
		Capacity:          c.stats.Capacity,
		Active:            atomic.LoadInt32(&c.stats.Active),
		AcquireCount:      atomic.LoadUint64(&c.stats.AcquireCount),
		AcquireWaitCount:  atomic.LoadUint64(&c.stats.AcquireWaitCount),
		AcquireErrors:     atomic.LoadUint64(&c.stats.AcquireErrors),
		AcquireWaitTimeNs: atomic.LoadUint64(&c.stats.AcquireWaitTimeNs),
	}
}

// serverStatsCollector provides internal methods for updating server stats.
// Not exported - server updates its own stats.
type serverStatsCollector struct {
	stats *ServerStats
}

func newServerStatsCollector() *serverStatsCollector {
	return &serverStatsCollector{
		stats: &ServerStats{},
	}
}

func (c *serverStatsCollector) recordAccept() {
	atomic.AddUint64(&c.stats.Accepted, 1)
}

func (c *serverStatsCollector) recordAcceptError() {
	atomic.AddUint64(&c.stats.AcceptErrors, 1)
}

func (c *serverStatsCollector) recordFailure() {
	atomic.AddUint64(&c.stats.Failed, 1)
}

func (c *serverStatsCollector) recordResponse(code int) {
	atomic.AddUint64(&c.stats.Responses, 1)
	switch code {
	case 200:
		atomic.AddUint64(&c.stats.Status200, 1)
	case 404:
		atomic.AddUint64(&c.stats.Status404, 1)
	case 405:
		atomic.AddUint64(&c.stats.Status405, 1)
	case 505:
		atomic.AddUint64(&c.stats.Status505, 1)
	}
}

func (c *serverStatsCollector) recordWorkerStart() {
	active := atomic.AddInt32(&c.stats.ActiveWorkers, 1)
	for {
		peak := atomic.LoadInt32(&c.stats.PeakWorkers)
		if active <= peak || atomic.CompareAndSwapInt32(&c.stats.PeakWorkers, peak, active) {
			return
		}
	}
}

func (c *serverStatsCollector) recordWorkerDone() {
	atomic.AddInt32(&c.stats.ActiveWorkers, -1)
}

func (c *serverStatsCollector) snapshot() ServerStats {
	return ServerStats{
		Accepted:      atomic.LoadUint64(&c.stats.Accepted),
		AcceptErrors:  atomic.LoadUint64(&c.stats.AcceptErrors),
		Responses:     atomic.LoadUint64(&c.stats.Responses),
		Failed:        atomic.LoadUint64(&c.stats.Failed),
		Status200:     atomic.LoadUint64(&c.stats.Status200),
		Status404:     atomic.LoadUint64(&c.stats.Status404),
		Status405:     atomic.LoadUint64(&c.stats.Status405),
		Status505:     atomic.LoadUint64(&c.stats.Status505),
		ActiveWorkers: atomic.LoadInt32(&c.stats.ActiveWorkers),
		PeakWorkers:   atomic.LoadInt32(&c.stats.PeakWorkers),
	}
}
