package server

import "sync/atomic"

// Metrics tracks runtime counters for the monitoring surface.
type Metrics struct {
	TickCount       int64
	TotalTickNs     int64
	InputsApplied   int64
	JoinsApplied    int64
	MalformedFrames int64
	InboundDropped  int64
	SnapshotsSent   int64
	WriteFailures   int64
}

func (m *Metrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

func (m *Metrics) IncInputsApplied()   { atomic.AddInt64(&m.InputsApplied, 1) }
func (m *Metrics) IncJoinsApplied()    { atomic.AddInt64(&m.JoinsApplied, 1) }
func (m *Metrics) IncMalformedFrames() { atomic.AddInt64(&m.MalformedFrames, 1) }
func (m *Metrics) IncInboundDropped()  { atomic.AddInt64(&m.InboundDropped, 1) }
func (m *Metrics) IncSnapshotsSent()   { atomic.AddInt64(&m.SnapshotsSent, 1) }
func (m *Metrics) IncWriteFailures()   { atomic.AddInt64(&m.WriteFailures, 1) }

// Snapshot returns a read-only copy for HTTP output.
func (m *Metrics) Snapshot() map[string]any {
	ticks := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if ticks > 0 {
		avgMs = float64(total) / float64(ticks) / 1e6
	}
	return map[string]any{
		"tick_count":       ticks,
		"avg_tick_ms":      avgMs,
		"inputs_applied":   atomic.LoadInt64(&m.InputsApplied),
		"joins_applied":    atomic.LoadInt64(&m.JoinsApplied),
		"malformed_frames": atomic.LoadInt64(&m.MalformedFrames),
		"inbound_dropped":  atomic.LoadInt64(&m.InboundDropped),
		"snapshots_sent":   atomic.LoadInt64(&m.SnapshotsSent),
		"write_failures":   atomic.LoadInt64(&m.WriteFailures),
	}
}
