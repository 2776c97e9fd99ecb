// Package stats aggregates process-wide receive counters.
package stats

import (
	"sync/atomic"
	"time"

	"firestige.xyz/strix/internal/jtt1078"
)

// Aggregator counts decoded frames across all connections. It is an
// explicitly constructed instance handed to collaborators, never ambient
// state, so the pipeline stays testable in isolation.
//
// Counters are atomics: every connection goroutine writes concurrently and
// the reporter reads at any time, including during shutdown.
type Aggregator struct {
	startTime time.Time

	totalPackets atomic.Int64
	totalBytes   atomic.Int64
	iFrames      atomic.Int64
	pFrames      atomic.Int64

	resyncs      atomic.Int64
	decodeErrors atomic.Int64
}

func NewAggregator() *Aggregator {
	return &Aggregator{startTime: time.Now()}
}

// Record accounts one decoded frame of frameLen wire bytes. I- and P-frames
// get dedicated counters; every other data type only contributes to the
// totals.
func (a *Aggregator) Record(frame *jtt1078.Frame, frameLen int) {
	a.totalPackets.Add(1)
	a.totalBytes.Add(int64(frameLen))

	switch frame.DataType {
	case jtt1078.DataTypeVideoI:
		a.iFrames.Add(1)
	case jtt1078.DataTypeVideoP:
		a.pFrames.Add(1)
	}
}

// RecordResync counts one lossy buffer drop after a flag mismatch.
func (a *Aggregator) RecordResync() {
	a.resyncs.Add(1)
}

// RecordDecodeError counts one frame dropped by a header sanity check
// after the flag matched.
func (a *Aggregator) RecordDecodeError() {
	a.decodeErrors.Add(1)
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	StartTime    time.Time
	Uptime       time.Duration
	TotalPackets int64
	TotalBytes   int64
	IFrames      int64
	PFrames      int64
	Resyncs      int64
	DecodeErrors int64
}

// Snapshot reads every counter. Values are individually consistent, which
// is all the reporter needs.
func (a *Aggregator) Snapshot() Snapshot {
	return Snapshot{
		StartTime:    a.startTime,
		Uptime:       time.Since(a.startTime),
		TotalPackets: a.totalPackets.Load(),
		TotalBytes:   a.totalBytes.Load(),
		IFrames:      a.iFrames.Load(),
		PFrames:      a.pFrames.Load(),
		Resyncs:      a.resyncs.Load(),
		DecodeErrors: a.decodeErrors.Load(),
	}
}
