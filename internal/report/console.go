// Package report prints periodic receive statistics to the console.
package report

import (
	"context"
	"fmt"
	"time"

	"firestige.xyz/strix/internal/session"
	"firestige.xyz/strix/internal/stats"
)

// Reporter renders the aggregator and registry snapshots on a fixed
// interval, and once more on shutdown.
type Reporter struct {
	agg      *stats.Aggregator
	registry *session.Registry
	interval time.Duration
}

func NewReporter(agg *stats.Aggregator, registry *session.Registry, interval time.Duration) *Reporter {
	return &Reporter{agg: agg, registry: registry, interval: interval}
}

// Run blocks until ctx is cancelled, then prints the final statistics.
func (r *Reporter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.printStats()
		case <-ctx.Done():
			r.PrintFinal()
			return
		}
	}
}

func (r *Reporter) printStats() {
	snap := r.agg.Snapshot()

	fmt.Println("============================================================")
	fmt.Printf("Statistics (runtime: %s)\n", snap.Uptime.Truncate(time.Second))
	fmt.Println("============================================================")
	fmt.Printf("  Total Packets:  %d\n", snap.TotalPackets)
	fmt.Printf("  Total Bytes:    %.2f MB\n", float64(snap.TotalBytes)/1024/1024)
	fmt.Printf("  I-frames:       %d\n", snap.IFrames)
	fmt.Printf("  P-frames:       %d\n", snap.PFrames)
	fmt.Printf("  Resyncs:        %d\n", snap.Resyncs)
	fmt.Printf("  Decode Errors:  %d\n", snap.DecodeErrors)

	if secs := snap.Uptime.Seconds(); snap.TotalPackets > 0 && secs > 0 {
		fmt.Printf("  Data Rate:      %.2f KB/s\n", float64(snap.TotalBytes)/secs/1024)
	}

	sessions := r.registry.Snapshot()
	fmt.Printf("\n  Active Connections: %d\n", len(sessions))
	for _, s := range sessions {
		fmt.Printf("    %s: device=%s ch=%d packets=%d state=%s\n",
			s.RemoteAddr, s.DeviceID, s.Channel, s.Packets, s.State)
	}
	fmt.Println("============================================================")
}

// PrintFinal renders the closing summary. Safe to call at any time; the
// aggregator snapshot is consistent even during shutdown.
func (r *Reporter) PrintFinal() {
	snap := r.agg.Snapshot()

	fmt.Println("============================================================")
	fmt.Println("Final Statistics")
	fmt.Println("============================================================")
	fmt.Printf("  Total Packets:  %d\n", snap.TotalPackets)
	fmt.Printf("  Total Bytes:    %.2f MB\n", float64(snap.TotalBytes)/1024/1024)
	fmt.Printf("  I-frames:       %d\n", snap.IFrames)
	fmt.Printf("  P-frames:       %d\n", snap.PFrames)
	fmt.Printf("  Resyncs:        %d\n", snap.Resyncs)
	fmt.Printf("  Decode Errors:  %d\n", snap.DecodeErrors)
	fmt.Println("============================================================")
}
