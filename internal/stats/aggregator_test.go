package stats

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"firestige.xyz/strix/internal/jtt1078"
)

func frameOf(dt jtt1078.DataType) *jtt1078.Frame {
	return &jtt1078.Frame{DataType: dt}
}

func TestRecordPerTypeCounters(t *testing.T) {
	a := NewAggregator()

	a.Record(frameOf(jtt1078.DataTypeVideoI), 100)
	a.Record(frameOf(jtt1078.DataTypeVideoP), 60)
	a.Record(frameOf(jtt1078.DataTypeVideoP), 60)
	a.Record(frameOf(jtt1078.DataTypeAudio), 40)
	a.Record(frameOf(jtt1078.DataTypeTransparent), 10)
	a.Record(frameOf(jtt1078.DataType(9)), 10) // unknown type still counts

	snap := a.Snapshot()
	assert.Equal(t, int64(6), snap.TotalPackets)
	assert.Equal(t, int64(280), snap.TotalBytes)
	assert.Equal(t, int64(1), snap.IFrames)
	assert.Equal(t, int64(2), snap.PFrames)

	// Totals always cover every decoded frame: I + P + everything else.
	others := snap.TotalPackets - snap.IFrames - snap.PFrames
	assert.Equal(t, int64(3), others)
}

func TestRecordResyncs(t *testing.T) {
	a := NewAggregator()
	a.RecordResync()
	a.RecordResync()

	snap := a.Snapshot()
	assert.Equal(t, int64(2), snap.Resyncs)
	assert.Equal(t, int64(0), snap.TotalPackets)
}

// Decode errors are counted apart from resyncs: the two point at different
// stream problems even though recovery looks the same.
func TestRecordDecodeErrors(t *testing.T) {
	a := NewAggregator()
	a.RecordDecodeError()
	a.RecordResync()

	snap := a.Snapshot()
	assert.Equal(t, int64(1), snap.DecodeErrors)
	assert.Equal(t, int64(1), snap.Resyncs)
	assert.Equal(t, int64(0), snap.TotalPackets)
}

func TestSnapshotDuringConcurrentRecords(t *testing.T) {
	a := NewAggregator()

	const workers = 8
	const perWorker = 2000

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				switch i % 3 {
				case 0:
					a.Record(frameOf(jtt1078.DataTypeVideoI), 10)
				case 1:
					a.Record(frameOf(jtt1078.DataTypeVideoP), 10)
				default:
					a.Record(frameOf(jtt1078.DataTypeAudio), 10)
				}
			}
		}()
	}
	// Concurrent reads must be safe at any point, including mid-run.
	for i := 0; i < 50; i++ {
		a.Snapshot()
	}
	wg.Wait()

	snap := a.Snapshot()
	assert.Equal(t, int64(workers*perWorker), snap.TotalPackets)
	assert.Equal(t, int64(workers*perWorker*10), snap.TotalBytes)
	// 2000 iterations split i%3: 667 I-frames and 667 P-frames per worker.
	assert.Equal(t, int64(workers*667), snap.IFrames)
	assert.Equal(t, int64(workers*667), snap.PFrames)
}
