package replay

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/strix/internal/session"
	"firestige.xyz/strix/internal/stats"
)

func TestSyntheticRun(t *testing.T) {
	registry := session.NewRegistry()
	agg := stats.NewAggregator()

	const mediaFrames = 60
	src := NewSynthetic("013800000001", 2, mediaFrames, registry, agg)
	require.NoError(t, src.Run(context.Background()))

	// 60 frames: I-frames at 0/25/50, three wire packets each from
	// fragmentation; the other 57 are single-packet P-frames; audio rides
	// along every 5th frame.
	snap := agg.Snapshot()
	assert.Equal(t, int64(9), snap.IFrames)
	assert.Equal(t, int64(57), snap.PFrames)
	assert.Equal(t, int64(9+57+12), snap.TotalPackets)
	assert.Zero(t, snap.Resyncs)
	assert.Zero(t, snap.DecodeErrors)

	sessions := registry.Snapshot()
	require.Len(t, sessions, 1)
	assert.Equal(t, "013800000001", sessions[0].DeviceID)
	assert.Equal(t, uint8(2), sessions[0].Channel)
	assert.Equal(t, uint64(9+57+12), sessions[0].Packets)
	assert.Equal(t, session.StateClosed, sessions[0].State)
}

func TestSyntheticRunHonorsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewSynthetic("013800000001", 1, 1000, session.NewRegistry(), stats.NewAggregator())
	assert.Error(t, src.Run(ctx))
}
