package replay

import (
	"context"
	"time"

	"firestige.xyz/strix/internal/framer"
	"firestige.xyz/strix/internal/jtt1078"
	"firestige.xyz/strix/internal/log"
	"firestige.xyz/strix/internal/session"
	"firestige.xyz/strix/internal/stats"
)

// Traffic shape of the generated stream. One I-frame per GOP, sized to
// exercise First/Middle/Last fragmentation, with an audio packet mixed in
// every few frames the way in-vehicle encoders interleave them.
const (
	syntheticGOP         = 25
	syntheticIFrameBytes = 3 * jtt1078.MaxPayloadSize
	syntheticPFrameBytes = 400
	syntheticAudioBytes  = 320
	syntheticAudioEvery  = 5
)

// Synthetic drives generated frames through the receive pipeline without a
// device or a capture file: encoder output goes straight into a framer and
// from there into the registry and aggregator, the path live bytes take.
// Used to smoke-test a deployment before any vehicle connects.
type Synthetic struct {
	sim     string
	channel uint8
	frames  int

	registry *session.Registry
	agg      *stats.Aggregator
	log      log.Logger
}

func NewSynthetic(sim string, channel uint8, frames int, registry *session.Registry, agg *stats.Aggregator) *Synthetic {
	return &Synthetic{
		sim:      sim,
		channel:  channel,
		frames:   frames,
		registry: registry,
		agg:      agg,
		log:      log.GetLogger(),
	}
}

// Run encodes and feeds the configured number of media frames, then closes
// the flow. Returns early if ctx is cancelled.
func (s *Synthetic) Run(ctx context.Context) error {
	enc := jtt1078.NewEncoder(s.sim, s.channel, jtt1078.PayloadTypeH264)
	fr := framer.New()

	key := "synthetic/" + s.sim
	s.registry.Register(key)
	defer s.registry.SetState(key, session.StateClosed)

	start := time.Now()
	for i := 0; i < s.frames; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var packets [][]byte
		if i%syntheticGOP == 0 {
			packets = enc.EncodeVideoFrame(jtt1078.DataTypeVideoI, fill(syntheticIFrameBytes))
		} else {
			packets = enc.EncodeVideoFrame(jtt1078.DataTypeVideoP, fill(syntheticPFrameBytes))
		}
		if i%syntheticAudioEvery == 0 {
			packets = append(packets, enc.EncodeAudioFrame(fill(syntheticAudioBytes))...)
		}

		for _, pkt := range packets {
			for _, frame := range fr.Feed(pkt) {
				s.registry.OnFrame(key, frame, frame.Size())
				s.agg.Record(frame, frame.Size())
			}
		}
	}

	s.log.Infof("synthetic run done: %d media frames in %s", s.frames, time.Since(start).Truncate(time.Millisecond))
	return nil
}

// fill builds a payload with a repeating byte pattern so decoded frames are
// recognizable in verbose logs.
func fill(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}
