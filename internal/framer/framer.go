// Package framer reassembles JT/T 1078 frames from a TCP byte stream.
//
// TCP has no message boundaries: one read may carry a fraction of a frame,
// exactly one, or many. Each connection owns one Framer; its accumulator is
// touched only by that connection's goroutine, so no locking is needed here.
package framer

import (
	"encoding/binary"

	"firestige.xyz/strix/internal/jtt1078"
	"firestige.xyz/strix/internal/log"
)

// Framer accumulates incoming chunks and slices out complete frames.
type Framer struct {
	buf          []byte
	maxPayload   int
	resyncs      uint64
	decodeErrors uint64
	log          log.Logger
}

// New creates an empty per-connection framer with the protocol's payload
// cap of jtt1078.MaxPayloadSize.
func New() *Framer {
	return NewWithMaxPayload(jtt1078.MaxPayloadSize)
}

// NewWithMaxPayload creates a framer that rejects any header declaring a
// payload longer than limit. Compliant devices never exceed
// jtt1078.MaxPayloadSize, so a larger declared length means the stream is
// garbage that happens to start with the flag bytes; without the cap such
// a header would stall the connection waiting for up to 64 KiB that never
// arrives. A limit of zero or less falls back to the protocol cap.
func NewWithMaxPayload(limit int) *Framer {
	if limit <= 0 {
		limit = jtt1078.MaxPayloadSize
	}
	return &Framer{maxPayload: limit, log: log.GetLogger()}
}

// Feed appends one transport read to the accumulator and decodes every
// complete frame now available, in stream order.
//
// When the bytes at the buffer front do not start with the header flag the
// stream is corrupted or desynchronized. Recovery is lossy: the whole
// accumulated buffer is dropped, including any valid frame data that
// followed the corruption point in the same read. Scanning forward for the
// next flag occurrence would save that data but risks locking onto a flag
// pattern inside a payload, so it is deliberately not done.
func (f *Framer) Feed(chunk []byte) []*jtt1078.Frame {
	f.buf = append(f.buf, chunk...)

	var frames []*jtt1078.Frame
	for len(f.buf) >= jtt1078.HeaderSize {
		if flag := binary.BigEndian.Uint32(f.buf[0:4]); flag != jtt1078.HeaderFlag {
			f.resync()
			break
		}

		declared := int(binary.BigEndian.Uint16(f.buf[32:34]))
		if declared > f.maxPayload {
			f.decodeErrors++
			f.log.WithFields(map[string]interface{}{
				"declared":      declared,
				"max_payload":   f.maxPayload,
				"dropped_bytes": len(f.buf),
			}).Warn("declared payload length above cap, clearing receive buffer")
			f.buf = f.buf[:0]
			break
		}

		frameSize := jtt1078.HeaderSize + declared
		if len(f.buf) < frameSize {
			break // frame spans multiple reads, wait for more data
		}

		// Copy the frame out: the accumulator's backing array is reused
		// across Feed calls while the decoded payload may outlive them.
		raw := make([]byte, frameSize)
		copy(raw, f.buf[:frameSize])
		f.buf = f.buf[frameSize:]

		frame, err := jtt1078.ParseFrame(raw)
		if err != nil {
			// Unreachable for flag errors given the check above; anything
			// else is stream corruption and gets the same lossy recovery.
			f.decodeErrors++
			f.log.WithError(err).Warn("dropping undecodable frame")
			f.buf = f.buf[:0]
			break
		}
		frames = append(frames, frame)
	}
	return frames
}

func (f *Framer) resync() {
	f.resyncs++
	f.log.WithField("dropped_bytes", len(f.buf)).Warn("bad header flag, clearing receive buffer")
	f.buf = f.buf[:0]
}

// Buffered reports how many unconsumed bytes are waiting for the rest of a
// frame.
func (f *Framer) Buffered() int { return len(f.buf) }

// Resyncs reports how many times the buffer was dropped because the bytes
// at its front did not carry the header flag.
func (f *Framer) Resyncs() uint64 { return f.resyncs }

// DecodeErrors reports how many frames were dropped after the flag matched
// but the header failed a sanity check. Recovery is the same lossy buffer
// drop as a resync; the counters stay separate because the failure modes
// point at different problems (sync loss vs. a broken or hostile sender).
func (f *Framer) DecodeErrors() uint64 { return f.decodeErrors }
