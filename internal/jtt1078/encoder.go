package jtt1078

import (
	"encoding/binary"
	"time"
)

// Well-known dynamic RTP payload types used by in-vehicle encoders.
const (
	PayloadTypeH264 = 96
	PayloadTypeH265 = 98
)

// Encoder builds wire frames for one device channel. It tracks the packet
// sequence, the relative millisecond clock and the inter-frame intervals
// the header carries, and splits media frames larger than MaxPayloadSize
// into First/Middle/Last subpackages.
//
// Encoder is not safe for concurrent use; a device channel owns exactly one.
type Encoder struct {
	sim         [6]byte
	channel     uint8
	payloadType uint8

	seq uint16

	startMs     uint64
	lastTsMs    uint64
	lastITsMs   uint64
	frameIvalMs uint16
	iFrameIval  uint16

	now func() time.Time
}

// NewEncoder creates an encoder for the given SIM number (up to 12 decimal
// digits), logical channel and RTP payload type.
func NewEncoder(sim string, channel uint8, payloadType uint8) *Encoder {
	return &Encoder{
		sim:         EncodeBCD(sim),
		channel:     channel,
		payloadType: payloadType,
		startMs:     uint64(time.Now().UnixMilli()),
		now:         time.Now,
	}
}

// EncodeVideoFrame packages one complete video frame, fragmenting as needed.
// Each returned slice is one wire frame ready to be written to the transport.
func (e *Encoder) EncodeVideoFrame(dataType DataType, data []byte) [][]byte {
	return e.encode(dataType, data)
}

// EncodeAudioFrame packages one audio frame. Audio rarely exceeds a single
// packet but follows the same fragmentation rules when it does.
func (e *Encoder) EncodeAudioFrame(data []byte) [][]byte {
	return e.encode(DataTypeAudio, data)
}

func (e *Encoder) encode(dataType DataType, data []byte) [][]byte {
	total := (len(data) + MaxPayloadSize - 1) / MaxPayloadSize
	if total == 0 {
		total = 1
	}

	packets := make([][]byte, 0, total)
	for i := 0; i < total; i++ {
		chunk := data[i*MaxPayloadSize : min((i+1)*MaxPayloadSize, len(data))]

		var sub Subpackage
		switch {
		case total == 1:
			sub = SubpackageAtomic
		case i == 0:
			sub = SubpackageFirst
		case i == total-1:
			sub = SubpackageLast
		default:
			sub = SubpackageMiddle
		}

		packets = append(packets, e.buildPacket(dataType, sub, chunk))
	}
	return packets
}

// buildPacket writes one frame. The marker bit flags the end of a media
// frame, so it is set on Atomic and Last subpackages only.
func (e *Encoder) buildPacket(dataType DataType, sub Subpackage, payload []byte) []byte {
	buf := make([]byte, HeaderSize+len(payload))

	binary.BigEndian.PutUint32(buf[0:4], HeaderFlag)

	buf[4] = 2 << 6 // V=2, P=0, X=0, CC=0

	buf[5] = e.payloadType & 0x7F
	if sub == SubpackageAtomic || sub == SubpackageLast {
		buf[5] |= 0x80
	}

	binary.BigEndian.PutUint16(buf[6:8], e.seq)
	e.seq++

	copy(buf[12:18], e.sim[:])
	buf[18] = e.channel
	buf[19] = uint8(sub)<<4 | uint8(dataType)&0x0F

	ts := e.relativeMs()
	binary.BigEndian.PutUint64(buf[20:28], ts)

	if e.lastTsMs > 0 {
		e.frameIvalMs = uint16(ts - e.lastTsMs)
	}
	if dataType == DataTypeVideoI && e.lastITsMs > 0 {
		e.iFrameIval = uint16(ts - e.lastITsMs)
	}
	e.lastTsMs = ts
	if dataType == DataTypeVideoI {
		e.lastITsMs = ts
	}

	binary.BigEndian.PutUint16(buf[28:30], e.iFrameIval)
	binary.BigEndian.PutUint16(buf[30:32], e.frameIvalMs)
	binary.BigEndian.PutUint16(buf[32:34], uint16(len(payload)))

	copy(buf[HeaderSize:], payload)
	return buf
}

func (e *Encoder) relativeMs() uint64 {
	return uint64(e.now().UnixMilli()) - e.startMs
}
