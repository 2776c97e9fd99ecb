// Package jtt1078 implements the JT/T 1078-2016 RTP-over-TCP media frame
// format used by vehicular telematics devices.
//
// Every frame starts with a 34-byte fixed header:
//
//	| Offset | Size | Field                                     |
//	|--------|------|-------------------------------------------|
//	| 0      | 4    | header flag 0x30316364 ("01cd")           |
//	| 4      | 1    | V(2) P(1) X(1) CC(4)                      |
//	| 5      | 1    | M(1) PT(7)                                |
//	| 6      | 2    | packet sequence                           |
//	| 8      | 4    | reserved                                  |
//	| 12     | 6    | SIM number, BCD                           |
//	| 18     | 1    | logical channel                           |
//	| 19     | 1    | subpackage(bits 5:4), data type(bits 3:0) |
//	| 20     | 8    | timestamp, milliseconds                   |
//	| 28     | 2    | interval since last I-frame, ms           |
//	| 30     | 2    | interval since last frame, ms             |
//	| 32     | 2    | payload length N                          |
//	| 34     | N    | payload                                   |
//
// All multi-byte integers are big-endian.
package jtt1078

import "fmt"

// HeaderFlag is the fixed frame marker, ASCII "01cd".
const HeaderFlag uint32 = 0x30316364

const (
	// HeaderSize is the fixed header length in bytes.
	HeaderSize = 34

	// MaxPacketSize bounds header plus payload on the device side so a
	// frame fits comfortably in one TCP segment.
	MaxPacketSize = 950

	// MaxPayloadSize is the largest payload a single frame may carry.
	MaxPayloadSize = MaxPacketSize - HeaderSize
)

// DataType identifies the media content of a frame (header byte 19, low nibble).
type DataType uint8

const (
	DataTypeVideoI      DataType = 0x00 // video I-frame
	DataTypeVideoP      DataType = 0x01 // video P-frame
	DataTypeVideoB      DataType = 0x02 // video B-frame
	DataTypeAudio       DataType = 0x03 // audio frame
	DataTypeTransparent DataType = 0x04 // transparent passthrough data
)

// String returns a human readable name. Values outside the defined range
// are kept as-is and rendered with their raw number.
func (d DataType) String() string {
	switch d {
	case DataTypeVideoI:
		return "Video I-frame"
	case DataTypeVideoP:
		return "Video P-frame"
	case DataTypeVideoB:
		return "Video B-frame"
	case DataTypeAudio:
		return "Audio frame"
	case DataTypeTransparent:
		return "Transparent data"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(d))
	}
}

// Subpackage marks whether a frame is a complete unit or part of a split
// media frame (header byte 19, bits 5:4).
type Subpackage uint8

const (
	SubpackageAtomic Subpackage = 0x00
	SubpackageFirst  Subpackage = 0x01
	SubpackageLast   Subpackage = 0x02
	SubpackageMiddle Subpackage = 0x03
)

func (s Subpackage) String() string {
	switch s {
	case SubpackageAtomic:
		return "Atomic"
	case SubpackageFirst:
		return "First"
	case SubpackageLast:
		return "Last"
	case SubpackageMiddle:
		return "Middle"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(s))
	}
}

// Frame is one decoded protocol unit. Frames are ephemeral: they are
// consumed right after decoding and never persisted.
type Frame struct {
	// RTP-like flag byte (offset 4)
	Version   uint8
	Padding   bool
	Extension bool
	CSRCCount uint8

	// Marker / payload type byte (offset 5)
	Marker      bool
	PayloadType uint8

	Sequence uint16

	// DeviceID is the SIM number decoded from BCD, always 12 ASCII digits.
	DeviceID string
	Channel  uint8

	DataType   DataType
	Subpackage Subpackage

	TimestampMs uint64

	LastIFrameIntervalMs uint16
	LastFrameIntervalMs  uint16

	// DeclaredLength is the payload length announced in the header.
	// It matches len(Payload) unless the framing layer sliced a wrong
	// amount, which is a caller bug rather than malformed wire input.
	DeclaredLength uint16
	Payload        []byte
}

// Size returns the full wire length of the frame, header included.
func (f *Frame) Size() int {
	return HeaderSize + len(f.Payload)
}
