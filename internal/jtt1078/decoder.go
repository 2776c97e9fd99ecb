package jtt1078

import (
	"encoding/binary"
	"fmt"

	"firestige.xyz/strix/internal/log"
)

// ParseFrame decodes one complete frame buffer.
//
// The buffer is expected to hold exactly one frame (header plus payload) as
// sliced by the framing layer. A declared/actual payload length mismatch is
// therefore a framing bug, not malformed wire input: it is logged and the
// frame is still returned with the payload bytes actually present.
func ParseFrame(buf []byte) (*Frame, error) {
	if len(buf) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooShort, len(buf))
	}

	if flag := binary.BigEndian.Uint32(buf[0:4]); flag != HeaderFlag {
		return nil, fmt.Errorf("%w: 0x%08X", ErrBadMagic, flag)
	}

	f := &Frame{}

	// Byte 4: V(7:6) P(5) X(4) CC(3:0)
	f.Version = (buf[4] >> 6) & 0x03
	f.Padding = (buf[4]>>5)&0x01 == 1
	f.Extension = (buf[4]>>4)&0x01 == 1
	f.CSRCCount = buf[4] & 0x0F

	// Byte 5: M(7) PT(6:0)
	f.Marker = (buf[5]>>7)&0x01 == 1
	f.PayloadType = buf[5] & 0x7F

	f.Sequence = binary.BigEndian.Uint16(buf[6:8])

	// Bytes 8–11 are reserved and not decoded.

	f.DeviceID = DecodeBCD(buf[12:18])
	f.Channel = buf[18]

	// Byte 19: subpackage(5:4), data type(3:0)
	f.DataType = DataType(buf[19] & 0x0F)
	f.Subpackage = Subpackage((buf[19] >> 4) & 0x03)

	f.TimestampMs = binary.BigEndian.Uint64(buf[20:28])
	f.LastIFrameIntervalMs = binary.BigEndian.Uint16(buf[28:30])
	f.LastFrameIntervalMs = binary.BigEndian.Uint16(buf[30:32])
	f.DeclaredLength = binary.BigEndian.Uint16(buf[32:34])

	f.Payload = buf[HeaderSize:]

	if len(f.Payload) != int(f.DeclaredLength) {
		log.GetLogger().WithFields(map[string]interface{}{
			"declared": f.DeclaredLength,
			"actual":   len(f.Payload),
			"seq":      f.Sequence,
		}).Warn("payload length mismatch, keeping actual payload")
	}

	return f, nil
}
