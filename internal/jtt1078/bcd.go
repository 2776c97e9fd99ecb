package jtt1078

import "strconv"

// DecodeBCD converts the 6-byte BCD SIM field into its 12-digit string,
// high nibble first. The caller guarantees len(b) == 6.
//
// Nibble values above 9 are undefined by the protocol; they are rendered
// as their numeric value rather than rejected, so a hostile device can
// never make the decoder fail here.
func DecodeBCD(b []byte) string {
	s := make([]byte, 0, len(b)*2)
	for _, c := range b {
		s = strconv.AppendUint(s, uint64(c>>4), 10)
		s = strconv.AppendUint(s, uint64(c&0x0F), 10)
	}
	return string(s)
}

// EncodeBCD packs up to 12 decimal digits into the 6-byte BCD SIM field.
// Shorter inputs and non-digit characters are encoded as zero.
func EncodeBCD(sim string) [6]byte {
	var out [6]byte
	for i := 0; i < 6; i++ {
		out[i] = digitAt(sim, i*2)<<4 | digitAt(sim, i*2+1)
	}
	return out
}

func digitAt(s string, i int) byte {
	if i >= len(s) || s[i] < '0' || s[i] > '9' {
		return 0
	}
	return s[i] - '0'
}
