// Package jtt1078 defines sentinel errors for protocol decoding.
package jtt1078

import "errors"

var (
	// Frame decoding errors
	ErrFrameTooShort = errors.New("strix: frame buffer shorter than fixed header")
	ErrBadMagic      = errors.New("strix: bad header flag")
)
