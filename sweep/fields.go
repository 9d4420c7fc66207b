// Copyright 2024 The go-fbg Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sweep

import "math"

// Field extraction from the raw 2- and 3-word peak tuples.
//
// The device encodes a wavelength as an IEEE-754 double and overlays
// the sensor/fiber/channel identifiers on the low 16 bits of the first
// word. The identifiers occupy disjoint bit ranges:
//
//	w0[ 0: 8) sensor id
//	w0[ 8:12) fiber id
//	w0[12:16) channel id
//
// Masking the identifier bits to a fixed sentinel before the
// bits-to-float conversion recovers a stable wavelength value.

func sensorID(w0 uint32) uint8  { return uint8(w0) }
func fiberID(w0 uint32) uint8   { return uint8(w0>>8) & 0x0f }
func channelID(w0 uint32) uint8 { return uint8(w0>>12) & 0x0f }

// wavelength reassembles the 64-bit pattern from the two payload words
// (w0 low, w1 high) and converts it to the wavelength in meters.
func wavelength(w0, w1 uint32) float64 {
	lo := (w0 &^ idMask) | wvlSentinel
	return math.Float64frombits(uint64(w1)<<32 | uint64(lo))
}

// subStamp converts the third word of a time-stamped peak payload to
// seconds.
func subStamp(w2 uint32) float64 { return float64(w2) * tickSeconds }
