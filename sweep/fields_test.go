// Copyright 2024 The go-fbg Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sweep

import (
	"math"
	"math/rand"
	"testing"
)

func TestFieldRanges(t *testing.T) {
	rnd := rand.New(rand.NewSource(1234))
	for i := 0; i < 10000; i++ {
		w0 := rnd.Uint32()
		if got := sensorID(w0); int(got) > 255 {
			t.Fatalf("w0=0x%08x: sensor id out of range: %d", w0, got)
		}
		if got := fiberID(w0); got > 15 {
			t.Fatalf("w0=0x%08x: fiber id out of range: %d", w0, got)
		}
		if got := channelID(w0); got > 15 {
			t.Fatalf("w0=0x%08x: channel id out of range: %d", w0, got)
		}
	}
}

func TestFieldExtraction(t *testing.T) {
	// the identifiers occupy disjoint bit ranges of w0.
	for ch := uint32(0); ch < 16; ch++ {
		for fib := uint32(0); fib < 16; fib++ {
			for sns := uint32(0); sns < 256; sns += 17 {
				w0 := ch<<12 | fib<<8 | sns | 0xcafe0000
				if got, want := channelID(w0), uint8(ch); got != want {
					t.Fatalf("w0=0x%08x: invalid channel id: got=%d, want=%d", w0, got, want)
				}
				if got, want := fiberID(w0), uint8(fib); got != want {
					t.Fatalf("w0=0x%08x: invalid fiber id: got=%d, want=%d", w0, got, want)
				}
				if got, want := sensorID(w0), uint8(sns); got != want {
					t.Fatalf("w0=0x%08x: invalid sensor id: got=%d, want=%d", w0, got, want)
				}
			}
		}
	}
}

func TestWavelengthMasking(t *testing.T) {
	// the id bits must not leak into the wavelength: any two encodings
	// with identical upper 16 bits of w0 and identical w1 decode to the
	// same value.
	const (
		hi = 0x3a2b0000
		w1 = 0x3e214b6d
	)
	want := wavelength(hi, w1)
	for _, ids := range []uint32{0x0000, 0x0001, 0x1234, 0x7fff, 0xffff} {
		got := wavelength(hi|ids, w1)
		if got != want {
			t.Fatalf("ids=0x%04x: wavelength not invariant: got=%v, want=%v", ids, got, want)
		}
	}

	if got, want := want, math.Float64frombits(uint64(w1)<<32|uint64(hi|0x7fff)); got != want {
		t.Fatalf("invalid wavelength bit pattern: got=%v, want=%v", got, want)
	}
}

func TestSubStamp(t *testing.T) {
	for _, tc := range []struct {
		w2   uint32
		want float64
	}{
		{w2: 0, want: 0},
		{w2: 2, want: 1e-9},
		{w2: 2000000000, want: 1.0},
	} {
		if got := subStamp(tc.w2); got != tc.want {
			t.Fatalf("w2=%d: invalid sub-timestamp: got=%v, want=%v", tc.w2, got, tc.want)
		}
	}
}
