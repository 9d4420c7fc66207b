// Copyright 2024 The go-fbg Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sweep

const (
	hdrSize  = 16 // header packet
	peakSize = 8  // peak payload element
	tsSize   = 12 // time-stamped peak payload element
	specSize = 8  // spectral payload element
	errSize  = 8  // error payload
	flagSize = 8  // flag packet

	dataOffset = 16 // payload byte offset signalling a normal frame

	cntMask  = 0x0fff // packet counter, low 12 bits of the info word
	typMask  = 0x7000 // sweep type, middle 3 bits
	typShift = 12
	trgMask  = 0x8000 // trigger mode, top bit
	trgShift = 15

	idMask      = 0xffff // identifier bits overlaid on the first wavelength word
	wvlSentinel = 0x7fff // replaces the identifier bits before reinterpretation

	tickSeconds = 5e-10 // sub-sweep timestamp tick

	epochOffset = 2208988800 // seconds from the 1900-01-01 device epoch to the Unix epoch

	errMissingPeak   = 500
	errMultiplePeaks = 501
)
