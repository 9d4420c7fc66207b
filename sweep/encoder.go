// Copyright 2024 The go-fbg Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sweep

import (
	"encoding/binary"
	"io"

	"golang.org/x/xerrors"
)

// Encoder writes I4 frames to an output stream, in the device wire
// format. It is the write-side mirror of Decoder, used by tools and
// tests to produce streams the device would emit.
type Encoder struct {
	w   io.Writer
	buf []byte
	err error
}

// NewEncoder returns a new Encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		w:   w,
		buf: make([]byte, 8),
	}
}

// Encode writes one frame to the stream: header, payload records and
// flag trailer. The header data offset and length must be consistent
// with the records (as they are after a Decode).
func (enc *Encoder) Encode(swp *Sweep) error {
	if swp == nil {
		return nil
	}

	err := enc.check(swp)
	if err != nil {
		return err
	}

	hdr := swp.Header
	info := hdr.Counter&cntMask |
		uint16(hdr.Type)<<typShift&typMask |
		uint16(hdr.Trigger)<<trgShift

	enc.writeU16(info)
	enc.writeU16(hdr.Offset)
	enc.writeU32(hdr.Length)
	enc.writeU64(hdr.Stamp)
	if enc.err != nil {
		return xerrors.Errorf("sweep: could not write packet header: %w", enc.err)
	}

	for _, rec := range swp.Records {
		switch rec := rec.(type) {
		case Peak:
			enc.writeU32(rec.W0)
			enc.writeU32(rec.W1)
		case TSPeak:
			enc.writeU32(rec.W0)
			enc.writeU32(rec.W1)
			enc.writeU32(rec.TS)
		case SpectralInfo:
			enc.writeU32(rec.W0)
			enc.writeU32(rec.Count)
		case SpectralData:
			for _, amp := range rec.Amps {
				enc.writeU16(uint16(amp))
			}
		case DeviceError:
			enc.writeU32(rec.ID)
			enc.writeU32(rec.Descr)
		default:
			return xerrors.Errorf("sweep: invalid payload record type %T", rec)
		}
		if enc.err != nil {
			return xerrors.Errorf("sweep: could not write payload: %w", enc.err)
		}
	}

	enc.writeU32(swp.Flag.Counter)
	enc.writeU32(swp.Flag.Reserved)
	if enc.err != nil {
		return xerrors.Errorf("sweep: could not write flag packet: %w", enc.err)
	}

	return nil
}

// check validates that the header framing matches the payload records.
func (enc *Encoder) check(swp *Sweep) error {
	if swp.Header.Offset != dataOffset {
		if n := len(swp.Records); n != 1 {
			return xerrors.Errorf("sweep: error frame must carry exactly one record (got=%d)", n)
		}
		if _, ok := swp.Records[0].(DeviceError); !ok {
			return xerrors.Errorf("sweep: error frame must carry a device error (got=%T)", swp.Records[0])
		}
		return nil
	}

	size := 0
	for _, rec := range swp.Records {
		switch rec.(type) {
		case Peak, SpectralInfo, SpectralData:
			size += peakSize
		case TSPeak:
			size += tsSize
		default:
			return xerrors.Errorf("sweep: invalid payload record type %T", rec)
		}
	}
	if size != int(swp.Header.Length) {
		return xerrors.Errorf("sweep: data length mismatch (header=%d, records=%d)",
			swp.Header.Length, size,
		)
	}
	return nil
}

func (enc *Encoder) write(p []byte) {
	if enc.err != nil {
		return
	}
	_, enc.err = enc.w.Write(p)
}

func (enc *Encoder) writeU16(v uint16) {
	const n = 2
	binary.LittleEndian.PutUint16(enc.buf[:n], v)
	enc.write(enc.buf[:n])
}

func (enc *Encoder) writeU32(v uint32) {
	const n = 4
	binary.LittleEndian.PutUint32(enc.buf[:n], v)
	enc.write(enc.buf[:n])
}

func (enc *Encoder) writeU64(v uint64) {
	const n = 8
	binary.LittleEndian.PutUint64(enc.buf[:n], v)
	enc.write(enc.buf[:n])
}
