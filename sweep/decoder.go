// Copyright 2024 The go-fbg Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sweep

import (
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/xerrors"
)

// SweepTypeError reports an unknown sweep type read from a packet
// header. The data length of such a frame is unreliable, so the
// decoder refuses to read its payload.
type SweepTypeError struct {
	Type uint8
}

func (e *SweepTypeError) Error() string {
	return fmt.Sprintf("sweep: unknown sweep type 0x%x", e.Type)
}

// Decoder reads I4 frames from an underlying data source.
// One call to Decode consumes exactly one frame: the 16-byte header,
// the payload elements it announces and the 8-byte flag trailer.
type Decoder struct {
	r io.Reader

	buf []byte
	err error
}

// NewDecoder creates a decoder that reads frames from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:   r,
		buf: make([]byte, hdrSize),
	}
}

// Decode reads the next frame into swp. A clean end of stream at a
// frame boundary surfaces as io.EOF; a truncated frame as
// io.ErrUnexpectedEOF.
func (dec *Decoder) Decode(swp *Sweep) error {
	dec.load(hdrSize)
	if dec.err != nil {
		return xerrors.Errorf("sweep: could not read packet header: %w", dec.err)
	}

	info := binary.LittleEndian.Uint16(dec.buf[0:2])
	swp.Header = Header{
		Counter: info & cntMask,
		Type:    SweepType((info & typMask) >> typShift),
		Trigger: TriggerMode((info & trgMask) >> trgShift),
		Offset:  binary.LittleEndian.Uint16(dec.buf[2:4]),
		Length:  binary.LittleEndian.Uint32(dec.buf[4:8]),
		Stamp:   binary.LittleEndian.Uint64(dec.buf[8:16]),
	}
	swp.Records = swp.Records[:0]
	swp.Flag = Flag{}

	switch {
	case swp.Header.Offset != dataOffset:
		// out-of-band offset: the device signals an error frame
		// instead of a normal payload.
		err := dec.decodeError(swp)
		if err != nil {
			return err
		}

	default:
		if swp.Header.Type > TypeTSPeak {
			return &SweepTypeError{Type: uint8(swp.Header.Type)}
		}
		err := dec.decodePayload(swp)
		if err != nil {
			return err
		}
	}

	dec.load(flagSize)
	if dec.err != nil {
		return xerrors.Errorf("sweep: could not read flag packet: %w", dec.eof())
	}
	swp.Flag = Flag{
		Counter:  binary.LittleEndian.Uint32(dec.buf[0:4]),
		Reserved: binary.LittleEndian.Uint32(dec.buf[4:8]),
	}

	return nil
}

func (dec *Decoder) decodePayload(swp *Sweep) error {
	size := swp.Header.Type.elemSize()
	if int(swp.Header.Length)%size != 0 {
		return xerrors.Errorf(
			"sweep: invalid data length %d for %v sweep (element size %d)",
			swp.Header.Length, swp.Header.Type, size,
		)
	}

	n := int(swp.Header.Length) / size
	for i := 0; i < n; i++ {
		dec.load(size)
		if dec.err != nil {
			return xerrors.Errorf("sweep: could not read payload element %d/%d: %w",
				i+1, n, dec.eof(),
			)
		}

		var rec Record
		switch {
		case swp.Header.Type == TypePeak:
			rec = Peak{
				W0: binary.LittleEndian.Uint32(dec.buf[0:4]),
				W1: binary.LittleEndian.Uint32(dec.buf[4:8]),
			}
		case swp.Header.Type == TypeTSPeak:
			rec = TSPeak{
				Peak: Peak{
					W0: binary.LittleEndian.Uint32(dec.buf[0:4]),
					W1: binary.LittleEndian.Uint32(dec.buf[4:8]),
				},
				TS: binary.LittleEndian.Uint32(dec.buf[8:12]),
			}
		case i == 0:
			// the first spectral element carries the sensor ids
			// and the number of spectral points.
			rec = SpectralInfo{
				W0:    binary.LittleEndian.Uint32(dec.buf[0:4]),
				Count: binary.LittleEndian.Uint32(dec.buf[4:8]),
			}
		default:
			rec = SpectralData{
				Amps: [4]int16{
					int16(binary.LittleEndian.Uint16(dec.buf[0:2])),
					int16(binary.LittleEndian.Uint16(dec.buf[2:4])),
					int16(binary.LittleEndian.Uint16(dec.buf[4:6])),
					int16(binary.LittleEndian.Uint16(dec.buf[6:8])),
				},
			}
		}
		swp.Records = append(swp.Records, rec)
	}

	return nil
}

func (dec *Decoder) decodeError(swp *Sweep) error {
	dec.load(errSize)
	if dec.err != nil {
		return xerrors.Errorf("sweep: could not read error payload: %w", dec.eof())
	}
	swp.Records = append(swp.Records, DeviceError{
		ID:    binary.LittleEndian.Uint32(dec.buf[0:4]),
		Descr: binary.LittleEndian.Uint32(dec.buf[4:8]),
	})
	return nil
}

func (dec *Decoder) load(n int) {
	if dec.err != nil {
		return
	}
	if cap(dec.buf) < n {
		dec.buf = append(dec.buf[:len(dec.buf)], make([]byte, n-cap(dec.buf))...)
	}
	dec.buf = dec.buf[:n]
	_, dec.err = io.ReadFull(dec.r, dec.buf[:n])
}

// eof upgrades a bare EOF in the middle of a frame: frame boundaries
// are not self-describing, so running dry there means truncation.
func (dec *Decoder) eof() error {
	if xerrors.Is(dec.err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return dec.err
}
