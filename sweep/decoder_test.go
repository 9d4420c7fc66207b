// Copyright 2024 The go-fbg Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sweep

import (
	"bytes"
	"io"
	"reflect"
	"testing"

	"golang.org/x/xerrors"
)

func TestDecoder(t *testing.T) {
	for _, tc := range []struct {
		name string
		raw  []byte
		want Sweep
		err  string
	}{
		{
			name: "peak",
			raw: []byte{
				0x01, 0x00, // info: counter=1, type=peak, trigger=internal
				0x10, 0x00, // offset: 16
				0x08, 0x00, 0x00, 0x00, // length: 8
				0x88, 0x77, 0x66, 0x55, 0x44, 0x33, 0x22, 0x11, // stamp
				0x34, 0x12, 0x00, 0x00, // w0
				0x00, 0x00, 0xf0, 0x3f, // w1
				0x07, 0x00, 0x00, 0x00, // sweep counter
				0x00, 0x00, 0x00, 0x00, // reserved
			},
			want: Sweep{
				Header: Header{
					Counter: 1,
					Type:    TypePeak,
					Trigger: TriggerInternal,
					Offset:  16,
					Length:  8,
					Stamp:   0x1122334455667788,
				},
				Records: []Record{
					Peak{W0: 0x00001234, W1: 0x3ff00000},
				},
				Flag: Flag{Counter: 7},
			},
		},
		{
			name: "ts-peak external trigger",
			raw: []byte{
				0x34, 0xa2, // info: counter=0x234, type=ts-peak, trigger=external
				0x10, 0x00,
				0x0c, 0x00, 0x00, 0x00, // length: 12
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
				0x34, 0x12, 0x00, 0x00, // w0
				0x00, 0x00, 0xf0, 0x3f, // w1
				0x02, 0x00, 0x00, 0x00, // w2: sub-sweep timestamp
				0x09, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x00,
			},
			want: Sweep{
				Header: Header{
					Counter: 0x234,
					Type:    TypeTSPeak,
					Trigger: TriggerExternal,
					Offset:  16,
					Length:  12,
				},
				Records: []Record{
					TSPeak{Peak: Peak{W0: 0x00001234, W1: 0x3ff00000}, TS: 2},
				},
				Flag: Flag{Counter: 9},
			},
		},
		{
			name: "spectral",
			raw: []byte{
				0x05, 0x10, // info: counter=5, type=spectral
				0x10, 0x00,
				0x18, 0x00, 0x00, 0x00, // length: 24
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
				0x34, 0x12, 0x00, 0x00, // w0
				0x08, 0x00, 0x00, 0x00, // number of points
				0x01, 0x00, 0x02, 0x00, 0x03, 0x00, 0x04, 0x00, // amps
				0xff, 0xff, 0x64, 0x00, 0x9c, 0xff, 0x00, 0x00, // amps
				0x2a, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x00,
			},
			want: Sweep{
				Header: Header{
					Counter: 5,
					Type:    TypeSpectral,
					Trigger: TriggerInternal,
					Offset:  16,
					Length:  24,
				},
				Records: []Record{
					SpectralInfo{W0: 0x00001234, Count: 8},
					SpectralData{Amps: [4]int16{1, 2, 3, 4}},
					SpectralData{Amps: [4]int16{-1, 100, -100, 0}},
				},
				Flag: Flag{Counter: 42},
			},
		},
		{
			name: "empty peak sweep",
			raw: []byte{
				0x02, 0x00,
				0x10, 0x00,
				0x00, 0x00, 0x00, 0x00, // length: 0
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
				0x03, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x00,
			},
			want: Sweep{
				Header: Header{
					Counter: 2,
					Type:    TypePeak,
					Trigger: TriggerInternal,
					Offset:  16,
				},
				Flag: Flag{Counter: 3},
			},
		},
		{
			name: "device error frame",
			raw: []byte{
				0x03, 0x00,
				0x00, 0x00, // offset: 0, error frame
				0x08, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
				0xf4, 0x01, 0x00, 0x00, // error id: 500
				0x34, 0x21, 0x00, 0x00, // description
				0x04, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x00,
			},
			want: Sweep{
				Header: Header{
					Counter: 3,
					Type:    TypePeak,
					Trigger: TriggerInternal,
					Offset:  0,
					Length:  8,
				},
				Records: []Record{
					DeviceError{ID: 500, Descr: 0x00002134},
				},
				Flag: Flag{Counter: 4},
			},
		},
		{
			name: "empty stream",
			raw:  nil,
			err:  "sweep: could not read packet header: EOF",
		},
		{
			name: "truncated header",
			raw: []byte{
				0x01, 0x00,
				0x10, 0x00,
				0x08, 0x00, 0x00, 0x00,
			},
			err: "sweep: could not read packet header: unexpected EOF",
		},
		{
			name: "unknown sweep type",
			raw: []byte{
				0x01, 0x30, // info: counter=1, type=3
				0x10, 0x00,
				0x08, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
			},
			err: "sweep: unknown sweep type 0x3",
		},
		{
			name: "invalid data length",
			raw: []byte{
				0x01, 0x00,
				0x10, 0x00,
				0x0a, 0x00, 0x00, 0x00, // length: 10, not a multiple of 8
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
			},
			err: "sweep: invalid data length 10 for peak sweep (element size 8)",
		},
		{
			name: "truncated payload",
			raw: []byte{
				0x01, 0x00,
				0x10, 0x00,
				0x10, 0x00, 0x00, 0x00, // length: 16, two peaks
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
				0x34, 0x12, 0x00, 0x00,
				0x00, 0x00, 0xf0, 0x3f,
			},
			err: "sweep: could not read payload element 2/2: unexpected EOF",
		},
		{
			name: "truncated error payload",
			raw: []byte{
				0x03, 0x00,
				0x00, 0x00,
				0x08, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
				0xf4, 0x01, 0x00, 0x00,
			},
			err: "sweep: could not read error payload: unexpected EOF",
		},
		{
			name: "missing flag",
			raw: []byte{
				0x01, 0x00,
				0x10, 0x00,
				0x08, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
				0x34, 0x12, 0x00, 0x00,
				0x00, 0x00, 0xf0, 0x3f,
			},
			err: "sweep: could not read flag packet: unexpected EOF",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var (
				dec = NewDecoder(bytes.NewReader(tc.raw))
				swp Sweep
			)
			err := dec.Decode(&swp)
			switch {
			case err != nil && tc.err != "":
				if got, want := err.Error(), tc.err; got != want {
					t.Fatalf("invalid error:\ngot= %v\nwant=%v", got, want)
				}
				return
			case err != nil && tc.err == "":
				t.Fatalf("could not decode sweep: %+v", err)
			case err == nil && tc.err != "":
				t.Fatalf("expected an error (got=nil):\nwant=%v", tc.err)
			}

			if got, want := swp, tc.want; !reflect.DeepEqual(got, want) {
				t.Fatalf("invalid sweep:\ngot= %#v\nwant=%#v", got, want)
			}
		})
	}
}

func TestDecoderStream(t *testing.T) {
	raw := []byte{
		// frame 1: one peak
		0x01, 0x00,
		0x10, 0x00,
		0x08, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x34, 0x12, 0x00, 0x00,
		0x00, 0x00, 0xf0, 0x3f,
		0x01, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		// frame 2: device error
		0x02, 0x00,
		0x00, 0x00,
		0x08, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0xf5, 0x01, 0x00, 0x00,
		0x34, 0x21, 0x00, 0x00,
		0x02, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	}

	var (
		dec = NewDecoder(bytes.NewReader(raw))
		swp Sweep
	)

	err := dec.Decode(&swp)
	if err != nil {
		t.Fatalf("could not decode sweep 1: %+v", err)
	}
	if got, want := len(swp.Records), 1; got != want {
		t.Fatalf("invalid number of records for sweep 1: got=%d, want=%d", got, want)
	}
	if _, ok := swp.Records[0].(Peak); !ok {
		t.Fatalf("invalid record type for sweep 1: got=%T, want=sweep.Peak", swp.Records[0])
	}

	err = dec.Decode(&swp)
	if err != nil {
		t.Fatalf("could not decode sweep 2: %+v", err)
	}
	if got, want := len(swp.Records), 1; got != want {
		t.Fatalf("invalid number of records for sweep 2: got=%d, want=%d", got, want)
	}
	de, ok := swp.Records[0].(DeviceError)
	if !ok {
		t.Fatalf("invalid record type for sweep 2: got=%T, want=sweep.DeviceError", swp.Records[0])
	}
	if got, want := de.Kind(), ErrMultiplePeaks; got != want {
		t.Fatalf("invalid error kind for sweep 2: got=%v, want=%v", got, want)
	}

	err = dec.Decode(&swp)
	if !xerrors.Is(err, io.EOF) {
		t.Fatalf("invalid error at end of stream: got=%+v, want=%+v", err, io.EOF)
	}
}

func TestDeviceErrorIDs(t *testing.T) {
	// the sensor identifiers of an error payload ride the description
	// word, not the error id.
	de := DeviceError{ID: 500, Descr: 0x00002134}
	if got, want := de.SensorID(), uint8(0x34); got != want {
		t.Fatalf("invalid sensor id: got=%d, want=%d", got, want)
	}
	if got, want := de.FiberID(), uint8(1); got != want {
		t.Fatalf("invalid fiber id: got=%d, want=%d", got, want)
	}
	if got, want := de.ChannelID(), uint8(2); got != want {
		t.Fatalf("invalid channel id: got=%d, want=%d", got, want)
	}

	for _, tc := range []struct {
		id   uint32
		want ErrorKind
	}{
		{id: 500, want: ErrMissingPeak},
		{id: 501, want: ErrMultiplePeaks},
		{id: 0, want: ErrInternal},
		{id: 666, want: ErrInternal},
	} {
		de := DeviceError{ID: tc.id}
		if got, want := de.Kind(), tc.want; got != want {
			t.Fatalf("id=%d: invalid error kind: got=%v, want=%v", tc.id, got, want)
		}
	}
}
