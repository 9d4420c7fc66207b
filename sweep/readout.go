// Copyright 2024 The go-fbg Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sweep

import (
	"io"

	"golang.org/x/xerrors"
)

// Readout reads frames from an underlying data source and publishes
// every decoded record to an underlying sink, in wire arrival order:
// header, payload records, flag. Device error frames are published
// like any other frame; stopping on them is the sink owner's call.
type Readout struct {
	dec  *Decoder
	sink Sink
	swp  Sweep
}

// NewReadout creates a readout that decodes data from r and publishes
// records to sink.
func NewReadout(sink Sink, r io.Reader) *Readout {
	return &Readout{
		dec:  NewDecoder(r),
		sink: sink,
	}
}

// Readout decodes one frame and publishes its records.
func (rdo *Readout) Readout() error {
	err := rdo.dec.Decode(&rdo.swp)
	if err != nil {
		return err
	}

	err = rdo.sink.Write(rdo.swp.Header)
	if err != nil {
		return xerrors.Errorf("sweep: could not publish header record: %w", err)
	}
	for _, rec := range rdo.swp.Records {
		err = rdo.sink.Write(rec)
		if err != nil {
			return xerrors.Errorf("sweep: could not publish payload record: %w", err)
		}
	}
	err = rdo.sink.Write(rdo.swp.Flag)
	if err != nil {
		return xerrors.Errorf("sweep: could not publish flag record: %w", err)
	}

	return nil
}

// Run publishes frames until the data source is exhausted.
func (rdo *Readout) Run() error {
	for {
		err := rdo.Readout()
		if err != nil {
			if xerrors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}
