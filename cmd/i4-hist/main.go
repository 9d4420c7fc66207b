// Copyright 2024 The go-fbg Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command i4-hist histograms the peak wavelengths (and, with -calib,
// the derived forces) found in I4 capture files.
package main // import "github.com/go-fbg/i4/cmd/i4-hist"

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"go-hep.org/x/hep/hbook"

	"github.com/go-fbg/i4/calib"
	"github.com/go-fbg/i4/sweep"
)

func main() {
	var (
		doCalib = flag.Bool("calib", false, "histogram calibrated forces as well")
		nbins   = flag.Int("bins", 100, "number of histogram bins")
	)

	log.SetPrefix("i4-hist: ")
	log.SetFlags(0)

	flag.Parse()

	if flag.NArg() == 0 {
		log.Fatalf("missing path to input capture file")
	}

	var tbl calib.Table
	if *doCalib {
		tbl = calib.DefaultTable()
	}

	var (
		hwvl = hbook.NewH1D(*nbins, 1500, 1600) // nm
		hfrc = hbook.NewH1D(*nbins, -500, 500)  // mN
	)

	for _, fname := range flag.Args() {
		err := process(fname, tbl, hwvl, hfrc)
		if err != nil {
			log.Fatalf("could not process file %q: %+v", fname, err)
		}
	}

	fmt.Printf("wavelength [nm]: entries=%d mean=%.3f RMS=%.3f\n",
		hwvl.Entries(), hwvl.XMean(), hwvl.XRMS(),
	)
	if tbl != nil {
		fmt.Printf("force [mN]:      entries=%d mean=%.3f RMS=%.3f\n",
			hfrc.Entries(), hfrc.XMean(), hfrc.XRMS(),
		)
	}
}

func process(fname string, tbl calib.Table, hwvl, hfrc *hbook.H1D) error {
	f, err := os.Open(fname)
	if err != nil {
		return fmt.Errorf("could not open %q: %w", fname, err)
	}
	defer f.Close()

	dec := sweep.NewDecoder(f)
	var swp sweep.Sweep
	for {
		err := dec.Decode(&swp)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("could not decode sweep: %w", err)
		}

		for _, rec := range swp.Records {
			var pk sweep.Peak
			switch rec := rec.(type) {
			case sweep.Peak:
				pk = rec
			case sweep.TSPeak:
				pk = rec.Peak
			default:
				continue
			}

			wvl := pk.Wavelength()
			hwvl.Fill(wvl*1e9, 1)

			if tbl == nil {
				continue
			}
			key := calib.SensorKey{
				Channel: pk.ChannelID(),
				Fiber:   pk.FiberID(),
				Sensor:  pk.SensorID(),
			}
			force, ok := tbl.Force(key, wvl)
			if ok {
				hfrc.Fill(force, 1)
			}
		}
	}
}
