// Copyright 2024 The go-fbg Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// i4-dump decodes and displays raw I4 interrogator capture files.
//
// Usage: i4-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]
//
// Example:
//
//	$> i4-dump ./testdata/peaks.raw
//	=== sweep 1 (peak, internal trigger) ===
//	time:    2024-04-21 08:00:00
//	length:  8
//	  peak sensor=1 fiber=0 channel=0 wvl=1.5346305847e-06 m
//	flag:    42
//	[...]
//
// With -calib, peak records are converted to forces with the builtin
// calibration table (or the one from the condition database given with
// -db).
package main // import "github.com/go-fbg/i4/cmd/i4-dump"

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/go-fbg/i4/calib"
	"github.com/go-fbg/i4/conddb"
	"github.com/go-fbg/i4/sweep"
)

func main() {
	xmain(os.Stdout, os.Args[1:])
}

func xmain(w io.Writer, args []string) {
	log.SetPrefix("i4-dump: ")
	log.SetFlags(0)

	fset := flag.NewFlagSet("i4-dump", flag.ExitOnError)
	doCalib := fset.Bool("calib", false, "convert peaks to forces")
	dbname := fset.String("db", "", "condition database with FBG references (default: builtin table)")

	fset.Usage = func() {
		fmt.Printf(`i4-dump decodes and displays raw I4 interrogator capture files.

Usage: i4-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]

Example:

 $> i4-dump ./testdata/peaks.raw
 === sweep 1 (peak, internal trigger) ===
 time:    2024-04-21 08:00:00
 length:  8
   peak sensor=1 fiber=0 channel=0 wvl=1.5346305847e-06 m
 flag:    42
 [...]

`)
		fset.PrintDefaults()
	}

	_ = fset.Parse(args)

	if fset.NArg() == 0 {
		fset.Usage()
		log.Fatalf("missing path to input capture file")
	}

	var tbl calib.Table
	if *doCalib {
		var err error
		tbl, err = references(*dbname)
		if err != nil {
			log.Fatalf("could not load FBG references: %+v", err)
		}
	}

	for _, fname := range fset.Args() {
		err := process(w, fname, tbl)
		if err != nil {
			log.Fatalf("could not dump file %q: %+v", fname, err)
		}
	}
}

func references(dbname string) (calib.Table, error) {
	if dbname == "" {
		return calib.DefaultTable(), nil
	}

	db, err := conddb.Open(dbname)
	if err != nil {
		return nil, fmt.Errorf("could not open condition db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return db.References(ctx)
}

func process(w io.Writer, fname string, tbl calib.Table) error {
	wbuf := bufio.NewWriter(w)
	defer wbuf.Flush()

	f, err := os.Open(fname)
	if err != nil {
		return fmt.Errorf("could not open %q: %w", fname, err)
	}
	defer f.Close()

	rdo := sweep.NewReadout(&dumpSink{w: wbuf, tbl: tbl}, f)
	err = rdo.Run()
	if err != nil {
		return fmt.Errorf("could not decode sweeps: %w", err)
	}

	return nil
}

// dumpSink prints every record to w. With a non-nil calibration
// table, peak wavelengths are converted to forces.
type dumpSink struct {
	w   io.Writer
	tbl calib.Table
}

func (snk *dumpSink) Write(rec sweep.Record) error {
	switch rec := rec.(type) {
	case sweep.Header:
		fmt.Fprintf(snk.w, "=== sweep %d (%v, %v trigger) ===\n",
			rec.Counter, rec.Type, rec.Trigger,
		)
		fmt.Fprintf(snk.w, "time:    %s\n", rec.Time().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(snk.w, "length:  %d\n", rec.Length)

	case sweep.TSPeak:
		snk.peak(rec.Peak, fmt.Sprintf(" t=%.5e s", rec.Seconds()))

	case sweep.Peak:
		snk.peak(rec, "")

	case sweep.SpectralInfo:
		fmt.Fprintf(snk.w, "  spectral sensor=%d fiber=%d channel=%d points=%d\n",
			rec.SensorID(), rec.FiberID(), rec.ChannelID(), rec.Count,
		)

	case sweep.SpectralData:
		fmt.Fprintf(snk.w, "  amps %6d %6d %6d %6d\n",
			rec.Amps[0], rec.Amps[1], rec.Amps[2], rec.Amps[3],
		)

	case sweep.DeviceError:
		fmt.Fprintf(snk.w, "  error %v: sensor=%d fiber=%d channel=%d\n",
			rec.Kind(), rec.SensorID(), rec.FiberID(), rec.ChannelID(),
		)

	case sweep.Flag:
		fmt.Fprintf(snk.w, "flag:    %d\n", rec.Counter)
	}
	return nil
}

func (snk *dumpSink) peak(pk sweep.Peak, suffix string) {
	if snk.tbl == nil {
		fmt.Fprintf(snk.w, "  peak sensor=%d fiber=%d channel=%d wvl=%.10e m%s\n",
			pk.SensorID(), pk.FiberID(), pk.ChannelID(), pk.Wavelength(), suffix,
		)
		return
	}

	key := calib.SensorKey{
		Channel: pk.ChannelID(),
		Fiber:   pk.FiberID(),
		Sensor:  pk.SensorID(),
	}
	force, ok := snk.tbl.Force(key, pk.Wavelength())
	if !ok {
		fmt.Fprintf(snk.w, "  peak sensor=%d fiber=%d channel=%d force=n/a%s\n",
			pk.SensorID(), pk.FiberID(), pk.ChannelID(), suffix,
		)
		return
	}
	fmt.Fprintf(snk.w, "  peak sensor=%d fiber=%d channel=%d force=%.5f mN%s\n",
		pk.SensorID(), pk.FiberID(), pk.ChannelID(), force, suffix,
	)
}
