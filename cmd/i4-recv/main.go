// Copyright 2024 The go-fbg Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command i4-recv connects to one or more I4 interrogators and prints
// the decoded telemetry stream.
package main // import "github.com/go-fbg/i4/cmd/i4-recv"

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/go-fbg/i4/calib"
	"github.com/go-fbg/i4/conddb"
	"github.com/go-fbg/i4/sweep"
)

func main() {
	var (
		addrs   = flag.String("addr", "10.100.51.16:9931", "comma-separated interrogator [host]:port list to dial")
		doCalib = flag.Bool("calib", false, "print calibrated forces instead of raw wavelengths")
		dbname  = flag.String("db", "", "condition database with FBG references (default: builtin table)")
	)

	log.SetPrefix("i4-recv: ")
	log.SetFlags(0)

	flag.Parse()

	var tbl calib.Table
	if *doCalib {
		var err error
		tbl, err = references(*dbname)
		if err != nil {
			log.Fatalf("could not load FBG references: %+v", err)
		}
	}

	err := run(strings.Split(*addrs, ","), tbl)
	if err != nil {
		log.Fatalf("could not run i4-recv: %+v", err)
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

func run(addrs []string, tbl calib.Table) error {
	var grp errgroup.Group
	for _, addr := range addrs {
		addr := strings.TrimSpace(addr)
		grp.Go(func() error {
			conn, err := net.Dial("tcp", addr)
			if err != nil {
				return fmt.Errorf("could not dial interrogator %q: %w", addr, err)
			}
			defer conn.Close()

			log.Printf("reading out interrogator %q...", addr)
			rdo := sweep.NewReadout(&consoleSink{w: os.Stdout, tbl: tbl}, conn)
			err = rdo.Run()
			if err != nil {
				return fmt.Errorf("could not read out interrogator %q: %w", addr, err)
			}
			log.Printf("interrogator %q disconnected", addr)
			return nil
		})
	}
	return grp.Wait()
}

// consoleSink prints one line per peak or error record, the flag
// counter per sweep, and skips spectral bulk data.
type consoleSink struct {
	w   io.Writer
	tbl calib.Table
}

func (snk *consoleSink) Write(rec sweep.Record) error {
	switch rec := rec.(type) {
	case sweep.Header:
		fmt.Fprintf(snk.w, "counter:%d\t", rec.Counter)

	case sweep.TSPeak:
		snk.peak(rec.Peak)

	case sweep.Peak:
		snk.peak(rec)

	case sweep.SpectralInfo:
		fmt.Fprintf(snk.w, "Sensor#%d, Fiber#%d, Channel#%d\tSpectral points:%d\n",
			rec.SensorID(), rec.FiberID(), rec.ChannelID(), rec.Count,
		)

	case sweep.DeviceError:
		fmt.Fprintf(snk.w, "Error type: %v\nSensor#%d, Fiber#%d, Channel#%d\nError source: %s\n",
			rec.Kind(), rec.SensorID(), rec.FiberID(), rec.ChannelID(), rec.Cause(),
		)

	case sweep.Flag:
		fmt.Fprintf(snk.w, "sweep:%d\n", rec.Counter)
	}
	return nil
}

func (snk *consoleSink) peak(pk sweep.Peak) {
	if snk.tbl == nil {
		fmt.Fprintf(snk.w, "Sensor#%d, Fiber#%d, Channel#%d\tWavelength:%.10e meters\n",
			pk.SensorID(), pk.FiberID(), pk.ChannelID(), pk.Wavelength(),
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
		fmt.Fprintf(snk.w, "Sensor#%d, Fiber#%d, Channel#%d\tForce: no reference\n",
			pk.SensorID(), pk.FiberID(), pk.ChannelID(),
		)
		return
	}
	fmt.Fprintf(snk.w, "Sensor#%d, Fiber#%d, Channel#%d\tForce:%.5f mN\n",
		pk.SensorID(), pk.FiberID(), pk.ChannelID(), force,
	)
}
