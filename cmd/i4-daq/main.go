// Copyright 2024 The go-fbg Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command i4-daq starts a TDAQ server reading out I4 interrogators.
//
// Interrogator addresses are given as positional arguments; decoded
// peak records are printed to stdout.
package main // import "github.com/go-fbg/i4/cmd/i4-daq"

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-daq/tdaq"
	"github.com/go-daq/tdaq/flags"

	"github.com/go-fbg/i4/sweep"
)

func main() {
	cmd := flags.New()

	if len(cmd.Args) == 0 {
		log.Fatalf("missing interrogator address(es)")
	}

	dev := sweep.NewServer("i4-daq", &stdoutSink{}, cmd.Args...)

	srv := tdaq.New(cmd, os.Stdout)
	srv.CmdHandle("/config", dev.OnConfig)
	srv.CmdHandle("/init", dev.OnInit)
	srv.CmdHandle("/reset", dev.OnReset)
	srv.CmdHandle("/start", dev.OnStart)
	srv.CmdHandle("/stop", dev.OnStop)
	srv.CmdHandle("/quit", dev.OnQuit)

	srv.RunHandle(dev.Run)

	err := srv.Run(context.Background())
	if err != nil {
		log.Panicf("error: %+v", err)
	}
}

type stdoutSink struct{}

func (stdoutSink) Write(rec sweep.Record) error {
	switch rec := rec.(type) {
	case sweep.TSPeak:
		fmt.Printf("peak ch=%d fib=%d sns=%d wvl=%.10e m t=%.5e s\n",
			rec.ChannelID(), rec.FiberID(), rec.SensorID(), rec.Wavelength(), rec.Seconds(),
		)
	case sweep.Peak:
		fmt.Printf("peak ch=%d fib=%d sns=%d wvl=%.10e m\n",
			rec.ChannelID(), rec.FiberID(), rec.SensorID(), rec.Wavelength(),
		)
	case sweep.DeviceError:
		fmt.Printf("error %v ch=%d fib=%d sns=%d\n",
			rec.Kind(), rec.ChannelID(), rec.FiberID(), rec.SensorID(),
		)
	}
	return nil
}
