// Copyright 2024 The go-fbg Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command i4-shell interactively inspects an I4 capture file,
// one sweep at a time.
//
//	$> i4-shell ./testdata/peaks.raw
//	i4> next
//	=== sweep 1 (peak, internal trigger) ===
//	[...]
//	i4> quit
package main // import "github.com/go-fbg/i4/cmd/i4-shell"

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/go-fbg/i4/sweep"
)

func main() {
	log.SetPrefix("i4-shell: ")
	log.SetFlags(0)

	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("missing path to input capture file")
	}

	err := run(flag.Arg(0))
	if err != nil {
		log.Fatalf("could not run i4-shell: %+v", err)
	}
}

var cmdNames = []string{"next", "rewind", "quit"}

func run(fname string) error {
	f, err := os.Open(fname)
	if err != nil {
		return fmt.Errorf("could not open %q: %w", fname, err)
	}
	defer f.Close()

	term := liner.NewLiner()
	defer term.Close()

	term.SetCtrlCAborts(true)
	term.SetCompleter(func(line string) (c []string) {
		for _, cmd := range cmdNames {
			if strings.HasPrefix(cmd, strings.ToLower(line)) {
				c = append(c, cmd)
			}
		}
		return c
	})

	sh := shell{f: f, dec: sweep.NewDecoder(f)}
	for {
		line, err := term.Prompt("i4> ")
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				fmt.Println()
				return nil
			}
			return fmt.Errorf("could not read prompt line: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		term.AppendHistory(line)

		quit, err := sh.exec(line)
		if err != nil {
			log.Printf("%+v", err)
		}
		if quit {
			return nil
		}
	}
}

type shell struct {
	f   *os.File
	dec *sweep.Decoder
	swp sweep.Sweep
}

func (sh *shell) exec(line string) (quit bool, err error) {
	toks := strings.Fields(line)
	switch toks[0] {
	case "quit", "exit":
		return true, nil

	case "rewind":
		_, err := sh.f.Seek(0, io.SeekStart)
		if err != nil {
			return false, fmt.Errorf("could not rewind capture file: %w", err)
		}
		sh.dec = sweep.NewDecoder(sh.f)
		return false, nil

	case "next":
		n := 1
		if len(toks) > 1 {
			n, err = strconv.Atoi(toks[1])
			if err != nil {
				return false, fmt.Errorf("invalid sweep count %q: %w", toks[1], err)
			}
		}
		for i := 0; i < n; i++ {
			err := sh.next()
			if err != nil {
				if errors.Is(err, io.EOF) {
					fmt.Println("end of capture file")
					return false, nil
				}
				return false, err
			}
		}
		return false, nil
	}

	return false, fmt.Errorf("unknown command %q", toks[0])
}

func (sh *shell) next() error {
	err := sh.dec.Decode(&sh.swp)
	if err != nil {
		return err
	}

	hdr := sh.swp.Header
	fmt.Printf("=== sweep %d (%v, %v trigger) ===\n", hdr.Counter, hdr.Type, hdr.Trigger)
	fmt.Printf("time:    %s\n", hdr.Time().Format("2006-01-02 15:04:05"))
	for _, rec := range sh.swp.Records {
		switch rec := rec.(type) {
		case sweep.TSPeak:
			fmt.Printf("  peak sensor=%d fiber=%d channel=%d wvl=%.10e m t=%.5e s\n",
				rec.SensorID(), rec.FiberID(), rec.ChannelID(), rec.Wavelength(), rec.Seconds(),
			)
		case sweep.Peak:
			fmt.Printf("  peak sensor=%d fiber=%d channel=%d wvl=%.10e m\n",
				rec.SensorID(), rec.FiberID(), rec.ChannelID(), rec.Wavelength(),
			)
		case sweep.SpectralInfo:
			fmt.Printf("  spectral sensor=%d fiber=%d channel=%d points=%d\n",
				rec.SensorID(), rec.FiberID(), rec.ChannelID(), rec.Count,
			)
		case sweep.SpectralData:
			fmt.Printf("  amps %6d %6d %6d %6d\n",
				rec.Amps[0], rec.Amps[1], rec.Amps[2], rec.Amps[3],
			)
		case sweep.DeviceError:
			fmt.Printf("  error %v: sensor=%d fiber=%d channel=%d\n",
				rec.Kind(), rec.SensorID(), rec.FiberID(), rec.ChannelID(),
			)
		}
	}
	fmt.Printf("flag:    %d\n", sh.swp.Flag.Counter)
	return nil
}
