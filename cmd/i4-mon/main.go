// Copyright 2024 The go-fbg Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command i4-mon watches an I4 telemetry stream and raises mail
// alerts when the device reports sensor errors (missing peak,
// multiple peaks).
//
// SMTP credentials are taken from the MAIL_USERNAME, MAIL_PASSWORD,
// MAIL_SERVER, MAIL_PORT and MAIL_TGTS environment variables.
package main // import "github.com/go-fbg/i4/cmd/i4-mon"

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"

	mail "gopkg.in/gomail.v2"

	"github.com/go-fbg/i4/calib"
	"github.com/go-fbg/i4/sweep"
)

func main() {
	addr := flag.String("addr", "10.100.51.16:9931", "interrogator [host]:port to dial")

	log.SetPrefix("i4-mon: ")
	log.SetFlags(0)

	flag.Parse()

	err := run(*addr)
	if err != nil {
		log.Fatalf("could not run i4-mon: %+v", err)
	}
}

func run(addr string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("could not dial interrogator %q: %w", addr, err)
	}
	defer conn.Close()

	log.Printf("monitoring interrogator %q...", addr)
	mon := &monitor{
		addr:   addr,
		alerts: make(map[calib.SensorKey]int),
	}
	rdo := sweep.NewReadout(mon, conn)
	err = rdo.Run()
	if err != nil {
		return fmt.Errorf("could not read out interrogator %q: %w", addr, err)
	}
	return nil
}

// monitor is a record sink that only reacts to device error records.
type monitor struct {
	addr   string
	alerts map[calib.SensorKey]int // number of alerts per sensor
}

func (mon *monitor) Write(rec sweep.Record) error {
	de, ok := rec.(sweep.DeviceError)
	if !ok {
		return nil
	}

	key := calib.SensorKey{
		Channel: de.ChannelID(),
		Fiber:   de.FiberID(),
		Sensor:  de.SensorID(),
	}
	log.Printf("device error: %v (channel=%d fiber=%d sensor=%d)",
		de.Kind(), key.Channel, key.Fiber, key.Sensor,
	)

	mon.alerts[key]++

	const maxAlerts = 5
	if mon.alerts[key] < maxAlerts {
		mon.alertMail(de, key)
	}
	return nil
}

var (
	alertMailUsr  = os.Getenv("MAIL_USERNAME")
	alertMailPwd  = os.Getenv("MAIL_PASSWORD")
	alertMailSrv  = os.Getenv("MAIL_SERVER")
	alertMailPort = atoi(os.Getenv("MAIL_PORT"))
	alertMailTgts = strings.Split(os.Getenv("MAIL_TGTS"), ",")
)

func (mon *monitor) alertMail(de sweep.DeviceError, key calib.SensorKey) {
	if alertMailUsr == "" || alertMailPwd == "" ||
		alertMailSrv == "" || alertMailPort == 0 ||
		len(alertMailTgts) == 0 {
		log.Printf("could not send mail alert: missing credentials")
		return
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", alertMailUsr)
	msg.SetHeader("Bcc", alertMailTgts...)
	msg.SetHeader("Subject", fmt.Sprintf("[i4-mon] %v on %q", de.Kind(), mon.addr))
	msg.SetBody("text/plain", fmt.Sprintf(
		"interrogator: %q\nchannel: %d\nfiber: %d\nsensor: %d\nsource: %s",
		mon.addr, key.Channel, key.Fiber, key.Sensor, de.Cause(),
	))

	dial := mail.NewDialer(alertMailSrv, alertMailPort, alertMailUsr, alertMailPwd)
	err := dial.DialAndSend(msg)
	if err != nil {
		log.Printf("could not send mail alert: %+v", err)
	}
}

func atoi(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}
