// Copyright 2024 The go-fbg Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sweep holds functions to decode the telemetry stream of the
// I4 FBG interrogator: fixed-layout header, payload and flag packets,
// bit-packed sensor identifiers and wavelengths reinterpreted from
// raw machine words.
package sweep // import "github.com/go-fbg/i4/sweep"

import (
	"fmt"
	"time"
)

// SweepType selects the payload decoding strategy of a frame.
type SweepType uint8

const (
	TypePeak     SweepType = 0 // peak sweep
	TypeSpectral SweepType = 1 // full spectral sweep
	TypeTSPeak   SweepType = 2 // peak sweep with per-peak timestamps
)

func (st SweepType) String() string {
	switch st {
	case TypePeak:
		return "peak"
	case TypeSpectral:
		return "spectral"
	case TypeTSPeak:
		return "ts-peak"
	}
	return fmt.Sprintf("SweepType(0x%x)", uint8(st))
}

func (st SweepType) elemSize() int {
	switch st {
	case TypeTSPeak:
		return tsSize
	case TypeSpectral:
		return specSize
	}
	return peakSize
}

// TriggerMode reports how the device triggered a sweep.
type TriggerMode uint8

const (
	TriggerInternal TriggerMode = 0
	TriggerExternal TriggerMode = 1
)

func (tm TriggerMode) String() string {
	switch tm {
	case TriggerInternal:
		return "internal"
	case TriggerExternal:
		return "external"
	}
	return fmt.Sprintf("TriggerMode(0x%x)", uint8(tm))
}

// Record is one decoded element of an I4 frame. Records arrive in
// strict wire order: Header, then payload records, then Flag.
type Record interface {
	isRecord()
}

// Header is the fixed 16-byte packet header leading every frame.
type Header struct {
	Counter uint16 // 12-bit packet counter
	Type    SweepType
	Trigger TriggerMode
	Offset  uint16 // byte offset to the payload; 16 for a normal frame
	Length  uint32 // payload byte count
	Stamp   uint64 // ns since the 1900-01-01 device epoch
}

func (Header) isRecord() {}

// Time converts the raw device timestamp to UTC.
func (hdr Header) Time() time.Time {
	var (
		sec  = int64(hdr.Stamp/1e9) - epochOffset
		nsec = int64(hdr.Stamp % 1e9)
	)
	return time.Unix(sec, nsec).UTC()
}

// Peak is one detected reflection wavelength from one FBG sensor.
// The device overlays the sensor identifiers on the low 16 bits of W0;
// the remaining bits of (W0,W1) encode the wavelength as an IEEE-754
// double.
type Peak struct {
	W0 uint32
	W1 uint32
}

func (Peak) isRecord() {}

func (pk Peak) SensorID() uint8  { return sensorID(pk.W0) }
func (pk Peak) FiberID() uint8   { return fiberID(pk.W0) }
func (pk Peak) ChannelID() uint8 { return channelID(pk.W0) }

// Wavelength returns the measured Bragg wavelength in meters.
func (pk Peak) Wavelength() float64 { return wavelength(pk.W0, pk.W1) }

// TSPeak is a Peak with the device sub-sweep timestamp of the detection.
type TSPeak struct {
	Peak
	TS uint32 // 0.5 ns ticks
}

// Seconds returns the sub-sweep timestamp in seconds.
func (pk TSPeak) Seconds() float64 { return subStamp(pk.TS) }

// SpectralInfo leads a spectral payload and announces the number of
// amplitude samples that follow.
type SpectralInfo struct {
	W0    uint32
	Count uint32 // number of spectral points
}

func (SpectralInfo) isRecord() {}

func (si SpectralInfo) SensorID() uint8  { return sensorID(si.W0) }
func (si SpectralInfo) FiberID() uint8   { return fiberID(si.W0) }
func (si SpectralInfo) ChannelID() uint8 { return channelID(si.W0) }

// SpectralData carries four consecutive spectral amplitude samples.
type SpectralData struct {
	Amps [4]int16
}

func (SpectralData) isRecord() {}

// ErrorKind classifies a device error payload.
type ErrorKind uint8

const (
	ErrInternal ErrorKind = iota
	ErrMissingPeak
	ErrMultiplePeaks
)

func (k ErrorKind) String() string {
	switch k {
	case ErrMissingPeak:
		return "missing peak"
	case ErrMultiplePeaks:
		return "multiple peaks"
	}
	return "internal error"
}

// DeviceError is the 8-byte error payload the device substitutes for a
// normal payload when the header data offset is not 16. The sensor
// identifiers ride the description word, with the same bit layout as a
// peak word.
type DeviceError struct {
	ID    uint32
	Descr uint32
}

func (DeviceError) isRecord() {}

func (de DeviceError) Kind() ErrorKind {
	switch de.ID {
	case errMissingPeak:
		return ErrMissingPeak
	case errMultiplePeaks:
		return ErrMultiplePeaks
	}
	return ErrInternal
}

func (de DeviceError) SensorID() uint8  { return sensorID(de.Descr) }
func (de DeviceError) FiberID() uint8   { return fiberID(de.Descr) }
func (de DeviceError) ChannelID() uint8 { return channelID(de.Descr) }

// Cause returns the device documentation of the likely error source.
func (de DeviceError) Cause() string {
	switch de.Kind() {
	case ErrMissingPeak:
		return "no peak was detected where one was expected from the interrogator configuration.\n" +
			"Possible causes include:\n" +
			"* misconfiguration of sensor wavelength range or threshold\n" +
			"* disconnected sensor"
	case ErrMultiplePeaks:
		return "more than the expected number of peaks was detected in the sensor wavelength range.\n" +
			"Possible causes include:\n" +
			"* misconfiguration of sensor wavelength range or threshold"
	}
	return "internal error.\n" +
		"Possible causes include:\n" +
		"* transient mismatch of configuration and data stream\n" +
		"* internal failure"
}

// Flag is the 8-byte trailer closing every frame.
type Flag struct {
	Counter  uint32 // sweep counter
	Reserved uint32
}

func (Flag) isRecord() {}

// Sweep represents one full device measurement cycle:
// header, payload records and flag trailer.
type Sweep struct {
	Header  Header
	Records []Record
	Flag    Flag
}

// Sink consumes decoded records, in their wire arrival order.
type Sink interface {
	Write(rec Record) error
}

var (
	_ Record = (*Header)(nil)
	_ Record = (*Peak)(nil)
	_ Record = (*TSPeak)(nil)
	_ Record = (*SpectralInfo)(nil)
	_ Record = (*SpectralData)(nil)
	_ Record = (*DeviceError)(nil)
	_ Record = (*Flag)(nil)
)
