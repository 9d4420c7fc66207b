// Copyright 2024 The go-fbg Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package calib converts measured FBG wavelengths into forces, given
// the reference wavelength of each grating.
package calib // import "github.com/go-fbg/i4/calib"

const (
	// pEpsilon is the photo-elastic coefficient of the fiber.
	pEpsilon = 0.28

	// kFactor is the inverse force sensitivity of the grating, in 1/N.
	kFactor = 1.0 / 460.0 / 0.02986
)

// Force converts a measured Bragg wavelength into a force in mN,
// given the reference (unloaded) wavelength of the grating. Both
// wavelengths are in meters. A zero reference is a caller error and
// yields a meaningless value; references are validated when the
// calibration table is loaded, not here.
func Force(ref, meas float64) float64 {
	strain := (meas - ref) / ref / (1 - pEpsilon)
	return strain / kFactor * 1000
}

// SensorKey identifies one FBG on one fiber of one device channel.
type SensorKey struct {
	Channel uint8
	Fiber   uint8
	Sensor  uint8
}

// Table maps sensors to their reference wavelength in meters.
type Table map[SensorKey]float64

// Force converts meas (in meters) to a force in mN for the given
// sensor. The second return value reports whether the sensor has a
// calibration reference.
func (tbl Table) Force(key SensorKey, meas float64) (float64, bool) {
	ref, ok := tbl[key]
	if !ok {
		return 0, false
	}
	return Force(ref, meas), true
}

// DefaultTable returns the builtin reference wavelengths of the
// two-sensor FBG arrays installed on channels 0-3.
func DefaultTable() Table {
	tbl := make(Table, 8)
	for ch := uint8(0); ch < 4; ch++ {
		tbl[SensorKey{Channel: ch, Fiber: 0, Sensor: 0}] = 1534.63e-9
		tbl[SensorKey{Channel: ch, Fiber: 0, Sensor: 1}] = 1549.65e-9
	}
	return tbl
}
