// Copyright 2024 The go-fbg Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package conddb holds types to retrieve conditions data for the I4
// interrogator — the reference wavelengths of the installed FBG
// sensors — from the condition database.
package conddb // import "github.com/go-fbg/i4/conddb"

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/go-fbg/i4/calib"
)

const (
	host = "localhost"
)

var (
	usr = "username"
	pwd = "s3cr3t"

	drvName = "mysql"
)

// DB exposes convenience methods to retrieve calibration data from
// the I4 condition database.
type DB struct {
	db   *sql.DB
	name string // name of the condition database
}

// Open opens a connection to the condition database dbname.
func Open(dbname string) (*DB, error) {
	db, err := sql.Open(drvName, dsn(dbname))
	if err != nil {
		return nil, fmt.Errorf("conddb: could not open %q db: %w", dbname, err)
	}

	err = ping(db, dbname)
	if err != nil {
		return nil, fmt.Errorf("conddb: could not ping %q db: %w", dbname, err)
	}

	return &DB{db: db, name: dbname}, nil
}

func dsn(db string) string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s", usr, pwd, host, db)
}

func ping(db *sql.DB, dbname string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("conddb: could not ping %q db: %w", dbname, err)
	}

	return nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

// References retrieves the reference wavelength of every installed
// FBG sensor. References must be strictly positive: a zero reference
// would poison the force calibration downstream.
func (db *DB) References(ctx context.Context) (calib.Table, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := db.db.QueryContext(
		ctx,
		"SELECT channel, fiber, sensor, wavelength FROM fbgs",
	)
	if err != nil {
		return nil, fmt.Errorf("conddb: could not query FBG references: %w", err)
	}
	defer rows.Close()

	tbl := make(calib.Table)
	for rows.Next() {
		var (
			key calib.SensorKey
			wvl float64
		)
		err = rows.Scan(&key.Channel, &key.Fiber, &key.Sensor, &wvl)
		if err != nil {
			return nil, fmt.Errorf("conddb: could not get FBG reference value: %w", err)
		}
		if wvl <= 0 {
			return nil, fmt.Errorf(
				"conddb: invalid reference wavelength %v for (channel=%d, fiber=%d, sensor=%d)",
				wvl, key.Channel, key.Fiber, key.Sensor,
			)
		}
		tbl[key] = wvl
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("conddb: could not scan db for FBG references: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("conddb: context error while retrieving FBG references: %w", err)
	}

	return tbl, nil
}
