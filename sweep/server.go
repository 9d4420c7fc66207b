// Copyright 2024 The go-fbg Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sweep

import (
	"net"
	"sort"

	"github.com/go-daq/tdaq"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

// Server drives the readout of a set of I4 interrogators from a TDAQ
// control plane. Each configured device address gets one connection
// and one Readout; decoded records from all devices are published to
// the same sink.
type Server struct {
	name string

	addrs []string
	conns map[string]net.Conn
	rdos  map[string]*Readout
	sink  Sink
}

// NewServer creates a server publishing the records of the
// interrogators at addrs to sink.
func NewServer(name string, sink Sink, addrs ...string) *Server {
	return &Server{
		name:  name,
		addrs: addrs,
		sink:  sink,
	}
}

func (srv *Server) initialize(ctx tdaq.Context, addr string) error {
	if _, dup := srv.rdos[addr]; dup {
		ctx.Msg.Errorf("interrogator %q already registered", addr)
		return xerrors.Errorf("sweep: interrogator %q already registered", addr)
	}

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		ctx.Msg.Errorf("could not dial interrogator %q: %+v", addr, err)
		return xerrors.Errorf("sweep: could not dial interrogator %q: %w", addr, err)
	}

	srv.conns[addr] = conn
	srv.rdos[addr] = NewReadout(srv.sink, conn)
	ctx.Msg.Infof("readout for interrogator %q: OK", addr)

	return nil
}

func (srv *Server) release() {
	for _, conn := range srv.conns {
		_ = conn.Close()
	}
	srv.conns = nil
	srv.rdos = nil
}

func (srv *Server) OnConfig(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /config command...")
	sort.Strings(srv.addrs)
	for _, addr := range srv.addrs {
		ctx.Msg.Infof("configured interrogator %q", addr)
	}
	return nil
}

func (srv *Server) OnInit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /init command...")
	srv.conns = make(map[string]net.Conn, len(srv.addrs))
	srv.rdos = make(map[string]*Readout, len(srv.addrs))
	for _, addr := range srv.addrs {
		err := srv.initialize(ctx, addr)
		if err != nil {
			ctx.Msg.Errorf("could not initialize interrogator %q: %+v", addr, err)
			return xerrors.Errorf("sweep: could not initialize interrogator %q: %w", addr, err)
		}
	}
	return nil
}

func (srv *Server) OnReset(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /reset command...")
	srv.release()
	return nil
}

func (srv *Server) OnStart(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /start command...")
	return nil
}

func (srv *Server) OnStop(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /stop command...")
	return nil
}

func (srv *Server) OnQuit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /quit command...")
	srv.release()
	return nil
}

// Run drives all registered readouts until the run context is
// cancelled or a readout fails. Closing the connections on /quit
// unblocks pending reads.
func (srv *Server) Run(ctx tdaq.Context) error {
	grp, _ := errgroup.WithContext(ctx.Ctx)
	for addr := range srv.rdos {
		addr := addr
		rdo := srv.rdos[addr]
		grp.Go(func() error {
			err := rdo.Run()
			if err != nil {
				return xerrors.Errorf("sweep: readout of interrogator %q failed: %w", addr, err)
			}
			return nil
		})
	}
	return grp.Wait()
}
