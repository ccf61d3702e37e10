package looptrans

import (
	"io"
	"net"
	"strings"

	"github.com/amarmer/RemoteCall/pkg/rlog"
	"github.com/amarmer/RemoteCall/rcall"
)

// Serve accepts connections on ln forever, handing each one to
// ServeConn in its own goroutine. It returns when ln.Accept fails, which
// is the normal way to stop serving: close ln from another goroutine.
//
// Grounded on the accept-loop shape of the teacher's Server.serve: log
// and continue on a per-connection failure, but stop the loop once the
// listener itself reports it is closed.
func Serve(ln net.Listener, srv *rcall.Server, liveness func(clientID string) bool) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if !strings.Contains(err.Error(), "use of closed network connection") {
				rlog.Error("looptrans: accept on %v: %v", ln.Addr(), err)
			}
			return
		}

		rlog.Info("looptrans: client connected: %v", conn.RemoteAddr())

		go func() {
			ServeConn(conn, srv, liveness)
			rlog.Debug("looptrans: client disconnected: %v", conn.RemoteAddr())
		}()
	}
}

// ServeConn reads framed requests off conn in a loop, dispatches each
// through srv, and writes the framed reply back, until the connection is
// closed or a frame error ends the loop.
func ServeConn(conn net.Conn, srv *rcall.Server, liveness func(clientID string) bool) {
	defer conn.Close()

	for {
		req, err := readFrame(conn)
		if err != nil {
			if err != io.EOF {
				rlog.Debugln("looptrans: read:", err)
			}
			return
		}

		reply := srv.Process(req, liveness)

		if err := writeFrame(conn, reply); err != nil {
			rlog.Debugln("looptrans: write:", err)
			return
		}
	}
}
