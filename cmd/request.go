package cmd

import (
	"fmt"
	"net"
	"os"

	"github.com/ermitavulpe/rdir/control"
	"github.com/ermitavulpe/rdir/rclient"
)

// roundTrip connects (spawning a daemon first when requiresDaemon is
// set and none is reachable), sends req, and returns the decoded
// response. On any transport failure it exits the process directly
// with a non-zero code; an Err response is returned to the caller,
// which passes it to exitOnErr.
func roundTrip(req control.ClientMessage, requiresDaemon bool) control.ServerResponse {
	var resp control.ServerResponse
	err := rclient.SendRequest(resolveConfig(), requiresDaemon,
		func(conn net.Conn) error { return control.WriteClientMessage(conn, req) },
		func(conn net.Conn) error {
			r, err := control.ReadServerResponse(conn)
			if err != nil {
				return err
			}
			resp = r
			return nil
		},
	)
	if err != nil {
		fatalf("%v", err)
	}
	return resp
}

// exitOnErr prints and exits non-zero if resp is an Err response;
// otherwise it returns normally.
func exitOnErr(resp control.ServerResponse) {
	if resp.Kind == control.RespErr {
		fmt.Fprintf(os.Stderr, "rdir: %s\n", resp.Err.Detail)
		os.Exit(1)
	}
}
