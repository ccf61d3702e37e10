package looptrans

import (
	"net"
	"testing"

	"github.com/amarmer/RemoteCall/rcall"
)

func TestConnRoundTripsThroughServer(t *testing.T) {
	srv := rcall.NewServer()
	srv.RegisterFunction("Echo", &rcall.FunctionRecord{
		Call: func(r *rcall.Reader, w *rcall.Writer, clientID string) error {
			w.WriteString(r.ReadString())
			return nil
		},
	})

	client, server := net.Pipe()
	defer client.Close()

	go ServeConn(server, srv, nil)

	c := Dial(client, "")
	d := rcall.NewFunctionCall("Echo", true, false, rcall.In("hi"))
	reply, err := rcall.Invoke(c, d, "")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got := reply.ReadString(); got != "hi" {
		t.Fatalf("got %q, want %q", got, "hi")
	}
}

func TestConnClientID(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	c := Dial(client, "client-42")
	if c.ClientID() != "client-42" {
		t.Fatalf("ClientID() = %q", c.ClientID())
	}
}
