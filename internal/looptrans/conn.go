// Package looptrans is a length-prefixed framing transport for rcall over
// any net.Conn, including net.Pipe for same-process loopback use. It is
// the one concrete Transport the core ships with; rcall itself never
// touches a socket.
//
// Grounded on the client-side net.Conn-plus-codec pairing the teacher
// wraps in cmd/rond's Conn: one mutex serializes writer and reader access
// to the same connection so concurrent callers cannot interleave frames.
package looptrans

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"
)

// maxFrame bounds a single frame's declared length, guarding against a
// corrupt or hostile length prefix causing an unbounded allocation.
const maxFrame = 64 << 20

// Conn is a framed rcall transport over a single net.Conn. It implements
// rcall.RequestReplyTransport, rcall.OneWayTransport, and
// rcall.ClientIdentifiable.
type Conn struct {
	conn     net.Conn
	clientID string

	lock sync.Mutex
}

// Dial wraps an already-connected net.Conn. clientID is what this Conn
// reports via ClientID; pass the empty string if the caller side never
// needs reap-when-idle tracking.
func Dial(conn net.Conn, clientID string) *Conn {
	return &Conn{conn: conn, clientID: clientID}
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// ClientID implements rcall.ClientIdentifiable.
func (c *Conn) ClientID() string {
	return c.clientID
}

// SendReceive implements rcall.RequestReplyTransport: write one framed
// request, then read back one framed reply. Held under lock so two
// goroutines sharing a Conn cannot interleave their frames.
func (c *Conn) SendReceive(req []byte) ([]byte, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if err := writeFrame(c.conn, req); err != nil {
		return nil, fmt.Errorf("looptrans: write request: %w", err)
	}
	reply, err := readFrame(c.conn)
	if err != nil {
		return nil, fmt.Errorf("looptrans: read reply: %w", err)
	}
	return reply, nil
}

// Send implements rcall.OneWayTransport: write one framed request and
// return without waiting for anything back.
func (c *Conn) Send(req []byte) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if err := writeFrame(c.conn, req); err != nil {
		return fmt.Errorf("looptrans: write request: %w", err)
	}
	return nil
}

func writeFrame(w io.Writer, b []byte) error {
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(b)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readFrame(r io.Reader) ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(hdr[:])
	if n > maxFrame {
		return nil, fmt.Errorf("frame length %d exceeds limit %d", n, maxFrame)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
