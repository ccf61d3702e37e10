package rcall

import "errors"

var (
	errNoRequestReply = errors.New("rcall: transport does not implement RequestReplyTransport")
	errNoOneWay       = errors.New("rcall: transport implements neither RequestReplyTransport nor OneWayTransport")
)

// Transport is the capability a caller supplies to Invoke (§6). It carries
// bytes to the server and back; rcall never opens a socket or frames bytes
// itself; that is entirely the concern of whatever sits behind this
// interface (see internal/looptrans for one implementation).
//
// A transport exposes one or both of the two capabilities below. Which one
// a given call needs is decided by the call's Synchrony, not by the
// transport: a RequestReply call requires RequestReplyTransport, a
// FireAndForget call only requires OneWayTransport (though a transport that
// only implements the former can still serve both, since round-tripping is
// a superset of send-only).
type Transport interface{}

// RequestReplyTransport sends a request frame and returns the corresponding
// reply frame. Implementations must not interleave two concurrent
// SendReceive calls on the same underlying connection without their own
// synchronization; rcall issues at most one in-flight SendReceive per
// client-side call.
type RequestReplyTransport interface {
	SendReceive(req []byte) (reply []byte, err error)
}

// OneWayTransport sends a request frame without waiting for or expecting a
// reply. Used for FireAndForget calls (§4.3).
type OneWayTransport interface {
	Send(req []byte) error
}

// ClientIdentifiable is an optional capability a transport can expose so the
// client engine can tag outgoing frames with a client identifier without
// the caller having to pass one explicitly at every call site (§4.7, §9
// Open Question: client-affinity coupling), and so the server-side instance
// registry can in turn key live instances to the connection that created
// them. Invoke consults this only when its caller passes an empty clientID;
// an explicit one always wins. A transport that implements neither this nor
// an explicit clientID simply opts such instances out of client-affinity
// reaping.
type ClientIdentifiable interface {
	ClientID() string
}

func asRequestReply(t Transport) (RequestReplyTransport, bool) {
	rr, ok := t.(RequestReplyTransport)
	return rr, ok
}

func asOneWay(t Transport) (OneWayTransport, bool) {
	ow, ok := t.(OneWayTransport)
	return ow, ok
}
