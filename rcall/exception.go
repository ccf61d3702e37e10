package rcall

import "fmt"

// ErrorKind is the closed taxonomy of failures the runtime can surface to a
// caller (§4.2, §7).
type ErrorKind int32

const (
	NoError ErrorKind = iota
	TransportError
	ServerError
	InvalidFunction
	InvalidClassInstance
	InvalidMethod
	InvalidInterface
)

func (k ErrorKind) String() string {
	switch k {
	case NoError:
		return "NoError"
	case TransportError:
		return "TransportError"
	case ServerError:
		return "ServerError"
	case InvalidFunction:
		return "InvalidFunction"
	case InvalidClassInstance:
		return "InvalidClassInstance"
	case InvalidMethod:
		return "InvalidMethod"
	case InvalidInterface:
		return "InvalidInterface"
	}
	return fmt.Sprintf("ErrorKind(%d)", int32(k))
}

// Exception is the error type raised at the call site for every
// server-signaled or transport-signaled failure. It implements error and
// round-trips on the wire as an int32 tag plus a message string (§4.1).
type Exception struct {
	Kind    ErrorKind
	Message string
}

func (e *Exception) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

// writeNoException writes the reply's no-exception sentinel: an empty
// string, exactly one 0x00 byte.
func writeNoException(w *Writer) {
	w.WriteString("")
}

func writeException(w *Writer, e *Exception) {
	w.WriteInt32(int32(e.Kind))
	w.WriteString(e.Message)
}

func readException(r *Reader) *Exception {
	kind := ErrorKind(r.ReadInt32())
	msg := r.ReadString()
	return &Exception{Kind: kind, Message: msg}
}
