package rcall

import "reflect"

// This file is the Go counterpart of the source's REMOTE_FUNCTION_DECL /
// REMOTE_METHOD_DECL / REMOTE_CLASS macro family (C9). The source
// generates both sides of a declaration from one macro invocation at
// compile time; Go has no equivalent preprocessor, so the two sides are
// instead hand-written against the small set of primitives below — one
// client-side proxy function per declared function/method, and one
// server-side FunctionRecord/MethodRecord per registration, the same way
// a developer would hand-wire a stub in any Go RPC layer that forgoes
// codegen. rcalltest is the worked example of both halves.

// WriteArg serializes v using the generic, reflection-driven codec (§4.1);
// for the common fixed-width and string cases a dispatcher may instead
// call the Writer's typed methods directly.
func WriteArg(w *Writer, v interface{}) {
	writeValue(w, reflect.ValueOf(v))
}

// ReadArg deserializes into *ptr using the generic codec. ptr must be a
// non-nil pointer.
func ReadArg(r *Reader, ptr interface{}) {
	readValue(r, reflect.ValueOf(ptr))
}

// WriteHandle encodes an object handle: the instance identifier, or the
// empty string for a null handle (§4.1 "Object handle").
func WriteHandle(w *Writer, instanceID string) {
	w.WriteString(instanceID)
}

// ReadHandle decodes an object handle written by WriteHandle.
func ReadHandle(r *Reader) string {
	return r.ReadString()
}

// ClientProxy is embedded by generated client-side interface proxies
// (§4.8b: "a polymorphic base carrying an instance identifier"). Unlike
// the source's RemoteInterface base, there is no client-side reference
// counter: a live count only exists to answer "can the server discard
// this instance", which is server state, not client state (§3, §4.6). A
// proxy only needs enough to address its instance and ask for its
// destruction.
type ClientProxy struct {
	Transport  Transport
	InstanceID string
	ClientID   string
}

// Destroy sends the destruction opcode for this instance (§4.4 step 1,
// §4.5 step 5). It is idempotent from the caller's point of view: a
// second call simply receives InvalidClassInstance.
func (p *ClientProxy) Destroy() error {
	d := NewDestroyCall(p.InstanceID)
	_, err := Invoke(p.Transport, d, p.ClientID)
	return err
}
