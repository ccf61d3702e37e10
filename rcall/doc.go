// Package rcall is the core of a synchronous/asynchronous remote procedure
// call runtime: a binary codec, a call protocol built on top of it, the
// client-side call-site machinery, and the server-side dispatch table,
// instance registry and client-affinity reaper.
//
// rcall does not open sockets or frame bytes on a wire; it consumes a
// narrow Transport capability (see transport.go) supplied by the host
// application. Everything between "I have a byte slice to send" and "a
// byte slice arrived" — HTTP, pipes, TCP, in-process loopback — is the
// caller's concern.
//
// The wire format is deliberately not self-describing: a reader's
// behavior is entirely directed by the declared signature the two sides
// agreed on out of band. There is no schema negotiation and no version
// tagging; see DESIGN.md for the reasoning.
package rcall
