package rcall

import "testing"

func TestSynchronyClassFireAndForgetEligibility(t *testing.T) {
	if synchronyClass(nil, false) != FireAndForget {
		t.Error("no params, no return: should be fire-and-forget eligible")
	}
	if synchronyClass(nil, true) != RequestReply {
		t.Error("a return value forces request-reply")
	}
	s := "x"
	if synchronyClass([]ParamDesc{InOut(&s)}, false) != RequestReply {
		t.Error("an in-out parameter forces request-reply even with no return value")
	}
	if synchronyClass([]ParamDesc{In(1)}, false) != FireAndForget {
		t.Error("input-only parameters do not disqualify fire-and-forget")
	}
}

// TestSignatureMismatchCorruptsSubsequentReads documents, rather than
// guards against, the behavior called out in the design notes: the wire
// format carries no type tags, so a caller whose declared parameter types
// disagree with the callee's actual signature does not get a decode
// error — it gets misaligned bytes that corrupt every read after the
// mismatch. There is nothing in this package for this test to call that
// would "fix" it; it exists so a future reader does not mistake the
// silence for an oversight.
func TestSignatureMismatchCorruptsSubsequentReads(t *testing.T) {
	w := NewWriter()
	w.WriteString("hello") // caller believes the declared parameter is a string

	r := NewReader(w.Bytes())
	gotLen := r.ReadUint8() // callee actually declared a uint8 first

	if gotLen == uint8(len("hello")) {
		t.Fatal("expected the mismatched read to desynchronize the cursor, not agree by chance")
	}
	// The cursor is now one byte into what was really a five-byte string
	// plus sentinel; nothing downstream can recover alignment.
}
