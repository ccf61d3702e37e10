package rcall

import (
	"bytes"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
)

var instanceCounter uint64

// NewInstanceID returns a fresh, globally unique instance identifier. It
// begins with a digit (§3 Remote instance: "Identifier format: a string
// beginning with a digit"), which is what lets server dispatch tell a
// method/destroy frame apart from a function-call frame by peeking the
// frame's first byte (§4.5 step 3).
//
// The source combines the OS thread id with a process-global counter; the
// Go analogue of "current thread" is the calling goroutine, so this uses
// the goroutine id in its place. Goroutine ids are not part of any
// documented Go API; they are recovered by parsing the header line of
// runtime.Stack, the same trick used by most third-party goroutine-local
// storage packages.
func NewInstanceID() string {
	n := atomic.AddUint64(&instanceCounter, 1)
	return fmt.Sprintf("%d:%d", goroutineID(), n)
}

func goroutineID() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
