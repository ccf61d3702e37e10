package rlog

import (
	"bytes"
	"strings"
	"testing"
)

func TestFilter(t *testing.T) {
	sink := new(bytes.Buffer)
	AddLogger("filtertest", sink, DEBUG, false)
	defer DelLogger("filtertest")

	Debugln("test 123")
	if !strings.Contains(sink.String(), "test 123") {
		t.Fatalf("sink got: %v", sink.String())
	}

	if err := AddFilter("filtertest", "test 456"); err != nil {
		t.Fatal(err)
	}

	Debugln("test 456")
	if strings.Contains(sink.String(), "test 456") {
		t.Fatalf("filter did not suppress: %v", sink.String())
	}

	if err := DelFilter("filtertest", "test 456"); err != nil {
		t.Fatal(err)
	}

	Debugln("test 456")
	if !strings.Contains(sink.String(), "test 456") {
		t.Fatalf("sink got: %v", sink.String())
	}
}

func TestLevelThreshold(t *testing.T) {
	sink := new(bytes.Buffer)
	AddLogger("leveltest", sink, WARN, false)
	defer DelLogger("leveltest")

	Debugln("below threshold")
	if sink.Len() != 0 {
		t.Fatalf("expected nothing logged, got: %v", sink.String())
	}

	Warnln("at threshold")
	if !strings.Contains(sink.String(), "at threshold") {
		t.Fatalf("sink got: %v", sink.String())
	}
}

func TestSetGetLevel(t *testing.T) {
	AddLogger("leveltest2", new(bytes.Buffer), INFO, false)
	defer DelLogger("leveltest2")

	if lvl, err := GetLevel("leveltest2"); err != nil || lvl != INFO {
		t.Fatalf("got %v, %v", lvl, err)
	}

	if err := SetLevel("leveltest2", ERROR); err != nil {
		t.Fatal(err)
	}

	if lvl, err := GetLevel("leveltest2"); err != nil || lvl != ERROR {
		t.Fatalf("got %v, %v", lvl, err)
	}

	if _, err := GetLevel("no-such-logger"); err == nil {
		t.Fatal("expected error for unknown logger")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug": DEBUG,
		"info":  INFO,
		"warn":  WARN,
		"error": ERROR,
		"fatal": FATAL,
	}
	for s, want := range cases {
		got, err := ParseLevel(s)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", s, got, err, want)
		}
	}

	if _, err := ParseLevel("bogus"); err == nil {
		t.Fatal("expected error for invalid level")
	}
}
