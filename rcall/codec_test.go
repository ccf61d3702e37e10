package rcall

import (
	"reflect"
	"testing"
)

func roundTrip(t *testing.T, v interface{}) interface{} {
	t.Helper()

	w := NewWriter()
	writeValue(w, reflect.ValueOf(v))

	r := NewReader(w.Bytes())
	out := reflect.New(reflect.TypeOf(v))
	readValue(r, out)

	if r.Pos() != len(w.Bytes()) {
		t.Fatalf("reader left %d unread bytes", len(w.Bytes())-r.Pos())
	}
	return out.Elem().Interface()
}

func TestCodecPrimitives(t *testing.T) {
	cases := []interface{}{
		true, false,
		int32(-7), uint32(7), int64(-1 << 40), uint64(1 << 40),
		float32(3.5), float64(2.25),
		"", "hello",
	}
	for _, c := range cases {
		got := roundTrip(t, c)
		if got != c {
			t.Errorf("roundTrip(%#v) = %#v", c, got)
		}
	}
}

func TestCodecSlice(t *testing.T) {
	in := []string{"a", "bb", "ccc"}
	got := roundTrip(t, in).([]string)
	if !reflect.DeepEqual(in, got) {
		t.Errorf("roundTrip(%#v) = %#v", in, got)
	}
}

func TestCodecMap(t *testing.T) {
	in := map[string]int32{"x": 1, "y": 2}
	got := roundTrip(t, in).(map[string]int32)
	if !reflect.DeepEqual(in, got) {
		t.Errorf("roundTrip(%#v) = %#v", in, got)
	}
}

type point struct {
	X, Y int32
	Name string
}

func TestCodecStruct(t *testing.T) {
	in := point{X: 1, Y: -2, Name: "p"}
	got := roundTrip(t, in).(point)
	if got != in {
		t.Errorf("roundTrip(%#v) = %#v", in, got)
	}
}

func TestCodecPointerPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic serializing a pointer field")
		}
	}()
	w := NewWriter()
	n := 5
	writeValue(w, reflect.ValueOf(&n))
}

func TestWriterStringSentinel(t *testing.T) {
	w := NewWriter()
	w.WriteString("")
	if got := w.Bytes(); len(got) != 1 || got[0] != 0 {
		t.Fatalf("empty string should encode to one NUL byte, got %v", got)
	}
}

func TestReaderPeek(t *testing.T) {
	r := NewReader([]byte{5, 6, 7})
	b, ok := r.Peek()
	if !ok || b != 5 {
		t.Fatalf("Peek() = %v, %v", b, ok)
	}
	if r.Pos() != 0 {
		t.Fatalf("Peek must not advance the cursor")
	}
}
