package rcall

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
)

// Writer is an append-only byte buffer that argument, return, exception and
// object-handle values are serialized onto. Width-of-host, little-endian,
// schema-directed: there are no type tags on the wire (§4.1).
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the accumulated frame.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Append copies the bytes of another, already-built frame fragment onto w.
func (w *Writer) Append(b []byte) {
	w.buf.Write(b)
}

func (w *Writer) WriteUint8(v uint8) {
	w.buf.WriteByte(v)
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteUint8(1)
	} else {
		w.WriteUint8(0)
	}
}

func (w *Writer) WriteInt32(v int32)   { binary.Write(&w.buf, binary.LittleEndian, v) }
func (w *Writer) WriteUint32(v uint32) { binary.Write(&w.buf, binary.LittleEndian, v) }
func (w *Writer) WriteInt64(v int64)   { binary.Write(&w.buf, binary.LittleEndian, v) }
func (w *Writer) WriteUint64(v uint64) { binary.Write(&w.buf, binary.LittleEndian, v) }

func (w *Writer) WriteFloat32(v float32) { w.WriteUint32(math.Float32bits(v)) }
func (w *Writer) WriteFloat64(v float64) { w.WriteUint64(math.Float64bits(v)) }

// WriteString writes s followed by a single 0x00 sentinel. The empty string
// encodes to exactly one byte. s must not contain an internal NUL.
func (w *Writer) WriteString(s string) {
	w.buf.WriteString(s)
	w.buf.WriteByte(0)
}

// WriteLen writes a dynamic-array/map size prefix.
func (w *Writer) WriteLen(n int) {
	w.WriteUint64(uint64(n))
}

// Reader decodes a frame produced by a Writer. It carries an internal
// cursor; Peek inspects the byte at the cursor without advancing it, which
// is what server dispatch uses to classify requests (§4.1).
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps b for sequential, schema-directed decoding.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Peek returns the byte at the cursor without consuming it. ok is false at
// end of buffer.
func (r *Reader) Peek() (b byte, ok bool) {
	if r.pos >= len(r.buf) {
		return 0, false
	}
	return r.buf[r.pos], true
}

// Pos returns the current cursor offset.
func (r *Reader) Pos() int { return r.pos }

// Rest returns the unread tail of the buffer without consuming it.
func (r *Reader) Rest() []byte { return r.buf[r.pos:] }

func (r *Reader) ReadUint8() uint8 {
	v := r.buf[r.pos]
	r.pos++
	return v
}

func (r *Reader) ReadBool() bool {
	return r.ReadUint8() != 0
}

func (r *Reader) ReadInt32() int32 {
	v := int32(binary.LittleEndian.Uint32(r.buf[r.pos : r.pos+4]))
	r.pos += 4
	return v
}

func (r *Reader) ReadUint32() uint32 {
	v := binary.LittleEndian.Uint32(r.buf[r.pos : r.pos+4])
	r.pos += 4
	return v
}

func (r *Reader) ReadInt64() int64 {
	v := int64(binary.LittleEndian.Uint64(r.buf[r.pos : r.pos+8]))
	r.pos += 8
	return v
}

func (r *Reader) ReadUint64() uint64 {
	v := binary.LittleEndian.Uint64(r.buf[r.pos : r.pos+8])
	r.pos += 8
	return v
}

func (r *Reader) ReadFloat32() float32 {
	return math.Float32frombits(r.ReadUint32())
}

func (r *Reader) ReadFloat64() float64 {
	return math.Float64frombits(r.ReadUint64())
}

// ReadString reads until the 0x00 sentinel and consumes it.
func (r *Reader) ReadString() string {
	start := r.pos
	for r.buf[r.pos] != 0 {
		r.pos++
	}
	s := string(r.buf[start:r.pos])
	r.pos++
	return s
}

// ReadLen reads a dynamic-array/map size prefix.
func (r *Reader) ReadLen() int {
	return int(r.ReadUint64())
}

// writeValue serializes v (a concrete, non-pointer reflect.Value) using the
// schema-directed rules of §4.1: bool, int8 and uint8 as one byte; int16,
// uint16, int32 and uint32 as four bytes (16-bit values are widened, not
// written at two bytes); int, uint, int64 and uint64 as eight bytes;
// float32 and float64 at their own width; strings NUL-terminated, slices and maps with a size
// prefix, structs as the plain concatenation of their exported fields
// (tuple encoding, no count prefix).
func writeValue(w *Writer, v reflect.Value) {
	switch v.Kind() {
	case reflect.Bool:
		w.WriteBool(v.Bool())
	case reflect.Int8:
		w.WriteUint8(uint8(v.Int()))
	case reflect.Uint8:
		w.WriteUint8(uint8(v.Uint()))
	case reflect.Int16, reflect.Int32:
		w.WriteInt32(int32(v.Int()))
	case reflect.Uint16, reflect.Uint32:
		w.WriteUint32(uint32(v.Uint()))
	case reflect.Int, reflect.Int64:
		w.WriteInt64(v.Int())
	case reflect.Uint, reflect.Uint64:
		w.WriteUint64(v.Uint())
	case reflect.Float32:
		w.WriteFloat32(float32(v.Float()))
	case reflect.Float64:
		w.WriteFloat64(v.Float())
	case reflect.String:
		w.WriteString(v.String())
	case reflect.Slice, reflect.Array:
		w.WriteLen(v.Len())
		for i := 0; i < v.Len(); i++ {
			writeValue(w, v.Index(i))
		}
	case reflect.Map:
		keys := v.MapKeys()
		w.WriteLen(len(keys))
		for _, k := range keys {
			writeValue(w, k)
			writeValue(w, v.MapIndex(k))
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if v.Type().Field(i).PkgPath != "" {
				continue // unexported, not part of the wire tuple
			}
			writeValue(w, v.Field(i))
		}
	case reflect.Ptr:
		// Object handles are a parameter/return-level concept (§4.1), not
		// something the generic tuple/slice/map codec recurses into; see
		// Handle and ReadHandle. A bare pointer reaching here means a
		// binding tried to nest one inside a struct or slice field, which
		// this codec does not support.
		panic("rcall: object handles must be declared via Handle/ReadHandle, not embedded in a struct or slice field")
	default:
		panic(fmt.Sprintf("rcall: codec cannot serialize %v", v.Kind()))
	}
}

// readValue deserializes into the addressable value pointed to by ptr.
func readValue(r *Reader, ptr reflect.Value) {
	v := ptr.Elem()
	switch v.Kind() {
	case reflect.Bool:
		v.SetBool(r.ReadBool())
	case reflect.Int8:
		v.SetInt(int64(int8(r.ReadUint8())))
	case reflect.Uint8:
		v.SetUint(uint64(r.ReadUint8()))
	case reflect.Int16, reflect.Int32:
		v.SetInt(int64(r.ReadInt32()))
	case reflect.Uint16, reflect.Uint32:
		v.SetUint(uint64(r.ReadUint32()))
	case reflect.Int, reflect.Int64:
		v.SetInt(r.ReadInt64())
	case reflect.Uint, reflect.Uint64:
		v.SetUint(r.ReadUint64())
	case reflect.Float32:
		v.SetFloat(float64(r.ReadFloat32()))
	case reflect.Float64:
		v.SetFloat(r.ReadFloat64())
	case reflect.String:
		v.SetString(r.ReadString())
	case reflect.Slice:
		n := r.ReadLen()
		s := reflect.MakeSlice(v.Type(), n, n)
		for i := 0; i < n; i++ {
			readValue(r, s.Index(i).Addr())
		}
		v.Set(s)
	case reflect.Map:
		n := r.ReadLen()
		m := reflect.MakeMapWithSize(v.Type(), n)
		kt := v.Type().Key()
		vt := v.Type().Elem()
		for i := 0; i < n; i++ {
			k := reflect.New(kt)
			readValue(r, k)
			val := reflect.New(vt)
			readValue(r, val)
			m.SetMapIndex(k.Elem(), val.Elem())
		}
		v.Set(m)
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if v.Type().Field(i).PkgPath != "" {
				continue
			}
			readValue(r, v.Field(i).Addr())
		}
	case reflect.Ptr:
		panic("rcall: object handles must be declared via Handle/ReadHandle, not embedded in a struct or slice field")
	default:
		panic(fmt.Sprintf("rcall: codec cannot deserialize %v", v.Kind()))
	}
}
