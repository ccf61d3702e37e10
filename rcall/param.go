package rcall

import "reflect"

// Direction records whether a declared parameter is input-only or in-out
// (§4.3).
type Direction int

const (
	DirIn Direction = iota
	DirInOut
)

// ParamDesc is a type-erased parameter descriptor: it borrows the caller's
// storage slot for the duration of one call, carrying a writer closure that
// always runs and a reader closure present iff the parameter is in-out
// (§3, §4.3).
type ParamDesc struct {
	dir   Direction
	write func(w *Writer)
	read  func(r *Reader) // nil unless dir == DirInOut
}

// Direction reports whether this parameter is input-only or in-out.
func (p ParamDesc) Direction() Direction { return p.dir }

// In builds an input-only parameter descriptor around v's current value. v
// may be any value convertible by the codec (§4.1); the caller need not
// supply an addressable slot since nothing is written back.
func In(v interface{}) ParamDesc {
	rv := reflect.ValueOf(v)
	return ParamDesc{
		dir:   DirIn,
		write: func(w *Writer) { writeValue(w, rv) },
	}
}

// InOut builds an in-out parameter descriptor. ptr must be a non-nil
// pointer to the caller's storage slot: its current value is written as
// the request argument, and after the reply arrives it is overwritten with
// the server's post-invocation value (§4.3 rule 4, §4.4 step 8).
func InOut(ptr interface{}) ParamDesc {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		panic("rcall: InOut requires a non-nil pointer to the caller's storage")
	}
	return ParamDesc{
		dir:   DirInOut,
		write: func(w *Writer) { writeValue(w, rv.Elem()) },
		read:  func(r *Reader) { readValue(r, rv) },
	}
}

// Handle builds an input-only parameter descriptor for a remote-object
// argument (§4.3 rule 2): id is the empty string for a null handle.
func Handle(id string) ParamDesc {
	return ParamDesc{
		dir:   DirIn,
		write: func(w *Writer) { w.WriteString(id) },
	}
}
