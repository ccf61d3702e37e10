package rcall

import "testing"

// directTransport drives a Server in the same goroutine, standing in for
// a real wire transport in tests that only care about dispatch semantics.
type directTransport struct {
	srv      *Server
	liveness func(string) bool
}

func (d *directTransport) SendReceive(req []byte) ([]byte, error) {
	return d.srv.Process(req, d.liveness), nil
}

func alwaysAlive(string) bool { return true }

// registerFunc1 binds a function equivalent to S1: appends c to s and
// returns the new length; s is in-out.
func registerFunc1(srv *Server) {
	srv.RegisterFunction("Func1", &FunctionRecord{
		Call: func(r *Reader, w *Writer, clientID string) error {
			s := r.ReadString()
			c := r.ReadUint8()
			s = s + string(c)
			w.WriteInt32(int32(len(s)))
			w.WriteString(s)
			return nil
		},
	})
}

func TestFunc1AppendsAndReturnsLength(t *testing.T) {
	srv := NewServer()
	registerFunc1(srv)
	tr := &directTransport{srv: srv, liveness: alwaysAlive}

	s := "ABC"
	d := NewFunctionCall("Func1", true, false, InOut(&s), In(byte('!')))
	reply, err := Invoke(tr, d, "")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	ret := reply.ReadInt32()
	d.ApplyInOut(reply)

	if ret != 4 {
		t.Errorf("return = %d, want 4", ret)
	}
	if s != "ABC!" {
		t.Errorf("s = %q, want %q", s, "ABC!")
	}
}

// ctest is the worked CTest-equivalent instance backing the method-call
// scenarios (S4, S5).
type ctest struct {
	calls int32
}

func registerCTest(srv *Server) {
	srv.RegisterClass("CTest", &ClassRecord{
		New:          func() interface{} { return &ctest{} },
		ReapWhenIdle: false,
		RegisterMethods: func(reg *InstanceRegistry, ptr interface{}) {
			c := ptr.(*ctest)
			reg.AddMethod(ptr, "Method1", &MethodRecord{
				Call: func(r *Reader, w *Writer) error {
					c.calls++
					return nil
				},
			})
			reg.AddMethod(ptr, "Method2", &MethodRecord{
				Call: func(r *Reader, w *Writer) error {
					s := r.ReadString()
					ch := r.ReadUint8()
					s = s + string(ch)
					w.WriteInt32(int32(len(s)))
					w.WriteString(s)
					return nil
				},
			})
		},
	})
}

func TestMethodCallsAgainstALiveInstance(t *testing.T) {
	srv := NewServer()
	registerCTest(srv)

	inst, err := srv.CreateInstance("CTest")
	if err != nil {
		t.Fatalf("CreateInstance: %v", err)
	}

	tr := &directTransport{srv: srv, liveness: alwaysAlive}

	for i := 0; i < 3; i++ {
		d := NewMethodCall(inst.ID, "Method1", false, false)
		if _, err := Invoke(tr, d, ""); err != nil {
			t.Fatalf("Method1 call %d: %v", i, err)
		}
	}
	if inst.Ptr.(*ctest).calls != 3 {
		t.Fatalf("calls = %d, want 3", inst.Ptr.(*ctest).calls)
	}

	s := "abc"
	d := NewMethodCall(inst.ID, "Method2", true, false, InOut(&s), In(byte('!')))
	reply, err := Invoke(tr, d, "")
	if err != nil {
		t.Fatalf("Method2: %v", err)
	}
	ret := reply.ReadInt32()
	d.ApplyInOut(reply)

	if ret != 4 || s != "abc!" {
		t.Errorf("Method2 = (%d, %q), want (4, %q)", ret, s, "abc!")
	}
}

func TestDestroyThenMethodCallIsInvalidInstance(t *testing.T) {
	srv := NewServer()
	registerCTest(srv)
	inst, _ := srv.CreateInstance("CTest")
	tr := &directTransport{srv: srv, liveness: alwaysAlive}

	if err := (&ClientProxy{Transport: tr, InstanceID: inst.ID}).Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	d := NewMethodCall(inst.ID, "Method1", false, false)
	_, err := Invoke(tr, d, "")
	ex, ok := err.(*Exception)
	if !ok || ex.Kind != InvalidClassInstance {
		t.Fatalf("err = %v, want InvalidClassInstance", err)
	}
}

func TestMethodCallOnFabricatedIdentifierFails(t *testing.T) {
	srv := NewServer()
	registerCTest(srv)
	tr := &directTransport{srv: srv, liveness: alwaysAlive}

	d := NewMethodCall("0:999999", "Method1", false, false)
	_, err := Invoke(tr, d, "")
	ex, ok := err.(*Exception)
	if !ok || ex.Kind != InvalidClassInstance {
		t.Fatalf("err = %v, want InvalidClassInstance", err)
	}
}

func TestUnknownMethodIsWireEncodedException(t *testing.T) {
	srv := NewServer()
	registerCTest(srv)
	inst, _ := srv.CreateInstance("CTest")
	tr := &directTransport{srv: srv, liveness: alwaysAlive}

	d := NewMethodCall(inst.ID, "NoSuchMethod", false, false)
	_, err := Invoke(tr, d, "")
	ex, ok := err.(*Exception)
	if !ok {
		t.Fatalf("err = %v (%T), want a properly decoded *Exception, not a bare string", err, err)
	}
	if ex.Kind != InvalidMethod {
		t.Errorf("Kind = %v, want InvalidMethod", ex.Kind)
	}
}

func TestUnknownFunctionIsInvalidFunction(t *testing.T) {
	srv := NewServer()
	tr := &directTransport{srv: srv, liveness: alwaysAlive}

	d := NewFunctionCall("NoSuchFunc", false, false)
	_, err := Invoke(tr, d, "")
	ex, ok := err.(*Exception)
	if !ok || ex.Kind != InvalidFunction {
		t.Fatalf("err = %v, want InvalidFunction", err)
	}
}

func TestCalleePanicBecomesServerError(t *testing.T) {
	srv := NewServer()
	srv.RegisterFunction("Boom", &FunctionRecord{
		Call: func(r *Reader, w *Writer, clientID string) error {
			panic("kaboom")
		},
	})
	tr := &directTransport{srv: srv, liveness: alwaysAlive}

	d := NewFunctionCall("Boom", false, false)
	_, err := Invoke(tr, d, "")
	ex, ok := err.(*Exception)
	if !ok || ex.Kind != ServerError {
		t.Fatalf("err = %v, want ServerError", err)
	}
}

type ctestReaps struct {
	destroyed bool
}

func (c *ctestReaps) RemoteCallDestroy() { c.destroyed = true }

func TestReapWhenIdleDestroysInstanceOnDeadClient(t *testing.T) {
	srv := NewServer()
	srv.RegisterClass("CTest", &ClassRecord{
		New:          func() interface{} { return &ctestReaps{} },
		ReapWhenIdle: true,
		RegisterMethods: func(reg *InstanceRegistry, ptr interface{}) {
			reg.AddMethod(ptr, "Method1", &MethodRecord{
				Call: func(r *Reader, w *Writer) error { return nil },
			})
		},
	})

	srv.RegisterFunction("__noop__", &FunctionRecord{
		Call: func(r *Reader, w *Writer, clientID string) error { return nil },
	})

	inst, err := srv.CreateInstance("CTest")
	if err != nil {
		t.Fatalf("CreateInstance: %v", err)
	}

	clientAlive := true
	tr := &directTransport{srv: srv, liveness: func(id string) bool { return clientAlive }}

	d := NewMethodCall(inst.ID, "Method1", false, false)
	if _, err := Invoke(tr, d, "clientA"); err != nil {
		t.Fatalf("Method1: %v", err)
	}

	clientAlive = false
	// Any subsequent call opportunistically runs the reaper (§4.5 step 2),
	// even one from an unrelated client.
	d2 := NewFunctionCall("__noop__", false, false)
	if _, err := Invoke(tr, d2, "clientB"); err != nil {
		t.Fatalf("noop call: %v", err)
	}

	if !inst.Ptr.(*ctestReaps).destroyed {
		t.Fatal("reap-when-idle instance was not destroyed after its client went dead")
	}

	if _, ok := srv.Registry.Get(inst.ID); ok {
		t.Fatal("instance is still present in the registry after reaping")
	}
}
