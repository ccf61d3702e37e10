package rcalltest

import "github.com/amarmer/RemoteCall/rcall"

// ctest is the server-side implementation behind the "CTest" class
// factory: a call counter plus the same append-and-measure behavior as
// Func1, exposed as a method instead of a function.
type ctest struct {
	calls int32
}

// Register binds every function and class in this package's worked
// example against srv. Call once during server setup, before srv starts
// processing requests (§5: the function table is read-only thereafter).
func Register(srv *rcall.Server) {
	srv.RegisterFunction("Func1", &rcall.FunctionRecord{Call: callFunc1})
	srv.RegisterFunction("Func2", &rcall.FunctionRecord{Call: callFunc2})
	srv.RegisterFunction("Func3", &rcall.FunctionRecord{Call: callFunc3})
	srv.RegisterFunction("Func4", &rcall.FunctionRecord{Call: callFunc4(srv)})

	srv.RegisterClass("CTest", &rcall.ClassRecord{
		New:          func() interface{} { return &ctest{} },
		ReapWhenIdle: true,
		RegisterMethods: func(reg *rcall.InstanceRegistry, ptr interface{}) {
			c := ptr.(*ctest)
			reg.AddMethod(ptr, "Method1", &rcall.MethodRecord{Call: c.callMethod1})
			reg.AddMethod(ptr, "Method2", &rcall.MethodRecord{Call: c.callMethod2})
			reg.AddMethod(ptr, "CallCount", &rcall.MethodRecord{Call: c.callCallCount})
		},
	})
	srv.RegisterClassFactory("NewCTest", "CTest")
}

// callFunc1 implements Func1(s string, c byte) -> int32: append c to s and
// return the new length, with s as an in-out parameter (§8 scenario S1).
func callFunc1(r *rcall.Reader, w *rcall.Writer, clientID string) error {
	s := r.ReadString()
	c := r.ReadUint8()

	s = s + string(c)

	w.WriteInt32(int32(len(s)))
	w.WriteString(s)
	return nil
}

// callFunc2 implements Func2(vABC []ABC, abc ABC) -> (int32, string): append
// abc to vABC, then fold the result into a sum of N and a concatenation of
// S, with vABC as an in-out parameter (§8 scenario S2).
func callFunc2(r *rcall.Reader, w *rcall.Writer, clientID string) error {
	var v []ABC
	rcall.ReadArg(r, &v)

	var abc ABC
	rcall.ReadArg(r, &abc)

	v = append(v, abc)

	var sum int32
	var s string
	for _, e := range v {
		sum += e.N
		s += e.S
	}

	w.WriteInt32(sum)
	w.WriteString(s)
	rcall.WriteArg(w, v)
	return nil
}

// callFunc3 implements Func3(m map[int32]string): unconditionally replace
// the contents of m, with m as an in-out parameter and no return value
// (§8 scenario S3).
func callFunc3(r *rcall.Reader, w *rcall.Writer, clientID string) error {
	var m map[int32]string
	rcall.ReadArg(r, &m)

	m = map[int32]string{1: "A", 2: "B"}

	rcall.WriteArg(w, m)
	return nil
}

// callMethod1 implements CTest::Method1(): no parameters, no return value,
// just a counter bump so tests can observe that it ran (§8 scenario S4).
func (c *ctest) callMethod1(r *rcall.Reader, w *rcall.Writer) error {
	c.calls++
	return nil
}

// callMethod2 implements CTest::Method2(s string, c byte) -> int32: the
// same shape as Func1, bound as a method instead of a function.
func (c *ctest) callMethod2(r *rcall.Reader, w *rcall.Writer) error {
	return callFunc1(r, w, "")
}

// callCallCount implements CTest::CallCount() -> int32, returning the
// instance's call counter so tests can observe the effect of a call that
// reached it indirectly, such as through Func4's handle argument.
func (c *ctest) callCallCount(r *rcall.Reader, w *rcall.Writer) error {
	w.WriteInt32(c.calls)
	return nil
}

// callFunc4 implements Func4(obj *CTest): a free function whose only
// parameter is a handle to an already-registered remote instance (§4.3
// rule 2, "raw pointer declared parameters are permitted only when the
// pointed-to type is a registered remote-interface type"). It looks the
// handle up in the same registry a method call would use and bumps that
// instance's counter directly, demonstrating that an object handle is a
// first-class argument value, not only a return value from a factory.
func callFunc4(srv *rcall.Server) func(r *rcall.Reader, w *rcall.Writer, clientID string) error {
	return func(r *rcall.Reader, w *rcall.Writer, clientID string) error {
		id := rcall.ReadHandle(r)

		inst, ok := srv.Registry.Get(id)
		if !ok {
			return &rcall.Exception{Kind: rcall.InvalidClassInstance, Message: "Func4: invalid handle " + id}
		}

		c, ok := inst.Ptr.(*ctest)
		if !ok {
			return &rcall.Exception{Kind: rcall.InvalidInterface, Message: "Func4: handle " + id + " is not a CTest"}
		}

		c.calls++
		return nil
	}
}
