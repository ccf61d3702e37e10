package rcalltest

import (
	"net"
	"testing"

	"github.com/amarmer/RemoteCall/internal/looptrans"
	"github.com/amarmer/RemoteCall/rcall"
)

func newPipe(t *testing.T) rcall.Transport {
	t.Helper()
	srv := rcall.NewServer()
	Register(srv)

	client, server := net.Pipe()
	t.Cleanup(func() { client.Close() })
	go looptrans.ServeConn(server, srv, nil)

	return looptrans.Dial(client, "")
}

func TestFunc1AppendsCharAndReturnsLength(t *testing.T) {
	tr := newPipe(t)
	s := "ABC"
	n, err := Func1(tr, "", &s, '!')
	if err != nil {
		t.Fatalf("Func1: %v", err)
	}
	if n != 4 || s != "ABC!" {
		t.Fatalf("Func1 = (%d, %q), want (4, %q)", n, s, "ABC!")
	}
}

func TestFunc2AppendsAndFolds(t *testing.T) {
	tr := newPipe(t)
	v := []ABC{{S: "X", N: 1}, {S: "Y", N: 2}}
	sum, s, err := Func2(tr, "", &v, ABC{S: "Z", N: 3})
	if err != nil {
		t.Fatalf("Func2: %v", err)
	}
	if sum != 6 || s != "XYZ" {
		t.Fatalf("Func2 = (%d, %q), want (6, %q)", sum, s, "XYZ")
	}
	want := []ABC{{S: "X", N: 1}, {S: "Y", N: 2}, {S: "Z", N: 3}}
	if len(v) != len(want) {
		t.Fatalf("vABC = %+v, want %+v", v, want)
	}
	for i := range want {
		if v[i] != want[i] {
			t.Fatalf("vABC[%d] = %+v, want %+v", i, v[i], want[i])
		}
	}
}

func TestFunc3ReplacesMap(t *testing.T) {
	tr := newPipe(t)
	m := map[int32]string{9: "stale"}
	if err := Func3(tr, "", &m); err != nil {
		t.Fatalf("Func3: %v", err)
	}
	want := map[int32]string{1: "A", 2: "B"}
	if len(m) != len(want) || m[1] != "A" || m[2] != "B" {
		t.Fatalf("m = %v, want %v", m, want)
	}
}

func TestCTestMethodSequence(t *testing.T) {
	tr := newPipe(t)
	obj, err := NewCTest(tr, "")
	if err != nil {
		t.Fatalf("NewCTest: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := obj.Method1(); err != nil {
			t.Fatalf("Method1 call %d: %v", i, err)
		}
	}

	s := "abc"
	n, err := obj.Method2(&s, '!')
	if err != nil {
		t.Fatalf("Method2: %v", err)
	}
	if n != 4 || s != "abc!" {
		t.Fatalf("Method2 = (%d, %q), want (4, %q)", n, s, "abc!")
	}
}

func TestFunc4BumpsInstanceThroughHandleArgument(t *testing.T) {
	tr := newPipe(t)
	obj, err := NewCTest(tr, "")
	if err != nil {
		t.Fatalf("NewCTest: %v", err)
	}

	if err := Func4(tr, "", obj); err != nil {
		t.Fatalf("Func4: %v", err)
	}

	n, err := obj.CallCount()
	if err != nil {
		t.Fatalf("CallCount: %v", err)
	}
	if n != 1 {
		t.Fatalf("CallCount = %d, want 1", n)
	}
}

func TestCTestReapedOnDeadClientThroughFactory(t *testing.T) {
	srv := rcall.NewServer()
	Register(srv)

	client, server := net.Pipe()
	t.Cleanup(func() { client.Close() })

	alive := true
	liveness := func(id string) bool { return alive }
	go looptrans.ServeConn(server, srv, liveness)

	tr := looptrans.Dial(client, "integration-client")

	// NewCTest goes through the wire and the RegisterClassFactory path
	// (rather than srv.CreateInstance directly), so this is the same route
	// a real client takes: client-affinity tracking must happen there too.
	obj, err := NewCTest(tr, "integration-client")
	if err != nil {
		t.Fatalf("NewCTest: %v", err)
	}

	if _, ok := srv.Registry.Get(obj.InstanceID); !ok {
		t.Fatalf("instance %s missing from the registry right after creation", obj.InstanceID)
	}

	alive = false
	// Reaping is opportunistic (§4.5 step 2): this call's own Process pass
	// notices integration-client is now dead and reaps before dispatching.
	err = obj.Method1()
	if ex, ok := err.(*rcall.Exception); !ok || ex.Kind != rcall.InvalidClassInstance {
		t.Fatalf("Method1 after client death = %v, want InvalidClassInstance", err)
	}

	if _, ok := srv.Registry.Get(obj.InstanceID); ok {
		t.Fatal("instance still present in the registry after its client went dead")
	}
}

func TestCTestDestroyThenCallIsInvalidInstance(t *testing.T) {
	tr := newPipe(t)
	obj, err := NewCTest(tr, "")
	if err != nil {
		t.Fatalf("NewCTest: %v", err)
	}

	if err := obj.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	err = obj.Method1()
	ex, ok := err.(*rcall.Exception)
	if !ok || ex.Kind != rcall.InvalidClassInstance {
		t.Fatalf("Method1 after Destroy = %v, want InvalidClassInstance", err)
	}
}
