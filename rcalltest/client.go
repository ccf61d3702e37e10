package rcalltest

import "github.com/amarmer/RemoteCall/rcall"

// Func1 calls the server's Func1(s, c): s is appended with c server-side
// and its new value is copied back; the return value is the new length.
func Func1(t rcall.Transport, clientID string, s *string, c byte) (int32, error) {
	d := rcall.NewFunctionCall("Func1", true, false, rcall.InOut(s), rcall.In(c))
	reply, err := rcall.Invoke(t, d, clientID)
	if err != nil {
		return 0, err
	}
	n := reply.ReadInt32()
	d.ApplyInOut(reply)
	return n, nil
}

// Func2 calls the server's Func2(vABC, abc): abc is appended to vABC
// server-side, and vABC is copied back; the return is (sum of N, the
// concatenation of every S).
func Func2(t rcall.Transport, clientID string, vABC *[]ABC, abc ABC) (int32, string, error) {
	d := rcall.NewFunctionCall("Func2", true, false, rcall.InOut(vABC), rcall.In(abc))
	reply, err := rcall.Invoke(t, d, clientID)
	if err != nil {
		return 0, "", err
	}
	sum := reply.ReadInt32()
	s := reply.ReadString()
	d.ApplyInOut(reply)
	return sum, s, nil
}

// Func3 calls the server's Func3(m): m is unconditionally replaced
// server-side and copied back.
func Func3(t rcall.Transport, clientID string, m *map[int32]string) error {
	d := rcall.NewFunctionCall("Func3", false, false, rcall.InOut(m))
	reply, err := rcall.Invoke(t, d, clientID)
	if err != nil {
		return err
	}
	d.ApplyInOut(reply)
	return nil
}

// Func4 calls the server's Func4(obj): obj's handle is passed as an input
// parameter (§4.3 rule 2) and the server bumps that instance's counter
// directly, rather than through its own Method1 call.
func Func4(t rcall.Transport, clientID string, obj *CTest) error {
	d := rcall.NewFunctionCall("Func4", false, false, rcall.Handle(obj.InstanceID))
	_, err := rcall.Invoke(t, d, clientID)
	return err
}

// CTest is the client-side proxy for a server-side CTest instance.
type CTest struct {
	rcall.ClientProxy
}

// NewCTest creates a CTest instance on the server and returns a proxy
// bound to it.
func NewCTest(t rcall.Transport, clientID string) (*CTest, error) {
	d := rcall.NewFunctionCall("NewCTest", true, true)
	reply, err := rcall.Invoke(t, d, clientID)
	if err != nil {
		return nil, err
	}
	id := rcall.ReadHandle(reply)
	return &CTest{ClientProxy: rcall.ClientProxy{Transport: t, InstanceID: id, ClientID: clientID}}, nil
}

// Method1 bumps the instance's call counter.
func (c *CTest) Method1() error {
	d := rcall.NewMethodCall(c.InstanceID, "Method1", false, false)
	_, err := rcall.Invoke(c.Transport, d, c.ClientID)
	return err
}

// Method2 is the method-bound equivalent of Func1.
func (c *CTest) Method2(s *string, ch byte) (int32, error) {
	d := rcall.NewMethodCall(c.InstanceID, "Method2", true, false, rcall.InOut(s), rcall.In(ch))
	reply, err := rcall.Invoke(c.Transport, d, c.ClientID)
	if err != nil {
		return 0, err
	}
	n := reply.ReadInt32()
	d.ApplyInOut(reply)
	return n, nil
}

// CallCount returns the instance's call counter, letting tests observe a
// bump that reached the instance indirectly (e.g. through Func4's handle
// argument) rather than through one of its own methods.
func (c *CTest) CallCount() (int32, error) {
	d := rcall.NewMethodCall(c.InstanceID, "CallCount", true, false)
	reply, err := rcall.Invoke(c.Transport, d, c.ClientID)
	if err != nil {
		return 0, err
	}
	return reply.ReadInt32(), nil
}
