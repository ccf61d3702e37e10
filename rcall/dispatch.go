package rcall

import (
	"fmt"

	"github.com/amarmer/RemoteCall/pkg/rlog"
)

// Server is the dispatch entry point (C6): a read-only-after-init function
// table plus the live-instance registry and its reaper. The function
// table is built during registration and never mutated again, matching
// §5's "built during process init and read-only thereafter" — a factory
// that constructs remote objects is registered here like any other
// function, just one whose FunctionRecord writes an instance identifier
// as its return value; the wire grammar (§6) has no separate "create
// class" request shape, so this core does not need one either.
type Server struct {
	functions map[string]*FunctionRecord
	classes   map[string]*ClassRecord
	Registry  *InstanceRegistry
	Reaper    *Reaper
}

// ClassRecord is what RegisterClass binds: a constructor for the raw Go
// value plus the closure that attaches its method dispatchers once it has
// been registered (§4.8 "automatic registration of the implementing
// class's method records with the instance registry when an instance is
// constructed").
type ClassRecord struct {
	New             func() interface{}
	ReapWhenIdle    bool
	RegisterMethods func(reg *InstanceRegistry, ptr interface{})
}

// NewServer returns a dispatcher with empty tables.
func NewServer() *Server {
	registry := NewInstanceRegistry()
	return &Server{
		functions: make(map[string]*FunctionRecord),
		classes:   make(map[string]*ClassRecord),
		Registry:  registry,
		Reaper:    NewReaper(registry),
	}
}

// RegisterFunction binds name to rec. Call during process init, before any
// Process call can observe name; concurrent registration and dispatch is
// not supported, matching the source's read-only-after-init table.
func (s *Server) RegisterFunction(name string, rec *FunctionRecord) {
	s.functions[name] = rec
}

// RegisterClass binds a class factory name to rec.
func (s *Server) RegisterClass(name string, rec *ClassRecord) {
	s.classes[name] = rec
}

// RegisterClassFactory exposes className's constructor on the wire as an
// ordinary function called funcName, whose only declared parameter-less
// job is to construct an instance and return its identifier as an object
// handle. RegisterClass and RegisterClassFactory are normally called
// together for any class a client is meant to be able to create remotely.
//
// A newly constructed instance is tracked for client-affinity reaping
// here, not by invoke's generic inst-tracking path (§4.7): invoke only
// knows about an instance a method call already addresses, but a factory
// call's instance doesn't exist until this Call closure runs.
func (s *Server) RegisterClassFactory(funcName, className string) {
	s.RegisterFunction(funcName, &FunctionRecord{
		Call: func(r *Reader, w *Writer, clientID string) error {
			inst, err := s.CreateInstance(className)
			if err != nil {
				return err
			}
			WriteHandle(w, inst.ID)
			if inst.reapWhenIdle && clientID != "" {
				s.Reaper.Track(clientID, inst)
			}
			return nil
		},
	})
}

// CreateInstance runs a registered class factory directly, bypassing the
// wire — used by RegisterFunction-style factory functions that return a
// handle to a newly constructed instance (§4.8).
func (s *Server) CreateInstance(className string) (*Instance, error) {
	rec, ok := s.classes[className]
	if !ok {
		return nil, &Exception{Kind: InvalidFunction, Message: fmt.Sprintf("class %s is not registered", className)}
	}
	ptr := rec.New()
	inst := s.Registry.Add(ptr, className, rec.ReapWhenIdle)
	rec.RegisterMethods(s.Registry, ptr)
	return inst, nil
}

// Process is the dispatch entry point (§4.5, §6): decode the client
// identifier and opportunistically reap, classify the request by peeking
// its first remaining byte, resolve the callee, invoke it, and return the
// encoded reply. liveness may be nil to skip reaping (e.g. a transport
// with no notion of client identity).
func (s *Server) Process(in []byte, liveness func(clientID string) bool) []byte {
	r := NewReader(in)
	clientID := r.ReadString()

	if liveness != nil {
		s.Reaper.Reap(liveness)
	}

	w := NewWriter()

	b, ok := r.Peek()
	if ok && b >= '0' && b <= '9' {
		s.processInstanceCall(r, w, clientID)
	} else {
		s.processFunctionCall(r, w, clientID)
	}

	return w.Bytes()
}

func (s *Server) processFunctionCall(r *Reader, w *Writer, clientID string) {
	name := r.ReadString()

	rec, ok := s.functions[name]
	if !ok {
		rlog.Warn("rcall: function %s is not implemented", name)
		writeException(w, &Exception{Kind: InvalidFunction, Message: fmt.Sprintf("function %s is not implemented", name)})
		return
	}

	s.invoke(w, func(w *Writer) error { return rec.Call(r, w, clientID) }, name, clientID, nil)
}

func (s *Server) processInstanceCall(r *Reader, w *Writer, clientID string) {
	id := r.ReadString()

	if b, ok := r.Peek(); ok && b == '~' {
		r.ReadString() // consume the literal "~" marker
		if s.Registry.Destroy(id) {
			writeNoException(w)
		} else {
			rlog.Warn("rcall: destroy of invalid class instance %s", id)
			writeException(w, &Exception{Kind: InvalidClassInstance, Message: fmt.Sprintf("invalid class instance %s", id)})
		}
		return
	}

	inst, methods, ok := s.Registry.MethodTable(id)
	if !ok {
		rlog.Warn("rcall: invalid class instance %s", id)
		writeException(w, &Exception{Kind: InvalidClassInstance, Message: fmt.Sprintf("invalid class instance %s", id)})
		return
	}

	method := r.ReadString()
	rec, ok := methods[method]
	if !ok {
		rlog.Warn("rcall: method %s::%s is not implemented", inst.Name, method)
		writeException(w, &Exception{Kind: InvalidMethod, Message: fmt.Sprintf("method %s::%s is not implemented", inst.Name, method)})
		return
	}

	inst.enter()
	defer inst.release()

	s.invoke(w, func(w *Writer) error { return rec.Call(r, w) }, method, clientID, inst)
}

// invoke runs call, on success tracking the addressed instance inst for
// client-affinity reaping when it is reap-when-idle and clientID is
// non-empty, and converts a panic or error raised by the
// callee into a ServerError exception (§4.2, §4.5 step 4/5, §7): the
// reply buffer built so far is discarded so a partial return value never
// reaches the client.
func (s *Server) invoke(w *Writer, call func(w *Writer) error, name, clientID string, inst *Instance) {
	inner := NewWriter()

	err := s.runProtected(call, inner)
	if err != nil {
		if ex, ok := err.(*Exception); ok {
			// The callee itself raised a taxonomy exception (e.g. a
			// factory rejecting an unregistered class name); preserve its
			// kind rather than flattening it into ServerError.
			rlog.Warn("rcall: %s: %s", name, ex.Error())
			writeException(w, ex)
			return
		}
		rlog.Warn("rcall: exception in %s: %s", name, err.Error())
		writeException(w, &Exception{
			Kind:    ServerError,
			Message: fmt.Sprintf("exception in %s: %s", name, err.Error()),
		})
		return
	}

	writeNoException(w)
	w.Append(inner.Bytes())

	if inst != nil && inst.reapWhenIdle && clientID != "" {
		s.Reaper.Track(clientID, inst)
	}
}

func (s *Server) runProtected(call func(w *Writer) error, w *Writer) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%v", p)
		}
	}()
	return call(w)
}
