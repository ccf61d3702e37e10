package rcall

// CallKind discriminates the three request shapes on the wire (§6): a free
// function call, a method call on a live instance, or that instance's
// destruction.
type CallKind int

const (
	KindFunction CallKind = iota
	KindMethod
	KindDestroy
)

// CallDescriptor is the client-side call descriptor (C3/Glossary): a name,
// an ordered sequence of parameter descriptors, and a synchrony class
// computed at construction time. It lives for exactly one round trip.
type CallDescriptor struct {
	Kind CallKind

	// Name is the function name (KindFunction) or method name
	// (KindMethod); unused for KindDestroy.
	Name string

	// InstanceID addresses the target instance for KindMethod/KindDestroy.
	InstanceID string

	Params    []ParamDesc
	Synchrony Synchrony

	// ReturnsHandle is set when the call's declared return type is a
	// remote-object handle, recorded explicitly rather than inferred from
	// the Go return type. Invoke does not consult it: the client
	// identifier is written into every outgoing frame, whatever the
	// call's return type.
	ReturnsHandle bool
}

// NewFunctionCall builds a call descriptor for a free-function call.
func NewFunctionCall(name string, hasReturn, returnsHandle bool, params ...ParamDesc) *CallDescriptor {
	return &CallDescriptor{
		Kind:          KindFunction,
		Name:          name,
		Params:        params,
		Synchrony:     synchronyClass(params, hasReturn),
		ReturnsHandle: returnsHandle,
	}
}

// NewMethodCall builds a call descriptor for a method call on instanceID.
func NewMethodCall(instanceID, method string, hasReturn, returnsHandle bool, params ...ParamDesc) *CallDescriptor {
	return &CallDescriptor{
		Kind:          KindMethod,
		Name:          method,
		InstanceID:    instanceID,
		Params:        params,
		Synchrony:     synchronyClass(params, hasReturn),
		ReturnsHandle: returnsHandle,
	}
}

// NewDestroyCall builds the call descriptor for the destruction opcode.
func NewDestroyCall(instanceID string) *CallDescriptor {
	return &CallDescriptor{
		Kind:       KindDestroy,
		InstanceID: instanceID,
		Synchrony:  RequestReply,
	}
}

// ApplyInOut writes each in-out parameter's post-invocation value back into
// the caller's original storage slot. The server writes in-out parameters
// onto the wire in reverse declaration order after the return value (§4.4
// step 8), so the client reads them back in that same reverse order over
// the shared sequential cursor.
func (d *CallDescriptor) ApplyInOut(r *Reader) {
	for i := len(d.Params) - 1; i >= 0; i-- {
		if read := d.Params[i].read; read != nil {
			read(r)
		}
	}
}
