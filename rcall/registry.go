package rcall

import "sync"

// Destroyer is the optional interface a registered remote-interface
// implementation can satisfy to receive a teardown callback when its
// instance is actually discarded — the Go analogue of the source's
// `delete pInterface` (§4.6, §4.7). Types that hold no resources beyond
// what the garbage collector already reclaims need not implement it.
type Destroyer interface {
	RemoteCallDestroy()
}

// Instance is one live registered remote object (§3 Remote instance).
type Instance struct {
	ID   string
	Ptr  interface{}
	Name string // registered class/interface name, for error messages

	mu               sync.Mutex
	methods          map[string]*MethodRecord
	refcount         int32
	reapWhenIdle     bool
	destroyRequested bool
}

// MethodRecord is the typed per-callee dispatcher for one method (§4.5
// "Typed dispatcher"): it reads arguments off the wire, invokes the bound
// method, and writes the return value and any in-out parameters back.
type MethodRecord struct {
	Call func(r *Reader, w *Writer) error
}

// FunctionRecord is the analogous dispatcher for a free function. Unlike a
// MethodRecord, it also receives the calling clientID directly: a function
// call is the only point at which a brand-new instance can come into
// existence (§4.8 class-factory functions), and only the Call closure
// itself knows whether the instance it just created should be tracked for
// client-affinity reaping (§4.7) — by the time invoke would otherwise see
// an instance, a method call already carries one, but a factory's instance
// doesn't exist until Call runs.
type FunctionRecord struct {
	Call func(r *Reader, w *Writer, clientID string) error
}

// enter acquires a scoped refcount bump for the duration of one method
// invocation (§4.7, §5 "Invocation safety"): concurrent reaping cannot
// finalize an instance while any call holds one of these.
func (inst *Instance) enter() {
	inst.mu.Lock()
	inst.refcount++
	inst.mu.Unlock()
}

// release gives back the scoped bump acquired by enter, or the registry's
// own baseline hold. When the count reaches zero and either the
// reap-when-idle flag is set or an explicit destroy was requested earlier
// while calls were still in flight, the instance is finalized.
func (inst *Instance) release() {
	inst.mu.Lock()
	inst.refcount--
	shouldDestroy := inst.refcount == 0 && (inst.reapWhenIdle || inst.destroyRequested)
	inst.mu.Unlock()

	if shouldDestroy {
		if d, ok := inst.Ptr.(Destroyer); ok {
			d.RemoteCallDestroy()
		}
	}
}

// InstanceRegistry is the server-side live-instance table (C7): an
// identifier→instance map and an instance→method-table map, updated together. The
// source protects both with one reentrant mutex because tearing down one
// instance can register or remove another from within the same call
// stack; this implementation instead keeps the lock scope to the map
// mutation itself and runs destroy callbacks after releasing it, which
// gives the same non-reentrancy-is-never-needed property without a
// recursive lock (Go's sync.Mutex has none).
type InstanceRegistry struct {
	mu    sync.Mutex
	byID  map[string]*Instance
	byPtr map[interface{}]*Instance
}

// NewInstanceRegistry returns an empty registry.
func NewInstanceRegistry() *InstanceRegistry {
	return &InstanceRegistry{
		byID:  make(map[string]*Instance),
		byPtr: make(map[interface{}]*Instance),
	}
}

// Add registers a freshly constructed instance, called from the factory
// that builds ptr (§3: "born when the server constructs it"). The
// registry's own reference counts as the baseline hold (refcount 1).
func (reg *InstanceRegistry) Add(ptr interface{}, name string, reapWhenIdle bool) *Instance {
	inst := &Instance{
		ID:           NewInstanceID(),
		Ptr:          ptr,
		Name:         name,
		methods:      make(map[string]*MethodRecord),
		refcount:     1,
		reapWhenIdle: reapWhenIdle,
	}

	reg.mu.Lock()
	reg.byID[inst.ID] = inst
	reg.byPtr[ptr] = inst
	reg.mu.Unlock()

	return inst
}

// AddMethod registers method name's dispatcher against the instance
// already registered for ptr.
func (reg *InstanceRegistry) AddMethod(ptr interface{}, name string, rec *MethodRecord) {
	reg.mu.Lock()
	inst := reg.byPtr[ptr]
	reg.mu.Unlock()

	if inst == nil {
		panic("rcall: AddMethod called before the instance was registered")
	}

	inst.mu.Lock()
	inst.methods[name] = rec
	inst.mu.Unlock()
}

// Get looks up a live instance by id.
func (reg *InstanceRegistry) Get(id string) (*Instance, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	inst, ok := reg.byID[id]
	return inst, ok
}

// MethodTable returns inst's method name → record table for a live
// instance id.
func (reg *InstanceRegistry) MethodTable(id string) (*Instance, map[string]*MethodRecord, bool) {
	inst, ok := reg.Get(id)
	if !ok {
		return nil, nil, false
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return inst, inst.methods, true
}

// RemoveByID removes id from both maps and returns the instance that was
// registered under it, if any (§4.5 destruction path, §4.7 reaper).
func (reg *InstanceRegistry) RemoveByID(id string) (*Instance, bool) {
	reg.mu.Lock()
	inst, ok := reg.byID[id]
	if ok {
		delete(reg.byID, id)
		delete(reg.byPtr, inst.Ptr)
	}
	reg.mu.Unlock()
	return inst, ok
}

// RemoveByPointer is the symmetric lookup/removal keyed by the Go value
// identity rather than the wire identifier.
func (reg *InstanceRegistry) RemoveByPointer(ptr interface{}) (*Instance, bool) {
	reg.mu.Lock()
	inst, ok := reg.byPtr[ptr]
	if ok {
		delete(reg.byID, inst.ID)
		delete(reg.byPtr, ptr)
	}
	reg.mu.Unlock()
	return inst, ok
}

// Destroy implements the '~' opcode (§4.5 step 5): remove the instance
// unconditionally, and finalize it as soon as no in-flight call still
// holds it, regardless of its reap-when-idle flag.
func (reg *InstanceRegistry) Destroy(id string) bool {
	inst, ok := reg.RemoveByID(id)
	if !ok {
		return false
	}
	inst.mu.Lock()
	inst.destroyRequested = true
	inst.mu.Unlock()
	inst.release() // drop the registry's own baseline hold
	return true
}
