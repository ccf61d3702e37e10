package rcall

import "sync"

// Reaper is the client-affinity table (C8, §4.7): which instances were
// handed out to which client, so that when a client disconnects without
// ever destroying them explicitly, they are reclaimed anyway.
//
// Grounded on the periodic-sweep-under-a-lock shape of the teacher's
// client reaper (internal/ron Server.clientReaper), generalized here from
// a fixed timer tick to a caller-driven liveness predicate (§4.5 step 2:
// dispatch opportunistically runs the reaper on every call rather than on
// its own goroutine, since the core spawns no threads of its own, §5).
type Reaper struct {
	mu       sync.Mutex
	byClient map[string]map[*Instance]struct{}
	registry *InstanceRegistry
}

// NewReaper ties a Reaper to the registry whose entries it reaps.
func NewReaper(registry *InstanceRegistry) *Reaper {
	return &Reaper{
		byClient: make(map[string]map[*Instance]struct{}),
		registry: registry,
	}
}

// Track records that clientID is using inst; the dispatcher calls it after
// a successful method call addressed at inst. Only called when
// inst.reapWhenIdle is set and clientID is non-empty (§4.7).
func (rp *Reaper) Track(clientID string, inst *Instance) {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	set, ok := rp.byClient[clientID]
	if !ok {
		set = make(map[*Instance]struct{})
		rp.byClient[clientID] = set
	}
	set[inst] = struct{}{}
}

// Reap drops every client for which liveness reports false, and for each
// of its tracked instances removes it from the registry and releases the
// registry's hold, which finalizes the instance once no in-flight method
// call still holds it (§4.7).
func (rp *Reaper) Reap(liveness func(clientID string) bool) {
	rp.mu.Lock()
	dead := make([]string, 0)
	for clientID := range rp.byClient {
		if !liveness(clientID) {
			dead = append(dead, clientID)
		}
	}
	instances := make([]*Instance, 0)
	for _, clientID := range dead {
		set := rp.byClient[clientID]
		delete(rp.byClient, clientID)
		for inst := range set {
			instances = append(instances, inst)
		}
	}
	rp.mu.Unlock()

	for _, inst := range instances {
		if _, ok := rp.registry.RemoveByID(inst.ID); ok {
			inst.release()
		}
	}
}
