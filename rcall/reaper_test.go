package rcall

import "testing"

func TestReaperTracksAndReapsByClient(t *testing.T) {
	reg := NewInstanceRegistry()
	rp := NewReaper(reg)

	o := &ctestReaps{}
	inst := reg.Add(o, "obj", true)
	rp.Track("client-a", inst)

	rp.Reap(func(id string) bool { return id != "client-a" })

	if !o.destroyed {
		t.Fatal("instance tracked under a dead client was not destroyed")
	}
	if _, ok := reg.Get(inst.ID); ok {
		t.Fatal("instance still present in registry after reap")
	}
}

func TestReaperLeavesLiveClientsAlone(t *testing.T) {
	reg := NewInstanceRegistry()
	rp := NewReaper(reg)

	o := &ctestReaps{}
	inst := reg.Add(o, "obj", true)
	rp.Track("client-a", inst)

	rp.Reap(func(id string) bool { return true })

	if o.destroyed {
		t.Fatal("instance destroyed despite its client still being alive")
	}
	if _, ok := reg.Get(inst.ID); !ok {
		t.Fatal("instance removed from registry despite its client still being alive")
	}
}
