package gc

import (
	"testing"

	"github.com/cwbudde/go-ejs/internal/ejsval"
)

func newBlock() *ejsval.Block { return ejsval.NewBlock(nil) }

func TestRegisterReturnsTrueAtQuota(t *testing.T) {
	c := NewCollector()
	c.workQuota = 2

	if c.Register(newBlock()) {
		t.Error("Register: quota exhausted after 1 of 2 allocations")
	}
	if !c.Register(newBlock()) {
		t.Error("Register: expected quota exhausted after 2 of 2 allocations")
	}
}

func TestCollectSweepsUnreachable(t *testing.T) {
	c := NewCollector()
	kept := newBlock()
	dropped := newBlock()
	c.Register(kept)
	c.Register(dropped)

	c.Collect(GenNew, []ejsval.Var{kept}, nil, nil)

	if len(c.gens[GenNew]) != 1 {
		t.Fatalf("after Collect, %d values remain in GenNew, want 1", len(c.gens[GenNew]))
	}
	if c.gens[GenNew][0] != ejsval.Var(kept) {
		t.Error("Collect swept the reachable value and kept the unreachable one")
	}
}

func TestCollectNeverSweepsPermanent(t *testing.T) {
	c := NewCollector()
	perm := newBlock()
	perm.Flags |= ejsval.FlagPermanent
	c.Register(perm)

	c.Collect(GenNew, nil, nil, nil)

	if len(c.gens[GenNew]) != 1 {
		t.Error("Collect swept a permanent value with no roots reaching it")
	}
}

func TestPromoteAndPermanentChangeGeneration(t *testing.T) {
	c := NewCollector()
	v := newBlock()
	c.Register(v)

	c.Promote(v)
	if v.Hdr().GCGen() != int(GenOld) {
		t.Errorf("Promote: GCGen() = %d, want %d", v.Hdr().GCGen(), GenOld)
	}

	c.Permanent(v)
	if v.Hdr().GCGen() != int(GenEternal) {
		t.Errorf("Permanent: GCGen() = %d, want %d", v.Hdr().GCGen(), GenEternal)
	}
}

func TestCollectMarksTransitiveChildrenViaMarkVar(t *testing.T) {
	c := NewCollector()
	blockType := ejsval.NewType("Block", nil, ejsval.DefaultBlockHelpers())
	disp := &ejsval.Dispatcher{}

	root := ejsval.NewBlock(blockType)
	root.Flags |= ejsval.FlagDynamic
	child := ejsval.NewBlock(blockType)
	if _, err := root.DefineProperty(-1, ejsval.Name{Name: "child"}, child); err != nil {
		t.Fatalf("DefineProperty: %v", err)
	}
	c.Register(root)
	c.Register(child)

	c.Collect(GenNew, []ejsval.Var{root}, disp, nil)

	if len(c.gens[GenNew]) != 2 {
		t.Fatalf("after Collect, %d values remain in GenNew, want 2 (root and its child reached via MarkVar)", len(c.gens[GenNew]))
	}
}

func TestPoolGetMissThenPutThenHit(t *testing.T) {
	c := NewCollector()
	ty := &ejsval.Type{}

	if _, ok := c.Get(ty); ok {
		t.Error("Get on an empty pool should miss")
	}
	c.Put(ty, "reusable")
	v, ok := c.Get(ty)
	if !ok || v != "reusable" {
		t.Errorf("Get after Put = (%v, %v), want (\"reusable\", true)", v, ok)
	}

	stats := c.Snapshot()
	if stats.PoolHits != 1 || stats.PoolMisses != 1 {
		t.Errorf("Snapshot PoolHits/PoolMisses = %d/%d, want 1/1", stats.PoolHits, stats.PoolMisses)
	}
}

func TestNotifyRunsAfterCollect(t *testing.T) {
	c := NewCollector()
	called := false
	c.Notify = func(Stats) { called = true }

	c.Collect(GenNew, nil, nil, nil)

	if !called {
		t.Error("Notify was not invoked after Collect")
	}
}
