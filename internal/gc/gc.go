// Package gc implements the generational collector described in §4.7:
// three generations (new/old/eternal), a work quota that triggers a
// collection once enough allocation has happened, and a per-type free
// pool grounded on the teacher's sync.Pool value pooling
// (internal/interp/runtime/pool.go) — generalized here from three fixed
// primitive types to one pool per ejsval.Type, since the value model this
// collector serves is dynamically typed rather than a closed value enum.
package gc

import (
	"sync"
	"sync/atomic"

	"github.com/cwbudde/go-ejs/internal/ejsval"
)

// Generation identifies which of the three generations a value lives in
// (§4.7).
type Generation int

const (
	GenNew Generation = iota
	GenOld
	GenEternal
)

// workQuotaDefault is the number of allocations between collections
// before the VM's attention flag is set (§4.7, §5).
const workQuotaDefault = 4096

// Collector owns the generation lists and per-type pools for one
// Interpreter. It never runs concurrently with its VM: collection only
// happens at an instruction boundary when the VM observes Attention set
// (§4.5, §4.7 "single-threaded per interpreter").
type Collector struct {
	mu sync.Mutex

	gens      [3][]ejsval.Var
	workQuota int
	workDone  int

	pools map[*ejsval.Type]*sync.Pool

	stats counters

	// Enabled gates whether the owning interpreter's VM.Attention check
	// triggers an automatic collection; force via Collect regardless.
	Enabled bool

	// Notify, if set, runs after every Collect cycle with the latest
	// counters (§6.3 "Set allocation notifier").
	Notify func(Stats)
}

// counters holds the atomic allocation/collection/pool tallies; Stats
// (below) is the plain-value snapshot handed out to callers so copying it
// doesn't trip go vet's copylocks check.
type counters struct {
	Allocs     atomic.Uint64
	Collects   atomic.Uint64
	Freed      atomic.Uint64
	PoolHits   atomic.Uint64
	PoolMisses atomic.Uint64
}

type Stats struct {
	Allocs     uint64
	Collects   uint64
	Freed      uint64
	PoolHits   uint64
	PoolMisses uint64
}

func NewCollector() *Collector {
	return &Collector{
		workQuota: workQuotaDefault,
		pools:     make(map[*ejsval.Type]*sync.Pool),
		Enabled:   true,
	}
}

// Register adds v to the new generation and counts it against the work
// quota, returning true once the quota is exhausted (the caller sets the
// VM's Attention flag on true, per §4.5's per-instruction check).
func (c *Collector) Register(v ejsval.Var) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	v.Hdr().SetGCGen(int(GenNew))
	c.gens[GenNew] = append(c.gens[GenNew], v)
	c.stats.Allocs.Add(1)
	c.workDone++
	return c.workDone >= c.workQuota
}

// Promote moves v from New to Old after it survives one collection
// (§4.7's generational promotion rule).
func (c *Collector) Promote(v ejsval.Var) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.moveLocked(v, GenOld)
}

// Permanent moves v to the eternal generation (singletons, core types)
// and marks it permanent, so it is never swept.
func (c *Collector) Permanent(v ejsval.Var) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.moveLocked(v, GenEternal)
	v.Hdr().Flags |= ejsval.FlagPermanent
}

// moveLocked takes v off its current generation's list and appends it to
// to's list. The caller holds c.mu.
func (c *Collector) moveLocked(v ejsval.Var, to Generation) {
	from := Generation(v.Hdr().GCGen())
	for i, x := range c.gens[from] {
		if x == v {
			c.gens[from] = append(c.gens[from][:i], c.gens[from][i+1:]...)
			break
		}
	}
	v.Hdr().SetGCGen(int(to))
	c.gens[to] = append(c.gens[to], v)
}

// Collect runs one mark-and-sweep cycle over gen (§4.7 "collectGarbage").
// roots enumerates every live root: globals, the VM stack, active frames
// and their ScopeChain/Prev links, ejs.result, ejs.exception. dispatcher
// is used to recurse through each marked value's children via its Type's
// Helpers.MarkVar (§4.1); it may be nil only in tests that mark no
// composite values. destroy is invoked on every unreached value before
// it is dropped, mirroring the Helpers.Destroy hook (§4.1) — normally a
// closure that calls back into Helpers.Destroy(dispatcher, v).
func (c *Collector) Collect(gen Generation, roots []ejsval.Var, dispatcher *ejsval.Dispatcher, destroy func(ejsval.Var)) {
	c.mu.Lock()

	visited := make(map[*ejsval.Header]bool)
	var mark func(v ejsval.Var)
	mark = func(v ejsval.Var) {
		if v == nil {
			return
		}
		h := v.Hdr()
		if h.Marked() || visited[h] {
			return
		}
		h.Mark()
		visited[h] = true
		if dispatcher != nil && h.Type != nil && h.Type.Helpers != nil && h.Type.Helpers.MarkVar != nil {
			h.Type.Helpers.MarkVar(dispatcher, v, v, mark)
		}
	}
	for _, r := range roots {
		mark(r)
	}

	kept := c.gens[gen][:0]
	for _, v := range c.gens[gen] {
		h := v.Hdr()
		if h.IsPermanent() || h.Marked() {
			h.Unmark()
			kept = append(kept, v)
			continue
		}
		if destroy != nil {
			destroy(v)
		}
		c.stats.Freed.Add(1)
	}
	c.gens[gen] = kept
	c.workDone = 0
	c.stats.Collects.Add(1)

	notify := c.Notify
	c.mu.Unlock()
	if notify != nil {
		notify(c.Snapshot())
	}
}

// poolFor lazily creates the sync.Pool backing t, keyed by Type exactly
// as the teacher keyed pools by concrete Go type (§4.7 "pools drain under
// memory pressure").
func (c *Collector) poolFor(t *ejsval.Type) *sync.Pool {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pools[t]
	if !ok {
		p = &sync.Pool{New: func() interface{} { return nil }}
		c.pools[t] = p
	}
	return p
}

// Get retrieves a pooled instance of t if one is available, reporting
// whether the pool had one (a pool miss means the caller must allocate
// fresh via Helpers.Create).
func (c *Collector) Get(t *ejsval.Type) (interface{}, bool) {
	v := c.poolFor(t).Get()
	if v == nil {
		c.stats.PoolMisses.Add(1)
		return nil, false
	}
	c.stats.PoolHits.Add(1)
	return v, true
}

// Put returns a destroyed instance of t to its pool for reuse.
func (c *Collector) Put(t *ejsval.Type, v interface{}) {
	c.poolFor(t).Put(v)
}

// Snapshot returns the current allocation/collection/pool counters, the
// generalized analogue of the teacher's GetPoolStats (§12).
func (c *Collector) Snapshot() Stats {
	return Stats{
		Allocs:     c.stats.Allocs.Load(),
		Collects:   c.stats.Collects.Load(),
		Freed:      c.stats.Freed.Load(),
		PoolHits:   c.stats.PoolHits.Load(),
		PoolMisses: c.stats.PoolMisses.Load(),
	}
}
