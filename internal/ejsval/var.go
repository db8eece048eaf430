// Package ejsval implements the Ejscript value model: the universal Var
// handle, the dynamic Object/Block/Function/Frame/Type hierarchy, and the
// per-Type helper vtable that every polymorphic operation dispatches
// through.
//
// The hierarchy mirrors the original Ejscript C runtime by struct
// embedding rather than inheritance: Object embeds Header, Block embeds
// Object, Function embeds Block, Frame embeds Function, and Type embeds
// Block. A single Var interface exposes the header common to all of them.
package ejsval

// Flags is the per-Var state bitfield described in the value model.
type Flags uint32

const (
	FlagPrimitive Flags = 1 << iota
	FlagIsType
	FlagIsFunction
	FlagIsObject
	FlagIsBlock
	FlagIsFrame
	FlagDynamic
	FlagPermanent
	FlagMarked
	FlagVisited
	FlagHidden
	FlagMaster
	FlagBuiltin
	FlagHasGetterSetter
	FlagNativeProc
	FlagPrototype
)

func (f Flags) Has(flag Flags) bool { return f&flag != 0 }

// Header is embedded at the front of every live value. It carries the
// value's Type and its flag bitfield; GC bookkeeping (gen/pool linkage)
// lives alongside it so a single allocation carries both concerns.
type Header struct {
	Type  *Type
	Flags Flags

	// gcNext threads this value into its GC generation's linked list.
	// gcGen records which generation currently owns it so the collector
	// can sweep without a reverse lookup.
	gcNext *Header
	gcGen  int
}

// Var is the universal value handle. Every concrete value type (Object,
// Block, Function, Frame, Type, and the boxed primitives) implements it
// by embedding Header and returning a pointer to it.
type Var interface {
	Hdr() *Header
}

func (h *Header) Hdr() *Header { return h }

// GCNext / SetGCNext / GCGen / SetGCGen give the gc package generation
// access without exposing Header's fields directly (they are otherwise
// package-private bookkeeping, not part of the value model proper).
func (h *Header) GCNext() *Header     { return h.gcNext }
func (h *Header) SetGCNext(n *Header) { h.gcNext = n }
func (h *Header) GCGen() int          { return h.gcGen }
func (h *Header) SetGCGen(g int)      { h.gcGen = g }

// IsPermanent reports whether GC must never free this value.
func (h *Header) IsPermanent() bool { return h.Flags.Has(FlagPermanent) }

// Mark/Unmark/Marked implement the GC's per-cycle visited bit.
func (h *Header) Mark()         { h.Flags |= FlagMarked }
func (h *Header) Unmark()       { h.Flags &^= FlagMarked }
func (h *Header) Marked() bool  { return h.Flags.Has(FlagMarked) }
func (h *Header) Visit()        { h.Flags |= FlagVisited }
func (h *Header) Unvisit()      { h.Flags &^= FlagVisited }
func (h *Header) Visited() bool { return h.Flags.Has(FlagVisited) }

// Primitive wraps a Go value (bool, int64, float64, string, nil) with a
// Header so booleans, numbers, strings, null and undefined can flow
// through the same Var interface as Object-derived values. Each
// interpreter creates the singleton primitives once (see the interp
// package) and marks them permanent.
type Primitive struct {
	Header
	Value interface{}
}

func NewPrimitive(t *Type, v interface{}) *Primitive {
	p := &Primitive{Value: v}
	p.Type = t
	p.Flags = FlagPrimitive
	return p
}

func (p *Primitive) Bool() bool {
	b, _ := p.Value.(bool)
	return b
}

func (p *Primitive) Number() float64 {
	switch n := p.Value.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	}
	return 0
}

func (p *Primitive) Int() int64 {
	switch n := p.Value.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	}
	return 0
}

func (p *Primitive) String() string {
	s, _ := p.Value.(string)
	return s
}
