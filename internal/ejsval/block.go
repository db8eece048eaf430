package ejsval

import "fmt"

// Block is a lexical scope: an Object plus parallel Trait storage and an
// ordered, LIFO-searched namespace list (§3/§4.2/§4.3).
type Block struct {
	Object

	traits       []Trait
	numTraits    int
	numInherited int

	ScopeChain *Block // closure/outer-block link, captured at definition time
	Prev       *Block // call-stack / lexical-nesting link

	namespaces []Namespace

	PrevException error // saved exception while a finally body runs (§4.6)
}

func NewBlock(t *Type) *Block {
	b := &Block{}
	b.Type = t
	b.Flags = FlagIsObject | FlagIsBlock
	if t != nil && t.instanceNames != nil {
		b.names = t.instanceNames
		b.namesOwned = false
	} else {
		b.names = NewNamesTable()
		b.namesOwned = true
	}
	return b
}

func (b *Block) NumTraits() int    { return b.numTraits }
func (b *Block) NumInherited() int { return b.numInherited }

func (b *Block) growTraits(n int) {
	if n <= len(b.traits) {
		return
	}
	grown := make([]Trait, n)
	copy(grown, b.traits)
	b.traits = grown
}

// DefineTrait sets the trait for slot, growing the trait vector as
// needed; an existing trait at slot is replaced.
func (b *Block) DefineTrait(slot int, tr Trait) {
	b.growTraits(slot + 1)
	if slot >= b.numTraits {
		b.numTraits = slot + 1
	}
	b.traits[slot] = tr
}

func (b *Block) TraitAt(slot int) *Trait {
	if slot < 0 || slot >= b.numTraits {
		return nil
	}
	return &b.traits[slot]
}

// InheritTraits copies the base block's first n traits into this block,
// establishing numInherited, before the subtype appends its own members
// (§4.2 "inheritance copies the base block's first N traits").
func (b *Block) InheritTraits(base *Block) {
	if base == nil {
		return
	}
	n := base.numTraits
	b.growTraits(n)
	copy(b.traits, base.traits[:n])
	b.numTraits = n
	b.numInherited = n
}

// OpenNamespace appends ns to the end of the open namespace list; lookup
// walks this list in reverse (LIFO) order so the most recently opened
// namespace wins ties (§4.3).
func (b *Block) OpenNamespace(ns Namespace) { b.namespaces = append(b.namespaces, ns) }

func (b *Block) CloseNamespace() {
	if len(b.namespaces) > 0 {
		b.namespaces = b.namespaces[:len(b.namespaces)-1]
	}
}

func (b *Block) Namespaces() []Namespace { return b.namespaces }

// LookupResult is the record scope lookup returns (§4.3).
type LookupResult struct {
	Obj             Var
	Slot            int
	NthBase         int
	NthBlock        int
	InstanceProperty bool
	UseThis         bool
}

// LookupLocal searches this block's own names across its open
// namespaces in reverse order, without walking ScopeChain/Prev. It never
// throws (§4.3): -1 means "not found here".
func (b *Block) LookupLocal(name string) (slot int, ns string) {
	for i := len(b.namespaces) - 1; i >= 0; i-- {
		space := b.namespaces[i].URI
		if s := b.names.Lookup(name, space); s >= 0 {
			return s, space
		}
	}
	// Fall back to a lookup with an empty namespace, which
	// NamesTable.Lookup treats as matching the name in any namespace.
	return b.names.Lookup(name, NSEmpty), NSEmpty
}

// DefaultBlockHelpers extends the object table with Trait storage and
// block/namespace semantics (§4.1).
func DefaultBlockHelpers() *Helpers {
	h := *DefaultObjectHelpers()
	h.Create = func(ejs *Dispatcher, t *Type, extra int) (Var, error) {
		b := NewBlock(t)
		if extra > 0 {
			b.grow(extra)
		}
		if ejs != nil && ejs.Register != nil {
			ejs.Register(b)
		}
		return b, nil
	}
	h.Clone = func(ejs *Dispatcher, v Var, deep bool) (Var, error) {
		blk, ok := v.(*Block)
		if !ok {
			return v, nil
		}
		c := &Block{
			Object:       *blk.Object.Clone(),
			traits:       append([]Trait(nil), blk.traits...),
			numTraits:    blk.numTraits,
			numInherited: blk.numInherited,
			ScopeChain:   blk.ScopeChain,
			namespaces:   append([]Namespace(nil), blk.namespaces...),
		}
		return c, nil
	}
	h.DefineProperty = func(ejs *Dispatcher, v Var, slot int, name Name, t *Type, attrs TraitAttr, value Var) (int, error) {
		b := v.(*Block)
		s, err := b.Object.DefineProperty(slot, name, value)
		if err != nil {
			return s, err
		}
		b.DefineTrait(s, Trait{Type: t, Attrs: attrs})
		return s, nil
	}
	h.GetPropertyTrait = func(ejs *Dispatcher, v Var, slot int) (*Trait, error) {
		return v.(*Block).TraitAt(slot), nil
	}
	h.SetPropertyTrait = func(ejs *Dispatcher, v Var, slot int, t *Type, attrs TraitAttr) error {
		b := v.(*Block)
		if slot < 0 || slot >= b.numTraits {
			return fmt.Errorf("OutOfBoundsError: trait slot %d out of range", slot)
		}
		b.traits[slot] = Trait{Type: t, Attrs: attrs}
		return nil
	}
	h.MarkVar = func(ejs *Dispatcher, parent Var, v Var, mark func(Var)) {
		b := v.(*Block)
		for _, s := range b.slots {
			if s != nil {
				mark(s)
			}
		}
		if b.ScopeChain != nil {
			mark(b.ScopeChain)
		}
		if b.Prev != nil {
			mark(b.Prev)
		}
	}
	return &h
}
