package ejsval

// Type extends Block with everything needed to act as both a
// constructor and an instance-layout descriptor (§3).
type Type struct {
	Block

	Name      string
	BaseType  *Type
	Implements []*Type

	// instanceBlock is the template of instance traits/slots new
	// instances are stamped from; instanceNames is its (possibly shared)
	// Names table, handed to Object/Block/Function/Frame constructors so
	// instances start out sharing the Type's table until first mutation.
	instanceBlock *Block
	instanceNames *NamesTable

	ID            int
	InstanceSize  int
	SubTypeCount  int // depth from root (§3 invariant)

	// Attributes and SlotNum carry the CLASS row's raw attribute word and
	// slot assignment straight off the wire (§6.1); the loader does not
	// interpret every bit, it just preserves them for tooling/disasm.
	Attributes      int64
	SlotNum         int
	NumTypeProp     int
	NumInstanceProp int

	Helpers *Helpers
	Module  *Module

	HasConstructor       bool
	HasInitializer       bool
	HasStaticInitializer bool
	NeedFixup            bool
	IsInterface          bool
	Final                bool
	ObjectBased          bool
	DynamicInstance      bool
	CallsSuper           bool
	HasNativeBase        bool
	NumericIndicies      bool
	SkipScope            bool
}

// NewType allocates a Type with the given base and helper table. Its own
// Header.Type is left nil; the Type's instance template starts with the
// base's instance traits.
func NewType(name string, base *Type, helpers *Helpers) *Type {
	t := &Type{Name: name, BaseType: base, Helpers: helpers}
	t.Block = *NewBlock(nil)
	t.Flags |= FlagIsType
	t.instanceNames = NewNamesTable()
	t.instanceBlock = NewBlock(t)
	if base != nil {
		t.SubTypeCount = base.SubTypeCount + 1
		t.InstanceSize = base.InstanceSize
		t.instanceBlock.InheritTraits(base.instanceBlock)
		t.NumInheritedFromBase()
	}
	return t
}

// NumInheritedFromBase recomputes numInherited/namespaces after a loader
// fixup patches BaseType in (§4.4 "after base fixups, the type's
// inherited trait count and namespaces are re-computed").
func (t *Type) NumInheritedFromBase() {
	if t.BaseType == nil {
		return
	}
	t.instanceBlock.InheritTraits(t.BaseType.instanceBlock)
}

// DefineInstanceProperty defines a trait/slot on the template instance
// block; new instances pick it up because they share instanceNames until
// mutated.
func (t *Type) DefineInstanceProperty(slot int, name Name, typ *Type, attrs TraitAttr) int {
	s, _ := t.instanceBlock.DefineProperty(slot, name, nil)
	t.instanceBlock.DefineTrait(s, Trait{Type: typ, Attrs: attrs})
	if s >= t.instanceNames.Len() {
		t.instanceNames = t.instanceBlock.names
	}
	return s
}

func (t *Type) InstanceTraitAt(slot int) *Trait { return t.instanceBlock.TraitAt(slot) }

// IsSubtypeOf reports whether t equals or descends from base, walking
// BaseType links.
func (t *Type) IsSubtypeOf(base *Type) bool {
	for cur := t; cur != nil; cur = cur.BaseType {
		if cur == base {
			return true
		}
	}
	return false
}

// Implementss reports whether t (or a base) declares iface among its
// Implements list.
func (t *Type) Implementss(iface *Type) bool {
	for cur := t; cur != nil; cur = cur.BaseType {
		for _, im := range cur.Implements {
			if im == iface {
				return true
			}
		}
	}
	return false
}

// DefaultTypeHelpers is the vtable a Type itself uses for its own
// properties (static members) — same as block helpers, since a Type is a
// Block that also happens to describe instances.
func DefaultTypeHelpers() *Helpers { return DefaultBlockHelpers() }

// NewInstance creates a fresh instance of t via its helper table's
// Create entry, the canonical path every OpNew-family opcode uses
// (§4.5).
func NewInstance(ejs *Dispatcher, t *Type, extraSlots int) (Var, error) {
	if t.Helpers == nil || t.Helpers.Create == nil {
		return nil, fnErr("InternalError: type %q has no Create helper", t.Name)
	}
	return t.Helpers.Create(ejs, t, extraSlots)
}
