package ejsval

import "fmt"

// lotsaProps is the threshold past which Object's grow policy switches
// from "round the requested size up to a multiple of numPropBlock" to
// "grow by max(cap/4, numPropBlock), at least to the requested size"
// (§4.2).
const lotsaProps = 50

// numPropBlock is the fixed rounding unit used when growing below the
// lotsaProps threshold.
const numPropBlock = 8

// Object is the base of the value hierarchy that owns dynamically named
// properties: a parallel (Names table, slot vector) pair plus capacity
// bookkeeping (§3/§4.2). Before the first mutation an Object may share
// its declaring Type's Names table; SetPropertyName clones it on first
// write.
type Object struct {
	Header

	names     *NamesTable
	namesOwned bool
	slots     []Var
	numProp   int
}

func NewObject(t *Type) *Object {
	o := &Object{}
	o.Type = t
	o.Flags = FlagIsObject
	if t != nil && t.instanceNames != nil {
		o.names = t.instanceNames
		o.namesOwned = false
	} else {
		o.names = NewNamesTable()
		o.namesOwned = true
	}
	return o
}

func (o *Object) ensureOwnNames() {
	if !o.namesOwned {
		o.names = o.names.Clone()
		o.namesOwned = true
	}
}

// grow ensures slots has capacity for at least n elements, following the
// §4.2 grow policy.
func (o *Object) grow(n int) {
	if n <= len(o.slots) {
		return
	}
	var newCap int
	if len(o.slots) > lotsaProps {
		newCap = len(o.slots) + max(len(o.slots)/4, numPropBlock)
		if newCap < n {
			newCap = n
		}
	} else {
		newCap = ((n + numPropBlock - 1) / numPropBlock) * numPropBlock
	}
	grown := make([]Var, newCap)
	copy(grown, o.slots)
	o.slots = grown
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// NumProp returns the number of occupied property slots (numProp <=
// capacity per the §3 Object invariant).
func (o *Object) NumProp() int { return o.numProp }

func (o *Object) Capacity() int { return len(o.slots) }

// IsDynamic reports whether new properties may be defined on this
// instance (as opposed to a sealed, statically-shaped instance).
func (o *Object) IsDynamic() bool { return o.Flags.Has(FlagDynamic) }

// DefineProperty adds name at the given slot (or appends if slot < 0),
// growing the slot vector and Names table as needed. Returns the slot
// used.
func (o *Object) DefineProperty(slot int, name Name, value Var) (int, error) {
	if slot < 0 {
		if !o.IsDynamic() && o.Type != nil && !o.Type.DynamicInstance {
			return -1, fmt.Errorf("ReferenceError: object is not dynamic, cannot define %q", name.Name)
		}
		o.ensureOwnNames()
		slot = o.names.Add(name)
	} else if name.Name != "" && !o.names.NameAt(slot).Equal(name) {
		o.ensureOwnNames()
		for o.names.Len() <= slot {
			o.names.Add(Name{})
		}
		o.names.entries[slot].name = name
		o.names.rehash()
	}
	o.grow(slot + 1)
	if slot >= o.numProp {
		o.numProp = slot + 1
	}
	o.slots[slot] = value
	return slot, nil
}

func (o *Object) GetProperty(slot int) (Var, error) {
	if slot < 0 || slot >= o.numProp {
		return nil, fmt.Errorf("OutOfBoundsError: slot %d out of range [0,%d)", slot, o.numProp)
	}
	return o.slots[slot], nil
}

func (o *Object) SetProperty(slot int, value Var) (int, error) {
	if slot < 0 {
		return o.DefineProperty(-1, Name{}, value)
	}
	if slot >= o.numProp {
		if !o.IsDynamic() && o.Type != nil && !o.Type.DynamicInstance {
			return -1, fmt.Errorf("ReferenceError: slot %d not defined on non-dynamic object", slot)
		}
		o.grow(slot + 1)
		o.numProp = slot + 1
	}
	o.slots[slot] = value
	return slot, nil
}

func (o *Object) LookupProperty(name Name) int {
	return o.names.Lookup(name.Name, name.Namespace)
}

func (o *Object) GetPropertyByName(name Name) (Var, int, error) {
	slot := o.LookupProperty(name)
	if slot < 0 {
		return nil, -1, nil
	}
	v, err := o.GetProperty(slot)
	return v, slot, err
}

func (o *Object) SetPropertyByName(name Name, value Var) (int, error) {
	slot := o.LookupProperty(name)
	if slot >= 0 {
		return o.SetProperty(slot, value)
	}
	return o.DefineProperty(-1, name, value)
}

func (o *Object) DeleteProperty(slot int) error {
	if slot < 0 || slot >= o.numProp {
		return fmt.Errorf("OutOfBoundsError: slot %d out of range", slot)
	}
	// Conservative rule from §9 open question: length/count stays;
	// element becomes undefined. Only the owning container type (e.g. an
	// Array built on top of Object) decides whether to shrink.
	o.slots[slot] = nil
	return nil
}

func (o *Object) DeletePropertyByName(name Name) error {
	slot := o.LookupProperty(name)
	if slot < 0 {
		return fmt.Errorf("ReferenceError: no such property %q", name.Name)
	}
	return o.DeleteProperty(slot)
}

func (o *Object) GetPropertyCount() int { return o.numProp }

func (o *Object) GetPropertyName(slot int) Name {
	return o.names.NameAt(slot)
}

// Clone returns a shallow copy: a new Object sharing the Names table
// (copy-on-write) and a duplicated slot vector.
func (o *Object) Clone() *Object {
	c := &Object{
		names:      o.names,
		namesOwned: false,
		slots:      append([]Var(nil), o.slots...),
		numProp:    o.numProp,
	}
	c.Type = o.Type
	c.Flags = o.Flags &^ FlagMarked &^ FlagVisited
	return c
}

// DefaultObjectHelpers builds the "object" helper table: default plus
// hashed name lookup (§4.1).
func DefaultObjectHelpers() *Helpers {
	h := &Helpers{}
	h.Create = func(ejs *Dispatcher, t *Type, extra int) (Var, error) {
		o := NewObject(t)
		if extra > 0 {
			o.grow(extra)
		}
		if ejs != nil && ejs.Register != nil {
			ejs.Register(o)
		}
		return o, nil
	}
	h.Destroy = func(ejs *Dispatcher, v Var) error {
		if ejs != nil && ejs.Recycle != nil {
			ejs.Recycle(v.Hdr().Type, v)
		}
		return nil
	}
	h.Clone = func(ejs *Dispatcher, v Var, deep bool) (Var, error) {
		o, ok := v.(*Object)
		if !ok {
			return v, nil
		}
		return o.Clone(), nil
	}
	h.DefineProperty = func(ejs *Dispatcher, v Var, slot int, name Name, t *Type, attrs TraitAttr, value Var) (int, error) {
		o := v.(*Object)
		return o.DefineProperty(slot, name, value)
	}
	h.DeleteProperty = func(ejs *Dispatcher, v Var, slot int) error { return v.(*Object).DeleteProperty(slot) }
	h.DeletePropertyByName = func(ejs *Dispatcher, v Var, name Name) error {
		return v.(*Object).DeletePropertyByName(name)
	}
	h.GetProperty = func(ejs *Dispatcher, v Var, slot int) (Var, error) { return v.(*Object).GetProperty(slot) }
	h.GetPropertyByName = func(ejs *Dispatcher, v Var, name Name) (Var, int, error) {
		return v.(*Object).GetPropertyByName(name)
	}
	h.GetPropertyCount = func(ejs *Dispatcher, v Var) (int, error) { return v.(*Object).GetPropertyCount(), nil }
	h.GetPropertyName = func(ejs *Dispatcher, v Var, slot int) (Name, error) {
		return v.(*Object).GetPropertyName(slot), nil
	}
	h.GetPropertyTrait = func(ejs *Dispatcher, v Var, slot int) (*Trait, error) { return nil, nil }
	h.LookupProperty = func(ejs *Dispatcher, v Var, name Name) int { return v.(*Object).LookupProperty(name) }
	h.SetProperty = func(ejs *Dispatcher, v Var, slot int, value Var) (int, error) {
		return v.(*Object).SetProperty(slot, value)
	}
	h.SetPropertyName = func(ejs *Dispatcher, v Var, name Name, value Var) (int, error) {
		return v.(*Object).SetPropertyByName(name, value)
	}
	h.SetPropertyTrait = func(ejs *Dispatcher, v Var, slot int, t *Type, attrs TraitAttr) error { return nil }
	h.MarkVar = func(ejs *Dispatcher, parent Var, v Var, mark func(Var)) {
		o := v.(*Object)
		for _, s := range o.slots {
			if s != nil {
				mark(s)
			}
		}
	}
	h.InvokeOperator = defaultInvokeOperator
	h.Cast = defaultCast
	return h
}
