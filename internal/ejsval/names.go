package ejsval

import "hash/fnv"

// HashMinProp is the property count above which a Block builds a real
// hashed Names table instead of doing a linear scan (§4.2).
const HashMinProp = 8

// Name is an immutable (name, namespace) pair. Equality uses both fields;
// hashing uses only the name portion, matching the C runtime's bucket
// scheme where many namespaces can collide into one chain.
type Name struct {
	Name      string
	Namespace string
}

func (n Name) Equal(o Name) bool { return n.Name == o.Name && n.Namespace == o.Namespace }

func hashName(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

// Namespace flags, reserved namespaces are interned per-interpreter with
// one of these formatted into their URI per "[[qualifiedType,space]]"
// when they must be globally unique (protected/private members of a
// specific type).
type NamespaceFlags uint8

const (
	NSPublic NamespaceFlags = 1 << iota
	NSPrivate
	NSProtected
	NSReserved
	NSInternal
)

type Namespace struct {
	Name  string
	URI   string
	Flags NamespaceFlags
}

// ReservedNamespace names, interned once per Interpreter (§4.2).
const (
	NSIntrinsic = "intrinsic"
	NSIterator  = "iterator"
	NSPublicStr = "public"
	NSProtectedStr = "protected"
	NSPrivateStr   = "private"
	NSInternalStr  = "internal"
	NSConfig    = "config"
	NSEvents    = "events"
	NSIO        = "io"
	NSSys       = "sys"
	NSEmpty     = ""
)

// nameEntry is one slot in the Names table's entries array; nextSlot
// chains same-bucket collisions as a singly linked list terminated by -1.
type nameEntry struct {
	name     Name
	nextSlot int
}

// NamesTable is the open-addressed-with-chained-buckets name hash
// described in §3/§4.2. It is built lazily: Objects with few properties
// use a linear scan over entries and only allocate buckets once the
// property count crosses HashMinProp.
type NamesTable struct {
	entries []nameEntry
	buckets []int32 // bucket -> slot index, -1 = empty
}

func NewNamesTable() *NamesTable {
	return &NamesTable{}
}

func (t *NamesTable) Len() int { return len(t.entries) }

func (t *NamesTable) NameAt(slot int) Name {
	if slot < 0 || slot >= len(t.entries) {
		return Name{}
	}
	return t.entries[slot].name
}

// Clone returns an independent copy, used when an Object mutates a Names
// table it was sharing with its declaring Type (§3 ownership note).
func (t *NamesTable) Clone() *NamesTable {
	c := &NamesTable{
		entries: append([]nameEntry(nil), t.entries...),
		buckets: append([]int32(nil), t.buckets...),
	}
	return c
}

func (t *NamesTable) bucketFor(name string) int {
	if len(t.buckets) == 0 {
		return -1
	}
	return int(hashName(name) % uint32(len(t.buckets)))
}

// rehash rebuilds the bucket array so bucket count >= property count,
// per the §4.2 grow policy: "bucket count < property count" triggers a
// rehash on insert.
func (t *NamesTable) rehash() {
	n := len(t.entries)
	if n < HashMinProp {
		t.buckets = nil
		return
	}
	size := n
	if size < 1 {
		size = 1
	}
	t.buckets = make([]int32, size)
	for i := range t.buckets {
		t.buckets[i] = -1
	}
	for slot := 0; slot < n; slot++ {
		t.insertIntoBuckets(slot)
	}
}

func (t *NamesTable) insertIntoBuckets(slot int) {
	if len(t.buckets) == 0 {
		return
	}
	b := t.bucketFor(t.entries[slot].name.Name)
	t.entries[slot].nextSlot = int(t.buckets[b])
	t.buckets[b] = int32(slot)
}

// Add appends a new name at the next slot (equal to the caller's slot
// vector length) and returns its slot index.
func (t *NamesTable) Add(name Name) int {
	slot := len(t.entries)
	t.entries = append(t.entries, nameEntry{name: name, nextSlot: -1})
	if len(t.buckets) > 0 && len(t.buckets) < len(t.entries) {
		t.rehash()
	} else if len(t.buckets) == 0 && len(t.entries) > HashMinProp {
		t.rehash()
	} else {
		t.insertIntoBuckets(slot)
	}
	return slot
}

// InsertAt inserts name at a specific slot, shifting later slots up by
// one and rewriting the hash, per the "insertion-at-position" policy in
// §4.2 (used when a subtype must keep inherited traits contiguous).
func (t *NamesTable) InsertAt(pos int, name Name) {
	t.entries = append(t.entries, nameEntry{})
	copy(t.entries[pos+1:], t.entries[pos:len(t.entries)-1])
	t.entries[pos] = nameEntry{name: name, nextSlot: -1}
	t.rehash()
}

// Lookup returns the slot for (name, space) or -1. It never throws
// (§4.3): callers decide whether an absent name is an error.
func (t *NamesTable) Lookup(name string, space string) int {
	if len(t.buckets) == 0 {
		for i, e := range t.entries {
			if e.name.Name == name && (space == "" || e.name.Namespace == space) {
				return i
			}
		}
		return -1
	}
	b := t.bucketFor(name)
	for slot := t.buckets[b]; slot != -1; slot = int32(t.entries[slot].nextSlot) {
		e := t.entries[slot]
		if e.name.Name == name && (space == "" || e.name.Namespace == space) {
			return int(slot)
		}
	}
	return -1
}

// Trait is the per-slot metadata parallel-indexed with a Block's slots:
// the declared type (nil = untyped) and attribute bits.
type TraitAttr uint32

const (
	TraitReadOnly TraitAttr = 1 << iota
	TraitGetter
	TraitSetter
	TraitOverride
	TraitStatic
	TraitConst
	TraitEnumerable
)

type Trait struct {
	Type  *Type
	Attrs TraitAttr
}
