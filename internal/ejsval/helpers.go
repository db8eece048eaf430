package ejsval

// OperatorOp enumerates the operators invokeOperator dispatches, shared
// between the value model's helper table and the VM's arithmetic opcodes
// so a native type can override e.g. Array's "+" without the VM knowing
// about arrays at all (§4.1).
type OperatorOp int

const (
	OpAdd OperatorOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpNeg
	OpCmpEq
	OpCmpNe
	OpCmpLt
	OpCmpLe
	OpCmpGt
	OpCmpGe
	OpCmpStrictEq
	OpCmpStrictNe
	OpLogicalNot
	OpBitAnd
	OpBitOr
	OpBitXor
	OpBitNot
	OpShl
	OpShr
)

// Helpers is the ~17-operation vtable every Type holds (§4.1). A Type
// selects one of the three default tables at creation and may override
// individual entries; natives override a handful (e.g. Array.invokeOperator
// for set union/intersection, Path.invokeOperator for "+").
type Helpers struct {
	Cast              func(ejs *Dispatcher, v Var, target *Type) (Var, error)
	Clone             func(ejs *Dispatcher, v Var, deep bool) (Var, error)
	Create            func(ejs *Dispatcher, t *Type, extraSlots int) (Var, error)
	Destroy           func(ejs *Dispatcher, v Var) error
	DefineProperty    func(ejs *Dispatcher, v Var, slot int, name Name, t *Type, attrs TraitAttr, value Var) (int, error)
	DeleteProperty    func(ejs *Dispatcher, v Var, slot int) error
	DeletePropertyByName func(ejs *Dispatcher, v Var, name Name) error
	GetProperty       func(ejs *Dispatcher, v Var, slot int) (Var, error)
	GetPropertyByName func(ejs *Dispatcher, v Var, name Name) (Var, int, error)
	GetPropertyCount  func(ejs *Dispatcher, v Var) (int, error)
	GetPropertyName   func(ejs *Dispatcher, v Var, slot int) (Name, error)
	GetPropertyTrait  func(ejs *Dispatcher, v Var, slot int) (*Trait, error)
	InvokeOperator    func(ejs *Dispatcher, lhs Var, op OperatorOp, rhs Var) (Var, error)
	LookupProperty    func(ejs *Dispatcher, v Var, name Name) int
	MarkVar           func(ejs *Dispatcher, parent Var, v Var, mark func(Var))
	SetProperty       func(ejs *Dispatcher, v Var, slot int, value Var) (int, error)
	SetPropertyName   func(ejs *Dispatcher, v Var, name Name, value Var) (int, error)
	SetPropertyTrait  func(ejs *Dispatcher, v Var, slot int, t *Type, attrs TraitAttr) error
}

// Dispatcher is the minimal surface the helper table needs from the
// owning interpreter: access to singletons, to raise a typed exception,
// and to register/recycle allocations with the collector, without the
// ejsval package importing either the interpreter or gc package (which
// would create an import cycle, since the interpreter owns Types and
// the collector tracks ejsval.Var values).
type Dispatcher struct {
	Singletons Singletons
	Raise      func(class string, format string, args ...interface{}) error

	// Register records a freshly created value with the collector's new
	// generation (§4.7). The default Helpers.Create entries and the VM's
	// frame push call this for the values they allocate; values the VM
	// allocates directly (OpNewObject, OpOpenBlock, OpOpenWith) and
	// primitives are not registered. nil (e.g. in unit tests built by
	// hand) means "no collector attached" and is a silent no-op.
	Register func(v Var)

	// Recycle returns a destroyed value's storage to its Type's pool
	// (§4.7 "pool-first allocation"). Helpers.Destroy calls this after
	// tearing a value down.
	Recycle func(t *Type, v interface{})
}

// Singletons are the per-interpreter shared immutable primitives
// (§3/§5): created once, marked permanent, and handed out by every
// helper that needs e.g. "the" undefined value.
type Singletons struct {
	True, False     *Primitive
	Null, Undefined *Primitive
	Zero, One, MinusOne *Primitive
	NaN, PosInf, NegInf *Primitive
	EmptyString     *Primitive
}

// Clone_ produces an independent copy of a Helpers table so a
// subtype can override individual entries without mutating its base's
// table (§4.1's "natives override individual entries").
func (h *Helpers) Clone_() *Helpers {
	c := *h
	return &c
}
