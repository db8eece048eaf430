package ejsval

// FunctionFlags are the per-Function bits from §3's Function row.
type FunctionFlags uint32

const (
	FnGetter FunctionFlags = 1 << iota
	FnSetter
	FnConstructor
	FnStaticMethod
	FnOverride
	FnRest
	FnFullScope
	FnNativeProc
	FnIsInitializer
	FnLiteralGetter
	FnHasReturn
	FnLoading
	FnIsFrame
)

// Lang is the frame/function "language mode" byte (§4.5).
type Lang byte

const (
	LangFixed Lang = iota
	LangStrict
	LangPlus
	LangECMA
)

// NativeProc is the signature of a native function body, invoked as
// proc(ejs, this, argv) with the return placed by the caller (§4.5 step
// 3: "Native then invokes proc(ejs, this, argc, argv) and places the
// return in ejs.result").
type NativeProc func(ejs *Dispatcher, this Var, argv []Var) (Var, error)

// Function extends Block with either compiled Code or a native Proc,
// the scope chain captured for closures, and the argument/default/local
// counts the calling convention needs (§3).
type Function struct {
	Block

	Name string // declared name, for stack traces and disassembly (§4.5)
	Code *Code
	Proc NativeProc

	NumArgs   int
	NumLocals int
	NextSlot  int // getter's paired setter slot, 0 = none (§9)

	ResultType *Type
	ThisObj    Var
	Owner      interface{} // declaring *Type or *Module
	SlotNum    int

	Lang  Lang
	Flags FunctionFlags
}

func NewFunction(t *Type) *Function {
	f := &Function{Block: *NewBlock(t)}
	f.Object.Flags |= FlagIsFunction
	return f
}

func (f *Function) IsNative() bool { return f.Flags&FnNativeProc != 0 }
func (f *Function) HasRest() bool  { return f.Flags&FnRest != 0 }

// PairedSetter reports the setter slot linked from a getter's NextSlot
// field (§9 "Getter/Setter as linked slots"), or -1 when f is not a
// getter or has no paired setter (NextSlot 0).
func (f *Function) PairedSetter() int {
	if f.Flags&FnGetter == 0 || f.NextSlot == 0 {
		return -1
	}
	return f.NextSlot
}
