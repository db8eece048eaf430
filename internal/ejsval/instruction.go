package ejsval

// OpCode is a single VM instruction opcode. The dispatch loop is a plain
// Go switch (§4.5, §9 "Computed-goto vs switch dispatch" — Go has no
// labels-as-values, so the switch form is the only behaviorally
// equivalent choice; both forms the spec describes are required to
// agree, and a switch trivially does).
//
// Instruction format mirrors the teacher's: a fixed-width instruction
// with an 8-bit opcode and operand fields sized to what each family
// needs (slot index, argc, jump offset, constant index). The full
// Ejscript runtime has on the order of 200 opcodes across these
// families; this set is representative of every family in §4.5/§6.2 and
// covers every opcode the end-to-end scenarios in §8 exercise. Extending
// a family (e.g. LoadLocal0..LoadLocal9 shorthand for slots 0..9) is a
// mechanical repeat of LoadLocal and is omitted here without semantic
// loss — disasm and the loader treat it identically to the general form.
type OpCode byte

const (
	// Constants & literals
	OpLoadConst OpCode = iota
	OpLoadInt
	OpLoadDouble
	OpLoadString
	OpLoadNull
	OpLoadUndefined
	OpLoadTrue
	OpLoadFalse
	OpLoadThis
	OpLoadGlobalObj

	// Load/store by slot
	OpLoadLocal
	OpStoreLocal
	OpLoadGlobalSlot
	OpStoreGlobalSlot
	OpLoadThisSlot
	OpStoreThisSlot
	OpLoadBlockSlot // nth enclosing block
	OpStoreBlockSlot
	OpLoadBaseSlot // nth-base-of-this type
	OpStoreBaseSlot

	// Load/store by name
	OpLoadByName    // full scope walk
	OpStoreByName
	OpLoadByNameExpr // dynamic name on TOS
	OpStoreByNameExpr
	OpGetProperty // object-relative, by constant name
	OpSetProperty
	OpGetPropertyExpr // object-relative, name on stack
	OpSetPropertyExpr

	// Calls
	OpCallGlobalSlot
	OpCallThisSlot
	OpCallByName
	OpCallProperty // object-relative instance method
	OpCallStatic
	OpCallValue // via function value on stack
	OpCallConstructor
	OpCallNextConstructor

	// Arithmetic / comparison (dispatch through invokeOperator). Named
	// with an "I" infix (OpIAdd, not OpAdd) because OperatorOp already
	// owns the short names (helpers.go) - the opcode and the operator it
	// invokes are deliberately distinct enums (§4.1: a VM opcode always
	// maps to exactly one OperatorOp, but several opcodes, e.g. the
	// string-aware and numeric add paths, can share one).
	OpIAdd
	OpISub
	OpIMul
	OpIDiv
	OpIMod
	OpINeg
	OpINot
	OpICmpEq
	OpICmpNe
	OpICmpStrictEq
	OpICmpStrictNe
	OpICmpLt
	OpICmpLe
	OpICmpGt
	OpICmpGe
	OpIBitAnd
	OpIBitOr
	OpIBitXor
	OpIBitNot
	OpIShl
	OpIShr

	// Control flow
	OpGoto
	OpGotoShort
	OpBranchTrue
	OpBranchFalse
	OpCompareAndBranchEq
	OpCompareAndBranchNe
	OpInitDefaultArgs

	// Scope management
	OpOpenBlock
	OpCloseBlock
	OpOpenWith
	OpAddNamespace
	OpAddNamespaceRef

	// Exceptions
	OpThrow
	OpFinally
	OpEndException

	// Object / function construction
	OpNew
	OpNewObject
	OpDefineClass
	OpDefineFunction

	// Stack / misc
	OpPop
	OpDup
	OpSwap
	OpReturn
	OpReturnValue
	OpBreakpoint // reserved, unimplemented (§9 open question)
	OpEndCode

	opCodeCount
)

var opCodeNames = [...]string{
	OpLoadConst: "LoadConst", OpLoadInt: "LoadInt", OpLoadDouble: "LoadDouble",
	OpLoadString: "LoadString", OpLoadNull: "LoadNull", OpLoadUndefined: "LoadUndefined",
	OpLoadTrue: "LoadTrue", OpLoadFalse: "LoadFalse", OpLoadThis: "LoadThis",
	OpLoadGlobalObj: "LoadGlobalObj",
	OpLoadLocal: "LoadLocal", OpStoreLocal: "StoreLocal",
	OpLoadGlobalSlot: "LoadGlobalSlot", OpStoreGlobalSlot: "StoreGlobalSlot",
	OpLoadThisSlot: "LoadThisSlot", OpStoreThisSlot: "StoreThisSlot",
	OpLoadBlockSlot: "LoadBlockSlot", OpStoreBlockSlot: "StoreBlockSlot",
	OpLoadBaseSlot: "LoadBaseSlot", OpStoreBaseSlot: "StoreBaseSlot",
	OpLoadByName: "LoadByName", OpStoreByName: "StoreByName",
	OpLoadByNameExpr: "LoadByNameExpr", OpStoreByNameExpr: "StoreByNameExpr",
	OpGetProperty: "GetProperty", OpSetProperty: "SetProperty",
	OpGetPropertyExpr: "GetPropertyExpr", OpSetPropertyExpr: "SetPropertyExpr",
	OpCallGlobalSlot: "CallGlobalSlot", OpCallThisSlot: "CallThisSlot",
	OpCallByName: "CallByName", OpCallProperty: "CallProperty",
	OpCallStatic: "CallStatic", OpCallValue: "CallValue",
	OpCallConstructor: "CallConstructor", OpCallNextConstructor: "CallNextConstructor",
	OpIAdd: "Add", OpISub: "Sub", OpIMul: "Mul", OpIDiv: "Div", OpIMod: "Mod", OpINeg: "Neg",
	OpINot: "Not", OpICmpEq: "CmpEq", OpICmpNe: "CmpNe", OpICmpStrictEq: "CmpStrictEq",
	OpICmpStrictNe: "CmpStrictNe", OpICmpLt: "CmpLt", OpICmpLe: "CmpLe", OpICmpGt: "CmpGt",
	OpICmpGe: "CmpGe", OpIBitAnd: "BitAnd", OpIBitOr: "BitOr", OpIBitXor: "BitXor",
	OpIBitNot: "BitNot", OpIShl: "Shl", OpIShr: "Shr",
	OpGoto: "Goto", OpGotoShort: "GotoShort", OpBranchTrue: "BranchTrue",
	OpBranchFalse: "BranchFalse", OpCompareAndBranchEq: "CompareAndBranchEq",
	OpCompareAndBranchNe: "CompareAndBranchNe", OpInitDefaultArgs: "InitDefaultArgs",
	OpOpenBlock: "OpenBlock", OpCloseBlock: "CloseBlock", OpOpenWith: "OpenWith",
	OpAddNamespace: "AddNamespace", OpAddNamespaceRef: "AddNamespaceRef",
	OpThrow: "Throw", OpFinally: "Finally", OpEndException: "EndException",
	OpNew: "New", OpNewObject: "NewObject", OpDefineClass: "DefineClass",
	OpDefineFunction: "DefineFunction",
	OpPop: "Pop", OpDup: "Dup", OpSwap: "Swap", OpReturn: "Return",
	OpReturnValue: "ReturnValue", OpBreakpoint: "Breakpoint", OpEndCode: "EndCode",
}

func (op OpCode) String() string {
	if int(op) < len(opCodeNames) && opCodeNames[op] != "" {
		return opCodeNames[op]
	}
	return "Unknown"
}

// GetOptable returns the canonical mnemonic -> opcode table exposed to
// disassemblers and (out of scope) the compiler (§6.2).
func GetOptable() map[string]OpCode {
	m := make(map[string]OpCode, opCodeCount)
	for i, name := range opCodeNames {
		if name != "" {
			m[name] = OpCode(i)
		}
	}
	return m
}

// Instruction is one decoded bytecode instruction: an opcode plus up to
// two operands (A: a byte-sized operand such as argc; B: a 32-bit
// operand such as a slot/constant index or jump offset).
type Instruction struct {
	Op OpCode
	A  int32
	B  int32
}

func Simple(op OpCode) Instruction           { return Instruction{Op: op} }
func WithB(op OpCode, b int32) Instruction    { return Instruction{Op: op, B: b} }
func WithAB(op OpCode, a, b int32) Instruction { return Instruction{Op: op, A: a, B: b} }
