package ejsval

import (
	"fmt"
	"io"
)

// Disassembler renders a Function's compiled Code as human-readable text,
// grounded on the teacher's bytecode.Disassembler (§12 of the expanded
// spec: "supplemented from the teacher's disasm.go").
type Disassembler struct {
	w  io.Writer
	fn *Function
}

func NewDisassembler(fn *Function, w io.Writer) *Disassembler {
	return &Disassembler{w: w, fn: fn}
}

// Disassemble prints the function name, its handler table, and every
// instruction in its Code.
func (d *Disassembler) Disassemble() {
	name := d.fn.Name
	if name == "" {
		name = "<anonymous>"
	}
	fmt.Fprintf(d.w, "== %s ==\n", name)
	fmt.Fprintf(d.w, "args=%d locals=%d instructions=%d\n", d.fn.NumArgs, d.fn.NumLocals, d.fn.Code.Len())

	if len(d.fn.Code.Handlers) > 0 {
		fmt.Fprintf(d.w, "\nHandlers:\n")
		for i, h := range d.fn.Code.Handlers {
			fmt.Fprintf(d.w, "  [%02d] try=[%d,%d) handler=[%d,%d) flags=%s catch=%s\n",
				i, h.TryStart, h.TryEnd, h.HandlerStart, h.HandlerEnd, h.Flags.String(), catchName(h.CatchType))
		}
	}

	fmt.Fprintf(d.w, "\nBytecode:\n")
	for pc := 0; pc < d.fn.Code.Len(); pc++ {
		d.DisassembleInstruction(pc)
	}
}

// DisassembleInstruction prints one instruction, resolving its operand
// against the constant/name/double pools when the opcode family calls
// for it so the output is directly legible, not just raw operand ints.
func (d *Disassembler) DisassembleInstruction(pc int) {
	inst := d.fn.Code.ByteCode[pc]
	fmt.Fprintf(d.w, "%04d  %-16s", pc, inst.Op.String())

	switch inst.Op {
	case OpLoadConst, OpLoadString:
		fmt.Fprintf(d.w, " %q", d.fn.Code.Pool.StringAt(int(inst.B)))
	case OpLoadDouble:
		fmt.Fprintf(d.w, " %v", d.fn.Code.DoubleAt(inst.B))
	case OpLoadInt:
		fmt.Fprintf(d.w, " %d", inst.B)
	case OpLoadByName, OpStoreByName, OpGetProperty, OpSetProperty,
		OpCallByName, OpCallStatic:
		n := d.fn.Code.NameAt(inst.B)
		fmt.Fprintf(d.w, " %s::%s", n.Namespace, n.Name)
	case OpLoadLocal, OpStoreLocal, OpLoadGlobalSlot, OpStoreGlobalSlot,
		OpLoadThisSlot, OpStoreThisSlot, OpLoadBlockSlot, OpStoreBlockSlot,
		OpLoadBaseSlot, OpStoreBaseSlot:
		fmt.Fprintf(d.w, " slot=%d", inst.B)
	case OpGoto, OpGotoShort, OpBranchTrue, OpBranchFalse,
		OpCompareAndBranchEq, OpCompareAndBranchNe:
		fmt.Fprintf(d.w, " -> %04d", inst.B)
	case OpCallGlobalSlot, OpCallThisSlot, OpCallProperty, OpCallValue,
		OpCallConstructor, OpCallNextConstructor:
		fmt.Fprintf(d.w, " argc=%d", inst.A)
	}
	fmt.Fprintln(d.w)
}

func (f HandlerFlags) String() string {
	s := ""
	if f&HandlerCatch != 0 {
		s += "catch|"
	}
	if f&HandlerFinally != 0 {
		s += "finally|"
	}
	if f&HandlerIteration != 0 {
		s += "iteration|"
	}
	if s == "" {
		return "-"
	}
	return s[:len(s)-1]
}

func catchName(t *Type) string {
	if t == nil {
		return "*"
	}
	return t.Name
}
