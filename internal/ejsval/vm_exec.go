package ejsval

import "strings"

// exec decodes and runs a single instruction against frame, the current
// top of vm.Frames. It returns a control signal (none/return/halt), the
// value that signal carries (meaningful only for sigReturn/sigHalt), and
// an error if the instruction raised an exception (§4.5).
func (vm *VM) exec(frame *Frame, inst Instruction) (signal, Var, error) {
	switch inst.Op {

	// --- Constants & literals ---
	case OpLoadConst:
		vm.push(vm.stringConst(frame, inst.B))
	case OpLoadInt:
		vm.push(NewPrimitive(nil, int64(inst.B)))
	case OpLoadDouble:
		vm.push(NewPrimitive(nil, frame.Code.DoubleAt(inst.B)))
	case OpLoadString:
		vm.push(vm.stringConst(frame, inst.B))
	case OpLoadNull:
		vm.push(vm.Null())
	case OpLoadUndefined:
		vm.push(vm.Undef())
	case OpLoadTrue:
		vm.push(vm.Bool(true))
	case OpLoadFalse:
		vm.push(vm.Bool(false))
	case OpLoadThis:
		vm.push(frame.ThisObj)
	case OpLoadGlobalObj:
		vm.push(vm.Globals)

	// --- Load/store by slot ---
	case OpLoadLocal:
		vm.push(frame.Local(int(inst.B)))
	case OpStoreLocal:
		v, err := vm.pop()
		if err != nil {
			return sigNone, nil, err
		}
		frame.SetLocal(int(inst.B), v)
	case OpLoadGlobalSlot:
		v, err := vm.Globals.GetProperty(int(inst.B))
		if err != nil {
			return sigNone, nil, err
		}
		vm.push(v)
	case OpStoreGlobalSlot:
		v, err := vm.pop()
		if err != nil {
			return sigNone, nil, err
		}
		if _, err := vm.Globals.SetProperty(int(inst.B), v); err != nil {
			return sigNone, nil, err
		}
	case OpLoadThisSlot:
		if obj, ok := frame.ThisObj.(*Object); ok {
			v, err := obj.GetProperty(int(inst.B))
			if err != nil {
				return sigNone, nil, err
			}
			vm.push(v)
		} else {
			vm.push(vm.Undef())
		}
	case OpStoreThisSlot:
		v, err := vm.pop()
		if err != nil {
			return sigNone, nil, err
		}
		if obj, ok := frame.ThisObj.(*Object); ok {
			if _, err := obj.SetProperty(int(inst.B), v); err != nil {
				return sigNone, nil, err
			}
		}
	case OpLoadBlockSlot:
		blk := nthEnclosing(frame.CurrentBlock, int(inst.A))
		if blk == nil {
			return sigNone, nil, vm.raise("ReferenceError: no enclosing block at depth %d", inst.A)
		}
		v, err := blk.GetProperty(int(inst.B))
		if err != nil {
			return sigNone, nil, err
		}
		vm.push(v)
	case OpStoreBlockSlot:
		v, err := vm.pop()
		if err != nil {
			return sigNone, nil, err
		}
		blk := nthEnclosing(frame.CurrentBlock, int(inst.A))
		if blk == nil {
			return sigNone, nil, vm.raise("ReferenceError: no enclosing block at depth %d", inst.A)
		}
		if _, err := blk.SetProperty(int(inst.B), v); err != nil {
			return sigNone, nil, err
		}
	case OpLoadBaseSlot:
		base := nthBase(frame.Function.Owner, int(inst.A))
		if base == nil {
			return sigNone, nil, vm.raise("ReferenceError: no base at depth %d", inst.A)
		}
		v, err := base.GetProperty(int(inst.B))
		if err != nil {
			return sigNone, nil, err
		}
		vm.push(v)
	case OpStoreBaseSlot:
		v, err := vm.pop()
		if err != nil {
			return sigNone, nil, err
		}
		base := nthBase(frame.Function.Owner, int(inst.A))
		if base == nil {
			return sigNone, nil, vm.raise("ReferenceError: no base at depth %d", inst.A)
		}
		if _, err := base.SetProperty(int(inst.B), v); err != nil {
			return sigNone, nil, err
		}

	// --- Load/store by name ---
	case OpLoadByName:
		name := frame.Code.NameAt(inst.B)
		v, err := vm.loadByName(frame, name)
		if err != nil {
			return sigNone, nil, err
		}
		vm.push(v)
	case OpStoreByName:
		v, err := vm.pop()
		if err != nil {
			return sigNone, nil, err
		}
		if err := vm.storeByName(frame, frame.Code.NameAt(inst.B), v); err != nil {
			return sigNone, nil, err
		}
	case OpLoadByNameExpr:
		key, err := vm.pop()
		if err != nil {
			return sigNone, nil, err
		}
		v, err := vm.loadByName(frame, Name{Name: ToStringValue(vm.Dispatcher, key)})
		if err != nil {
			return sigNone, nil, err
		}
		vm.push(v)
	case OpStoreByNameExpr:
		val, err := vm.pop()
		if err != nil {
			return sigNone, nil, err
		}
		key, err := vm.pop()
		if err != nil {
			return sigNone, nil, err
		}
		if err := vm.storeByName(frame, Name{Name: ToStringValue(vm.Dispatcher, key)}, val); err != nil {
			return sigNone, nil, err
		}
	case OpGetProperty:
		obj, err := vm.pop()
		if err != nil {
			return sigNone, nil, err
		}
		v, err := vm.getProperty(obj, frame.Code.NameAt(inst.B))
		if err != nil {
			return sigNone, nil, err
		}
		vm.push(v)
	case OpSetProperty:
		val, err := vm.pop()
		if err != nil {
			return sigNone, nil, err
		}
		obj, err := vm.pop()
		if err != nil {
			return sigNone, nil, err
		}
		if err := vm.setProperty(obj, frame.Code.NameAt(inst.B), val); err != nil {
			return sigNone, nil, err
		}
	case OpGetPropertyExpr:
		key, err := vm.pop()
		if err != nil {
			return sigNone, nil, err
		}
		obj, err := vm.pop()
		if err != nil {
			return sigNone, nil, err
		}
		v, err := vm.getProperty(obj, Name{Name: ToStringValue(vm.Dispatcher, key)})
		if err != nil {
			return sigNone, nil, err
		}
		vm.push(v)
	case OpSetPropertyExpr:
		val, err := vm.pop()
		if err != nil {
			return sigNone, nil, err
		}
		key, err := vm.pop()
		if err != nil {
			return sigNone, nil, err
		}
		obj, err := vm.pop()
		if err != nil {
			return sigNone, nil, err
		}
		if err := vm.setProperty(obj, Name{Name: ToStringValue(vm.Dispatcher, key)}, val); err != nil {
			return sigNone, nil, err
		}

	// --- Calls ---
	case OpCallGlobalSlot:
		args, err := vm.popArgs(int(inst.A))
		if err != nil {
			return sigNone, nil, err
		}
		v, err := vm.Globals.GetProperty(int(inst.B))
		if err != nil {
			return sigNone, nil, err
		}
		if err := vm.dispatchCall(v, vm.Undef(), args); err != nil {
			return sigNone, nil, err
		}
	case OpCallThisSlot:
		args, err := vm.popArgs(int(inst.A))
		if err != nil {
			return sigNone, nil, err
		}
		obj, _ := frame.ThisObj.(*Object)
		if obj == nil {
			return sigNone, nil, vm.raise("ReferenceError: no this for slot call")
		}
		v, err := obj.GetProperty(int(inst.B))
		if err != nil {
			return sigNone, nil, err
		}
		if err := vm.dispatchCall(v, frame.ThisObj, args); err != nil {
			return sigNone, nil, err
		}
	case OpCallByName:
		args, err := vm.popArgs(int(inst.A))
		if err != nil {
			return sigNone, nil, err
		}
		v, err := vm.loadByName(frame, frame.Code.NameAt(inst.B))
		if err != nil {
			return sigNone, nil, err
		}
		if err := vm.dispatchCall(v, vm.Undef(), args); err != nil {
			return sigNone, nil, err
		}
	case OpCallProperty:
		args, err := vm.popArgs(int(inst.A))
		if err != nil {
			return sigNone, nil, err
		}
		obj, err := vm.pop()
		if err != nil {
			return sigNone, nil, err
		}
		v, err := vm.getProperty(obj, frame.Code.NameAt(inst.B))
		if err != nil {
			return sigNone, nil, err
		}
		if err := vm.dispatchCall(v, obj, args); err != nil {
			return sigNone, nil, err
		}
	case OpCallStatic:
		args, err := vm.popArgs(int(inst.A))
		if err != nil {
			return sigNone, nil, err
		}
		v, err := vm.loadByName(frame, frame.Code.NameAt(inst.B))
		if err != nil {
			return sigNone, nil, err
		}
		if err := vm.dispatchCall(v, nil, args); err != nil {
			return sigNone, nil, err
		}
	case OpCallValue:
		args, err := vm.popArgs(int(inst.A))
		if err != nil {
			return sigNone, nil, err
		}
		v, err := vm.pop()
		if err != nil {
			return sigNone, nil, err
		}
		if err := vm.dispatchCall(v, frame.ThisObj, args); err != nil {
			return sigNone, nil, err
		}
	case OpCallConstructor:
		args, err := vm.popArgs(int(inst.A))
		if err != nil {
			return sigNone, nil, err
		}
		tv, err := vm.pop()
		if err != nil {
			return sigNone, nil, err
		}
		t, ok := tv.(*Type)
		if !ok {
			return sigNone, nil, vm.raise("TypeError: new requires a Type")
		}
		newInstance, err := NewInstance(vm.Dispatcher, t, 0)
		if err != nil {
			return sigNone, nil, err
		}
		if t.HasConstructor {
			ctor, _, _ := t.GetPropertyByName(Name{Name: t.Name})
			if fn, ok := ctor.(*Function); ok {
				if err := vm.dispatchCall(fn, newInstance, args); err != nil {
					return sigNone, nil, err
				}
				vm.pop() // discard the constructor's own return, per §4.1
			}
		}
		vm.push(newInstance)
	case OpCallNextConstructor:
		args, err := vm.popArgs(int(inst.A))
		if err != nil {
			return sigNone, nil, err
		}
		if frame.Function.Owner == nil {
			break
		}
		t, _ := frame.Function.Owner.(*Type)
		if t == nil || t.BaseType == nil || !t.BaseType.HasConstructor {
			break
		}
		ctor, _, _ := t.BaseType.GetPropertyByName(Name{Name: t.BaseType.Name})
		if fn, ok := ctor.(*Function); ok {
			if err := vm.dispatchCall(fn, frame.ThisObj, args); err != nil {
				return sigNone, nil, err
			}
			vm.pop()
		}

	// --- Arithmetic / comparison ---
	case OpIAdd, OpISub, OpIMul, OpIDiv, OpIMod,
		OpICmpEq, OpICmpNe, OpICmpStrictEq, OpICmpStrictNe,
		OpICmpLt, OpICmpLe, OpICmpGt, OpICmpGe,
		OpIBitAnd, OpIBitOr, OpIBitXor, OpIShl, OpIShr:
		rhs, err := vm.pop()
		if err != nil {
			return sigNone, nil, err
		}
		lhs, err := vm.pop()
		if err != nil {
			return sigNone, nil, err
		}
		v, err := vm.invokeOperator(lhs, opCodeToOperator(inst.Op), rhs)
		if err != nil {
			return sigNone, nil, err
		}
		vm.push(v)
	case OpINeg, OpINot, OpIBitNot:
		lhs, err := vm.pop()
		if err != nil {
			return sigNone, nil, err
		}
		v, err := vm.invokeOperator(lhs, opCodeToOperator(inst.Op), nil)
		if err != nil {
			return sigNone, nil, err
		}
		vm.push(v)

	// --- Control flow ---
	case OpGoto, OpGotoShort:
		frame.PC = int(inst.B)
	case OpBranchTrue:
		v, err := vm.pop()
		if err != nil {
			return sigNone, nil, err
		}
		if ToBool(vm.Dispatcher, v) {
			frame.PC = int(inst.B)
		}
	case OpBranchFalse:
		v, err := vm.pop()
		if err != nil {
			return sigNone, nil, err
		}
		if !ToBool(vm.Dispatcher, v) {
			frame.PC = int(inst.B)
		}
	case OpCompareAndBranchEq:
		rhs, err := vm.pop()
		if err != nil {
			return sigNone, nil, err
		}
		lhs, err := vm.pop()
		if err != nil {
			return sigNone, nil, err
		}
		if Equal(vm.Dispatcher, lhs, rhs) {
			frame.PC = int(inst.B)
		}
	case OpCompareAndBranchNe:
		rhs, err := vm.pop()
		if err != nil {
			return sigNone, nil, err
		}
		lhs, err := vm.pop()
		if err != nil {
			return sigNone, nil, err
		}
		if !Equal(vm.Dispatcher, lhs, rhs) {
			frame.PC = int(inst.B)
		}
	case OpInitDefaultArgs:
		// No-op: pushScriptedFrame already fills missing arguments with
		// undefined, and no default-argument jump table is applied.

	// --- Scope management ---
	case OpOpenBlock:
		nb := NewBlock(nil)
		nb.Prev = frame.CurrentBlock
		nb.ScopeChain = frame.CurrentBlock
		frame.CurrentBlock = nb
	case OpCloseBlock:
		if frame.CurrentBlock.Prev != nil {
			frame.CurrentBlock = frame.CurrentBlock.Prev
		}
	case OpOpenWith:
		v, err := vm.pop()
		if err != nil {
			return sigNone, nil, err
		}
		nb := NewBlock(nil)
		nb.Prev = frame.CurrentBlock
		nb.ScopeChain = frame.CurrentBlock
		if obj, ok := v.(*Object); ok {
			nb.names = obj.names
			nb.namesOwned = false
		}
		frame.CurrentBlock = nb
	case OpAddNamespace:
		frame.CurrentBlock.OpenNamespace(Namespace{URI: frame.Code.Pool.StringAt(int(inst.B))})
	case OpAddNamespaceRef:
		v, err := vm.pop()
		if err != nil {
			return sigNone, nil, err
		}
		frame.CurrentBlock.OpenNamespace(Namespace{URI: ToStringValue(vm.Dispatcher, v)})

	// --- Exceptions ---
	case OpThrow:
		v, err := vm.pop()
		if err != nil {
			return sigNone, nil, err
		}
		return sigNone, nil, &thrown{value: v}
	case OpFinally:
		// Marks the start of a finally block; the handler dispatch already
		// set frame.PC here. Nothing to do but continue.
	case OpEndException:
		if frame.CurrentBlock.PrevException != nil {
			err := frame.CurrentBlock.PrevException
			frame.CurrentBlock.PrevException = nil
			return sigNone, nil, err
		}

	// --- Object / function construction ---
	case OpNew:
		tv, err := vm.pop()
		if err != nil {
			return sigNone, nil, err
		}
		t, ok := tv.(*Type)
		if !ok {
			return sigNone, nil, vm.raise("TypeError: new requires a Type")
		}
		newInstance, err := NewInstance(vm.Dispatcher, t, 0)
		if err != nil {
			return sigNone, nil, err
		}
		vm.push(newInstance)
	case OpNewObject:
		vm.push(NewObject(nil))
	case OpDefineClass, OpDefineFunction:
		// Emitted by the (out-of-scope) compiler/loader fixup stage, not
		// produced by any runtime path this VM drives directly.

	// --- Stack / misc ---
	case OpPop:
		_, err := vm.pop()
		if err != nil {
			return sigNone, nil, err
		}
	case OpDup:
		vm.push(vm.peek())
	case OpSwap:
		n := len(vm.Stack)
		if n >= 2 {
			vm.Stack[n-1], vm.Stack[n-2] = vm.Stack[n-2], vm.Stack[n-1]
		}
	case OpReturn:
		return sigReturn, vm.Undef(), nil
	case OpReturnValue:
		v, err := vm.pop()
		if err != nil {
			return sigNone, nil, err
		}
		return sigReturn, v, nil
	case OpBreakpoint:
		// reserved, unimplemented (§9 open question)
	case OpEndCode:
		return sigReturn, vm.Undef(), nil

	default:
		return sigNone, nil, vm.raise("InstructionError: unknown opcode %v", inst.Op)
	}
	return sigNone, nil, nil
}

// thrown wraps a script-level exception value so handleException can
// recover the original Var rather than just its formatted message.
type thrown struct{ value Var }

func (t *thrown) Error() string {
	if t.value == nil {
		return "Error: null"
	}
	return ToStringValue(nil, t.value)
}

func (vm *VM) stringConst(frame *Frame, idx int32) Var {
	s := frame.Code.Pool.StringAt(int(idx))
	return NewPrimitive(nil, s)
}

func nthEnclosing(b *Block, n int) *Block {
	for i := 0; i < n && b != nil; i++ {
		b = b.Prev
	}
	return b
}

func nthBase(owner interface{}, n int) *Object {
	t, ok := owner.(*Type)
	if !ok {
		return nil
	}
	for i := 0; i < n && t != nil; i++ {
		t = t.BaseType
	}
	if t == nil {
		return nil
	}
	return &t.Object
}

func (vm *VM) popArgs(argc int) ([]Var, error) {
	if argc > len(vm.Stack) {
		return nil, vm.raise("InternalError: call argc exceeds stack depth")
	}
	n := len(vm.Stack)
	args := append([]Var(nil), vm.Stack[n-argc:]...)
	vm.Stack = vm.Stack[:n-argc]
	return args, nil
}

func (vm *VM) invokeOperator(lhs Var, op OperatorOp, rhs Var) (Var, error) {
	if lhs == nil {
		return nil, vm.raise("ReferenceError: operand is undefined")
	}
	t := lhs.Hdr().Type
	if t != nil && t.Helpers != nil && t.Helpers.InvokeOperator != nil {
		return t.Helpers.InvokeOperator(vm.Dispatcher, lhs, op, rhs)
	}
	return defaultInvokeOperator(vm.Dispatcher, lhs, op, rhs)
}

// opCodeToOperator maps the VM's arithmetic/comparison opcode family onto
// the OperatorOp a type's Helpers.InvokeOperator understands (§4.1).
func opCodeToOperator(op OpCode) OperatorOp {
	switch op {
	case OpIAdd:
		return OpAdd
	case OpISub:
		return OpSub
	case OpIMul:
		return OpMul
	case OpIDiv:
		return OpDiv
	case OpIMod:
		return OpMod
	case OpINeg:
		return OpNeg
	case OpINot:
		return OpLogicalNot
	case OpICmpEq:
		return OpCmpEq
	case OpICmpNe:
		return OpCmpNe
	case OpICmpStrictEq:
		return OpCmpStrictEq
	case OpICmpStrictNe:
		return OpCmpStrictNe
	case OpICmpLt:
		return OpCmpLt
	case OpICmpLe:
		return OpCmpLe
	case OpICmpGt:
		return OpCmpGt
	case OpICmpGe:
		return OpCmpGe
	case OpIBitAnd:
		return OpBitAnd
	case OpIBitOr:
		return OpBitOr
	case OpIBitXor:
		return OpBitXor
	case OpIBitNot:
		return OpBitNot
	case OpIShl:
		return OpShl
	case OpIShr:
		return OpShr
	}
	return OpAdd
}

// loadByName implements the full scope walk from §4.3: current block and
// its Prev chain, then the closure ScopeChain, then the global object.
func (vm *VM) loadByName(frame *Frame, name Name) (Var, error) {
	for b := frame.CurrentBlock; b != nil; b = b.Prev {
		if slot, _ := b.LookupLocal(name.Name); slot >= 0 {
			v, err := b.GetProperty(slot)
			if err != nil {
				return nil, err
			}
			return vm.maybeInvokeGetter(b, v)
		}
	}
	for b := frame.ScopeChain; b != nil; b = b.ScopeChain {
		if slot, _ := b.LookupLocal(name.Name); slot >= 0 {
			v, err := b.GetProperty(slot)
			if err != nil {
				return nil, err
			}
			return vm.maybeInvokeGetter(b, v)
		}
	}
	if slot, _ := vm.Globals.LookupLocal(name.Name); slot >= 0 {
		v, err := vm.Globals.GetProperty(slot)
		if err != nil {
			return nil, err
		}
		return vm.maybeInvokeGetter(vm.Globals, v)
	}
	return nil, vm.raise("ReferenceError: %q is not defined", name.Name)
}

func (vm *VM) storeByName(frame *Frame, name Name, value Var) error {
	for b := frame.CurrentBlock; b != nil; b = b.Prev {
		if slot, _ := b.LookupLocal(name.Name); slot >= 0 {
			raw, _ := b.GetProperty(slot)
			if handled, err := vm.maybeInvokeSetter(b, raw, value); handled {
				return err
			}
			_, err := b.SetProperty(slot, value)
			return err
		}
	}
	for b := frame.ScopeChain; b != nil; b = b.ScopeChain {
		if slot, _ := b.LookupLocal(name.Name); slot >= 0 {
			raw, _ := b.GetProperty(slot)
			if handled, err := vm.maybeInvokeSetter(b, raw, value); handled {
				return err
			}
			_, err := b.SetProperty(slot, value)
			return err
		}
	}
	// Not found anywhere: define it dynamically on the global object, the
	// conventional "implicit global" fallback for non-strict code (§4.3,
	// §9 open question resolved toward ECMA-compatible looseness).
	_, err := vm.Globals.SetPropertyByName(name, value)
	return err
}

// lookupNamedProperty resolves name on obj through its Type's Helpers
// (or the bare Object fallback), returning the slot alongside the raw
// value so callers can use it for getter/setter detection.
func (vm *VM) lookupNamedProperty(obj Var, name Name) (Var, int, error) {
	t := obj.Hdr().Type
	if t != nil && t.Helpers != nil && t.Helpers.GetPropertyByName != nil {
		return t.Helpers.GetPropertyByName(vm.Dispatcher, obj, name)
	}
	if o, ok := obj.(*Object); ok {
		return o.GetPropertyByName(name)
	}
	return nil, -1, vm.raise("TypeError: value has no properties")
}

// getPropertyAtSlot reads obj's slot directly, used to resolve a getter's
// paired setter (§9 "getter/setter as linked slots"), which lives at a
// different slot than the name that resolved to the getter.
func (vm *VM) getPropertyAtSlot(obj Var, slot int) (Var, error) {
	t := obj.Hdr().Type
	if t != nil && t.Helpers != nil && t.Helpers.GetProperty != nil {
		return t.Helpers.GetProperty(vm.Dispatcher, obj, slot)
	}
	if o, ok := obj.(*Object); ok {
		return o.GetProperty(slot)
	}
	return nil, vm.raise("TypeError: value has no properties")
}

// maybeInvokeGetter runs raw as a getter and returns its result if it is
// an accessor function (FlagHasGetterSetter set and FnGetter set);
// otherwise raw is returned unchanged as a plain property value (§4.5,
// §9).
func (vm *VM) maybeInvokeGetter(obj Var, raw Var) (Var, error) {
	fn, ok := raw.(*Function)
	if !ok || !fn.Object.Flags.Has(FlagHasGetterSetter) || fn.Flags&FnGetter == 0 {
		return raw, nil
	}
	return vm.RunFunction(fn, obj, nil)
}

// maybeInvokeSetter runs value through raw's paired setter if raw is an
// accessor function, reporting handled=true so the caller skips the
// plain slot write (§4.5, §9).
func (vm *VM) maybeInvokeSetter(obj Var, raw Var, value Var) (handled bool, err error) {
	fn, ok := raw.(*Function)
	if !ok || !fn.Object.Flags.Has(FlagHasGetterSetter) {
		return false, nil
	}
	setterFn := fn
	if fn.Flags&FnSetter == 0 {
		setterSlot := fn.PairedSetter()
		if setterSlot < 0 {
			return true, vm.raise("TypeError: property %q has no setter", fn.Name)
		}
		sv, err := vm.getPropertyAtSlot(obj, setterSlot)
		if err != nil {
			return true, err
		}
		sf, ok := sv.(*Function)
		if !ok {
			return true, vm.raise("TypeError: property %q has no setter", fn.Name)
		}
		setterFn = sf
	}
	_, err = vm.RunFunction(setterFn, obj, []Var{value})
	return true, err
}

func (vm *VM) getProperty(obj Var, name Name) (Var, error) {
	if obj == nil {
		return nil, vm.raise("ReferenceError: cannot read property %q of null", name.Name)
	}
	raw, _, err := vm.lookupNamedProperty(obj, name)
	if err != nil {
		return nil, err
	}
	return vm.maybeInvokeGetter(obj, raw)
}

func (vm *VM) setProperty(obj Var, name Name, value Var) error {
	if obj == nil {
		return vm.raise("ReferenceError: cannot set property %q of null", name.Name)
	}
	raw, _, _ := vm.lookupNamedProperty(obj, name)
	if handled, err := vm.maybeInvokeSetter(obj, raw, value); handled {
		return err
	}
	t := obj.Hdr().Type
	if t != nil && t.Helpers != nil && t.Helpers.SetPropertyName != nil {
		_, err := t.Helpers.SetPropertyName(vm.Dispatcher, obj, name, value)
		return err
	}
	if o, ok := obj.(*Object); ok {
		_, err := o.SetPropertyByName(name, value)
		return err
	}
	return vm.raise("TypeError: value has no properties")
}

// dispatchCall runs callee (native or scripted) with this and args. For a
// scripted callee it pushes a new Frame and lets the outer dispatch loop
// pick it up (§4.5's iterative calling convention: no Go-stack recursion
// for script-to-script calls). For a native callee it runs synchronously
// and pushes the result itself.
func (vm *VM) dispatchCall(callee Var, this Var, args []Var) error {
	fn, ok := callee.(*Function)
	if !ok {
		return vm.raise("TypeError: value is not callable")
	}
	if fn.IsNative() {
		v, err := fn.Proc(vm.Dispatcher, this, args)
		if err != nil {
			return err
		}
		vm.push(v)
		return nil
	}
	caller := vm.topFrame()
	vm.pushScriptedFrame(fn, this, caller, args)
	return nil
}

// classifyError splits a "Class: message" formatted error (the
// convention every raise/fnErr call in this package follows) into its
// exception class name and message, for handler-table CatchType matching
// (§4.6, §7).
func classifyError(err error) (class, msg string) {
	s := err.Error()
	if i := strings.Index(s, ": "); i >= 0 {
		return s[:i], s[i+2:]
	}
	return "Error", s
}
