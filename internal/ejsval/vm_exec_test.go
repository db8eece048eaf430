package ejsval

import "testing"

func newTestVM() *VM {
	zero := NewPrimitive(nil, int64(0))
	one := NewPrimitive(nil, int64(1))
	undef := NewPrimitive(nil, nil)
	undef.Flags |= FlagPermanent
	t := NewPrimitive(nil, true)
	f := NewPrimitive(nil, false)

	d := &Dispatcher{
		Singletons: Singletons{
			True: t, False: f, Undefined: undef, Null: undef,
			Zero: zero, One: one,
		},
		Raise: func(class, format string, args ...interface{}) error {
			return &thrown{value: NewPrimitive(nil, class)}
		},
	}
	return NewVM(NewBlock(nil), d)
}

// buildFunction assembles a Function with the given instructions and
// (optional) exception handler table, ready to run with VM.RunFunction.
func buildFunction(code []Instruction, handlers []ExceptionHandler) *Function {
	fn := NewFunction(nil)
	fn.Name = "test"
	fn.Code = &Code{
		ByteCode: code,
		Handlers: handlers,
		Pool:     &ConstantPool{},
	}
	return fn
}

func TestRunFunctionReturnsValue(t *testing.T) {
	vm := newTestVM()
	fn := buildFunction([]Instruction{
		{Op: OpLoadInt, B: 41},
		{Op: OpLoadInt, B: 1},
		{Op: OpIAdd},
		{Op: OpReturnValue},
	}, nil)

	result, err := vm.RunFunction(fn, nil, nil)
	if err != nil {
		t.Fatalf("RunFunction: %v", err)
	}
	p, ok := result.(*Primitive)
	if !ok {
		t.Fatalf("result is %T, want *Primitive", result)
	}
	if got := p.Number(); got != 42 {
		t.Errorf("41+1 = %v, want 42", got)
	}
	if len(vm.Frames) != 0 {
		t.Errorf("RunFunction left %d frames on the stack, want 0 (P6 call-stack neutrality)", len(vm.Frames))
	}
}

func TestBranchTrueSkipsElseBranch(t *testing.T) {
	vm := newTestVM()
	// if (true) load 1 else load 2; return
	fn := buildFunction([]Instruction{
		{Op: OpLoadTrue},             // 0
		{Op: OpBranchFalse, B: 4},    // 1: false -> pc 4
		{Op: OpLoadInt, B: 1},        // 2
		{Op: OpGoto, B: 5},           // 3
		{Op: OpLoadInt, B: 2},        // 4
		{Op: OpReturnValue},          // 5
	}, nil)

	result, err := vm.RunFunction(fn, nil, nil)
	if err != nil {
		t.Fatalf("RunFunction: %v", err)
	}
	if got := result.(*Primitive).Number(); got != 1 {
		t.Errorf("branch result = %v, want 1 (true branch taken)", got)
	}
}

func TestThrowUnwindsToCatchHandler(t *testing.T) {
	vm := newTestVM()
	// try { throw 99 } catch (e) { return e }
	fn := buildFunction([]Instruction{
		{Op: OpLoadInt, B: 99}, // 0: try range [0,2)
		{Op: OpThrow},          // 1
		{Op: OpReturnValue},    // 2: catch handler starts here
	}, []ExceptionHandler{
		{TryStart: 0, TryEnd: 2, HandlerStart: 2, HandlerEnd: 3, Flags: HandlerCatch, CatchType: nil},
	})

	result, err := vm.RunFunction(fn, nil, nil)
	if err != nil {
		t.Fatalf("RunFunction: %v", err)
	}
	p, ok := result.(*Primitive)
	if !ok {
		t.Fatalf("result is %T, want *Primitive", result)
	}
	if got := p.Number(); got != 99 {
		t.Errorf("caught value = %v, want 99", got)
	}
	if len(vm.Frames) != 0 {
		t.Errorf("RunFunction left %d frames on the stack after an exception, want 0", len(vm.Frames))
	}
}

func TestThrowWithNoHandlerUnwindsFrame(t *testing.T) {
	vm := newTestVM()
	fn := buildFunction([]Instruction{
		{Op: OpLoadInt, B: 1},
		{Op: OpThrow},
	}, nil)

	_, err := vm.RunFunction(fn, nil, nil)
	if err == nil {
		t.Fatal("expected an error from an unhandled throw")
	}
	if len(vm.Frames) != 0 {
		t.Errorf("unhandled throw left %d frames on the stack, want 0", len(vm.Frames))
	}
}
