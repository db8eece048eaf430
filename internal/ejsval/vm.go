package ejsval

import "fmt"

// VM is the stack-based bytecode interpreter (§4.5). It owns the
// evaluation stack, the frame chain (fp), the current lexical block (bp),
// and the attention flag the dispatch loop rechecks after every
// instruction (§4.5, §5).
//
// One VM serves one Interpreter; the interp package constructs a VM per
// Ejs and feeds it Globals/Dispatcher/output before calling RunFunction.
type VM struct {
	Stack     []Var
	Frames    []*Frame
	Globals   *Block
	Dispatcher *Dispatcher

	Exception Var
	Attention bool
	Exiting   bool

	// GCCheck, when set, is invoked after every instruction; it returns
	// true if a collection ran (so Attention can be cleared).
	GCCheck func() bool
}

func NewVM(globals *Block, d *Dispatcher) *VM {
	return &VM{
		Stack:      make([]Var, 0, 256),
		Frames:     make([]*Frame, 0, 32),
		Globals:    globals,
		Dispatcher: d,
	}
}

func (vm *VM) push(v Var) { vm.Stack = append(vm.Stack, v) }

func (vm *VM) pop() (Var, error) {
	n := len(vm.Stack)
	if n == 0 {
		return nil, fmt.Errorf("InternalError: stack underflow")
	}
	v := vm.Stack[n-1]
	vm.Stack = vm.Stack[:n-1]
	return v, nil
}

func (vm *VM) peek() Var {
	if len(vm.Stack) == 0 {
		return nil
	}
	return vm.Stack[len(vm.Stack)-1]
}

func (vm *VM) topFrame() *Frame {
	if len(vm.Frames) == 0 {
		return nil
	}
	return vm.Frames[len(vm.Frames)-1]
}

func (vm *VM) raise(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// Undef/Null/True/False read through to the Dispatcher's per-interpreter
// singletons (§3, §5).
func (vm *VM) Undef() Var { return vm.Dispatcher.Singletons.Undefined }
func (vm *VM) Null() Var  { return vm.Dispatcher.Singletons.Null }
func (vm *VM) Bool(b bool) Var {
	if b {
		return vm.Dispatcher.Singletons.True
	}
	return vm.Dispatcher.Singletons.False
}

// RunFunction is the calling convention's entry point (§4.5 step 3/4,
// §4.8 "Running a function"): push argv left to right, call through the
// VM (scripted) or invoke proc directly (native), and return ejs.result
// or the error on exception.
func (vm *VM) RunFunction(fn *Function, this Var, argv []Var) (Var, error) {
	if fn.IsNative() {
		return fn.Proc(vm.Dispatcher, this, argv)
	}
	frame := vm.pushScriptedFrame(fn, this, nil, argv)
	return vm.dispatch(frame)
}

// pushScriptedFrame allocates a Frame, binds argv into local slots 0..N-1
// (missing args filled with undefined, extras collected into a rest
// array or dropped per fn.Flags, §4.5 step 3), sets caller/stackReturn,
// and installs it as both fp and bp.
func (vm *VM) pushScriptedFrame(fn *Function, this Var, caller *Frame, argv []Var) *Frame {
	frame := NewFrame(fn, caller, len(argv), len(vm.Stack))
	frame.ThisObj = this
	frame.ScopeChain = fn.ScopeChain
	frame.Prev = fn.ScopeChain

	n := fn.NumArgs
	if fn.HasRest() && n > 0 {
		n--
	}
	for i := 0; i < n; i++ {
		if i < len(argv) {
			frame.SetArg(i, argv[i])
		} else {
			frame.SetArg(i, vm.Undef())
		}
	}
	if fn.HasRest() {
		var rest []Var
		if len(argv) > n {
			rest = append(rest, argv[n:]...)
		}
		frame.SetArg(fn.NumArgs-1, NewPrimitive(nil, rest))
	}
	vm.Frames = append(vm.Frames, frame)
	if vm.Dispatcher.Register != nil {
		vm.Dispatcher.Register(frame)
	}
	return frame
}

func (vm *VM) popFrame() {
	n := len(vm.Frames)
	if n == 0 {
		return
	}
	vm.Frames = vm.Frames[:n-1]
}

// dispatch runs the frame (and any callee frames it pushes) until the
// frame identified at entry returns, implementing the per-instruction
// attention check from §4.5/§5.
func (vm *VM) dispatch(entry *Frame) (Var, error) {
	baseDepth := len(vm.Frames) - 1 // index of entry in vm.Frames
	for len(vm.Frames) > baseDepth {
		frame := vm.topFrame()
		if frame.PC >= frame.Code.Len() {
			// implicit return: the value left on top of this frame's
			// stack, or undefined if it left none (§4.5 return sequence).
			ret := vm.Undef()
			if len(vm.Stack) > frame.StackReturn {
				ret = vm.Stack[len(vm.Stack)-1]
			}
			vm.Stack = vm.Stack[:frame.StackReturn]
			vm.popFrame()
			if len(vm.Frames) > baseDepth {
				vm.push(ret)
			}
			if len(vm.Frames) == baseDepth {
				return ret, nil
			}
			continue
		}

		inst := frame.Code.ByteCode[frame.PC]
		frame.PC++

		sig, retVal, err := vm.exec(frame, inst)

		if err != nil {
			handled, resumed := vm.handleException(frame, err)
			if handled {
				frame = vm.topFrame()
				_ = resumed
				continue
			}
			return nil, err
		}

		switch sig {
		case sigNone:
			// fall through
		case sigReturn:
			vm.Stack = vm.Stack[:frame.StackReturn]
			vm.popFrame()
			if len(vm.Frames) > baseDepth {
				vm.push(retVal)
			} else {
				return retVal, nil
			}
		case sigHalt:
			return retVal, nil
		}

		if vm.GCCheck != nil && vm.Attention {
			if vm.GCCheck() {
				vm.Attention = false
			}
		}
	}
	if len(vm.Stack) > 0 {
		return vm.Stack[len(vm.Stack)-1], nil
	}
	return vm.Undef(), nil
}

type signal int

const (
	sigNone signal = iota
	sigReturn
	sigHalt
)
