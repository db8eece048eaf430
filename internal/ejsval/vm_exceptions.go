package ejsval

// handleException implements §4.6's unwind: starting at the frame that
// raised err, walk outward through the frame chain looking for a handler
// whose try range covers the throw site. A matching catch binds the
// exception value and resumes inside the handler; a matching finally
// runs first and, via OpEndException, re-raises the saved error once it
// completes, continuing the unwind from there. A frame with no covering
// handler is discarded entirely (its locals die with it, per §4.6 "no
// handler unwinds the frame").
func (vm *VM) handleException(origin *Frame, err error) (handled bool, resumed bool) {
	excVar := vm.valueFromError(err)
	class, _ := vm.classOf(err, excVar)

	first := true
	for len(vm.Frames) > 0 {
		f := vm.topFrame()
		pc := f.PC
		if first {
			pc = f.PC - 1
		}

		if h, ok := findHandler(f.Code.Handlers, pc, HandlerCatch, class); ok {
			vm.Stack = vm.Stack[:min(len(vm.Stack), f.StackReturn)]
			vm.Exception = excVar
			vm.push(excVar)
			f.PC = h.HandlerStart
			f.InCatch = true
			f.InException = false
			return true, true
		}

		if h, ok := findHandler(f.Code.Handlers, pc, HandlerFinally, ""); ok {
			vm.Stack = vm.Stack[:min(len(vm.Stack), f.StackReturn)]
			f.CurrentBlock.PrevException = err
			f.PC = h.HandlerStart
			f.InException = true
			return true, true
		}

		// No handler in this frame: it unwinds entirely.
		vm.Stack = vm.Stack[:min(len(vm.Stack), f.StackReturn)]
		vm.popFrame()
		first = false
	}
	return false, false
}

func findHandler(table []ExceptionHandler, pc int, want HandlerFlags, class string) (ExceptionHandler, bool) {
	for _, h := range table {
		if pc < h.TryStart || pc >= h.TryEnd {
			continue
		}
		if h.Flags&want == 0 {
			continue
		}
		if want == HandlerCatch && h.CatchType != nil && h.CatchType.Name != class {
			continue
		}
		return h, true
	}
	return ExceptionHandler{}, false
}

// valueFromError recovers the original script-level Var from a thrown
// exception, or boxes a VM/runtime error as a String primitive carrying
// its "Class: message" text (§7).
func (vm *VM) valueFromError(err error) Var {
	if t, ok := err.(*thrown); ok {
		return t.value
	}
	return NewPrimitive(nil, err.Error())
}

func (vm *VM) classOf(err error, v Var) (string, string) {
	if t, ok := err.(*thrown); ok && t.value != nil {
		if tv := t.value.Hdr().Type; tv != nil {
			return tv.Name, ToStringValue(vm.Dispatcher, t.value)
		}
	}
	class, msg := classifyError(err)
	return class, msg
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
