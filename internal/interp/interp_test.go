package interp

import (
	"testing"

	"github.com/cwbudde/go-ejs/internal/ejsval"
	"github.com/cwbudde/go-ejs/internal/loader"
)

// buildAddModule hand-assembles a module whose initializer computes 1+2,
// exercising the loader and VM together end to end.
func buildAddModule() []byte {
	w := loader.NewWriter()
	w.Magic()
	w.Byte(byte(loader.TagModule))
	w.String("arith")
	w.Num(1)
	w.Num(0)
	w.Num(0)
	w.Word(0)

	w.Byte(byte(loader.TagFunction))
	w.Name("", "")                       // unnamed -> module initializer
	w.Num(0)                             // nextSlot
	w.Num(int64(ejsval.FnIsInitializer)) // attributes
	w.Byte(0)                            // lang
	w.TypeRef(0)                         // returnType
	w.Num(0)                             // slotNum
	w.Num(0)                             // numArgs
	w.Num(0)                             // numLocals
	w.Num(0)                             // numExceptions

	w.Byte(byte(loader.TagCode))
	w.Num(3)
	w.Byte(byte(ejsval.OpLoadInt))
	w.Num(0)
	w.Num(1)
	w.Byte(byte(ejsval.OpLoadInt))
	w.Num(0)
	w.Num(2)
	w.Byte(byte(ejsval.OpIAdd))
	w.Num(0)
	w.Num(0)

	w.Byte(byte(loader.TagFunctionEnd))
	w.Byte(byte(loader.TagModuleEnd))
	return w.Bytes()
}

func newTestMaster() *Interpreter {
	return NewMaster(NewService(nil))
}

func TestMasterBootstrapsCoreTypes(t *testing.T) {
	ejs := newTestMaster()
	for _, name := range []string{"Object", "Type", "Block", "Namespace", "Function", "Null", "Boolean", "Number", "String", "Void"} {
		if _, ok := ejs.CoreTypes[name]; !ok {
			t.Errorf("CoreTypes[%q] missing after bootstrap", name)
		}
	}
	if ejs.Global == nil {
		t.Fatal("Global is nil after bootstrap")
	}
	if !ejs.VM.Undef().Hdr().IsPermanent() {
		t.Error("the undefined singleton should be permanent")
	}
}

func TestRunInitializerComputesSum(t *testing.T) {
	ejs := newTestMaster()

	mod, err := ejs.Loader.LoadModule(buildAddModule())
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
	if err := ejs.Loader.ResolveFixups(); err != nil {
		t.Fatalf("ResolveFixups: %v", err)
	}
	ejs.Modules = append(ejs.Modules, mod)

	result, err := ejs.RunInitializer(mod)
	if err != nil {
		t.Fatalf("RunInitializer: %v", err)
	}
	p, ok := result.(*ejsval.Primitive)
	if !ok {
		t.Fatalf("result is %T, want *ejsval.Primitive", result)
	}
	if got := p.Number(); got != 3 {
		t.Errorf("1+2 = %v, want 3", got)
	}
	if !mod.Initialized {
		t.Error("module should be marked Initialized after RunInitializer")
	}
}

func TestRunInitializerIsIdempotent(t *testing.T) {
	ejs := newTestMaster()
	mod, err := ejs.Loader.LoadModule(buildAddModule())
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
	ejs.Modules = append(ejs.Modules, mod)

	if _, err := ejs.RunInitializer(mod); err != nil {
		t.Fatalf("first RunInitializer: %v", err)
	}
	v, err := ejs.RunInitializer(mod)
	if err != nil {
		t.Fatalf("second RunInitializer: %v", err)
	}
	if v != ejs.VM.Undef() {
		t.Errorf("re-running an initialized module should return undefined, got %v", v)
	}
}

func TestSlaveSharesCoreTypesNotGlobals(t *testing.T) {
	master := newTestMaster()
	slave := NewSlave(master)

	if slave.CoreTypes["Object"] != master.CoreTypes["Object"] {
		t.Error("slave should share the master's CoreTypes")
	}
	if slave.Global == master.Global {
		t.Error("slave should have its own Global, not the master's")
	}
}
