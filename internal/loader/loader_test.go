package loader

import (
	"testing"

	"github.com/cwbudde/go-ejs/internal/ejsval"
)

// buildModule hand-assembles a minimal .mod byte stream: one module
// named "m" whose initializer computes 1+2 and returns it, exercising
// every section a real compiler's output would use for a top-level
// function with no classes or dependencies.
func buildModule(t *testing.T) []byte {
	t.Helper()
	w := NewWriter()
	w.Magic()
	w.Byte(byte(TagModule))
	w.String("m")
	w.Num(1) // major
	w.Num(0) // minor
	w.Num(0) // patch
	w.Word(0)

	w.Byte(byte(TagFunction))
	w.Name("", "")                            // unnamed -> module initializer
	w.Num(0)                                  // nextSlot
	w.Num(int64(ejsval.FnIsInitializer))      // attributes
	w.Byte(0)                                 // lang
	w.TypeRef(0)                              // returnType
	w.Num(0)                                  // slotNum
	w.Num(0)                                  // numArgs
	w.Num(0)                                  // numLocals
	w.Num(0)                                  // numExceptions

	w.Byte(byte(TagCode))
	w.Num(3) // 3 instructions
	w.Byte(byte(ejsval.OpLoadInt))
	w.Num(0)
	w.Num(1)
	w.Byte(byte(ejsval.OpLoadInt))
	w.Num(0)
	w.Num(2)
	w.Byte(byte(ejsval.OpIAdd))
	w.Num(0)
	w.Num(0)

	w.Byte(byte(TagFunctionEnd))
	w.Byte(byte(TagModuleEnd))
	return w.Bytes()
}

func TestLoadModuleDecodesInitializer(t *testing.T) {
	ld := NewLoader(nil)
	mod, err := ld.LoadModule(buildModule(t))
	if err != nil {
		t.Fatalf("LoadModule: unexpected error: %v", err)
	}
	if mod.Name != "m" {
		t.Errorf("mod.Name = %q, want %q", mod.Name, "m")
	}
	if mod.Ver.Major() != 1 {
		t.Errorf("mod.Ver.Major() = %d, want 1", mod.Ver.Major())
	}
	if mod.Initializer == nil {
		t.Fatal("mod.Initializer is nil, want the decoded function")
	}
	if got := len(mod.Initializer.Code.ByteCode); got != 3 {
		t.Errorf("Initializer has %d instructions, want 3", got)
	}
	if err := ld.ResolveFixups(); err != nil {
		t.Fatalf("ResolveFixups: unexpected error: %v", err)
	}
}

func TestLoadModuleDecodesSameTwice(t *testing.T) {
	data := buildModule(t)
	ld1 := NewLoader(nil)
	mod1, err := ld1.LoadModule(data)
	if err != nil {
		t.Fatalf("first decode: %v", err)
	}
	ld2 := NewLoader(nil)
	mod2, err := ld2.LoadModule(data)
	if err != nil {
		t.Fatalf("second decode: %v", err)
	}
	if len(mod1.Initializer.Code.ByteCode) != len(mod2.Initializer.Code.ByteCode) {
		t.Errorf("decoding the same module twice produced different instruction counts: %d vs %d",
			len(mod1.Initializer.Code.ByteCode), len(mod2.Initializer.Code.ByteCode))
	}
}

// buildClassModule hand-encodes one CLASS row carrying one PROPERTY and
// one FUNCTION (method), each field written in the exact order §6.1's
// module file format table lists them, to validate the loader against
// the documented wire layout rather than just its own self-consistency.
func buildClassModule(t *testing.T) []byte {
	t.Helper()
	w := NewWriter()
	w.Magic()
	w.Byte(byte(TagModule))
	w.String("m")
	w.Num(1)
	w.Num(0)
	w.Num(0)
	w.Word(0)

	w.Byte(byte(TagClass))
	w.Name("Point", "")
	w.Num(0)     // attributes
	w.Num(0)     // slotNum
	w.TypeRef(0) // base (resolved slot 0: Object, by convention here)
	w.Num(1)     // numTypeProp
	w.Num(1)     // numInstanceProp
	w.Num(0)     // numInterfaces

	w.Byte(byte(TagProperty))
	w.Name("x", "")
	w.Num(0) // attributes (no HAS_VALUE)
	w.Num(0) // slotNum
	w.TypeRef(0)

	w.Byte(byte(TagFunction))
	w.Name("getX", "")
	w.Num(0)                           // nextSlot
	w.Num(int64(ejsval.FnGetter))      // attributes
	w.Byte(byte(ejsval.LangFixed))     // lang
	w.TypeRef(0)                       // returnType
	w.Num(1)                           // slotNum
	w.Num(0)                           // numArgs
	w.Num(0)                           // numLocals
	w.Num(0)                           // numExceptions
	w.Byte(byte(TagCode))
	w.Num(0)
	w.Byte(byte(TagFunctionEnd))

	w.Byte(byte(TagClassEnd))
	w.Byte(byte(TagModuleEnd))
	return w.Bytes()
}

func TestLoadModuleDecodesClassPropertyAndMethod(t *testing.T) {
	ld := NewLoader(nil)
	mod, err := ld.LoadModule(buildClassModule(t))
	if err != nil {
		t.Fatalf("LoadModule: unexpected error: %v", err)
	}

	ty, ok := ld.Types()["m.Point"]
	if !ok {
		t.Fatal("decoded module has no m.Point type")
	}
	if ty.NumTypeProp != 1 || ty.NumInstanceProp != 1 {
		t.Errorf("Point.NumTypeProp/NumInstanceProp = %d/%d, want 1/1", ty.NumTypeProp, ty.NumInstanceProp)
	}

	slot := ty.InstanceTraitAt(0)
	if slot == nil {
		t.Fatal("Point has no instance trait at slot 0 for its x property")
	}

	if mod.Name != "m" {
		t.Errorf("mod.Name = %q, want %q", mod.Name, "m")
	}
}

func TestLoadModuleRejectsBadMagic(t *testing.T) {
	ld := NewLoader(nil)
	if _, err := ld.LoadModule([]byte("NOPE")); err == nil {
		t.Error("LoadModule with bad magic: expected error, got nil")
	}
}

func TestResolveFixupsReportsMissingType(t *testing.T) {
	ld := NewLoader(nil)
	ld.fixups = append(ld.fixups, Fixup{
		Ref:   TypeRef{Module: "other", TypeName: "Missing"},
		Apply: func(*ejsval.Type) {},
	})
	if err := ld.ResolveFixups(); err == nil {
		t.Error("ResolveFixups with an unresolvable reference: expected error, got nil")
	}
}
