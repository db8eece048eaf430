package ejsval_test

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/cwbudde/go-ejs/internal/ejsval"
	"github.com/cwbudde/go-ejs/internal/loader"
)

// buildSumModule hand-assembles a module whose initializer loads two
// integer constants and adds them (OpLoadInt, OpLoadInt, OpIAdd), a
// small listing for the disassembler output snapshot.
func buildSumModule(t *testing.T) []byte {
	t.Helper()
	w := loader.NewWriter()
	w.Magic()
	w.Byte(byte(loader.TagModule))
	w.String("sum")
	w.Num(1)
	w.Num(0)
	w.Num(0)
	w.Word(0)

	w.Byte(byte(loader.TagFunction))
	w.Name("main", "")                   // name
	w.Num(0)                             // nextSlot
	w.Num(int64(ejsval.FnIsInitializer)) // attributes
	w.Byte(0)                            // lang
	w.TypeRef(0)                         // returnType
	w.Num(0)                             // slotNum
	w.Num(0)                             // numArgs
	w.Num(2)                             // numLocals
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

func TestDisassembleInitializer(t *testing.T) {
	ld := loader.NewLoader(nil)
	mod, err := ld.LoadModule(buildSumModule(t))
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
	if err := ld.ResolveFixups(); err != nil {
		t.Fatalf("ResolveFixups: %v", err)
	}

	var out strings.Builder
	ejsval.NewDisassembler(mod.Initializer, &out).Disassemble()

	snaps.MatchSnapshot(t, "sum_initializer", out.String())
}
