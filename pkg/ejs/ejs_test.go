package ejs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/go-ejs/internal/ejsval"
	"github.com/cwbudde/go-ejs/internal/gc"
	"github.com/cwbudde/go-ejs/internal/loader"
	"github.com/cwbudde/go-ejs/pkg/ejs"
)

// writeSumModule writes a module named "sum" whose initializer computes
// 1+2 into dir, returning the module's on-disk path.
func writeSumModule(t *testing.T, dir string) string {
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

	path := filepath.Join(dir, "sum.mod")
	if err := os.WriteFile(path, w.Bytes(), 0o644); err != nil {
		t.Fatalf("writing module: %v", err)
	}
	return path
}

func TestLoadModuleAndRunInitializer(t *testing.T) {
	dir := t.TempDir()
	writeSumModule(t, dir)

	svc := ejs.NewService(dir)
	interp := ejs.NewInterpreter(svc)

	mod, err := interp.LoadModule("sum", 0, ejs.MakeVersion(99, 0, 0))
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
	if mod.Name() != "sum" {
		t.Errorf("mod.Name() = %q, want %q", mod.Name(), "sum")
	}

	if err := interp.RunInitializer(mod); err != nil {
		t.Fatalf("RunInitializer: %v", err)
	}
}

func TestLoadModuleRejectsVersionOutsideRange(t *testing.T) {
	dir := t.TempDir()
	writeSumModule(t, dir)

	svc := ejs.NewService(dir)
	interp := ejs.NewInterpreter(svc)

	_, err := interp.LoadModule("sum", ejs.MakeVersion(2, 0, 0), ejs.MakeVersion(3, 0, 0))
	if err == nil {
		t.Error("expected a version-range error, got nil")
	}
}

func TestSlaveInterpreterSharesMasterSingletons(t *testing.T) {
	svc := ejs.NewService()
	master := ejs.NewInterpreter(svc)
	slave := ejs.NewSlaveInterpreter(master)

	if slave.Bool(true) != master.Bool(true) {
		t.Error("a slave should share the master's True singleton, not mint its own")
	}
}

func TestValueConstructorsAreDistinct(t *testing.T) {
	svc := ejs.NewService()
	interp := ejs.NewInterpreter(svc)

	if interp.Number(3.5) == interp.Undefined() {
		t.Error("Number(3.5) should not equal Undefined()")
	}
	if interp.String("hi") == interp.Null() {
		t.Error("String(\"hi\") should not equal Null()")
	}
	if interp.Bool(true) == interp.Bool(false) {
		t.Error("Bool(true) should not equal Bool(false)")
	}
}

func TestCollectRunsWhenGCDisabled(t *testing.T) {
	svc := ejs.NewService()
	interp := ejs.NewInterpreter(svc)

	interp.EnableGC(false)
	interp.Collect(ejs.GenNew)

	if stats := interp.Stats(); stats.Collects != 1 {
		t.Errorf("Collect() records a collection pass regardless of Enabled (Enabled only gates the VM's automatic trigger); Collects = %d, want 1", stats.Collects)
	}
}

func TestAllocNotifierRuns(t *testing.T) {
	svc := ejs.NewService()
	interp := ejs.NewInterpreter(svc)

	var seen gc.Stats
	interp.SetAllocNotifier(func(s gc.Stats) { seen = s })
	interp.Collect(ejs.GenNew)

	if seen.Collects != 1 {
		t.Errorf("allocation notifier saw Collects = %d, want 1", seen.Collects)
	}
}
