// Package ejs is the public embedding API (§6.3): create a Service, spawn
// master/slave Interpreters, load modules, run their initializers or a
// named function, and control the garbage collector — without exposing
// the internal value-model or loader packages to host applications.
package ejs

import (
	"fmt"
	"io"
	"log"

	"github.com/cwbudde/go-ejs/internal/ejsval"
	"github.com/cwbudde/go-ejs/internal/gc"
	"github.com/cwbudde/go-ejs/internal/interp"
	"github.com/cwbudde/go-ejs/internal/loader"
)

// Service owns the native-module registry and default search path shared
// by every Interpreter spawned from it (§6.3 "Create service").
type Service struct {
	inner *interp.Service
}

// NewService creates a Service with the given default module search
// path (EJSPATH-equivalent entries the host wants searched first; §6.4).
func NewService(searchPath ...string) *Service {
	return &Service{inner: interp.NewService(searchPath)}
}

// AddSearchPath appends a directory to the service's module search path.
func (s *Service) AddSearchPath(dir string) {
	s.inner.SearchPath = append(s.inner.SearchPath, dir)
}

// SetVerbose toggles whether GC/exception/module-load diagnostics are
// logged: off by default (discarded), on writes through the Service's
// Logger at its configured destination (§10's "--verbose" ambient flag).
func (s *Service) SetVerbose(verbose bool) {
	if verbose {
		s.inner.Logger.SetOutput(s.inner.Output)
		return
	}
	s.inner.Logger.SetOutput(io.Discard)
}

// SetLogger replaces the Service's logger outright, e.g. to redirect
// diagnostics to a host-owned log sink instead of Output.
func (s *Service) SetLogger(l *log.Logger) {
	s.inner.Logger = l
}

// NativeModule installs a Go callback that populates a module's members
// when a module of that name is loaded, standing in for native (dlopen)
// modules (§4.4, §6.3 "install native module callback").
type NativeModule func(i *Interpreter, mod *Module) error

func (s *Service) RegisterNative(name string, fn NativeModule) {
	s.inner.RegisterNative(name, func(ejs *interp.Interpreter, mod *ejsval.Module) error {
		return fn(&Interpreter{inner: ejs}, &Module{inner: mod})
	})
}

// Interpreter is one independent script execution context (§6.3 "create
// interpreter (optionally with master and extra search path)").
type Interpreter struct {
	inner *interp.Interpreter
}

// NewInterpreter creates a master interpreter bound to svc, bootstrapping
// the core type hierarchy (§4.8).
func NewInterpreter(svc *Service) *Interpreter {
	return &Interpreter{inner: interp.NewMaster(svc.inner)}
}

// NewSlaveInterpreter clones master cheaply, sharing its core types and
// Service but starting with a fresh global object and GC state (§4.8,
// §6.3 "create interpreter (optionally with master ...)").
func NewSlaveInterpreter(master *Interpreter, extraSearchPath ...string) *Interpreter {
	slave := interp.NewSlave(master.inner)
	slave.Loader.SearchPath = append(slave.Loader.SearchPath, extraSearchPath...)
	return &Interpreter{inner: slave}
}

// AddSearchPath appends a directory to this interpreter's own module
// search path (on top of its Service's default one).
func (i *Interpreter) AddSearchPath(dir string) {
	i.inner.Loader.SearchPath = append(i.inner.Loader.SearchPath, dir)
}

// Module wraps a loaded bytecode module.
type Module struct {
	inner *ejsval.Module
}

func (m *Module) Name() string          { return m.inner.Name }
func (m *Module) Version() (maj, min, patch int) {
	v := m.inner.Ver
	return v.Major(), v.Minor(), v.Patch()
}

// LoadModule locates name on the search path, decodes it, and resolves
// its type fixups, but does not yet run its initializer (§6.1, §6.3
// "Load module by name with version range").
func (i *Interpreter) LoadModule(name string, minVer, maxVer Version) (*Module, error) {
	path, err := i.inner.Loader.FindModule(name)
	if err != nil {
		return nil, err
	}
	mod, err := i.inner.LoadModuleFile(path)
	if err != nil {
		return nil, err
	}
	if !loader.VersionSatisfies(mod.Ver, ejsval.Version(minVer), ejsval.Version(maxVer)) {
		return nil, fmt.Errorf("ejs: module %q version %s does not satisfy requested range", name, formatVersion(mod.Ver))
	}
	return &Module{inner: mod}, nil
}

// Version is major*10_000_000+minor*10_000+patch, matching the on-disk
// encoding (§6.1).
type Version = ejsval.Version

func MakeVersion(major, minor, patch int) Version { return ejsval.MakeVersion(major, minor, patch) }

func formatVersion(v ejsval.Version) string {
	return fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch())
}

// RunInitializers runs the initializer of every module loaded so far
// that has not already run, depth-first over dependencies (§6.3 "Run
// all initializers").
func (i *Interpreter) RunInitializers() error {
	for _, mod := range i.inner.Modules {
		if _, err := i.inner.RunInitializer(mod); err != nil {
			return err
		}
	}
	return nil
}

// RunInitializer runs a single module's initializer (and, transitively,
// any of its not-yet-run dependencies).
func (i *Interpreter) RunInitializer(mod *Module) error {
	_, err := i.inner.RunInitializer(mod.inner)
	return err
}

// RunFunction looks up methodName on the class named className (a core
// type or a class from a loaded module), or on the global object when
// className is empty, and invokes it with args (§6.3 "run named
// function by (class, method)").
func (i *Interpreter) RunFunction(className, methodName string, args ...Value) (Value, error) {
	fn, this, err := i.resolveFunction(className, methodName)
	if err != nil {
		return Value{}, err
	}
	argv := make([]ejsval.Var, len(args))
	for n, a := range args {
		argv[n] = a.inner
	}
	v, err := i.inner.RunFunction(fn, this, argv)
	if err != nil {
		return Value{}, err
	}
	return Value{inner: v}, nil
}

// findLoadedType looks a class up across every module this interpreter
// has loaded, by its unqualified name, since RunFunction's (class,
// method) pair is not module-qualified (§6.3).
func (i *Interpreter) findLoadedType(className string) *ejsval.Type {
	for _, t := range i.inner.Loader.Types() {
		if t.Name == className {
			return t
		}
	}
	return nil
}

func (i *Interpreter) resolveFunction(className, methodName string) (*ejsval.Function, ejsval.Var, error) {
	var this ejsval.Var = i.inner.Global
	owner := i.inner.Global
	if className != "" {
		t, ok := i.inner.CoreTypes[className]
		if !ok {
			t = i.findLoadedType(className)
		}
		if t == nil {
			return nil, nil, fmt.Errorf("ejs: unknown class %q", className)
		}
		owner = &t.Block
		this = t
	}
	slot, _ := owner.LookupLocal(methodName)
	if slot < 0 {
		return nil, nil, fmt.Errorf("ejs: function %s.%s not found", className, methodName)
	}
	v, err := owner.GetProperty(slot)
	if err != nil {
		return nil, nil, err
	}
	fn, ok := v.(*ejsval.Function)
	if !ok {
		return nil, nil, fmt.Errorf("ejs: %s.%s is not a function", className, methodName)
	}
	return fn, this, nil
}

// Value is an opaque handle to a script-level value, letting host code
// pass arguments into RunFunction without importing the internal value
// model.
type Value struct {
	inner ejsval.Var
}

func (i *Interpreter) Undefined() Value { return Value{inner: i.inner.VM.Undef()} }
func (i *Interpreter) Null() Value      { return Value{inner: i.inner.VM.Dispatcher.Singletons.Null} }
func (i *Interpreter) Bool(b bool) Value {
	if b {
		return Value{inner: i.inner.VM.Dispatcher.Singletons.True}
	}
	return Value{inner: i.inner.VM.Dispatcher.Singletons.False}
}
func (i *Interpreter) Number(n float64) Value {
	return Value{inner: ejsval.NewPrimitive(i.inner.CoreTypes["Number"], n)}
}
func (i *Interpreter) String(s string) Value {
	return Value{inner: ejsval.NewPrimitive(i.inner.CoreTypes["String"], s)}
}

// LastError reports the interpreter's last failure (§6.3 "Report last
// error"). Only Message is filled in; Stack, File and Line are left
// empty.
type LastError struct {
	Message string
	Stack   []string
	File    string
	Line    int
}

func (i *Interpreter) LastError() (LastError, bool) {
	if i.inner.LastError == nil {
		return LastError{}, false
	}
	return LastError{Message: i.inner.LastError.Error()}, true
}

// AllocNotifier receives the collector's counters after every collection
// cycle; no memory-pressure threshold is checked (§6.3 "Set allocation
// notifier").
type AllocNotifier func(stats gc.Stats)

// SetAllocNotifier wires fn to run after every collection cycle.
func (i *Interpreter) SetAllocNotifier(fn AllocNotifier) {
	i.inner.GC.Notify = func(s gc.Stats) { fn(s) }
}

// EnableGC toggles whether VM.Attention triggers an automatic collection
// (§6.3 "Enable/disable GC").
func (i *Interpreter) EnableGC(enabled bool) { i.inner.GC.Enabled = enabled }

// Collect forces an immediate collection of the given generation
// (§6.3 "force a collection at a given generation").
func (i *Interpreter) Collect(generation int) {
	i.inner.GC.Collect(gc.Generation(generation), i.inner.Roots(), i.inner.VM.Dispatcher, nil)
}

// Stats reports the interpreter's collector counters.
func (i *Interpreter) Stats() gc.Stats { return i.inner.GC.Snapshot() }

const (
	GenNew     = int(gc.GenNew)
	GenOld     = int(gc.GenOld)
	GenEternal = int(gc.GenEternal)
)
