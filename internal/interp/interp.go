// Package interp ties the value model (ejsval), the module loader, and
// the garbage collector into a runnable Interpreter, implementing the
// bootstrap order and master/slave cloning from §4.8.
package interp

import (
	"fmt"
	"io"
	"log"
	"math"
	"os"

	"github.com/cwbudde/go-ejs/internal/ejserr"
	"github.com/cwbudde/go-ejs/internal/ejsval"
	"github.com/cwbudde/go-ejs/internal/gc"
	"github.com/cwbudde/go-ejs/internal/loader"
)

// Service is shared across every Interpreter cloned from one master: the
// native-module callback registry and the default search path (§4.8,
// §6.3). One process normally holds a single Service.
//
// Logger receives GC and exception diagnostics; it defaults to
// discarding output (quiet unless the embedder opts in via
// pkg/ejs.Service.SetVerbose), matching how the teacher logs without a
// structured-logging dependency (§10).
type Service struct {
	SearchPath []string
	Natives    map[string]NativeModule
	Output     io.Writer
	Logger     *log.Logger
}

// NativeModule registers a Go-implemented module's members into a fresh
// module Block at load time, standing in for the dlopen-based native
// module loading the original runtime used (§4.4, §6.3: Go binaries
// can't dlopen themselves meaningfully, so native modules are registered
// callbacks instead).
type NativeModule func(ejs *Interpreter, mod *ejsval.Module) error

func NewService(searchPath []string) *Service {
	s := &Service{
		SearchPath: searchPath,
		Natives:    make(map[string]NativeModule),
		Output:     os.Stdout,
	}
	// Quiet by default; pkg/ejs.Service.SetVerbose(true) redirects to
	// Output when the host (e.g. ejsrun's --verbose flag) wants it.
	s.Logger = log.New(io.Discard, "ejs: ", log.LstdFlags)
	return s
}

func (s *Service) RegisterNative(name string, fn NativeModule) {
	s.Natives[name] = fn
}

// Interpreter ("Ejs") is one independent script execution context: its
// own global object/block, module list, GC generations, and VM, but
// sharing the Service's native module registry and, when cloned from a
// master, the master's core type hierarchy (§3, §4.8).
type Interpreter struct {
	Service *Service
	Master  *Interpreter // nil for the master itself

	Global    *ejsval.Block
	Modules   []*ejsval.Module
	CoreTypes map[string]*ejsval.Type

	GC *gc.Collector
	VM *ejsval.VM

	Loader *loader.Loader

	LastError error
}

// NewMaster bootstraps a fresh master interpreter: Object, then Type
// (self-describing), Block, Namespace, Function, the Global object, Null,
// and the rest of the singleton primitives, in that order (§4.8's
// bootstrap order is a hard dependency chain: Type needs Object's
// Helpers to exist, Global needs Block, every singleton needs Null's
// Type to already exist).
func NewMaster(svc *Service) *Interpreter {
	ejs := &Interpreter{
		Service:   svc,
		CoreTypes: make(map[string]*ejsval.Type),
		GC:        gc.NewCollector(),
		Loader:    loader.NewLoader(svc.SearchPath),
	}

	objectHelpers := ejsval.DefaultObjectHelpers()
	objectType := ejsval.NewType("Object", nil, objectHelpers)
	ejs.CoreTypes["Object"] = objectType

	typeType := ejsval.NewType("Type", objectType, ejsval.DefaultTypeHelpers())
	ejs.CoreTypes["Type"] = typeType

	blockType := ejsval.NewType("Block", objectType, ejsval.DefaultBlockHelpers())
	ejs.CoreTypes["Block"] = blockType

	namespaceType := ejsval.NewType("Namespace", objectType, objectHelpers)
	ejs.CoreTypes["Namespace"] = namespaceType

	functionType := ejsval.NewType("Function", blockType, ejsval.DefaultBlockHelpers())
	ejs.CoreTypes["Function"] = functionType

	ejs.Global = ejsval.NewBlock(blockType)
	ejs.Global.Flags |= ejsval.FlagPermanent

	nullType := ejsval.NewType("Null", objectType, objectHelpers)
	ejs.CoreTypes["Null"] = nullType

	for _, name := range []string{"Boolean", "Number", "String", "Void"} {
		ejs.CoreTypes[name] = ejsval.NewType(name, objectType, objectHelpers)
	}

	disp := &ejsval.Dispatcher{
		Singletons: ejs.buildSingletons(),
		Raise:      ejs.raise,
		Register:   ejs.registerValue,
		Recycle:    ejs.GC.Put,
	}
	ejs.VM = ejsval.NewVM(ejs.Global, disp)
	ejs.VM.GCCheck = ejs.runGC
	ejs.GC.Notify = ejs.logGCStats

	return ejs
}

func (ejs *Interpreter) buildSingletons() ejsval.Singletons {
	mk := func(t *ejsval.Type, v interface{}) *ejsval.Primitive {
		p := ejsval.NewPrimitive(t, v)
		p.Flags |= ejsval.FlagPermanent
		return p
	}
	boolT := ejs.CoreTypes["Boolean"]
	numT := ejs.CoreTypes["Number"]
	strT := ejs.CoreTypes["String"]
	nullT := ejs.CoreTypes["Null"]
	voidT := ejs.CoreTypes["Void"]

	return ejsval.Singletons{
		True:        mk(boolT, true),
		False:       mk(boolT, false),
		Null:        mk(nullT, nil),
		Undefined:   mk(voidT, nil),
		Zero:        mk(numT, float64(0)),
		One:         mk(numT, float64(1)),
		MinusOne:    mk(numT, float64(-1)),
		NaN:         mk(numT, math.NaN()),
		PosInf:      mk(numT, math.Inf(1)),
		NegInf:      mk(numT, math.Inf(-1)),
		EmptyString: mk(strT, ""),
	}
}

// raise implements Dispatcher.Raise: builds a typed *ejserr.Error so VM
// helper callbacks can throw without importing the VM package (§4.1,
// §7).
func (ejs *Interpreter) raise(class string, format string, args ...interface{}) error {
	return ejserr.New(ejserr.Class(class), format, args...)
}

// NewSlave clones a master interpreter cheaply: it shares CoreTypes and
// the Service, but gets its own Global object, GC generations, and VM
// state, so independent scripts never see each other's globals (§4.8
// "master/slave cloning for cheap interpreter instantiation").
func NewSlave(master *Interpreter) *Interpreter {
	ejs := &Interpreter{
		Service:   master.Service,
		Master:    master,
		CoreTypes: master.CoreTypes,
		GC:        gc.NewCollector(),
		Loader:    loader.NewLoader(master.Service.SearchPath),
	}
	blockType := master.CoreTypes["Block"]
	ejs.Global = ejsval.NewBlock(blockType)
	ejs.Global.Flags |= ejsval.FlagPermanent

	disp := &ejsval.Dispatcher{
		Singletons: master.VM.Dispatcher.Singletons,
		Raise:      ejs.raise,
		Register:   ejs.registerValue,
		Recycle:    ejs.GC.Put,
	}
	ejs.VM = ejsval.NewVM(ejs.Global, disp)
	ejs.VM.GCCheck = ejs.runGC
	ejs.GC.Notify = ejs.logGCStats
	return ejs
}

// registerValue implements Dispatcher.Register: every value a Helpers.Create
// closure or the VM's frame push allocates is recorded against the new
// generation, and a full work quota sets VM.Attention so the next
// instruction boundary runs a collection (§4.5, §4.7).
func (ejs *Interpreter) registerValue(v ejsval.Var) {
	if ejs.GC.Register(v) {
		ejs.VM.Attention = true
	}
}

// Roots enumerates every currently-live root: the global object, the VM
// operand stack, every active frame and its ScopeChain link, and any
// pending exception (§4.7 "roots: globals, stack, frames, result,
// exception").
func (ejs *Interpreter) Roots() []ejsval.Var {
	roots := make([]ejsval.Var, 0, len(ejs.VM.Stack)+len(ejs.VM.Frames)+1)
	roots = append(roots, ejs.Global)
	for _, v := range ejs.VM.Stack {
		roots = append(roots, v)
	}
	for _, f := range ejs.VM.Frames {
		roots = append(roots, f)
		if f.ScopeChain != nil {
			roots = append(roots, f.ScopeChain)
		}
	}
	if ejs.VM.Exception != nil {
		roots = append(roots, ejs.VM.Exception)
	}
	return roots
}

// runGC is wired as VM.GCCheck: it drives one collection cycle when the
// VM's per-instruction Attention check fires, unless the host disabled
// automatic collection via GC.Enabled (§6.3 "Enable/disable GC").
func (ejs *Interpreter) runGC() bool {
	if !ejs.GC.Enabled {
		return true
	}
	ejs.GC.Collect(gc.GenNew, ejs.Roots(), ejs.VM.Dispatcher, ejs.destroyValue)
	return true
}

// destroyValue runs a swept value's Helpers.Destroy, which returns its
// storage to the type's pool via Dispatcher.Recycle (§4.1, §4.7
// "pool-first allocation").
func (ejs *Interpreter) destroyValue(v ejsval.Var) {
	h := v.Hdr()
	if h.Type == nil || h.Type.Helpers == nil || h.Type.Helpers.Destroy == nil {
		return
	}
	if err := h.Type.Helpers.Destroy(ejs.VM.Dispatcher, v); err != nil {
		ejs.logf("destroy %T: %v", v, err)
	}
}

// logGCStats is the default gc.Collector.Notify callback when a Service
// carries a Logger: every collection gets one log line, the same
// per-cycle visibility the teacher's bytecode VM gives allocation
// counters (§10). pkg/ejs.SetAllocNotifier overrides this with a
// host-supplied callback when the embedder wants one.
func (ejs *Interpreter) logGCStats(stats gc.Stats) {
	if ejs.Service.Logger == nil {
		return
	}
	ejs.Service.Logger.Printf("gc: collects=%d freed=%d pool_hits=%d pool_misses=%d", stats.Collects, stats.Freed, stats.PoolHits, stats.PoolMisses)
}

// LoadModuleFile reads and decodes path, recording it on ejs.Modules and
// resolving any deferred type fixups it introduced (§4.4).
func (ejs *Interpreter) LoadModuleFile(path string) (*ejsval.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("interp: reading %s: %w", path, err)
	}
	mod, err := ejs.Loader.LoadModule(data)
	if err != nil {
		ejs.logf("load %s: %v", path, err)
		return nil, err
	}
	if err := ejs.Loader.ResolveFixups(); err != nil {
		ejs.logf("load %s: resolve fixups: %v", path, err)
		return nil, err
	}
	if mod.HasNative {
		if native, ok := ejs.Service.Natives[mod.Name]; ok {
			if err := native(ejs, mod); err != nil {
				return nil, err
			}
		}
	}
	ejs.Modules = append(ejs.Modules, mod)
	return mod, nil
}

// RunInitializer runs mod's Initializer exactly once, depth-first over
// its Dependencies first (§4.8 "runInitializer depth-first per
// dependency").
func (ejs *Interpreter) RunInitializer(mod *ejsval.Module) (ejsval.Var, error) {
	if mod.Initialized {
		return ejs.VM.Undef(), nil
	}
	for _, dep := range mod.Dependencies {
		depMod := ejs.findModule(dep.Name)
		if depMod == nil {
			return nil, ejserr.New(ejserr.ReferenceError, "module %q depends on unloaded module %q", mod.Name, dep.Name)
		}
		if !loader.VersionSatisfies(depMod.Ver, dep.MinVersion, dep.MaxVersion) {
			return nil, ejserr.New(ejserr.StateError, "module %q version %d does not satisfy %q's dependency range", depMod.Name, depMod.Ver, mod.Name)
		}
		if _, err := ejs.RunInitializer(depMod); err != nil {
			return nil, err
		}
	}
	mod.Initialized = true
	if mod.Initializer == nil {
		return ejs.VM.Undef(), nil
	}
	return ejs.VM.RunFunction(mod.Initializer, ejs.Global, nil)
}

func (ejs *Interpreter) findModule(name string) *ejsval.Module {
	for _, m := range ejs.Modules {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// RunFunction runs fn with the given this/args through this
// interpreter's VM, recording the result as LastError on failure (§6.3).
func (ejs *Interpreter) RunFunction(fn *ejsval.Function, this ejsval.Var, args []ejsval.Var) (ejsval.Var, error) {
	v, err := ejs.VM.RunFunction(fn, this, args)
	ejs.LastError = err
	if err != nil {
		ejs.logf("uncaught exception in %s: %v", fn.Name, err)
	}
	return v, err
}

// logf writes to the Service's Logger if one is configured; a zero-value
// Interpreter built outside NewMaster/NewSlave (as in tests) has none and
// logf is a silent no-op.
func (ejs *Interpreter) logf(format string, args ...interface{}) {
	if ejs.Service == nil || ejs.Service.Logger == nil {
		return
	}
	ejs.Service.Logger.Printf(format, args...)
}
