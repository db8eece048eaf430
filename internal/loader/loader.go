package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/go-ejs/internal/ejsval"
)

// Fixup is a deferred type reference recorded while decoding: one field
// on one in-progress value that must be patched once every top-level
// module in the load batch has been read, because the referenced type
// may live in a module that has not been decoded yet (§4.4).
type Fixup struct {
	Ref    TypeRef
	Target *ejsval.Type // the BaseType (or similar) field to patch
	Apply  func(resolved *ejsval.Type)
}

// Loader decodes one or more .mod files into ejsval.Module/Type/Function
// graphs, deferring cross-module type references until ResolveFixups
// runs over the whole batch (§4.4's "deferred type-fixup resolution").
type Loader struct {
	SearchPath []string // EJSPATH-equivalent directories, checked in order

	modules map[string]*ejsval.Module
	types   map[string]*ejsval.Type // "module.TypeName" -> Type
	fixups  []Fixup
}

func NewLoader(searchPath []string) *Loader {
	return &Loader{
		SearchPath: searchPath,
		modules:    make(map[string]*ejsval.Module),
		types:      make(map[string]*ejsval.Type),
	}
}

// Types returns every class decoded so far across every module this
// Loader has read, keyed by "module.TypeName" (disassembler/tooling use).
func (l *Loader) Types() map[string]*ejsval.Type { return l.types }

// FindModule resolves a dotted module name (e.g. "ejs.io") to a file
// path by trying name.mod under each search path entry, converting dots
// to path separators the way the original runtime's module search does
// (§4.4, §6.3).
func (l *Loader) FindModule(name string) (string, error) {
	rel := strings.ReplaceAll(name, ".", string(filepath.Separator)) + ".mod"
	for _, dir := range l.SearchPath {
		candidate := filepath.Join(dir, rel)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("loader: module %q not found on search path", name)
}

// VersionSatisfies reports whether ver falls within [min,max] (max==0
// means unbounded), the rule a DEPENDENCY row is checked against once
// its referenced module is actually loaded (§3, §6.1).
func VersionSatisfies(ver, min, max ejsval.Version) bool {
	if ver < min {
		return false
	}
	if max != 0 && ver > max {
		return false
	}
	return true
}

// LoadModule decodes one module's byte stream into an ejsval.Module, its
// top-level Types, and their Functions, recording Fixups for any TypeRef
// that isn't already resolved inline. Call ResolveFixups after every
// module in a dependency batch has been loaded this way.
func (l *Loader) LoadModule(data []byte) (*ejsval.Module, error) {
	r := NewReader(data)

	if err := expectMagic(r); err != nil {
		return nil, err
	}

	tagByte, err := r.Byte()
	if err != nil || Tag(tagByte) != TagModule {
		return nil, fmt.Errorf("loader: expected MODULE tag, got %v", Tag(tagByte))
	}

	name, err := r.String()
	if err != nil {
		return nil, err
	}
	major, err := r.Num()
	if err != nil {
		return nil, err
	}
	minor, err := r.Num()
	if err != nil {
		return nil, err
	}
	patch, err := r.Num()
	if err != nil {
		return nil, err
	}
	checksum, err := r.Word()
	if err != nil {
		return nil, err
	}

	mod := ejsval.NewModule(name, ejsval.MakeVersion(int(major), int(minor), int(patch)))
	mod.Checksum = int32(checksum)
	mod.Pool = &ejsval.ConstantPool{}
	l.modules[name] = mod

	for {
		tb, err := r.Byte()
		if err != nil {
			return nil, fmt.Errorf("loader: %q: truncated before MODULE_END: %w", name, err)
		}
		switch Tag(tb) {
		case TagModuleEnd:
			return mod, nil
		case TagDependency:
			dep, err := l.readDependency(r)
			if err != nil {
				return nil, err
			}
			mod.Dependencies = append(mod.Dependencies, dep)
		case TagClass:
			if _, err := l.readClass(r, mod); err != nil {
				return nil, err
			}
		case TagFunction:
			if _, err := l.readFunction(r, mod, nil); err != nil {
				return nil, err
			}
		case TagDoc:
			if _, err := r.String(); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("loader: %q: unexpected top-level tag %v", name, Tag(tb))
		}
	}
}

func expectMagic(r *Reader) error {
	for i := 0; i < len(MagicNumber); i++ {
		b, err := r.Byte()
		if err != nil || b != MagicNumber[i] {
			return fmt.Errorf("loader: bad magic number")
		}
	}
	return nil
}

func (l *Loader) readDependency(r *Reader) (ejsval.Dependency, error) {
	name, err := r.String()
	if err != nil {
		return ejsval.Dependency{}, err
	}
	checksum, err := r.Word()
	if err != nil {
		return ejsval.Dependency{}, err
	}
	minMaj, _ := r.Num()
	minMin, _ := r.Num()
	minPat, _ := r.Num()
	maxMaj, _ := r.Num()
	maxMin, _ := r.Num()
	maxPat, err := r.Num()
	if err != nil {
		return ejsval.Dependency{}, err
	}
	return ejsval.Dependency{
		Name:       name,
		Checksum:   int32(checksum),
		MinVersion: ejsval.MakeVersion(int(minMaj), int(minMin), int(minPat)),
		MaxVersion: ejsval.MakeVersion(int(maxMaj), int(maxMin), int(maxPat)),
	}, nil
}

// readClass decodes a CLASS ... CLASS_END section into a new Type,
// recursing into nested PROPERTY/FUNCTION rows and deferring its base
// type (and any interface) as a Fixup when its TypeRef isn't
// inline-resolved. Field order follows §6.1's CLASS row exactly: Name;
// attributes; slotNum; base TypeRef; numTypeProp; numInstanceProp;
// numInterfaces; that many interface TypeRefs.
func (l *Loader) readClass(r *Reader, mod *ejsval.Module) (*ejsval.Type, error) {
	name, _, err := r.Name()
	if err != nil {
		return nil, err
	}
	attributes, err := r.Num()
	if err != nil {
		return nil, err
	}
	slotNum, err := r.Num()
	if err != nil {
		return nil, err
	}
	baseRef, err := r.TypeRef()
	if err != nil {
		return nil, err
	}
	numTypeProp, err := r.Num()
	if err != nil {
		return nil, err
	}
	numInstanceProp, err := r.Num()
	if err != nil {
		return nil, err
	}
	numInterfaces, err := r.Num()
	if err != nil {
		return nil, err
	}

	t := ejsval.NewType(name, nil, ejsval.DefaultTypeHelpers())
	t.Module = mod
	t.Attributes = attributes
	t.SlotNum = int(slotNum)
	t.NumTypeProp = int(numTypeProp)
	t.NumInstanceProp = int(numInstanceProp)
	l.types[mod.Name+"."+name] = t

	if baseRef.Resolved {
		// Slot references a type already decoded earlier in this same
		// module; real slot table bookkeeping is the compiler's concern,
		// so this path is left for it to populate.
	} else if baseRef.TypeName != "" {
		ref := baseRef
		target := t
		l.fixups = append(l.fixups, Fixup{
			Ref: ref,
			Apply: func(resolved *ejsval.Type) {
				target.BaseType = resolved
				target.NumInheritedFromBase()
			},
		})
	}

	for i := int64(0); i < numInterfaces; i++ {
		ifaceRef, err := r.TypeRef()
		if err != nil {
			return nil, err
		}
		if ifaceRef.Resolved {
			continue
		}
		target := t
		l.fixups = append(l.fixups, Fixup{
			Ref: ifaceRef,
			Apply: func(resolved *ejsval.Type) {
				target.Implements = append(target.Implements, resolved)
			},
		})
	}

	for {
		tb, err := r.Byte()
		if err != nil {
			return nil, fmt.Errorf("loader: class %q: truncated before CLASS_END: %w", name, err)
		}
		switch Tag(tb) {
		case TagClassEnd:
			return t, nil
		case TagProperty:
			if err := l.readProperty(r, t); err != nil {
				return nil, err
			}
		case TagFunction:
			fn, err := l.readFunction(r, mod, t)
			if err != nil {
				return nil, err
			}
			if _, err := t.DefineProperty(fn.SlotNum, ejsval.Name{Name: fn.Name}, fn); err != nil {
				return nil, err
			}
		case TagDoc:
			if _, err := r.String(); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("loader: class %q: unexpected tag %v", name, Tag(tb))
		}
	}
}

// propAttrHasValue marks a PROPERTY row as carrying a conditional
// initial-value String after its TypeRef (§6.1 "[if attributes has
// HAS_VALUE: String initial-value]").
const propAttrHasValue int64 = 1 << 0

func (l *Loader) readProperty(r *Reader, owner *ejsval.Type) error {
	name, namespace, err := r.Name()
	if err != nil {
		return err
	}
	attrs, err := r.Num()
	if err != nil {
		return err
	}
	slotNum, err := r.Num()
	if err != nil {
		return err
	}
	typeRef, err := r.TypeRef()
	if err != nil {
		return err
	}
	if attrs&propAttrHasValue != 0 {
		// The literal initial-value string is evaluated by the module's
		// initializer function, not the loader; consume it so the stream
		// stays aligned and drop it.
		if _, err := r.String(); err != nil {
			return err
		}
	}

	slot := owner.DefineInstanceProperty(int(slotNum), ejsval.Name{Name: name, Namespace: namespace}, nil, ejsval.TraitAttr(attrs))
	if !typeRef.Resolved && typeRef.TypeName != "" {
		ownerCopy := owner
		slotCopy := slot
		l.fixups = append(l.fixups, Fixup{
			Ref: typeRef,
			Apply: func(resolved *ejsval.Type) {
				if tr := ownerCopy.InstanceTraitAt(slotCopy); tr != nil {
					tr.Type = resolved
				}
			},
		})
	}
	return nil
}

// readFunction decodes a FUNCTION ... FUNCTION_END section. owner is nil
// for a module-level function (the initializer or a free function).
// Field order follows §6.1's FUNCTION row: Name; nextSlot; attributes;
// lang; returnType; slotNum; numArgs; numLocals; numExceptions, then
// that many EXCEPTION records positionally (no tag byte), matching the
// row's own "EXCEPTION (× numExceptions)" note. The bytecode body itself
// (its Num-prefixed instruction stream, the function's Names pool, and
// its Doubles pool) is still read as tagged TagCode/TagNames/TagDoubles
// sub-sections rather than a single flat "codeLen bytes bytecode" blob —
// the row's literal encoding of that blob is left to the (out-of-scope)
// compiler, so this loader defines its own self-describing layout for it
// instead of guessing the compiler's exact byte format.
func (l *Loader) readFunction(r *Reader, mod *ejsval.Module, owner *ejsval.Type) (*ejsval.Function, error) {
	name, _, err := r.Name()
	if err != nil {
		return nil, err
	}
	nextSlot, err := r.Num()
	if err != nil {
		return nil, err
	}
	attributes, err := r.Num()
	if err != nil {
		return nil, err
	}
	lang, err := r.Byte()
	if err != nil {
		return nil, err
	}
	returnTypeRef, err := r.TypeRef()
	if err != nil {
		return nil, err
	}
	slotNum, err := r.Num()
	if err != nil {
		return nil, err
	}
	numArgs, err := r.Num()
	if err != nil {
		return nil, err
	}
	numLocals, err := r.Num()
	if err != nil {
		return nil, err
	}
	numExceptions, err := r.Num()
	if err != nil {
		return nil, err
	}

	fn := ejsval.NewFunction(nil)
	fn.Name = name
	fn.NextSlot = int(nextSlot)
	fn.Flags = ejsval.FunctionFlags(attributes)
	fn.Lang = ejsval.Lang(lang)
	fn.SlotNum = int(slotNum)
	fn.NumArgs = int(numArgs)
	fn.NumLocals = int(numLocals)
	if fn.Flags&(ejsval.FnGetter|ejsval.FnSetter) != 0 {
		// Mark the accessor at the Header level too (§9 "getter/setter as
		// linked slots") so the VM's property-access opcodes can detect it
		// without a type assertion on every plain function value.
		fn.Object.Flags |= ejsval.FlagHasGetterSetter
	}
	if owner != nil {
		fn.Owner = owner
	} else {
		fn.Owner = mod
	}
	if returnTypeRef.Resolved {
		// Slot reference into this module's own type table; populated by
		// the (out-of-scope) compiler's slot-table pass, not this loader.
	} else if returnTypeRef.TypeName != "" {
		target := fn
		l.fixups = append(l.fixups, Fixup{
			Ref:   returnTypeRef,
			Apply: func(resolved *ejsval.Type) { target.ResultType = resolved },
		})
	}

	handlers := make([]ejsval.ExceptionHandler, 0, numExceptions)
	for i := int64(0); i < numExceptions; i++ {
		h, err := l.readHandler(r)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, h)
	}

	var code []ejsval.Instruction
	var names []ejsval.Name
	var doubles []float64

	for {
		tb, err := r.Byte()
		if err != nil {
			return nil, fmt.Errorf("loader: function %q: truncated before FUNCTION_END: %w", name, err)
		}
		switch Tag(tb) {
		case TagFunctionEnd:
			fn.Code = &ejsval.Code{
				ByteCode: code,
				Handlers: handlers,
				Pool:     mod.Pool,
				Module:   mod,
				Names:    names,
				Doubles:  doubles,
			}
			if err := fn.Code.ValidateHandlers(); err != nil {
				return nil, fmt.Errorf("loader: function %q: %w", name, err)
			}
			if name == "" || (owner == nil && fn.Flags&ejsval.FnIsInitializer != 0) {
				mod.Initializer = fn
			}
			return fn, nil
		case TagCode:
			code, err = l.readCode(r)
			if err != nil {
				return nil, err
			}
		case TagNames:
			names, err = l.readNames(r)
			if err != nil {
				return nil, err
			}
		case TagDoubles:
			doubles, err = l.readDoubles(r)
			if err != nil {
				return nil, err
			}
		case TagDoc:
			if _, err := r.String(); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("loader: function %q: unexpected tag %v", name, Tag(tb))
		}
	}
}

// readCode decodes a flat Num-prefixed instruction stream: count, then
// that many (opcode byte, operand A, operand B) triples (§4.4, §6.2).
func (l *Loader) readCode(r *Reader) ([]ejsval.Instruction, error) {
	count, err := r.Num()
	if err != nil {
		return nil, err
	}
	code := make([]ejsval.Instruction, 0, count)
	for i := int64(0); i < count; i++ {
		op, err := r.Byte()
		if err != nil {
			return nil, err
		}
		a, err := r.Num()
		if err != nil {
			return nil, err
		}
		b, err := r.Num()
		if err != nil {
			return nil, err
		}
		code = append(code, ejsval.Instruction{Op: ejsval.OpCode(op), A: int32(a), B: int32(b)})
	}
	return code, nil
}

// readHandler decodes one EXCEPTION row: Byte flags; Num tryStart; Num
// tryEnd; Num handlerStart; Num handlerEnd; Num numBlocks; Num numStack;
// TypeRef catchType (§6.1).
func (l *Loader) readHandler(r *Reader) (ejsval.ExceptionHandler, error) {
	flags, err := r.Byte()
	if err != nil {
		return ejsval.ExceptionHandler{}, err
	}
	tryStart, err := r.Num()
	if err != nil {
		return ejsval.ExceptionHandler{}, err
	}
	tryEnd, err := r.Num()
	if err != nil {
		return ejsval.ExceptionHandler{}, err
	}
	handlerStart, err := r.Num()
	if err != nil {
		return ejsval.ExceptionHandler{}, err
	}
	handlerEnd, err := r.Num()
	if err != nil {
		return ejsval.ExceptionHandler{}, err
	}
	numBlocks, err := r.Num()
	if err != nil {
		return ejsval.ExceptionHandler{}, err
	}
	numStack, err := r.Num()
	if err != nil {
		return ejsval.ExceptionHandler{}, err
	}
	catchRef, err := r.TypeRef()
	if err != nil {
		return ejsval.ExceptionHandler{}, err
	}

	h := ejsval.ExceptionHandler{
		TryStart:     int(tryStart),
		TryEnd:       int(tryEnd),
		HandlerStart: int(handlerStart),
		HandlerEnd:   int(handlerEnd),
		NumBlocks:    int(numBlocks),
		NumStack:     int(numStack),
		Flags:        ejsval.HandlerFlags(flags),
	}
	if !catchRef.Resolved && catchRef.TypeName != "" {
		hp := &h
		l.fixups = append(l.fixups, Fixup{
			Ref:   catchRef,
			Apply: func(resolved *ejsval.Type) { hp.CatchType = resolved },
		})
	}
	return h, nil
}

func (l *Loader) readNames(r *Reader) ([]ejsval.Name, error) {
	count, err := r.Num()
	if err != nil {
		return nil, err
	}
	names := make([]ejsval.Name, 0, count)
	for i := int64(0); i < count; i++ {
		n, ns, err := r.Name()
		if err != nil {
			return nil, err
		}
		names = append(names, ejsval.Name{Name: n, Namespace: ns})
	}
	return names, nil
}

func (l *Loader) readDoubles(r *Reader) ([]float64, error) {
	count, err := r.Num()
	if err != nil {
		return nil, err
	}
	doubles := make([]float64, 0, count)
	for i := int64(0); i < count; i++ {
		d, err := r.Double()
		if err != nil {
			return nil, err
		}
		doubles = append(doubles, d)
	}
	return doubles, nil
}

// ResolveFixups patches every deferred TypeRef recorded by LoadModule
// against the full set of types decoded so far. Call it once after an
// entire dependency batch has loaded (§4.4). Unresolvable references are
// reported together rather than failing on the first one, since a single
// missing module should not obscure other real errors in the batch.
func (l *Loader) ResolveFixups() error {
	var missing []string
	for _, f := range l.fixups {
		key := f.Ref.Module + "." + f.Ref.TypeName
		t, ok := l.types[key]
		if !ok {
			missing = append(missing, key)
			continue
		}
		f.Apply(t)
	}
	l.fixups = nil
	if len(missing) > 0 {
		return fmt.Errorf("loader: unresolved type references: %s", strings.Join(missing, ", "))
	}
	return nil
}
