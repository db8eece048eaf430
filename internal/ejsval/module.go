package ejsval

// Version packs major/minor/patch the way the loader encodes it on disk
// (§4.4, §6.1): major*10_000_000 + minor*10_000 + patch.
type Version uint32

func MakeVersion(major, minor, patch int) Version {
	return Version(major*10_000_000 + minor*10_000 + patch)
}

func (v Version) Major() int { return int(v) / 10_000_000 }
func (v Version) Minor() int { return (int(v) / 10_000) % 1000 }
func (v Version) Patch() int { return int(v) % 10_000 }

// Dependency records a module's declared dependency on another module
// by name, checksum, and acceptable version range (§3, §6.1).
type Dependency struct {
	Name       string
	Checksum   int32
	MinVersion Version
	MaxVersion Version
}

// Module is a loaded bytecode unit: its constant pool, initializer
// function, dependency list, and the first global slot it contributed
// (§3). Once loaded the constant pool is immutable and Initializer runs
// at most once unless explicitly reset.
type Module struct {
	Name            string
	Ver             Version
	Pool            *ConstantPool
	Initializer     *Function
	Dependencies    []Dependency
	FirstGlobalSlot int
	Checksum        int32
	HasNative       bool
	Initialized     bool
	ScopeChain      *Block
}

func NewModule(name string, ver Version) *Module {
	return &Module{Name: name, Ver: ver}
}
