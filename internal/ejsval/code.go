package ejsval

import "fmt"

// HandlerFlags tag an exception handler table row (§3, §4.6).
type HandlerFlags uint8

const (
	HandlerCatch     HandlerFlags = 1 << iota
	HandlerFinally
	HandlerIteration
)

// ExceptionHandler is one row of a Function's ordered try/catch/finally
// table. Handlers are sorted innermost-first; the invariant
// tryStart < tryEnd <= handlerStart < handlerEnd is checked by the
// loader after decode (§3, §8 P5).
type ExceptionHandler struct {
	TryStart     int
	TryEnd       int
	HandlerStart int
	HandlerEnd   int
	NumBlocks    int
	NumStack     int
	CatchType    *Type // nil = catches any
	Flags        HandlerFlags
}

// ConstantPool is a module's immutable NUL-terminated UTF-8 byte buffer;
// strings and names reference it by byte offset (§3, §6.1).
type ConstantPool struct {
	Bytes []byte
}

// StringAt reads a NUL-terminated string starting at byte offset off.
func (p *ConstantPool) StringAt(off int) string {
	if off < 0 || off >= len(p.Bytes) {
		return ""
	}
	end := off
	for end < len(p.Bytes) && p.Bytes[end] != 0 {
		end++
	}
	return string(p.Bytes[off:end])
}

// Code is the compiled body of a Function: its bytecode, the handler
// table, and the owning module's constant pool (for string/name token
// resolution at execution time).
type Code struct {
	ByteCode []Instruction
	Handlers []ExceptionHandler
	Pool     *ConstantPool
	Module   *Module

	// Doubles and Names are auxiliary constant pools the loader fills in
	// alongside the byte-string Pool: OpLoadDouble indexes Doubles
	// (OpLoadInt carries its value inline), and every by-name opcode (OpLoadByName, OpGetProperty,
	// OpCallByName, ...) indexes Names rather than re-parsing a string
	// out of Pool on every dispatch (§6.1).
	Doubles []float64
	Names   []Name
}

// NameAt returns the constant name at index i, or the empty Name if out
// of range (defensive: a corrupt module must not panic the VM).
func (c *Code) NameAt(i int32) Name {
	if int(i) < 0 || int(i) >= len(c.Names) {
		return Name{}
	}
	return c.Names[i]
}

func (c *Code) DoubleAt(i int32) float64 {
	if int(i) < 0 || int(i) >= len(c.Doubles) {
		return 0
	}
	return c.Doubles[i]
}

func (c *Code) Len() int { return len(c.ByteCode) }

// ValidateHandlers checks the §3 Code invariant: all pc values in the
// handler table are within [0, codeLen], and each handler's
// tryStart < tryEnd <= handlerStart < handlerEnd.
func (c *Code) ValidateHandlers() error {
	n := len(c.ByteCode)
	for i, h := range c.Handlers {
		if h.TryStart < 0 || h.TryEnd > n || h.HandlerStart > n || h.HandlerEnd > n {
			return handlerBoundsError(i)
		}
		if !(h.TryStart < h.TryEnd && h.TryEnd <= h.HandlerStart && h.HandlerStart < h.HandlerEnd) {
			return handlerOrderError(i)
		}
	}
	return nil
}

func handlerBoundsError(i int) error {
	return fmt.Errorf("InstructionError: handler %d references an out-of-range pc", i)
}

func handlerOrderError(i int) error {
	return fmt.Errorf("InstructionError: handler %d violates tryStart<tryEnd<=handlerStart<handlerEnd", i)
}
