// Package loader implements the .mod bytecode file format (§4.4, §6.1):
// a signed-varint-heavy binary encoding, a section-tag body, and deferred
// type-reference fixups resolved once the whole top-level module graph
// has loaded. Grounded on the teacher's bytecode.Serializer
// (internal/bytecode/serializer.go) — length-prefixed fields over a
// bytes.Buffer/encoding/binary base, generalized from one flat Chunk
// format into the spec's section-tagged module/class/function structure.
package loader

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// MagicNumber identifies an Ejscript bytecode file, matching the
// teacher's 4-byte-magic-plus-version header convention.
const MagicNumber = "EJS\x00"

// Reader decodes the primitive encodings §4.4/§6.1 names: Num (signed
// varint), Word (fixed 32-bit), String/Name (Num-length-prefixed bytes),
// TypeRef (a tagged forward reference resolved by a fixup), and Double.
type Reader struct {
	r   *bytes.Reader
	Pos int
}

func NewReader(data []byte) *Reader {
	return &Reader{r: bytes.NewReader(data)}
}

func (r *Reader) byte() (byte, error) {
	b, err := r.r.ReadByte()
	if err == nil {
		r.Pos++
	}
	return b, err
}

// Num decodes a signed variable-length integer: each byte contributes 7
// bits, high bit set means "more bytes follow", zig-zag encoded so small
// negative numbers stay short (§4.4, §8 P8 "Num encoding round-trips").
func (r *Reader) Num() (int64, error) {
	var result uint64
	var shift uint
	for {
		b, err := r.byte()
		if err != nil {
			return 0, fmt.Errorf("loader: Num truncated: %w", err)
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
		if shift >= 64 {
			return 0, fmt.Errorf("loader: Num overflow")
		}
	}
	// zig-zag decode
	return int64(result>>1) ^ -(int64(result) & 1), nil
}

func (r *Reader) Word() (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r.r, buf[:]); err != nil {
		return 0, fmt.Errorf("loader: Word truncated: %w", err)
	}
	r.Pos += 4
	return binary.BigEndian.Uint32(buf[:]), nil
}

func (r *Reader) Double() (float64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r.r, buf[:]); err != nil {
		return 0, fmt.Errorf("loader: Double truncated: %w", err)
	}
	r.Pos += 8
	bits := binary.BigEndian.Uint64(buf[:])
	return math.Float64frombits(bits), nil
}

// String reads a Num-prefixed length then that many raw bytes and returns
// them as a Go string; it does not add the string to any
// ejsval.ConstantPool.
func (r *Reader) String() (string, error) {
	n, err := r.Num()
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", fmt.Errorf("loader: negative string length")
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return "", fmt.Errorf("loader: String truncated: %w", err)
	}
	r.Pos += int(n)
	return string(buf), nil
}

// Name reads a (name, namespace) pair as two Strings (§4.4).
func (r *Reader) Name() (name, namespace string, err error) {
	name, err = r.String()
	if err != nil {
		return
	}
	namespace, err = r.String()
	return
}

// TypeRef reads a tagged forward reference to a type: either an inline
// slot index into the current module's type table (already resolved) or
// a (moduleName, typeName) pair that must wait for a Fixup (§4.4 "deferred
// type-fixup resolution").
type TypeRef struct {
	Resolved bool
	Slot     int
	Module   string
	TypeName string
}

func (r *Reader) TypeRef() (TypeRef, error) {
	tag, err := r.byte()
	if err != nil {
		return TypeRef{}, err
	}
	if tag == 0 {
		slot, err := r.Num()
		return TypeRef{Resolved: true, Slot: int(slot)}, err
	}
	mod, err := r.String()
	if err != nil {
		return TypeRef{}, err
	}
	tn, err := r.String()
	return TypeRef{Module: mod, TypeName: tn}, err
}

func (r *Reader) Byte() (byte, error) { return r.byte() }

func (r *Reader) Len() int { return r.r.Len() }
