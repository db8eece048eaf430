package loader

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Writer encodes the same primitives Reader decodes; its main consumer
// today is the §8 P8 round-trip test (Num/Word/String/Double symmetry),
// since emitting real bytecode is the compiler's job and out of scope.
type Writer struct {
	buf bytes.Buffer
}

func NewWriter() *Writer { return &Writer{} }

func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// Num zig-zag encodes v then emits 7-bit groups, high bit set meaning
// "more follows" (§4.4, §8 P8).
func (w *Writer) Num(v int64) {
	u := uint64((v << 1) ^ (v >> 63))
	for {
		b := byte(u & 0x7f)
		u >>= 7
		if u != 0 {
			w.buf.WriteByte(b | 0x80)
		} else {
			w.buf.WriteByte(b)
			return
		}
	}
}

func (w *Writer) Word(v uint32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	w.buf.Write(buf[:])
}

func (w *Writer) Double(v float64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(v))
	w.buf.Write(buf[:])
}

func (w *Writer) String(s string) {
	w.Num(int64(len(s)))
	w.buf.WriteString(s)
}

func (w *Writer) Name(name, namespace string) {
	w.String(name)
	w.String(namespace)
}

func (w *Writer) Byte(b byte) { w.buf.WriteByte(b) }

// Magic writes the module file's leading magic number, pairing with
// Reader's expectMagic.
func (w *Writer) Magic() { w.buf.WriteString(MagicNumber) }

// TypeRef writes a resolved (tag 0 + slot) reference; unresolved forward
// references are never written back out, only read (the loader never
// needs to re-serialize a module it did not itself compile).
func (w *Writer) TypeRef(slot int) {
	w.Byte(0)
	w.Num(int64(slot))
}
