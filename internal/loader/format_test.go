package loader

import (
	"math"
	"testing"
)

func TestNumRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 63, -64, 64, -65, 1 << 20, -(1 << 20), math.MaxInt32, math.MinInt32, math.MaxInt64, math.MinInt64}

	for _, v := range values {
		w := NewWriter()
		w.Num(v)
		r := NewReader(w.Bytes())
		got, err := r.Num()
		if err != nil {
			t.Fatalf("Num(%d): unexpected error: %v", v, err)
		}
		if got != v {
			t.Errorf("Num round-trip: wrote %d, read %d", v, got)
		}
	}
}

func TestWordRoundTrip(t *testing.T) {
	w := NewWriter()
	w.Word(0xdeadbeef)
	r := NewReader(w.Bytes())
	got, err := r.Word()
	if err != nil {
		t.Fatalf("Word: unexpected error: %v", err)
	}
	if got != 0xdeadbeef {
		t.Errorf("Word round-trip: got %x, want %x", got, uint32(0xdeadbeef))
	}
}

func TestDoubleRoundTrip(t *testing.T) {
	values := []float64{0, 1.5, -1.5, math.Pi, math.Inf(1), math.Inf(-1)}
	for _, v := range values {
		w := NewWriter()
		w.Double(v)
		r := NewReader(w.Bytes())
		got, err := r.Double()
		if err != nil {
			t.Fatalf("Double(%v): unexpected error: %v", v, err)
		}
		if got != v {
			t.Errorf("Double round-trip: wrote %v, read %v", v, got)
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	w := NewWriter()
	w.String("")
	w.String("hello, ejs")
	r := NewReader(w.Bytes())

	got, err := r.String()
	if err != nil || got != "" {
		t.Fatalf("String(empty) = %q, %v", got, err)
	}
	got, err = r.String()
	if err != nil || got != "hello, ejs" {
		t.Fatalf("String() = %q, %v, want %q", got, err, "hello, ejs")
	}
}

func TestNameRoundTrip(t *testing.T) {
	w := NewWriter()
	w.Name("toString", "public")
	r := NewReader(w.Bytes())
	name, ns, err := r.Name()
	if err != nil {
		t.Fatalf("Name: unexpected error: %v", err)
	}
	if name != "toString" || ns != "public" {
		t.Errorf("Name round-trip = (%q, %q), want (%q, %q)", name, ns, "toString", "public")
	}
}

func TestTypeRefResolvedRoundTrip(t *testing.T) {
	w := NewWriter()
	w.TypeRef(7)
	r := NewReader(w.Bytes())
	ref, err := r.TypeRef()
	if err != nil {
		t.Fatalf("TypeRef: unexpected error: %v", err)
	}
	if !ref.Resolved || ref.Slot != 7 {
		t.Errorf("TypeRef round-trip = %+v, want Resolved slot 7", ref)
	}
}

func TestNumTruncatedReturnsError(t *testing.T) {
	r := NewReader([]byte{0x80}) // continuation bit set, no further bytes
	if _, err := r.Num(); err == nil {
		t.Error("Num() on truncated input: expected error, got nil")
	}
}
