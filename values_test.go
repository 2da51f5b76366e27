package spscring_test

import (
	"testing"

	"github.com/jacoelho/spscring"
)

func TestSpanRoundTrip(t *testing.T) {
	r := spscring.NewRingBuffer(64)

	in := []int32{1, 2, 3, 4, 5}
	if n := spscring.WriteSpan(r, in, false); n != len(in) {
		t.Fatalf("WriteSpan() = %d, want %d", n, len(in))
	}

	out := make([]int32, len(in))
	if n := spscring.ReadSpan(r, out, false); n != len(in) {
		t.Fatalf("ReadSpan() = %d, want %d", n, len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("out[%d] = %d, want %d", i, out[i], in[i])
		}
	}
}

func TestSpanPeekAllowsPartialRejection(t *testing.T) {
	r := spscring.NewRingBuffer(64)
	in := []int32{1, 2, 3}
	spscring.WriteSpan(r, in, false)

	out := make([]int32, 4)
	if spscring.PeekSpan(r, out) {
		t.Fatal("PeekSpan() = true for an undersized buffer, want false")
	}
	if got := r.AvailableBytes(); got != uint64(3*4) {
		t.Fatalf("AvailableBytes() = %d, want %d", got, 3*4)
	}
}

func TestSkip(t *testing.T) {
	r := spscring.NewRingBuffer(64)
	in := []int32{1, 2, 3, 4}
	spscring.WriteSpan(r, in, false)

	if n := spscring.Skip[int32](r, 2, false); n != 2 {
		t.Fatalf("Skip() = %d, want 2", n)
	}

	out := make([]int32, 2)
	spscring.ReadSpan(r, out, false)
	if out[0] != 3 || out[1] != 4 {
		t.Fatalf("got %v, want [3 4]", out)
	}
}

func TestWriteValuesAllOrNothing(t *testing.T) {
	r := spscring.NewRingBuffer(8)

	a := int64(1)
	b := int64(2)
	if spscring.WriteValues(r, spscring.Field(&a), spscring.Field(&b)) {
		t.Fatal("WriteValues() = true, want false (16 bytes requested, 8 available)")
	}
	if got := r.AvailableBytes(); got != 0 {
		t.Fatalf("AvailableBytes() = %d, want 0 after rejected WriteValues", got)
	}
}
