package spscring

import "unsafe"

// asBytes exposes the in-memory representation of v as a byte slice. It is
// the Go analogue of the C++ is_trivially_copyable_v constraint: callers
// must only ever instantiate these helpers with fixed-width numeric types
// or structs composed of them. Passing a type containing a pointer, slice,
// map, channel, or interface aliases that field's word into the ring
// buffer's bytes, which is never what a caller wants; such types are not
// supported and are not checked for at compile time.
func asBytes[T any](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), unsafe.Sizeof(*v))
}

// WriteValue writes the in-memory representation of v and advances the
// write position. It returns true if the value was written in full.
// Producer-only.
func WriteValue[T any](r *RingBuffer, v T) bool {
	return r.Write(asBytes(&v), int(unsafe.Sizeof(v)), 1, false) == 1
}

// ReadValue reads one value of type T and advances the read position. ok is
// false if fewer than sizeof(T) bytes were available, in which case value
// is the zero value of T and the ring buffer is unchanged. Consumer-only.
func ReadValue[T any](r *RingBuffer) (value T, ok bool) {
	ok = r.Read(asBytes(&value), int(unsafe.Sizeof(value)), 1, false) == 1
	return value, ok
}

// PeekValue reads one value of type T without advancing the read position.
// Consumer-only.
func PeekValue[T any](r *RingBuffer) (value T, ok bool) {
	ok = r.Peek(asBytes(&value), int(unsafe.Sizeof(value)), 1)
	return value, ok
}

// WriteSpan writes items and advances the write position, returning the
// number of items actually written. Producer-only.
func WriteSpan[T any](r *RingBuffer, items []T, allowPartial bool) int {
	if len(items) == 0 {
		return 0
	}
	var zero T
	itemSize := int(unsafe.Sizeof(zero))
	src := unsafe.Slice((*byte)(unsafe.Pointer(&items[0])), itemSize*len(items))
	return r.Write(src, itemSize, len(items), allowPartial)
}

// ReadSpan reads items into dst and advances the read position, returning
// the number of items actually read. Consumer-only.
func ReadSpan[T any](r *RingBuffer, dst []T, allowPartial bool) int {
	if len(dst) == 0 {
		return 0
	}
	var zero T
	itemSize := int(unsafe.Sizeof(zero))
	out := unsafe.Slice((*byte)(unsafe.Pointer(&dst[0])), itemSize*len(dst))
	return r.Read(out, itemSize, len(dst), allowPartial)
}

// PeekSpan reads items into dst without advancing the read position,
// returning true only if dst was filled in full. Consumer-only.
func PeekSpan[T any](r *RingBuffer, dst []T) bool {
	if len(dst) == 0 {
		return false
	}
	var zero T
	itemSize := int(unsafe.Sizeof(zero))
	out := unsafe.Slice((*byte)(unsafe.Pointer(&dst[0])), itemSize*len(dst))
	return r.Peek(out, itemSize, len(dst))
}

// Skip advances the read position by n items of type T without copying any
// data, returning the number of items actually skipped. Consumer-only.
func Skip[T any](r *RingBuffer, n int, allowPartial bool) int {
	var zero T
	return r.Skip(int(unsafe.Sizeof(zero)), n, allowPartial)
}

// FieldValue describes one argument to WriteValues/ReadValues/PeekValues:
// its byte representation, obtained without reflection via a
// type-parametrized helper at the call site.
type FieldValue struct {
	bytes []byte
}

// Field wraps a pointer to a fixed-width value for use with WriteValues,
// ReadValues, and PeekValues. Callers build the argument list with Field
// the same way the C++ original accepts a parameter pack.
func Field[T any](v *T) FieldValue {
	return FieldValue{bytes: asBytes(v)}
}

// WriteValues writes every field in declaration order and advances the
// write position by their total size. It is all-or-nothing: if the total
// size does not fit in the current write vector, no bytes are written and
// the write position is left unchanged. Producer-only.
func WriteValues(r *RingBuffer, fields ...FieldValue) bool {
	total := 0
	for _, f := range fields {
		total += len(f.bytes)
	}
	if total == 0 {
		return false
	}

	front, back := r.WriteVector()
	if len(front)+len(back) < total {
		return false
	}

	cursor := 0
	for _, f := range fields {
		copySegmented(front, back, cursor, f.bytes)
		cursor += len(f.bytes)
	}
	r.CommitWrite(uint64(total))
	return true
}

// ReadValues reads every field in declaration order and advances the read
// position by their total size. It is all-or-nothing: if insufficient data
// is available, no field is modified and the read position is left
// unchanged. Consumer-only.
func ReadValues(r *RingBuffer, fields ...FieldValue) bool {
	if !PeekValues(r, fields...) {
		return false
	}
	total := 0
	for _, f := range fields {
		total += len(f.bytes)
	}
	r.CommitRead(uint64(total))
	return true
}

// PeekValues reads every field in declaration order without advancing the
// read position. Consumer-only.
func PeekValues(r *RingBuffer, fields ...FieldValue) bool {
	total := 0
	for _, f := range fields {
		total += len(f.bytes)
	}
	if total == 0 {
		return false
	}

	front, back := r.ReadVector()
	if len(front)+len(back) < total {
		return false
	}

	cursor := 0
	for _, f := range fields {
		copyFromSegmented(front, back, cursor, f.bytes)
		cursor += len(f.bytes)
	}
	return true
}

// copySegmented copies src into the two-segment destination (front, back)
// starting at byte offset cursor, switching segments mid-copy if src
// straddles the boundary between them.
func copySegmented(front, back []byte, cursor int, src []byte) {
	frontSize := len(front)
	n := len(src)
	switch {
	case cursor+n <= frontSize:
		copy(front[cursor:], src)
	case cursor >= frontSize:
		copy(back[cursor-frontSize:], src)
	default:
		toFront := frontSize - cursor
		copy(front[cursor:], src[:toFront])
		copy(back, src[toFront:])
	}
}

// copyFromSegmented is the mirror of copySegmented: it copies from the
// two-segment source (front, back) at byte offset cursor into dst.
func copyFromSegmented(front, back []byte, cursor int, dst []byte) {
	frontSize := len(front)
	n := len(dst)
	switch {
	case cursor+n <= frontSize:
		copy(dst, front[cursor:])
	case cursor >= frontSize:
		copy(dst, back[cursor-frontSize:])
	default:
		fromFront := frontSize - cursor
		copy(dst, front[cursor:])
		copy(dst[fromFront:], back[:n-fromFront])
	}
}
