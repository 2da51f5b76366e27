package spscring

import (
	"math/bits"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// MinCapacity is the smallest capacity Allocate accepts.
const MinCapacity uint64 = 2

// MaxCapacity is the largest capacity Allocate accepts: half the index
// modulus, so that used/free derivations never overflow.
const MaxCapacity uint64 = 1 << 63

// RingBuffer is a lock-free ring buffer safe for exactly one producer
// goroutine and exactly one consumer goroutine at a time. The zero value is
// an unallocated buffer; call Allocate or NewRingBuffer before use.
//
// A RingBuffer must not be copied after first use: copying the struct by
// value aliases the backing array between the original and the copy, which
// silently desynchronizes their cursors. Use Take to transfer ownership
// instead.
type RingBuffer struct {
	buffer   []byte
	capacity uint64
	mask     uint64

	writePosition atomic.Uint64
	_             cpu.CacheLinePad
	readPosition  atomic.Uint64
	_             cpu.CacheLinePad
}

// NewRingBuffer allocates a ring buffer with the given minimum capacity. It
// is equivalent to default-constructing a RingBuffer and calling Allocate,
// panicking instead of returning false on failure, for callers that want the
// throwing-constructor idiom described in the design notes.
func NewRingBuffer(minCapacity uint64) *RingBuffer {
	r := &RingBuffer{}
	if !r.Allocate(minCapacity) {
		if minCapacity < MinCapacity || minCapacity > MaxCapacity {
			panic("spscring: capacity out of range")
		}
		panic("spscring: allocation failed")
	}
	return r
}

// Allocate releases any existing allocation and reserves space for at least
// minCapacity bytes, rounded up to the next power of two. It reports false
// without mutating the receiver's usable state if minCapacity is outside
// [MinCapacity, MaxCapacity].
func (r *RingBuffer) Allocate(minCapacity uint64) bool {
	if minCapacity < MinCapacity || minCapacity > MaxCapacity {
		return false
	}

	r.Deallocate()

	rounded := bitCeil(minCapacity)
	r.buffer = make([]byte, rounded)
	r.capacity = rounded
	r.mask = rounded - 1
	r.writePosition.Store(0)
	r.readPosition.Store(0)
	return true
}

// Deallocate releases the backing region, if any, and resets the buffer to
// the unallocated state. It is idempotent.
func (r *RingBuffer) Deallocate() {
	r.buffer = nil
	r.capacity = 0
	r.mask = 0
	r.writePosition.Store(0)
	r.readPosition.Store(0)
}

// Usable reports whether the buffer has a backing region allocated.
func (r *RingBuffer) Usable() bool {
	return r.buffer != nil
}

// Take transfers ownership of the receiver's backing region and cursor
// state to a freshly returned RingBuffer, leaving the receiver unallocated.
// It is the move-construction/move-assignment analogue described in
// SPEC_FULL.md; it is not safe to call concurrently with any other
// operation on the receiver.
func (r *RingBuffer) Take() *RingBuffer {
	out := &RingBuffer{
		buffer:   r.buffer,
		capacity: r.capacity,
		mask:     r.mask,
	}
	out.writePosition.Store(r.writePosition.Load())
	out.readPosition.Store(r.readPosition.Load())
	r.Deallocate()
	return out
}

// Capacity returns the allocated capacity in bytes, or zero if unallocated.
// Safe to call from either side.
func (r *RingBuffer) Capacity() uint64 {
	return r.capacity
}

// FreeSpace returns the number of bytes that can currently be written.
// Accurate only when called from the producer.
func (r *RingBuffer) FreeSpace() uint64 {
	writePos := r.writePosition.Load()
	readPos := r.readPosition.Load()
	return r.capacity - (writePos - readPos)
}

// IsFull reports whether the buffer is full. Accurate only from the
// producer.
func (r *RingBuffer) IsFull() bool {
	writePos := r.writePosition.Load()
	readPos := r.readPosition.Load()
	return writePos-readPos == r.capacity
}

// AvailableBytes returns the number of bytes available for reading.
// Accurate only when called from the consumer.
func (r *RingBuffer) AvailableBytes() uint64 {
	writePos := r.writePosition.Load()
	readPos := r.readPosition.Load()
	return writePos - readPos
}

// IsEmpty reports whether the buffer holds no data. Accurate only from the
// consumer.
func (r *RingBuffer) IsEmpty() bool {
	writePos := r.writePosition.Load()
	readPos := r.readPosition.Load()
	return writePos == readPos
}

// Write copies up to itemCount items of itemSize bytes each from src into
// the buffer and advances the write position. It returns the number of
// items actually written: 0 if there was no room, or if allowPartial is
// false and fewer than itemCount items would fit. Producer-only.
func (r *RingBuffer) Write(src []byte, itemSize int, itemCount int, allowPartial bool) int {
	if len(src) == 0 || itemSize <= 0 || itemCount <= 0 || r.capacity == 0 {
		return 0
	}

	writePos := r.writePosition.Load()
	readPos := r.readPosition.Load()

	bytesUsed := writePos - readPos
	bytesFree := r.capacity - bytesUsed
	itemsFree := int(bytesFree) / itemSize
	if itemsFree == 0 || (itemsFree < itemCount && !allowPartial) {
		return 0
	}

	itemsToWrite := min(itemsFree, itemCount)
	bytesToWrite := itemsToWrite * itemSize

	writeIndex := writePos & r.mask
	bytesToEnd := r.capacity - writeIndex
	if uint64(bytesToWrite) <= bytesToEnd {
		copy(r.buffer[writeIndex:], src[:bytesToWrite])
	} else {
		copy(r.buffer[writeIndex:], src[:bytesToEnd])
		copy(r.buffer, src[bytesToEnd:bytesToWrite])
	}

	r.writePosition.Store(writePos + uint64(bytesToWrite))
	return itemsToWrite
}

// Read copies up to itemCount items of itemSize bytes each out of the
// buffer into dst and advances the read position. It returns the number of
// items actually read. Consumer-only.
func (r *RingBuffer) Read(dst []byte, itemSize int, itemCount int, allowPartial bool) int {
	if len(dst) == 0 || itemSize <= 0 || itemCount <= 0 || r.capacity == 0 {
		return 0
	}

	writePos := r.writePosition.Load()
	readPos := r.readPosition.Load()

	bytesUsed := writePos - readPos
	itemsAvailable := int(bytesUsed) / itemSize
	if itemsAvailable == 0 || (itemsAvailable < itemCount && !allowPartial) {
		return 0
	}

	itemsToRead := min(itemsAvailable, itemCount)
	bytesToRead := itemsToRead * itemSize

	readIndex := readPos & r.mask
	bytesToEnd := r.capacity - readIndex
	if uint64(bytesToRead) <= bytesToEnd {
		copy(dst, r.buffer[readIndex:readIndex+uint64(bytesToRead)])
	} else {
		copy(dst, r.buffer[readIndex:])
		copy(dst[bytesToEnd:], r.buffer[:uint64(bytesToRead)-bytesToEnd])
	}

	r.readPosition.Store(readPos + uint64(bytesToRead))
	return itemsToRead
}

// Peek copies itemCount items of itemSize bytes each out of the buffer into
// dst without advancing the read position. It returns true only if the
// full request was satisfied. Consumer-only.
func (r *RingBuffer) Peek(dst []byte, itemSize int, itemCount int) bool {
	if len(dst) == 0 || itemSize <= 0 || itemCount <= 0 || r.capacity == 0 {
		return false
	}

	writePos := r.writePosition.Load()
	readPos := r.readPosition.Load()

	bytesUsed := writePos - readPos
	itemsAvailable := int(bytesUsed) / itemSize
	if itemsAvailable < itemCount {
		return false
	}

	bytesToPeek := itemCount * itemSize
	readIndex := readPos & r.mask
	bytesToEnd := r.capacity - readIndex
	if uint64(bytesToPeek) <= bytesToEnd {
		copy(dst, r.buffer[readIndex:readIndex+uint64(bytesToPeek)])
	} else {
		copy(dst, r.buffer[readIndex:])
		copy(dst[bytesToEnd:], r.buffer[:uint64(bytesToPeek)-bytesToEnd])
	}

	return true
}

// Skip advances the read position by up to itemCount items of itemSize
// bytes each without copying any data. It returns the number of items
// actually skipped. Consumer-only.
func (r *RingBuffer) Skip(itemSize int, itemCount int, allowPartial bool) int {
	if itemSize <= 0 || itemCount <= 0 || r.capacity == 0 {
		return 0
	}

	writePos := r.writePosition.Load()
	readPos := r.readPosition.Load()

	bytesUsed := writePos - readPos
	itemsAvailable := int(bytesUsed) / itemSize
	if itemsAvailable == 0 || (itemsAvailable < itemCount && !allowPartial) {
		return 0
	}

	itemsToSkip := min(itemsAvailable, itemCount)
	bytesToSkip := itemsToSkip * itemSize

	r.readPosition.Store(readPos + uint64(bytesToSkip))
	return itemsToSkip
}

// Drain advances the read position to the write position, discarding all
// buffered data, and returns the number of bytes discarded. Consumer-only.
func (r *RingBuffer) Drain() uint64 {
	writePos := r.writePosition.Load()
	readPos := r.readPosition.Load()

	bytesUsed := writePos - readPos
	if bytesUsed == 0 {
		return 0
	}

	r.readPosition.Store(writePos)
	return bytesUsed
}

// WriteVector returns the two contiguous segments of the buffer currently
// available for writing, in physical order. back is empty unless the
// writable region wraps around the end of the backing storage.
// Producer-only.
func (r *RingBuffer) WriteVector() (front, back []byte) {
	writePos := r.writePosition.Load()
	readPos := r.readPosition.Load()

	bytesUsed := writePos - readPos
	bytesFree := r.capacity - bytesUsed
	if bytesFree == 0 {
		return nil, nil
	}

	writeIndex := writePos & r.mask
	bytesToEnd := r.capacity - writeIndex
	if bytesFree <= bytesToEnd {
		return r.buffer[writeIndex : writeIndex+bytesFree], nil
	}
	return r.buffer[writeIndex:], r.buffer[:bytesFree-bytesToEnd]
}

// CommitWrite advances the write position by count bytes after the caller
// has copied count bytes into the segments returned by WriteVector. It is
// undefined behavior to pass a count greater than the free space observed
// at the time of the call. Producer-only.
func (r *RingBuffer) CommitWrite(count uint64) {
	writePos := r.writePosition.Load()
	r.writePosition.Store(writePos + count)
}

// ReadVector returns the two contiguous segments of the buffer currently
// holding readable data, in physical order. back is empty unless the
// readable region wraps around the end of the backing storage.
// Consumer-only.
func (r *RingBuffer) ReadVector() (front, back []byte) {
	writePos := r.writePosition.Load()
	readPos := r.readPosition.Load()

	bytesUsed := writePos - readPos
	if bytesUsed == 0 {
		return nil, nil
	}

	readIndex := readPos & r.mask
	bytesToEnd := r.capacity - readIndex
	if bytesUsed <= bytesToEnd {
		return r.buffer[readIndex : readIndex+bytesUsed], nil
	}
	return r.buffer[readIndex:], r.buffer[:bytesUsed-bytesToEnd]
}

// CommitRead advances the read position by count bytes after the caller has
// consumed count bytes from the segments returned by ReadVector. It is
// undefined behavior to pass a count greater than the available data
// observed at the time of the call. Consumer-only.
func (r *RingBuffer) CommitRead(count uint64) {
	readPos := r.readPosition.Load()
	r.readPosition.Store(readPos + count)
}

// bitCeil returns the smallest power of two not less than n, with a floor
// of MinCapacity.
func bitCeil(n uint64) uint64 {
	if n < MinCapacity {
		return MinCapacity
	}
	return 1 << (64 - bits.LeadingZeros64(n-1))
}
