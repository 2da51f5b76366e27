// Package framing layers length-prefixed message framing on top of a
// spscring.RingBuffer. It lets a single producer goroutine push discrete
// messages into a raw byte stream and a single consumer goroutine pull them
// back out in order, without the ring buffer itself knowing anything about
// message boundaries.
package framing

import (
	"encoding/binary"
	"fmt"

	"github.com/eapache/queue"

	"github.com/jacoelho/spscring"
)

// headerSize is the width of the length prefix placed before every message.
const headerSize = 4

// MaxMessageSize bounds the payload length a Decoder will accept, guarding
// against a corrupt or malicious length prefix causing an unbounded
// allocation.
const MaxMessageSize = 1 << 24

// Encode writes a length-prefixed message into the ring buffer's current
// write vector and commits it in a single step. It returns false, writing
// nothing, if the message does not currently fit in full: framing is
// all-or-nothing, since a reader has no way to resynchronize after a
// partially written frame. Producer-only.
func Encode(r *spscring.RingBuffer, payload []byte) bool {
	total := headerSize + len(payload)
	front, back := r.WriteVector()
	if len(front)+len(back) < total {
		return false
	}

	var header [headerSize]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))

	cursor := 0
	cursor = writeSegmented(front, back, cursor, header[:])
	writeSegmented(front, back, cursor, payload)

	r.CommitWrite(uint64(total))
	return true
}

// Decoder reconstructs discrete messages from a raw byte stream held in a
// spscring.RingBuffer. A single call to Poll may surface more than one
// complete message if the producer has gotten ahead of the consumer;
// decoded messages are held in a FIFO until retrieved with Next.
type Decoder struct {
	ring    *spscring.RingBuffer
	pending *queue.Queue
}

// NewDecoder returns a Decoder reading frames out of r.
func NewDecoder(r *spscring.RingBuffer) *Decoder {
	return &Decoder{ring: r, pending: queue.New()}
}

// Poll decodes every complete frame currently available in the ring buffer
// and appends it to the pending queue, returning the number of frames
// newly decoded. It reports an error and stops decoding if a length prefix
// exceeds MaxMessageSize. Consumer-only.
func (d *Decoder) Poll() (decoded int, err error) {
	var header [headerSize]byte
	for {
		if !d.ring.Peek(header[:], 1, headerSize) {
			return decoded, nil
		}
		payloadLen := binary.BigEndian.Uint32(header[:])
		if payloadLen > MaxMessageSize {
			return decoded, fmt.Errorf("framing: payload length %d exceeds MaxMessageSize", payloadLen)
		}

		total := headerSize + int(payloadLen)
		if int(d.ring.AvailableBytes()) < total {
			return decoded, nil
		}

		frame := make([]byte, total)
		if d.ring.Read(frame, 1, total, false) != total {
			return decoded, nil
		}

		d.pending.Add(frame[headerSize:])
		decoded++
	}
}

// Next removes and returns the oldest decoded message, if any.
func (d *Decoder) Next() ([]byte, bool) {
	if d.pending.Length() == 0 {
		return nil, false
	}
	msg := d.pending.Peek().([]byte)
	d.pending.Remove()
	return msg, true
}

// Pending returns the number of fully decoded messages awaiting Next.
func (d *Decoder) Pending() int {
	return d.pending.Length()
}

// writeSegmented copies src into the two-segment destination (front, back)
// starting at byte offset cursor, switching segments mid-copy if src
// straddles the boundary, and returns the offset just past the copy.
func writeSegmented(front, back []byte, cursor int, src []byte) int {
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
	return cursor + n
}
