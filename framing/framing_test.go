package framing_test

import (
	"bytes"
	"testing"

	"github.com/jacoelho/spscring"
	"github.com/jacoelho/spscring/framing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	ring := spscring.NewRingBuffer(256)

	messages := [][]byte{
		[]byte("hello"),
		[]byte("world"),
		[]byte(""),
		bytes.Repeat([]byte{0x7}, 32),
	}

	for _, m := range messages {
		if !framing.Encode(ring, m) {
			t.Fatalf("Encode(%q) = false", m)
		}
	}

	dec := framing.NewDecoder(ring)
	decoded, err := dec.Poll()
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if decoded != len(messages) {
		t.Fatalf("Poll() = %d, want %d", decoded, len(messages))
	}

	for i, want := range messages {
		got, ok := dec.Next()
		if !ok {
			t.Fatalf("Next() returned false at message %d", i)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("message %d = %q, want %q", i, got, want)
		}
	}

	if _, ok := dec.Next(); ok {
		t.Fatal("Next() returned a message after the queue was drained")
	}
}

func TestEncodeFailsWhenMessageDoesNotFit(t *testing.T) {
	ring := spscring.NewRingBuffer(8)

	if framing.Encode(ring, bytes.Repeat([]byte{1}, 32)) {
		t.Fatal("Encode() = true, want false")
	}
	if got := ring.AvailableBytes(); got != 0 {
		t.Fatalf("AvailableBytes() = %d, want 0 after a rejected Encode", got)
	}
}

func TestDecodePartialFrameWaits(t *testing.T) {
	ring := spscring.NewRingBuffer(64)

	payload := []byte("hello, world")
	header := []byte{0, 0, 0, byte(len(payload))}

	if n := ring.Write(header, 1, len(header), false); n != len(header) {
		t.Fatalf("Write(header) = %d, want %d", n, len(header))
	}

	dec := framing.NewDecoder(ring)
	decoded, err := dec.Poll()
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if decoded != 0 {
		t.Fatalf("Poll() = %d, want 0 before the body has been written", decoded)
	}
	if _, ok := dec.Next(); ok {
		t.Fatal("Next() returned a message before its body was written")
	}

	if n := ring.Write(payload, 1, len(payload), false); n != len(payload) {
		t.Fatalf("Write(payload) = %d, want %d", n, len(payload))
	}

	decoded, err = dec.Poll()
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if decoded != 1 {
		t.Fatalf("Poll() = %d, want 1 once the body has arrived", decoded)
	}

	got, ok := dec.Next()
	if !ok || !bytes.Equal(got, payload) {
		t.Fatalf("Next() = (%q, %v), want (%q, true)", got, ok, payload)
	}
}
