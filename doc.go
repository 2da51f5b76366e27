package spscring

// Package spscring implements a lock-free single-producer/single-consumer
// byte ring buffer. It is meant for streaming raw bytes between exactly one
// producer goroutine and exactly one consumer goroutine without locks or
// allocation on the hot path: realtime audio I/O, low-latency interthread
// byte pipes, and decoupling a latency-sensitive producer from a
// batch-oriented consumer.
//
// Capacity is always zero or a power of two. Both cursors are free-running
// atomic counters; the buffer never wastes a slot to distinguish full from
// empty. Producer-only methods (Write*, WriteVector, CommitWrite) must only
// ever be called from one goroutine; consumer-only methods (Read*, Peek*,
// ReadVector, CommitRead, Skip, Drain) must only ever be called from one
// other goroutine. Concurrent calls from more than one goroutine on the same
// side, or any call to Allocate/Deallocate/Take while the other side is
// active, are not safe.
