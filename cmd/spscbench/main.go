// Command spscbench runs a single producer and a single consumer goroutine
// against a spscring.RingBuffer and reports the achieved throughput. It
// exists as a runnable demonstration of the busy-poll-and-yield idiom for
// driving the non-blocking buffer, since the core has no blocking I/O to show off through
// an io.Copy-style Example.
package main

import (
	"flag"
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/jacoelho/spscring"
)

func main() {
	capacity := flag.Uint64("capacity", 64*1024, "ring buffer capacity in bytes")
	total := flag.Uint64("total", 64*1024*1024, "total bytes to transfer")
	flag.Parse()

	if *total == 0 {
		log.Fatal("total must be greater than zero")
	}

	ring := spscring.NewRingBuffer(*capacity)

	start := time.Now()
	done := make(chan uint64)

	go produce(ring, *total)
	go consume(ring, *total, done)

	transferred := <-done
	elapsed := time.Since(start)

	fmt.Printf("transferred %d bytes in %s (%.2f MiB/s)\n",
		transferred, elapsed, float64(transferred)/elapsed.Seconds()/(1<<20))
}

func produce(ring *spscring.RingBuffer, total uint64) {
	chunk := make([]byte, 4096)
	var written uint64
	for written < total {
		want := min(uint64(len(chunk)), total-written)
		n := ring.Write(chunk[:want], 1, int(want), true)
		if n == 0 {
			runtime.Gosched()
			continue
		}
		written += uint64(n)
	}
}

func consume(ring *spscring.RingBuffer, total uint64, done chan<- uint64) {
	chunk := make([]byte, 4096)
	var read uint64
	for read < total {
		want := min(uint64(len(chunk)), total-read)
		n := ring.Read(chunk[:want], 1, int(want), true)
		if n == 0 {
			runtime.Gosched()
			continue
		}
		read += uint64(n)
	}
	done <- read
}
