package spscring_test

import (
	"fmt"
	"runtime"

	"github.com/jacoelho/spscring"
)

func ExampleRingBuffer() {
	ring := spscring.NewRingBuffer(16)

	go func() {
		for i := byte(0); i < 8; i++ {
			for !spscring.WriteValue(ring, i) {
				runtime.Gosched()
			}
		}
	}()

	for i := 0; i < 8; i++ {
		var v byte
		var ok bool
		for {
			v, ok = spscring.ReadValue[byte](ring)
			if ok {
				break
			}
			runtime.Gosched()
		}
		fmt.Println(v)
	}
	// Output:
	// 0
	// 1
	// 2
	// 3
	// 4
	// 5
	// 6
	// 7
}
