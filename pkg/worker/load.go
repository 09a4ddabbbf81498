package worker

import (
	"strconv"
)

// cpuSink keeps burnCPU results observable so the loop is never elided
var cpuSink int

// burnCPU performs increments trivial increments and returns the count
//
//go:noinline
func burnCPU(increments int) int {
	counter := 0
	for counter < increments {
		counter++
	}
	return counter
}

// newChunk allocates a fresh chunk of exactly size bytes: the decimal loop
// counter right-padded with spaces, or truncated when size is smaller.
func newChunk(counter, size int) []byte {
	chunk := make([]byte, size)
	n := copy(chunk, strconv.Itoa(counter))
	for i := n; i < size; i++ {
		chunk[i] = ' '
	}
	return chunk
}
