package datastructure

import (
	"github.com/lintang-b-s/hyperflow/pkg/concurrent"
	"github.com/lintang-b-s/hyperflow/pkg/util"
)

// StreamingVector collects values concurrently without knowing the final
// size up front. Each producer appends to its own buffer, identified by the
// dense worker ID the data-parallel scheduler hands out, so no two
// goroutines ever share a buffer during a Stream call. Copy concatenates
// the buffers into one contiguous slice via a prefix sum over the buffer
// lengths; the order within each buffer is preserved, the buffers are laid
// out in worker order.
type StreamingVector[T any] struct {
	buffers   [][]T
	prefixSum []int
}

func NewStreamingVector[T any](numBuffers int) *StreamingVector[T] {
	if numBuffers <= 0 {
		numBuffers = concurrent.DefaultNumWorkers()
	}
	return &StreamingVector[T]{
		buffers:   make([][]T, numBuffers),
		prefixSum: make([]int, numBuffers),
	}
}

// Stream appends value to the buffer of the given producer. Only one
// goroutine may use a workerID at a time.
func (sv *StreamingVector[T]) Stream(workerID int, value T) {
	sv.buffers[workerID] = append(sv.buffers[workerID], value)
}

func (sv *StreamingVector[T]) NumBuffers() int {
	return len(sv.buffers)
}

func (sv *StreamingVector[T]) Size() int {
	size := 0
	for _, buf := range sv.buffers {
		size += len(buf)
	}
	return size
}

func (sv *StreamingVector[T]) SizeOfBuffer(workerID int) int {
	return len(sv.buffers[workerID])
}

func (sv *StreamingVector[T]) PrefixSumOfBuffer(workerID int) int {
	return sv.prefixSum[workerID]
}

func (sv *StreamingVector[T]) Value(workerID, idx int) T {
	util.AssertPanic(idx < len(sv.buffers[workerID]), "buffer index out of range")
	return sv.buffers[workerID][idx]
}

func (sv *StreamingVector[T]) CopySequential() []T {
	values := make([]T, sv.initPrefixSum())
	for workerID := range sv.buffers {
		sv.copyBufferTo(values, workerID)
	}
	return values
}

func (sv *StreamingVector[T]) CopyParallel() []T {
	values := make([]T, sv.initPrefixSum())
	concurrent.ParallelFor(len(sv.buffers), len(sv.buffers),
		func(_, workerID int) {
			sv.copyBufferTo(values, workerID)
		})
	return values
}

func (sv *StreamingVector[T]) ClearSequential() {
	for workerID := range sv.buffers {
		sv.buffers[workerID] = nil
		sv.prefixSum[workerID] = 0
	}
}

func (sv *StreamingVector[T]) ClearParallel() {
	concurrent.ParallelFor(len(sv.buffers), len(sv.buffers),
		func(_, workerID int) {
			sv.buffers[workerID] = nil
		})
	for workerID := range sv.prefixSum {
		sv.prefixSum[workerID] = 0
	}
}

func (sv *StreamingVector[T]) initPrefixSum() int {
	totalSize := 0
	for workerID, buf := range sv.buffers {
		sv.prefixSum[workerID] = totalSize
		totalSize += len(buf)
	}
	return totalSize
}

func (sv *StreamingVector[T]) copyBufferTo(destination []T, workerID int) {
	copy(destination[sv.prefixSum[workerID]:], sv.buffers[workerID])
}
