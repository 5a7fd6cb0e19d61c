package datastructure

import (
	"testing"

	"github.com/lintang-b-s/hyperflow/pkg/concurrent"
	"github.com/stretchr/testify/require"
)

func TestStreamingVectorSequentialCopy(t *testing.T) {
	sv := NewStreamingVector[int](4)
	sv.Stream(0, 1)
	sv.Stream(0, 2)
	sv.Stream(2, 3)
	sv.Stream(3, 4)

	require.Equal(t, 4, sv.Size())
	require.Equal(t, 2, sv.SizeOfBuffer(0))
	require.Equal(t, []int{1, 2, 3, 4}, sv.CopySequential())
	require.Equal(t, 0, sv.PrefixSumOfBuffer(0))
	require.Equal(t, 2, sv.PrefixSumOfBuffer(1))
	require.Equal(t, 2, sv.PrefixSumOfBuffer(2))
	require.Equal(t, 3, sv.PrefixSumOfBuffer(3))
}

func TestStreamingVectorParallelCopyPreservesProducerOrder(t *testing.T) {
	numWorkers := 8
	n := 10000
	sv := NewStreamingVector[int](numWorkers)
	concurrent.ParallelForChunked(n, numWorkers, func(workerID, begin, end int) {
		for i := begin; i < end; i++ {
			sv.Stream(workerID, i)
		}
	})

	require.Equal(t, n, sv.Size())
	values := sv.CopyParallel()
	require.Len(t, values, n)

	// contiguous ascending chunks per producer concatenated in worker order
	// give back the ascending sequence
	for i := 0; i < n; i++ {
		require.Equal(t, i, values[i])
	}
	require.Equal(t, sv.CopySequential(), values)
}

func TestStreamingVectorClear(t *testing.T) {
	sv := NewStreamingVector[Index](2)
	sv.Stream(0, 7)
	sv.Stream(1, 8)

	sv.ClearSequential()
	require.Equal(t, 0, sv.Size())
	require.Empty(t, sv.CopySequential())

	sv.Stream(1, 9)
	require.Equal(t, []Index{9}, sv.CopyParallel())

	sv.ClearParallel()
	require.Equal(t, 0, sv.Size())
}
