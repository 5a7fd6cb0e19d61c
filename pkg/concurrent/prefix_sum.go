package concurrent

import (
	"sync"

	"golang.org/x/exp/constraints"
)

// PrefixSum replaces values by its inclusive prefix sum. With numTasks > 1
// and at least 2*numTasks values it uses the two-phase scheme: per-chunk
// local sums, a sequential scan over the chunk totals, then a parallel sweep
// adding each chunk's offset; otherwise it scans sequentially. Both paths
// produce identical output.
func PrefixSum[T constraints.Integer](values []T, numTasks int) {
	n := len(values)
	if n == 0 {
		return
	}
	if numTasks <= 1 || n < 2*numTasks {
		sequentialPrefixSum(values)
		return
	}

	chunkSize := (n + numTasks - 1) / numTasks
	numChunks := (n + chunkSize - 1) / chunkSize
	chunkTotals := make([]T, numChunks)

	var wg sync.WaitGroup
	for c := 0; c < numChunks; c++ {
		wg.Add(1)
		go func(c int) {
			defer wg.Done()
			begin, end := chunkBounds(c, chunkSize, n)
			var sum T
			for i := begin; i < end; i++ {
				sum += values[i]
				values[i] = sum
			}
			chunkTotals[c] = sum
		}(c)
	}
	wg.Wait()

	var offset T
	for c := 0; c < numChunks; c++ {
		total := chunkTotals[c]
		chunkTotals[c] = offset
		offset += total
	}

	for c := 1; c < numChunks; c++ {
		wg.Add(1)
		go func(c int) {
			defer wg.Done()
			begin, end := chunkBounds(c, chunkSize, n)
			for i := begin; i < end; i++ {
				values[i] += chunkTotals[c]
			}
		}(c)
	}
	wg.Wait()
}

func sequentialPrefixSum[T constraints.Integer](values []T) {
	var sum T
	for i := range values {
		sum += values[i]
		values[i] = sum
	}
}

func chunkBounds(c, chunkSize, n int) (int, int) {
	begin := c * chunkSize
	end := begin + chunkSize
	if end > n {
		end = n
	}
	return begin, end
}
