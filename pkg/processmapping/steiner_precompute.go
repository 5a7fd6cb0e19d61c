package processmapping

import (
	"github.com/lintang-b-s/hyperflow/pkg/concurrent"
	da "github.com/lintang-b-s/hyperflow/pkg/datastructure"
)

/*
PrecomputeDistances computes the weight of the optimal steiner tree for
every connectivity set with 2 <= |C| <= maxConnectivity by the
Dreyfus-Wagner dynamic program over the metric completion:

	dp[S][v]  = weight of an optimal steiner tree spanning S u {v}
	dp[{t}][v] = d(t, v)
	dp[S][v]  = min_u ( min_{S1 + S2 = S} dp[S1][u] + dp[S2][u] ) + d(u, v)

with d the all-pairs shortest-path metric. The connectivity sizes are
processed in increasing order; within one size class the sets are
independent and are fanned out to a worker pool. Sizes whose table would
exceed the entry cap are skipped entirely, the oracle then answers those
queries with the MST 2-approximation instead.
*/
func (pg *ProcessGraph) PrecomputeDistances(maxConnectivity int) {
	k := int(pg.k)
	if maxConnectivity > k {
		maxConnectivity = k
	}

	// largest connectivity whose mixed-radix table still fits
	achievable := 0
	entries := 1
	for s := 1; s <= maxConnectivity; s++ {
		if entries > pg.memoryLimit/k {
			break
		}
		entries *= k
		achievable = s
	}
	if achievable < 2 {
		return
	}
	m := achievable

	tableSize := 1
	for s := 0; s < m; s++ {
		tableSize *= k
	}
	pg.steiner = make([]da.Weight, tableSize)
	dp := make([]da.Weight, tableSize)

	// base case: singleton terminal sets
	for t := 0; t < k; t++ {
		for v := 0; v < k; v++ {
			dp[t*k+v] = pg.distances[pg.pairIndex(da.PartitionID(t), da.PartitionID(v))]
		}
	}

	for s := 2; s <= m; s++ {
		sets := enumerateConnectivitySets(k, s)
		numSets := len(sets) / s
		pg.forEachSetParallel(numSets, func(i int) {
			members := sets[i*s : (i+1)*s]
			pg.processSet(dp, members, s < m)
		})
	}

	pg.maxPrecomputedConnectivity = m
}

// processSet fills the steiner entry of one connectivity set and, while
// larger sizes still need it, the dp row of the set.
func (pg *ProcessGraph) processSet(dp []da.Weight, members []da.PartitionID, needDPRow bool) {
	k := int(pg.k)
	s := len(members)

	prefix := members[:s-1]
	root := members[s-1]
	pg.steiner[pg.setIndex(members)] = dp[pg.dpIndex(prefix)*k+int(root)]

	if !needDPRow {
		return
	}

	// merged[u] = best way to branch the terminal set at u
	merged := make([]da.Weight, k)
	for u := 0; u < k; u++ {
		merged[u] = INF_WEIGHT
	}
	subset1 := make([]da.PartitionID, 0, s)
	subset2 := make([]da.PartitionID, 0, s)
	fullMask := (1 << (s - 1)) - 1
	for mask := 0; mask < fullMask; mask++ {
		subset1 = append(subset1[:0], members[0])
		subset2 = subset2[:0]
		for bit := 0; bit < s-1; bit++ {
			if mask&(1<<bit) != 0 {
				subset1 = append(subset1, members[bit+1])
			} else {
				subset2 = append(subset2, members[bit+1])
			}
		}
		row1 := pg.dpIndex(subset1) * k
		row2 := pg.dpIndex(subset2) * k
		for u := 0; u < k; u++ {
			candidate := dp[row1+u] + dp[row2+u]
			if candidate < merged[u] {
				merged[u] = candidate
			}
		}
	}

	row := pg.dpIndex(members) * k
	for v := 0; v < k; v++ {
		best := INF_WEIGHT
		for u := 0; u < k; u++ {
			candidate := merged[u] + pg.distances[pg.pairIndex(da.PartitionID(u), da.PartitionID(v))]
			if candidate < best {
				best = candidate
			}
		}
		dp[row+v] = best
	}
}

// dpIndex encodes a sorted set without the singleton tail term; the strictly
// increasing members keep the size classes in disjoint ranges.
func (pg *ProcessGraph) dpIndex(members []da.PartitionID) int {
	k := int(pg.k)
	index := 0
	multiplier := 1
	for _, b := range members {
		index += multiplier * int(b)
		multiplier *= k
	}
	return index
}

type setRange struct {
	begin, end int
}

// forEachSetParallel fans the index range [0, numSets) out to a worker pool
// in contiguous chunks.
func (pg *ProcessGraph) forEachSetParallel(numSets int, f func(i int)) {
	if numSets == 0 {
		return
	}
	numWorkers := pg.numWorkers
	if numWorkers <= 0 {
		numWorkers = concurrent.DefaultNumWorkers()
	}
	chunkSize := (numSets + 4*numWorkers - 1) / (4 * numWorkers)
	numJobs := (numSets + chunkSize - 1) / chunkSize

	pool := concurrent.NewWorkerPool[setRange, struct{}](numWorkers, numJobs)
	for begin := 0; begin < numSets; begin += chunkSize {
		end := begin + chunkSize
		if end > numSets {
			end = numSets
		}
		pool.AddJob(setRange{begin: begin, end: end})
	}
	pool.Close()
	pool.Start(func(job setRange) struct{} {
		for i := job.begin; i < job.end; i++ {
			f(i)
		}
		return struct{}{}
	})
	pool.Wait()
	for range pool.CollectResults() {
	}
}

// enumerateConnectivitySets lists all sorted s-element subsets of [0, k),
// flattened with stride s, in lexicographic order.
func enumerateConnectivitySets(k, s int) []da.PartitionID {
	if s > k {
		return nil
	}
	flat := make([]da.PartitionID, 0, s*16)
	comb := make([]da.PartitionID, s)
	for i := range comb {
		comb[i] = da.PartitionID(i)
	}
	for {
		flat = append(flat, comb...)
		i := s - 1
		for i >= 0 && comb[i] == da.PartitionID(k-s+i) {
			i--
		}
		if i < 0 {
			return flat
		}
		comb[i]++
		for j := i + 1; j < s; j++ {
			comb[j] = comb[j-1] + 1
		}
	}
}
