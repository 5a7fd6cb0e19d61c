package datastructure

import (
	"sync/atomic"

	"github.com/lintang-b-s/hyperflow/pkg/concurrent"
	"github.com/lintang-b-s/hyperflow/pkg/util"
)

// Clustering maps every node to a cluster ID. Initial partitioning and
// coarsening feedback hand these around as plain block-ID sequences.
type Clustering []PartitionID

func NewClustering(n int) Clustering {
	return make(Clustering, n)
}

// AssignSingleton puts every node into its own cluster.
func (c Clustering) AssignSingleton(parallel bool) {
	if parallel {
		concurrent.ParallelFor(len(c), concurrent.DefaultNumWorkers(),
			func(_, i int) {
				c[i] = PartitionID(i)
			})
		return
	}
	for i := range c {
		c[i] = PartitionID(i)
	}
}

// Compactify relabels the cluster IDs to the dense range [0, count) and
// returns count. Dense IDs are assigned in increasing order of the old IDs,
// so the sequential and the parallel path produce identical output. Pass
// upperIDBound < 0 to default it to len(c)-1.
func (c Clustering) Compactify(upperIDBound PartitionID, numTasks int) int {
	if len(c) == 0 {
		return 0
	}
	if upperIDBound < 0 {
		upperIDBound = PartitionID(len(c) - 1)
	}
	if numTasks > 1 {
		return c.parallelCompactify(upperIDBound, numTasks)
	}
	return c.sequentialCompactify(upperIDBound)
}

func (c Clustering) sequentialCompactify(upperIDBound PartitionID) int {
	mapping := make([]PartitionID, upperIDBound+1)
	for _, cluster := range c {
		util.AssertPanic(cluster >= 0 && cluster <= upperIDBound, "cluster id above bound")
		mapping[cluster] = 1
	}
	count := PartitionID(0)
	for id := range mapping {
		if mapping[id] == 1 {
			mapping[id] = count
			count++
		}
	}
	for i, cluster := range c {
		c[i] = mapping[cluster]
	}
	return int(count)
}

func (c Clustering) parallelCompactify(upperIDBound PartitionID, numTasks int) int {
	mapping := make([]PartitionID, upperIDBound+1)
	concurrent.ParallelFor(len(c), numTasks, func(_, i int) {
		util.AssertPanic(c[i] >= 0 && c[i] <= upperIDBound, "cluster id above bound")
		// several nodes of the same cluster mark the same slot
		atomic.StoreInt32((*int32)(&mapping[c[i]]), 1)
	})

	concurrent.PrefixSum(mapping, numTasks)

	concurrent.ParallelFor(len(c), numTasks, func(_, i int) {
		c[i] = mapping[c[i]] - 1
	})
	return int(mapping[upperIDBound])
}
