package datastructure

import (
	"sync/atomic"

	"github.com/lintang-b-s/hyperflow/pkg/concurrent"
	"github.com/lintang-b-s/hyperflow/pkg/util"
)

// PartitionedHypergraph wraps an immutable hypergraph and maintains the
// mutable block assignment plus all derived partition state: per-block
// weight and size, and per-hyperedge pin counts per block.
//
// Concurrency model: part[v] is moved by a per-node compare-and-swap,
// partWeight/partSize/pinCount are per-cell atomic counters, readers never
// lock. For a fixed node the successful moves are linearizable through the
// CAS; for a fixed hyperedge the pin-count updates of all successful moves
// are equivalent to some serial order. partWeight and partSize may lag an
// in-flight move by one update but always converge once all movers retire.
type PartitionedHypergraph struct {
	hg         *Hypergraph
	k          PartitionID
	numWorkers int

	part       []int32
	partWeight []int64
	partSize   []int64
	pinCount   []int32 // row e*k .. e*k+k-1 holds the pin counts of edge e
}

// NewPartitionedHypergraph returns the structure with every node unassigned
// and all derived counters zero. O(n + m*k) allocation.
func NewPartitionedHypergraph(k PartitionID, hg *Hypergraph) *PartitionedHypergraph {
	util.AssertPanic(k >= 1, "partition must have at least one block")
	phg := &PartitionedHypergraph{
		hg:         hg,
		k:          k,
		numWorkers: concurrent.DefaultNumWorkers(),
		part:       make([]int32, hg.NumberOfNodes()),
		partWeight: make([]int64, k),
		partSize:   make([]int64, k),
		pinCount:   make([]int32, hg.NumberOfHyperedges()*int(k)),
	}
	for v := range phg.part {
		phg.part[v] = int32(INVALID_PARTITION_ID)
	}
	return phg
}

func (phg *PartitionedHypergraph) Hypergraph() *Hypergraph {
	return phg.hg
}

func (phg *PartitionedHypergraph) K() PartitionID {
	return phg.k
}

func (phg *PartitionedHypergraph) TotalWeight() Weight {
	return phg.hg.TotalWeight()
}

// SetParallelism bounds the worker count of the data-parallel operations.
func (phg *PartitionedHypergraph) SetParallelism(numWorkers int) {
	if numWorkers > 0 {
		phg.numWorkers = numWorkers
	}
}

// SetOnlyNodePart assigns node v to block b without touching any derived
// state. Only legal on an unassigned node; InitializePartition must be
// called exactly once after the bulk assignment finished.
func (phg *PartitionedHypergraph) SetOnlyNodePart(v Index, b PartitionID) {
	util.AssertPanic(b >= 0 && b < phg.k, "block id out of range")
	old := atomic.SwapInt32(&phg.part[v], int32(b))
	util.AssertPanic(old == int32(INVALID_PARTITION_ID), "node already assigned to a block")
}

// InitializePartition recomputes partWeight, partSize and all pin counts
// from the part array in parallel. Afterwards ChangeNodePart becomes legal.
// Idempotent as long as part is unchanged.
func (phg *PartitionedHypergraph) InitializePartition() {
	for b := PartitionID(0); b < phg.k; b++ {
		atomic.StoreInt64(&phg.partWeight[b], 0)
		atomic.StoreInt64(&phg.partSize[b], 0)
	}

	concurrent.ParallelForChunked(phg.hg.NumberOfNodes(), phg.numWorkers,
		func(_, begin, end int) {
			localWeight := make([]int64, phg.k)
			localSize := make([]int64, phg.k)
			for v := begin; v < end; v++ {
				b := atomic.LoadInt32(&phg.part[v])
				util.AssertPanic(b != int32(INVALID_PARTITION_ID),
					"unassigned node during partition initialization")
				localWeight[b] += int64(phg.hg.NodeWeight(Index(v)))
				localSize[b]++
			}
			for b := PartitionID(0); b < phg.k; b++ {
				if localSize[b] > 0 {
					atomic.AddInt64(&phg.partWeight[b], localWeight[b])
					atomic.AddInt64(&phg.partSize[b], localSize[b])
				}
			}
		})

	k := int(phg.k)
	concurrent.ParallelForChunked(phg.hg.NumberOfHyperedges(), phg.numWorkers,
		func(_, begin, end int) {
			for e := begin; e < end; e++ {
				row := phg.pinCount[e*k : (e+1)*k]
				for b := range row {
					row[b] = 0
				}
				for _, v := range phg.hg.Pins(Index(e)) {
					row[atomic.LoadInt32(&phg.part[v])]++
				}
			}
		})
}

func (phg *PartitionedHypergraph) PartID(v Index) PartitionID {
	return PartitionID(atomic.LoadInt32(&phg.part[v]))
}

func (phg *PartitionedHypergraph) PartWeight(b PartitionID) Weight {
	return Weight(atomic.LoadInt64(&phg.partWeight[b]))
}

func (phg *PartitionedHypergraph) PartSize(b PartitionID) int {
	return int(atomic.LoadInt64(&phg.partSize[b]))
}

func (phg *PartitionedHypergraph) PinCountInPart(e Index, b PartitionID) int {
	return int(atomic.LoadInt32(&phg.pinCount[int(e)*int(phg.k)+int(b)]))
}

// ChangeNodePart atomically moves node v from block `from` to block `to`.
// Returns false when the CAS on part[v] observes a different block, i.e.
// a concurrent mover won the race; no state is touched in that case. On
// success the derived counters are published with per-cell atomic updates.
func (phg *PartitionedHypergraph) ChangeNodePart(v Index, from, to PartitionID) bool {
	util.AssertPanic(from >= 0 && from < phg.k, "source block id out of range")
	util.AssertPanic(to >= 0 && to < phg.k, "target block id out of range")
	if from == to {
		return false
	}
	if !atomic.CompareAndSwapInt32(&phg.part[v], int32(from), int32(to)) {
		return false
	}

	weight := int64(phg.hg.NodeWeight(v))
	atomic.AddInt64(&phg.partWeight[from], -weight)
	atomic.AddInt64(&phg.partWeight[to], weight)
	atomic.AddInt64(&phg.partSize[from], -1)
	atomic.AddInt64(&phg.partSize[to], 1)

	k := int(phg.k)
	for _, e := range phg.hg.IncidentEdges(v) {
		atomic.AddInt32(&phg.pinCount[int(e)*k+int(from)], -1)
		atomic.AddInt32(&phg.pinCount[int(e)*k+int(to)], 1)
	}
	return true
}

// ConnectivitySet returns the set of blocks with at least one pin of e.
func (phg *PartitionedHypergraph) ConnectivitySet(e Index) *Bitset {
	set := NewBitset(int(phg.k))
	for b := PartitionID(0); b < phg.k; b++ {
		if phg.PinCountInPart(e, b) > 0 {
			set.Set(b)
		}
	}
	return set
}

// Connectivity returns the number of distinct blocks touched by e.
func (phg *PartitionedHypergraph) Connectivity(e Index) int {
	connectivity := 0
	for b := PartitionID(0); b < phg.k; b++ {
		if phg.PinCountInPart(e, b) > 0 {
			connectivity++
		}
	}
	return connectivity
}

// DoParallelForAllNodes applies f to every node under the data-parallel
// scheduler. f must be safe for concurrent invocation on distinct nodes.
func (phg *PartitionedHypergraph) DoParallelForAllNodes(f func(v Index)) {
	concurrent.ParallelFor(phg.hg.NumberOfNodes(), phg.numWorkers,
		func(_, i int) {
			f(Index(i))
		})
}

// Extract builds the sub-hypergraph induced by one block together with the
// mapping from parent nodes to sub-nodes (INVALID_INDEX outside the block).
//
// cutNetSplitting selects how hyperedges crossing the block boundary are
// treated: true replaces each edge by the restriction of its pin set to the
// block, dropping empty and singleton nets (connectivity objectives); false
// keeps only edges fully contained in the block (edge-cut objective).
//
// Sub-node and sub-edge IDs preserve the relative parent order, so the
// construction is deterministic; stable selects the sequential copy path of
// the edge buffers.
func (phg *PartitionedHypergraph) Extract(block PartitionID,
	cutNetSplitting, stable bool) (*Hypergraph, []Index) {
	util.AssertPanic(block >= 0 && block < phg.k, "extracted block out of range")

	numNodes := phg.hg.NumberOfNodes()
	indicator := make([]int32, numNodes)
	phg.DoParallelForAllNodes(func(v Index) {
		if phg.PartID(v) == block {
			indicator[v] = 1
		}
	})
	concurrent.PrefixSum(indicator, phg.numWorkers)

	numSubNodes := 0
	if numNodes > 0 {
		numSubNodes = int(indicator[numNodes-1])
	}
	mapping := make([]Index, numNodes)
	phg.DoParallelForAllNodes(func(v Index) {
		if phg.PartID(v) == block {
			mapping[v] = Index(indicator[v] - 1)
		} else {
			mapping[v] = INVALID_INDEX
		}
	})

	// Surviving edges are streamed per worker; the contiguous chunks plus
	// the ordered copy keep them sorted by parent edge ID.
	survivors := NewStreamingVector[Index](phg.numWorkers)
	concurrent.ParallelForChunked(phg.hg.NumberOfHyperedges(), phg.numWorkers,
		func(workerID, begin, end int) {
			for e := begin; e < end; e++ {
				pinsInBlock := phg.PinCountInPart(Index(e), block)
				if cutNetSplitting {
					if pinsInBlock >= 2 {
						survivors.Stream(workerID, Index(e))
					}
				} else if pinsInBlock == phg.hg.EdgeSize(Index(e)) {
					survivors.Stream(workerID, Index(e))
				}
			}
		})

	var subEdgeIDs []Index
	if stable {
		subEdgeIDs = survivors.CopySequential()
	} else {
		subEdgeIDs = survivors.CopyParallel()
	}

	subEdges := make([][]Index, len(subEdgeIDs))
	subEdgeWeights := make([]Weight, len(subEdgeIDs))
	concurrent.ParallelFor(len(subEdgeIDs), phg.numWorkers,
		func(_, i int) {
			e := subEdgeIDs[i]
			pins := make([]Index, 0, phg.hg.EdgeSize(e))
			for _, v := range phg.hg.Pins(e) {
				if mapping[v] != INVALID_INDEX {
					pins = append(pins, mapping[v])
				}
			}
			subEdges[i] = pins
			subEdgeWeights[i] = phg.hg.EdgeWeight(e)
		})

	subNodeWeights := make([]Weight, numSubNodes)
	phg.DoParallelForAllNodes(func(v Index) {
		if mapping[v] != INVALID_INDEX {
			subNodeWeights[mapping[v]] = phg.hg.NodeWeight(v)
		}
	})

	return NewHypergraph(numSubNodes, subEdges, subNodeWeights, subEdgeWeights), mapping
}
