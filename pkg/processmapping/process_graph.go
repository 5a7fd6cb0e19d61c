package processmapping

import (
	"math"
	"sync"

	da "github.com/lintang-b-s/hyperflow/pkg/datastructure"
	"github.com/lintang-b-s/hyperflow/pkg/util"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

const (
	// STEINER_TREE_MEMORY_LIMIT caps the number of entries of the
	// precomputed steiner table. Connectivity sizes whose table would not
	// fit are skipped; queries for them fall through to the MST
	// 2-approximation.
	STEINER_TREE_MEMORY_LIMIT = 100000000

	INF_WEIGHT da.Weight = math.MaxInt64 / 4
)

type ProcessGraphEdge struct {
	u, v   da.PartitionID
	weight da.Weight
}

func NewProcessGraphEdge(u, v da.PartitionID, weight da.Weight) ProcessGraphEdge {
	return ProcessGraphEdge{u: u, v: v, weight: weight}
}

// ProcessGraph is the target communication topology of the process_mapping
// objective: a small weighted graph on k blocks. All pairwise shortest
// paths are computed at construction; optimal steiner-tree weights for
// connectivity sets up to a configurable size are precomputed by dynamic
// programming, everything beyond that is answered with an MST on the
// metric completion, the classical 2-approximation.
type ProcessGraph struct {
	k          da.PartitionID
	numWorkers int

	maxPrecomputedConnectivity int
	memoryLimit                int

	distances []da.Weight // apsp, row-major k*k
	steiner   []da.Weight // indexed by the mixed-radix connectivity-set key

	localMSTData sync.Pool
}

func NewProcessGraph(k da.PartitionID, edges []ProcessGraphEdge) *ProcessGraph {
	util.AssertPanic(k >= 1, "process graph needs at least one block")
	pg := &ProcessGraph{
		k:           k,
		numWorkers:  0,
		memoryLimit: STEINER_TREE_MEMORY_LIMIT,
		distances:   make([]da.Weight, int(k)*int(k)),
	}
	pg.localMSTData = sync.Pool{
		New: func() interface{} {
			return newMSTData(int(k))
		},
	}
	pg.computeAllPairShortestPaths(edges)
	return pg
}

func (pg *ProcessGraph) NumBlocks() da.PartitionID {
	return pg.k
}

func (pg *ProcessGraph) MaxPrecomputedConnectivity() int {
	return pg.maxPrecomputedConnectivity
}

// SetMemoryLimit overrides the precompute entry cap. Must be called before
// PrecomputeDistances.
func (pg *ProcessGraph) SetMemoryLimit(limit int) {
	pg.memoryLimit = limit
}

func (pg *ProcessGraph) SetParallelism(numWorkers int) {
	pg.numWorkers = numWorkers
}

// Distance returns the shortest-path distance between blocks i and j.
func (pg *ProcessGraph) Distance(i, j da.PartitionID) da.Weight {
	return pg.distances[pg.pairIndex(i, j)]
}

// DistanceForSet returns the weight of the optimal steiner tree connecting
// all blocks of the connectivity set if it was precomputed, and a
// 2-approximation via an MST on the metric completion otherwise.
func (pg *ProcessGraph) DistanceForSet(connectivitySet *da.Bitset) da.Weight {
	cardinality := connectivitySet.Cardinality()
	if cardinality <= 1 {
		return 0
	}
	members := connectivitySet.Members()
	if cardinality == 2 {
		return pg.Distance(members[0], members[1])
	}
	if cardinality <= pg.maxPrecomputedConnectivity {
		return pg.steiner[pg.setIndex(members)]
	}
	return pg.computeWeightOfMSTOnMetricCompletion(members)
}

func (pg *ProcessGraph) computeAllPairShortestPaths(edges []ProcessGraphEdge) {
	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for b := da.PartitionID(0); b < pg.k; b++ {
		g.AddNode(simple.Node(b))
	}
	for _, e := range edges {
		util.AssertPanic(e.u >= 0 && e.u < pg.k && e.v >= 0 && e.v < pg.k,
			"process graph edge endpoint out of range")
		util.AssertPanic(e.u != e.v, "process graph must not contain self loops")
		util.AssertPanic(e.weight >= 0, "process graph edge weight must be non-negative")
		g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(e.u), simple.Node(e.v), float64(e.weight)))
	}

	apsp, _ := path.FloydWarshall(g)
	for i := da.PartitionID(0); i < pg.k; i++ {
		for j := da.PartitionID(0); j < pg.k; j++ {
			w := apsp.Weight(int64(i), int64(j))
			if math.IsInf(w, 1) {
				pg.distances[pg.pairIndex(i, j)] = INF_WEIGHT
			} else {
				pg.distances[pg.pairIndex(i, j)] = da.Weight(w)
			}
		}
	}
}

func (pg *ProcessGraph) pairIndex(i, j da.PartitionID) int {
	return int(i) + int(j)*int(pg.k)
}

// setIndex encodes a sorted connectivity set as the mixed-radix number
// sum(c_i * k^i), with a trailing last*k term for singleton sets so that
// sets of every size below the maximum map to distinct slots.
func (pg *ProcessGraph) setIndex(members []da.PartitionID) int {
	k := int(pg.k)
	index := 0
	multiplier := 1
	last := 0
	for _, b := range members {
		index += multiplier * int(b)
		multiplier *= k
		last = int(b)
	}
	if multiplier == k {
		index += last * k
	}
	return index
}
