package partitioner

import (
	"math"

	da "github.com/lintang-b-s/hyperflow/pkg/datastructure"
	"github.com/lintang-b-s/hyperflow/pkg/util"
	"go.uber.org/zap"
)

// BFSBisector is a greedy stand-in for the external multilevel engine: it
// grows block 0 by breadth-first search across hyperedges until the block
// reaches its perfect weight, and assigns the remainder to block 1. Useful
// as the bottom collaborator when the full coarsening/refinement pipeline
// is not wired in, and as the compliant bisector of the driver tests.
type BFSBisector struct {
	logger *zap.Logger
}

func NewBFSBisector(logger *zap.Logger) *BFSBisector {
	return &BFSBisector{logger: logger}
}

func (bb *BFSBisector) Partition(hg *da.Hypergraph, ctx *Context) (*da.PartitionedHypergraph, error) {
	util.AssertPanic(ctx.K == 2, "bisector called with k != 2")

	numNodes := hg.NumberOfNodes()
	target0 := bb.targetWeight(hg, ctx)

	// Components are labeled first so that the BFS never stalls on a
	// disconnected hypergraph; seeds are visited in dense component order.
	components := da.NewClustering(numNodes)
	numComponents := bb.labelComponents(hg, components)
	seeds := make([]da.Index, numComponents)
	for v := numNodes - 1; v >= 0; v-- {
		seeds[components[v]] = da.Index(v)
	}

	part := make([]da.PartitionID, numNodes)
	for v := range part {
		part[v] = 1
	}

	weight0 := da.Weight(0)
	visited := make([]bool, numNodes)
	queue := make([]da.Index, 0, numNodes)
	for _, seed := range seeds {
		if weight0 >= target0 {
			break
		}
		if visited[seed] {
			continue
		}
		visited[seed] = true
		queue = append(queue[:0], seed)
		for len(queue) > 0 && weight0 < target0 {
			v := queue[0]
			queue = queue[1:]
			part[v] = 0
			weight0 += hg.NodeWeight(v)
			for _, e := range hg.IncidentEdges(v) {
				for _, u := range hg.Pins(e) {
					if !visited[u] {
						visited[u] = true
						queue = append(queue, u)
					}
				}
			}
		}
	}

	phg := da.NewPartitionedHypergraph(2, hg)
	phg.SetParallelism(ctx.NumThreads)
	phg.DoParallelForAllNodes(func(v da.Index) {
		phg.SetOnlyNodePart(v, part[v])
	})
	phg.InitializePartition()

	bb.logger.Debug("bfs bisection",
		zap.Int64("weight0", int64(phg.PartWeight(0))),
		zap.Int64("weight1", int64(phg.PartWeight(1))),
		zap.Int64("target0", int64(target0)))
	return phg, nil
}

func (bb *BFSBisector) targetWeight(hg *da.Hypergraph, ctx *Context) da.Weight {
	if len(ctx.PerfectBalancePartWeights) == 2 {
		return ctx.PerfectBalancePartWeights[0]
	}
	return da.Weight(math.Ceil(float64(hg.TotalWeight()) / 2.0))
}

// labelComponents floods every connected component and compactifies the
// component IDs to the dense range [0, count).
func (bb *BFSBisector) labelComponents(hg *da.Hypergraph, components da.Clustering) int {
	numNodes := hg.NumberOfNodes()
	for v := range components {
		components[v] = da.INVALID_PARTITION_ID
	}
	queue := make([]da.Index, 0, numNodes)
	for seed := 0; seed < numNodes; seed++ {
		if components[seed] != da.INVALID_PARTITION_ID {
			continue
		}
		components[seed] = da.PartitionID(seed)
		queue = append(queue[:0], da.Index(seed))
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			for _, e := range hg.IncidentEdges(v) {
				for _, u := range hg.Pins(e) {
					if components[u] == da.INVALID_PARTITION_ID {
						components[u] = da.PartitionID(seed)
						queue = append(queue, u)
					}
				}
			}
		}
	}
	return components.Compactify(da.PartitionID(numNodes-1), 1)
}
