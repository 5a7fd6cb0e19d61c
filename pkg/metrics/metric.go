package metrics

import (
	da "github.com/lintang-b-s/hyperflow/pkg/datastructure"
	"github.com/lintang-b-s/hyperflow/pkg/partitioner"
	"github.com/lintang-b-s/hyperflow/pkg/processmapping"
	"github.com/lintang-b-s/hyperflow/pkg/util"
)

// Cut sums the weights of all hyperedges spanning more than one block.
func Cut(phg *da.PartitionedHypergraph) da.Weight {
	cut := da.Weight(0)
	phg.Hypergraph().ForEachHyperedge(func(e da.Index) {
		if phg.Connectivity(e) > 1 {
			cut += phg.Hypergraph().EdgeWeight(e)
		}
	})
	return cut
}

// Km1 is the connectivity-1 objective: sum over all hyperedges of
// weight * (number of blocks touched - 1).
func Km1(phg *da.PartitionedHypergraph) da.Weight {
	km1 := da.Weight(0)
	phg.Hypergraph().ForEachHyperedge(func(e da.Index) {
		connectivity := phg.Connectivity(e)
		km1 += da.Weight(connectivity-1) * phg.Hypergraph().EdgeWeight(e)
	})
	return km1
}

// SoeD is the sum-of-external-degrees objective: weight * blocks touched,
// counted only for cut hyperedges.
func SoeD(phg *da.PartitionedHypergraph) da.Weight {
	soed := da.Weight(0)
	phg.Hypergraph().ForEachHyperedge(func(e da.Index) {
		connectivity := phg.Connectivity(e)
		if connectivity > 1 {
			soed += da.Weight(connectivity) * phg.Hypergraph().EdgeWeight(e)
		}
	})
	return soed
}

// ProcessMappingCost scores the partition against a target communication
// topology: sum over all hyperedges of weight * steiner-tree cost of the
// edge's connectivity set on the process graph.
func ProcessMappingCost(phg *da.PartitionedHypergraph, processGraph *processmapping.ProcessGraph) da.Weight {
	util.AssertPanic(processGraph.NumBlocks() == phg.K(),
		"process graph size differs from number of blocks")
	cost := da.Weight(0)
	phg.Hypergraph().ForEachHyperedge(func(e da.Index) {
		connectivitySet := phg.ConnectivitySet(e)
		cost += phg.Hypergraph().EdgeWeight(e) * processGraph.DistanceForSet(connectivitySet)
	})
	return cost
}

// Objective evaluates the given objective. processGraph may be nil unless
// the objective is process_mapping.
func Objective(phg *da.PartitionedHypergraph, objective partitioner.Objective,
	processGraph *processmapping.ProcessGraph) da.Weight {
	switch objective {
	case partitioner.CUT:
		return Cut(phg)
	case partitioner.KM1:
		return Km1(phg)
	case partitioner.SOED:
		return SoeD(phg)
	case partitioner.PROCESS_MAPPING:
		util.AssertPanic(processGraph != nil, "process_mapping objective needs a process graph")
		return ProcessMappingCost(phg, processGraph)
	}
	panic("objective function is undefined")
}

// Imbalance returns max_b( partWeight(b) / perfectWeight(b) ) - 1, floored
// at 0 when every block is lighter than its perfect weight.
func Imbalance(phg *da.PartitionedHypergraph, ctx *partitioner.Context) float64 {
	util.AssertPanic(len(ctx.PerfectBalancePartWeights) == int(phg.K()),
		"perfect balance part weights not set up")
	maxRatio := 1.0
	for b := da.PartitionID(0); b < phg.K(); b++ {
		ratio := float64(phg.PartWeight(b)) / float64(ctx.PerfectBalancePartWeights[b])
		if ratio > maxRatio {
			maxRatio = ratio
		}
	}
	return maxRatio - 1.0
}
