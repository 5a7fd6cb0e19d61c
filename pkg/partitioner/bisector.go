package partitioner

import (
	da "github.com/lintang-b-s/hyperflow/pkg/datastructure"
)

// Bisector is the multilevel bipartitioning collaborator. An
// implementation must return a partitioned hypergraph with ctx.K == 2
// blocks, every node assigned, and the balance constraint honored to the
// best effort of the engine. The recursive driver relies on nothing else
// and applies the result as-is; restoring balance is the refiner's job.
type Bisector interface {
	Partition(hg *da.Hypergraph, ctx *Context) (*da.PartitionedHypergraph, error)
}
