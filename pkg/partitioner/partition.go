package partitioner

import (
	da "github.com/lintang-b-s/hyperflow/pkg/datastructure"
	"github.com/lintang-b-s/hyperflow/pkg/util"
	"go.uber.org/zap"
)

// PartitionHypergraph is the top-level entry point selecting the driver by
// ctx.Mode. The direct k-way and deep multilevel engines are external
// collaborators; when one of those modes is requested this library runs the
// recursive bipartitioning driver in its initial-partitioning role, which
// is exactly how those engines bootstrap their k-way partitions.
func PartitionHypergraph(hg *da.Hypergraph, ctx *Context, bisector Bisector,
	logger *zap.Logger) (*da.PartitionedHypergraph, error) {
	if err := ctx.Validate(); err != nil {
		return nil, err
	}

	driver := NewRecursiveBipartitioner(bisector, logger)
	switch ctx.Mode {
	case RECURSIVE_BIPARTITIONING:
		return driver.Partition(hg, ctx)
	case DIRECT, DEEP_MULTILEVEL:
		ipCtx := ctx.Clone()
		ipCtx.Type = INITIAL_PARTITIONING
		return driver.Partition(hg, ipCtx)
	}
	return nil, util.WrapErrorf(nil, util.ErrIllegalOption,
		"illegal option: %s", ctx.Mode.String())
}
