package partitioner

import (
	"testing"

	da "github.com/lintang-b-s/hyperflow/pkg/datastructure"
	"github.com/lintang-b-s/hyperflow/pkg/util"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// chainHypergraph builds a path-shaped hypergraph with unit weights.
func chainHypergraph(numNodes int) *da.Hypergraph {
	edges := make([][]da.Index, 0, numNodes-1)
	for v := 0; v < numNodes-1; v++ {
		edges = append(edges, []da.Index{da.Index(v), da.Index(v + 1)})
	}
	return da.NewHypergraph(numNodes, edges, nil, nil)
}

func smallTestHypergraph() *da.Hypergraph {
	return da.NewHypergraph(7,
		[][]da.Index{{0, 2}, {0, 1, 3, 4}, {3, 4, 6}, {2, 5, 6}},
		nil, nil)
}

func newTestDriver(t *testing.T) *RecursiveBipartitioner {
	t.Helper()
	return NewRecursiveBipartitioner(NewBFSBisector(zap.NewNop()), zap.NewNop())
}

func verifyPartition(t *testing.T, phg *da.PartitionedHypergraph) {
	t.Helper()
	totalWeight := da.Weight(0)
	totalSize := 0
	for b := da.PartitionID(0); b < phg.K(); b++ {
		totalWeight += phg.PartWeight(b)
		totalSize += phg.PartSize(b)
	}
	require.Equal(t, phg.TotalWeight(), totalWeight)
	require.Equal(t, phg.Hypergraph().NumberOfNodes(), totalSize)
	for v := 0; v < phg.Hypergraph().NumberOfNodes(); v++ {
		b := phg.PartID(da.Index(v))
		require.True(t, b >= 0 && b < phg.K(), "node %d ended in invalid block %d", v, b)
	}
}

func TestPartitionsHundredNodesIntoFourBalancedBlocks(t *testing.T) {
	hg := chainHypergraph(100)
	ctx := NewContext(4, 0.03, KM1, DIRECT, 2)

	phg, err := PartitionHypergraph(hg, ctx, NewBFSBisector(zap.NewNop()), zap.NewNop())
	require.NoError(t, err)

	verifyPartition(t, phg)
	for b := da.PartitionID(0); b < 4; b++ {
		require.GreaterOrEqual(t, phg.PartWeight(b), da.Weight(24), "block %d too light", b)
		require.LessOrEqual(t, phg.PartWeight(b), da.Weight(26), "block %d too heavy", b)
	}
}

func TestPartitionsSmallHypergraphIntoThreeBlocks(t *testing.T) {
	hg := smallTestHypergraph()
	ctx := NewContext(3, 0.2, KM1, RECURSIVE_BIPARTITIONING, 2)

	phg, err := newTestDriver(t).Partition(hg, ctx)
	require.NoError(t, err)

	verifyPartition(t, phg)
	for b := da.PartitionID(0); b < 3; b++ {
		require.Greater(t, phg.PartSize(b), 0, "block %d is empty", b)
	}
}

func TestPartitionsChainIntoFiveBlocks(t *testing.T) {
	hg := chainHypergraph(30)
	ctx := NewContext(5, 0.03, KM1, RECURSIVE_BIPARTITIONING, 4)

	phg, err := newTestDriver(t).Partition(hg, ctx)
	require.NoError(t, err)

	verifyPartition(t, phg)
	for b := da.PartitionID(0); b < 5; b++ {
		require.Equal(t, da.Weight(6), phg.PartWeight(b), "block %d", b)
	}
}

func TestPartitionsWithEdgeCutObjective(t *testing.T) {
	hg := chainHypergraph(32)
	ctx := NewContext(4, 0.05, CUT, RECURSIVE_BIPARTITIONING, 2)

	phg, err := newTestDriver(t).Partition(hg, ctx)
	require.NoError(t, err)
	verifyPartition(t, phg)
}

func TestPartitionWithIndividualPartWeights(t *testing.T) {
	hg := chainHypergraph(10)
	ctx := NewContext(2, 0.0, KM1, RECURSIVE_BIPARTITIONING, 1)
	ctx.UseIndividualPartWeights = true
	ctx.PerfectBalancePartWeights = []da.Weight{7, 3}
	ctx.MaxPartWeights = []da.Weight{7, 3}

	phg, err := newTestDriver(t).Partition(hg, ctx)
	require.NoError(t, err)

	verifyPartition(t, phg)
	require.Equal(t, da.Weight(7), phg.PartWeight(0))
	require.Equal(t, da.Weight(3), phg.PartWeight(1))
}

func TestComputeAdaptiveEpsilon(t *testing.T) {
	info := originalHypergraphInfo{originalWeight: 100, originalK: 4, originalEpsilon: 0.03}

	// two bisection levels remain: (1.03)^(1/2) - 1
	require.InDelta(t, 0.0148891565, info.computeAdaptiveEpsilon(100, 4), 1e-9)

	// empty sub-hypergraph keeps the constraint tight
	require.Equal(t, 0.0, info.computeAdaptiveEpsilon(0, 2))

	// a tiny sub-problem relative to the original is clamped at 0.99
	loose := originalHypergraphInfo{originalWeight: 100, originalK: 2, originalEpsilon: 0.0}
	require.Equal(t, 0.99, loose.computeAdaptiveEpsilon(10, 2))

	// the tolerance never drops below zero
	tight := originalHypergraphInfo{originalWeight: 10, originalK: 4, originalEpsilon: 0.0}
	require.Equal(t, 0.0, tight.computeAdaptiveEpsilon(100, 4))
}

func TestSetupBisectionContextUniform(t *testing.T) {
	hg := chainHypergraph(100)
	ctx := NewContext(4, 0.03, KM1, RECURSIVE_BIPARTITIONING, 1)
	driver := newTestDriver(t)
	info := originalHypergraphInfo{originalWeight: 100, originalK: 4, originalEpsilon: 0.03}

	bCtx := driver.setupBisectionContext(hg, ctx, info)

	require.Equal(t, da.PartitionID(2), bCtx.K)
	require.InDelta(t, 0.0148891565, bCtx.Epsilon, 1e-9)
	require.Equal(t, []da.Weight{50, 50}, bCtx.PerfectBalancePartWeights)
	require.Equal(t, []da.Weight{50, 50}, bCtx.MaxPartWeights)
	require.Equal(t, MAIN, bCtx.Type)
}

func TestSetupBisectionContextFlipsTypeInDirectMode(t *testing.T) {
	hg := chainHypergraph(10)
	ctx := NewContext(4, 0.03, KM1, DIRECT, 1)
	driver := newTestDriver(t)
	info := originalHypergraphInfo{originalWeight: 10, originalK: 4, originalEpsilon: 0.03}

	bCtx := driver.setupBisectionContext(hg, ctx, info)
	require.Equal(t, INITIAL_PARTITIONING, bCtx.Type)
}

func TestSetupBisectionContextWithIndividualPartWeights(t *testing.T) {
	hg := chainHypergraph(100)
	ctx := NewContext(4, 0.0, KM1, RECURSIVE_BIPARTITIONING, 1)
	ctx.UseIndividualPartWeights = true
	ctx.MaxPartWeights = []da.Weight{30, 30, 20, 20}
	driver := newTestDriver(t)
	info := originalHypergraphInfo{originalWeight: 100, originalK: 4, originalEpsilon: 0.0}

	bCtx := driver.setupBisectionContext(hg, ctx, info)

	require.Equal(t, []da.Weight{60, 40}, bCtx.PerfectBalancePartWeights)
	require.Equal(t, 0.0, bCtx.Epsilon)
	require.Equal(t, []da.Weight{60, 40}, bCtx.MaxPartWeights)
}

func TestSetupRecursiveContextNarrowsBlockRange(t *testing.T) {
	ctx := NewContext(5, 0.03, KM1, RECURSIVE_BIPARTITIONING, 4)
	ctx.PerfectBalancePartWeights = []da.Weight{10, 11, 12, 13, 14}
	ctx.MaxPartWeights = []da.Weight{20, 21, 22, 23, 24}
	driver := newTestDriver(t)

	rbCtx := driver.setupRecursiveContext(ctx, 3, 5, 0.5)

	require.Equal(t, da.PartitionID(2), rbCtx.K)
	require.Equal(t, []da.Weight{13, 14}, rbCtx.PerfectBalancePartWeights)
	require.Equal(t, []da.Weight{23, 24}, rbCtx.MaxPartWeights)
	require.Equal(t, 0.5, rbCtx.DegreeOfParallelism)
}

type failingBisector struct{}

func (fb failingBisector) Partition(hg *da.Hypergraph, ctx *Context) (*da.PartitionedHypergraph, error) {
	return nil, util.WrapErrorf(nil, util.ErrInternalError, "bisection engine exploded")
}

func TestBisectorFailurePropagatesUnchanged(t *testing.T) {
	hg := chainHypergraph(10)
	ctx := NewContext(4, 0.03, KM1, RECURSIVE_BIPARTITIONING, 1)
	driver := NewRecursiveBipartitioner(failingBisector{}, zap.NewNop())

	_, err := driver.Partition(hg, ctx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "bisection engine exploded")
}

func TestPartitionRejectsInvalidContext(t *testing.T) {
	hg := chainHypergraph(10)
	driver := newTestDriver(t)

	_, err := driver.Partition(hg, NewContext(1, 0.03, KM1, RECURSIVE_BIPARTITIONING, 1))
	require.Error(t, err)

	_, err = driver.Partition(hg, NewContext(4, 1.5, KM1, RECURSIVE_BIPARTITIONING, 1))
	require.Error(t, err)

	_, err = driver.Partition(hg, NewContext(4, 0.03, UNDEFINED_OBJECTIVE, RECURSIVE_BIPARTITIONING, 1))
	require.Error(t, err)
}

func TestBFSBisectorBalancesAChain(t *testing.T) {
	hg := chainHypergraph(10)
	ctx := NewContext(2, 0.0, KM1, RECURSIVE_BIPARTITIONING, 1)
	ctx.SetupPartWeights(hg.TotalWeight())

	phg, err := NewBFSBisector(zap.NewNop()).Partition(hg, ctx)
	require.NoError(t, err)

	verifyPartition(t, phg)
	require.Equal(t, da.Weight(5), phg.PartWeight(0))
	require.Equal(t, da.Weight(5), phg.PartWeight(1))
}

func TestBFSBisectorHandlesDisconnectedHypergraph(t *testing.T) {
	// two disjoint chains of four nodes
	edges := [][]da.Index{{0, 1}, {1, 2}, {2, 3}, {4, 5}, {5, 6}, {6, 7}}
	hg := da.NewHypergraph(8, edges, nil, nil)
	ctx := NewContext(2, 0.0, KM1, RECURSIVE_BIPARTITIONING, 1)
	ctx.SetupPartWeights(hg.TotalWeight())

	phg, err := NewBFSBisector(zap.NewNop()).Partition(hg, ctx)
	require.NoError(t, err)

	verifyPartition(t, phg)
	require.Equal(t, da.Weight(4), phg.PartWeight(0))
	require.Equal(t, da.Weight(4), phg.PartWeight(1))
}
