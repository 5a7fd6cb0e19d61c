package partitioner

import (
	"math"

	da "github.com/lintang-b-s/hyperflow/pkg/datastructure"
	"github.com/lintang-b-s/hyperflow/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

/*
RecursiveBipartitioner produces a k-way partition by repeated multilevel
bisection. Every level asks the external multilevel collaborator for a
bisection of the current (sub-)hypergraph, applies the two blocks to the
parent partitioned hypergraph, then extracts both blocks and recurses on
them in parallel until every subtree is responsible for exactly one block.
The balance tolerance of each bisection is widened adaptively so that the
leaf-level blocks still meet the caller's original epsilon after all
halvings of k (see computeAdaptiveEpsilon).
*/
type RecursiveBipartitioner struct {
	bisector Bisector
	logger   *zap.Logger
}

func NewRecursiveBipartitioner(bisector Bisector, logger *zap.Logger) *RecursiveBipartitioner {
	return &RecursiveBipartitioner{
		bisector: bisector,
		logger:   logger,
	}
}

// originalHypergraphInfo carries the parameters of the root problem down
// the recursion; the adaptive epsilon is always computed against these.
type originalHypergraphInfo struct {
	originalWeight  da.Weight
	originalK       da.PartitionID
	originalEpsilon float64
}

// computeAdaptiveEpsilon widens the balance tolerance of a sub-problem with
// current total weight and block count so that compounding the per-level
// tolerance over ceil(log2 k) bisection levels still lands inside the
// original epsilon.
func (info originalHypergraphInfo) computeAdaptiveEpsilon(currentWeight da.Weight,
	currentK da.PartitionID) float64 {
	if currentWeight == 0 {
		return 0.0
	}
	base := math.Ceil(float64(info.originalWeight)/float64(info.originalK)) /
		math.Ceil(float64(currentWeight)/float64(currentK)) *
		(1.0 + info.originalEpsilon)
	adaptiveEpsilon := math.Pow(base, 1.0/math.Ceil(math.Log2(float64(currentK)))) - 1.0
	return math.Min(0.99, math.Max(adaptiveEpsilon, 0.0))
}

// Partition partitions hg into ctx.K blocks and returns a fresh
// partitioned hypergraph.
func (rb *RecursiveBipartitioner) Partition(hg *da.Hypergraph, ctx *Context) (*da.PartitionedHypergraph, error) {
	phg := da.NewPartitionedHypergraph(ctx.K, hg)
	phg.SetParallelism(ctx.NumThreads)
	if err := rb.PartitionInto(phg, ctx); err != nil {
		return nil, err
	}
	return phg, nil
}

// PartitionInto partitions in place. phg must be freshly created: every
// node unassigned, k equal to ctx.K.
func (rb *RecursiveBipartitioner) PartitionInto(phg *da.PartitionedHypergraph, ctx *Context) error {
	if err := ctx.Validate(); err != nil {
		return err
	}
	util.AssertPanic(phg.K() == ctx.K, "partitioned hypergraph has wrong number of blocks")
	if len(ctx.MaxPartWeights) != int(ctx.K) {
		ctx.SetupPartWeights(phg.TotalWeight())
	}

	info := originalHypergraphInfo{
		originalWeight:  phg.TotalWeight(),
		originalK:       ctx.K,
		originalEpsilon: ctx.Epsilon,
	}
	return rb.recurse(phg, ctx, info)
}

// recurse produces ctx.K blocks in phg, labeled 0..ctx.K-1.
func (rb *RecursiveBipartitioner) recurse(phg *da.PartitionedHypergraph, ctx *Context,
	info originalHypergraphInfo) error {
	util.AssertPanic(ctx.K >= 2, "recursion on fewer than two blocks")

	bCtx := rb.setupBisectionContext(phg.Hypergraph(), ctx, info)
	rb.logger.Debug("multilevel bisection",
		zap.Int32("k", int32(ctx.K)),
		zap.Float64("epsilon", bCtx.Epsilon))

	bipartitionedHG, err := rb.bisector.Partition(phg.Hypergraph(), bCtx)
	if err != nil {
		return err
	}

	k := ctx.K
	block0 := da.PartitionID(0)
	block1 := k/2 + k%2
	phg.DoParallelForAllNodes(func(v da.Index) {
		partID := bipartitionedHG.PartID(v)
		util.AssertPanic(partID == 0 || partID == 1, "bisector left a node unassigned")
		if partID == 0 {
			phg.SetOnlyNodePart(v, block0)
		} else {
			phg.SetOnlyNodePart(v, block1)
		}
	})
	phg.InitializePartition()

	rbK0 := k/2 + k%2
	rbK1 := k / 2
	if rbK0 >= 2 && rbK1 >= 2 {
		// both blocks need further subdivision, fork the recursions
		g := errgroup.Group{}
		g.Go(func() error {
			return rb.recurseBlock(phg, ctx, block0, 0, rbK0, info, 0.5)
		})
		g.Go(func() error {
			return rb.recurseBlock(phg, ctx, block1, rbK0, rbK0+rbK1, info, 0.5)
		})
		return g.Wait()
	} else if rbK0 >= 2 {
		return rb.recurseBlock(phg, ctx, block0, 0, rbK0, info, 1.0)
	}
	return nil
}

// recurseBlock extracts one block of the bisection and recursively
// partitions it into k1-k0 blocks, which are copied back into phg with the
// block offset applied.
func (rb *RecursiveBipartitioner) recurseBlock(phg *da.PartitionedHypergraph, ctx *Context,
	block da.PartitionID, k0, k1 da.PartitionID,
	info originalHypergraphInfo, degreeOfParallelism float64) error {
	rbCtx := rb.setupRecursiveContext(ctx, k0, k1, degreeOfParallelism)

	cutNetSplitting := ctx.Objective == KM1
	subHG, mapping := phg.Extract(block, cutNetSplitting, ctx.StableConstruction)
	if subHG.NumberOfNodes() == 0 {
		return nil
	}

	subPHG := da.NewPartitionedHypergraph(rbCtx.K, subHG)
	subPHG.SetParallelism(rbCtx.NumThreads)
	if err := rb.recurse(subPHG, rbCtx, info); err != nil {
		return err
	}

	phg.DoParallelForAllNodes(func(v da.Index) {
		if phg.PartID(v) == block {
			to := block + subPHG.PartID(mapping[v])
			util.AssertPanic(to >= 0 && to < phg.K(), "sub-partition block out of range")
			if to != block {
				phg.ChangeNodePart(v, block, to)
			}
		}
	})
	return nil
}

// setupBisectionContext derives the two-block context handed to the
// multilevel collaborator, including the adaptive balance constraint.
func (rb *RecursiveBipartitioner) setupBisectionContext(hg *da.Hypergraph, ctx *Context,
	info originalHypergraphInfo) *Context {
	bCtx := ctx.Clone()
	bCtx.K = 2
	if ctx.Mode == DIRECT {
		bCtx.Type = INITIAL_PARTITIONING
	}

	totalWeight := hg.TotalWeight()
	k := ctx.K
	k0 := k/2 + k%2
	k1 := k / 2

	if ctx.UseIndividualPartWeights {
		maxPartWeightsSum := da.Weight(0)
		for _, w := range ctx.MaxPartWeights {
			maxPartWeightsSum += w
		}
		weightFraction := float64(totalWeight) / float64(maxPartWeightsSum)
		perfectWeight0 := da.Weight(0)
		for i := da.PartitionID(0); i < k0; i++ {
			perfectWeight0 += da.Weight(math.Ceil(weightFraction * float64(ctx.MaxPartWeights[i])))
		}
		perfectWeight1 := da.Weight(0)
		for i := k0; i < k; i++ {
			perfectWeight1 += da.Weight(math.Ceil(weightFraction * float64(ctx.MaxPartWeights[i])))
		}
		// The uniform adaptive-epsilon formula assumes equal part weights.
		// ceil(weight/k) is the perfect part weight, so the equivalent form
		// uses the sum of the perfect part weights against the sum of the
		// maximum part weights. The perfect sum can differ from the total
		// weight by rounding, hence it is used instead of totalWeight.
		if totalWeight == 0 {
			bCtx.Epsilon = 0
		} else {
			base := float64(maxPartWeightsSum) / float64(perfectWeight0+perfectWeight1)
			bCtx.Epsilon = math.Min(0.99, math.Max(math.Pow(base,
				1.0/math.Ceil(math.Log2(float64(k))))-1.0, 0.0))
		}
		bCtx.PerfectBalancePartWeights = []da.Weight{perfectWeight0, perfectWeight1}
		bCtx.MaxPartWeights = []da.Weight{
			da.Weight(math.Round((1.0 + bCtx.Epsilon) * float64(perfectWeight0))),
			da.Weight(math.Round((1.0 + bCtx.Epsilon) * float64(perfectWeight1))),
		}
	} else {
		bCtx.Epsilon = info.computeAdaptiveEpsilon(totalWeight, k)
		perfectWeight0 := da.Weight(math.Ceil(float64(k0) / float64(k) * float64(totalWeight)))
		perfectWeight1 := da.Weight(math.Ceil(float64(k1) / float64(k) * float64(totalWeight)))
		bCtx.PerfectBalancePartWeights = []da.Weight{perfectWeight0, perfectWeight1}
		bCtx.MaxPartWeights = []da.Weight{
			da.Weight((1.0 + bCtx.Epsilon) * float64(perfectWeight0)),
			da.Weight((1.0 + bCtx.Epsilon) * float64(perfectWeight1)),
		}
	}
	return bCtx
}

// setupRecursiveContext narrows the parent context to the block range
// [k0, k1) of one recursion branch.
func (rb *RecursiveBipartitioner) setupRecursiveContext(ctx *Context,
	k0, k1 da.PartitionID, degreeOfParallelism float64) *Context {
	util.AssertPanic(k1-k0 >= 2, "recursive context needs at least two blocks")
	rbCtx := ctx.Clone()
	rbCtx.K = k1 - k0
	if ctx.Mode == DIRECT {
		rbCtx.Type = INITIAL_PARTITIONING
	}

	rbCtx.PerfectBalancePartWeights = make([]da.Weight, rbCtx.K)
	rbCtx.MaxPartWeights = make([]da.Weight, rbCtx.K)
	for partID := k0; partID < k1; partID++ {
		rbCtx.PerfectBalancePartWeights[partID-k0] = ctx.PerfectBalancePartWeights[partID]
		rbCtx.MaxPartWeights[partID-k0] = ctx.MaxPartWeights[partID]
	}

	rbCtx.DegreeOfParallelism *= degreeOfParallelism
	return rbCtx
}
