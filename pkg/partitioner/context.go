package partitioner

import (
	"math"

	da "github.com/lintang-b-s/hyperflow/pkg/datastructure"
	"github.com/lintang-b-s/hyperflow/pkg/util"
)

type Mode uint8

const (
	RECURSIVE_BIPARTITIONING Mode = iota
	DIRECT
	DEEP_MULTILEVEL
	UNDEFINED_MODE
)

func (m Mode) String() string {
	switch m {
	case RECURSIVE_BIPARTITIONING:
		return "recursive_bipartitioning"
	case DIRECT:
		return "direct_kway"
	case DEEP_MULTILEVEL:
		return "deep_multilevel"
	}
	return "UNDEFINED"
}

// ModeFromString accepts the CLI mode names. Unknown strings fail loudly
// with the UNDEFINED sentinel and an error.
func ModeFromString(mode string) (Mode, error) {
	switch mode {
	case "rb":
		return RECURSIVE_BIPARTITIONING, nil
	case "direct":
		return DIRECT, nil
	case "deep":
		return DEEP_MULTILEVEL, nil
	}
	return UNDEFINED_MODE, util.WrapErrorf(nil, util.ErrIllegalOption, "illegal option: %s", mode)
}

type Objective uint8

const (
	CUT Objective = iota
	KM1
	SOED
	PROCESS_MAPPING
	UNDEFINED_OBJECTIVE
)

func (o Objective) String() string {
	switch o {
	case CUT:
		return "cut"
	case KM1:
		return "km1"
	case SOED:
		return "soed"
	case PROCESS_MAPPING:
		return "process_mapping"
	}
	return "UNDEFINED"
}

func ObjectiveFromString(obj string) (Objective, error) {
	switch obj {
	case "cut":
		return CUT, nil
	case "km1":
		return KM1, nil
	case "soed":
		return SOED, nil
	case "process_mapping":
		return PROCESS_MAPPING, nil
	}
	return UNDEFINED_OBJECTIVE, util.WrapErrorf(nil, util.ErrIllegalOption, "no valid objective function: %s", obj)
}

type ContextType uint8

const (
	MAIN ContextType = iota
	INITIAL_PARTITIONING
)

func (t ContextType) String() string {
	if t == MAIN {
		return "main"
	}
	return "ip"
}

// Context is the passive configuration record handed through the
// partitioning phases. The refinement sub-parameters of the external
// engines are owned by those collaborators and do not appear here.
type Context struct {
	K                         da.PartitionID
	Epsilon                   float64
	Objective                 Objective
	Mode                      Mode
	Type                      ContextType
	NumThreads                int
	DegreeOfParallelism       float64
	PerfectBalancePartWeights []da.Weight
	MaxPartWeights            []da.Weight
	UseIndividualPartWeights  bool
	StableConstruction        bool
}

func NewContext(k da.PartitionID, epsilon float64, objective Objective, mode Mode,
	numThreads int) *Context {
	return &Context{
		K:                   k,
		Epsilon:             epsilon,
		Objective:           objective,
		Mode:                mode,
		Type:                MAIN,
		NumThreads:          numThreads,
		DegreeOfParallelism: 1.0,
	}
}

func (ctx *Context) Clone() *Context {
	clone := *ctx
	clone.PerfectBalancePartWeights = append([]da.Weight(nil), ctx.PerfectBalancePartWeights...)
	clone.MaxPartWeights = append([]da.Weight(nil), ctx.MaxPartWeights...)
	return &clone
}

// SetupPartWeights derives the uniform block weight targets from k and
// epsilon. A no-op when the caller provided individual part weights.
func (ctx *Context) SetupPartWeights(totalWeight da.Weight) {
	if ctx.UseIndividualPartWeights {
		return
	}
	perfect := da.Weight(math.Ceil(float64(totalWeight) / float64(ctx.K)))
	maxWeight := da.Weight((1.0 + ctx.Epsilon) * float64(perfect))
	ctx.PerfectBalancePartWeights = make([]da.Weight, ctx.K)
	ctx.MaxPartWeights = make([]da.Weight, ctx.K)
	for b := range ctx.PerfectBalancePartWeights {
		ctx.PerfectBalancePartWeights[b] = perfect
		ctx.MaxPartWeights[b] = maxWeight
	}
}

func (ctx *Context) Validate() error {
	if ctx.K < 2 {
		return util.WrapErrorf(nil, util.ErrBadParamInput, "k must be at least 2, got %d", ctx.K)
	}
	if ctx.Epsilon < 0 || ctx.Epsilon >= 1 {
		return util.WrapErrorf(nil, util.ErrBadParamInput, "epsilon must be in [0, 1), got %f", ctx.Epsilon)
	}
	if ctx.Mode == UNDEFINED_MODE {
		return util.WrapErrorf(nil, util.ErrBadParamInput, "partitioning mode is undefined")
	}
	if ctx.Objective == UNDEFINED_OBJECTIVE {
		return util.WrapErrorf(nil, util.ErrBadParamInput, "objective function is undefined")
	}
	if ctx.UseIndividualPartWeights &&
		(len(ctx.MaxPartWeights) != int(ctx.K) ||
			len(ctx.PerfectBalancePartWeights) != int(ctx.K)) {
		return util.WrapErrorf(nil, util.ErrBadParamInput,
			"individual part weights require %d max and perfect entries, got %d and %d",
			ctx.K, len(ctx.MaxPartWeights), len(ctx.PerfectBalancePartWeights))
	}
	return nil
}
