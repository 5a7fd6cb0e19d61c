package main

import (
	"flag"

	da "github.com/lintang-b-s/hyperflow/pkg/datastructure"
	"github.com/lintang-b-s/hyperflow/pkg/logger"
	"github.com/lintang-b-s/hyperflow/pkg/metrics"
	"github.com/lintang-b-s/hyperflow/pkg/partitioner"
	"github.com/lintang-b-s/hyperflow/pkg/processmapping"
	"github.com/lintang-b-s/hyperflow/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	hypergraphFile   = flag.String("hypergraph", "./data/hypergraph.hgr", "input hypergraph in hMetis format")
	partitionFile    = flag.String("output", "./data/hypergraph.part.bz2", "output partition file")
	processGraphFile = flag.String("process_graph", "", "target topology file for the process_mapping objective")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}

	if err := util.ReadConfig(); err != nil {
		logger.Warn("no config file found, using defaults", zap.Error(err))
	}

	viper.SetDefault("K", 2)
	viper.SetDefault("EPSILON", 0.03)
	viper.SetDefault("OBJECTIVE", "km1")
	viper.SetDefault("MODE", "rb")
	viper.SetDefault("THREADS", 0)
	viper.SetDefault("MAX_STEINER_CONNECTIVITY", 4)

	objective, err := partitioner.ObjectiveFromString(viper.GetString("OBJECTIVE"))
	if err != nil {
		panic(err)
	}
	mode, err := partitioner.ModeFromString(viper.GetString("MODE"))
	if err != nil {
		panic(err)
	}

	hg, err := da.ReadHMetisFile(*hypergraphFile)
	if err != nil {
		panic(err)
	}
	logger.Info("hypergraph loaded",
		zap.Int("nodes", hg.NumberOfNodes()),
		zap.Int("hyperedges", hg.NumberOfHyperedges()),
		zap.Int64("total_weight", int64(hg.TotalWeight())))

	ctx := partitioner.NewContext(
		da.PartitionID(viper.GetInt32("K")),
		viper.GetFloat64("EPSILON"),
		objective, mode,
		viper.GetInt("THREADS"),
	)

	var processGraph *processmapping.ProcessGraph
	if ctx.Objective == partitioner.PROCESS_MAPPING {
		processGraph, err = processmapping.ReadProcessGraphFile(*processGraphFile)
		if err != nil {
			panic(err)
		}
		processGraph.PrecomputeDistances(viper.GetInt("MAX_STEINER_CONNECTIVITY"))
	}

	bisector := partitioner.NewBFSBisector(logger)
	phg, err := partitioner.PartitionHypergraph(hg, ctx, bisector, logger)
	if err != nil {
		panic(err)
	}

	logger.Info("partitioning finished",
		zap.Int32("k", int32(ctx.K)),
		zap.Int64("objective", int64(metrics.Objective(phg, ctx.Objective, processGraph))),
		zap.Float64("imbalance", metrics.Imbalance(phg, ctx)))

	if err := phg.WritePartitionFile(*partitionFile); err != nil {
		panic(err)
	}
}
