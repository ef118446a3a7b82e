// svclust: single-cell genotype clustering from pileup data.
// Copyright (c) 2024 svclust contributors.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/hybridstat/svclust/blob/master/LICENSE.txt>.

// Package cmd wires the config, pileup, similarity, cluster and matio
// packages into the svclust "cluster" subcommand, the way elprep's cmd
// package wires its own subcommands together.
package cmd

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/google/uuid"
	"github.com/willf/bitset"

	"github.com/hybridstat/svclust/cluster"
	"github.com/hybridstat/svclust/config"
	"github.com/hybridstat/svclust/internal"
	"github.com/hybridstat/svclust/matio"
	"github.com/hybridstat/svclust/pileup"
	"github.com/hybridstat/svclust/similarity"
)

// ClusterHelp is printed when the cluster subcommand is invoked without
// enough information to proceed.
const ClusterHelp = "Usage: svclust cluster [options]\n" +
	"[--input-path path] [--output-dir dir]\n" +
	"[--seq-error-rate f] [--mutation-rate f] [--hzygous-prob f]\n" +
	"[--num-threads n] [--normalization ADD_MIN|EXPONENTIATE|SCALE_MAX_1]\n" +
	"[--chromosomes c1,c2,...] [--log-level level]\n"

// Cluster runs the full pileup-to-clustering pipeline: parse and
// validate the configuration, read the pileup input, run the recursive
// bipartitioner, and write one matrix per retained recursion node, plus
// an assignment file for each node that was split.
func Cluster(args []string) error {
	cfg, err := config.Parse(args)
	if err != nil {
		fmt.Fprint(os.Stderr, ClusterHelp)
		return err
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprint(os.Stderr, ClusterHelp)
		return err
	}
	runtime.GOMAXPROCS(cfg.NumThreads)

	logDest := io.Writer(os.Stderr)
	if cfg.LogFile != "" {
		tee, _, err := internal.SetupStderrTee(cfg.LogFile)
		if err != nil {
			return err
		}
		logDest = tee
	}

	runID := uuid.New()
	logger := internal.NewLogger(logDest, cfg.LogLevel)
	fullInputPath, err := internal.FullPathname(cfg.InputPath)
	if err != nil {
		return fmt.Errorf("cmd: resolving input path %s: %w", cfg.InputPath, err)
	}
	logger.Infof("run %s: starting svclust cluster on %s", runID, fullInputPath)

	result, err := pileup.Read(cfg.InputPath, cfg.NumThreads)
	if err != nil {
		return err
	}
	chromosomes := filterChromosomes(result.Chromosomes, cfg.Chromosomes)
	if len(chromosomes) == 0 {
		return fmt.Errorf("cmd: no chromosomes left to process after filtering by --chromosomes")
	}

	maxCellID := pileup.MaxCellID(chromosomes)
	if maxCellID < 0 {
		return fmt.Errorf("cmd: no cell observations found in %s", cfg.InputPath)
	}
	seen := bitset.New(uint(maxCellID + 1))
	for _, chrom := range chromosomes {
		for _, pd := range chrom.Data {
			for _, obs := range pd.Cells {
				seen.Set(uint(obs.CellID))
			}
		}
	}
	var cellIDs []uint32
	for i, e := seen.NextSet(0); e; i, e = seen.NextSet(i + 1) {
		cellIDs = append(cellIDs, uint32(i))
	}
	rootIndex := cluster.NewCellIndex(maxCellID, cellIDs)

	logger.Infof("run %s: %d cells, %d chromosomes, max fragment length %d", runID, len(cellIDs), len(chromosomes), result.MaxReadLength)

	engine := similarity.NewEngine(cfg.SeqErrorRate, cfg.MutationRate, cfg.HzygousProb, result.MaxReadLength, int32(cfg.BatchSize), cfg.LegacyOverlapMode, true, cfg.NumThreads)

	params := &cluster.Params{
		Engine:            engine,
		Partitioner:       cluster.NewGonumSpectralPartitioner(),
		Refiner:           cluster.NewGenotypeEMRefiner(cfg.EMSweeps),
		Normalization:     cfg.Normalization,
		CoverageThreshold: cfg.CoverageThreshold,
		MaxReadLength:     result.MaxReadLength,
		Logger:            logger.StdLogger(internal.Info),
	}

	var nodes []*cluster.Node
	if err := cluster.Divide(params, chromosomes, rootIndex, "", &nodes); err != nil {
		return err
	}

	for _, node := range nodes {
		if err := matio.WriteMatrix(cfg.OutputDir, node.Label, node.Matrix); err != nil {
			return err
		}
		if node.Assignment != nil {
			if err := matio.WriteAssignment(cfg.OutputDir, node.Label, []float64(node.Assignment)); err != nil {
				return err
			}
		}
	}

	logger.Infof("run %s: wrote %d recursion node(s) to %s", runID, len(nodes), cfg.OutputDir)
	return nil
}

func filterChromosomes(chromosomes []pileup.Chromosome, wanted []string) []pileup.Chromosome {
	if len(wanted) == 0 {
		return chromosomes
	}
	allowed := make(map[string]bool, len(wanted))
	for _, name := range wanted {
		allowed[name] = true
	}
	var out []pileup.Chromosome
	for _, c := range chromosomes {
		if allowed[c.Name] {
			out = append(out, c)
		}
	}
	return out
}
