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

// Package config parses and validates the svclust command line, the
// way elprep's cmd package does for its own subcommands: a flag.FlagSet
// per subcommand, built and parsed by hand rather than through a
// third-party CLI framework.
package config

import (
	"flag"
	"fmt"
	"strings"

	"github.com/hybridstat/svclust/internal"
	"github.com/hybridstat/svclust/similarity"
)

// Config is the fully resolved set of options for one svclust run,
// mirroring the Configuration table in spec.md §6.
type Config struct {
	SeqErrorRate float64
	MutationRate float64
	HzygousProb  float64

	NumThreads int

	Normalization similarity.Normalization

	Chromosomes []string

	InputPath string
	OutputDir string

	LogLevel internal.LogLevel
	LogFile  string // optional; when set, stderr is teed into this file

	BatchSize         int
	CoverageThreshold float64
	EMSweeps          int
	LegacyOverlapMode bool
}

// Defaults mirror spec.md §6 and the ambient expansion in SPEC_FULL.md §6.
func Defaults() Config {
	return Config{
		SeqErrorRate:      0.001,
		MutationRate:      0,
		HzygousProb:       0,
		NumThreads:        8,
		Normalization:     similarity.AddMin,
		InputPath:         "",
		OutputDir:         "./",
		LogLevel:          internal.Trace,
		BatchSize:         4,
		CoverageThreshold: 9,
		EMSweeps:          5,
		LegacyOverlapMode: false,
	}
}

// Parse parses args (typically os.Args[1:]) into a Config, applying
// defaults for anything not set on the command line. It does not
// validate; call Validate separately, matching elprep's separate
// parseFlags/checkXxx split in cmd/util.go.
func Parse(args []string) (Config, error) {
	cfg := Defaults()

	flags := flag.NewFlagSet("svclust cluster", flag.ContinueOnError)
	flags.Float64Var(&cfg.SeqErrorRate, "seq-error-rate", cfg.SeqErrorRate, "sequencing error rate (theta)")
	flags.Float64Var(&cfg.MutationRate, "mutation-rate", cfg.MutationRate, "prior mutation frequency (epsilon)")
	flags.Float64Var(&cfg.HzygousProb, "hzygous-prob", cfg.HzygousProb, "homozygous-germline misinclusion prior (h)")
	flags.IntVar(&cfg.NumThreads, "num-threads", cfg.NumThreads, "worker pool size")
	normalization := flags.String("normalization", cfg.Normalization.String(), "one of ADD_MIN, EXPONENTIATE, SCALE_MAX_1")
	chromosomes := flags.String("chromosomes", "", "comma-separated chromosome identifiers to process")
	flags.StringVar(&cfg.InputPath, "input-path", cfg.InputPath, "file or directory of pileup inputs")
	flags.StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "destination for similarity matrices and assignments")
	logLevel := flags.String("log-level", cfg.LogLevel.String(), "one of trace, debug, info, warn, error, critical, off")
	flags.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "optional file to tee stderr into, in addition to the terminal")
	flags.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "C4 flush batch size multiplier")
	flags.Float64Var(&cfg.CoverageThreshold, "coverage-threshold", cfg.CoverageThreshold, "minimum average branch coverage to recurse")
	flags.IntVar(&cfg.EMSweeps, "em-sweeps", cfg.EMSweeps, "number of EM refinement sweeps per recursion node")
	flags.BoolVar(&cfg.LegacyOverlapMode, "legacy-overlap-mode", cfg.LegacyOverlapMode, "keep the earlier base unconditionally on paired-end overlap disagreement")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	norm, ok := similarity.ParseNormalization(*normalization)
	if !ok {
		return Config{}, fmt.Errorf("config: invalid normalization %q", *normalization)
	}
	cfg.Normalization = norm

	level, ok := internal.ParseLogLevel(*logLevel)
	if !ok {
		return Config{}, fmt.Errorf("config: invalid log level %q", *logLevel)
	}
	cfg.LogLevel = level

	if *chromosomes != "" {
		cfg.Chromosomes = strings.Split(*chromosomes, ",")
	}

	return cfg, nil
}

// Validate rejects configurations that cannot be run, per spec.md §7:
// an invalid normalization or a missing input_path before any
// computation begins. (Parse already rejects an invalid normalization
// or log level string; Validate re-checks the ones that can also be set
// through Config literals directly, e.g. by a caller embedding this
// package.)
func Validate(cfg Config) error {
	if err := checkExists("input_path", cfg.InputPath); err != nil {
		return err
	}
	if err := checkCreatable("output_dir", cfg.OutputDir); err != nil {
		return err
	}
	switch cfg.Normalization {
	case similarity.AddMin, similarity.Exponentiate, similarity.ScaleMax1:
	default:
		return fmt.Errorf("config: invalid normalization %v", cfg.Normalization)
	}
	if cfg.SeqErrorRate <= 0 || cfg.SeqErrorRate >= 1 {
		return fmt.Errorf("config: seq_error_rate must be in (0,1), got %v", cfg.SeqErrorRate)
	}
	if cfg.MutationRate < 0 || cfg.MutationRate >= 1 {
		return fmt.Errorf("config: mutation_rate must be in [0,1), got %v", cfg.MutationRate)
	}
	if cfg.HzygousProb < 0 || cfg.HzygousProb >= 1 {
		return fmt.Errorf("config: hzygous_prob must be in [0,1), got %v", cfg.HzygousProb)
	}
	if cfg.NumThreads < 1 {
		return fmt.Errorf("config: num_threads must be >= 1, got %v", cfg.NumThreads)
	}
	if cfg.BatchSize < 1 {
		return fmt.Errorf("config: batch_size must be >= 1, got %v", cfg.BatchSize)
	}
	if cfg.EMSweeps < 1 {
		return fmt.Errorf("config: em_sweeps must be >= 1, got %v", cfg.EMSweeps)
	}
	return nil
}
