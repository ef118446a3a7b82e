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

package similarity

import (
	"github.com/hybridstat/svclust/pileup"
)

// Engine ties C1-C5 together: it owns the run-wide probability cache
// and memoized likelihood tables, and exposes ComputeMatrix as the
// single entry point a recursion node (C6) calls to get a normalized
// similarity matrix. Each ComputeMatrix call builds its own streaming
// assembler and pair of raw score matrices.
type Engine struct {
	Cache  *Cache
	Tables *LikelihoodTables

	Theta   float64
	Threads int
	Sort    bool
	Batch   int32
	Legacy  bool
}

// NewEngine builds the shared, run-wide C1/C2 state. maxLen is L, the
// maximum retained fragment length across the whole input. threads is
// the configured worker pool size (config.Config.NumThreads); it sizes
// the pargo grain passed to Accumulate on every flush, the same way a
// caller's --num-threads/--nr-of-threads flag is meant to.
func NewEngine(theta, epsilon, h float64, maxLen int32, batch int32, legacy, sortUpdates bool, threads int) *Engine {
	cache := NewCache(theta, epsilon, h, maxLen)
	return &Engine{
		Cache:   cache,
		Tables:  NewLikelihoodTables(cache),
		Theta:   theta,
		Threads: threads,
		Sort:    sortUpdates,
		Batch:   batch,
		Legacy:  legacy,
	}
}

// ComputeMatrix runs C3+C4+C5 over the given chromosomes, restricted to
// the cells named by idx, and returns the normalized similarity matrix.
func (e *Engine) ComputeMatrix(chromosomes []pileup.Chromosome, idx *CellIndex, maxLen int32, mode Normalization) (*SimilarityMatrix, error) {
	n := idx.Len()
	same := NewScoreMatrix(n)
	diff := NewScoreMatrix(n)

	var flushErr error
	flush := func(reads []*read, allKeys []uint32, allReads map[uint32]*read) {
		if flushErr != nil {
			return
		}
		grain := 0
		if e.Threads > 0 && len(reads) > e.Threads {
			grain = len(reads) / e.Threads
		}
		if err := Accumulate(reads, allKeys, allReads, idx, e.Tables, same, diff, grain, e.Sort); err != nil {
			flushErr = err
		}
	}

	asm := NewAssembler(maxLen, e.Batch, e.Legacy, flush)

	for _, chrom := range chromosomes {
		for _, pd := range chrom.Data {
			if flushErr != nil {
				return nil, flushErr
			}
			asm.Advance(pd.Position)
			if flushErr != nil {
				return nil, flushErr
			}
			for _, obs := range pd.Cells {
				if idx.CellIDToPos[obs.CellID] < 0 {
					continue
				}
				asm.Observe(pd.Position, obs)
			}
		}
		asm.FlushChromosome()
		if flushErr != nil {
			return nil, flushErr
		}
	}

	return Normalize(same, diff, mode), nil
}
