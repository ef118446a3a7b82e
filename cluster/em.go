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

package cluster

import (
	"math"

	"github.com/hybridstat/svclust/pileup"
)

// Refiner is the EM refinement collaborator named by C6 step 3: given
// the current branch's pileup and a soft assignment vector c (one
// entry per cell, c[i] close to 0 meaning cell i belongs to branch A,
// close to 1 meaning branch B), it mutates c in place towards a
// sharper assignment.
type Refiner interface {
	Refine(chromosomes [][]pileup.PosData, idx *CellIndex, theta float64, c []float64) error
}

// GenotypeEMRefiner is the default Refiner: each sweep computes, per
// retained position, a weighted-consensus base for each branch (the
// M-step), then recomputes every cell's log-likelihood ratio of
// belonging to branch B vs branch A from its observed bases against
// those two consensus bases under the same per-base error model as C2
// (the E-step), and squashes the accumulated ratio back into [0,1]
// through a logistic (the M-step's re-normalization).
//
// This mirrors the per-read reference-vs-alternative log-likelihood
// accumulation in elprep's calculateGenotypeLikelihoodsOfRefVsAny,
// applied across branch consensus instead of a single reference base.
type GenotypeEMRefiner struct {
	Sweeps int
}

// NewGenotypeEMRefiner returns a refiner running the given number of
// E/M sweeps (spec.md's expansion default is 5).
func NewGenotypeEMRefiner(sweeps int) *GenotypeEMRefiner {
	if sweeps < 1 {
		sweeps = 1
	}
	return &GenotypeEMRefiner{Sweeps: sweeps}
}

func (r *GenotypeEMRefiner) Refine(chromosomes [][]pileup.PosData, idx *CellIndex, theta float64, c []float64) error {
	logP := func(observed, consensus byte) float64 {
		if observed == consensus {
			return math.Log(1 - theta)
		}
		return math.Log(theta / 3)
	}

	for sweep := 0; sweep < r.Sweeps; sweep++ {
		llr := make([]float64, len(c))

		for _, chrom := range chromosomes {
			for _, pd := range chrom {
				var countsA, countsB [4]float64
				for _, obs := range pd.Cells {
					pos := idx.CellIDToPos[obs.CellID]
					if pos < 0 {
						continue
					}
					weightB := c[pos]
					weightA := 1 - weightB
					countsA[obs.Base] += weightA
					countsB[obs.Base] += weightB
				}
				consensusA := argmax4(countsA)
				consensusB := argmax4(countsB)

				for _, obs := range pd.Cells {
					pos := idx.CellIDToPos[obs.CellID]
					if pos < 0 {
						continue
					}
					llr[pos] += logP(obs.Base, consensusB) - logP(obs.Base, consensusA)
				}
			}
		}

		for i, v := range llr {
			c[i] = 1 / (1 + math.Exp(-v))
		}
	}
	return nil
}

// argmax4 returns the index of the largest entry, breaking ties towards
// the lowest index.
func argmax4(counts [4]float64) byte {
	best := byte(0)
	for i := byte(1); i < 4; i++ {
		if counts[i] > counts[best] {
			best = i
		}
	}
	return best
}
