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
	"log"

	"github.com/hybridstat/svclust/pileup"
	"github.com/hybridstat/svclust/similarity"
)

// Node is one node of the recursion tree produced by Divide: a branch's
// pileup, its cell index, the label it was reached under, and the
// normalized similarity matrix and assignment computed for it.
type Node struct {
	Label      string
	Chromosomes []pileup.Chromosome
	Index      *CellIndex
	Matrix     *similarity.SimilarityMatrix
	Assignment Assignment
}

// Params bundles the run-wide settings Divide needs that do not change
// across recursion levels.
type Params struct {
	Engine             *similarity.Engine
	Partitioner        SpectralPartitioner
	Refiner            Refiner
	Normalization      similarity.Normalization
	CoverageThreshold  float64
	MaxReadLength      int32
	Logger             *log.Logger
}

// Divide implements C6: compute a similarity matrix for the given
// branch, ask the spectral collaborator for a split, refine it with EM,
// partition cells into branch A (c<0.05) and branch B (c>0.95), rebuild
// each branch's significant pileup, and recurse while average coverage
// exceeds the threshold. Every retained node is appended to out, in the
// order it was visited.
func Divide(p *Params, chromosomes []pileup.Chromosome, idx *CellIndex, label string, out *[]*Node) error {
	if idx.Len() == 0 {
		return nil
	}
	if label != "" {
		p.Logger.Printf("clustering sub-cluster %s with %d cells", label, idx.Len())
	}

	matrix, err := p.Engine.ComputeMatrix(chromosomes, idx, p.MaxReadLength, p.Normalization)
	if err != nil {
		return err
	}

	assignment, done, err := p.Partitioner.Partition(matrix)
	if err != nil {
		return err
	}

	node := &Node{Label: label, Chromosomes: chromosomes, Index: idx, Matrix: matrix}
	*out = append(*out, node)
	if done {
		return nil
	}

	chromData := make([][]pileup.PosData, len(chromosomes))
	for i, c := range chromosomes {
		chromData[i] = c.Data
	}
	if err := p.Refiner.Refine(chromData, idx, p.Engine.Theta, assignment); err != nil {
		return err
	}
	node.Assignment = Assignment(assignment)

	var cellsA, cellsB []uint32
	for pos, c := range assignment {
		id := idx.PosToCellID[pos]
		switch {
		case c < 0.05:
			cellsA = append(cellsA, id)
		case c > 0.95:
			cellsB = append(cellsB, id)
		}
	}
	if len(cellsA) == 0 && len(cellsB) == 0 {
		return nil
	}

	maxCellID := int64(len(idx.CellIDToPos) - 1)
	idxA := NewCellIndex(maxCellID, cellsA)
	idxB := NewCellIndex(maxCellID, cellsB)

	chromsA := make([]pileup.Chromosome, len(chromosomes))
	chromsB := make([]pileup.Chromosome, len(chromosomes))
	var totalCoverageA, totalCoverageB int
	var totalPositionsA, totalPositionsB int

	for ci, chrom := range chromosomes {
		chromsA[ci].Name = chrom.Name
		chromsB[ci].Name = chrom.Name
		for _, pd := range chrom.Data {
			var cellsDataA, cellsDataB []pileup.CellObservation
			for _, obs := range pd.Cells {
				if idxA.CellIDToPos[obs.CellID] >= 0 {
					cellsDataA = append(cellsDataA, obs)
				} else if idxB.CellIDToPos[obs.CellID] >= 0 {
					cellsDataB = append(cellsDataB, obs)
				}
			}
			if retain, coverage := pileup.IsSignificant(pileup.PosData{Position: pd.Position, Cells: cellsDataA}, p.Engine.Theta); retain {
				chromsA[ci].Data = append(chromsA[ci].Data, pileup.PosData{Position: pd.Position, Cells: cellsDataA})
				totalCoverageA += coverage
				totalPositionsA++
			}
			if retain, coverage := pileup.IsSignificant(pileup.PosData{Position: pd.Position, Cells: cellsDataB}, p.Engine.Theta); retain {
				chromsB[ci].Data = append(chromsB[ci].Data, pileup.PosData{Position: pd.Position, Cells: cellsDataB})
				totalCoverageB += coverage
				totalPositionsB++
			}
		}
	}

	coverageA := averageCoverage(totalCoverageA, totalPositionsA)
	coverageB := averageCoverage(totalCoverageB, totalPositionsB)
	p.Logger.Printf("avg coverage for cluster %sA: %.3f (%d positions)", label, coverageA, totalPositionsA)
	p.Logger.Printf("avg coverage for cluster %sB: %.3f (%d positions)", label, coverageB, totalPositionsB)

	if coverageA > p.CoverageThreshold {
		if err := Divide(p, chromsA, idxA, label+"A", out); err != nil {
			return err
		}
	}
	if coverageB > p.CoverageThreshold {
		if err := Divide(p, chromsB, idxB, label+"B", out); err != nil {
			return err
		}
	}
	return nil
}

func averageCoverage(total, positions int) float64 {
	if positions == 0 {
		return 0
	}
	return float64(total) / float64(positions)
}
