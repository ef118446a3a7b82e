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
	"testing"

	"github.com/hybridstat/svclust/pileup"
)

func twoCellTwoPositionChromosome() []pileup.Chromosome {
	return []pileup.Chromosome{{
		Name: "1",
		Data: []pileup.PosData{
			{Position: 100, Cells: []pileup.CellObservation{
				{CellID: 0, Base: pileup.A, ReadID: 1},
				{CellID: 1, Base: pileup.A, ReadID: 2},
			}},
			{Position: 101, Cells: []pileup.CellObservation{
				{CellID: 0, Base: pileup.A, ReadID: 1},
				{CellID: 1, Base: pileup.A, ReadID: 2},
			}},
		},
	}}
}

func TestComputeMatrixProducesSymmetricNormalizedOutput(t *testing.T) {
	idx := NewCellIndex(1, []uint32{0, 1})
	engine := NewEngine(0.01, 0, 0, 10, 4, false, true, 0)

	m, err := engine.ComputeMatrix(twoCellTwoPositionChromosome(), idx, 10, AddMin)
	if err != nil {
		t.Fatalf("ComputeMatrix: %v", err)
	}
	if m.N != 2 {
		t.Fatalf("m.N = %d, want 2", m.N)
	}
	if m.At(0, 1) != m.At(1, 0) {
		t.Errorf("similarity matrix should be symmetric: At(0,1)=%v At(1,0)=%v", m.At(0, 1), m.At(1, 0))
	}
	if m.At(0, 0) != 0 || m.At(1, 1) != 0 {
		t.Error("diagonal should be zero after normalization")
	}
}

func TestComputeMatrixExcludesCellsOutsideIndex(t *testing.T) {
	idx := NewCellIndex(2, []uint32{0}) // cell 1 not present in this branch
	engine := NewEngine(0.01, 0, 0, 10, 4, false, true, 0)

	m, err := engine.ComputeMatrix(twoCellTwoPositionChromosome(), idx, 10, AddMin)
	if err != nil {
		t.Fatalf("ComputeMatrix: %v", err)
	}
	if m.N != 1 {
		t.Fatalf("m.N = %d, want 1 (only cell 0 is in the index)", m.N)
	}
}
