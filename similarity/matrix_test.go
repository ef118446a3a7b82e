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

import "testing"

func TestScoreMatrixAddSymmetric(t *testing.T) {
	m := NewScoreMatrix(3)
	m.AddSymmetric(0, 2, 1.5)
	m.AddSymmetric(0, 2, 0.5)
	if m.At(0, 2) != 2 {
		t.Errorf("m.At(0,2) = %v, want 2", m.At(0, 2))
	}
	if m.At(2, 0) != 2 {
		t.Errorf("m.At(2,0) = %v, want 2 (symmetric)", m.At(2, 0))
	}
	if m.At(1, 1) != 0 {
		t.Errorf("untouched cell m.At(1,1) = %v, want 0", m.At(1, 1))
	}
}

func TestCellIndexMapping(t *testing.T) {
	idx := NewCellIndex(10, []uint32{2, 5, 9})
	if idx.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", idx.Len())
	}
	for pos, id := range []uint32{2, 5, 9} {
		if idx.CellIDToPos[id] != int32(pos) {
			t.Errorf("CellIDToPos[%d] = %d, want %d", id, idx.CellIDToPos[id], pos)
		}
	}
	if idx.CellIDToPos[0] != -1 {
		t.Errorf("CellIDToPos[0] = %d, want -1 (cell 0 is not in the index)", idx.CellIDToPos[0])
	}
	if idx.PosToCellID[1] != 5 {
		t.Errorf("PosToCellID[1] = %d, want 5", idx.PosToCellID[1])
	}
}

func TestCellIndexEmpty(t *testing.T) {
	idx := NewCellIndex(5, nil)
	if idx.Len() != 0 {
		t.Errorf("Len() = %d, want 0 for an empty cell set", idx.Len())
	}
}
