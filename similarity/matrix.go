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

// ScoreMatrix is a dense symmetric N×N matrix of doubles over cell
// indices, stored row-major. C4 maintains two instances, Same and Diff;
// C5 consumes both to produce a SimilarityMatrix.
type ScoreMatrix struct {
	N    int
	data []float64
}

// NewScoreMatrix allocates an N×N matrix initialized to zero.
func NewScoreMatrix(n int) *ScoreMatrix {
	return &ScoreMatrix{N: n, data: make([]float64, n*n)}
}

func (m *ScoreMatrix) At(i, j int) float64 { return m.data[i*m.N+j] }

func (m *ScoreMatrix) Set(i, j int, v float64) { m.data[i*m.N+j] = v }

// AddSymmetric performs S[a,b] += v; S[b,a] = S[a,b], the merge-step
// update from spec.md §4.4.
func (m *ScoreMatrix) AddSymmetric(a, b int, v float64) {
	idx := a*m.N + b
	m.data[idx] += v
	m.data[b*m.N+a] = m.data[idx]
}

// SimilarityMatrix is the normalized output of C5: symmetric, zero
// diagonal, higher values mean more similar.
type SimilarityMatrix struct {
	N    int
	data []float64
}

func NewSimilarityMatrix(n int) *SimilarityMatrix {
	return &SimilarityMatrix{N: n, data: make([]float64, n*n)}
}

func (m *SimilarityMatrix) At(i, j int) float64 { return m.data[i*m.N+j] }

func (m *SimilarityMatrix) Set(i, j int, v float64) { m.data[i*m.N+j] = v }

// CellIndex maps between global cell ids and the compact positions of
// the cells currently under consideration in a recursion branch. It is
// shared by similarity.Accumulate (C4) and the cluster package, which
// re-exports it as cluster.CellIndex to avoid a layering cycle — C4
// needs the mapping at the point updates are emitted, before the
// cluster package's own recursion logic ever runs.
type CellIndex struct {
	// CellIDToPos maps a global cell id to its position in the current
	// sub-cluster, or -1 if the cell is outside it.
	CellIDToPos []int32
	// PosToCellID is the compact list of cells currently being
	// clustered, PosToCellID[pos] == global id.
	PosToCellID []uint32
}

// NewCellIndex builds an index over the given cell ids, which need not
// be sorted or contiguous. maxCellID bounds the global id space.
func NewCellIndex(maxCellID int64, cellIDs []uint32) *CellIndex {
	idx := &CellIndex{
		CellIDToPos: make([]int32, maxCellID+1),
		PosToCellID: append([]uint32(nil), cellIDs...),
	}
	for i := range idx.CellIDToPos {
		idx.CellIDToPos[i] = -1
	}
	for pos, id := range idx.PosToCellID {
		idx.CellIDToPos[id] = int32(pos)
	}
	return idx
}

func (idx *CellIndex) Len() int { return len(idx.PosToCellID) }
