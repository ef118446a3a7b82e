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

// Package cluster implements the recursive spectral bipartitioner (C6):
// it drives the similarity engine to produce a matrix, asks a spectral
// partitioning collaborator for a soft cluster assignment, refines it
// with an EM collaborator, splits the pileup into two branches, and
// recurses while branch coverage stays informative.
package cluster

import "github.com/hybridstat/svclust/similarity"

// CellIndex maps global cell ids to positions within the current
// recursion branch. It is defined in package similarity (C4 needs it
// directly) and re-exported here under the name spec.md's data model
// uses for it.
type CellIndex = similarity.CellIndex

// NewCellIndex builds a CellIndex over the given cell ids.
func NewCellIndex(maxCellID int64, cellIDs []uint32) *CellIndex {
	return similarity.NewCellIndex(maxCellID, cellIDs)
}

// Assignment is a soft cluster assignment vector, one value per cell in
// [0,1], indexed the same way as the CellIndex it was produced from.
type Assignment []float64
