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

// Package pileup defines the per-position pileup record that the core
// similarity engine consumes, and the predicates used to decide whether a
// position carries enough signal to keep after a recursion split.
package pileup

// Base values as packed into a CellObservation. Unrecognized bases are
// not representable; callers must filter them out while reading.
const (
	A byte = 0
	C byte = 1
	G byte = 2
	T byte = 3
)

// CellObservation is one (cell, base, read) triple observed at a position.
type CellObservation struct {
	CellID uint32
	Base   byte
	ReadID uint32
}

// PosData is one retained (chromosome, position) pileup record: the
// genomic coordinate and the ordered observations at that coordinate.
// Positions within a chromosome's slice of PosData are non-decreasing.
type PosData struct {
	Position int32
	Cells    []CellObservation
}

// Chromosome is an ordered sequence of PosData for a single chromosome,
// as supplied by the pileup input collaborator.
type Chromosome struct {
	Name string
	Data []PosData
}

// MaxCellID returns the largest cell id observed across chromosomes, or
// -1 if there are no observations. Callers use this to size N.
func MaxCellID(chroms []Chromosome) int64 {
	max := int64(-1)
	for _, chrom := range chroms {
		for _, pd := range chrom.Data {
			for _, obs := range pd.Cells {
				if id := int64(obs.CellID); id > max {
					max = id
				}
			}
		}
	}
	return max
}
