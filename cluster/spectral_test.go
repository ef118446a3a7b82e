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
	"testing"

	"github.com/hybridstat/svclust/similarity"
)

func blockSimilarityMatrix() *similarity.SimilarityMatrix {
	// Two tight two-cell blocks {0,1} and {2,3} with near-zero
	// cross-block similarity: an easy case for the Fiedler vector to
	// split cleanly.
	m := similarity.NewSimilarityMatrix(4)
	set := func(i, j int, v float64) {
		m.Set(i, j, v)
		m.Set(j, i, v)
	}
	set(0, 1, 10)
	set(2, 3, 10)
	set(0, 2, 0.01)
	set(0, 3, 0.01)
	set(1, 2, 0.01)
	set(1, 3, 0.01)
	return m
}

func TestGonumSpectralPartitionerSplitsTwoBlocks(t *testing.T) {
	p := NewGonumSpectralPartitioner()
	assignment, done, err := p.Partition(blockSimilarityMatrix())
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if done {
		t.Fatal("a two-block graph should not be reported done")
	}
	if len(assignment) != 4 {
		t.Fatalf("len(assignment) = %d, want 4", len(assignment))
	}
	sameSideA := (assignment[0] < 0.5) == (assignment[1] < 0.5)
	sameSideB := (assignment[2] < 0.5) == (assignment[3] < 0.5)
	crossDiffers := (assignment[0] < 0.5) != (assignment[2] < 0.5)
	if !sameSideA || !sameSideB || !crossDiffers {
		t.Errorf("expected {0,1} and {2,3} on opposite sides of 0.5, got %v", assignment)
	}
}

func TestGonumSpectralPartitionerTooSmall(t *testing.T) {
	p := NewGonumSpectralPartitioner()
	m := similarity.NewSimilarityMatrix(2)
	assignment, done, err := p.Partition(m)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if !done || assignment != nil {
		t.Errorf("a branch with fewer than 3 cells should report done with a nil assignment, got done=%v assignment=%v", done, assignment)
	}
}

func TestEigenErrorMessage(t *testing.T) {
	if errEigenFailed.Error() == "" {
		t.Error("errEigenFailed should carry a message")
	}
}
