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

func TestParseNormalization(t *testing.T) {
	cases := map[string]Normalization{
		"ADD_MIN":      AddMin,
		"EXPONENTIATE": Exponentiate,
		"SCALE_MAX_1":  ScaleMax1,
	}
	for s, want := range cases {
		got, ok := ParseNormalization(s)
		if !ok || got != want {
			t.Errorf("ParseNormalization(%q) = (%v,%v), want (%v,true)", s, got, ok, want)
		}
	}
	if _, ok := ParseNormalization("BOGUS"); ok {
		t.Error("ParseNormalization(\"BOGUS\") should fail")
	}
}

func TestNormalizationString(t *testing.T) {
	if AddMin.String() != "ADD_MIN" || Exponentiate.String() != "EXPONENTIATE" || ScaleMax1.String() != "SCALE_MAX_1" {
		t.Error("Normalization.String() round-trip mismatch")
	}
}

func buildScoreMatrices(n int, sameVals, diffVals map[[2]int]float64) (*ScoreMatrix, *ScoreMatrix) {
	same := NewScoreMatrix(n)
	diff := NewScoreMatrix(n)
	for k, v := range sameVals {
		same.AddSymmetric(k[0], k[1], v)
	}
	for k, v := range diffVals {
		diff.AddSymmetric(k[0], k[1], v)
	}
	return same, diff
}

func TestNormalizeAddMinZeroesDiagonal(t *testing.T) {
	same, diff := buildScoreMatrices(3, map[[2]int]float64{{0, 1}: 5, {0, 2}: 2}, map[[2]int]float64{{0, 1}: 1, {0, 2}: 8})
	out := Normalize(same, diff, AddMin)
	for i := 0; i < 3; i++ {
		if out.At(i, i) != 0 {
			t.Errorf("diagonal At(%d,%d) = %v, want 0", i, i, out.At(i, i))
		}
	}
	if out.At(0, 1) <= out.At(0, 2) {
		t.Errorf("cell 0,1 (diff-same=-4, highly similar) should score higher than 0,2 (diff-same=6, dissimilar) after ADD_MIN negation: got %v, %v", out.At(0, 1), out.At(0, 2))
	}
}

func TestNormalizeExponentiateBounds(t *testing.T) {
	same, diff := buildScoreMatrices(2, map[[2]int]float64{{0, 1}: 10}, map[[2]int]float64{{0, 1}: -10})
	out := Normalize(same, diff, Exponentiate)
	v := out.At(0, 1)
	if v <= 0 || v >= 1 {
		t.Errorf("EXPONENTIATE output %v should lie strictly in (0,1)", v)
	}
}

func TestNormalizeScaleMax1(t *testing.T) {
	same, diff := buildScoreMatrices(3, map[[2]int]float64{{0, 1}: 0, {0, 2}: 0}, map[[2]int]float64{{0, 1}: 4, {0, 2}: 2})
	out := Normalize(same, diff, ScaleMax1)
	if out.At(0, 1) != 1 {
		t.Errorf("largest M entry should scale to 1, got %v", out.At(0, 1))
	}
	if out.At(0, 2) != 0.5 {
		t.Errorf("half-of-max entry should scale to 0.5, got %v", out.At(0, 2))
	}
}

// TestS5ExponentiateRanksIdenticalPairAboveDivergentPairs covers
// spec.md §8 S5: three cells A, B, C with A=B identical and C
// divergent. After normalization in EXPONENTIATE mode,
// W[A,B] > W[A,C] and W[A,B] > W[B,C].
func TestS5ExponentiateRanksIdenticalPairAboveDivergentPairs(t *testing.T) {
	idx := NewCellIndex(2, []uint32{0, 1, 2}) // positions: 0=A, 1=B, 2=C
	cache := NewCache(0.01, 0, 0, 6)
	tables := NewLikelihoodTables(cache)
	same := NewScoreMatrix(3)
	diff := NewScoreMatrix(3)

	identical := []byte{pileup.A, pileup.A, pileup.A, pileup.A, pileup.A}
	divergent := []byte{pileup.T, pileup.T, pileup.T, pileup.T, pileup.T}
	positions := []int32{1, 2, 3, 4, 5}

	rA := &read{cellID: 0, start: 1, positions: positions, bases: identical}
	rB := &read{cellID: 1, start: 1, positions: positions, bases: identical}
	rC := &read{cellID: 2, start: 1, positions: positions, bases: divergent}
	allKeys := []uint32{10, 20, 30}
	allReads := map[uint32]*read{10: rA, 20: rB, 30: rC}

	if err := Accumulate([]*read{rA, rB, rC}, allKeys, allReads, idx, tables, same, diff, 0, true); err != nil {
		t.Fatalf("Accumulate: %v", err)
	}

	w := Normalize(same, diff, Exponentiate)
	ab, ac, bc := w.At(0, 1), w.At(0, 2), w.At(1, 2)
	if !(ab > ac) {
		t.Errorf("W[A,B]=%v should exceed W[A,C]=%v for an identical pair against a divergent one", ab, ac)
	}
	if !(ab > bc) {
		t.Errorf("W[A,B]=%v should exceed W[B,C]=%v for an identical pair against a divergent one", ab, bc)
	}
}

func TestMinMaxOf(t *testing.T) {
	if minOf(nil) != 0 || maxOf(nil) != 0 {
		t.Error("minOf/maxOf of an empty slice should be 0")
	}
	vals := []float64{3, -1, 7, 0}
	if minOf(vals) != -1 {
		t.Errorf("minOf = %v, want -1", minOf(vals))
	}
	if maxOf(vals) != 7 {
		t.Errorf("maxOf = %v, want 7", maxOf(vals))
	}
}
