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

// Package similarity implements the pairwise genotype-similarity engine:
// a streaming read assembler over pileup records, a memoized pair
// likelihood model, and a parallel accumulator that turns read-pair
// overlaps into a normalized cell-by-cell similarity matrix.
package similarity

// Cache holds the powers and binomial coefficients that the same/diff
// genotype likelihood sums (see likelihood.go) need, precomputed once up
// to the maximum fragment length L so that evaluating a likelihood cell
// never has to call math.Pow.
//
// The derived probabilities below follow directly from theta (the
// per-base sequencing error rate): pSameSame/pSameDiff describe how often
// two reads covering the same true base agree/disagree, pDiffSame/
// pDiffDiff the same for two reads covering different true bases.
type Cache struct {
	Theta, Epsilon, H float64

	pSameSame, pSameDiff float64
	pDiffSame, pDiffDiff float64

	powPSameSame, powPSameDiff []float64
	powPDiffSame, powPDiffDiff []float64
	pow1HEpsilon, pow1HEpsilon2 []float64
	powHEpsilon2, powH, powEpsilon, pow05 []float64
	powPssPds, powPsdPdd []float64

	// binomial[n][k] = C(n,k), for n < L.
	binomial [][]uint64
}

// NewCache builds the power and binomial tables for fragments of up to
// maxLen bases. theta is the sequencing error rate, epsilon the mutation
// rate, h the homozygous-germline misinclusion rate.
func NewCache(theta, epsilon, h float64, maxLen int32) *Cache {
	if maxLen < 1 {
		maxLen = 1
	}
	theta2 := theta * theta
	pSameDiff := 2*theta*(1-theta) + 2*theta2/3
	pDiffSame := 2*(1-theta)*theta/3 + 2*theta2/9

	c := &Cache{
		Theta: theta, Epsilon: epsilon, H: h,
		pSameSame: 1 - pSameDiff,
		pSameDiff: pSameDiff,
		pDiffSame: pDiffSame,
		pDiffDiff: 1 - pDiffSame,
	}

	c.powPSameSame = powersOf(c.pSameSame, maxLen)
	c.powPSameDiff = powersOf(c.pSameDiff, maxLen)
	c.powPDiffSame = powersOf(c.pDiffSame, maxLen)
	c.powPDiffDiff = powersOf(c.pDiffDiff, maxLen)
	c.pow1HEpsilon = powersOf(1-epsilon-h, maxLen)
	c.pow1HEpsilon2 = powersOf(1-epsilon/2-h, maxLen)
	c.powHEpsilon2 = powersOf(h+epsilon/2, maxLen)
	c.powH = powersOf(h, maxLen)
	c.powEpsilon = powersOf(epsilon, maxLen)
	c.pow05 = powersOf(0.5, maxLen)
	c.powPssPds = powersOf(c.pSameSame+c.pDiffSame, maxLen)
	c.powPsdPdd = powersOf(c.pSameDiff+c.pDiffDiff, maxLen)

	c.binomial = binomialTable(maxLen)

	return c
}

// powersOf returns [base^0, base^1, ..., base^(n-1)] computed by repeated
// multiplication, so pow[k] == base^k exactly as elsewhere in this
// package, not via a closed-form exponentiation that could round
// differently for different k.
func powersOf(base float64, n int32) []float64 {
	pow := make([]float64, n)
	pow[0] = 1
	for k := int32(1); k < n; k++ {
		pow[k] = pow[k-1] * base
	}
	return pow
}

// binomialTable returns a lower-triangular table of binomial coefficients
// C(n,k) for 0 <= k <= n < maxLen, built via Pascal's identity.
func binomialTable(maxLen int32) [][]uint64 {
	table := make([][]uint64, maxLen)
	table[0] = []uint64{1}
	for n := int32(1); n < maxLen; n++ {
		row := make([]uint64, n+1)
		row[0] = 1
		row[n] = 1
		prev := table[n-1]
		for k := int32(1); k < n; k++ {
			row[k] = prev[k-1] + prev[k]
		}
		table[n] = row
	}
	return table
}

// Binomial returns C(n,k), or 0 if k is out of [0,n].
func (c *Cache) Binomial(n, k int32) uint64 {
	if k < 0 || k > n {
		return 0
	}
	return c.binomial[n][k]
}
