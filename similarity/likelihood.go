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
	"fmt"
	"math"
	"sync"
)

// uncomputed marks a likelihood table cell that has not been filled in
// yet. It is distinguishable from any real log-probability, which is
// always <= 0.
const uncomputed = math.MaxFloat64

// NumericError reports a log(0) or NaN encountered while evaluating a
// pair likelihood — the model was asked to score inputs outside its
// valid domain (see spec.md §4.2, §7).
type NumericError struct {
	Xs, Xd int32
	Kind   string // "same" or "diff"
}

func (e *NumericError) Error() string {
	return fmt.Sprintf("similarity: non-finite log-probability for %s genotype at (x_s=%d, x_d=%d)", e.Kind, e.Xs, e.Xd)
}

// LikelihoodTables memoizes log P(x_s, x_d | same) and log P(x_s, x_d |
// diff) for a single run. Reads and writes are guarded by an RWMutex per
// spec.md §9 ("Implementations preferring strictness may guard each cell
// with a one-shot initializer") — concurrent computation of the same
// uncomputed cell is harmless and deterministic, so the lock only
// guards each cell read and write against a data race, not against
// redundant work.
type LikelihoodTables struct {
	cache *Cache
	size  int32

	mu   sync.RWMutex
	same []float64
	diff []float64
}

// NewLikelihoodTables allocates L×L tables for the given cache, where L
// is the cache's maximum fragment length.
func NewLikelihoodTables(cache *Cache) *LikelihoodTables {
	size := int32(len(cache.powPSameSame))
	t := &LikelihoodTables{cache: cache, size: size}
	t.same = make([]float64, size*size)
	t.diff = make([]float64, size*size)
	for i := range t.same {
		t.same[i] = uncomputed
		t.diff[i] = uncomputed
	}
	return t
}

func (t *LikelihoodTables) index(xs, xd int32) int32 { return xs*t.size + xd }

// LogSame returns log P(x_s, x_d | same genotype), computing and caching
// it on first use.
func (t *LikelihoodTables) LogSame(xs, xd int32) (float64, error) {
	idx := t.index(xs, xd)
	t.mu.RLock()
	v := t.same[idx]
	t.mu.RUnlock()
	if v != uncomputed {
		return v, nil
	}
	v = logProbSameGenotype(xs, xd, t.cache)
	if math.IsInf(v, -1) || math.IsNaN(v) {
		return 0, &NumericError{Xs: xs, Xd: xd, Kind: "same"}
	}
	t.mu.Lock()
	t.same[idx] = v
	t.mu.Unlock()
	return v, nil
}

// LogDiff returns log P(x_s, x_d | different genotype), computing and
// caching it on first use.
func (t *LikelihoodTables) LogDiff(xs, xd int32) (float64, error) {
	idx := t.index(xs, xd)
	t.mu.RLock()
	v := t.diff[idx]
	t.mu.RUnlock()
	if v != uncomputed {
		return v, nil
	}
	v = logProbDiffGenotype(xs, xd, t.cache)
	if math.IsInf(v, -1) || math.IsNaN(v) {
		return 0, &NumericError{Xs: xs, Xd: xd, Kind: "diff"}
	}
	t.mu.Lock()
	t.diff[idx] = v
	t.mu.Unlock()
	return v, nil
}

// logProbSameGenotype computes log P(x_s, x_d | same), per spec.md §4.2:
//
//	P_same(xs,xd) = C(xs+xd,xs) * sum_{k<=xs,l<=xd}
//	  C(xs,k) C(xd,l) (1-eps/2-h)^(k+l) * 0.5 * (pss^k*psd^l + pds^k*pdd^l)
//	  * (h+eps/2)^(xs+xd-k-l) * pss^(xs-k) * psd^(xd-l)
func logProbSameGenotype(xs, xd int32, c *Cache) float64 {
	var p float64
	for k := int32(0); k <= xs; k++ {
		for l := int32(0); l <= xd; l++ {
			term := float64(c.Binomial(xs, k)) * float64(c.Binomial(xd, l)) *
				c.pow1HEpsilon2[k+l] * 0.5 *
				(c.powPSameSame[k]*c.powPSameDiff[l] + c.powPDiffSame[k]*c.powPDiffDiff[l]) *
				c.powHEpsilon2[xs+xd-k-l] * c.powPSameSame[xs-k] * c.powPSameDiff[xd-l]
			p += term
		}
	}
	p *= float64(c.Binomial(xs+xd, xs))
	return math.Log(p)
}

// logProbDiffGenotype computes log P(x_s, x_d | different), per
// spec.md §4.2:
//
//	P_diff(xs,xd) = C(xs+xd,xs) * sum_{k,l,p,q}
//	  C(xs,k) C(xd,l) C(xs-k,p) C(xd-l,q) * (1-eps-h)^(k+l) * 0.5
//	  * (pss^k*psd^l + pds^k*pdd^l)
//	  * eps^(xs+xd-k-l-p-q) * 0.5^(xs+xd-k-l-p-q)
//	  * (pss+pds)^(xs-k-p) * (psd+pdd)^(xd-l-q) * h^(p+q) * pss^p * psd^q
func logProbDiffGenotype(xs, xd int32, c *Cache) float64 {
	var prob float64
	for k := int32(0); k <= xs; k++ {
		for l := int32(0); l <= xd; l++ {
			for p := int32(0); p <= xs-k; p++ {
				for q := int32(0); q <= xd-l; q++ {
					rest := xs + xd - k - l - p - q
					term := float64(c.Binomial(xs, k)) * float64(c.Binomial(xd, l)) *
						float64(c.Binomial(xs-k, p)) * float64(c.Binomial(xd-l, q)) *
						c.pow1HEpsilon[k+l] * 0.5 *
						(c.powPSameSame[k]*c.powPSameDiff[l] + c.powPDiffSame[k]*c.powPDiffDiff[l]) *
						c.powEpsilon[rest] * c.pow05[rest] *
						c.powPssPds[xs-k-p] * c.powPsdPdd[xd-l-q] *
						c.powH[p+q] * c.powPSameSame[p] * c.powPSameDiff[q]
					prob += term
				}
			}
		}
	}
	prob *= float64(c.Binomial(xs+xd, xs))
	return math.Log(prob)
}
