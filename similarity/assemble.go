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

import "github.com/hybridstat/svclust/pileup"

// read is one in-progress or completed fragment being tracked by the
// assembler: the cell it came from, the genomic position it started at,
// and its positions/bases in the strictly-increasing order they were
// appended (strict policy) or accepted (legacy policy).
type read struct {
	cellID    uint32
	start     int32
	positions []int32
	bases     []byte
}

// last returns the read's most recently recorded position, or -1 if the
// read has no bases left (both mates dropped at its only locus).
func (r *read) last() int32 {
	if len(r.positions) == 0 {
		return -1
	}
	return r.positions[len(r.positions)-1]
}

// Assembler reconstructs per-read base sequences from an ordered stream
// of PosData, keyed by read id, within a sliding window sized by the
// maximum fragment length L. It is single-threaded: only the owning
// goroutine touches activeReads/activeKeys, per spec.md §5 ("C3 is
// single-threaded, it mutates the active window").
type Assembler struct {
	maxLen  int32
	batch   int32 // BATCH*T flush threshold, see spec.md §4.3
	legacy  bool  // legacy paired-end-overlap policy, spec.md §9

	activeReads map[uint32]*read
	activeKeys  []uint32
	completed   int32

	flush FlushFunc
}

// FlushFunc is invoked with the first n entries of the active window
// (in activeKeys order) once they are ready to be compared against the
// rest of the window and evicted. It must not retain reads, allKeys or
// allReads beyond the call: the flushed entries are deleted from
// allReads as soon as it returns.
type FlushFunc func(reads []*read, allKeys []uint32, allReads map[uint32]*read)

// NewAssembler constructs a C3 streaming assembler. flushThreshold is
// BATCH*T (spec.md §4.3); flush is called synchronously whenever that
// many leading reads have completed, and once more at the end of each
// chromosome for whatever remains.
func NewAssembler(maxLen int32, flushThreshold int32, legacy bool, flush FlushFunc) *Assembler {
	if flushThreshold < 1 {
		flushThreshold = 1
	}
	return &Assembler{
		maxLen:      maxLen,
		batch:       flushThreshold,
		legacy:      legacy,
		activeReads: make(map[uint32]*read),
		flush:       flush,
	}
}

// Observe feeds one (cell_id, base, read_id) triple seen at position p
// into the window, per spec.md §4.3 steps 1-3.
func (a *Assembler) Observe(p int32, obs pileup.CellObservation) {
	r, ok := a.activeReads[obs.ReadID]
	if !ok {
		r = &read{cellID: obs.CellID, start: p}
		r.positions = append(r.positions, p)
		r.bases = append(r.bases, obs.Base)
		a.activeReads[obs.ReadID] = r
		a.activeKeys = append(a.activeKeys, obs.ReadID)
		return
	}

	if len(r.positions) > 0 && r.positions[len(r.positions)-1] == p {
		if a.legacy {
			// legacy policy: keep the earlier base unconditionally.
			return
		}
		// strict policy: agreement keeps one base, disagreement drops
		// both mates at this locus.
		lastBase := r.bases[len(r.bases)-1]
		if lastBase != obs.Base {
			r.positions = r.positions[:len(r.positions)-1]
			r.bases = r.bases[:len(r.bases)-1]
		}
		return
	}

	r.positions = append(r.positions, p)
	r.bases = append(r.bases, obs.Base)
}

// Advance moves the completion cursor forward to account for the
// current position p, flushing when the leading run of completed reads
// reaches the configured threshold. Call once per distinct position,
// after all of that position's Observe calls.
func (a *Assembler) Advance(p int32) {
	for int(a.completed) < len(a.activeKeys) {
		key := a.activeKeys[a.completed]
		r := a.activeReads[key]
		if r.start+a.maxLen > p {
			break
		}
		a.completed++
	}
	if a.completed >= a.batch {
		a.flushN(a.completed)
	}
}

// FlushChromosome flushes every remaining active read and resets the
// window, per spec.md §4.3 ("reads never span chromosomes").
func (a *Assembler) FlushChromosome() {
	if len(a.activeKeys) > 0 {
		a.flushN(int32(len(a.activeKeys)))
	}
	a.activeReads = make(map[uint32]*read)
	a.activeKeys = nil
	a.completed = 0
}

func (a *Assembler) flushN(n int32) {
	reads := make([]*read, n)
	for i := int32(0); i < n; i++ {
		reads[i] = a.activeReads[a.activeKeys[i]]
	}
	a.flush(reads, a.activeKeys, a.activeReads)

	for i := int32(0); i < n; i++ {
		delete(a.activeReads, a.activeKeys[i])
	}
	a.activeKeys = a.activeKeys[n:]
	a.completed = 0
}
