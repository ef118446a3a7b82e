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

package pileup

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/exascience/pargo/parallel"
	"github.com/hybridstat/svclust/internal"
)

// baseTable maps an uppercase base letter to its packed encoding. Any
// other byte is not a valid base and is rejected by the reader.
var baseTable = map[byte]byte{'A': A, 'C': C, 'G': G, 'T': T}

// ReadResult is what the pileup input collaborator reports to the driver:
// the chromosomes in file order and the maximum fragment length L
// observed across them. The observed cell ids are not collected here;
// MaxCellID derives N from the chromosomes.
type ReadResult struct {
	Chromosomes   []Chromosome
	MaxReadLength int32
}

// ReadFile parses one file in the textual pileup format:
//
//	chromosome_id  position  coverage  bases  cell_ids  read_ids
//
// e.g. "22 10719571 3 TAG 0,0,3 r1,r2,r3" records that at position
// 10719571 of chromosome 22, cell 0 contributed a T and an A (from two
// different reads) and cell 3 contributed a G. coverage is advisory: it
// is neither parsed nor checked against len(bases).
//
// read_ids are arbitrary tokens (as produced by upstream preprocessing);
// each distinct token is assigned the next uint32 id in order of first
// appearance, so equal tokens within a file map to equal ids.
func ReadFile(path string) (chroms []Chromosome, maxReadLength int32, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("pileup: opening %s: %w", path, err)
	}
	defer f.Close()

	byChrom := make(map[string]int)
	readIDs := make(map[string]uint32)
	var nextReadID uint32

	lastPosition := make(map[string]int32)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 6 {
			return nil, 0, fmt.Errorf("pileup: %s:%d: expected 6 fields, got %d", path, lineNo, len(fields))
		}
		chromID := fields[0]
		position, err := strconv.ParseInt(fields[1], 10, 32)
		if err != nil {
			return nil, 0, fmt.Errorf("pileup: %s:%d: bad position: %w", path, lineNo, err)
		}
		bases := fields[3]
		cellTokens := strings.Split(fields[4], ",")
		readTokens := strings.Split(fields[5], ",")
		if len(bases) != len(cellTokens) || len(bases) != len(readTokens) {
			return nil, 0, fmt.Errorf("pileup: %s:%d: mismatched bases/cells/read_ids lengths", path, lineNo)
		}

		if prev, ok := lastPosition[chromID]; ok && int32(position) < prev {
			return nil, 0, fmt.Errorf("pileup: %s:%d: non-monotonic position %d after %d on chromosome %s", path, lineNo, position, prev, chromID)
		}
		lastPosition[chromID] = int32(position)

		idx, ok := byChrom[chromID]
		if !ok {
			idx = len(chroms)
			byChrom[chromID] = idx
			chroms = append(chroms, Chromosome{Name: chromID})
		}

		cells := make([]CellObservation, len(bases))
		for i := 0; i < len(bases); i++ {
			base, ok := baseTable[bases[i]]
			if !ok {
				return nil, 0, fmt.Errorf("pileup: %s:%d: invalid base %q", path, lineNo, bases[i])
			}
			cellID, err := strconv.ParseUint(strings.TrimSpace(cellTokens[i]), 10, 32)
			if err != nil {
				return nil, 0, fmt.Errorf("pileup: %s:%d: bad cell id: %w", path, lineNo, err)
			}
			readID, ok := readIDs[readTokens[i]]
			if !ok {
				readID = nextReadID
				readIDs[readTokens[i]] = readID
				nextReadID++
			}
			cells[i] = CellObservation{CellID: uint32(cellID), Base: base, ReadID: readID}
		}

		chroms[idx].Data = append(chroms[idx].Data, PosData{Position: int32(position), Cells: cells})
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("pileup: reading %s: %w", path, err)
	}

	maxReadLength = maxFragmentLength(chroms)
	return chroms, maxReadLength, nil
}

// maxFragmentLength derives L, the maximum genomic span covered by a
// single read, by tracking each read id's first and last position.
func maxFragmentLength(chroms []Chromosome) int32 {
	type span struct{ first, last int32 }
	spans := make(map[uint32]*span)
	var maxLen int32 = 1
	for _, chrom := range chroms {
		spans = make(map[uint32]*span, len(spans))
		for _, pd := range chrom.Data {
			for _, obs := range pd.Cells {
				s, ok := spans[obs.ReadID]
				if !ok {
					spans[obs.ReadID] = &span{first: pd.Position, last: pd.Position}
					continue
				}
				s.last = pd.Position
				if l := s.last - s.first + 1; l > maxLen {
					maxLen = l
				}
			}
		}
	}
	return maxLen
}

// ReadDir reads every ".pileup" file directly inside dir, in parallel
// (contiguous ranges of files per worker, sized from numThreads), and
// merges their chromosomes in filename order.
// This mirrors the per-file read fan-out in the original driver's main().
func ReadDir(dir string, numThreads int) (ReadResult, error) {
	names, err := internal.Directory(dir)
	if err != nil {
		return ReadResult{}, fmt.Errorf("pileup: reading directory %s: %w", dir, err)
	}
	var paths []string
	for _, name := range names {
		if strings.HasSuffix(name, ".pileup") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return ReadResult{}, fmt.Errorf("pileup: no .pileup files found in %s", dir)
	}

	allChroms := make([][]Chromosome, len(paths))
	maxLens := make([]int32, len(paths))
	errs := make([]error, len(paths))

	grain := 0
	if numThreads > 0 && len(paths) > numThreads {
		grain = len(paths) / numThreads
	}
	parallel.Range(0, len(paths), grain, func(low, high int) {
		for i := low; i < high; i++ {
			chroms, maxLen, err := ReadFile(paths[i])
			allChroms[i] = chroms
			maxLens[i] = maxLen
			errs[i] = err
		}
	})

	var result ReadResult
	for i, err := range errs {
		if err != nil {
			return ReadResult{}, err
		}
		result.Chromosomes = append(result.Chromosomes, allChroms[i]...)
		if maxLens[i] > result.MaxReadLength {
			result.MaxReadLength = maxLens[i]
		}
	}
	return result, nil
}

// Read reads either a single pileup file or every pileup file in a
// directory, depending on what inputPath names.
func Read(inputPath string, numThreads int) (ReadResult, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return ReadResult{}, fmt.Errorf("pileup: %w", err)
	}
	if info.IsDir() {
		return ReadDir(inputPath, numThreads)
	}
	chroms, maxLen, err := ReadFile(inputPath)
	if err != nil {
		return ReadResult{}, err
	}
	return ReadResult{Chromosomes: chroms, MaxReadLength: maxLen}, nil
}
