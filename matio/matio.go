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

// Package matio writes the dense similarity matrix and soft-assignment
// vector produced for each recursion node to disk, the way elprep's
// vcf package wraps a bufio.Writer around a plain os.Create: no special
// container format, just a small binary header followed by row-major
// float64 values.
package matio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"

	"github.com/hybridstat/svclust/similarity"
)

// matrixMagic/assignMagic tag the two output formats so a reader never
// confuses one file for the other.
const (
	matrixMagic uint32 = 0x53564d31 // "SVM1"
	assignMagic uint32 = 0x53564131 // "SVA1"
)

// WriteMatrix writes the normalized similarity matrix for the recursion
// node labeled label to outputDir/<label>.mat: a 4-byte magic, an
// 8-byte row count N, then N*N float64s in row-major order.
func WriteMatrix(outputDir, label string, m *similarity.SimilarityMatrix) error {
	path := filepath.Join(outputDir, matrixFilename(label))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("matio: creating %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := binary.Write(w, binary.LittleEndian, matrixMagic); err != nil {
		return fmt.Errorf("matio: writing %s: %w", path, err)
	}
	if err := binary.Write(w, binary.LittleEndian, int64(m.N)); err != nil {
		return fmt.Errorf("matio: writing %s: %w", path, err)
	}
	for i := 0; i < m.N; i++ {
		for j := 0; j < m.N; j++ {
			if err := binary.Write(w, binary.LittleEndian, m.At(i, j)); err != nil {
				return fmt.Errorf("matio: writing %s: %w", path, err)
			}
		}
	}
	return w.Flush()
}

// WriteAssignment writes a soft assignment vector for the recursion node
// labeled label to outputDir/<label>.assign: a 4-byte magic, an 8-byte
// count, then that many float64s.
func WriteAssignment(outputDir, label string, assignment []float64) error {
	path := filepath.Join(outputDir, assignFilename(label))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("matio: creating %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := binary.Write(w, binary.LittleEndian, assignMagic); err != nil {
		return fmt.Errorf("matio: writing %s: %w", path, err)
	}
	if err := binary.Write(w, binary.LittleEndian, int64(len(assignment))); err != nil {
		return fmt.Errorf("matio: writing %s: %w", path, err)
	}
	if err := binary.Write(w, binary.LittleEndian, assignment); err != nil {
		return fmt.Errorf("matio: writing %s: %w", path, err)
	}
	return w.Flush()
}

func matrixFilename(label string) string {
	if label == "" {
		label = "root"
	}
	return label + ".mat"
}

func assignFilename(label string) string {
	if label == "" {
		label = "root"
	}
	return label + ".assign"
}

// ToSymDense converts a SimilarityMatrix to a gonum SymDense, the same
// type GonumSpectralPartitioner builds its Laplacian as, for callers (e.g.
// tests, or downstream tooling) that want to run further gonum/mat
// operations over a node's output without re-parsing it from disk.
func ToSymDense(m *similarity.SimilarityMatrix) *mat.SymDense {
	n := m.N
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, m.At(i, j))
		}
	}
	return sym
}
