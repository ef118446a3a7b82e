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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hybridstat/svclust/similarity"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]string{"--input-path", "in.pileup"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.SeqErrorRate != 0.001 {
		t.Errorf("SeqErrorRate = %v, want default 0.001", cfg.SeqErrorRate)
	}
	if cfg.Normalization != similarity.AddMin {
		t.Errorf("Normalization = %v, want default ADD_MIN", cfg.Normalization)
	}
	if cfg.InputPath != "in.pileup" {
		t.Errorf("InputPath = %q, want %q", cfg.InputPath, "in.pileup")
	}
}

func TestParseChromosomesSplitsOnComma(t *testing.T) {
	cfg, err := Parse([]string{"--chromosomes", "1,2,X"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []string{"1", "2", "X"}
	if len(cfg.Chromosomes) != len(want) {
		t.Fatalf("Chromosomes = %v, want %v", cfg.Chromosomes, want)
	}
	for i, c := range want {
		if cfg.Chromosomes[i] != c {
			t.Errorf("Chromosomes[%d] = %q, want %q", i, cfg.Chromosomes[i], c)
		}
	}
}

func TestParseRejectsInvalidNormalization(t *testing.T) {
	if _, err := Parse([]string{"--normalization", "BOGUS"}); err == nil {
		t.Error("expected an error for an invalid --normalization value")
	}
}

func TestParseRejectsInvalidLogLevel(t *testing.T) {
	if _, err := Parse([]string{"--log-level", "bogus"}); err == nil {
		t.Error("expected an error for an invalid --log-level value")
	}
}

func TestValidateRejectsMissingInputPath(t *testing.T) {
	cfg := Defaults()
	cfg.OutputDir = t.TempDir()
	if err := Validate(cfg); err == nil {
		t.Error("expected an error for a missing input_path")
	}
}

func TestValidateAcceptsExistingInputAndCreatesOutputDir(t *testing.T) {
	dir := t.TempDir()
	inputFile := filepath.Join(dir, "in.pileup")
	writeTestFile(t, inputFile, "1 10 1 A 0 r1\n")

	cfg := Defaults()
	cfg.InputPath = inputFile
	cfg.OutputDir = filepath.Join(dir, "out")
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsOutOfRangeRates(t *testing.T) {
	dir := t.TempDir()
	inputFile := filepath.Join(dir, "in.pileup")
	writeTestFile(t, inputFile, "1 10 1 A 0 r1\n")

	cfg := Defaults()
	cfg.InputPath = inputFile
	cfg.OutputDir = dir
	cfg.SeqErrorRate = 1.5
	if err := Validate(cfg); err == nil {
		t.Error("expected an error for seq_error_rate outside (0,1)")
	}
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}
