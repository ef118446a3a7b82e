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

package internal

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"trace": Trace, "debug": Debug, "info": Info, "warn": Warn,
		"error": Error, "critical": Critical, "off": Off,
	}
	for s, want := range cases {
		got, ok := ParseLogLevel(s)
		if !ok || got != want {
			t.Errorf("ParseLogLevel(%q) = (%v,%v), want (%v,true)", s, got, ok, want)
		}
	}
	if _, ok := ParseLogLevel("bogus"); ok {
		t.Error("ParseLogLevel(\"bogus\") should fail")
	}
}

func TestLogLevelString(t *testing.T) {
	if Trace.String() != "trace" || Off.String() != "off" {
		t.Error("LogLevel.String() round-trip mismatch")
	}
	if LogLevel(99).String() != "unknown" {
		t.Errorf("unrecognized LogLevel should stringify to %q", "unknown")
	}
}

func TestLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, Warn)

	logger.Debugf("should not appear")
	if buf.Len() != 0 {
		t.Errorf("Debugf below the Warn threshold should be suppressed, got %q", buf.String())
	}

	logger.Errorf("boom %d", 42)
	if !strings.Contains(buf.String(), "boom 42") {
		t.Errorf("Errorf above the threshold should be logged, got %q", buf.String())
	}
}

func TestStdLoggerDiscardsBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, Error)

	std := logger.StdLogger(Info)
	std.Print("quiet")
	if buf.Len() != 0 {
		t.Errorf("StdLogger(Info) under an Error-level Logger should discard, got %q", buf.String())
	}

	std = logger.StdLogger(Critical)
	std.Print("loud")
	if buf.Len() == 0 {
		t.Error("StdLogger(Critical) under an Error-level Logger should write through")
	}
}
