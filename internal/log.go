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

// Package internal holds small helpers shared across packages that
// don't belong to any one of them: the log-level wrapper and the
// stderr-teeing setup used by cmd.
package internal

import (
	"fmt"
	"io"
	"log"
	"os"

	"golang.org/x/sys/unix"
)

// LogLevel is one of the seven verbosity levels recognized by the
// log_level configuration option.
type LogLevel int

const (
	Trace LogLevel = iota
	Debug
	Info
	Warn
	Error
	Critical
	Off
)

// ParseLogLevel maps a configuration string to a LogLevel.
func ParseLogLevel(s string) (LogLevel, bool) {
	switch s {
	case "trace":
		return Trace, true
	case "debug":
		return Debug, true
	case "info":
		return Info, true
	case "warn":
		return Warn, true
	case "error":
		return Error, true
	case "critical":
		return Critical, true
	case "off":
		return Off, true
	default:
		return 0, false
	}
}

func (l LogLevel) String() string {
	switch l {
	case Trace:
		return "trace"
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Error:
		return "error"
	case Critical:
		return "critical"
	case Off:
		return "off"
	default:
		return "unknown"
	}
}

// Logger wraps the standard log.Logger with the level filter named by
// spec.md §6's log_level option. elPrep itself logs straight to the
// standard log package (see cmd/util.go); this only adds the level gate
// on top, same destination and formatting.
type Logger struct {
	level LogLevel
	std   *log.Logger
}

// NewLogger builds a Logger writing to w at the given level.
func NewLogger(w io.Writer, level LogLevel) *Logger {
	return &Logger{level: level, std: log.New(w, "", log.LstdFlags)}
}

func (l *Logger) logf(level LogLevel, prefix, format string, args ...interface{}) {
	if level < l.level {
		return
	}
	l.std.Output(3, fmt.Sprintf(prefix+format, args...))
}

func (l *Logger) Tracef(format string, args ...interface{})    { l.logf(Trace, "TRACE: ", format, args...) }
func (l *Logger) Debugf(format string, args ...interface{})    { l.logf(Debug, "DEBUG: ", format, args...) }
func (l *Logger) Infof(format string, args ...interface{})     { l.logf(Info, "INFO: ", format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})     { l.logf(Warn, "WARN: ", format, args...) }
func (l *Logger) Errorf(format string, args ...interface{})    { l.logf(Error, "ERROR: ", format, args...) }
func (l *Logger) Criticalf(format string, args ...interface{}) { l.logf(Critical, "CRITICAL: ", format, args...) }

// StdLogger exposes the level-gated destination as a *log.Logger for
// collaborators (e.g. cluster.Params.Logger) that just want Printf-style
// output at a fixed level, mirroring elprep's direct use of the standard
// logger throughout cmd/.
func (l *Logger) StdLogger(level LogLevel) *log.Logger {
	if level < l.level {
		return log.New(io.Discard, "", 0)
	}
	return l.std
}

// SetupStderrTee redirects the process's raw stderr fd (2) to also write
// to the given file, so runtime panics and any C-level library writes
// land in the log file alongside the terminal, matching elprep's
// cmd/util.go setLogOutput. It returns a MultiWriter of the file and the
// original stderr for log.SetOutput, and the duplicated original-stderr
// file so the caller can restore it.
func SetupStderrTee(path string) (io.Writer, *os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("internal: opening log file %s: %w", path, err)
	}

	orgStderr, err := unix.Dup(2)
	if err != nil {
		return nil, nil, fmt.Errorf("internal: duplicating stderr: %w", err)
	}
	ferr := os.NewFile(uintptr(orgStderr), "/dev/stderr")
	if err := unix.Dup2(int(f.Fd()), 2); err != nil {
		return nil, nil, fmt.Errorf("internal: redirecting stderr: %w", err)
	}

	return io.MultiWriter(f, ferr), ferr, nil
}
