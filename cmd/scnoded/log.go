// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jrick/logrotate/rotator"

	"github.com/decred/slog"

	"github.com/scnode/scnode/blockchain"
	"github.com/scnode/scnode/database"
	"github.com/scnode/scnode/mempool"
)

// logRotator writes to stdout and a rolling log file under the data
// directory; it is nil until initLogRotator runs.
var logRotator *rotator.Rotator

// logWriter forks log records to both the rotator and stdout, the same
// split the teacher's daemons use so a systemd journal still sees output
// without needing to tail the log file directly.
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	os.Stdout.Write(p)
	if logRotator != nil {
		logRotator.Write(p)
	}
	return len(p), nil
}

var backendLog = slog.NewBackend(logWriter{})

// subsystemLoggers maps each package that owns its own UseLogger hook to
// the short tag its records carry.
var subsystemLoggers = map[string]slog.Logger{
	"SRVR": backendLog.Logger("SRVR"),
	"CHAN": backendLog.Logger("CHAN"),
	"MEMP": backendLog.Logger("MEMP"),
	"DTBS": backendLog.Logger("DTBS"),
}

var log = subsystemLoggers["SRVR"]

// initLogRotator creates a rolling log file at logFile and wires every
// package's UseLogger hook to the subsystem logger map above. It must run
// before any consensus operation that would otherwise log through a
// disabled (discarding) logger.
func initLogRotator(logFile string) error {
	logDir := filepath.Dir(logFile)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory %s: %w", logDir, err)
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return fmt.Errorf("failed to create log rotator: %w", err)
	}
	logRotator = r

	blockchain.UseLogger(subsystemLoggers["CHAN"])
	mempool.UseLogger(subsystemLoggers["MEMP"])
	database.UseLogger(subsystemLoggers["DTBS"])

	return nil
}

// setLogLevels applies levelStr (one of slog's level names) to every
// subsystem logger, matching the --debuglevel knob config.go parses.
func setLogLevels(levelStr string) error {
	level, ok := slog.LevelFromString(levelStr)
	if !ok {
		return fmt.Errorf("unknown debug level %q", levelStr)
	}
	for _, logger := range subsystemLoggers {
		logger.SetLevel(level)
	}
	return nil
}
