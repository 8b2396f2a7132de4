// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "github.com/decred/slog"

// log is the package-level logger used throughout consensus validation. It
// is disabled by default and activated by callers (typically cmd/scnoded)
// via UseLogger.
var log = slog.Disabled

// UseLogger sets the package-wide logger used by this package. Called from
// the main package wiring to plug in a rotating-file + console backend.
func UseLogger(logger slog.Logger) {
	log = logger
}
