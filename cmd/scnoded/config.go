// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	flags "github.com/jessevdk/go-flags"

	"github.com/scnode/scnode/blockchain/validation"
	"github.com/scnode/scnode/chaincfg"
)

const (
	defaultConfigFilename = "scnoded.conf"
	defaultDataDirname    = "data"
	defaultLogFilename    = "scnoded.log"
	defaultLogLevel       = "info"
	defaultProofMode      = "disabled"
)

// config holds every knob scnoded accepts, parsed first from
// scnoded.conf and then overridden by the command line, matching the
// teacher's two-pass go-flags convention (an ini pass followed by a
// flags pass over the same struct).
type config struct {
	ConfigFile string `short:"C" long:"configfile" description:"Path to configuration file"`
	DataDir    string `short:"b" long:"datadir" description:"Directory to store data"`
	LogDir     string `long:"logdir" description:"Directory to log output"`
	DebugLevel string `short:"d" long:"debuglevel" description:"Logging level: trace, debug, info, warn, error, critical"`

	RegNet bool `long:"regnet" description:"Use the regression test network"`

	Listeners []string `long:"listen" description:"Add an address:port to listen for connections"`

	MinRelayTxFee   float64 `long:"minrelaytxfee" description:"Minimum relay fee rate, in coins per kB, for transaction relay and mempool admission"`
	RequireStandard bool    `long:"requirestandard" description:"Require standard transactions for relay and mempool admission"`
	AllowFreeTxs    bool    `long:"allowfreetxs" description:"Admit transactions below the relay fee floor into the mempool"`
	MaxCswPerScid   int     `long:"maxcswpersidechain" description:"Maximum pending csw inputs the mempool admits per sidechain"`

	ProofVerification string `long:"proofverification" description:"Proof verification mode: disabled, sync, async"`

	params *chaincfg.Params
}

// defaultConfig returns a config pre-populated with the same defaults the
// teacher's own daemon ships, before the ini file or command line have
// had a chance to override anything.
func defaultConfig() *config {
	dataDir := defaultAppDataDir()
	return &config{
		ConfigFile:        filepath.Join(dataDir, defaultConfigFilename),
		DataDir:           filepath.Join(dataDir, defaultDataDirname),
		LogDir:            dataDir,
		DebugLevel:        defaultLogLevel,
		MaxCswPerScid:     64,
		ProofVerification: defaultProofMode,
		params:            chaincfg.MainNetParams(),
	}
}

// loadConfig parses in three steps: a command-line pre-parse so
// --configfile can name the ini file, an ini-file parse of that file
// (silently skipped if absent, since a fresh node has none yet), then a
// second command-line parse of the same struct so flags always win.
func loadConfig() (*config, []string, error) {
	preCfg := defaultConfig()
	preParser := flags.NewParser(preCfg, flags.Default&^flags.PrintErrors)
	_, err := preParser.Parse()
	if err != nil {
		if ferr, ok := err.(*flags.Error); !ok || ferr.Type != flags.ErrHelp {
			return nil, nil, err
		}
	}

	cfg := preCfg
	if _, err := os.Stat(cfg.ConfigFile); err == nil {
		iniParser := flags.NewIniParser(flags.NewParser(cfg, flags.Default))
		if err := iniParser.ParseFile(cfg.ConfigFile); err != nil {
			return nil, nil, fmt.Errorf("failed to parse %s: %w", cfg.ConfigFile, err)
		}
	}

	parser := flags.NewParser(cfg, flags.Default)
	remainingArgs, err := parser.Parse()
	if err != nil {
		return nil, nil, err
	}

	if cfg.RegNet {
		cfg.params = chaincfg.RegNetParams()
	} else {
		cfg.params = chaincfg.MainNetParams()
	}

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, nil, fmt.Errorf("failed to create data directory %s: %w", cfg.DataDir, err)
	}

	return cfg, remainingArgs, nil
}

// proofVerificationMode translates the --proofverification string into
// validation.ProofVerificationMode, the knob spec.md §4.4 stage 8 reads.
func (cfg *config) proofVerificationMode() (validation.ProofVerificationMode, error) {
	switch cfg.ProofVerification {
	case "", "disabled":
		return validation.ProofVerificationDisabled, nil
	case "sync":
		return validation.ProofVerificationSync, nil
	case "async":
		return validation.ProofVerificationAsync, nil
	default:
		return 0, fmt.Errorf("unknown proof verification mode %q", cfg.ProofVerification)
	}
}

// defaultAppDataDir resolves the per-OS application-data root scnoded
// stores its chain database and logs under, following the same
// %LOCALAPPDATA%/~/Library/~/.config layering the teacher's own daemons
// use.
func defaultAppDataDir() string {
	appName := "scnoded"
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("LOCALAPPDATA"); appData != "" {
			return filepath.Join(appData, appName)
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", appName)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", appName)
	default:
		return filepath.Join(home, "."+appName)
	}
}
