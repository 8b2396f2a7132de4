// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command scnoded runs the full node described by SPEC_FULL.md: it opens
// the goleveldb-backed chain-state database, wires it and a proof
// verifier into a blockchain.ChainContext, wires a mempool.TxPool on top
// composing both directions of the coinview.Feed/MempoolNotifier seam,
// and then idles, matching the teacher's own daemon shape of
// "build every subsystem, wire them together, block until signaled".
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/scnode/scnode/blockchain"
	"github.com/scnode/scnode/database"
	"github.com/scnode/scnode/mempool"
	"github.com/scnode/scnode/scutil"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	if err := initLogRotator(filepath.Join(cfg.LogDir, defaultLogFilename)); err != nil {
		return err
	}
	if err := setLogLevels(cfg.DebugLevel); err != nil {
		return err
	}

	log.Infof("Starting scnoded on %s", cfg.params.Name)

	if cfg.MinRelayTxFee != 0 {
		fee, err := scutil.NewAmount(cfg.MinRelayTxFee)
		if err != nil {
			return fmt.Errorf("invalid --minrelaytxfee: %w", err)
		}
		// --minrelaytxfee is per kB; Params.MinRelayTxFee is per byte.
		params := *cfg.params
		params.MinRelayTxFee = int64(fee) / 1000
		cfg.params = &params
	}

	db, err := database.Open(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open chain database: %w", err)
	}
	defer db.Close()

	chain := blockchain.NewChainContext(cfg.params)
	chain.SetSource(db)

	mode, err := cfg.proofVerificationMode()
	if err != nil {
		return err
	}
	chain.SetProofVerifier(nil, mode)

	pool := mempool.NewTxPool(mempool.Config{
		Chain: chain,
		Policy: mempool.Policy{
			AllowFree:                cfg.AllowFreeTxs,
			RequireStandard:          cfg.RequireStandard,
			MaxCswInputsPerSidechain: cfg.MaxCswPerScid,
			DeepHistoryWindow:        int32(cfg.params.ReplayProtectionDeepHistoryWindow),
		},
	})
	chain.SetMempool(pool)

	log.Infof("Chain database opened at %s, mempool ready", cfg.DataDir)

	return waitForShutdown()
}

// waitForShutdown blocks until SIGINT/SIGTERM, the same interrupt
// handling the teacher's daemon entry point installs before starting its
// own subsystems.
func waitForShutdown() error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	log.Infof("Shutdown signal received, exiting")
	return nil
}
