package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shrilakshmikakati/certifiacte-manager-sub001/blobstore"
	"github.com/shrilakshmikakati/certifiacte-manager-sub001/config"
	"github.com/shrilakshmikakati/certifiacte-manager-sub001/crypto"
	"github.com/shrilakshmikakati/certifiacte-manager-sub001/ledger"
	"github.com/shrilakshmikakati/certifiacte-manager-sub001/registry"
	"github.com/shrilakshmikakati/certifiacte-manager-sub001/storage"
	bboltstorage "github.com/shrilakshmikakati/certifiacte-manager-sub001/storage/bbolt"
	"github.com/shrilakshmikakati/certifiacte-manager-sub001/storage/memory"
)

var rootCmd = &cobra.Command{
	Use:   "certmgr",
	Short: "certmgr manages tamper-evident course certificates",
	Long: `A certificate issuance tool: batch-imports recipient data, computes
content hashes, encrypts payloads, and drives the approval lifecycle.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildRegistry wires a Registry from environment configuration. An empty
// database path selects in-memory records and blobs; a set path persists
// records in bbolt and payload blobs in a sibling directory, so payload
// references stay resolvable across invocations. External gateway URLs are
// not dialed by this CLI, which always uses local collaborators.
func buildRegistry() (*registry.Registry, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var repo storage.Repository
	var blobs blobstore.Store = blobstore.NewMemory()
	cleanup := func() {}
	if cfg.DatabasePath != "" {
		store, err := bboltstorage.Open(cfg.DatabasePath, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("opening record database: %w", err)
		}
		repo = store
		cleanup = func() { _ = store.Close() }

		fileBlobs, err := blobstore.NewFileStore(cfg.DatabasePath + ".blobs")
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("opening payload store: %w", err)
		}
		blobs = fileBlobs
	} else {
		repo = memory.NewRepository()
	}

	engine := crypto.NewEngine(crypto.WithIterations(cfg.KDFIterations))
	reg := registry.New(repo, blobs, ledger.NewMemory(), engine,
		registry.WithLogger(logger),
		registry.WithPasswordLength(cfg.PasswordLength),
	)
	return reg, cleanup, nil
}
