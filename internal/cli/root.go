// Package cli implements the chapterctl commands for inspecting and
// repairing persisted chapter loss data.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/louisbranch/ironmarch/internal/chapter/ledger"
	"github.com/louisbranch/ironmarch/internal/chapter/persist"
	"github.com/louisbranch/ironmarch/internal/platform/config"
	"github.com/louisbranch/ironmarch/internal/platform/otel"
	"github.com/louisbranch/ironmarch/internal/storage"
	"github.com/louisbranch/ironmarch/internal/storage/bbolt"
	"github.com/louisbranch/ironmarch/internal/storage/memory"
	"github.com/louisbranch/ironmarch/internal/storage/sqlite"
	"github.com/louisbranch/ironmarch/internal/telemetry"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	dbPath      string
	backendFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "chapterctl",
	Short: "Inspect and repair chapter loss data",
	Long:  "Operator tooling for the chapter loss engine: inspect persisted chapters, verify and repair corrupted blobs, promote backups, and manage suspend records.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if cfg.Otel.Endpoint == "" {
			return
		}
		shutdown, err := otel.Setup(cmd.Context(), "chapterctl", cfg.Otel.Endpoint)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: tracing disabled: %v\n", err)
			return
		}
		otelShutdown = shutdown
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if otelShutdown != nil {
			_ = otelShutdown(cmd.Context())
		}
	},
}

var otelShutdown func(context.Context) error

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (overrides config)")
	RootCmd.PersistentFlags().StringVarP(&backendFlag, "backend", "b", "", "Storage backend: bbolt, sqlite, or memory (overrides config)")
}

func loadConfig() config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		exitErr("load config", err)
	}
	if dbPath != "" {
		cfg.Storage.Path = dbPath
	}
	if backendFlag != "" {
		cfg.Storage.Backend = config.StorageBackend(backendFlag)
	}
	return cfg
}

func openKV(cfg config.Config) storage.KV {
	var (
		kv  storage.KV
		err error
	)
	switch cfg.Storage.Backend {
	case config.BackendBBolt:
		kv, err = bbolt.Open(cfg.Storage.Path)
	case config.BackendSQLite:
		kv, err = sqlite.Open(cfg.Storage.Path)
	case config.BackendMemory:
		kv = memory.NewStore()
	default:
		exitErr("open store", fmt.Errorf("unknown backend %q", cfg.Storage.Backend))
	}
	if err != nil {
		exitErr("open store", err)
	}
	return kv
}

// openGateway opens the configured store and wraps it in a gateway with
// the ledger repair hook and a telemetry journal on the same store.
func openGateway() (*persist.Gateway, storage.KV) {
	kv := openKV(loadConfig())
	gateway := persist.New(kv,
		persist.WithRecoveryHook(ledger.NewRepairHook()),
		persist.WithTelemetry(telemetry.NewEmitter(telemetry.NewJournal(kv))),
	)
	return gateway, kv
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
