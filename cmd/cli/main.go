package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/keshon/zoomer-grok/internal/config"
	"github.com/keshon/zoomer-grok/internal/mind"
	"github.com/keshon/zoomer-grok/internal/storage"
)

var storagePath string

func main() {
	root := &cobra.Command{
		Use:   "zoomer-grok-cli",
		Short: "Inspect zoomer-grok state offline",
	}
	root.PersistentFlags().StringVarP(&storagePath, "storage", "s", "", "datastore file (default: STORAGE_PATH or datastore.json)")

	root.AddCommand(ledgerCmd())
	root.AddCommand(configCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func resolveStoragePath() string {
	if storagePath != "" {
		return storagePath
	}
	if p := os.Getenv("STORAGE_PATH"); p != "" {
		return p
	}
	return "datastore.json"
}

func openLedger() (*mind.Ledger, func() error, error) {
	store, err := storage.New(resolveStoragePath(), zerolog.Nop())
	if err != nil {
		return nil, nil, err
	}
	ledger, err := mind.NewLedger(store, mind.DefaultLedgerConfig(), mind.NewTimeSeededRand())
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return ledger, store.Close, nil
}

func ledgerCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "ledger",
		Short: "Read the XP ledger",
	}

	top := &cobra.Command{
		Use:   "top [n]",
		Short: "List the top users by level and XP",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := 10
			if len(args) == 1 {
				v, err := strconv.Atoi(args[0])
				if err != nil || v <= 0 {
					return fmt.Errorf("n must be a positive number, got %q", args[0])
				}
				n = v
			}
			ledger, closeFn, err := openLedger()
			if err != nil {
				return err
			}
			defer closeFn()

			out := cmd.OutOrStdout()
			for i, r := range ledger.Top(n) {
				fmt.Fprintf(out, "%2d. %-20s level %-3d xp %d\n", i+1, r.UserID, r.Level, r.XP)
			}
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show <user-id>",
		Short: "Show one user's record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, closeFn, err := openLedger()
			if err != nil {
				return err
			}
			defer closeFn()

			rec, ok := ledger.Get(args[0])
			if !ok {
				return fmt.Errorf("no record for %s", args[0])
			}
			need := ledger.Config().XPNeeded(rec.Level)
			fmt.Fprintf(cmd.OutOrStdout(), "user %s: level %d, xp %d, next level at %d\n", args[0], rec.Level, rec.XP, need)
			return nil
		},
	}

	c.AddCommand(top, show)
	return c
}

func configCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Configuration helpers",
	}
	c.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Load .env and the environment, validate, and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if _, err := cfg.Mind(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", cfg.Redacted())
			return nil
		},
	})
	return c
}
