package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mezonai/simledger/config"
	"github.com/mezonai/simledger/exception"
	"github.com/mezonai/simledger/keys"
	"github.com/mezonai/simledger/ledger"
	"github.com/mezonai/simledger/logx"
	"github.com/mezonai/simledger/monitoring"
	"github.com/mezonai/simledger/report"
	"github.com/spf13/cobra"
)

var accountsConfig struct {
	ConfigPath  string
	Count       int
	JSON        bool
	MetricsAddr string
}

var accountsCmd = &cobra.Command{
	Use:   "accounts [flags]",
	Short: "Create synthetic accounts and list them",
	Long: `Creates a fresh in-memory ledger, generates the requested number of accounts
with the configured default balance and nonce, and prints them.

Examples:
  # Create and print the default number of accounts
  accounts

  # Create 20 accounts from a YAML config, print as JSON
  accounts --config config/ledger.yml --count 20 --json

  # Keep serving prometheus metrics after printing
  accounts --metrics-addr :9100`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadLedgerConfig(accountsConfig.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load ledger config: %w", err)
		}

		count := accountsConfig.Count
		if count == 0 {
			count = cfg.DisplayAccountCount
		}

		monitoring.InitMetrics()
		ld := ledger.NewLedger(keys.NewEd25519Provider(), cfg)
		if err := ld.CreateAccounts(count); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if accountsConfig.JSON {
			err = report.WriteJSON(out, ld.ListAccounts(), cfg.DisplayAccountCount)
		} else {
			err = report.Print(out, ld.ListAccounts(), cfg.DisplayAccountCount)
		}
		if err != nil {
			return err
		}

		if accountsConfig.MetricsAddr != "" {
			return serveMetrics(cmd.Context(), accountsConfig.MetricsAddr)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(accountsCmd)

	accountsCmd.Flags().StringVarP(&accountsConfig.ConfigPath, "config", "c", "", "Ledger config file (.yml or .ini), defaults are used when empty")
	accountsCmd.Flags().IntVarP(&accountsConfig.Count, "count", "n", 0, "Number of accounts to create (defaults to display_account_count)")
	accountsCmd.Flags().BoolVar(&accountsConfig.JSON, "json", false, "Print accounts as JSON")
	accountsCmd.Flags().StringVar(&accountsConfig.MetricsAddr, "metrics-addr", "", "Serve prometheus metrics on this address until interrupted")
}

func loadLedgerConfig(path string) (*config.LedgerConfig, error) {
	if path == "" {
		return config.DefaultLedgerConfig(), nil
	}
	return config.LoadLedgerConfig(path)
}

func serveMetrics(ctx context.Context, addr string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	monitoring.RegisterMetrics(mux)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	exception.SafeGo("MetricsServer", func() {
		logx.Info("MONITORING", "Serving metrics on ", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	})

	select {
	case err := <-errCh:
		return fmt.Errorf("metrics server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logx.Info("MONITORING", "Shutting down metrics server")
	return srv.Shutdown(shutdownCtx)
}
