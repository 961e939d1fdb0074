package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/holiman/uint256"
	"github.com/mezonai/simledger/config"
	"github.com/mezonai/simledger/keys"
	"github.com/mezonai/simledger/ledger"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Walk one account through deductions, credits and nonce increments",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDemo(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(out io.Writer) error {
	cfg := config.DefaultLedgerConfig()
	cfg.DefaultAmount = uint256.NewInt(100)
	cfg.DefaultNonce = 0

	ld := ledger.NewLedger(keys.NewEd25519Provider(), cfg)
	if err := ld.CreateAccounts(1); err != nil {
		return err
	}

	var addr string
	for view := range ld.ListAccounts() {
		addr = view.Address
	}

	show := func(step string) error {
		balance, nonce, err := ld.GetBalance(addr)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%-24s balance=%s nonce=%d\n", step, balance.Dec(), nonce)
		return nil
	}

	fmt.Fprintf(out, "account %s\n", addr)
	if err := show("created"); err != nil {
		return err
	}
	if err := ld.DeductFunds(addr, uint256.NewInt(30)); err != nil {
		return err
	}
	if err := show("deduct 30"); err != nil {
		return err
	}
	if err := ld.AddFunds(addr, uint256.NewInt(50)); err != nil {
		return err
	}
	if err := show("add 50"); err != nil {
		return err
	}
	for i := 0; i < 2; i++ {
		if err := ld.IncrementNonce(addr); err != nil {
			return err
		}
	}
	if err := show("increment nonce x2"); err != nil {
		return err
	}

	err := ld.DeductFunds(addr, uint256.NewInt(200))
	if !errors.Is(err, ledger.ErrInsufficientFunds) {
		return fmt.Errorf("expected insufficient funds, got %v", err)
	}
	fmt.Fprintf(out, "deduct 200 rejected: %v\n", err)
	return show("final")
}
