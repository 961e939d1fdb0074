package cmd

import (
	"fmt"

	"github.com/mezonai/simledger/keys"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <address>",
	Short: "Check whether an address is well formed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		address := args[0]
		if !keys.NewEd25519Provider().ValidateAddressFormat(address) {
			return fmt.Errorf("invalid address: %s", address)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is a valid address\n", address)
		return nil
	},
}

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate one key pair and print it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		privKey, address, err := keys.NewEd25519Provider().GenerateKeyPair()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Address:     %s\nPrivate key: %s\n", address, privKey)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(keygenCmd)
}
