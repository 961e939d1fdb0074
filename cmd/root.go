package cmd

import (
	"os"

	"github.com/mezonai/simledger/logx"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "simledger",
	Short: "Simulated blockchain account ledger",
	Long:  "Command line interface for creating and inspecting synthetic accounts on a simulated blockchain ledger.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logx.MirrorToStdout()
		}
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Mirror log output to stdout")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logx.Error("CMD", "Command execution failed:", err)
		os.Exit(1)
	}
}
