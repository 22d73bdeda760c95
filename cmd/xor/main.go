// Command xor trains a small two-branch network on XOR with the dyngrad
// autodiff engine.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "v0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	root := &cobra.Command{
		Use:           "xor",
		Short:         "Define-by-run autodiff demo: XOR training",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindConfig(v, cmd)
		},
	}
	root.PersistentFlags().String(keyConfig, "", "config file (yaml, json or toml)")
	root.PersistentFlags().String(keyLogLevel, "info", "log level: debug, info, warn, error")

	root.AddCommand(newTrainCmd(v), newDemoCmd(), newPredictCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dyngrad xor %s\n", version)
		},
	}
}
