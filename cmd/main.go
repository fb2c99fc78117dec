package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "call-booking",
		Short:         "Call slot booking service with scheduled reminders",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.toml", "path to TOML config file")

	root.AddCommand(
		newServeCmd(&configPath),
		newNotifierCmd(&configPath),
		newMigrateCmd(&configPath),
	)
	return root
}
