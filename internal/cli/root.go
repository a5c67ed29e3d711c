// Package cli defines the oldto command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oldto/oldto/internal/config"
	"github.com/oldto/oldto/internal/version"
)

var env string

var rootCmd = &cobra.Command{
	Use:          "oldto",
	Short:        "Serve and inspect the Old Toronto photo archive",
	Version:      fmt.Sprintf("%s (commit %s, built %s)", version.Version, version.Commit, version.Date),
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&env, "env", config.GetEnv(),
		"Configuration environment (local, dev, prod)")
}

func Execute() error {
	return rootCmd.Execute()
}
