// Package cmd holds the dialognorm CLI. It resolves students, weeks, task
// counts, and flags, then hands fully resolved parameters to the core; the
// core never parses arguments or environment itself.
package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for dialognorm.
func NewRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "dialognorm",
		Short:         "Learner dialogue document parsing and normalization",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("config", "", "Path to a dialognorm config file")

	rootCmd.AddCommand(newProcessCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}
