package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the dialognorm version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dialognorm %s\n", Version)
		},
	}
}
