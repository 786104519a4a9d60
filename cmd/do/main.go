package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/templui/plateshare/cmd/do/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "do",
		Short:        "Development tasks for PlateShare",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(cmd.DevCmd(), cmd.GenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
