package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/templui/plateshare/cmd/plateshare/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "plateshare",
		Short:        "Browse and manage PlateShare foods from the terminal",
		SilenceUsage: true,
	}

	env := cmd.Bind(rootCmd)
	rootCmd.AddCommand(cmd.FoodsCmd(env))
	rootCmd.AddCommand(cmd.FoodCmd(env))
	rootCmd.AddCommand(cmd.StatsCmd(env))
	rootCmd.AddCommand(cmd.RequestsCmd(env))
	rootCmd.AddCommand(cmd.AcceptCmd(env))
	rootCmd.AddCommand(cmd.RejectCmd(env))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
