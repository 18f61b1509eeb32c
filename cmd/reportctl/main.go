package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "reportctl",
	Short: "File and track GAD incident reports from the terminal",
	Long: `reportctl walks you through the same step-by-step reporting flow as the
web portal. Progress is saved locally after every step, so you can stop
and pick up where you left off. Reports can be filed anonymously.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(trackCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
