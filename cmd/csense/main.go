package main

import (
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "csense",
		Short: "A best-effort C/C++ completion engine",
	}

	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newCompleteCmd())
	rootCmd.AddCommand(newLSPCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
