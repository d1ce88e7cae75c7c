package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dhamidi/csense/config"
	"github.com/dhamidi/csense/cpp/codebase"
	"github.com/dhamidi/csense/cpp/filedb"
)

func newCompleteCmd() *cobra.Command {
	var configPath string
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "complete <file> <line> <column>",
		Short: "Print completion suggestions for a cursor position",
		Long: `Print completion suggestions for a cursor position.

Lines are 1-based. The column is the number of characters to the left of
the cursor, so column 2 in "p." means the cursor sits right after the dot.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("line must be a number: %w", err)
			}
			column, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("column must be a number: %w", err)
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			file, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			cb := codebase.New(filedb.New(filepath.Dir(file)), cfg)
			entries, err := cb.GetSuggestions(file, line, column)
			if err != nil {
				return err
			}

			switch outputFormat {
			case "json":
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			case "text":
				for _, entry := range entries {
					fmt.Printf("%s\t%s\t%d\n", entry.Text, entry.Kind, entry.ReplaceLength)
				}
				return nil
			default:
				return fmt.Errorf("unknown format: %s", outputFormat)
			}
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultFileName, "path to the config file")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "output format (text, json)")

	return cmd
}
