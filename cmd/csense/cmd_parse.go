package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/csense/cpp/parser"
	"github.com/dhamidi/csense/cpp/preprocessor"
)

func newParseCmd() *cobra.Command {
	var showIncludes bool

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a C/C++ file and dump the tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read source file: %w", err)
			}

			pp := preprocessor.New(string(data))
			processed := pp.Process()

			if showIncludes {
				for _, include := range pp.IncludedPaths() {
					fmt.Println(include)
				}
				return nil
			}

			tree := parser.Parse([]byte(processed))
			fmt.Print(tree.String())
			return nil
		},
	}

	cmd.Flags().BoolVar(&showIncludes, "includes", false, "list include directives instead of the tree")

	return cmd
}
