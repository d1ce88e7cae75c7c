package main

import (
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/csense/config"
	"github.com/dhamidi/csense/cpp/codebase"
)

func newLSPCmd() *cobra.Command {
	var configPath string
	var verbose int

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			verbosity := cfg.Verbosity
			if cmd.Flags().Changed("verbose") {
				verbosity = verbose
			}
			commonlog.Configure(verbosity, nil)

			server := codebase.NewLSPServer(version, cfg)
			return server.RunStdio()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultFileName, "path to the config file")
	cmd.Flags().IntVarP(&verbose, "verbose", "v", 0, "log verbosity (stderr)")

	return cmd
}
