package main

import (
	"heritage/internal/mcp"

	"github.com/spf13/cobra"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the heritage tools over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log := newLogger(cfg)
			registry, err := newRegistry(cfg)
			if err != nil {
				return err
			}
			log.Info("serving %d tools over stdio", len(registry.Descriptors()))
			return mcp.NewServer(registry, version, log).ServeStdio(cmd.Context())
		},
	}
}
