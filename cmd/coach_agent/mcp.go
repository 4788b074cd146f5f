package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/victorzhu443/firstplay-backend/internal/mcptools"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the skill gap tools over MCP (stdio)",
	Long:  `Run a Model Context Protocol server on stdin/stdout exposing the compute_gap tool.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return mcptools.ServeStdio(ctx, version)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
