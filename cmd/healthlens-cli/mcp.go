package main

import (
	"fmt"
	"log/slog"

	healthmcp "github.com/claude/healthlens/internal/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

var mcpServerURL string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve a remote HealthLens server to MCP clients over stdio",
	Long: `Bridge a HealthLens server to an MCP client such as a desktop assistant.

Tool calls are forwarded to the server's REST API. Logs go to stderr.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVarP(&mcpServerURL, "server", "s", "", "HealthLens server URL")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	if mcpServerURL == "" {
		return fmt.Errorf("--server is required")
	}
	log := newLogger()

	client := healthmcp.NewHTTPClient(mcpServerURL)
	s := healthmcp.New(client, client, Version, log)

	log.Info("MCP stdio bridge starting", "server", mcpServerURL, "version", Version)
	return server.ServeStdio(s, server.WithErrorLogger(slog.NewLogLogger(log.Handler(), slog.LevelError)))
}
