package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ajitpratap0/canvas-engine/internal/engine"
	canvasmcp "github.com/ajitpratap0/canvas-engine/internal/mcp"
)

func mcpCmd() *cobra.Command {
	var load string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP (Model Context Protocol) server over stdio",
		Long: `Starts an MCP JSON-RPC 2.0 server that reads from stdin and writes to stdout.
All diagnostic logs go to stderr so that stdout remains exclusively MCP protocol traffic.

Tools exposed:
  canvas_load      — load a record batch into the session
  canvas_view      — project the records as table, kanban, or gantt
  canvas_move      — move a record to another kanban column
  canvas_edit      — set one field value on one record
  canvas_add       — append a blank record
  canvas_delete    — delete records by id
  canvas_search    — search the loaded records
  canvas_generate  — generate a batch from a prompt via Claude
  canvas_stats     — session statistics

If no Claude API key is configured the server still starts;
the canvas_generate tool will return MCP error responses.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger()

			eng := engine.New(logger, nil, nil, engineOptions()...)
			if load != "" {
				data, err := readInput(load)
				if err != nil {
					return fmt.Errorf("mcp: %w", err)
				}
				if err := eng.LoadJSON(data); err != nil {
					return fmt.Errorf("mcp: loading initial batch: %w", err)
				}
			}

			gen := newGenerator(logger)
			if gen == nil {
				// Log to stderr and continue with a nil generator.
				// Tool calls will return per-call errors rather than crashing.
				logger.Warn("mcp: no Claude API key; canvas_generate will fail per call")
			}

			srv := canvasmcp.NewServer(eng, gen, logger)

			// Use a standard log.Logger pointing at stderr for the mcp-go error logger.
			errLogger := log.New(os.Stderr, "mcp: ", log.LstdFlags)

			logger.Info("mcp: canvas-engine MCP server starting", "transport", "stdio")

			return mcpserver.ServeStdio(
				srv.MCPServer(),
				mcpserver.WithErrorLogger(errLogger),
			)
		},
	}

	cmd.Flags().StringVar(&load, "load", "", "record batch file to load at startup")
	return cmd
}
