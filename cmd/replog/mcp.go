package main

import (
	replogmcp "github.com/claude/replog/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server over stdio",
	Long: `Starts RepLog as an MCP server on standard input/output, for local agent
integration. Sessions live in this process. History comes from the configured
database, or from a running replog server when --remote is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer a.close()

		deps := replogmcp.Deps{
			Sessions:    a.sessions,
			Catalog:     a.catalog,
			Submitter:   a.submitter,
			Units:       a.settings,
			Metrics:     a.metrics,
			DefaultUser: a.user,
		}
		if remote, _ := cmd.Flags().GetString("remote"); remote != "" {
			deps.History = replogmcp.NewHTTPClient(remote)
			log.Info("using remote history", "url", remote)
		} else if a.db != nil {
			deps.History = a.db
		}

		log.Info("starting MCP server (stdio)", "version", Version)
		return mcpserver.ServeStdio(replogmcp.New(deps, Version, log))
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("remote", "", "base URL of a replog server to read history from")
}
