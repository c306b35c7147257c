package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/yutashx/openapi-mcp-server/internal/common"
	"github.com/yutashx/openapi-mcp-server/internal/config"
	mcpsrv "github.com/yutashx/openapi-mcp-server/internal/mcp"
	"github.com/yutashx/openapi-mcp-server/internal/spec"
)

var (
	flagConfig  string
	flagSpec    string
	flagBaseURL string
	flagPort    int
	flagStdio   bool
)

var rootCmd = &cobra.Command{
	Use:   "openapi-mcp",
	Short: "Serve an OpenAPI-described HTTP API as MCP tools",
	Long: `openapi-mcp loads an OpenAPI 3.x document, converts every operation
into an MCP tool, and serves the tools over stdio or streamable HTTP.
Tool calls are dispatched as HTTP requests against the upstream base URL.`,
	RunE:         run,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(config.GetFullVersion())
	},
}

func init() {
	rootCmd.Flags().StringVar(&flagConfig, "config", "openapi-mcp.toml", "path to config file")
	rootCmd.Flags().StringVar(&flagSpec, "spec", "", "path or URL of the OpenAPI document")
	rootCmd.Flags().StringVar(&flagBaseURL, "base-url", "", "base URL of the upstream API")
	rootCmd.Flags().IntVar(&flagPort, "port", 0, "HTTP transport port (ignored with --stdio)")
	rootCmd.Flags().BoolVar(&flagStdio, "stdio", false, "use stdio transport (for desktop MCP clients)")
	rootCmd.AddCommand(versionCmd)
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(flagConfig)
	if err != nil {
		return err
	}
	if flagSpec != "" {
		cfg.Spec.Path = flagSpec
	}
	if flagBaseURL != "" {
		cfg.Upstream.BaseURL = flagBaseURL
	}
	if flagPort != 0 {
		cfg.Server.Port = flagPort
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := common.NewLoggerFromConfig(cfg.Logging)

	doc, err := spec.Load(context.Background(), cfg.Spec.Path)
	if err != nil {
		return err
	}

	s := mcpsrv.NewServer(cfg, doc, logger)

	if flagStdio {
		// Stdio transport — reads stdin, writes stdout. Logs go to stderr.
		if err := server.ServeStdio(s); err != nil {
			return fmt.Errorf("stdio server error: %w", err)
		}
		return nil
	}

	httpServer := server.NewStreamableHTTPServer(s,
		server.WithStateLess(true),
	)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info().Str("addr", addr).Msg("starting MCP streamable HTTP server")
	if err := httpServer.Start(addr); err != nil {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}
