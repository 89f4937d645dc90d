package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/latticelabs/lattice"
	"github.com/latticelabs/lattice/internal/config"
	"github.com/latticelabs/lattice/internal/logging"
	mcpadapter "github.com/latticelabs/lattice/pkg/adapters/mcp"
	"github.com/latticelabs/lattice/pkg/adapters/openrouter"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the Lattice engine as an MCP server over stdio.
This lets AI agents (like Claude Desktop) apply scene diffs and run the
assistant flow as tools.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		apiKey, err := cfg.OpenRouterKey()
		if err != nil {
			return err
		}

		// Logs must not corrupt JSON-RPC on stdout.
		log.SetOutput(os.Stderr)
		logger := logging.New(slog.LevelInfo)

		var clientOpts []openrouter.Option
		if cfg.OpenRouter.BaseURL != "" {
			clientOpts = append(clientOpts, openrouter.WithBaseURL(cfg.OpenRouter.BaseURL))
		}
		completer := openrouter.New(apiKey, clientOpts...)

		engine, err := lattice.New(completer, lattice.WithLogger(logger))
		if err != nil {
			return err
		}

		srv := mcpadapter.NewServer(engine.Flow(),
			mcpadapter.WithDefaultModel(cfg.DefaultModel))

		logger.Info("starting lattice MCP server (stdio)")
		return srv.ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
