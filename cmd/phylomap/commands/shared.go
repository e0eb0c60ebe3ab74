package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/phylomap/phylomap/config"
	"github.com/phylomap/phylomap/graph"
	"github.com/phylomap/phylomap/logger"
)

// loadConfig resolves the effective configuration for a command: the
// --config file when given, otherwise the usual env > project > defaults
// chain.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

// loadArtifact fetches and parses the graph artifact named by --source,
// falling back to the configured data source when the flag is empty.
func loadArtifact(ctx context.Context, cmd *cobra.Command, cfg *config.Config) (*graph.Graph, string, error) {
	source, _ := cmd.Flags().GetString("source")
	if source == "" {
		source = cfg.Data.Source
	}

	loader := graph.NewLoader(logger.Logger)
	g, err := loader.Load(ctx, source)
	if err != nil {
		return nil, source, err
	}
	return g, source, nil
}
