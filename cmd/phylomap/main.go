package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phylomap/phylomap/cmd/phylomap/commands"
	"github.com/phylomap/phylomap/logger"
)

var rootCmd = &cobra.Command{
	Use:   "phylomap",
	Short: "phylomap - interactive airport/lineage graph visualization",
	Long: `phylomap serves an interactive visualization of a heterogeneous graph
linking airports and viral lineages through flight, sampling, evolution,
and temporal edges.

Available commands:
  serve    - Start the visualization server
  export   - Render a graph artifact to a standalone SVG
  inspect  - Print summary statistics for a graph artifact
  version  - Show version information

Examples:
  phylomap serve                          # serve graph.json on the default port
  phylomap serve --source data/run42.json --port 9000
  phylomap export --source graph.json --out snapshot.svg
  phylomap inspect --source graph.json --min-flights 50`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		if err := logger.InitializeWithLevel(logger.VerbosityToLevel(verbosity)); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().String("config", "", "Path to a phylomap.toml config file")

	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.ExportCmd)
	rootCmd.AddCommand(commands.InspectCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
