package commands

import (
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/phylomap/phylomap/errors"
	"github.com/phylomap/phylomap/layout"
	"github.com/phylomap/phylomap/logger"
	"github.com/phylomap/phylomap/render"
)

// ExportCmd renders a graph artifact to a standalone SVG without serving
var ExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render a graph artifact to a standalone SVG",
	Long: `Load a graph artifact, run the force simulation headlessly until it
settles, and write the result as an SVG document.`,
	RunE: runExport,
}

var (
	exportSource string
	exportOut    string
	exportMode   string
	exportTicks  int
)

func init() {
	ExportCmd.Flags().StringVar(&exportSource, "source", "", "Graph artifact path or URL (overrides config)")
	ExportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default: timestamped name in the working directory)")
	ExportCmd.Flags().StringVar(&exportMode, "mode", string(layout.ModeForce), "Layout mode: force, geographic, or radial")
	ExportCmd.Flags().IntVar(&exportTicks, "ticks", 300, "Maximum simulation ticks before rendering")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	g, source, err := loadArtifact(cmd.Context(), cmd, cfg)
	if err != nil {
		return errors.Wrap(err, "failed to load graph artifact")
	}

	simCfg := layout.Config{
		Width:          cfg.Layout.CanvasWidth,
		Height:         cfg.Layout.CanvasHeight,
		ChargeStrength: cfg.Layout.ChargeStrength,
		LinkDistance:   cfg.Layout.LinkDistance,
		NodeSize:       cfg.Layout.NodeSize,
	}
	sim := layout.New(g, simCfg, logger.Logger)
	if err := sim.SetMode(layout.Mode(exportMode)); err != nil {
		return err
	}

	spinner, _ := pterm.DefaultSpinner.Start("Settling layout...")
	ticks := 0
	for ticks < exportTicks && sim.Tick() {
		ticks++
	}
	if spinner != nil {
		spinner.Success("Layout settled after ", ticks, " ticks")
	}

	style := render.DefaultStyle()
	style.NodeSize = cfg.Layout.NodeSize
	scene := render.BuildScene(g, sim.Positions(), style, render.Highlight{})

	svg, err := render.ExportSVG(scene, cfg.Layout.CanvasWidth, cfg.Layout.CanvasHeight)
	if err != nil {
		return errors.Wrap(err, "failed to render SVG")
	}

	out := exportOut
	if out == "" {
		out = render.ExportFilename(time.Now())
	}
	if err := os.WriteFile(out, svg, 0o644); err != nil {
		return errors.Wrap(err, "failed to write SVG file")
	}

	pterm.Success.Printf("Exported %s (%d nodes, %d edges) to %s\n",
		source, len(g.Nodes), len(g.Links), out)
	return nil
}
