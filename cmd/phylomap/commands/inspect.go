package commands

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/phylomap/phylomap/errors"
	"github.com/phylomap/phylomap/graph"
)

// InspectCmd prints summary statistics for a graph artifact
var InspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print summary statistics for a graph artifact",
	Long: `Load a graph artifact and print node/edge composition plus flight
route statistics, without starting the server.`,
	RunE: runInspect,
}

var (
	inspectSource     string
	inspectMinFlights float64
	inspectTop        int
)

func init() {
	InspectCmd.Flags().StringVar(&inspectSource, "source", "", "Graph artifact path or URL (overrides config)")
	InspectCmd.Flags().Float64Var(&inspectMinFlights, "min-flights", 0, "Exclude routes with fewer flights")
	InspectCmd.Flags().IntVar(&inspectTop, "top", 10, "Number of busiest routes to show")
}

func runInspect(cmd *cobra.Command, args []string) error {
	if inspectTop < 1 {
		return errors.NewInvalidRequestError("--top must be at least 1, got %d", inspectTop)
	}
	if inspectMinFlights < 0 {
		return errors.NewInvalidRequestError("--min-flights must not be negative, got %g", inspectMinFlights)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}

	g, source, err := loadArtifact(cmd.Context(), cmd, cfg)
	if err != nil {
		return errors.Wrap(err, "failed to load graph artifact")
	}

	pterm.DefaultSection.Printf("Graph: %s", source)

	stats := g.Meta.Stats
	composition := pterm.TableData{
		{"", "Count"},
		{"Airports", strconv.Itoa(stats.Airports)},
		{"Lineages", strconv.Itoa(stats.Lineages)},
		{"Total nodes", strconv.Itoa(stats.TotalNodes)},
		{"Total edges", strconv.Itoa(stats.TotalEdges)},
	}
	if stats.DroppedEdges > 0 {
		composition = append(composition,
			[]string{"Dropped edges", strconv.Itoa(stats.DroppedEdges)})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(composition).Render(); err != nil {
		return err
	}

	edgeCounts := make(map[string]int)
	for _, link := range g.Links {
		edgeCounts[link.Type]++
	}
	edgeTable := pterm.TableData{{"Edge type", "Count"}}
	for _, edgeType := range graph.EdgeTypeNames() {
		if n := edgeCounts[edgeType]; n > 0 {
			edgeTable = append(edgeTable, []string{edgeType, strconv.Itoa(n)})
		}
	}
	pterm.Println()
	if err := pterm.DefaultTable.WithHasHeader().WithData(edgeTable).Render(); err != nil {
		return err
	}

	routes := g.FlightRouteStats(inspectMinFlights, inspectTop)
	if routes.TotalRoutes == 0 {
		pterm.Println()
		pterm.Info.Println("No flight routes match the threshold")
		return nil
	}

	pterm.DefaultSection.Printf("Flight routes (min %g flights)", inspectMinFlights)
	pterm.Printf("Routes: %d   Flights: %g   Avg/route: %.1f   Median/route: %.1f\n\n",
		routes.TotalRoutes, routes.TotalFlights, routes.AvgPerRoute, routes.MedianPerRoute)

	routeTable := pterm.TableData{{"#", "Route", "Flights"}}
	for i, route := range routes.TopRoutes {
		routeTable = append(routeTable, []string{
			strconv.Itoa(i + 1),
			fmt.Sprintf("%s → %s", route.Origin, route.Destination),
			strconv.FormatFloat(route.Flights, 'f', -1, 64),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(routeTable).Render()
}
