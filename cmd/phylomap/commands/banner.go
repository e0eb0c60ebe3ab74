package commands

import (
	"fmt"

	"github.com/phylomap/phylomap/logger"
	"github.com/phylomap/phylomap/version"
)

// printStartupBanner prints the user-friendly startup message
func printStartupBanner(verbosity int, source string, port int) {
	cyan := "\033[36m"
	green := "\033[32m"
	yellow := "\033[33m"
	blue := "\033[34m"
	bold := "\033[1m"
	reset := "\033[0m"

	versionInfo := version.Get()

	fmt.Printf("\n%s%s", cyan, bold)
	fmt.Printf("   ╔════════════════════════════════════════════╗\n")
	fmt.Printf("   ║                                            ║\n")
	fmt.Printf("   ║   ██████  ██   ██ ██    ██ ██      ██████  ║\n")
	fmt.Printf("   ║   ██   ██ ██   ██  ██  ██  ██     ██    ██ ║\n")
	fmt.Printf("   ║   ██████  ███████   ████   ██     ██    ██ ║\n")
	fmt.Printf("   ║   ██      ██   ██    ██    ██     ██    ██ ║\n")
	fmt.Printf("   ║   ██      ██   ██    ██    ██████  ██████  ║\n")
	fmt.Printf("   ║                             ─ map ─        ║\n")
	fmt.Printf("   ║                                            ║\n")
	fmt.Printf("   ║   ✈ Airports   🧬 Lineages   ⇄ Flights     ║\n")
	fmt.Printf("   ║                                            ║\n")
	fmt.Printf("   ╚════════════════════════════════════════════╝%s\n\n", reset)

	fmt.Printf("%s%s┌─ phylomap Info ──────────────────────────────┐%s\n", green, bold, reset)
	fmt.Printf("%s│%s Version:   %s (commit %s)\n", green, reset, versionInfo.Version, versionInfo.Short())
	fmt.Printf("%s│%s Built:     %s\n", green, reset, versionInfo.BuildTime)
	fmt.Printf("%s│%s Verbosity: %s\n", green, reset, logger.LevelName(verbosity))
	fmt.Printf("%s│%s Source:    %s\n", green, reset, source)
	fmt.Printf("%s│%s URL:       http://localhost:%d\n", green, reset, port)
	fmt.Printf("%s└──────────────────────────────────────────────┘%s\n", green, reset)

	fmt.Printf("\n%s%s✨ Open the URL to explore the graph%s\n", yellow, bold, reset)
	fmt.Printf("%s💡 Press Ctrl+C to stop%s\n\n", blue, reset)
}
