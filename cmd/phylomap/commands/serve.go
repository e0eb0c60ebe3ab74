package commands

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/phylomap/phylomap/errors"
	"github.com/phylomap/phylomap/logger"
	"github.com/phylomap/phylomap/server"
)

// ServeCmd starts the phylomap visualization server
var ServeCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"server"},
	Short:   "Start the phylomap visualization server",
	Long: `Launch the phylomap server. It loads the graph artifact, runs the
force simulation, and streams layout frames to connected browsers over
WebSocket.`,
	RunE: runServe,
}

var (
	servePort      int
	serveSource    string
	serveNoBrowser bool
	serveNoWatch   bool
)

func init() {
	ServeCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (overrides config)")
	ServeCmd.Flags().StringVar(&serveSource, "source", "", "Graph artifact path or URL (overrides config)")
	ServeCmd.Flags().BoolVar(&serveNoBrowser, "no-browser", false, "Disable automatic browser opening")
	ServeCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "Disable artifact file watching")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Default to Info for the server so startup progress is visible
	verbosity, _ := cmd.Flags().GetCount("verbose")
	if verbosity == 0 {
		verbosity = 1
		if err := logger.InitializeWithLevel(logger.VerbosityToLevel(verbosity)); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if serveSource != "" {
		cfg.Data.Source = serveSource
	}
	if serveNoWatch {
		cfg.Data.Watch = false
	}

	g, source, err := loadArtifact(cmd.Context(), cmd, cfg)
	if err != nil {
		// Serve the error state instead of exiting: the artifact watcher (or
		// an explicit reload) recovers once the file is fixed.
		pterm.Warning.Printf("Failed to load graph artifact: %v\n", err)
		g = server.ErrorGraph(err)
	}
	cfg.Data.Source = source

	printStartupBanner(verbosity, source, cfg.Server.Port)

	srv := server.New(cfg, g, verbosity, logger.Logger)

	var browserFunc func(string)
	if !serveNoBrowser {
		browserFunc = openBrowser
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(browserFunc)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return errors.Wrap(err, "server failed to start")
	case <-sigChan:
		pterm.Info.Println("\nShutting down gracefully (press Ctrl+C again to force)...")

		shutdownDone := make(chan error, 1)
		go func() {
			shutdownDone <- srv.Stop()
		}()

		select {
		case err := <-shutdownDone:
			if err != nil {
				return fmt.Errorf("shutdown error: %w", err)
			}
			pterm.Success.Println("Server stopped cleanly")
			return nil
		case <-sigChan:
			pterm.Warning.Println("\nForce shutdown - exiting immediately")
			os.Exit(1)
			return nil // unreachable
		}
	}
}

// openBrowser attempts to open the URL in the default browser
func openBrowser(url string) {
	var err error
	switch runtime.GOOS {
	case "darwin":
		err = exec.Command("open", url).Start()
	case "linux":
		err = exec.Command("xdg-open", url).Start()
	case "windows":
		err = exec.Command("cmd", "/c", "start", url).Start()
	}
	// Silently ignore errors - user can manually open the URL
	_ = err
}
