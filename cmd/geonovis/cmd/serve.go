package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/geonovis/geonovis/internal/app"
	"github.com/spf13/cobra"
)

var (
	serveAddr   string
	serveAssets string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveAssets, "assets", "", "Assets directory (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}
	if serveAssets != "" {
		cfg.SetAssetsDir(serveAssets)
	}

	logger := cfg.NewLogger(os.Stderr)
	a, err := app.New(cfg, logger)
	if err != nil {
		if isDBLockError(err) {
			return fmt.Errorf("%s", diagnoseDBLock(cfg.Audit.Path, cfg.Addr))
		}
		return fmt.Errorf("init: %w", err)
	}

	if err := a.Start(); err != nil {
		a.Stop()
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s⚡ geonovis listening on %s%s\n", colorBold, a.Server.URL(), colorReset)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Fprintln(cmd.OutOrStdout(), "\n⚡ shutting down...")
	return a.Stop()
}
