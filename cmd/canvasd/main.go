// Command canvasd serves the canvas drawing app to browsers.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gogpu/gg"
	"github.com/spf13/cobra"

	"github.com/ha1tch/deluxecanvas/internal/config"
	"github.com/ha1tch/deluxecanvas/internal/server"
)

var version = "dev"

var (
	configPath string
	listenAddr string

	rootCmd = &cobra.Command{
		Use:           "canvasd",
		Short:         "Browser canvas drawing server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the drawing app over HTTP",
		RunE:  runServe,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "canvasd", version)
		},
	}
)

func init() {
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "listen address, overrides the config")
	rootCmd.AddCommand(serveCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "canvasd:", err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.Listen = listenAddr
	}

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	gg.SetLogger(logger.With("component", "gg"))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting canvasd", "version", version, "listen", cfg.Listen,
		"canvas", fmt.Sprintf("%dx%d", cfg.Canvas.Width, cfg.Canvas.Height))
	return server.New(cfg, logger).Run(ctx)
}
