package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"dtdash/src/internal/config"
	"dtdash/src/internal/domain"
	"dtdash/src/internal/logging"
	"dtdash/src/internal/service"
)

var Version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "dtdash",
	Short: "dtdash - dashboard web server",
	Long: `dtdash serves a personalized dashboard page at /handle/<name>, static files
under /assets and, optionally, a live-reload websocket for asset changes.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServer,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "dtdash version %s\n", Version)
	},
}

func init() {
	rootCmd.SetVersionTemplate("dtdash version {{.Version}}\n")
	config.RegisterFlags(rootCmd.Flags())
	rootCmd.AddCommand(versionCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg := config.Load(cmd.Flags(), ".env")
	cfg.Version = Version

	appCtx := &domain.Context{
		Config: cfg,
		Logger: logging.New(os.Stderr, logging.LevelFromString(cfg.LogLevel), logging.FormatFromString(cfg.LogFormat)),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	return service.CreateOrchestrator(appCtx).Run(ctx)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error running dtdash: %v\n", err)
		os.Exit(1)
	}
}
