package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/auto-dns/aliyun-ddns-sync/internal/app"
	"github.com/auto-dns/aliyun-ddns-sync/internal/config"
	"github.com/auto-dns/aliyun-ddns-sync/internal/logger"
)

type contextKey string

const configKey = contextKey("config")

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "aliyun-ddns-sync",
	Short: "Keep an Aliyun DNS A record pointed at this host's public IP",
	Long:  "A scheduled one-shot tool that resolves the current public IPv4 address, reconciles it against an Aliyun DNS A record, and reports the outcome to a Feishu webhook.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.InitConfig(cfgFile); err != nil {
			return err
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		ctx := context.WithValue(cmd.Context(), configKey, cfg)
		cmd.SetContext(ctx)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration.
		cfg := cmd.Context().Value(configKey).(*config.Config)

		// Set up logger.
		logInstance := logger.SetupLogger(&cfg.Logging)

		// Create the application.
		a, err := app.New(cfg, logInstance)
		if err != nil {
			return fmt.Errorf("failed to create app: %w", err)
		}
		var application application = a

		// Create a context with cancellation so a scheduler-issued
		// termination stops in-flight network calls.
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		go func() {
			sig := <-sigCh
			logInstance.Info().Msgf("Received signal: %v", sig)
			cancel()
		}()

		if err := application.Run(ctx); err != nil {
			return fmt.Errorf("run error: %w", err)
		}
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.{yaml,json})")
}

// Execute runs the root command. The process exit status is the only
// signal the external scheduler observes.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Execution error: %v\n", err)
		os.Exit(1)
	}
}
