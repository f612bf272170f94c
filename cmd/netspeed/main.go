// Package main is the entry point for NetSpeed. It wires configuration,
// logging, the rate sampler and the autostart manager together and runs as a
// headless host that prints the tray text on every sample.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Guliveer/netspeed/internal/autostart"
	"github.com/Guliveer/netspeed/internal/collector"
	"github.com/Guliveer/netspeed/internal/config"
	"github.com/Guliveer/netspeed/internal/display"
	"github.com/Guliveer/netspeed/internal/logging"
	"github.com/Guliveer/netspeed/internal/models"
	"github.com/Guliveer/netspeed/internal/sampler"
	"github.com/Guliveer/netspeed/internal/scheduler"
)

// version is set at build time via -ldflags.
var version = "dev"

type globalFlags struct {
	configPath string
	logLevel   string
	iface      string
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:          "netspeed",
		Short:        "Live network upload/download rates",
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, closeLog, err := setup(cmd, flags)
			if err != nil {
				return err
			}
			defer closeLog()
			return runMonitor(cmd, cfg, logger)
		},
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to configuration file")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.Flags().StringVar(&flags.iface, "interface", "", "sample a single network interface")

	root.AddCommand(newAutostartCmd(&flags), newConfigCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "netspeed version %s\n", version)
		},
	}
}

// setup loads configuration, applies CLI overrides and builds the logger.
// The returned func flushes and closes the logger.
func setup(cmd *cobra.Command, flags globalFlags) (*config.Config, *zap.Logger, func(), error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}
	if flags.iface != "" {
		cfg.Sampling.Interface = flags.iface
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, closeLog, err := logging.New(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, closeLog, nil
}

// runMonitor samples until SIGINT/SIGTERM. It blocks until then.
func runMonitor(cmd *cobra.Command, cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting NetSpeed",
		zap.String("version", version),
		zap.Duration("interval", cfg.Sampling.Interval.Duration))

	var readerOpts []collector.NetworkOption
	if cfg.Sampling.Interface != "" {
		readerOpts = append(readerOpts, collector.WithInterface(cfg.Sampling.Interface))
	}
	if cfg.Sampling.ExcludeLoopback {
		readerOpts = append(readerOpts, collector.WithoutLoopback())
	}

	s, err := sampler.New(ctx, collector.NewNetworkCounters(readerOpts...), logger,
		sampler.WithMinInterval(cfg.Sampling.MinInterval.Duration))
	if err != nil {
		logger.Error("Cannot read network counters", zap.Error(err))
		return err
	}

	out := cmd.OutOrStdout()
	s.Subscribe(func(sample models.RateSample) {
		fmt.Fprintln(out, display.Tooltip(cfg.App.Name, sample))
	})

	mgr := newManager(cfg, logger)
	logger.Info("Autostart state",
		zap.String("backend", mgr.Backend()),
		zap.Bool("enabled", mgr.IsEnabled()))

	scheduler.New(s, cfg.Sampling.Interval.Duration, logger).Start(ctx)

	logger.Info("NetSpeed stopped")
	return nil
}

func newManager(cfg *config.Config, logger *zap.Logger) autostart.Manager {
	return autostart.New(cfg.App.Name, logger,
		autostart.WithCommandTimeout(cfg.Autostart.CommandTimeout.Duration))
}
