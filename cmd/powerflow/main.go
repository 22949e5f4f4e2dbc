package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/narumiruna/powerflow/internal/collector"
	"github.com/narumiruna/powerflow/internal/config"
	"github.com/narumiruna/powerflow/internal/logger"
	"github.com/narumiruna/powerflow/internal/pid"
	"github.com/narumiruna/powerflow/internal/store"
)

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load(commandArguments(os.Args[1:]))
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
	if !cfg.Debug && !cfg.Verbose {
		logger.SetLogLevel(logLevelFromName(cfg.LogLevel))
	}
	logger.Debug().Msg("Config loaded")
}

func main() {
	command, arguments := splitCommand(os.Args[1:])

	switch command {
	case "", "run":
		if err := runCollect(); err != nil {
			logger.Fatal().Err(err).Msg("collection loop failed")
		}
	case "history":
		exitOnError(runHistory(arguments))
	case "stats":
		exitOnError(runStats(arguments))
	case "export":
		exitOnError(runExport(arguments))
	case "cleanup":
		exitOnError(runCleanup(arguments))
	case "health":
		exitOnError(runHealth(arguments))
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// splitCommand separates the leading subcommand from its arguments.
// The subcommand must come before any flags.
func splitCommand(args []string) (string, []string) {
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		return args[0], args[1:]
	}

	return "", args
}

// commandArguments strips the subcommand name so that global config
// flags still parse after it.
func commandArguments(args []string) []string {
	_, rest := splitCommand(args)
	return rest
}

func logLevelFromName(name string) logger.LogLevel {
	switch name {
	case "debug":
		return logger.DebugLevel
	case "info":
		return logger.InfoLevel
	case "warning":
		return logger.WarnLevel
	case "error":
		return logger.ErrorLevel
	default:
		return logger.InfoLevel
	}
}

func exitOnError(err error) {
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`powerflow - macOS power and battery telemetry

Usage:
  powerflow [flags]                 Collect readings continuously
  powerflow history [-n N]          Show recent readings
  powerflow stats [--limit N]       Summarize recent readings
  powerflow export <file> [flags]   Export readings to CSV or JSON
  powerflow cleanup [--days N|--all]  Delete old readings
  powerflow health [--days N]       Show battery health trend

Flags:
  --interval N     Seconds between readings
  --database PATH  SQLite database path
  --log-level L    Log level (debug, info, warning, error)
  --debug          Enable debug logging
  --verbose        Enable verbose logging
`)
}

func runCollect() error {
	if err := pid.Write(); err != nil {
		return err
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			logger.Error().Err(err).Msg("failed to remove PID file")
		}
	}()

	repo, err := store.NewRepository(store.Config{DBPath: cfg.Database})
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close repository")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	logger.Info().
		Float64("interval", cfg.Interval).
		Str("database", cfg.Database).
		Msg("Collecting power readings...")

	return loop(ctx, collector.Default(), repo)
}

func loop(ctx context.Context, c collector.Collector, repo store.Repository) error {
	interval := time.Duration(cfg.Interval * float64(time.Second))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Exiting...")
			return nil
		case <-ticker.C:
			reading, err := c.Collect()
			if err != nil {
				logger.Error().Err(err).Msg("failed to collect power reading")
				continue
			}

			if _, err := repo.Insert(ctx, reading); err != nil {
				logger.Error().Err(err).Msg("failed to store power reading")
				continue
			}

			logReading(reading)
		}
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func logReading(reading *collector.PowerReading) {
	if cfg.Debug {
		logger.Debug().
			Float64("watts_actual", reading.WattsActual).
			Int("watts_negotiated", reading.WattsNegotiated).
			Float64("voltage", reading.Voltage).
			Float64("amperage", reading.Amperage).
			Int("current_capacity", reading.CurrentCapacity).
			Int("max_capacity", reading.MaxCapacity).
			Int("battery_percent", reading.BatteryPercent).
			Bool("is_charging", reading.IsCharging).
			Bool("external_connected", reading.ExternalConnected).
			Str("charger", reading.ChargerName).
			Msg("")
	} else {
		logger.Info().
			Float64("watts", reading.WattsActual).
			Int("battery_percent", reading.BatteryPercent).
			Bool("is_charging", reading.IsCharging).
			Msg("")
	}
}
