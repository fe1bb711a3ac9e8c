// SolWatch Core - Energy Gateway Telemetry Poller
//
// This is the main entry point for the SolWatch poller. SolWatch reads
// live telemetry from a local energy monitoring gateway over HTTPS,
// normalizes the gateway's flat key/value snapshots into per-device
// measurement batches, and writes them to the configured sinks
// (InfluxDB, optionally MQTT).
//
// The poller runs on a fixed interval; cycles never overlap. A failed
// cycle is logged and the next one starts on schedule.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/solwatch/solwatch-core/internal/gateway"
	"github.com/solwatch/solwatch-core/internal/infrastructure/config"
	"github.com/solwatch/solwatch-core/internal/infrastructure/influxdb"
	"github.com/solwatch/solwatch-core/internal/infrastructure/logging"
	"github.com/solwatch/solwatch-core/internal/infrastructure/mqtt"
	"github.com/solwatch/solwatch-core/internal/poller"
	"github.com/solwatch/solwatch-core/internal/telemetry"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// options carries the command-line flags into run.
type options struct {
	configPath string
	dryRun     bool
	verbose    bool
	once       bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "path to configuration file (overrides SOLWATCH_CONFIG)")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "fetch and normalize but discard points instead of writing")
	flag.BoolVar(&opts.verbose, "verbose", false, "enable debug logging")
	flag.BoolVar(&opts.once, "once", false, "run a single poll cycle and exit")
	flag.Parse()

	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - opts: Parsed command-line flags
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, opts options) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting SolWatch",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath(opts.configPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Flags override file settings
	if opts.verbose {
		cfg.Logging.Level = "debug"
	}
	if opts.dryRun {
		cfg.Poll.DryRun = true
	}

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Gateway client; sessions are opened per cycle, not here
	gw := gateway.NewClient(cfg.Gateway, log)
	log.Info("gateway configured",
		"host", cfg.Gateway.Host,
		"port", cfg.Gateway.Port,
		"generation", cfg.Gateway.Generation,
	)

	// Connect sinks. Dry-run skips all sink connections: cycles normalize
	// and log batches without touching storage.
	var sinks []poller.Sink
	if !cfg.Poll.DryRun {
		sinks, err = connectSinks(cfg, log)
		if err != nil {
			return err
		}
		defer closeSinks(sinks, log)
	} else {
		log.Info("dry run: sinks disabled")
	}

	generation := telemetry.GenCurrent
	if cfg.Gateway.Generation == "legacy" {
		generation = telemetry.GenLegacy
	}

	builder := telemetry.NewBuilder(telemetry.NewRegistry(), log)
	p := poller.New(poller.Config{
		Generation: generation,
		Categories: cfg.Gateway.Categories,
		MaxRetries: cfg.Poll.MaxRetries,
		RetryDelay: cfg.GetRetryDelay(),
		DryRun:     cfg.Poll.DryRun,
	}, gw, builder, sinks, log)

	if opts.once {
		return p.RunCycle(ctx)
	}

	return pollLoop(ctx, p, cfg.GetPollInterval(), log)
}

// pollLoop runs cycles on a fixed interval until the context cancels.
// The first cycle runs immediately. A failed cycle is logged; the loop
// keeps going so a transient outage only costs the affected cycles.
func pollLoop(ctx context.Context, p *poller.Poller, interval time.Duration, log *logging.Logger) error {
	log.Info("poll loop starting", "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := p.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Error("poll cycle failed", "error", err)
		}

		select {
		case <-ctx.Done():
			log.Info("shutdown signal received")
			return nil
		case <-ticker.C:
		}
	}

	log.Info("shutdown signal received")
	return nil
}

// connectSinks opens every sink enabled in the configuration.
//
// On error the already-connected sinks are closed; otherwise the caller
// owns the returned sinks and closes them via closeSinks.
func connectSinks(cfg *config.Config, log *logging.Logger) ([]poller.Sink, error) {
	var sinks []poller.Sink

	if cfg.InfluxDB.Enabled {
		influxClient, err := influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return nil, fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
		sinks = append(sinks, influxClient)
	} else {
		log.Info("InfluxDB disabled")
	}

	if cfg.MQTT.Enabled {
		mqttClient, err := mqtt.Connect(cfg.MQTT)
		if err != nil {
			closeSinks(sinks, log)
			return nil, fmt.Errorf("connecting to MQTT: %w", err)
		}
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
		sinks = append(sinks, mqttClient)
	}

	return sinks, nil
}

// closeSinks closes sinks in reverse connection order.
func closeSinks(sinks []poller.Sink, log *logging.Logger) {
	for i := len(sinks) - 1; i >= 0; i-- {
		closer, ok := sinks[i].(interface{ Close() error })
		if !ok {
			continue
		}
		log.Info("closing sink", "sink", sinks[i].Name())
		if err := closer.Close(); err != nil {
			log.Error("error closing sink", "sink", sinks[i].Name(), "error", err)
		}
	}
}

// getConfigPath returns the configuration file path. Precedence:
// -config flag, SOLWATCH_CONFIG environment variable, default.
func getConfigPath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if path := os.Getenv("SOLWATCH_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
