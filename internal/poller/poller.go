package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/solwatch/solwatch-core/internal/gateway"
	"github.com/solwatch/solwatch-core/internal/telemetry"
)

// Logger is the minimal logging surface the poller needs. Satisfied by
// *logging.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// GatewayClient is the gateway surface the poller drives. Satisfied by
// *gateway.Client; narrowed to an interface so cycles can be tested
// without a live gateway.
type GatewayClient interface {
	Login(ctx context.Context) (*gateway.Session, error)
	FetchLiveData(ctx context.Context, sess *gateway.Session) ([]telemetry.RawField, error)
	FetchCategory(ctx context.Context, sess *gateway.Session, category string) ([]telemetry.RawField, error)
	FetchLegacyDevices(ctx context.Context, sess *gateway.Session) ([]map[string]string, error)
}

// Sink accepts normalized telemetry batches. Each batch is accepted or
// rejected as a unit; a rejection never affects other batches.
type Sink interface {
	// Name identifies the sink in logs ("influxdb", "mqtt").
	Name() string

	// WriteBatch delivers one device/timestamp batch.
	WriteBatch(ctx context.Context, batch telemetry.Batch) error
}

// Config holds the poller's cycle parameters. All values come from the
// loaded configuration; the poller reads no environment of its own.
type Config struct {
	// Generation selects the gateway dialect to poll.
	Generation telemetry.Generation

	// Categories lists the device categories fetched each cycle in
	// addition to the live-data snapshot. Current generation only.
	Categories []string

	// MaxRetries is the number of additional attempts after a transient
	// transport failure. Zero disables retrying.
	MaxRetries int

	// RetryDelay is the pause between attempts.
	RetryDelay time.Duration

	// DryRun normalizes and logs batches without writing to any sink.
	DryRun bool
}

// Poller runs poll cycles against one gateway.
//
// A cycle moves through authenticate, fetch, normalize and write phases
// in order; a failure in an early phase aborts the cycle before any
// write happens, so sinks never see output from a partially fetched
// snapshot.
//
// Thread Safety:
//   - RunCycle must not be called concurrently on the same Poller.
type Poller struct {
	cfg     Config
	gw      GatewayClient
	builder *telemetry.Builder
	sinks   []Sink
	log     Logger
}

// New creates a poller. A nil log discards output.
func New(cfg Config, gw GatewayClient, builder *telemetry.Builder, sinks []Sink, log Logger) *Poller {
	if log == nil {
		log = noopLogger{}
	}
	return &Poller{
		cfg:     cfg,
		gw:      gw,
		builder: builder,
		sinks:   sinks,
		log:     log,
	}
}

// RunCycle executes one complete poll cycle.
//
// Transient transport failures (gateway unreachable, timeout, 5xx
// overload) are retried up to MaxRetries times with RetryDelay between
// attempts. Configuration and authentication failures are not retried.
// Per-field and per-group normalization problems are handled inside the
// builder and never fail the cycle.
//
// Returns:
//   - error: nil on success (including a cycle that produced no
//     batches); the first fatal fetch error otherwise, or an
//     ErrWriteFailed aggregate if one or more batch writes were rejected
func (p *Poller) RunCycle(ctx context.Context) error {
	p.log.Debug("poll cycle starting", "generation", p.cfg.Generation.String())

	sess, err := withRetry(ctx, p.cfg, p.log, "login", func(ctx context.Context) (*gateway.Session, error) {
		return p.gw.Login(ctx)
	})
	if err != nil {
		return fmt.Errorf("authenticating: %w", err)
	}
	defer sess.Close()

	groups, err := p.fetch(ctx, sess)
	if err != nil {
		return fmt.Errorf("fetching: %w", err)
	}

	batches := p.builder.Build(groups)
	if len(batches) == 0 {
		p.log.Info("poll cycle produced no telemetry")
		return nil
	}

	if p.cfg.DryRun {
		for _, batch := range batches {
			p.log.Info("dry run: discarding batch",
				"device", batch.Device,
				"points", len(batch.Points))
			for _, pt := range batch.Points {
				p.log.Debug("dry run: point",
					"device", batch.Device,
					"series", pt.Series,
					"value", pt.Value,
					"time", pt.Time)
			}
		}
		return nil
	}

	return p.write(ctx, batches)
}

// fetch collects raw field groups for the configured generation. The
// full snapshot is gathered before any normalization so a mid-fetch
// failure aborts the cycle cleanly.
func (p *Poller) fetch(ctx context.Context, sess *gateway.Session) ([]telemetry.RawGroup, error) {
	if p.cfg.Generation == telemetry.GenLegacy {
		devices, err := withRetry(ctx, p.cfg, p.log, "devices", func(ctx context.Context) ([]map[string]string, error) {
			return p.gw.FetchLegacyDevices(ctx, sess)
		})
		if err != nil {
			return nil, err
		}
		return p.builder.LegacyGroups(devices), nil
	}

	fields, err := withRetry(ctx, p.cfg, p.log, "livedata", func(ctx context.Context) ([]telemetry.RawField, error) {
		return p.gw.FetchLiveData(ctx, sess)
	})
	if err != nil {
		return nil, err
	}

	for _, category := range p.cfg.Categories {
		extra, err := withRetry(ctx, p.cfg, p.log, "category "+category, func(ctx context.Context) ([]telemetry.RawField, error) {
			return p.gw.FetchCategory(ctx, sess, category)
		})
		if err != nil {
			return nil, err
		}
		fields = append(fields, extra...)
	}

	return p.builder.SplitFields(telemetry.GenCurrent, fields), nil
}

// write delivers every batch to every sink. Batches are independent: a
// rejected batch is logged and the remaining batches still go out. The
// aggregate error reports every rejection.
func (p *Poller) write(ctx context.Context, batches []telemetry.Batch) error {
	var errs []error
	for _, batch := range batches {
		for _, sink := range p.sinks {
			if err := sink.WriteBatch(ctx, batch); err != nil {
				p.log.Error("batch write rejected",
					"sink", sink.Name(),
					"device", batch.Device,
					"error", err)
				errs = append(errs, fmt.Errorf("%s: device %s: %w", sink.Name(), batch.Device, err))
				continue
			}
			p.log.Debug("batch written",
				"sink", sink.Name(),
				"device", batch.Device,
				"points", len(batch.Points))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrWriteFailed, errors.Join(errs...))
	}

	p.log.Info("poll cycle complete", "batches", len(batches))
	return nil
}

// withRetry runs fn, retrying transient gateway failures up to
// cfg.MaxRetries additional times. Non-transient errors return
// immediately; context cancellation interrupts the retry pause.
func withRetry[T any](ctx context.Context, cfg Config, log Logger, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	attempts := cfg.MaxRetries + 1

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		var v T
		if v, err = fn(ctx); err == nil {
			return v, nil
		}
		if !gateway.IsTransient(err) || attempt == attempts {
			return zero, err
		}

		log.Warn("transient gateway error, retrying",
			"op", op,
			"attempt", attempt,
			"max_attempts", attempts,
			"error", err)

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(cfg.RetryDelay):
		}
	}
	return zero, err
}
