package poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/solwatch/solwatch-core/internal/gateway"
	"github.com/solwatch/solwatch-core/internal/telemetry"
)

// =============================================================================
// Fakes
// =============================================================================

// fakeGateway scripts gateway responses for cycle tests. Errors in the
// errs queue are consumed one per fetch attempt before data is served,
// which models a gateway recovering mid-cycle.
type fakeGateway struct {
	loginErr   error
	loginCalls int

	errs       []error
	fetchCalls int

	fields     []telemetry.RawField
	categories map[string][]telemetry.RawField
	devices    []map[string]string
}

func (f *fakeGateway) Login(_ context.Context) (*gateway.Session, error) {
	f.loginCalls++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &gateway.Session{}, nil
}

func (f *fakeGateway) nextErr() error {
	if len(f.errs) == 0 {
		return nil
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return err
}

func (f *fakeGateway) FetchLiveData(_ context.Context, _ *gateway.Session) ([]telemetry.RawField, error) {
	f.fetchCalls++
	if err := f.nextErr(); err != nil {
		return nil, err
	}
	return f.fields, nil
}

func (f *fakeGateway) FetchCategory(_ context.Context, _ *gateway.Session, category string) ([]telemetry.RawField, error) {
	f.fetchCalls++
	if err := f.nextErr(); err != nil {
		return nil, err
	}
	return f.categories[category], nil
}

func (f *fakeGateway) FetchLegacyDevices(_ context.Context, _ *gateway.Session) ([]map[string]string, error) {
	f.fetchCalls++
	if err := f.nextErr(); err != nil {
		return nil, err
	}
	return f.devices, nil
}

// fakeSink records delivered batches and can reject one device's batch.
type fakeSink struct {
	name       string
	failDevice string
	batches    []telemetry.Batch
}

func (s *fakeSink) Name() string { return s.name }

func (s *fakeSink) WriteBatch(_ context.Context, batch telemetry.Batch) error {
	if s.failDevice != "" && batch.Device == s.failDevice {
		return errors.New("sink rejected batch")
	}
	s.batches = append(s.batches, batch)
	return nil
}

func newTestPoller(cfg Config, gw GatewayClient, sinks ...Sink) *Poller {
	builder := telemetry.NewBuilder(telemetry.NewRegistry(), nil)
	return New(cfg, gw, builder, sinks, nil)
}

func systemFields() []telemetry.RawField {
	return []telemetry.RawField{
		{Name: "/sys/livedata/pv_p", Value: "3.21"},
		{Name: "/sys/livedata/grid_p", Value: "-1.05"},
		{Name: "/sys/livedata/time", Value: "2026-08-26T12:30:05"},
	}
}

// =============================================================================
// Cycle Tests
// =============================================================================

func TestRunCycle(t *testing.T) {
	gw := &fakeGateway{fields: systemFields()}
	sink := &fakeSink{name: "influxdb"}
	p := newTestPoller(Config{Generation: telemetry.GenCurrent}, gw, sink)

	if err := p.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}

	if gw.loginCalls != 1 {
		t.Errorf("loginCalls = %d, want 1", gw.loginCalls)
	}
	if len(sink.batches) != 1 {
		t.Fatalf("sink received %d batches, want 1", len(sink.batches))
	}

	batch := sink.batches[0]
	if batch.Device != "system" {
		t.Errorf("batch.Device = %q, want %q", batch.Device, "system")
	}
	if len(batch.Points) != 2 {
		t.Fatalf("batch has %d points, want 2", len(batch.Points))
	}
	if batch.Points[0].Series != "pv_p" || batch.Points[0].Value != 3.21 {
		t.Errorf("point = %q %v, want pv_p 3.21", batch.Points[0].Series, batch.Points[0].Value)
	}
	if batch.Points[0].Time.IsZero() {
		t.Error("point time is zero, want parsed group timestamp")
	}
}

func TestRunCycle_Categories(t *testing.T) {
	gw := &fakeGateway{
		fields: systemFields(),
		categories: map[string][]telemetry.RawField{
			"inverter": {
				{Name: "/sys/livedata/devices/inverter/11/p3phsumKw", Value: "0.0015"},
				{Name: "/sys/livedata/devices/inverter/11/sn", Value: "INV-00042"},
			},
		},
	}
	sink := &fakeSink{name: "influxdb"}
	p := newTestPoller(Config{
		Generation: telemetry.GenCurrent,
		Categories: []string{"inverter"},
	}, gw, sink)

	if err := p.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}

	if len(sink.batches) != 2 {
		t.Fatalf("sink received %d batches, want 2", len(sink.batches))
	}
	device := sink.batches[1]
	if device.Device != "inverter/11" {
		t.Errorf("batch.Device = %q, want %q", device.Device, "inverter/11")
	}
	if got := device.Points[0].Tags["serial"]; got != "INV-00042" {
		t.Errorf("serial tag = %q, want INV-00042", got)
	}
}

func TestRunCycle_Legacy(t *testing.T) {
	gw := &fakeGateway{
		devices: []map[string]string{
			{
				"SERIALNUMBER": "WR5K-001",
				"POWER":        "1520.5",
				"TIMESTAMP":    "2026,8,26,12,30,5",
			},
		},
	}
	sink := &fakeSink{name: "influxdb"}
	p := newTestPoller(Config{Generation: telemetry.GenLegacy}, gw, sink)

	if err := p.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}

	if len(sink.batches) != 1 {
		t.Fatalf("sink received %d batches, want 1", len(sink.batches))
	}
	batch := sink.batches[0]
	if batch.Device != "WR5K-001" {
		t.Errorf("batch.Device = %q, want serial label", batch.Device)
	}
	if batch.Points[0].Series != "POWER" || batch.Points[0].Value != 1520.5 {
		t.Errorf("point = %q %v, want POWER 1520.5", batch.Points[0].Series, batch.Points[0].Value)
	}
}

// =============================================================================
// Failure Handling Tests
// =============================================================================

func TestRunCycle_MissingCredential(t *testing.T) {
	gw := &fakeGateway{loginErr: gateway.ErrMissingCredential}
	sink := &fakeSink{name: "influxdb"}
	p := newTestPoller(Config{
		Generation: telemetry.GenCurrent,
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
	}, gw, sink)

	err := p.RunCycle(context.Background())
	if !errors.Is(err, gateway.ErrMissingCredential) {
		t.Fatalf("RunCycle() error = %v, want ErrMissingCredential", err)
	}
	if gw.loginCalls != 1 {
		t.Errorf("loginCalls = %d, want 1 (config errors are not retried)", gw.loginCalls)
	}
	if gw.fetchCalls != 0 {
		t.Errorf("fetchCalls = %d, want 0", gw.fetchCalls)
	}
	if len(sink.batches) != 0 {
		t.Errorf("sink received %d batches, want 0", len(sink.batches))
	}
}

func TestRunCycle_AuthFailureNotRetried(t *testing.T) {
	gw := &fakeGateway{loginErr: gateway.ErrAuthFailed}
	p := newTestPoller(Config{
		Generation: telemetry.GenCurrent,
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
	}, gw)

	err := p.RunCycle(context.Background())
	if !errors.Is(err, gateway.ErrAuthFailed) {
		t.Fatalf("RunCycle() error = %v, want ErrAuthFailed", err)
	}
	if gw.loginCalls != 1 {
		t.Errorf("loginCalls = %d, want 1", gw.loginCalls)
	}
}

func TestRunCycle_TransientRetryRecovers(t *testing.T) {
	gw := &fakeGateway{
		fields: systemFields(),
		errs: []error{
			gateway.ErrGatewayUnavailable,
			gateway.ErrGatewayUnavailable,
		},
	}
	sink := &fakeSink{name: "influxdb"}
	p := newTestPoller(Config{
		Generation: telemetry.GenCurrent,
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
	}, gw, sink)

	if err := p.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle() error = %v, want recovery within retry budget", err)
	}
	if gw.fetchCalls != 3 {
		t.Errorf("fetchCalls = %d, want 3", gw.fetchCalls)
	}
	if len(sink.batches) != 1 {
		t.Errorf("sink received %d batches, want 1", len(sink.batches))
	}
}

func TestRunCycle_RetriesExhausted(t *testing.T) {
	gw := &fakeGateway{
		fields: systemFields(),
		errs: []error{
			gateway.ErrGatewayUnavailable,
			gateway.ErrGatewayUnavailable,
			gateway.ErrGatewayUnavailable,
		},
	}
	sink := &fakeSink{name: "influxdb"}
	p := newTestPoller(Config{
		Generation: telemetry.GenCurrent,
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
	}, gw, sink)

	err := p.RunCycle(context.Background())
	if !errors.Is(err, gateway.ErrGatewayUnavailable) {
		t.Fatalf("RunCycle() error = %v, want ErrGatewayUnavailable", err)
	}
	if gw.fetchCalls != 3 {
		t.Errorf("fetchCalls = %d, want 3 (initial + 2 retries)", gw.fetchCalls)
	}
	if len(sink.batches) != 0 {
		t.Errorf("sink received %d batches, want 0 (no partial writes)", len(sink.batches))
	}
}

func TestRunCycle_DryRun(t *testing.T) {
	gw := &fakeGateway{fields: systemFields()}
	sink := &fakeSink{name: "influxdb"}
	p := newTestPoller(Config{
		Generation: telemetry.GenCurrent,
		DryRun:     true,
	}, gw, sink)

	if err := p.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}
	if len(sink.batches) != 0 {
		t.Errorf("sink received %d batches in dry run, want 0", len(sink.batches))
	}
}

func TestRunCycle_BatchIndependence(t *testing.T) {
	gw := &fakeGateway{
		fields: systemFields(),
		categories: map[string][]telemetry.RawField{
			"inverter": {
				{Name: "/sys/livedata/devices/inverter/11/freqHz", Value: "49.99"},
			},
		},
	}
	sink := &fakeSink{name: "influxdb", failDevice: "system"}
	p := newTestPoller(Config{
		Generation: telemetry.GenCurrent,
		Categories: []string{"inverter"},
	}, gw, sink)

	err := p.RunCycle(context.Background())
	if !errors.Is(err, ErrWriteFailed) {
		t.Fatalf("RunCycle() error = %v, want ErrWriteFailed", err)
	}

	// The rejected system batch must not block the inverter batch.
	if len(sink.batches) != 1 {
		t.Fatalf("sink received %d batches, want 1", len(sink.batches))
	}
	if sink.batches[0].Device != "inverter/11" {
		t.Errorf("delivered batch = %q, want inverter/11", sink.batches[0].Device)
	}
}

func TestRunCycle_MultipleSinks(t *testing.T) {
	gw := &fakeGateway{fields: systemFields()}
	influx := &fakeSink{name: "influxdb"}
	mqtt := &fakeSink{name: "mqtt"}
	p := newTestPoller(Config{Generation: telemetry.GenCurrent}, gw, influx, mqtt)

	if err := p.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}
	if len(influx.batches) != 1 || len(mqtt.batches) != 1 {
		t.Errorf("batches delivered = %d/%d, want 1/1", len(influx.batches), len(mqtt.batches))
	}
}

func TestRunCycle_NoTelemetry(t *testing.T) {
	gw := &fakeGateway{fields: []telemetry.RawField{
		{Name: "/sys/livedata/gw_state", Value: "ok"},
	}}
	sink := &fakeSink{name: "influxdb"}
	p := newTestPoller(Config{Generation: telemetry.GenCurrent}, gw, sink)

	if err := p.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle() error = %v, want nil for empty cycle", err)
	}
	if len(sink.batches) != 0 {
		t.Errorf("sink received %d batches, want 0", len(sink.batches))
	}
}

func TestRunCycle_ContextCancelledDuringRetry(t *testing.T) {
	gw := &fakeGateway{
		fields: systemFields(),
		errs: []error{
			gateway.ErrGatewayUnavailable,
			gateway.ErrGatewayUnavailable,
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newTestPoller(Config{
		Generation: telemetry.GenCurrent,
		MaxRetries: 5,
		RetryDelay: time.Hour,
	}, gw, &fakeSink{name: "influxdb"})

	err := p.RunCycle(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("RunCycle() error = %v, want context.Canceled", err)
	}
}
