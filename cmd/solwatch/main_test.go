package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx, options{configPath: "/nonexistent/path/config.yaml", once: true})
	if err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_MissingSerial verifies a single dry-run cycle fails cleanly when
// no gateway serial is configured. The failure must happen before any
// network traffic, so no gateway needs to be running.
func TestRun_MissingSerial(t *testing.T) {
	configPath := writeTestConfig(t, `
gateway:
  host: "127.0.0.1"
  port: 443
  serial: ""
  generation: current
  timeout: 2

poll:
  interval: 60
  max_retries: 0
  retry_delay: 1

influxdb:
  enabled: false

mqtt:
  enabled: false

logging:
  level: info
  format: text
  output: stdout
`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx, options{configPath: configPath, dryRun: true, once: true})
	if err == nil {
		t.Fatal("run() should fail when no gateway serial is configured")
	}
}

// TestRun_GatewayUnreachable verifies a single cycle against a dead
// gateway address returns an error instead of hanging.
func TestRun_GatewayUnreachable(t *testing.T) {
	configPath := writeTestConfig(t, `
gateway:
  host: "127.0.0.1"
  port: 19999
  serial: "210012345"
  generation: current
  timeout: 1

poll:
  interval: 60
  max_retries: 0
  retry_delay: 1

influxdb:
  enabled: false

mqtt:
  enabled: false

logging:
  level: info
  format: text
  output: stdout
`)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := run(ctx, options{configPath: configPath, dryRun: true, once: true})
	if err == nil {
		t.Fatal("run() should fail when the gateway is unreachable")
	}
}

// TestGetConfigPath verifies flag/env/default precedence.
func TestGetConfigPath(t *testing.T) {
	t.Setenv("SOLWATCH_CONFIG", "")

	if path := getConfigPath(""); path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", path, defaultConfigPath)
	}

	t.Setenv("SOLWATCH_CONFIG", "/env/config.yaml")
	if path := getConfigPath(""); path != "/env/config.yaml" {
		t.Errorf("getConfigPath() = %q, want env override", path)
	}

	if path := getConfigPath("/flag/config.yaml"); path != "/flag/config.yaml" {
		t.Errorf("getConfigPath() = %q, want flag to win over env", path)
	}
}

// writeTestConfig writes a config file into a temp dir and returns its path.
func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test-config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}
