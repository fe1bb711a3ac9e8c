package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/solwatch/solwatch-core/internal/infrastructure/config"
	"github.com/solwatch/solwatch-core/internal/telemetry"
)

// testConfig returns a valid MQTT configuration for testing.
// Integration tests require a running Mosquitto broker at 127.0.0.1:1883.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Enabled: true,
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "solwatch-test",
			TLS:      false,
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

// skipIfNoBroker skips the test if no broker is reachable.
func skipIfNoBroker(t *testing.T) *Client {
	t.Helper()
	client, err := Connect(testConfig())
	if err != nil {
		t.Skip("MQTT broker not available, skipping integration test")
	}
	return client
}

// =============================================================================
// Connection Tests
// =============================================================================

func TestConnect(t *testing.T) {
	client := skipIfNoBroker(t)
	defer client.Close()

	if !client.IsConnected() {
		t.Error("IsConnected() = false, want true")
	}
	if client.Name() != "mqtt" {
		t.Errorf("Name() = %q, want %q", client.Name(), "mqtt")
	}
}

func TestClose(t *testing.T) {
	client := skipIfNoBroker(t)

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close(), want false")
	}
}

func TestCloseNil(t *testing.T) {
	client := &Client{}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on zero client error = %v, want nil", err)
	}
}

// =============================================================================
// Publish Tests
// =============================================================================

func TestPublish_Validation(t *testing.T) {
	client := &Client{} // disconnected

	if err := client.Publish("", []byte("x"), 1, false); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Publish(empty topic) error = %v, want ErrInvalidTopic", err)
	}
	if err := client.Publish("solwatch/test", []byte("x"), 3, false); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("Publish(qos 3) error = %v, want ErrInvalidQoS", err)
	}
	if err := client.Publish("solwatch/test", []byte("x"), 1, false); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Publish(disconnected) error = %v, want ErrNotConnected", err)
	}
}

func TestWriteBatch_Disconnected(t *testing.T) {
	client := &Client{}

	batch := telemetry.Batch{
		Device: "system",
		Points: []telemetry.Point{{Series: "pv_p", Value: 3.21}},
	}
	if err := client.WriteBatch(context.Background(), batch); !errors.Is(err, ErrNotConnected) {
		t.Errorf("WriteBatch() error = %v, want ErrNotConnected", err)
	}
}

func TestWriteBatch(t *testing.T) {
	client := skipIfNoBroker(t)
	defer client.Close()

	batch := telemetry.Batch{
		Device: "inverter/11",
		Points: []telemetry.Point{
			{
				Series: "p3phsumKw",
				Value:  0.0015,
				Tags:   map[string]string{"device_type": "inverter", "device_index": "11"},
				Time:   time.Now(),
			},
			{Series: "freqHz", Value: 49.99},
		},
	}

	if err := client.WriteBatch(context.Background(), batch); err != nil {
		t.Errorf("WriteBatch() error = %v", err)
	}
}

// =============================================================================
// Message and Topic Tests
// =============================================================================

func TestPointMessage_Encoding(t *testing.T) {
	ts := time.Date(2026, 8, 26, 12, 30, 5, 0, time.UTC)
	msg := pointMessage{
		Series: "pv_p",
		Value:  3.21,
		Tags:   map[string]string{"device_type": "system"},
		Time:   ts.Format(time.RFC3339),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded["series"] != "pv_p" {
		t.Errorf("series = %v, want pv_p", decoded["series"])
	}
	if decoded["value"] != 3.21 {
		t.Errorf("value = %v, want 3.21", decoded["value"])
	}
	if decoded["time"] != "2026-08-26T12:30:05Z" {
		t.Errorf("time = %v, want RFC3339", decoded["time"])
	}
}

func TestPointMessage_OmitsZeroTime(t *testing.T) {
	data, err := json.Marshal(pointMessage{Series: "pv_p", Value: 1})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if strings.Contains(string(data), `"time"`) {
		t.Errorf("encoded message %s should omit empty time", data)
	}
}

func TestTopics(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		got  string
		want string
	}{
		{topics.Telemetry("system", "pv_p"), "solwatch/telemetry/system/pv_p"},
		{topics.Telemetry("inverter/11", "p3phsumKw"), "solwatch/telemetry/inverter/11/p3phsumKw"},
		{topics.Status(), "solwatch/status"},
		{topics.AllTelemetry(), "solwatch/telemetry/#"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("topic = %q, want %q", tt.got, tt.want)
		}
	}
}
