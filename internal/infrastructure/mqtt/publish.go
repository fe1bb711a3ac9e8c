package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/solwatch/solwatch-core/internal/telemetry"
)

// Maximum payload size for MQTT messages (1MB).
// This prevents resource exhaustion and aligns with typical broker limits.
const maxPayloadSize = 1 << 20 // 1MB

// pointMessage is the wire shape of one republished point.
type pointMessage struct {
	Series string            `json:"series"`
	Value  float64           `json:"value"`
	Tags   map[string]string `json:"tags,omitempty"`
	Time   string            `json:"time,omitempty"`
}

// Publish sends a message to the specified MQTT topic.
//
// Parameters:
//   - topic: The topic to publish to (e.g. "solwatch/telemetry/system/pv_p")
//   - payload: The message payload (typically JSON, max 1MB)
//   - qos: Quality of Service level (0, 1, or 2)
//   - retained: Whether the broker should retain the message for new subscribers
//
// Returns:
//   - error: nil on success, or wrapped error describing the failure
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// WriteBatch republishes all points of one device group, one message per
// point, under solwatch/telemetry/<device>/<series>.
//
// Messages are retained so late subscribers see the latest sample for each
// series. The first publish failure aborts the batch; the orchestrator
// reports it and moves on to the next batch.
func (c *Client) WriteBatch(ctx context.Context, batch telemetry.Batch) error {
	for _, p := range batch.Points {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg := pointMessage{
			Series: p.Series,
			Value:  p.Value,
			Tags:   p.Tags,
		}
		if !p.Time.IsZero() {
			msg.Time = p.Time.UTC().Format(time.RFC3339)
		}

		payload, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("%w: encoding point %s: %w", ErrPublishFailed, p.Series, err)
		}

		topic := Topics{}.Telemetry(batch.Device, p.Series)
		if err := c.Publish(topic, payload, byte(c.cfg.QoS), true); err != nil {
			return err
		}
	}

	return nil
}
