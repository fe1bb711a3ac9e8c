package influxdb

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/solwatch/solwatch-core/internal/telemetry"
)

// WriteBatch writes all points of one device group to InfluxDB.
//
// Points carrying a resolved timestamp keep it; points without one are sent
// without a time so the server assigns ingestion time. The write blocks until
// the batch is accepted or fails as a whole.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - batch: One device group's points from a single poll
//
// Returns:
//   - error: nil if the batch was accepted, ErrNotConnected or a wrapped
//     write error otherwise
func (c *Client) WriteBatch(ctx context.Context, batch telemetry.Batch) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	if len(batch.Points) == 0 {
		return nil
	}

	points := make([]*write.Point, 0, len(batch.Points))
	for _, p := range batch.Points {
		pt := influxdb2.NewPointWithMeasurement(p.Series)
		for k, v := range p.Tags {
			pt.AddTag(k, v)
		}
		pt.AddField("value", p.Value)
		if !p.Time.IsZero() {
			pt.SetTime(p.Time)
		}
		points = append(points, pt)
	}

	if err := c.writeAPI.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("%w: device %s: %w", ErrWriteFailed, batch.Device, err)
	}

	return nil
}
