// Package influxdb provides the InfluxDB point sink for SolWatch.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, batch writing, and health monitoring.
//
// # Purpose
//
// This package persists the normalized telemetry points produced by each
// poll cycle: one batch per device group, one InfluxDB point per metric.
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    Enabled: true,
//	    URL:     "http://localhost:8086",
//	    Token:   "your-token",
//	    Org:     "solwatch",
//	    Bucket:  "telemetry",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.WriteBatch(ctx, batch)
//
// # Write Semantics
//
// Writes use the blocking API deliberately: the poll orchestrator needs
// per-batch accept/reject semantics so a failed device group can be reported
// while the remaining groups are still attempted. Points without a resolved
// timestamp are written without a time and receive server ingestion time.
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines, though
// the polling pipeline writes sequentially.
package influxdb
