// Package mqtt provides the optional MQTT point republisher for SolWatch.
//
// When enabled, every normalized telemetry point is republished as a retained
// JSON message under solwatch/telemetry/<device>/<series>, making the latest
// samples available to dashboards and automations without querying InfluxDB.
// The client is publish-only; it never subscribes.
//
// # Topic Hierarchy
//
//	solwatch/status                           poller online/offline (retained, LWT)
//	solwatch/telemetry/system/pv_p            system-wide points
//	solwatch/telemetry/inverter/11/p3phsumKw  device-scoped points
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.WriteBatch(ctx, batch)
//
// # Connection Management
//
// The client reconnects automatically with exponential backoff. A Last Will
// and Testament message marks unexpected disconnects on the status topic;
// Close publishes a distinct graceful-shutdown status first.
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
package mqtt
