// Package config loads and validates SolWatch configuration.
//
// Configuration lives in a single YAML file with sections for the gateway
// connection, polling behaviour, the InfluxDB sink, the optional MQTT
// republisher, and logging. Defaults are applied first, then file values,
// then SOLWATCH_* environment variable overrides.
//
// # Usage
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Environment Overrides
//
// Overrides follow the pattern SOLWATCH_SECTION_KEY:
//
//	SOLWATCH_GATEWAY_HOST=192.168.1.40
//	SOLWATCH_GATEWAY_SERIAL=7403705667
//	SOLWATCH_INFLUXDB_TOKEN=...
//
// Secrets (gateway serial, InfluxDB token, MQTT password) should be supplied
// via environment variables rather than committed to the config file.
package config
