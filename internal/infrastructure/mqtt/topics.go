package mqtt

import "fmt"

// Topic prefixes for the SolWatch topic hierarchy.
const (
	// TopicPrefix is the base for all SolWatch topics.
	TopicPrefix = "solwatch"

	// TopicPrefixTelemetry is the base for republished telemetry points.
	TopicPrefixTelemetry = "solwatch/telemetry"
)

// Topics provides builders for SolWatch MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
type Topics struct{}

// Telemetry returns the topic for one republished point.
//
// The device label keeps its internal hierarchy, so device-scoped points
// fan out under their category:
//
//	solwatch/telemetry/system/pv_p
//	solwatch/telemetry/inverter/11/p3phsumKw
func (Topics) Telemetry(device, series string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixTelemetry, device, series)
}

// Status returns the poller status topic (online/offline, retained).
//
// Example: solwatch/status
func (Topics) Status() string {
	return fmt.Sprintf("%s/status", TopicPrefix)
}

// AllTelemetry returns a pattern matching every republished point.
//
// Pattern: solwatch/telemetry/#
func (Topics) AllTelemetry() string {
	return fmt.Sprintf("%s/#", TopicPrefixTelemetry)
}
