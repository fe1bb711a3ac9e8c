// Package gateway implements the HTTPS transport and session management for
// the local energy-monitoring gateway.
//
// # Protocol
//
// The gateway authenticates with an HTTP Basic handshake against a fixed
// endpoint, using the fixed principal "operator" and the last five characters
// of the gateway serial number as the password. A successful handshake sets a
// session token cookie, which is reused for every data request within the
// same poll cycle. Sessions are cycle-scoped: the orchestrator logs in at the
// start of a cycle and closes the session on every exit path.
//
// Two data API generations exist:
//
//   - current: /api/v1/livedata and /api/v1/devices/<category>, flat JSON
//     objects whose keys may carry device-path structure
//   - legacy: /devices.json, a single document with a flat devices list
//
// # Trust Boundary
//
// The gateway presents a self-signed certificate, so TLS verification is
// skipped. This is a documented, accepted risk: the client only connects to a
// configured address on the local network. Do not reuse this client for
// anything internet-facing.
//
// # Error Taxonomy
//
// Request errors are classified for the poll orchestrator:
//
//   - ErrMissingCredential: configuration error, fatal, raised before any
//     transport call
//   - ErrAuthFailed: handshake yielded no token, or the gateway rejected the
//     session; fatal for the cycle
//   - ErrGatewayUnavailable: connection refused, host unreachable, timeouts,
//     and 500/502/503/504 responses; the bounded-retry set (see IsTransient)
//   - ErrRequestFailed: everything else; fatal for the cycle
package gateway
