// Package telemetry normalizes raw gateway telemetry into time-series points.
//
// The gateway exposes device telemetry as flat key/value pairs in two
// incompatible API generations: the current firmware emits path-structured
// identifiers (/sys/livedata/pv_p, /sys/devices/inverter/11/p3phsumKw), the
// legacy firmware emits per-device maps of all-caps identifiers (POWER,
// SERIALNUMBER). This package contains the full normalization pipeline:
//
//   - Registry: per-generation catalog mapping a field identifier to a
//     coercion rule and a classification (metric, property, timestamp,
//     ignored). Unknown identifiers classify as ignored, never as errors.
//   - ParseDevicePath: extracts (category, index, field) from identifiers
//     matching .../devices/<category>/<index>/<field>.
//   - Builder: reduces both API shapes to one raw group stream, resolves a
//     timestamp and shared tags per group, coerces metric values, and emits
//     one Batch of Points per device group.
//
// # Error Handling
//
// Coercion failures are per-field and timestamp failures per-group: the
// offending field (or timestamp) is dropped with a warning and the rest of
// the group's points are still produced. A bad field never aborts a poll.
//
// # Thread Safety
//
// Registry and Builder are read-only after construction and safe for
// concurrent use, though the polling pipeline itself is sequential.
package telemetry
