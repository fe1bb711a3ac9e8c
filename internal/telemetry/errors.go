package telemetry

import "errors"

// Domain errors for the telemetry package.
//
// Both errors are per-field or per-group conditions: the record builder
// absorbs them, logs a warning and continues with the rest of the group.
// They are exported so callers and tests can check causes with errors.Is().
var (
	// ErrBadValue is returned when a raw value cannot be coerced to the
	// numeric type its registry entry declares.
	ErrBadValue = errors.New("telemetry: value coercion failed")

	// ErrBadTimestamp is returned when a timestamp-classified value matches
	// none of the accepted formats. The group proceeds without a timestamp.
	ErrBadTimestamp = errors.New("telemetry: unparseable timestamp")
)
