package telemetry

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// isoLayouts are the timestamp formats emitted by current gateway firmware,
// tried in order. The gateway reports local time without a zone suffix on
// most firmware versions; RFC 3339 covers the ones that do attach a zone.
var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// legacyTupleFields is the number of components in the legacy comma-separated
// date-time tuple: year, month, day, hour, minute, second.
const legacyTupleFields = 6

// ParseTimestamp converts a timestamp-classified raw value to a time.Time.
//
// Two formats are accepted:
//   - ISO-8601-like strings from current firmware ("2026-08-26T12:30:05")
//   - the legacy comma-separated tuple ("2026,08,26,12,30,05")
//
// Times without zone information are interpreted in the local zone, matching
// the gateway's own clock.
//
// Returns:
//   - time.Time: The parsed time
//   - error: ErrBadTimestamp (wrapped) if no format matches
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrBadTimestamp)
	}

	if strings.Contains(raw, ",") {
		return parseLegacyTuple(raw)
	}

	for _, layout := range isoLayouts {
		if layout == time.RFC3339 {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, nil
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, raw)
}

// parseLegacyTuple parses the first-generation firmware's comma-separated
// date-time tuple.
func parseLegacyTuple(raw string) (time.Time, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != legacyTupleFields {
		return time.Time{}, fmt.Errorf("%w: tuple has %d fields, want %d", ErrBadTimestamp, len(parts), legacyTupleFields)
	}

	nums := make([]int, legacyTupleFields)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: tuple field %q: %w", ErrBadTimestamp, p, err)
		}
		nums[i] = n
	}

	t := time.Date(nums[0], time.Month(nums[1]), nums[2], nums[3], nums[4], nums[5], 0, time.Local)

	// time.Date normalises out-of-range components (month 13 becomes January);
	// reject tuples that needed normalising.
	if t.Year() != nums[0] || int(t.Month()) != nums[1] || t.Day() != nums[2] {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, raw)
	}

	return t, nil
}
