package telemetry

import "time"

// Generation identifies which gateway API variant produced a raw field.
//
// The two generations expose incompatible naming conventions: the current API
// emits path-structured and camel-case identifiers, the legacy API emits flat
// all-caps identifiers. Classification is resolved against the table for the
// generation that produced the field, never by naming convention alone.
type Generation int

const (
	// GenCurrent is the path-structured API (/api/v1/livedata, /api/v1/devices/...).
	GenCurrent Generation = iota

	// GenLegacy is the flat per-device API (/devices.json).
	GenLegacy
)

// String returns the generation name for logging.
func (g Generation) String() string {
	switch g {
	case GenLegacy:
		return "legacy"
	default:
		return "current"
	}
}

// RawField is a single identifier/value pair as emitted by the gateway.
// Ephemeral: produced per poll, discarded after normalization.
type RawField struct {
	Name  string
	Value string
}

// RawGroup is the unified raw field stream unit: one group of fields sharing
// device identity within a single poll. Both API generations reduce to this
// shape, so the record builder has exactly one grouping algorithm.
//
// Category is "system" for the system-wide group and empty for legacy device
// entries (which carry identity in their own fields instead).
type RawGroup struct {
	Category string
	Index    string
	Gen      Generation
	Fields   []RawField
}

// Point is one typed, tagged time-series sample ready for the sink.
//
// A zero Time means no timestamp was resolved for the group; the sink assigns
// ingestion time.
type Point struct {
	Series string
	Value  float64
	Tags   map[string]string
	Time   time.Time
}

// Batch holds all points produced from one device group in one poll.
// Batches are written to the sink independently of each other.
type Batch struct {
	// Device labels the originating group for logging (e.g. "system",
	// "inverter/11", or a legacy device serial).
	Device string

	Points []Point
}
