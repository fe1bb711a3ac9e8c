package telemetry

// Kind classifies what a raw field contributes to a point.
type Kind int

const (
	// KindIgnored fields are dropped silently. Unknown identifiers classify
	// as ignored because device firmware may expose fields not yet catalogued.
	KindIgnored Kind = iota

	// KindMetric fields become the numeric value of a point.
	KindMetric

	// KindProperty fields become tags shared by all points of their group.
	KindProperty

	// KindTimestamp fields drive the timestamp of their group's points.
	KindTimestamp
)

// Coercion is the conversion applied to a raw string value.
type Coercion int

const (
	// CoerceString is the identity conversion (properties, timestamps).
	CoerceString Coercion = iota

	// CoerceFloat parses the value as a decimal number.
	CoerceFloat

	// CoerceInt parses the value as an integer.
	CoerceInt
)

// MeasurementSpec describes how one raw field identifier is handled.
// The zero value is an ignored string field, which is what lookups for
// unknown identifiers return.
type MeasurementSpec struct {
	Coercion Coercion
	Kind     Kind
}

// Registry maps raw field identifiers to measurement specs, with one table
// per gateway API generation.
//
// Lookups are pure and never fail: an identifier missing from the table is a
// normal outcome and yields the ignored spec.
//
// Thread Safety:
//   - Read-only after construction; safe for concurrent use.
type Registry struct {
	tables map[Generation]map[string]MeasurementSpec
}

// NewRegistry returns a registry loaded with the built-in measurement catalog
// for both gateway API generations.
func NewRegistry() *Registry {
	return &Registry{
		tables: map[Generation]map[string]MeasurementSpec{
			GenCurrent: currentCatalog,
			GenLegacy:  legacyCatalog,
		},
	}
}

// Classify returns the measurement spec for an identifier under the given
// API generation. Unknown identifiers (and unknown generations) return the
// ignored spec.
func (r *Registry) Classify(gen Generation, identifier string) MeasurementSpec {
	table, ok := r.tables[gen]
	if !ok {
		return MeasurementSpec{}
	}
	return table[identifier]
}

// currentCatalog covers the path-structured API. System-wide fields are keyed
// by their full /sys/livedata path; device-scoped fields are keyed by their
// bare camel-case name, which the gateway reuses across device categories.
var currentCatalog = map[string]MeasurementSpec{
	// System-wide live data
	"/sys/livedata/pv_p":       {Coercion: CoerceFloat, Kind: KindMetric},
	"/sys/livedata/grid_p":     {Coercion: CoerceFloat, Kind: KindMetric},
	"/sys/livedata/load_p":     {Coercion: CoerceFloat, Kind: KindMetric},
	"/sys/livedata/bat_p":      {Coercion: CoerceFloat, Kind: KindMetric},
	"/sys/livedata/bat_soc":    {Coercion: CoerceFloat, Kind: KindMetric},
	"/sys/livedata/pv_e_today": {Coercion: CoerceFloat, Kind: KindMetric},
	"/sys/livedata/pv_e_total": {Coercion: CoerceFloat, Kind: KindMetric},
	"/sys/livedata/time":       {Coercion: CoerceString, Kind: KindTimestamp},
	"/sys/livedata/gw_state":   {Coercion: CoerceString, Kind: KindProperty},

	// Device-scoped fields, shared by inverters, meters and batteries
	"sn":         {Coercion: CoerceString, Kind: KindProperty},
	"prodMdlNm":  {Coercion: CoerceString, Kind: KindProperty},
	"fwVer":      {Coercion: CoerceString, Kind: KindProperty},
	"p3phsumKw":  {Coercion: CoerceFloat, Kind: KindMetric},
	"freqHz":     {Coercion: CoerceFloat, Kind: KindMetric},
	"uAcV":       {Coercion: CoerceFloat, Kind: KindMetric},
	"iAcA":       {Coercion: CoerceFloat, Kind: KindMetric},
	"tmpC":       {Coercion: CoerceFloat, Kind: KindMetric},
	"eTotalKwh":  {Coercion: CoerceFloat, Kind: KindMetric},
	"eTodayKwh":  {Coercion: CoerceFloat, Kind: KindMetric},
	"socPct":     {Coercion: CoerceInt, Kind: KindMetric},
	"commErrCnt": {Coercion: CoerceInt, Kind: KindMetric},
	"ts":         {Coercion: CoerceString, Kind: KindTimestamp},

	// Catalogued but deliberately excluded from both tags and series.
	"alrmFl": {Coercion: CoerceInt, Kind: KindIgnored},
}

// legacyCatalog covers the flat all-caps API exposed by first-generation
// gateway firmware via /devices.json.
var legacyCatalog = map[string]MeasurementSpec{
	"SERIALNUMBER": {Coercion: CoerceString, Kind: KindProperty},
	"DEVICETYPE":   {Coercion: CoerceString, Kind: KindProperty},
	"STATE":        {Coercion: CoerceString, Kind: KindProperty},
	"POWER":        {Coercion: CoerceFloat, Kind: KindMetric},
	"ENERGYTOTAL":  {Coercion: CoerceFloat, Kind: KindMetric},
	"ENERGYTODAY":  {Coercion: CoerceFloat, Kind: KindMetric},
	"FREQUENCY":    {Coercion: CoerceFloat, Kind: KindMetric},
	"VOLTAGE":      {Coercion: CoerceFloat, Kind: KindMetric},
	"CURRENT":      {Coercion: CoerceFloat, Kind: KindMetric},
	"TEMPERATURE":  {Coercion: CoerceFloat, Kind: KindMetric},
	"TIMESTAMP":    {Coercion: CoerceString, Kind: KindTimestamp},

	// Catalogued but deliberately excluded from both tags and series.
	"UPTIME":   {Coercion: CoerceInt, Kind: KindIgnored},
	"CHECKSUM": {Coercion: CoerceString, Kind: KindIgnored},
}
